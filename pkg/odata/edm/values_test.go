package edm

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
	yaml "gopkg.in/yaml.v2"
)

func TestJSONEncodingKeepsPropertyOrder(t *testing.T) {
	is := is.New(t)
	et := testEntityType(t)

	b, err := json.Marshal(et.PropertyValues(dog{ID: 1, Name: "Rex"}))
	is.NoErr(err)

	is.Equal(string(b), `{"id":1,"name":"Rex","breed":""}`)
}

func TestYAMLEncodingKeepsPropertyOrder(t *testing.T) {
	is := is.New(t)
	et := testEntityType(t)

	b, err := yaml.Marshal(et.PropertyValues(dog{ID: 1, Name: "Rex"}))
	is.NoErr(err)

	is.Equal(string(b), "id: 1\nname: Rex\nbreed: \"\"\n")
}
