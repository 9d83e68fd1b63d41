package edm

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"

	yaml "gopkg.in/yaml.v2"
)

// PropertyValue is one resolved (name, value) pair of an entity instance.
type PropertyValue struct {
	Name  string
	Value any
}

// PropertyValueList keeps resolved property values in declaration order.
// The custom marshallers below exist so that the alternate encodings emit
// properties in that order instead of whatever order a map would give.
type PropertyValueList []PropertyValue

func (pvl PropertyValueList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")

	for i, pv := range pvl {
		if i > 0 {
			buf.WriteString(",")
		}

		name, err := json.Marshal(pv.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(":")

		value, err := json.Marshal(pv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteString("}")
	return buf.Bytes(), nil
}

func (pvl PropertyValueList) MarshalYAML() (any, error) {
	m := make(yaml.MapSlice, 0, len(pvl))
	for _, pv := range pvl {
		m = append(m, yaml.MapItem{Key: pv.Name, Value: pv.Value})
	}
	return m, nil
}

func (pvl PropertyValueList) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, pv := range pvl {
		el := xml.StartElement{Name: xml.Name{Local: pv.Name}}
		if err := e.EncodeElement(fmt.Sprintf("%v", pv.Value), el); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}
