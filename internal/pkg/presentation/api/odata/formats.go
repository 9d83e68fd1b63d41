package odata

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/diwise/odata-service/internal/pkg/application/provider"
	"github.com/diwise/odata-service/pkg/odata"
	"github.com/diwise/odata-service/pkg/odata/edm"
	yaml "gopkg.in/yaml.v2"
)

// encodeResult picks the response encoding. The default is the Atom
// document from the provider's renderer; the yaml/json/xml formats bypass
// it and dump the raw property values through generic encoders instead.
func encodeResult(p *provider.Provider, query *provider.Query, result *odata.Result, format string) ([]byte, string, error) {
	switch format {
	case "yaml":
		body, err := yaml.Marshal(resultView(query, result))
		return body, ContentTypeYAML, err
	case "json":
		body, err := json.Marshal(resultView(query, result))
		return body, ContentTypeJSON, err
	case "xml":
		body, err := xmlDump(query, result)
		return body, ContentTypePlainXML, err
	default:
		body, err := p.Render(query, result)
		return body, ContentTypeAtomXML, err
	}
}

// resultView resolves every property of the result through the entity
// type's accessor table, keeping declaration order.
func resultView(query *provider.Query, result *odata.Result) any {
	et, ok := query.EntityType()
	if !ok {
		return nil
	}

	if !result.IsCollection() {
		return et.PropertyValues(result.Entity())
	}

	views := make([]edm.PropertyValueList, 0, len(result.Entities()))
	for _, instance := range result.Entities() {
		views = append(views, et.PropertyValues(instance))
	}

	return views
}

func xmlDump(query *provider.Query, result *odata.Result) ([]byte, error) {
	et, ok := query.EntityType()
	if !ok {
		return nil, fmt.Errorf("query has no resolvable entity type")
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	entityStart := xml.StartElement{Name: xml.Name{Local: et.Name()}}

	if result.IsCollection() {
		root := xml.StartElement{Name: xml.Name{Local: et.CollectionName()}}
		if err := enc.EncodeToken(root); err != nil {
			return nil, err
		}

		for _, instance := range result.Entities() {
			if err := et.PropertyValues(instance).MarshalXML(enc, entityStart); err != nil {
				return nil, err
			}
		}

		if err := enc.EncodeToken(root.End()); err != nil {
			return nil, err
		}
	} else {
		if err := et.PropertyValues(result.Entity()).MarshalXML(enc, entityStart); err != nil {
			return nil, err
		}
	}

	if err := enc.Flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
