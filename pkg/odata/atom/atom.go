package atom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/diwise/odata-service/pkg/odata/edm"
	"github.com/google/uuid"
)

// The service and metadata documents declare iso-8859-1 while feeds and
// entries declare utf-8. The asymmetry is part of the wire contract and
// must not be normalized away.
const declISO88591 string = `<?xml version="1.0" encoding="iso-8859-1"?>`
const declUTF8 string = `<?xml version="1.0" encoding="utf-8"?>`

const nsApp string = "http://www.w3.org/2007/app"
const nsAtom string = "http://www.w3.org/2005/Atom"
const nsEdm string = "http://schemas.microsoft.com/ado/2006/04/edm"
const nsEdmx string = "http://schemas.microsoft.com/ado/2007/06/edmx"
const nsData string = "http://schemas.microsoft.com/ado/2007/08/dataservices"
const nsScheme string = "http://schemas.microsoft.com/ado/2007/08/dataservices/scheme"

// Entries carry a placeholder timestamp rather than any real modification
// time, since instance lifecycles are not tracked here.
const placeholderUpdated string = "1970-01-01T00:00:00Z"

// ServiceDocument renders the top level document advertising one
// collection per registered entity type.
func ServiceDocument(registry *edm.Registry) []byte {
	var b strings.Builder

	b.WriteString(declISO88591)
	fmt.Fprintf(&b, `<service xmlns="%s" xmlns:atom="%s"><workspace><atom:title>Default</atom:title>`, nsApp, nsAtom)

	for _, et := range registry.EntityTypes() {
		collection := et.CollectionName()
		fmt.Fprintf(&b, `<collection href="%s"><atom:title>%s</atom:title></collection>`,
			escape(collection), escape(collection))
	}

	b.WriteString(`</workspace></service>`)

	return []byte(b.String())
}

// MetadataDocument renders the EDMX schema description of every registered
// entity type: a Key block listing a PropertyRef per declared key and a
// flat Property list, both in declaration order. Property elements carry
// the declared Type attribute.
func MetadataDocument(registry *edm.Registry, namespace string) []byte {
	var b strings.Builder

	b.WriteString(declISO88591)
	fmt.Fprintf(&b, `<edmx:Edmx Version="1.0" xmlns:edmx="%s"><edmx:DataServices>`, nsEdmx)
	fmt.Fprintf(&b, `<Schema xmlns="%s" Namespace="%s">`, nsEdm, escape(namespace))

	for _, et := range registry.EntityTypes() {
		fmt.Fprintf(&b, `<EntityType Name="%s">`, escape(et.Name()))

		b.WriteString(`<Key>`)
		for _, key := range et.Keys() {
			fmt.Fprintf(&b, `<PropertyRef Name="%s"/>`, escape(key))
		}
		b.WriteString(`</Key>`)

		for _, p := range et.Properties() {
			fmt.Fprintf(&b, `<Property Name="%s" Type="%s"/>`, escape(p.Name), escape(p.Type))
		}

		b.WriteString(`</EntityType>`)
	}

	b.WriteString(`</Schema></edmx:DataServices></edmx:Edmx>`)

	return []byte(b.String())
}

// Feed renders a collection result as an Atom feed with one entry per
// instance, in the order the executor produced them.
func Feed(serviceRoot string, et *edm.EntityType, instances []any) []byte {
	var b strings.Builder

	collection := et.CollectionName()

	b.WriteString(declUTF8)
	fmt.Fprintf(&b, `<feed xmlns="%s" xmlns:d="%s">`, nsAtom, nsData)
	fmt.Fprintf(&b, `<title type="text">%s</title>`, escape(collection))
	fmt.Fprintf(&b, `<id>%s</id>`, escape(joinPath(serviceRoot, collection)))
	fmt.Fprintf(&b, `<updated>%s</updated>`, placeholderUpdated)
	fmt.Fprintf(&b, `<link rel="self" title="%s" href="%s"/>`, escape(collection), escape(collection))

	for _, instance := range instances {
		writeEntry(&b, serviceRoot, et, instance)
	}

	b.WriteString(`</feed>`)

	return []byte(b.String())
}

// Entry renders a single entity result as a standalone Atom entry document.
func Entry(serviceRoot string, et *edm.EntityType, instance any) []byte {
	var b strings.Builder

	b.WriteString(declUTF8)
	fmt.Fprintf(&b, `<entry xmlns="%s" xmlns:d="%s">`, nsAtom, nsData)
	writeEntryContents(&b, serviceRoot, et, instance)
	b.WriteString(`</entry>`)

	return []byte(b.String())
}

func writeEntry(b *strings.Builder, serviceRoot string, et *edm.EntityType, instance any) {
	b.WriteString(`<entry>`)
	writeEntryContents(b, serviceRoot, et, instance)
	b.WriteString(`</entry>`)
}

func writeEntryContents(b *strings.Builder, serviceRoot string, et *edm.EntityType, instance any) {
	fmt.Fprintf(b, `<id>%s</id>`, escape(entryID(serviceRoot, et, instance)))
	b.WriteString(`<title type="text"></title>`)
	fmt.Fprintf(b, `<updated>%s</updated>`, placeholderUpdated)
	b.WriteString(`<author><name/></author>`)
	fmt.Fprintf(b, `<category term="%s" scheme="%s"/>`, escape(et.Name()), nsScheme)

	b.WriteString(`<content type="application/xml">`)
	for _, pv := range et.PropertyValues(instance) {
		fmt.Fprintf(b, `<d:%s>%s</d:%s>`, pv.Name, escape(fmt.Sprintf("%v", pv.Value)), pv.Name)
	}
	b.WriteString(`</content>`)
}

// entryID builds the canonical entity address from the first key when one
// resolves, falling back to a generated urn for keyless types.
func entryID(serviceRoot string, et *edm.EntityType, instance any) string {
	key, ok := et.KeyValue(instance)
	if !ok {
		return "urn:uuid:" + uuid.NewString()
	}

	return joinPath(serviceRoot, fmt.Sprintf("%s(%s)", et.CollectionName(), key))
}

func joinPath(serviceRoot, segment string) string {
	return strings.TrimSuffix(serviceRoot, "/") + "/" + segment
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
