package edm

import (
	"fmt"
	"strings"
)

// EDM primitive type names used in property declarations and in the
// generated metadata document.
const (
	Boolean  string = "Edm.Boolean"
	DateTime string = "Edm.DateTime"
	Decimal  string = "Edm.Decimal"
	Int32    string = "Edm.Int32"
	Int64    string = "Edm.Int64"
	String   string = "Edm.String"
)

// AccessorFunc returns the value of one declared property for a given
// entity instance.
type AccessorFunc func(instance any) any

// Property declares one named, typed property of an entity type. The type
// is serialization metadata only and is never enforced against values.
type Property struct {
	Name string
	Type string
}

// EntityType describes one kind of resource: its name, identity keys and
// declared properties, together with an accessor table that maps property
// names to getters. Entity types are declared once at startup and are
// immutable afterwards.
type EntityType struct {
	name       string
	keys       []string
	properties []Property
	accessors  map[string]AccessorFunc
	executor   string
}

type EntityTypeDecoratorFunc func(et *EntityType)

// NewEntityType declares an entity type with the given singular name.
func NewEntityType(name string, decorators ...EntityTypeDecoratorFunc) (*EntityType, error) {
	if name == "" {
		return nil, fmt.Errorf("entity type name must not be empty")
	}

	et := &EntityType{
		name:      name,
		accessors: map[string]AccessorFunc{},
	}

	for _, decorator := range decorators {
		decorator(et)
	}

	for _, key := range et.keys {
		if _, ok := et.accessors[key]; !ok {
			return nil, fmt.Errorf("entity type %s declares key %s without a matching property", name, key)
		}
	}

	return et, nil
}

// Key appends the named properties to the entity type's ordered key set.
// Only the first key takes part in key based lookup.
func Key(names ...string) EntityTypeDecoratorFunc {
	return func(et *EntityType) {
		et.keys = append(et.keys, names...)
	}
}

// P declares a property with its accessor. Declaration order is preserved
// in metadata and in all rendered documents.
func P(name, edmType string, accessor AccessorFunc) EntityTypeDecoratorFunc {
	return func(et *EntityType) {
		et.properties = append(et.properties, Property{Name: name, Type: edmType})
		et.accessors[name] = accessor
	}
}

// WithExecutor names the executor that should resolve queries against this
// entity type. Types without an explicit executor use the provider default.
func WithExecutor(name string) EntityTypeDecoratorFunc {
	return func(et *EntityType) {
		et.executor = name
	}
}

func (et *EntityType) Name() string {
	return et.name
}

// CollectionName returns the pluralized name used as the URL segment for
// the entity type's collection.
func (et *EntityType) CollectionName() string {
	return Pluralize(et.name)
}

func (et *EntityType) Keys() []string {
	return et.keys
}

func (et *EntityType) Properties() []Property {
	return et.properties
}

func (et *EntityType) ExecutorName() string {
	return et.executor
}

// Value resolves the named property against an instance via the accessor
// table built at declaration time.
func (et *EntityType) Value(instance any, property string) (any, error) {
	accessor, ok := et.accessors[property]
	if !ok {
		return nil, fmt.Errorf("entity type %s has no property named %s", et.name, property)
	}

	return accessor(instance), nil
}

// KeyValue returns the stringified value of the instance's first declared
// key, or false when the type declares no keys.
func (et *EntityType) KeyValue(instance any) (string, bool) {
	if len(et.keys) == 0 {
		return "", false
	}

	v, err := et.Value(instance, et.keys[0])
	if err != nil {
		return "", false
	}

	return fmt.Sprintf("%v", v), true
}

// PropertyValues returns the instance's properties as an ordered sequence
// of name/value pairs, in declaration order.
func (et *EntityType) PropertyValues(instance any) PropertyValueList {
	values := make(PropertyValueList, 0, len(et.properties))

	for _, p := range et.properties {
		v, _ := et.Value(instance, p.Name)
		values = append(values, PropertyValue{Name: p.Name, Value: v})
	}

	return values
}

// Registry is the provider's type table. It is populated once at startup
// and treated as read only afterwards, so it is safe to share between
// concurrent requests without locking.
type Registry struct {
	types []*EntityType
	index map[string]*EntityType
}

func NewRegistry(entityTypes ...*EntityType) (*Registry, error) {
	r := &Registry{
		index: map[string]*EntityType{},
	}

	for _, et := range entityTypes {
		if _, exists := r.index[et.name]; exists {
			return nil, fmt.Errorf("entity type %s registered twice", et.name)
		}

		r.types = append(r.types, et)
		r.index[et.name] = et
	}

	return r, nil
}

// GetEntityType looks up a type by its declared singular name. A miss is
// not an error; callers must treat it as an unknown resource.
func (r *Registry) GetEntityType(name string) (*EntityType, bool) {
	et, ok := r.index[name]
	return et, ok
}

// EntityTypes returns all registered types in registration order.
func (r *Registry) EntityTypes() []*EntityType {
	return r.types
}

// Pluralize converts a singular entity type name to its collection form.
func Pluralize(name string) string {
	switch {
	case strings.HasSuffix(name, "y") && !hasVowelBeforeSuffix(name, "y"):
		return name[:len(name)-1] + "ies"
	case strings.HasSuffix(name, "s"), strings.HasSuffix(name, "x"),
		strings.HasSuffix(name, "z"), strings.HasSuffix(name, "ch"),
		strings.HasSuffix(name, "sh"):
		return name + "es"
	default:
		return name + "s"
	}
}

// Singularize is the inverse of Pluralize for the names it produces.
func Singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ches"), strings.HasSuffix(name, "shes"),
		strings.HasSuffix(name, "xes"), strings.HasSuffix(name, "zes"),
		strings.HasSuffix(name, "ses"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s"):
		return name[:len(name)-1]
	default:
		return name
	}
}

func hasVowelBeforeSuffix(name, suffix string) bool {
	trimmed := strings.TrimSuffix(name, suffix)
	if trimmed == "" {
		return false
	}

	return strings.ContainsRune("aeiouAEIOU", rune(trimmed[len(trimmed)-1]))
}
