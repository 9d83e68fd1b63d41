package provider

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/diwise/odata-service/pkg/odata"
	"github.com/diwise/odata-service/pkg/odata/edm"
)

// OptionKind is a closed enumeration over the query option kinds this
// service understands. Executors match exhaustively over it, so adding a
// kind is a compile time checked extension point.
type OptionKind int

const (
	OptionKey OptionKind = iota
	OptionTop
	OptionSkip
)

func (k OptionKind) String() string {
	switch k {
	case OptionKey:
		return "key"
	case OptionTop:
		return "$top"
	case OptionSkip:
		return "$skip"
	default:
		return "unknown"
	}
}

// QueryOption is a typed value extracted from the request. The value is
// kept as the literal string it was captured as.
type QueryOption struct {
	Kind  OptionKind
	Value string
}

// DefaultOptionOrder is the order option kinds are recognized in, which is
// also the order executors apply them in. It is independent of the order
// options appear in the URL.
func DefaultOptionOrder() []OptionKind {
	return []OptionKind{OptionKey, OptionSkip, OptionTop}
}

// Query is the parsed, structured representation of one request: a target
// resource path and the ordered options recognized in it. The option list
// is populated once at construction and immutable afterwards.
type Query struct {
	registry *edm.Registry
	uri      *url.URL
	options  []QueryOption
}

// The key-in-path construct is recognized against the first path segment
// only, so it never matches in multi segment resource paths.
var keyInPathExp = regexp.MustCompile(`^([^(/]+)\(([^)]*)\)$`)

// BuildQuery parses a raw resource path (path plus query string) into a
// Query, running each option kind's recognizer in the given order. The only
// normalization performed is stripping a single leading slash.
func BuildQuery(registry *edm.Registry, rawResourcePath string, order []OptionKind) (*Query, error) {
	uri, err := url.Parse(rawResourcePath)
	if err != nil {
		return nil, odata.NewBadRequestError("unparseable resource path " + rawResourcePath)
	}

	uri.Path = strings.TrimPrefix(uri.Path, "/")

	q := &Query{
		registry: registry,
		uri:      uri,
	}

	for _, kind := range order {
		if opt, ok := recognize(kind, uri); ok {
			q.options = append(q.options, opt)
		}
	}

	return q, nil
}

func recognize(kind OptionKind, uri *url.URL) (QueryOption, bool) {
	switch kind {
	case OptionKey:
		first := strings.SplitN(uri.Path, "/", 2)[0]
		if m := keyInPathExp.FindStringSubmatch(first); m != nil {
			return QueryOption{Kind: OptionKey, Value: m[2]}, true
		}
	case OptionTop:
		if v, ok := dollarParam(uri, "$top"); ok {
			return QueryOption{Kind: OptionTop, Value: v}, true
		}
	case OptionSkip:
		if v, ok := dollarParam(uri, "$skip"); ok {
			return QueryOption{Kind: OptionSkip, Value: v}, true
		}
	}

	return QueryOption{}, false
}

// dollarParam returns the named query string parameter. Only keys starting
// with a dollar sign are option candidates at all.
func dollarParam(uri *url.URL, name string) (string, bool) {
	for key, values := range uri.Query() {
		if !strings.HasPrefix(key, "$") {
			continue
		}

		if key == name && len(values) > 0 {
			return values[0], true
		}
	}

	return "", false
}

// Options returns the recognized options in recognition order.
func (q *Query) Options() []QueryOption {
	return q.options
}

// CollectionName returns the last path segment minus any parenthesized key
// suffix.
func (q *Query) CollectionName() string {
	segments := strings.Split(q.uri.Path, "/")
	last := segments[len(segments)-1]

	if m := keyInPathExp.FindStringSubmatch(last); m != nil {
		return m[1]
	}

	return last
}

// EntityType resolves the query's target type by singularizing the
// collection name and looking it up in the registry. Resolution is
// recomputed on every call and performs no side effects.
func (q *Query) EntityType() (*edm.EntityType, bool) {
	return q.registry.GetEntityType(edm.Singularize(q.CollectionName()))
}

// ReturnsCollection reports whether the query targets a collection. This
// is a purely syntactic check on the URL: true iff the last path segment
// carries no entity key suffix.
func (q *Query) ReturnsCollection() bool {
	segments := strings.Split(q.uri.Path, "/")
	return !keyInPathExp.MatchString(segments[len(segments)-1])
}
