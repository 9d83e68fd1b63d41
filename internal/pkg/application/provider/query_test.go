package provider

import (
	"testing"

	"github.com/diwise/odata-service/pkg/odata/edm"
	"github.com/matryer/is"
)

func TestBuildQueryStripsSingleLeadingSlash(t *testing.T) {
	is, registry := setupQueryTest(t)

	q, err := BuildQuery(registry, "/Dogs", DefaultOptionOrder())
	is.NoErr(err)

	is.Equal(q.CollectionName(), "Dogs")
}

func TestQueryResolvesEntityTypeFromCollectionName(t *testing.T) {
	is, registry := setupQueryTest(t)

	q, err := BuildQuery(registry, "Dogs", DefaultOptionOrder())
	is.NoErr(err)

	et, ok := q.EntityType()
	is.True(ok)
	is.Equal(et.Name(), "Dog")
}

func TestQueryAgainstUnknownCollectionResolvesNothing(t *testing.T) {
	is, registry := setupQueryTest(t)

	q, err := BuildQuery(registry, "Cats", DefaultOptionOrder())
	is.NoErr(err)

	_, ok := q.EntityType()
	is.True(!ok) // unknown resource must not resolve
}

func TestKeyInPathIsRecognized(t *testing.T) {
	is, registry := setupQueryTest(t)

	q, err := BuildQuery(registry, "Dogs(2)", DefaultOptionOrder())
	is.NoErr(err)

	is.Equal(len(q.Options()), 1)
	is.Equal(q.Options()[0], QueryOption{Kind: OptionKey, Value: "2"})
	is.Equal(q.CollectionName(), "Dogs")
	is.True(!q.ReturnsCollection())
}

func TestCollectionQueryHasNoKeyOption(t *testing.T) {
	is, registry := setupQueryTest(t)

	q, err := BuildQuery(registry, "Dogs", DefaultOptionOrder())
	is.NoErr(err)

	is.Equal(len(q.Options()), 0)
	is.True(q.ReturnsCollection())
}

func TestOptionsAreAttachedInRegistrationOrder(t *testing.T) {
	is, registry := setupQueryTest(t)

	// $top appears before $skip in the URL but the registered order is
	// key, skip, top
	q, err := BuildQuery(registry, "Dogs?$top=2&$skip=1", DefaultOptionOrder())
	is.NoErr(err)

	is.Equal(len(q.Options()), 2)
	is.Equal(q.Options()[0], QueryOption{Kind: OptionSkip, Value: "1"})
	is.Equal(q.Options()[1], QueryOption{Kind: OptionTop, Value: "2"})
}

func TestNonDollarParametersAreIgnored(t *testing.T) {
	is, registry := setupQueryTest(t)

	q, err := BuildQuery(registry, "Dogs?top=2&format=json", DefaultOptionOrder())
	is.NoErr(err)

	is.Equal(len(q.Options()), 0)
}

func TestKeyAndOptionsCombine(t *testing.T) {
	is, registry := setupQueryTest(t)

	q, err := BuildQuery(registry, "Dogs(1)?$top=1", DefaultOptionOrder())
	is.NoErr(err)

	is.Equal(len(q.Options()), 2)
	is.Equal(q.Options()[0].Kind, OptionKey)
	is.Equal(q.Options()[1].Kind, OptionTop)
}

func TestMalformedResourcePathIsRejected(t *testing.T) {
	is, registry := setupQueryTest(t)

	_, err := BuildQuery(registry, "://not a path", DefaultOptionOrder())
	is.True(err != nil) // malformed path should be rejected early
}

func setupQueryTest(t *testing.T) (*is.I, *edm.Registry) {
	is := is.New(t)

	registry, _, err := testDataModel()
	is.NoErr(err)

	return is, registry
}
