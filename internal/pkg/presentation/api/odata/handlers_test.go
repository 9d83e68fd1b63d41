package odata

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diwise/odata-service/internal/pkg/application/provider"
	"github.com/diwise/odata-service/pkg/odata/edm"
	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"
)

func TestGetServiceDocument(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), ContentTypeXML)
	is.True(strings.Contains(body, `<collection href="Dogs">`))
}

func TestGetMetadataDocument(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/$metadata")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.Contains(body, `<EntityType Name="Dog">`))
	is.True(strings.Contains(body, `<PropertyRef Name="id"/>`))
}

func TestGetCollectionReturnsFeed(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/Dogs")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), ContentTypeAtomXML)
	is.Equal(strings.Count(body, "<entry>"), 3)
}

func TestGetEntryByKey(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/Dogs(2)")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.HasPrefix(body, `<?xml version="1.0" encoding="utf-8"?><entry`))
	is.True(strings.Contains(body, "<d:name>Fido</d:name>"))
}

func TestGetEntryWithUnknownKeyReturnsNotFound(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "/Dogs(9)")

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestGetUnknownCollectionReturnsNotFound(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "/Unicorns")

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestTopLimitsFeed(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/Dogs?$top=1")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(strings.Count(body, "<entry>"), 1)
	is.True(strings.Contains(body, "<d:name>Rex</d:name>"))
}

func TestSkipPastEndReturnsNotFound(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "/Dogs?$skip=5")

	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestSkipAndTopCombine(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/Dogs?$top=1&$skip=1")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(strings.Count(body, "<entry>"), 1)
	is.True(strings.Contains(body, "<d:name>Fido</d:name>"))
}

func TestJSONFormatBypassesRenderer(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/Dogs?format=json")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), ContentTypeJSON)
	is.Equal(body, `[{"id":1,"name":"Rex"},{"id":2,"name":"Fido"},{"id":3,"name":"Spot"}]`)
}

func TestYAMLFormat(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/Dogs(1)?format=yaml")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), ContentTypeYAML)
	is.Equal(body, "id: 1\nname: Rex\n")
}

func TestXMLFormat(t *testing.T) {
	is, ts := setupTest(t, "/")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/Dogs?format=xml")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), ContentTypePlainXML)
	is.Equal(strings.Count(body, "<Dog>"), 3)
	is.True(strings.HasPrefix(body, "<Dogs>"))
}

func TestMountedServiceRootIsStrippedBeforeTheCore(t *testing.T) {
	is, ts := setupTest(t, "/odata")
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/odata/Dogs")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(strings.Count(body, "<entry>"), 3)
}

func newTestRequest(is *is.I, ts *httptest.Server, path string) (*http.Response, string) {
	resp, err := http.Get(ts.URL + path)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	is.NoErr(err) // failed to read response body

	return resp, string(respBody)
}

func setupTest(t *testing.T, serviceRoot string) (*is.I, *httptest.Server) {
	is := is.New(t)
	ctx := context.Background()

	registry, sources, err := testDataModel()
	is.NoErr(err)

	p, err := provider.New(ctx, provider.Config{}, registry, sources, serviceRoot)
	is.NoErr(err)

	r := chi.NewRouter()
	err = RegisterHandlers(ctx, r, serviceRoot, p)
	is.NoErr(err)

	return is, httptest.NewServer(r)
}

func testDataModel() (*edm.Registry, map[string]provider.EntitySource, error) {
	type dog struct {
		ID   int
		Name string
	}

	et, err := edm.NewEntityType("Dog",
		edm.Key("id"),
		edm.P("id", edm.Int32, func(instance any) any { return instance.(dog).ID }),
		edm.P("name", edm.String, func(instance any) any { return instance.(dog).Name }),
	)
	if err != nil {
		return nil, nil, err
	}

	registry, err := edm.NewRegistry(et)
	if err != nil {
		return nil, nil, err
	}

	dogs := []any{
		dog{ID: 1, Name: "Rex"},
		dog{ID: 2, Name: "Fido"},
		dog{ID: 3, Name: "Spot"},
	}

	sources := map[string]provider.EntitySource{
		"Dog": func(ctx context.Context) ([]any, error) { return dogs, nil },
	}

	return registry, sources, nil
}
