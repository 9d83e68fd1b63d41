package provider

import (
	"context"

	"github.com/diwise/odata-service/pkg/odata/edm"
)

type dog struct {
	ID    int
	Name  string
	Breed string
}

func testDataModel() (*edm.Registry, map[string]EntitySource, error) {
	et, err := edm.NewEntityType("Dog",
		edm.Key("id"),
		edm.P("id", edm.Int32, func(instance any) any { return instance.(dog).ID }),
		edm.P("name", edm.String, func(instance any) any { return instance.(dog).Name }),
		edm.P("breed", edm.String, func(instance any) any { return instance.(dog).Breed }),
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

	sources := map[string]EntitySource{
		"Dog": func(ctx context.Context) ([]any, error) { return dogs, nil },
	}

	return registry, sources, nil
}
