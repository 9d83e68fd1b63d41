package main

import (
	"context"

	"github.com/diwise/odata-service/internal/pkg/application/provider"
	"github.com/diwise/odata-service/pkg/odata/edm"
)

type Dog struct {
	ID    int
	Name  string
	Breed string
}

type Owner struct {
	ID   int
	Name string
}

// newDataModel declares the entity schema served by this instance together
// with the in memory sources backing the default executor. A deployment
// that binds a type to the postgres executor in its configuration file
// only needs the schema part.
func newDataModel() (*edm.Registry, map[string]provider.EntitySource, error) {

	dog, err := edm.NewEntityType("Dog",
		edm.Key("id"),
		edm.P("id", edm.Int32, func(instance any) any { return instance.(Dog).ID }),
		edm.P("name", edm.String, func(instance any) any { return instance.(Dog).Name }),
		edm.P("breed", edm.String, func(instance any) any { return instance.(Dog).Breed }),
	)
	if err != nil {
		return nil, nil, err
	}

	owner, err := edm.NewEntityType("Owner",
		edm.Key("id"),
		edm.P("id", edm.Int32, func(instance any) any { return instance.(Owner).ID }),
		edm.P("name", edm.String, func(instance any) any { return instance.(Owner).Name }),
	)
	if err != nil {
		return nil, nil, err
	}

	registry, err := edm.NewRegistry(dog, owner)
	if err != nil {
		return nil, nil, err
	}

	dogs := []any{
		Dog{ID: 1, Name: "Rex", Breed: "Labrador"},
		Dog{ID: 2, Name: "Fido", Breed: "Beagle"},
		Dog{ID: 3, Name: "Spot", Breed: "Dalmatian"},
	}

	owners := []any{
		Owner{ID: 1, Name: "Kim"},
	}

	sources := map[string]provider.EntitySource{
		"Dog":   func(ctx context.Context) ([]any, error) { return dogs, nil },
		"Owner": func(ctx context.Context) ([]any, error) { return owners, nil },
	}

	return registry, sources, nil
}
