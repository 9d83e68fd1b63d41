package provider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/diwise/odata-service/pkg/odata"
	"github.com/diwise/odata-service/pkg/odata/edm"
)

// Executor is the pluggable backend that resolves a Query against a
// concrete data source.
type Executor interface {
	Execute(ctx context.Context, query *Query) (*odata.Result, error)
}

// EntitySource produces the full candidate set for one entity type.
type EntitySource func(ctx context.Context) ([]any, error)

// enumerationExecutor is the built in executor: it enumerates an in memory
// sequence supplied by a source callback and applies the query's options
// in process. One instance serves one entity type and holds no cross
// request state.
type enumerationExecutor struct {
	source EntitySource
}

func NewEnumerationExecutor(source EntitySource) Executor {
	return &enumerationExecutor{source: source}
}

func (e *enumerationExecutor) Execute(ctx context.Context, query *Query) (*odata.Result, error) {
	et, ok := query.EntityType()
	if !ok {
		return nil, odata.NewNotFoundError(fmt.Sprintf("unknown resource %s", query.CollectionName()))
	}

	entities, err := e.source(ctx)
	if err != nil {
		return nil, err
	}

	return resolve(et, entities, query)
}

// resolve applies the query's options to the candidate set and shapes the
// result. Shared by all executor implementations.
func resolve(et *edm.EntityType, entities []any, query *Query) (*odata.Result, error) {
	entities, err := applyOptions(et, entities, query.Options())
	if err != nil {
		return nil, err
	}

	if len(entities) == 0 {
		return nil, odata.NewNotFoundError(fmt.Sprintf("no matching entities in %s", query.CollectionName()))
	}

	if query.ReturnsCollection() {
		return odata.NewCollectionResult(entities), nil
	}

	return odata.NewEntityResult(entities[0]), nil
}

// applyOptions applies each option in the order it was attached to the
// query, which is option type registration order rather than URL
// appearance order.
func applyOptions(et *edm.EntityType, entities []any, options []QueryOption) ([]any, error) {
	for _, opt := range options {
		switch opt.Kind {
		case OptionKey:
			entities = filterByKey(et, entities, opt.Value)
		case OptionTop:
			// a value that fails to parse behaves as 0, which empties
			// the result
			n, _ := strconv.Atoi(opt.Value)
			if n <= 0 {
				entities = nil
			} else if n < len(entities) {
				entities = entities[:n]
			}
		case OptionSkip:
			n, _ := strconv.Atoi(opt.Value)
			if n >= len(entities) {
				entities = nil
			} else if n > 0 {
				entities = entities[n:]
			}
		default:
			return nil, odata.NewUnsupportedOptionError(opt.Kind.String())
		}
	}

	return entities, nil
}

// filterByKey retains the entities whose first declared key, stringified,
// equals the option value. Composite keys are not disambiguated.
func filterByKey(et *edm.EntityType, entities []any, key string) []any {
	matches := make([]any, 0, 1)

	for _, instance := range entities {
		if v, ok := et.KeyValue(instance); ok && v == key {
			matches = append(matches, instance)
		}
	}

	return matches
}
