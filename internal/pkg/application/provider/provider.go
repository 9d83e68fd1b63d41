package provider

import (
	"context"
	"fmt"

	"github.com/diwise/odata-service/pkg/odata"
	"github.com/diwise/odata-service/pkg/odata/atom"
	"github.com/diwise/odata-service/pkg/odata/edm"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

// Provider composes the schema registry, the per entity type executors and
// the document renderers. It is built once at startup and never mutated
// afterwards, which is what makes concurrent request handling safe without
// any locking in the core.
type Provider struct {
	registry    *edm.Registry
	executors   map[string]Executor
	optionOrder []OptionKind
	serviceRoot string
	namespace   string
}

// New wires a provider from its configuration. Every configuration problem
// (unknown executor names, bindings without a data source, bindings to
// unregistered types) is surfaced here and must abort startup; nothing is
// deferred to request time.
func New(ctx context.Context, cfg Config, registry *edm.Registry, sources map[string]EntitySource, serviceRoot string) (*Provider, error) {
	log := logging.GetFromContext(ctx)

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "DataServices"
	}

	p := &Provider{
		registry:    registry,
		executors:   map[string]Executor{},
		optionOrder: DefaultOptionOrder(),
		serviceRoot: serviceRoot,
		namespace:   namespace,
	}

	for _, es := range cfg.EntitySets {
		if _, ok := registry.GetEntityType(es.Type); !ok {
			return nil, fmt.Errorf("configuration binds unregistered entity type %s", es.Type)
		}
	}

	for _, et := range registry.EntityTypes() {
		executor, err := buildExecutor(ctx, cfg, et, sources)
		if err != nil {
			return nil, err
		}

		p.executors[et.Name()] = executor
		log.Debug("registered entity set", "collection", et.CollectionName())
	}

	return p, nil
}

func buildExecutor(ctx context.Context, cfg Config, et *edm.EntityType, sources map[string]EntitySource) (Executor, error) {
	name := et.ExecutorName()
	table := edm.Pluralize(et.Name())

	if es, ok := cfg.executorNameFor(et.Name()); ok {
		name = es.Executor
		if es.Table != "" {
			table = es.Table
		}
	}

	if name == "" {
		name = ExecutorInMemory
	}

	switch name {
	case ExecutorInMemory:
		source, ok := sources[et.Name()]
		if !ok {
			return nil, fmt.Errorf("no entity source registered for type %s", et.Name())
		}
		return NewEnumerationExecutor(source), nil
	case ExecutorPostgres:
		if cfg.Postgres == nil {
			return nil, fmt.Errorf("entity type %s is bound to the postgres executor but no postgres settings are configured", et.Name())
		}
		pool, err := connect(ctx, *cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return NewPostgresExecutor(pool, table), nil
	default:
		return nil, fmt.Errorf("unknown executor %s configured for entity type %s", name, et.Name())
	}
}

// BuildQuery parses a root relative resource path into a Query using the
// provider's option recognition order.
func (p *Provider) BuildQuery(rawResourcePath string) (*Query, error) {
	return BuildQuery(p.registry, rawResourcePath, p.optionOrder)
}

// Execute dispatches the query to its entity type's executor.
func (p *Provider) Execute(ctx context.Context, query *Query) (*odata.Result, error) {
	et, ok := query.EntityType()
	if !ok {
		return nil, odata.NewNotFoundError(fmt.Sprintf("unknown resource %s", query.CollectionName()))
	}

	return p.executors[et.Name()].Execute(ctx, query)
}

// Resolve builds and executes a query in one call.
func (p *Provider) Resolve(ctx context.Context, rawResourcePath string) (*Query, *odata.Result, error) {
	query, err := p.BuildQuery(rawResourcePath)
	if err != nil {
		return nil, nil, err
	}

	result, err := p.Execute(ctx, query)
	if err != nil {
		return query, nil, err
	}

	return query, result, nil
}

func (p *Provider) ServiceDocument() []byte {
	return atom.ServiceDocument(p.registry)
}

func (p *Provider) MetadataDocument() []byte {
	return atom.MetadataDocument(p.registry, p.namespace)
}

// Render turns an executed query into its feed or entry document.
func (p *Provider) Render(query *Query, result *odata.Result) ([]byte, error) {
	et, ok := query.EntityType()
	if !ok {
		return nil, odata.NewNotFoundError(fmt.Sprintf("unknown resource %s", query.CollectionName()))
	}

	if result.IsCollection() {
		return atom.Feed(p.serviceRoot, et, result.Entities()), nil
	}

	return atom.Entry(p.serviceRoot, et, result.Entity()), nil
}

func (p *Provider) Registry() *edm.Registry {
	return p.registry
}

func (p *Provider) ServiceRoot() string {
	return p.serviceRoot
}
