package odata

// Result is the outcome of executing a query: either a single entity
// instance or a sequence of them. "No result" is expressed by the executor
// returning an error matching ErrNotFound instead of a Result.
type Result struct {
	entity     any
	entities   []any
	collection bool
}

func NewEntityResult(entity any) *Result {
	return &Result{
		entity: entity,
	}
}

func NewCollectionResult(entities []any) *Result {
	return &Result{
		entities:   entities,
		collection: true,
	}
}

// IsCollection reports whether the result holds a sequence. This mirrors
// the query's syntactic shape, not the number of entities found.
func (r *Result) IsCollection() bool {
	return r.collection
}

// Entity returns the single resolved instance. Callers asking for a single
// entry get exactly one object, never a one element sequence.
func (r *Result) Entity() any {
	return r.entity
}

func (r *Result) Entities() []any {
	return r.entities
}
