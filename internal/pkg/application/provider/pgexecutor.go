package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/diwise/odata-service/pkg/odata"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresExecutor resolves the candidate set from a database table whose
// columns match the entity type's declared property names. Option
// application is shared with the in memory executor, so the observable
// semantics are identical regardless of backend.
type postgresExecutor struct {
	pool  *pgxpool.Pool
	table string
}

func NewPostgresExecutor(pool *pgxpool.Pool, table string) Executor {
	return &postgresExecutor{pool: pool, table: table}
}

func (e *postgresExecutor) Execute(ctx context.Context, query *Query) (*odata.Result, error) {
	et, ok := query.EntityType()
	if !ok {
		return nil, odata.NewNotFoundError(fmt.Sprintf("unknown resource %s", query.CollectionName()))
	}

	columns := make([]string, 0, len(et.Properties()))
	for _, p := range et.Properties() {
		columns = append(columns, p.Name)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), e.table)
	if len(et.Keys()) > 0 {
		sql += fmt.Sprintf(" ORDER BY %s", et.Keys()[0])
	}

	rows, err := e.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := make([]any, 0)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		instance := make(map[string]any, len(columns))
		for i, column := range columns {
			instance[column] = values[i]
		}

		entities = append(entities, instance)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resolve(et, entities, query)
}

// MapAccessor returns an accessor reading the named property from a
// map[string]any instance, which is what the postgres executor produces.
func MapAccessor(name string) func(instance any) any {
	return func(instance any) any {
		if m, ok := instance.(map[string]any); ok {
			return m[name]
		}
		return nil
	}
}

func connect(ctx context.Context, cfg PostgresConfig) (*pgxpool.Pool, error) {
	conn, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = conn.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return conn, nil
}
