package provider

import (
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v2"
)

const (
	// ExecutorInMemory is the built in executor enumerating an in memory
	// sequence supplied at registration time.
	ExecutorInMemory string = "inmemory"
	// ExecutorPostgres lists entity rows from a configured table.
	ExecutorPostgres string = "postgres"
)

// EntitySetConfig binds one entity type to a named executor. The table
// setting only applies to the postgres executor.
type EntitySetConfig struct {
	Type     string `yaml:"type"`
	Executor string `yaml:"executor"`
	Table    string `yaml:"table,omitempty"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Port     string `yaml:"port"`
	DbName   string `yaml:"dbname"`
	SslMode  string `yaml:"sslmode"`
}

func (c PostgresConfig) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.DbName, c.SslMode)
}

type Config struct {
	Namespace  string            `yaml:"namespace"`
	EntitySets []EntitySetConfig `yaml:"entitySets"`
	Postgres   *PostgresConfig   `yaml:"postgres,omitempty"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}

// executorNameFor returns the configured executor binding for an entity
// type, if any.
func (cfg *Config) executorNameFor(entityType string) (EntitySetConfig, bool) {
	for _, es := range cfg.EntitySets {
		if es.Type == entityType {
			return es, true
		}
	}

	return EntitySetConfig{}, false
}
