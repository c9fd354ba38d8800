package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Error reports an invalid monitoring configuration. Configuration errors
// are fatal: they are surfaced before any comparison starts.
type Error struct {
	Table  string
	Reason string
}

func (e *Error) Error() string {
	if e.Table == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config: table %s: %s", e.Table, e.Reason)
}

// TableSpec describes one monitored table: its primary key, the columns
// subject to change detection and an optional row filter applied when the
// snapshot is read.
type TableSpec struct {
	Name       string            `yaml:"-"`
	PrimaryKey StringList        `yaml:"primary_key"`
	Columns    []string          `yaml:"columns"`
	Filter     string            `yaml:"filter,omitempty"`
	FieldNames map[string]string `yaml:"field_names,omitempty"`
}

// StringList accepts either a single YAML scalar or a sequence, so a
// composite primary key can be written as a list while the common
// single-column case stays a plain string.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = StringList{v}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = StringList(v)
		return nil
	default:
		return fmt.Errorf("primary_key must be a string or a list of strings")
	}
}

// Config is the full monitoring configuration: which tables to compare
// and, per table, which columns to watch.
type Config struct {
	SchemaPrefix string               `yaml:"schema_prefix,omitempty"`
	Tables       map[string]TableSpec `yaml:"tables"`
}

// Load reads and validates a monitoring configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a monitoring configuration.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for name, spec := range c.Tables {
		spec.Name = name
		c.Tables[name] = spec
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the configuration for structural problems. It returns a
// *Error describing the first problem found.
func (c *Config) Validate() error {
	if len(c.Tables) == 0 {
		return &Error{Reason: "no tables configured"}
	}
	for name, spec := range c.Tables {
		if strings.TrimSpace(name) == "" {
			return &Error{Reason: "empty table name"}
		}
		if len(spec.PrimaryKey) == 0 {
			return &Error{Table: name, Reason: "primary_key is required"}
		}
		for _, pk := range spec.PrimaryKey {
			if strings.TrimSpace(pk) == "" {
				return &Error{Table: name, Reason: "empty primary key column"}
			}
		}
		if len(spec.Columns) == 0 {
			return &Error{Table: name, Reason: "columns must not be empty"}
		}
		seen := make(map[string]struct{}, len(spec.Columns))
		for _, col := range spec.Columns {
			if strings.TrimSpace(col) == "" {
				return &Error{Table: name, Reason: "empty column name"}
			}
			if _, dup := seen[col]; dup {
				return &Error{Table: name, Reason: fmt.Sprintf("duplicate column %q", col)}
			}
			seen[col] = struct{}{}
		}
		if strings.Contains(spec.Filter, ";") {
			return &Error{Table: name, Reason: "filter must be a single WHERE clause fragment"}
		}
	}
	return nil
}

// TableNames returns the configured table names.
func (c *Config) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	return names
}

// DB holds connection settings for the relational snapshot store and the
// MongoDB audit store, loaded from the environment.
type DB struct {
	PostgresDSN     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// DBFromEnv reads connection settings from the environment, applying the
// same defaults the original tooling used.
func DBFromEnv() DB {
	return DB{
		PostgresDSN:     envOr("POSTGRES_DSN", "postgres://postgres@localhost:5432/postgres?sslmode=disable"),
		MongoURI:        envOr("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   envOr("MONGODB_DATABASE", "audit_db"),
		MongoCollection: envOr("MONGODB_COLLECTION", "data_changes"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
