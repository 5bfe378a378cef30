package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Type         string `yaml:"type" json:"type" env:"CHERRYPICK_DB_TYPE"`
	Host         string `yaml:"host" json:"host" env:"CHERRYPICK_DB_HOST"`
	Port         int    `yaml:"port" json:"port" env:"CHERRYPICK_DB_PORT"`
	Username     string `yaml:"username" json:"username" env:"CHERRYPICK_DB_USER"`
	Password     string `yaml:"password" json:"password" env:"CHERRYPICK_DB_PASSWORD"`
	DatabaseName string `yaml:"database_name" json:"database_name" env:"CHERRYPICK_DB_NAME"`
	DSN          string `yaml:"dsn" json:"dsn" env:"CHERRYPICK_DSN"` // optional explicit DSN
}

// PickConfig holds defaults for a cherry-pick run. Every field can be
// overridden on the command line.
type PickConfig struct {
	Schema       string `yaml:"schema" json:"schema" env:"CHERRYPICK_SCHEMA"`
	Output       string `yaml:"output" json:"output" env:"CHERRYPICK_OUTPUT"`
	LabelColumns string `yaml:"label_columns" json:"label_columns" env:"CHERRYPICK_LABEL_COLUMNS"`
	Timeout      int    `yaml:"timeout" json:"timeout" env:"CHERRYPICK_TIMEOUT"`
	LogLevel     string `yaml:"log_level" json:"log_level" env:"CHERRYPICK_LOG_LEVEL"`
}

type AppConfig struct {
	Database DBConfig   `yaml:"database" json:"database"`
	Pick     PickConfig `yaml:"pick" json:"pick"`
}

// LoadFile loads YAML config from path.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays CHERRYPICK_* environment variables onto cfg.
func ApplyEnv(cfg *AppConfig) error {
	return cleanenv.ReadEnv(cfg)
}

// NormalizeDriver maps common aliases to canonical keys (keeps backwards compat).
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "postgresql", "pg", "postgres":
		return "postgres"
	case "pgx":
		return "pgx"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mssql", "sqlserver":
		return "sqlserver"
	case "godror", "oracle":
		return "godror"
	default:
		return strings.ToLower(d)
	}
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB types.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	// If explicit DSN provided, user must also set Type to choose driver or we guess
	t := NormalizeDriver(db.Type)

	if db.DSN != "" {
		return t, db.DSN, nil
	}

	switch t {
	case "postgres", "pgx":
		driver = t
		// simple URL form
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "mysql":
		driver = "mysql"
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		driver = "sqlite"
		if db.DatabaseName == "" {
			return "", "", fmt.Errorf("sqlite needs a file path in database_name")
		}
		dsn = fmt.Sprintf("file:%s?mode=ro", db.DatabaseName)
	case "sqlserver":
		driver = "sqlserver"
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		driver = "godror"
		// simple EZCONNECT style; may need adjustments per environment
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		err = fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return
}

// OutputMode selects what a run prints.
type OutputMode string

const (
	OutputInsert   OutputMode = "insert-statement"
	OutputGraphviz OutputMode = "graphviz"
)

// ParseOutputMode validates an output mode name. Empty means insert statements.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(strings.TrimSpace(s)) {
	case "", OutputInsert:
		return OutputInsert, nil
	case OutputGraphviz:
		return OutputGraphviz, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want %s or %s)", s, OutputInsert, OutputGraphviz)
	}
}

var errLabelSyntax = errors.New("want table:col1|col2,table2:col3")

// ParseLabelColumns parses "table:col1|col2,table2:col3" into a per-table
// list of columns to show on graph nodes.
func ParseLabelColumns(s string) (map[string][]string, error) {
	out := make(map[string][]string)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, entry := range strings.Split(s, ",") {
		table, cols, ok := strings.Cut(strings.TrimSpace(entry), ":")
		table = strings.TrimSpace(table)
		if !ok || table == "" {
			return nil, fmt.Errorf("label columns entry %q: %w", entry, errLabelSyntax)
		}
		for _, col := range strings.Split(cols, "|") {
			col = strings.TrimSpace(col)
			if col == "" {
				return nil, fmt.Errorf("label columns entry %q: empty column: %w", entry, errLabelSyntax)
			}
			out[table] = append(out[table], col)
		}
	}
	return out, nil
}
