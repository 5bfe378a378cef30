package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
	"cherrypick/pkg/config"
)

type Extractor interface {

	// Extract reads the column, primary key and foreign key catalog of one schema
	Extract(ctx context.Context, db *sql.DB, schema string) (introspect.Catalog, error)
}

// Dialect bundles what the rest of the tool needs to know about one database flavour.
type Dialect struct {
	Name          string
	Driver        string // database/sql driver name
	DefaultSchema string
	Placeholder   sq.PlaceholderFormat
	Quote         func(ident string) string
	Literals      value.Style // spelling of booleans, byte strings and infinities
	Extractor     Extractor
}

// QualifiedName returns the quoted schema.table reference for id.
func (d Dialect) QualifiedName(id introspect.TableIdentity) string {
	if id.Schema == "" {
		return d.Quote(id.Name)
	}
	return d.Quote(id.Schema) + "." + d.Quote(id.Name)
}

var dialects = map[string]Dialect{}

// Register makes a Dialect available under name.
func Register(name string, d Dialect) {
	dialects[strings.ToLower(name)] = d
}

// listRegistered returns the registered dialect keys (for diagnostics).
func listRegistered() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the dialect registered for driver or one of its aliases.
func Lookup(driver string) (Dialect, error) {
	d, ok := dialects[config.NormalizeDriver(driver)]
	if !ok {
		return Dialect{}, fmt.Errorf("dialect not registered: %q (available: %v)", driver, listRegistered())
	}
	return d, nil
}

// Open connects to the database and verifies the connection within timeoutSec.
// The pool is capped at one connection; the traversal never runs queries concurrently.
func Open(driver, dsn string, timeoutSec int) (*sql.DB, Dialect, error) {
	d, err := Lookup(driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	dbConn, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, err
	}
	dbConn.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		dbConn.Close()
		return nil, Dialect{}, err
	}
	return dbConn, d, nil
}

// LoadRegistry extracts the catalog of schema and builds the table registry.
// Any failure is reported as a SchemaLoadError and no registry is returned.
func LoadRegistry(ctx context.Context, dbConn *sql.DB, d Dialect, schema string, log *zap.Logger) (*introspect.Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	catalog, err := d.Extractor.Extract(ctx, dbConn, schema)
	if err != nil {
		return nil, &SchemaLoadError{Schema: schema, Err: err}
	}
	reg, err := introspect.BuildRegistry(catalog, log)
	if err != nil {
		return nil, &SchemaLoadError{Schema: schema, Err: err}
	}
	log.Debug("schema registry loaded",
		zap.String("dialect", d.Name),
		zap.String("schema", schema),
		zap.Int("tables", reg.Len()),
		zap.Int("foreign_keys", len(catalog.ForeignKeys)))
	return reg, nil
}

// RegisteredDialects is a helper that allows main to print registered dialects
func RegisteredDialects() []string {
	return listRegistered()
}
