package extractors

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"cherrypick/internal/db"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// pgExtractor implements Extractor using information_schema queries.
type pgExtractor struct{}

var pgQueries = catalogQueries{
	columns: `
        SELECT c.table_schema, c.table_name, c.column_name, c.data_type, c.ordinal_position
        FROM information_schema.columns c
        JOIN information_schema.tables t
          ON t.table_schema = c.table_schema
         AND t.table_name = c.table_name
        WHERE c.table_schema = $1
          AND t.table_type = 'BASE TABLE'
        ORDER BY c.table_name, c.ordinal_position`,
	primaryKeys: `
        SELECT kcu.table_schema, kcu.table_name, kcu.column_name
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.table_schema = kcu.table_schema
         AND tc.table_name = kcu.table_name
        WHERE tc.constraint_type = 'PRIMARY KEY'
          AND tc.table_schema = $1
        ORDER BY kcu.table_name, kcu.ordinal_position`,
	foreignKeys: `
        SELECT
          tc.constraint_name,
          kcu.table_schema from_schema,
          kcu.table_name from_table,
          kcu.column_name from_column,
          rkcu.table_schema to_schema,
          rkcu.table_name to_table,
          rkcu.column_name to_column
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.constraint_schema = kcu.constraint_schema
         AND tc.table_name = kcu.table_name
        JOIN information_schema.referential_constraints rc
          ON tc.constraint_name = rc.constraint_name
         AND tc.constraint_schema = rc.constraint_schema
        JOIN information_schema.key_column_usage rkcu
          ON rc.unique_constraint_name = rkcu.constraint_name
         AND rc.unique_constraint_schema = rkcu.constraint_schema
         AND kcu.position_in_unique_constraint = rkcu.ordinal_position
        WHERE tc.constraint_type = 'FOREIGN KEY'
          AND tc.table_schema = $1
        ORDER BY kcu.table_name, tc.constraint_name, kcu.ordinal_position`,
}

// This is the extractor for PostgreSQL
func (pgExtractor) Extract(ctx context.Context, dbConn *sql.DB, schema string) (introspect.Catalog, error) {
	return extractCatalog(ctx, dbConn, pgQueries, schema)
}

func init() {
	pg := db.Dialect{
		Name:          "postgres",
		Driver:        "postgres",
		DefaultSchema: "public",
		Placeholder:   sq.Dollar,
		Quote:         db.QuotePostgres,
		Literals:      value.StylePostgres,
		Extractor:     pgExtractor{},
	}
	db.Register("postgres", pg)

	pgx := pg
	pgx.Name = "pgx"
	pgx.Driver = "pgx"
	db.Register("pgx", pgx)
}
