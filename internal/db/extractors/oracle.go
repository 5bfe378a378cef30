//go:build oracle
// +build oracle

package extractors

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/godror/godror"

	"cherrypick/internal/db"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// oracleExtractor implements Extractor for Oracle. The schema is the owner.
type oracleExtractor struct{}

var oracleQueries = catalogQueries{
	columns: `
        SELECT c.owner, c.table_name, c.column_name, c.data_type, c.column_id
        FROM all_tab_columns c
        JOIN all_tables t
          ON t.owner = c.owner
         AND t.table_name = c.table_name
        WHERE c.owner = :1
        ORDER BY c.table_name, c.column_id`,
	primaryKeys: `
        SELECT acc.owner, acc.table_name, acc.column_name
        FROM all_cons_columns acc
        JOIN all_constraints ac
          ON acc.owner = ac.owner
         AND acc.constraint_name = ac.constraint_name
        WHERE ac.constraint_type = 'P'
          AND acc.owner = :1
        ORDER BY acc.table_name, acc.position`,
	foreignKeys: `
        SELECT a.constraint_name,
               acc.owner AS from_schema, acc.table_name AS from_table, acc.column_name AS from_column,
               rcc.owner AS to_schema, rcc.table_name AS to_table, rcc.column_name AS to_column
        FROM all_constraints a
        JOIN all_cons_columns acc
          ON a.owner = acc.owner
         AND a.constraint_name = acc.constraint_name
        JOIN all_cons_columns rcc
          ON a.r_owner = rcc.owner
         AND a.r_constraint_name = rcc.constraint_name
         AND nvl(acc.position, 0) = nvl(rcc.position, 0)
        WHERE a.constraint_type = 'R'
          AND a.owner = :1
        ORDER BY acc.table_name, a.constraint_name, acc.position`,
}

// This is the extractor for Oracle
func (oracleExtractor) Extract(ctx context.Context, dbConn *sql.DB, schema string) (introspect.Catalog, error) {
	return extractCatalog(ctx, dbConn, oracleQueries, schema)
}

func init() {
	db.Register("godror", db.Dialect{
		Name:        "godror",
		Driver:      "godror",
		Placeholder: sq.Colon,
		Quote:       db.QuoteANSI,
		Literals:    value.StyleOracle,
		Extractor:   oracleExtractor{},
	})
}
