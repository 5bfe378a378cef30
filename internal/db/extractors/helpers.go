package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"cherrypick/internal/introspect"
)

// catalogQueries holds the three catalog queries of a dialect. Each takes the
// schema name as its only argument.
type catalogQueries struct {
	columns     string // schema, table, column, data type, ordinal position
	primaryKeys string // schema, table, column
	foreignKeys string // constraint, from schema/table/column, to schema/table/column
}

// extractCatalog runs the three queries in order and fails on the first error.
func extractCatalog(ctx context.Context, dbConn *sql.DB, q catalogQueries, schemaArg any) (introspect.Catalog, error) {
	var c introspect.Catalog

	cr, err := dbConn.QueryContext(ctx, q.columns, schemaArg)
	if err != nil {
		return c, fmt.Errorf("query columns: %w", err)
	}
	for cr.Next() {
		var col introspect.CatalogColumn
		if err := cr.Scan(&col.Schema, &col.Table, &col.Name, &col.DataType, &col.Position); err != nil {
			cr.Close()
			return c, fmt.Errorf("scan column: %w", err)
		}
		c.Columns = append(c.Columns, col)
	}
	if err := closeRows(cr, "columns"); err != nil {
		return c, err
	}

	pkr, err := dbConn.QueryContext(ctx, q.primaryKeys, schemaArg)
	if err != nil {
		return c, fmt.Errorf("query primary keys: %w", err)
	}
	for pkr.Next() {
		var pk introspect.PrimaryKey
		if err := pkr.Scan(&pk.Schema, &pk.Table, &pk.Column); err != nil {
			pkr.Close()
			return c, fmt.Errorf("scan primary key: %w", err)
		}
		c.PrimaryKeys = append(c.PrimaryKeys, pk)
	}
	if err := closeRows(pkr, "primary keys"); err != nil {
		return c, err
	}

	fkr, err := dbConn.QueryContext(ctx, q.foreignKeys, schemaArg)
	if err != nil {
		return c, fmt.Errorf("query foreign keys: %w", err)
	}
	for fkr.Next() {
		var fk introspect.CatalogForeignKey
		if err := fkr.Scan(&fk.Constraint, &fk.FromSchema, &fk.FromTable, &fk.FromColumn,
			&fk.ToSchema, &fk.ToTable, &fk.ToColumn); err != nil {
			fkr.Close()
			return c, fmt.Errorf("scan foreign key: %w", err)
		}
		c.ForeignKeys = append(c.ForeignKeys, fk)
	}
	if err := closeRows(fkr, "foreign keys"); err != nil {
		return c, err
	}

	return c, nil
}

func closeRows(rows *sql.Rows, what string) error {
	err := rows.Err()
	rows.Close()
	if err != nil {
		return fmt.Errorf("iterate %s: %w", what, err)
	}
	return nil
}
