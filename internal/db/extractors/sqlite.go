package extractors

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"cherrypick/internal/db"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// sqliteExtractor implements Extractor for SQLite. The schema is the
// attached database name, normally "main".
type sqliteExtractor struct{}

type sqliteFK struct {
	table string
	id    int
	row   introspect.CatalogForeignKey
	to    sql.NullString
}

// This is the extractor for SQLite
func (sqliteExtractor) Extract(ctx context.Context, dbConn *sql.DB, schema string) (introspect.Catalog, error) {
	var c introspect.Catalog
	master := db.QuoteANSI(schema) + ".sqlite_master"

	colQuery := fmt.Sprintf(`
        SELECT m.name, p.name, p.type, p.cid, p.pk
        FROM %s m
        JOIN pragma_table_info(m.name, ?) p
        WHERE m.type = 'table'
          AND m.name NOT LIKE 'sqlite_%%'
        ORDER BY m.name, p.cid`, master)
	cr, err := dbConn.QueryContext(ctx, colQuery, schema)
	if err != nil {
		return c, fmt.Errorf("query columns: %w", err)
	}
	pkByTable := make(map[string][]string)
	for cr.Next() {
		var col introspect.CatalogColumn
		var pk int
		if err := cr.Scan(&col.Table, &col.Name, &col.DataType, &col.Position, &pk); err != nil {
			cr.Close()
			return c, fmt.Errorf("scan column: %w", err)
		}
		col.Schema = schema
		col.Position++
		c.Columns = append(c.Columns, col)
		if pk > 0 {
			c.PrimaryKeys = append(c.PrimaryKeys, introspect.PrimaryKey{Schema: schema, Table: col.Table, Column: col.Name})
			pkByTable[col.Table] = append(pkByTable[col.Table], col.Name)
		}
	}
	if err := closeRows(cr, "columns"); err != nil {
		return c, err
	}

	fkQuery := fmt.Sprintf(`
        SELECT m.name, f.id, f."table", f."from", f."to"
        FROM %s m
        JOIN pragma_foreign_key_list(m.name, ?) f
        WHERE m.type = 'table'
          AND m.name NOT LIKE 'sqlite_%%'
        ORDER BY m.name, f.id, f.seq`, master)
	fkr, err := dbConn.QueryContext(ctx, fkQuery, schema)
	if err != nil {
		return c, fmt.Errorf("query foreign keys: %w", err)
	}
	var fks []sqliteFK
	width := make(map[string]int)
	for fkr.Next() {
		var fk sqliteFK
		if err := fkr.Scan(&fk.table, &fk.id, &fk.row.ToTable, &fk.row.FromColumn, &fk.to); err != nil {
			fkr.Close()
			return c, fmt.Errorf("scan foreign key: %w", err)
		}
		fks = append(fks, fk)
		width[fmt.Sprintf("%s/%d", fk.table, fk.id)]++
	}
	if err := closeRows(fkr, "foreign keys"); err != nil {
		return c, err
	}

	for _, fk := range fks {
		row := fk.row
		row.FromSchema = schema
		row.FromTable = fk.table
		row.ToSchema = schema
		// SQLite has no constraint names; composite keys share one so the
		// registry can recognise and skip them.
		if width[fmt.Sprintf("%s/%d", fk.table, fk.id)] > 1 {
			row.Constraint = fmt.Sprintf("%s_fk%d", fk.table, fk.id)
		} else {
			row.Constraint = fmt.Sprintf("%s_%s_fkey", fk.table, row.FromColumn)
		}
		switch {
		case fk.to.Valid:
			row.ToColumn = fk.to.String
		case len(pkByTable[row.ToTable]) == 1:
			row.ToColumn = pkByTable[row.ToTable][0]
		}
		c.ForeignKeys = append(c.ForeignKeys, row)
	}

	return c, nil
}

func init() {
	db.Register("sqlite", db.Dialect{
		Name:          "sqlite",
		Driver:        "sqlite",
		DefaultSchema: "main",
		Placeholder:   sq.Question,
		Quote:         db.QuoteANSI,
		Literals:      value.StyleSQLite,
		Extractor:     sqliteExtractor{},
	})
}
