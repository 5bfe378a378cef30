package extractors

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"cherrypick/internal/db"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// mssqlExtractor implements Extractor for Microsoft SQL Server.
type mssqlExtractor struct{}

var mssqlQueries = catalogQueries{
	columns: `
        SELECT c.TABLE_SCHEMA, c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE, c.ORDINAL_POSITION
        FROM INFORMATION_SCHEMA.COLUMNS c
        JOIN INFORMATION_SCHEMA.TABLES t
          ON t.TABLE_SCHEMA = c.TABLE_SCHEMA
         AND t.TABLE_NAME = c.TABLE_NAME
        WHERE c.TABLE_SCHEMA = @schema
          AND t.TABLE_TYPE = 'BASE TABLE'
        ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`,
	primaryKeys: `
        SELECT k.TABLE_SCHEMA, k.TABLE_NAME, k.COLUMN_NAME
        FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS t
        JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
          ON t.CONSTRAINT_NAME = k.CONSTRAINT_NAME
         AND t.TABLE_SCHEMA = k.TABLE_SCHEMA
        WHERE t.CONSTRAINT_TYPE = 'PRIMARY KEY'
          AND k.TABLE_SCHEMA = @schema
        ORDER BY k.TABLE_NAME, k.ORDINAL_POSITION`,
	foreignKeys: `
        SELECT
            fk.name AS constraint_name,
            OBJECT_SCHEMA_NAME(fkc.parent_object_id) AS from_schema,
            OBJECT_NAME(fkc.parent_object_id) AS from_table,
            c.name AS from_column,
            OBJECT_SCHEMA_NAME(fkc.referenced_object_id) AS to_schema,
            OBJECT_NAME(fkc.referenced_object_id) AS to_table,
            rc.name AS to_column
        FROM sys.foreign_keys fk
        JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
        JOIN sys.columns c ON fkc.parent_object_id = c.object_id AND fkc.parent_column_id = c.column_id
        JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
        WHERE OBJECT_SCHEMA_NAME(fkc.parent_object_id) = @schema
        ORDER BY from_table, constraint_name, fkc.constraint_column_id`,
}

// This is the extractor for Microsoft SQL Server
func (mssqlExtractor) Extract(ctx context.Context, dbConn *sql.DB, schema string) (introspect.Catalog, error) {
	return extractCatalog(ctx, dbConn, mssqlQueries, sql.Named("schema", schema))
}

func init() {
	db.Register("sqlserver", db.Dialect{
		Name:          "sqlserver",
		Driver:        "sqlserver",
		DefaultSchema: "dbo",
		Placeholder:   sq.AtP,
		Quote:         db.QuoteMSSQL,
		Literals:      value.StyleMSSQL,
		Extractor:     mssqlExtractor{},
	})
}
