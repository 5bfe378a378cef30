package fetch

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"cherrypick/internal/db"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// Queryer is the part of *sql.DB the fetcher uses.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Fetcher looks rows up by column value. Every lookup is parameterized.
type Fetcher struct {
	conn    Queryer
	dialect db.Dialect
	builder sq.StatementBuilderType
	logger  *zap.Logger
}

// New creates a Fetcher over conn. If logger is nil, a no-op logger is used.
func New(conn Queryer, dialect db.Dialect, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		conn:    conn,
		dialect: dialect,
		builder: sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		logger:  logger,
	}
}

// Parameter coerces raw to the declared type of column on t.
func (f *Fetcher) Parameter(t *introspect.Table, column, raw string) (value.CellValue, error) {
	col, ok := t.Column(column)
	if !ok {
		return value.CellValue{}, &UnknownColumnError{Table: t.Identity, Column: column}
	}
	return value.ParseParameter(col, raw)
}

// GetOne returns the single row of t where column equals raw.
func (f *Fetcher) GetOne(ctx context.Context, t *introspect.Table, column, raw string) (*Row, error) {
	cell, err := f.Parameter(t, column, raw)
	if err != nil {
		return nil, err
	}
	return f.GetOneByCell(ctx, t, column, cell)
}

// GetMany returns every row of t where column equals raw.
func (f *Fetcher) GetMany(ctx context.Context, t *introspect.Table, column, raw string) ([]*Row, error) {
	cell, err := f.Parameter(t, column, raw)
	if err != nil {
		return nil, err
	}
	return f.GetManyByCell(ctx, t, column, cell)
}

// GetOneByCell is GetOne for an already typed value. Zero matches is a
// RowNotFoundError, more than one a TooManyRowsError.
func (f *Fetcher) GetOneByCell(ctx context.Context, t *introspect.Table, column string, v value.CellValue) (*Row, error) {
	rows, err := f.GetManyByCell(ctx, t, column, v)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, &RowNotFoundError{Table: t.Identity, Column: column, Value: v.String()}
	case 1:
		return rows[0], nil
	default:
		return nil, &TooManyRowsError{Table: t.Identity, Column: column, Value: v.String(), Count: len(rows)}
	}
}

// GetManyByCell returns every row of t where column equals v.
func (f *Fetcher) GetManyByCell(ctx context.Context, t *introspect.Table, column string, v value.CellValue) ([]*Row, error) {
	query, args, err := f.builder.
		Select("*").
		From(f.dialect.QualifiedName(t.Identity)).
		Where(sq.Eq{f.dialect.Quote(column): v.Param()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup on %s.%s: %w", t.Identity, column, err)
	}

	f.logger.Debug("lookup",
		zap.Stringer("table", t.Identity),
		zap.String("column", column),
		zap.Stringer("value", v),
		zap.String("sql", query))

	rs, err := f.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s where %s = %s: %w", t.Identity, column, v, err)
	}
	defer rs.Close()

	out, err := scanRows(rs, t)
	if err != nil {
		return nil, fmt.Errorf("read %s where %s = %s: %w", t.Identity, column, v, err)
	}
	return out, nil
}

func scanRows(rs *sql.Rows, t *introspect.Table) ([]*Row, error) {
	types, err := rs.ColumnTypes()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = ct.Name()
	}

	var out []*Row
	for rs.Next() {
		raw := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := &Row{Table: t, Columns: names, Values: make(map[string]value.CellValue, len(names))}
		for i, ct := range types {
			cell, err := value.Decode(raw[i], ct.DatabaseTypeName())
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", names[i], err)
			}
			row.Values[names[i]] = cell
		}
		pk, ok := row.Values[t.Primary.Name]
		if !ok {
			return nil, fmt.Errorf("primary key column %s missing from result", t.Primary.Name)
		}
		row.ID = pk.String()
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
