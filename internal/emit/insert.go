// Package emit renders a leveled row graph as INSERT statements or as a
// Graphviz digraph.
package emit

import (
	"fmt"
	"strings"

	"cherrypick/internal/fetch"
	"cherrypick/internal/graph"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// Statement is one INSERT covering every new row of one table at one level.
type Statement struct {
	Table introspect.TableIdentity
	Level int
	Rows  int
	SQL   string
}

// ColumnMismatchError reports a row lacking a column that the first row of
// its table and level has.
type ColumnMismatchError struct {
	Table  introspect.TableIdentity
	Column string
	RowID  string
}

func (e *ColumnMismatchError) Error() string {
	return fmt.Sprintf("row %s of %s has no column %s", e.RowID, e.Table, e.Column)
}

// Inserts renders statements level by level, lowest first, so that with an
// acyclic foreign key graph every row follows the rows it references. A row
// is emitted once even if it appears on several levels. quote is applied to
// every identifier; nil leaves identifiers bare. Cell values are spelled in
// the given literal style.
func Inserts(g *graph.RowGraph, levels graph.LeveledRows, quote func(string) string, style value.Style) ([]Statement, error) {
	if quote == nil {
		quote = func(s string) string { return s }
	}

	emitted := make(map[fetch.RowKey]bool)
	var out []Statement
	for _, lvl := range levels.Levels() {
		var order []introspect.TableIdentity
		groups := make(map[introspect.TableIdentity][]*fetch.Row)
		for _, id := range levels[lvl] {
			row := g.Row(id)
			if emitted[row.Key()] {
				continue
			}
			emitted[row.Key()] = true
			tid := row.Table.Identity
			if _, seen := groups[tid]; !seen {
				order = append(order, tid)
			}
			groups[tid] = append(groups[tid], row)
		}

		for _, tid := range order {
			stmt, err := insertStatement(tid, groups[tid], quote, style)
			if err != nil {
				return nil, err
			}
			out = append(out, Statement{Table: tid, Level: lvl, Rows: len(groups[tid]), SQL: stmt})
		}
	}
	return out, nil
}

func insertStatement(tid introspect.TableIdentity, rows []*fetch.Row, quote func(string) string, style value.Style) (string, error) {
	columns := rows[0].Columns
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
	}

	tuples := make([]string, 0, len(rows))
	for _, row := range rows {
		lits := make([]string, len(columns))
		for i, c := range columns {
			v, ok := row.Value(c)
			if !ok {
				return "", &ColumnMismatchError{Table: tid, Column: c, RowID: row.ID}
			}
			lit, err := value.RenderLiteral(v, style)
			if err != nil {
				return "", fmt.Errorf("row %s of %s column %s: %w", row.ID, tid, c, err)
			}
			lits[i] = lit
		}
		tuples = append(tuples, "("+strings.Join(lits, ", ")+")")
	}

	table := quote(tid.Name)
	if tid.Schema != "" {
		table = quote(tid.Schema) + "." + table
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;", table, strings.Join(quoted, ", "), strings.Join(tuples, ", ")), nil
}

// Join renders the statements in order, each preceded by a banner comment
// naming its table.
func Join(stmts []Statement) string {
	var b strings.Builder
	for i, s := range stmts {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "-- %s\n%s\n", s.Table, s.SQL)
	}
	return b.String()
}
