package emit

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrypick/internal/db"
	"cherrypick/internal/fetch"
	"cherrypick/internal/graph"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

var (
	orders = &introspect.Table{
		Identity: introspect.TableIdentity{Schema: "public", Name: "orders"},
		Primary:  introspect.Column{Name: "id", DataType: "integer"},
		Columns:  []introspect.Column{{Name: "id", DataType: "integer"}, {Name: "status", DataType: "text"}},
	}
	items = &introspect.Table{
		Identity: introspect.TableIdentity{Schema: "public", Name: "order_items"},
		Primary:  introspect.Column{Name: "id", DataType: "integer"},
		Columns: []introspect.Column{
			{Name: "id", DataType: "integer"},
			{Name: "order_id", DataType: "integer"},
			{Name: "note", DataType: "text"},
		},
	}
)

func orderRow(id int64, status string) *fetch.Row {
	return &fetch.Row{
		Table:   orders,
		ID:      value.Int(id).String(),
		Columns: []string{"id", "status"},
		Values:  map[string]value.CellValue{"id": value.Int(id), "status": value.Text(status)},
	}
}

func itemRow(id, orderID int64, note value.CellValue) *fetch.Row {
	return &fetch.Row{
		Table:   items,
		ID:      value.Int(id).String(),
		Columns: []string{"id", "order_id", "note"},
		Values:  map[string]value.CellValue{"id": value.Int(id), "order_id": value.Int(orderID), "note": note},
	}
}

// fanOut is one order with two items pointing at it.
func fanOut(t *testing.T) (*graph.RowGraph, graph.NodeID) {
	t.Helper()
	g := graph.NewRowGraph()
	root, _ := g.AddRow(orderRow(1, "new"))
	a, _ := g.AddRow(itemRow(10, 1, value.Text("it's fragile")))
	b, _ := g.AddRow(itemRow(11, 1, value.Null()))
	g.AddEdge(a, root, "order_items_order_id_fkey")
	g.AddEdge(b, root, "order_items_order_id_fkey")
	return g, root
}

func TestInserts(t *testing.T) {
	g, root := fanOut(t)
	levels := graph.AssignLevels(g, root, 0)

	stmts, err := Inserts(g, levels, nil, value.StyleANSI)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.Equal(t, orders.Identity, stmts[0].Table)
	assert.Equal(t, 0, stmts[0].Level)
	assert.Equal(t, 1, stmts[0].Rows)
	assert.Equal(t, "INSERT INTO public.orders (id, status) VALUES (1, 'new');", stmts[0].SQL)

	assert.Equal(t, items.Identity, stmts[1].Table)
	assert.Equal(t, 1, stmts[1].Level)
	assert.Equal(t, 2, stmts[1].Rows)
	assert.Equal(t,
		"INSERT INTO public.order_items (id, order_id, note) VALUES (10, 1, 'it''s fragile'), (11, 1, NULL);",
		stmts[1].SQL)
}

func TestInsertsQuotesIdentifiers(t *testing.T) {
	g := graph.NewRowGraph()
	root, _ := g.AddRow(orderRow(7, "paid"))

	stmts, err := Inserts(g, graph.AssignLevels(g, root, 0), db.QuoteANSI, value.StyleANSI)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, `INSERT INTO "public"."orders" ("id", "status") VALUES (7, 'paid');`, stmts[0].SQL)
}

func TestInsertsEmitsRowOnce(t *testing.T) {
	g, root := fanOut(t)
	levels := graph.LeveledRows{0: {root}, 1: {1, 2}, 2: {root, 1}}

	stmts, err := Inserts(g, levels, nil, value.StyleANSI)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, 1, stmts[0].Rows)
	assert.Equal(t, 2, stmts[1].Rows)
}

func TestInsertsParentLevelsFirst(t *testing.T) {
	g := graph.NewRowGraph()
	child, _ := g.AddRow(itemRow(10, 1, value.Text("x")))
	parent, _ := g.AddRow(orderRow(1, "new"))
	g.AddEdge(child, parent, "order_items_order_id_fkey")

	stmts, err := Inserts(g, graph.AssignLevels(g, child, 0), nil, value.StyleANSI)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, -1, stmts[0].Level)
	assert.Equal(t, orders.Identity, stmts[0].Table)
	assert.Equal(t, items.Identity, stmts[1].Table)
}

func TestInsertsColumnMismatch(t *testing.T) {
	g := graph.NewRowGraph()
	root, _ := g.AddRow(orderRow(1, "new"))
	broken := orderRow(2, "old")
	delete(broken.Values, "status")
	second, _ := g.AddRow(broken)

	_, err := Inserts(g, graph.LeveledRows{0: {root, second}}, nil, value.StyleANSI)
	var cme *ColumnMismatchError
	require.True(t, errors.As(err, &cme), "expected ColumnMismatchError, got %v", err)
	assert.Equal(t, orders.Identity, cme.Table)
	assert.Equal(t, "status", cme.Column)
	assert.Equal(t, "2", cme.RowID)
}

// flagRow is an order whose status column holds an arbitrary cell.
func flagRow(id int64, v value.CellValue) *fetch.Row {
	r := orderRow(id, "")
	r.Values["status"] = v
	return r
}

func TestInsertsLiteralStyle(t *testing.T) {
	var tests = []struct {
		name  string
		cell  value.CellValue
		style value.Style
		want  string
	}{
		{"mssql bit", value.Bool(true), value.StyleMSSQL, "INSERT INTO public.orders (id, status) VALUES (1, 1);"},
		{"postgres boolean", value.Bool(false), value.StylePostgres, "INSERT INTO public.orders (id, status) VALUES (1, FALSE);"},
		{"sqlite blob", value.Binary([]byte{0x00, 0xff, 0x27}), value.StyleSQLite, "INSERT INTO public.orders (id, status) VALUES (1, X'00ff27');"},
		{"mssql varbinary", value.Binary([]byte{0xab}), value.StyleMSSQL, "INSERT INTO public.orders (id, status) VALUES (1, 0xAB);"},
		{"postgres infinity", value.Numeric("Infinity"), value.StylePostgres, "INSERT INTO public.orders (id, status) VALUES (1, 'Infinity');"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.NewRowGraph()
			root, _ := g.AddRow(flagRow(1, tt.cell))
			stmts, err := Inserts(g, graph.AssignLevels(g, root, 0), nil, tt.style)
			require.NoError(t, err)
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.want, stmts[0].SQL)
		})
	}
}

func TestInsertsUnrepresentable(t *testing.T) {
	g := graph.NewRowGraph()
	root, _ := g.AddRow(flagRow(3, value.Numeric("NaN")))

	stmts, err := Inserts(g, graph.AssignLevels(g, root, 0), nil, value.StyleMySQL)
	assert.Nil(t, stmts)
	var ue *value.UnrepresentableError
	require.True(t, errors.As(err, &ue), "expected UnrepresentableError, got %v", err)
	assert.Equal(t, value.StyleMySQL, ue.Style)
	assert.Contains(t, err.Error(), "row 3 of public.orders column status")
}

func TestJoin(t *testing.T) {
	g, root := fanOut(t)
	stmts, err := Inserts(g, graph.AssignLevels(g, root, 0), nil, value.StyleANSI)
	require.NoError(t, err)

	out := Join(stmts)
	want := "-- public.orders\n" + stmts[0].SQL + "\n\n-- public.order_items\n" + stmts[1].SQL + "\n"
	assert.Equal(t, want, out)
	assert.Empty(t, Join(nil))
}

func TestDot(t *testing.T) {
	g, _ := fanOut(t)

	out := Dot(g, nil)
	assert.True(t, strings.HasPrefix(out, "digraph cherrypick {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `n0 [label="public.orders\nid: 1"];`)
	assert.Contains(t, out, `n1 [label="public.order_items\nid: 10"];`)
	assert.Contains(t, out, `n1 -> n0 [label="order_items_order_id_fkey"];`)
	assert.Contains(t, out, `n2 -> n0 [label="order_items_order_id_fkey"];`)
	assert.NotContains(t, out, "status")
}

func TestDotLabelColumns(t *testing.T) {
	g := graph.NewRowGraph()
	g.AddRow(orderRow(1, `say "hi"`))
	g.AddRow(itemRow(10, 1, value.Text("line1\nline2")))

	out := Dot(g, map[string][]string{
		"orders":             {"status", "id", "missing"},
		"public.order_items": {"note"},
	})
	assert.Contains(t, out, `n0 [label="public.orders\nid: 1\nstatus: say \"hi\""];`)
	assert.Contains(t, out, `n1 [label="public.order_items\nid: 10\nnote: line1\nline2"];`)
	assert.NotContains(t, out, "missing")
}
