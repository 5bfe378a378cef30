package emit

import (
	"fmt"
	"strings"

	"cherrypick/internal/fetch"
	"cherrypick/internal/graph"
)

// Dot renders the graph in the DOT language. Nodes are labelled with their
// table and primary key, plus the columns listed for their table in
// labelColumns (keyed by bare or schema-qualified table name).
func Dot(g *graph.RowGraph, labelColumns map[string][]string) string {
	var b strings.Builder
	b.WriteString("digraph cherrypick {\n")
	b.WriteString("  node [shape=box];\n")

	for i := 0; i < g.Len(); i++ {
		row := g.Row(graph.NodeID(i))
		fmt.Fprintf(&b, "  n%d [label=\"%s\"];\n", i, nodeLabel(row, labelColumns))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  n%d -> n%d [label=\"%s\"];\n", e.From, e.To, escape(e.Constraint))
	}

	b.WriteString("}\n")
	return b.String()
}

func nodeLabel(row *fetch.Row, labelColumns map[string][]string) string {
	lines := []string{
		escape(row.Table.Identity.String()),
		escape(row.Table.Primary.Name + ": " + row.ID),
	}
	cols, ok := labelColumns[row.Table.Identity.String()]
	if !ok {
		cols = labelColumns[row.Table.Identity.Name]
	}
	for _, c := range cols {
		if c == row.Table.Primary.Name {
			continue
		}
		if v, ok := row.Value(c); ok {
			lines = append(lines, escape(c+": "+v.String()))
		}
	}
	return strings.Join(lines, `\n`)
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func escape(s string) string {
	return dotEscaper.Replace(s)
}
