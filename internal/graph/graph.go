// Package graph builds the graph of rows connected to a seed row through
// foreign keys and assigns each row a level relative to the seed.
package graph

import "cherrypick/internal/fetch"

// NodeID indexes a row in a RowGraph's arena.
type NodeID int

// Edge runs from a child row to the parent row it references.
type Edge struct {
	From       NodeID
	To         NodeID
	Constraint string
}

// RowGraph stores every row once and refers to rows by NodeID.
type RowGraph struct {
	rows    []*fetch.Row
	index   map[fetch.RowKey]NodeID
	edges   []Edge
	edgeSet map[Edge]struct{}
	out     [][]int
	in      [][]int
}

func NewRowGraph() *RowGraph {
	return &RowGraph{
		index:   make(map[fetch.RowKey]NodeID),
		edgeSet: make(map[Edge]struct{}),
	}
}

// AddRow returns the node for r, adding it if no row with the same key exists.
func (g *RowGraph) AddRow(r *fetch.Row) (NodeID, bool) {
	if id, ok := g.index[r.Key()]; ok {
		return id, false
	}
	id := NodeID(len(g.rows))
	g.rows = append(g.rows, r)
	g.index[r.Key()] = id
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id, true
}

// Lookup finds the node holding the row with key k.
func (g *RowGraph) Lookup(k fetch.RowKey) (NodeID, bool) {
	id, ok := g.index[k]
	return id, ok
}

func (g *RowGraph) Row(id NodeID) *fetch.Row { return g.rows[id] }

// Len returns the number of nodes.
func (g *RowGraph) Len() int { return len(g.rows) }

// AddEdge records child -> parent through constraint. Adding the same
// triple twice is a no-op; parallel edges through different constraints are kept.
func (g *RowGraph) AddEdge(child, parent NodeID, constraint string) bool {
	e := Edge{From: child, To: parent, Constraint: constraint}
	if _, ok := g.edgeSet[e]; ok {
		return false
	}
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.out[child] = append(g.out[child], len(g.edges)-1)
	g.in[parent] = append(g.in[parent], len(g.edges)-1)
	return true
}

// Edges returns all edges in insertion order.
func (g *RowGraph) Edges() []Edge { return g.edges }

// Outgoing returns the edges from id to its parents.
func (g *RowGraph) Outgoing(id NodeID) []Edge { return g.pick(g.out[id]) }

// Incoming returns the edges from children of id.
func (g *RowGraph) Incoming(id NodeID) []Edge { return g.pick(g.in[id]) }

func (g *RowGraph) pick(idx []int) []Edge {
	out := make([]Edge, len(idx))
	for i, e := range idx {
		out[i] = g.edges[e]
	}
	return out
}
