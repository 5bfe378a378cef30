package graph

import "sort"

// LeveledRows groups nodes by signed distance from the root: children are
// positive, parents negative. Nodes within a level keep discovery order.
type LeveledRows map[int][]NodeID

// Levels returns the populated levels in ascending order.
func (l LeveledRows) Levels() []int {
	out := make([]int, 0, len(l))
	for lvl := range l {
		out = append(out, lvl)
	}
	sort.Ints(out)
	return out
}

// Level returns the level assigned to id.
func (l LeveledRows) Level(id NodeID) (int, bool) {
	for lvl, ids := range l {
		for _, n := range ids {
			if n == id {
				return lvl, true
			}
		}
	}
	return 0, false
}

// AssignLevels walks the graph depth first from root. A node keeps the level
// of its first discovery, which is not necessarily its shortest distance
// when several paths lead to it.
func AssignLevels(g *RowGraph, root NodeID, start int) LeveledRows {
	out := make(LeveledRows)
	visited := make(map[NodeID]bool, g.Len())

	var visit func(id NodeID, level int)
	visit = func(id NodeID, level int) {
		visited[id] = true
		out[level] = append(out[level], id)
		for _, e := range g.Incoming(id) {
			if !visited[e.From] {
				visit(e.From, level+1)
			}
		}
		for _, e := range g.Outgoing(id) {
			if !visited[e.To] {
				visit(e.To, level-1)
			}
		}
	}
	visit(root, start)
	return out
}
