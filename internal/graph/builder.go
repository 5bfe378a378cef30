package graph

import (
	"context"

	"go.uber.org/zap"

	"cherrypick/internal/fetch"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// RowSource is what the builder needs from a fetch.Fetcher.
type RowSource interface {
	GetOne(ctx context.Context, t *introspect.Table, column, raw string) (*fetch.Row, error)
	GetOneByCell(ctx context.Context, t *introspect.Table, column string, v value.CellValue) (*fetch.Row, error)
	GetManyByCell(ctx context.Context, t *introspect.Table, column string, v value.CellValue) ([]*fetch.Row, error)
}

// Locator identifies the seed row.
type Locator struct {
	Schema string
	Table  string
	Column string
	Value  string
}

// Builder walks foreign keys outward from a seed row.
type Builder struct {
	registry *introspect.Registry
	rows     RowSource
	logger   *zap.Logger
}

func NewBuilder(registry *introspect.Registry, rows RowSource, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{registry: registry, rows: rows, logger: logger}
}

// walk holds the state of one traversal. Each direction remembers which rows
// it has already expanded, so a table can be entered again from another row
// but no row is expanded twice in the same direction.
type walk struct {
	*Builder
	graph     *RowGraph
	ascended  map[NodeID]bool
	descended map[NodeID]bool
}

// Build fetches the seed row and every row connected to it. Any error aborts
// the traversal and no graph is returned.
func (b *Builder) Build(ctx context.Context, loc Locator) (*RowGraph, NodeID, error) {
	id := introspect.TableIdentity{Schema: loc.Schema, Name: loc.Table}
	t, ok := b.registry.Table(id)
	if !ok {
		return nil, 0, &UnknownTableError{Table: id}
	}

	seed, err := b.rows.GetOne(ctx, t, loc.Column, loc.Value)
	if err != nil {
		return nil, 0, err
	}

	w := &walk{
		Builder:   b,
		graph:     NewRowGraph(),
		ascended:  make(map[NodeID]bool),
		descended: make(map[NodeID]bool),
	}
	root, _ := w.graph.AddRow(seed)
	b.logger.Debug("seed row", zap.Stringer("row", seed.Key()))

	if err := w.ascend(ctx, root); err != nil {
		return nil, 0, err
	}
	if err := w.descend(ctx, root); err != nil {
		return nil, 0, err
	}

	b.logger.Info("relation graph built",
		zap.Stringer("seed", seed.Key()),
		zap.Int("rows", w.graph.Len()),
		zap.Int("edges", len(w.graph.Edges())))
	return w.graph, root, nil
}

// ascend follows the foreign keys owned by node's table up to parent rows.
func (w *walk) ascend(ctx context.Context, node NodeID) error {
	if w.ascended[node] {
		return nil
	}
	w.ascended[node] = true

	row := w.graph.Row(node)
	for _, fk := range row.Table.ReferencingKeys() {
		parentTable, ok := w.registry.Table(fk.ForeignTable)
		if !ok {
			return &UnknownTableError{Table: fk.ForeignTable, Constraint: fk.Constraint}
		}
		v, ok := row.Value(fk.Column.Name)
		if !ok || v.IsNull() {
			continue
		}
		column := fk.ForeignColumn
		if column == "" {
			column = parentTable.Primary.Name
		}

		parent, err := w.rows.GetOneByCell(ctx, parentTable, column, v)
		if err != nil {
			return err
		}
		pid, _ := w.graph.AddRow(parent)
		w.graph.AddEdge(node, pid, fk.Constraint)
		w.logger.Debug("ascend",
			zap.Stringer("from", row.Key()),
			zap.Stringer("to", parent.Key()),
			zap.String("constraint", fk.Constraint))

		if err := w.ascend(ctx, pid); err != nil {
			return err
		}
	}
	return nil
}

// descend finds the rows of other tables that reference node, then walks
// each of them in both directions.
func (w *walk) descend(ctx context.Context, node NodeID) error {
	if w.descended[node] {
		return nil
	}
	w.descended[node] = true

	row := w.graph.Row(node)
	for _, fk := range row.Table.ReferencedKeys() {
		childTable, ok := w.registry.Table(fk.Table)
		if !ok {
			return &UnknownTableError{Table: fk.Table, Constraint: fk.Constraint}
		}
		key := row.PrimaryValue()
		if fk.ForeignColumn != "" {
			if v, ok := row.Value(fk.ForeignColumn); ok {
				key = v
			}
		}
		if key.IsNull() {
			continue
		}

		children, err := w.rows.GetManyByCell(ctx, childTable, fk.Column.Name, key)
		if err != nil {
			return err
		}
		ids := make([]NodeID, 0, len(children))
		for _, child := range children {
			cid, _ := w.graph.AddRow(child)
			w.graph.AddEdge(cid, node, fk.Constraint)
			ids = append(ids, cid)
		}
		w.logger.Debug("descend",
			zap.Stringer("from", row.Key()),
			zap.Stringer("table", childTable.Identity),
			zap.String("constraint", fk.Constraint),
			zap.Int("children", len(children)))

		for _, cid := range ids {
			if err := w.ascend(ctx, cid); err != nil {
				return err
			}
			if err := w.descend(ctx, cid); err != nil {
				return err
			}
		}
	}
	return nil
}
