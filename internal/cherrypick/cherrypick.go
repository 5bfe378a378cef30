// Package cherrypick ties schema loading, traversal and emission into one run.
package cherrypick

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cherrypick/internal/db"
	"cherrypick/internal/emit"
	"cherrypick/internal/fetch"
	"cherrypick/internal/graph"
	"cherrypick/pkg/config"
)

// ErrNoSchema is returned when neither the locator nor the dialect names a schema.
var ErrNoSchema = errors.New("no schema given and the dialect has no default")

// Options describes one run.
type Options struct {
	Locator graph.Locator
	Mode    config.OutputMode
	// LabelColumns picks extra node label columns per table in graphviz mode.
	LabelColumns map[string][]string
}

// Run loads the schema, collects every row connected to the seed and renders
// them in the requested mode. On error nothing is rendered.
func Run(ctx context.Context, conn *sql.DB, d db.Dialect, opts Options, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	loc := opts.Locator
	loc.Schema = cmp.Or(loc.Schema, d.DefaultSchema)
	if loc.Schema == "" {
		return "", ErrNoSchema
	}

	reg, err := db.LoadRegistry(ctx, conn, d, loc.Schema, log)
	if err != nil {
		return "", err
	}

	g, root, err := graph.NewBuilder(reg, fetch.New(conn, d, log), log).Build(ctx, loc)
	if err != nil {
		return "", err
	}

	switch opts.Mode {
	case config.OutputGraphviz:
		return emit.Dot(g, opts.LabelColumns), nil
	case "", config.OutputInsert:
		levels := graph.AssignLevels(g, root, 0)
		stmts, err := emit.Inserts(g, levels, d.Quote, d.Literals)
		if err != nil {
			return "", err
		}
		log.Info("insert statements rendered",
			zap.Int("statements", len(stmts)),
			zap.Int("rows", g.Len()),
			zap.Ints("levels", levels.Levels()))
		return emit.Join(stmts), nil
	default:
		return "", fmt.Errorf("unknown output mode %q", opts.Mode)
	}
}
