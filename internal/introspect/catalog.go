package introspect

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// CatalogColumn is one row of the column catalog.
type CatalogColumn struct {
	Schema   string `json:"schema"`
	Table    string `json:"table"`
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Position int    `json:"position"`
}

// PrimaryKey is one primary key column of a table. Composite keys produce
// several rows for the same table.
type PrimaryKey struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Column string `json:"column"`
}

// CatalogForeignKey is one column pair of a foreign key constraint.
// Composite constraints produce several rows with the same Constraint.
type CatalogForeignKey struct {
	Constraint string `json:"constraint"`
	FromSchema string `json:"from_schema"`
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToSchema   string `json:"to_schema"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
}

// Catalog is the raw schema metadata extracted from one database schema.
type Catalog struct {
	Columns     []CatalogColumn     `json:"columns"`
	PrimaryKeys []PrimaryKey        `json:"primary_keys"`
	ForeignKeys []CatalogForeignKey `json:"foreign_keys"`
}

type constraintKey struct {
	table      TableIdentity
	constraint string
}

// BuildRegistry cross-indexes the catalog into tables. Tables without a
// single-column primary key are left out, as are composite foreign keys.
// A foreign key that points at an unregistered table is still recorded on
// its owning table so traversal can report it.
func BuildRegistry(c Catalog, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	columns := make(map[TableIdentity][]CatalogColumn)
	for _, col := range c.Columns {
		id := TableIdentity{Schema: col.Schema, Name: col.Table}
		columns[id] = append(columns[id], col)
	}

	pks := make(map[TableIdentity][]string)
	for _, pk := range c.PrimaryKeys {
		id := TableIdentity{Schema: pk.Schema, Name: pk.Table}
		pks[id] = append(pks[id], pk.Column)
	}

	r := &Registry{tables: make(map[TableIdentity]*Table, len(pks))}
	for id, keyCols := range pks {
		if len(keyCols) != 1 {
			log.Warn("skipping table with composite primary key",
				zap.Stringer("table", id), zap.Strings("columns", keyCols))
			continue
		}
		cols := columns[id]
		sort.SliceStable(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })

		t := &Table{
			Identity:    id,
			Referencing: make(map[string]ForeignKey),
			Referenced:  make(map[string]ForeignKey),
		}
		for _, col := range cols {
			t.Columns = append(t.Columns, Column{Name: col.Name, DataType: col.DataType})
		}
		primary, ok := t.Column(keyCols[0])
		if !ok {
			return nil, fmt.Errorf("primary key column %q not found on %s", keyCols[0], id)
		}
		t.Primary = primary
		r.tables[id] = t
	}

	width := make(map[constraintKey]int)
	for _, fk := range c.ForeignKeys {
		width[constraintKey{TableIdentity{fk.FromSchema, fk.FromTable}, fk.Constraint}]++
	}

	for _, row := range c.ForeignKeys {
		owner := TableIdentity{Schema: row.FromSchema, Name: row.FromTable}
		foreign := TableIdentity{Schema: row.ToSchema, Name: row.ToTable}
		if width[constraintKey{owner, row.Constraint}] > 1 {
			log.Warn("skipping composite foreign key",
				zap.Stringer("table", owner), zap.String("constraint", row.Constraint))
			continue
		}

		ownerTable, ok := r.tables[owner]
		if !ok {
			log.Debug("skipping foreign key on unregistered table",
				zap.Stringer("table", owner), zap.String("constraint", row.Constraint))
			continue
		}
		local, ok := ownerTable.Column(row.FromColumn)
		if !ok {
			return nil, fmt.Errorf("foreign key %s: column %q not found on %s", row.Constraint, row.FromColumn, owner)
		}

		fk := ForeignKey{
			Constraint:    row.Constraint,
			Table:         owner,
			Column:        local,
			ForeignTable:  foreign,
			ForeignColumn: row.ToColumn,
		}
		ownerTable.Referencing[fk.Constraint] = fk

		if foreignTable, ok := r.tables[foreign]; ok {
			// constraint names are only unique per owning table
			key := fk.Constraint
			if _, dup := foreignTable.Referenced[key]; dup {
				key = owner.String() + "." + fk.Constraint
			}
			foreignTable.Referenced[key] = fk
		}
	}

	return r, nil
}
