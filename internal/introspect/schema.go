package introspect

import "sort"

// TableIdentity names a table within a schema. It is comparable and used as
// the key wherever tables are indexed.
type TableIdentity struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

func (t TableIdentity) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Column represents a table column.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// ForeignKey is one directed edge: Column on Table points at ForeignColumn
// on ForeignTable.
type ForeignKey struct {
	Constraint    string        `json:"constraint"`
	Table         TableIdentity `json:"table"`
	Column        Column        `json:"column"`
	ForeignTable  TableIdentity `json:"foreign_table"`
	ForeignColumn string        `json:"foreign_column"`
}

// Table represents a database table with a single-column primary key and
// its foreign keys in both directions.
type Table struct {
	Identity TableIdentity `json:"identity"`
	Primary  Column        `json:"primary"`
	Columns  []Column      `json:"columns"`

	// Referencing holds FKs owned by this table (toward parents).
	Referencing map[string]ForeignKey `json:"referencing"`
	// Referenced holds FKs owned by other tables that point here (toward children).
	Referenced map[string]ForeignKey `json:"referenced"`
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ReferencingKeys returns the referencing FKs ordered by constraint name.
func (t *Table) ReferencingKeys() []ForeignKey {
	return sortedKeys(t.Referencing)
}

// ReferencedKeys returns the referenced FKs ordered by constraint name.
func (t *Table) ReferencedKeys() []ForeignKey {
	return sortedKeys(t.Referenced)
}

func sortedKeys(m map[string]ForeignKey) []ForeignKey {
	out := make([]ForeignKey, 0, len(m))
	for _, fk := range m {
		out = append(out, fk)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Constraint != out[j].Constraint {
			return out[i].Constraint < out[j].Constraint
		}
		return out[i].Table.String() < out[j].Table.String()
	})
	return out
}

// Registry is the read-only set of tables loaded for one schema.
type Registry struct {
	tables map[TableIdentity]*Table
}

// Table returns the table registered under id.
func (r *Registry) Table(id TableIdentity) (*Table, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.tables[id]
	return t, ok
}

// Tables returns all tables sorted by identity.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Identity.Schema != out[j].Identity.Schema {
			return out[i].Identity.Schema < out[j].Identity.Schema
		}
		return out[i].Identity.Name < out[j].Identity.Name
	})
	return out
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	return len(r.tables)
}
