package query

import (
	"fmt"
	"strings"
)

// Column declares an updatable field and the storage column it writes.
// An empty Name maps the field to a column of the same name.
type Column struct {
	Field string
	Name  string
}

// Assignment is one field the caller wants to change.
type Assignment struct {
	Field string
	Value any
}

// Changes is an ordered partial update.
type Changes []Assignment

// Set appends an assignment and returns the extended slice.
func (c Changes) Set(field string, value any) Changes {
	return append(c, Assignment{Field: field, Value: value})
}

// Get returns the value assigned to field, if any.
func (c Changes) Get(field string) (any, bool) {
	for _, a := range c {
		if a.Field == field {
			return a.Value, true
		}
	}
	return nil, false
}

// ColumnMap is the exhaustive table of fields an entity allows to be
// updated.
type ColumnMap struct {
	columns map[string]string
}

func NewColumnMap(cols ...Column) (*ColumnMap, error) {
	m := &ColumnMap{columns: make(map[string]string, len(cols))}
	for _, c := range cols {
		if c.Field == "" {
			return nil, fmt.Errorf("column %q has no field name", c.Name)
		}
		name := c.Name
		if name == "" {
			name = c.Field
		}
		if !identRe.MatchString(name) {
			return nil, fmt.Errorf("field %q: invalid column %q", c.Field, name)
		}
		if _, ok := m.columns[c.Field]; ok {
			return nil, fmt.Errorf("duplicate field %q", c.Field)
		}
		m.columns[c.Field] = name
	}

	return m, nil
}

// MustColumnMap is like NewColumnMap but panics on an invalid declaration.
func MustColumnMap(cols ...Column) *ColumnMap {
	m, err := NewColumnMap(cols...)
	if err != nil {
		panic(err)
	}
	return m
}

// Column returns the storage column for field.
func (m *ColumnMap) Column(field string) (string, bool) {
	if m == nil {
		return "", false
	}
	name, ok := m.columns[field]
	return name, ok
}

// Build returns the SET list and parameters for changes, in input order.
// The next free placeholder is len(params)+1.
func (m *ColumnMap) Build(changes Changes) (string, []any, error) {
	if len(changes) == 0 {
		return "", nil, validationErrorf("no fields to update")
	}

	sets := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes))
	seen := make(map[string]struct{}, len(changes))
	for _, a := range changes {
		col, ok := m.Column(a.Field)
		if !ok {
			return "", nil, validationErrorf("field %q cannot be updated", a.Field)
		}
		if _, dup := seen[a.Field]; dup {
			return "", nil, validationErrorf("field %q given more than once", a.Field)
		}
		seen[a.Field] = struct{}{}

		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, a.Value)
	}

	return strings.Join(sets, ", "), args, nil
}
