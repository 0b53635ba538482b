// Package query builds the parameterized Spanner SELECT statements the
// element stores run.
package query

import (
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction is an ORDER BY direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Builder is an immutable SELECT statement under construction. Every method
// returns a new Builder, so a base query can be shared between a row query
// and its count.
type Builder struct {
	table      string
	columns    []string
	conditions []Condition
	orderBy    string
	direction  Direction
}

// From starts a query on table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends result columns. No columns selects *.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.columns = append(nb.columns, columns...)
	return nb
}

// Where adds a condition; conditions are joined with AND.
func (b *Builder) Where(c Condition) *Builder {
	nb := b.clone()
	nb.conditions = append(nb.conditions, c)
	return nb
}

func (b *Builder) OrderBy(column string, dir Direction) *Builder {
	nb := b.clone()
	nb.orderBy, nb.direction = column, dir
	return nb
}

// Count turns the query into a COUNT(*) over the same rows.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.columns = []string{"COUNT(*)"}
	nb.orderBy = ""
	return nb
}

// Build renders the statement. Parameters are named @p0, @p1 and so on in
// condition order.
func (b *Builder) Build() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]interface{})

	sql.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.columns, ", "))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	if len(b.conditions) > 0 {
		parts := make([]string, 0, len(b.conditions))
		next := 0
		for _, c := range b.conditions {
			fragment, cp := c.SQL(next)
			parts = append(parts, fragment)
			for k, v := range cp {
				params[k] = v
			}
			next += len(cp)
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if b.orderBy != "" {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(b.orderBy)
		if b.direction == Desc {
			sql.WriteString(" DESC")
		} else {
			sql.WriteString(" ASC")
		}
	}

	return spanner.Statement{SQL: sql.String(), Params: params}
}

func (b *Builder) clone() *Builder {
	nb := *b
	nb.columns = append([]string(nil), b.columns...)
	nb.conditions = append([]Condition(nil), b.conditions...)
	return &nb
}
