// Package schema infers SQL column types from flat records.
//
// Types form a join-semilattice. Unknown (only ever seen null) is the
// bottom, TEXT is the top, INTEGER sits below REAL, and VARCHAR, BOOLEAN and
// REAL sit directly below TEXT. Widening two observations is their join, so
// the resulting schema does not depend on the order records are scanned in.
package schema

import (
	"fmt"
	"unicode/utf8"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/types"
)

// DefaultVarcharLength is the longest string stored as VARCHAR.
const DefaultVarcharLength = 255

// Type is an inferred column type.
type Type int

const (
	Unknown Type = iota
	Boolean
	Integer
	Real
	Varchar
	Text
)

// String returns the type name without a length.
func (t Type) String() string {
	switch t {
	case Unknown:
		return "UNKNOWN"
	case Boolean:
		return "BOOLEAN"
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Varchar:
		return "VARCHAR"
	case Text:
		return "TEXT"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Widen returns the narrowest type that holds values of both a and b.
func Widen(a, b Type) Type {
	switch {
	case a == b:
		return a
	case a == Unknown:
		return b
	case b == Unknown:
		return a
	case (a == Integer && b == Real) || (a == Real && b == Integer):
		return Real
	default:
		return Text
	}
}

// Inferer maps JSON values to column types.
type Inferer struct {
	varcharLength int
}

// NewInferer creates an Inferer. A non-positive length uses DefaultVarcharLength.
func NewInferer(varcharLength int) *Inferer {
	if varcharLength <= 0 {
		varcharLength = DefaultVarcharLength
	}
	return &Inferer{varcharLength: varcharLength}
}

// VarcharLength returns the VARCHAR threshold.
func (i *Inferer) VarcharLength() int {
	return i.varcharLength
}

// TypeOf infers the type of a single value. Null yields Unknown, which a
// Schema reports as TEXT when nothing else is observed for the column.
func (i *Inferer) TypeOf(v jsonvalue.Value) Type {
	switch v.Kind() {
	case jsonvalue.Null:
		return Unknown
	case jsonvalue.Bool:
		return Boolean
	case jsonvalue.Integer:
		return Integer
	case jsonvalue.Float:
		return Real
	case jsonvalue.String:
		if utf8.RuneCountInString(v.Literal()) <= i.varcharLength {
			return Varchar
		}
		return Text
	default:
		// Arrays and objects are stored as JSON text
		return Text
	}
}

// Infer scans records and builds a schema with columns in first-seen order.
func (i *Inferer) Infer(records []*types.Record) *Schema {
	s := &Schema{
		columns:       orderedmap.NewOrderedMap[string, Type](),
		varcharLength: i.varcharLength,
	}
	for _, rec := range records {
		rec.Each(func(key string, v jsonvalue.Value) {
			s.Observe(key, i.TypeOf(v))
		})
	}
	return s
}

// Schema is an ordered column -> type mapping.
type Schema struct {
	columns       *orderedmap.OrderedMap[string, Type]
	varcharLength int
}

// Observe widens the column's type with t, adding the column if new.
func (s *Schema) Observe(column string, t Type) {
	current, ok := s.columns.Get(column)
	if !ok {
		s.columns.Set(column, t)
		return
	}
	s.columns.Set(column, Widen(current, t))
}

// Columns returns column names in first-seen order.
func (s *Schema) Columns() []string {
	cols := make([]string, 0, s.columns.Len())
	for el := s.columns.Front(); el != nil; el = el.Next() {
		cols = append(cols, el.Key)
	}
	return cols
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return s.columns.Len()
}

// Type returns the resolved type of column. Unknown resolves to Text.
func (s *Schema) Type(column string) Type {
	t, ok := s.columns.Get(column)
	if !ok || t == Unknown {
		return Text
	}
	return t
}

// SQLType returns the DDL type for column, e.g. "VARCHAR(255)".
func (s *Schema) SQLType(column string) string {
	t := s.Type(column)
	if t == Varchar {
		return fmt.Sprintf("VARCHAR(%d)", s.varcharLength)
	}
	return t.String()
}
