package sqlutil

import (
	"strconv"

	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
)

// FormatLiteral renders v as a SQL value literal.
//
//	null           -> NULL
//	true / false   -> TRUE / FALSE
//	numbers        -> the JSON literal unchanged
//	strings        -> 'quoted'
//	arrays/objects -> 'compact JSON text'
func FormatLiteral(v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.Null:
		return "NULL"
	case jsonvalue.Bool:
		if v.Bool() {
			return "TRUE"
		}
		return "FALSE"
	case jsonvalue.Integer, jsonvalue.Float:
		return v.Literal()
	case jsonvalue.String:
		return QuoteString(v.Literal())
	default:
		return QuoteString(v.String())
	}
}

// BindValue converts v to an argument for a ? placeholder. Numbers that do
// not fit int64 or float64 are passed as their literal text.
func BindValue(v jsonvalue.Value) interface{} {
	switch v.Kind() {
	case jsonvalue.Null:
		return nil
	case jsonvalue.Bool:
		return v.Bool()
	case jsonvalue.Integer:
		if i, err := strconv.ParseInt(v.Literal(), 10, 64); err == nil {
			return i
		}
		return v.Literal()
	case jsonvalue.Float:
		if f, err := strconv.ParseFloat(v.Literal(), 64); err == nil {
			return f
		}
		return v.Literal()
	case jsonvalue.String:
		return v.Literal()
	default:
		return v.String()
	}
}
