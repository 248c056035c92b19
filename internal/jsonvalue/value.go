// Package jsonvalue provides an immutable, order-preserving JSON value tree.
//
// Objects keep their keys in document order so that downstream consumers
// (column order in SQL, child order in XML) see keys the way they were
// written. Numbers keep their source literal so that no precision is lost
// between parsing and serialization.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Integer
	Float
	String
	Array
	Object
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a parsed JSON value. The zero Value is JSON null.
type Value struct {
	kind   Kind
	b      bool
	text   string // string contents or number literal
	items  []Value
	fields *orderedmap.OrderedMap[string, Value]
}

// Member is a key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// NewNull returns JSON null.
func NewNull() Value {
	return Value{kind: Null}
}

// NewBool returns a JSON boolean.
func NewBool(b bool) Value {
	return Value{kind: Bool, b: b}
}

// NewString returns a JSON string.
func NewString(s string) Value {
	return Value{kind: String, text: s}
}

// NewInt returns a JSON integer.
func NewInt(i int64) Value {
	return Value{kind: Integer, text: strconv.FormatInt(i, 10)}
}

// NewFloat returns a JSON number that is always classified as Float,
// even when it has no fractional part.
func NewFloat(f float64) Value {
	lit := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(lit, ".eEnN") {
		lit += ".0"
	}
	return Value{kind: Float, text: lit}
}

// NewNumber classifies a JSON number literal. Literals without a fraction
// or exponent are Integer, everything else is Float.
func NewNumber(literal string) Value {
	if strings.ContainsAny(literal, ".eE") {
		return Value{kind: Float, text: literal}
	}
	return Value{kind: Integer, text: literal}
}

// NewArray returns a JSON array holding items.
func NewArray(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: Array, items: cp}
}

// NewObject returns a JSON object. When a key repeats, the last value wins
// and the key keeps its first position.
func NewObject(members ...Member) Value {
	fields := orderedmap.NewOrderedMap[string, Value]()
	for _, m := range members {
		fields.Set(m.Key, m.Value)
	}
	return Value{kind: Object, fields: fields}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsScalar reports whether v is neither an array nor an object.
func (v Value) IsScalar() bool {
	return v.kind != Array && v.kind != Object
}

// Bool returns the boolean payload. It is false for non-boolean values.
func (v Value) Bool() bool {
	return v.b
}

// Literal returns the string contents of a String or the source literal
// of a number. It is empty for other kinds.
func (v Value) Literal() string {
	return v.text
}

// Len returns the number of elements of an array or members of an object.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		if v.fields == nil {
			return 0
		}
		return v.fields.Len()
	default:
		return 0
	}
}

// Items returns the elements of an array. The slice must not be modified.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.items
}

// Members returns the members of an object in document order.
func (v Value) Members() []Member {
	if v.kind != Object || v.fields == nil {
		return nil
	}
	members := make([]Member, 0, v.fields.Len())
	for el := v.fields.Front(); el != nil; el = el.Next() {
		members = append(members, Member{Key: el.Key, Value: el.Value})
	}
	return members
}

// Get looks up a member of an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object || v.fields == nil {
		return Value{}, false
	}
	return v.fields.Get(key)
}

// String renders v as plain text: strings unquoted, numbers as their
// literal, booleans as true/false, null as the empty string, and
// containers as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.b)
	case Integer, Float, String:
		return v.text
	default:
		data, _ := v.MarshalJSON()
		return string(data)
	}
}

// MarshalJSON encodes v as compact JSON with object keys in document order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Integer, Float:
		buf.WriteString(v.text)
	case String:
		return writeJSONString(buf, v.text)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.Members() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// writeJSONString quotes s without HTML escaping.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
