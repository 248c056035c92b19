// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import (
	"sort"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
)

// Record is one flat row: dotted path -> scalar value, in insertion order.
type Record struct {
	fields *orderedmap.OrderedMap[string, jsonvalue.Value]
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{fields: orderedmap.NewOrderedMap[string, jsonvalue.Value]()}
}

// Set stores v under key. An existing key keeps its position and takes the new value.
func (r *Record) Set(key string, v jsonvalue.Value) {
	r.fields.Set(key, v)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (jsonvalue.Value, bool) {
	return r.fields.Get(key)
}

// Keys returns the record's keys in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.fields.Len())
	for el := r.fields.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return r.fields.Len()
}

// Each calls fn for every field in insertion order.
func (r *Record) Each(fn func(key string, v jsonvalue.Value)) {
	for el := r.fields.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}

// UnionKeys returns the sorted union of keys across records.
func UnionKeys(records []*Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for el := rec.fields.Front(); el != nil; el = el.Next() {
			seen[el.Key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
