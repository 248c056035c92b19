// Package flatten turns a JSON document into flat records keyed by dotted paths.
package flatten

import (
	"strconv"

	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/types"
)

// ValueKey is the key used for array elements and documents that are not objects.
const ValueKey = "value"

// DefaultSeparator joins path segments.
const DefaultSeparator = "."

// Options controls how paths are built.
type Options struct {
	Separator string
}

// DefaultOptions returns Options with the "." separator.
func DefaultOptions() Options {
	return Options{Separator: DefaultSeparator}
}

// Flatten converts doc into flat records using the default separator.
//
//   - array: one record per element; object elements are flattened, other
//     elements are stored under "value"
//   - object: a single record
//   - scalar: a single record {"value": scalar}
//
// Nested objects and arrays are descended without a depth limit; array
// indices become path segments ("addr.0.city"). When two paths collapse to
// the same key the later one silently overwrites the earlier value.
func Flatten(doc jsonvalue.Value) []*types.Record {
	return FlattenWithOptions(doc, DefaultOptions())
}

// FlattenWithOptions is Flatten with a custom separator.
func FlattenWithOptions(doc jsonvalue.Value, opts Options) []*types.Record {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	f := flattener{sep: opts.Separator}

	switch doc.Kind() {
	case jsonvalue.Array:
		records := make([]*types.Record, 0, doc.Len())
		for _, item := range doc.Items() {
			records = append(records, f.record(item))
		}
		return records
	default:
		return []*types.Record{f.record(doc)}
	}
}

type flattener struct {
	sep string
}

// record flattens one top-level value into its own record.
func (f flattener) record(v jsonvalue.Value) *types.Record {
	rec := types.NewRecord()
	if v.Kind() == jsonvalue.Object {
		for _, m := range v.Members() {
			f.walk(rec, m.Key, m.Value)
		}
		return rec
	}
	f.walk(rec, ValueKey, v)
	return rec
}

func (f flattener) walk(rec *types.Record, path string, v jsonvalue.Value) {
	switch v.Kind() {
	case jsonvalue.Object:
		if v.Len() == 0 {
			// Nothing to descend into; keep the empty container as a leaf
			rec.Set(path, v)
			return
		}
		for _, m := range v.Members() {
			f.walk(rec, path+f.sep+m.Key, m.Value)
		}
	case jsonvalue.Array:
		if v.Len() == 0 {
			rec.Set(path, v)
			return
		}
		for i, item := range v.Items() {
			f.walk(rec, path+f.sep+strconv.Itoa(i), item)
		}
	default:
		rec.Set(path, v)
	}
}
