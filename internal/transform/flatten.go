// Package transform turns a raw document of unknown shape into the views the
// report renders: headline summary cards and titled sections of typed rows.
// Every function here is pure and synchronous.
package transform

import "github.com/oakwood-commons/propdash/internal/document"

// FlatEntry is one dotted path and the value stored under it.
type FlatEntry struct {
	Path  string
	Value document.Value
}

// Flat is an ordered mapping from dotted path to leaf value.
type Flat struct {
	entries []FlatEntry
	index   map[string]int
}

// NewFlat returns an empty Flat.
func NewFlat() *Flat {
	return &Flat{index: map[string]int{}}
}

// Put stores v under path. Re-putting a path replaces the value in place.
func (f *Flat) Put(path string, v document.Value) {
	if f.index == nil {
		f.index = map[string]int{}
	}
	if i, ok := f.index[path]; ok {
		f.entries[i].Value = v
		return
	}
	f.index[path] = len(f.entries)
	f.entries = append(f.entries, FlatEntry{Path: path, Value: v})
}

// Get returns the value stored under path.
func (f *Flat) Get(path string) (document.Value, bool) {
	if f == nil {
		return document.Value{}, false
	}
	i, ok := f.index[path]
	if !ok {
		return document.Value{}, false
	}
	return f.entries[i].Value, true
}

// Entries returns the entries in traversal order.
func (f *Flat) Entries() []FlatEntry {
	if f == nil {
		return nil
	}
	return f.entries
}

// Len reports the number of entries.
func (f *Flat) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Flatten walks doc and records every leaf under its dotted path. Objects are
// descended into; arrays are not, and are stored whole under their key.
// A non-object doc yields no entries. When into is nil a fresh Flat is
// allocated; otherwise into is filled and returned.
func Flatten(doc document.Value, into *Flat) *Flat {
	if into == nil {
		into = NewFlat()
	}
	flattenInto(doc, "", into)
	return into
}

func flattenInto(node document.Value, prefix string, out *Flat) {
	for _, m := range node.Members() {
		path := joinPath(prefix, m.Key)
		if m.Value.Kind() == document.Object {
			flattenInto(m.Value, path, out)
			continue
		}
		out.Put(path, m.Value)
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
