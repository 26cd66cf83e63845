package fingerprint

import (
	"sort"
	"strconv"
	"strings"
)

// Snapshot is an ordered key to value collection serialized into a cache key.
// Insertion order of keys is preserved and significant. Absent values are
// never recorded, so presence of a key is itself part of the fingerprint.
type Snapshot struct {
	keys   []string
	values map[string]entry
}

type entryKind int

const (
	kindScalar entryKind = iota
	kindList
	kindMap
)

type entry struct {
	kind   entryKind
	scalar string
	list   []string
	mapped map[string]string
}

// New creates an empty snapshot.
func New() *Snapshot {
	return &Snapshot{values: make(map[string]entry)}
}

// Set records a scalar unconditionally, including blank values. Use it for
// identity fields whose emptiness is itself meaningful.
func (s *Snapshot) Set(key, value string) *Snapshot {
	s.put(key, entry{kind: kindScalar, scalar: value})
	return s
}

// PutString records a scalar, skipping blank values.
func (s *Snapshot) PutString(key, value string) *Snapshot {
	if strings.TrimSpace(value) == "" {
		return s
	}
	return s.Set(key, value)
}

// PutStringPtr records a scalar from an optional setting, skipping absence.
func (s *Snapshot) PutStringPtr(key string, value *string) *Snapshot {
	if value == nil {
		return s
	}
	return s.PutString(key, *value)
}

// PutList records an ordered sequence, skipping empty lists. Order is
// preserved: the caller decides whether the sequence is canonical.
func (s *Snapshot) PutList(key string, values []string) *Snapshot {
	if len(values) == 0 {
		return s
	}
	s.put(key, entry{kind: kindList, list: append([]string(nil), values...)})
	return s
}

// PutMap records a map, skipping empty maps. Keys are serialized in sorted
// order so iteration order of the source map never leaks into the result.
func (s *Snapshot) PutMap(key string, values map[string]string) *Snapshot {
	if len(values) == 0 {
		return s
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	s.put(key, entry{kind: kindMap, mapped: copied})
	return s
}

// PutBool records an optional boolean, skipping absence. An explicit false
// is a declared value and is recorded.
func (s *Snapshot) PutBool(key string, value *bool) *Snapshot {
	if value == nil {
		return s
	}
	return s.Set(key, strconv.FormatBool(*value))
}

// PutInt records an optional integer, skipping absence.
func (s *Snapshot) PutInt(key string, value *int) *Snapshot {
	if value == nil {
		return s
	}
	return s.Set(key, strconv.Itoa(*value))
}

func (s *Snapshot) put(key string, e entry) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = e
}

// Len returns the number of recorded keys.
func (s *Snapshot) Len() int {
	return len(s.keys)
}

// Build serializes the snapshot: key=value pairs joined by "|" in insertion
// order, lists bracketed as [a,b], maps as {k:v} with sorted keys. Equal
// content in equal insertion order always yields equal strings.
func (s *Snapshot) Build() string {
	var b strings.Builder
	for i, key := range s.keys {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(key)
		b.WriteByte('=')
		writeEntry(&b, s.values[key])
	}
	return b.String()
}

func writeEntry(b *strings.Builder, e entry) {
	switch e.kind {
	case kindScalar:
		b.WriteString(e.scalar)
	case kindList:
		b.WriteByte('[')
		for i, v := range e.list {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(v)
		}
		b.WriteByte(']')
	case kindMap:
		keys := make([]string, 0, len(e.mapped))
		for k := range e.mapped {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte(':')
			b.WriteString(e.mapped[k])
		}
		b.WriteByte('}')
	}
}
