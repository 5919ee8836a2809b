package keysync

import (
	"fmt"
	"sort"
)

// Kind enumerates the shapes a Value can take.
type Kind int

const (
	KindAbsent   Kind = iota // No value at this location.
	KindScalar               // String, number, bool or null.
	KindSequence             // Ordered list of values.
	KindMapping              // String-keyed map with stable key order.
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a template or candidate document. The set of
// implementations is closed: Scalar, Sequence, *Mapping and Absent.
type Value interface {
	Kind() Kind
	value()
}

// Scalar holds a leaf value. V is one of string, json.Number, int64, float64,
// bool or nil (null).
type Scalar struct {
	V any
}

func (Scalar) Kind() Kind { return KindScalar }
func (Scalar) value()     {}

// IsNull reports whether the scalar is an explicit null.
func (s Scalar) IsNull() bool { return s.V == nil }

// Null returns the null scalar.
func Null() Scalar { return Scalar{} }

// Sequence is an ordered list of values.
type Sequence []Value

func (Sequence) Kind() Kind { return KindSequence }
func (Sequence) value()     {}

// At returns the element at i, or Absent when i is out of range.
func (s Sequence) At(i int) Value {
	if i < 0 || i >= len(s) {
		return Absent
	}
	return s[i]
}

type absent struct{}

func (absent) Kind() Kind     { return KindAbsent }
func (absent) value()         {}
func (absent) String() string { return "<absent>" }

// Absent marks a location where a document has no value at all. It is never
// produced by decoders; a present null decodes to Null().
var Absent Value = absent{}

// Entry is a key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Value
}

// Mapping is a string-keyed map that iterates in insertion order.
type Mapping struct {
	keys   []string
	fields map[string]Value
}

// NewMapping builds a Mapping from entries in order. A repeated key replaces
// the earlier value and keeps the earlier position.
func NewMapping(entries ...Entry) *Mapping {
	m := &Mapping{fields: make(map[string]Value, len(entries))}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (*Mapping) Kind() Kind { return KindMapping }
func (*Mapping) value()     {}

// Set stores v under key. New keys are appended to the iteration order.
func (m *Mapping) Set(key string, v Value) {
	if m.fields == nil {
		m.fields = make(map[string]Value)
	}
	if v == nil {
		v = Null()
	}
	if _, ok := m.fields[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = v
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.fields[key]
	return v, ok
}

// Lookup returns the value stored under key or Absent.
func (m *Mapping) Lookup(key string) Value {
	if v, ok := m.Get(key); ok {
		return v
	}
	return Absent
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Range calls fn for each entry in order until fn returns false.
func (m *Mapping) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.fields[k]) {
			return
		}
	}
}

// FromAny converts plain Go values into a Value. Keys of map[string]any are
// sorted because Go maps carry no order. Unsupported types become scalars.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := &Mapping{fields: make(map[string]Value, len(t))}
		for _, k := range keys {
			m.Set(k, FromAny(t[k]))
		}
		return m
	case []any:
		seq := make(Sequence, len(t))
		for i := range t {
			seq[i] = FromAny(t[i])
		}
		return seq
	case []string:
		seq := make(Sequence, len(t))
		for i := range t {
			seq[i] = Scalar{V: t[i]}
		}
		return seq
	case int:
		return Scalar{V: int64(t)}
	default:
		return Scalar{V: v}
	}
}

// ToAny converts a Value back into plain Go values. Mapping order is lost.
// Absent converts to nil.
func ToAny(v Value) any {
	switch t := v.(type) {
	case Scalar:
		return t.V
	case Sequence:
		out := make([]any, len(t))
		for i := range t {
			out[i] = ToAny(t[i])
		}
		return out
	case *Mapping:
		out := make(map[string]any, t.Len())
		t.Range(func(k string, vv Value) bool {
			out[k] = ToAny(vv)
			return true
		})
		return out
	default:
		return nil
	}
}
