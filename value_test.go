package keysync

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_KeepsInsertionOrder(t *testing.T) {
	m := NewMapping(Entry{"b", Scalar{V: 1}}, Entry{"a", Scalar{V: 2}}, Entry{"c", Scalar{V: 3}})
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())

	m.Set("a", Scalar{V: "replaced"})
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, Scalar{V: "replaced"}, v)
}

func TestMapping_LookupMissingIsAbsent(t *testing.T) {
	m := NewMapping()
	assert.Equal(t, KindAbsent, m.Lookup("nope").Kind())
	assert.False(t, m.Has("nope"))

	var nilMap *Mapping
	assert.Equal(t, 0, nilMap.Len())
	assert.Equal(t, KindAbsent, nilMap.Lookup("x").Kind())
}

func TestMapping_SetNilStoresNull(t *testing.T) {
	m := NewMapping()
	m.Set("x", nil)
	v, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, Null(), v)
}

func TestMapping_RangeStops(t *testing.T) {
	m := NewMapping(Entry{"a", Null()}, Entry{"b", Null()}, Entry{"c", Null()})
	var seen []string
	m.Range(func(k string, _ Value) bool {
		seen = append(seen, k)
		return k != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestSequence_At(t *testing.T) {
	s := Sequence{Scalar{V: "x"}}
	assert.Equal(t, Scalar{V: "x"}, s.At(0))
	assert.Equal(t, Absent, s.At(1))
	assert.Equal(t, Absent, s.At(-1))
}

func TestAbsentIsNotNull(t *testing.T) {
	assert.NotEqual(t, Absent, Value(Null()))
	assert.Equal(t, KindAbsent, Absent.Kind())
	assert.Equal(t, KindScalar, Null().Kind())
	assert.True(t, Null().IsNull())
}

func TestFromAny_SortsMapKeys(t *testing.T) {
	v := FromAny(map[string]any{"z": 1, "a": []any{"x", nil}, "m": map[string]any{"k": true}})
	m, ok := v.(*Mapping)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "m", "z"}, m.Keys())

	seq, ok := m.Lookup("a").(Sequence)
	require.True(t, ok)
	assert.Equal(t, Sequence{Scalar{V: "x"}, Null()}, seq)
	assert.Equal(t, Scalar{V: int64(1)}, m.Lookup("z"))
}

func TestToAny_RoundTripsShape(t *testing.T) {
	in := map[string]any{"a": []any{json.Number("1"), "s"}, "b": map[string]any{"c": nil}}
	assert.Equal(t, in, ToAny(FromAny(in)))
	assert.Nil(t, ToAny(Absent))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "absent", KindAbsent.String())
	assert.Equal(t, "scalar", KindScalar.String())
	assert.Equal(t, "sequence", KindSequence.String())
	assert.Equal(t, "mapping", KindMapping.String())
}
