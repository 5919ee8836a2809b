package keysync

import (
	"strconv"
	"strings"
)

// JoinKey appends an object key to a dotted path. At the root the key stands
// alone. Keys are not escaped, so a key containing '.' reads as two segments.
func JoinKey(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// JoinIndex appends an array index to a path.
func JoinIndex(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}

// Segment is one step of a path: either an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns an object-key segment.
func KeySegment(key string) Segment { return Segment{Key: key} }

// IndexSegment returns an array-index segment.
func IndexSegment(i int) Segment { return Segment{Index: i, IsIndex: true} }

// FormatPath renders segments in dotted/bracket notation.
func FormatPath(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer renders segments as an RFC 6901 JSON Pointer. The root is "/".
func Pointer(segs []Segment) string {
	if len(segs) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
			continue
		}
		b.WriteString(pointerEscaper.Replace(s.Key))
	}
	return b.String()
}
