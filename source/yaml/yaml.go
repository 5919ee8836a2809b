// Package yaml decodes YAML documents into keysync Values, keeping mapping key
// order and reporting duplicate keys with their positions.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	keysync "github.com/reoring/keysync"
	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// Decode parses the first document of data. An empty stream decodes to null.
// Duplicate keys are an error when opt.Strictness.OnDuplicateKey is Error,
// reported through opt.OnIssue when Warn, and otherwise resolved with the last
// value winning.
func Decode(data []byte, opt keysync.LoadOpt) (keysync.Value, error) {
	v, err := NewReader(bytes.NewReader(data), opt).Next()
	if errors.Is(err, io.EOF) {
		return keysync.Null(), nil
	}
	return v, err
}

// Reader decodes a multi-document YAML stream.
type Reader struct {
	dec *yaml.Decoder
	opt keysync.LoadOpt
}

// NewReader constructs a Reader.
func NewReader(r io.Reader, opt keysync.LoadOpt) *Reader {
	return &Reader{dec: yaml.NewDecoder(r), opt: opt}
}

// Next returns the next document. It returns (nil, io.EOF) when the stream is
// exhausted.
func (r *Reader) Next() (keysync.Value, error) {
	var root yaml.Node
	if err := r.dec.Decode(&root); err != nil {
		return nil, err
	}
	c := converter{opt: r.opt, active: map[*yaml.Node]bool{}}
	return c.node(&root, 0, nil)
}

// ReadAll reads all documents from the YAML stream.
func (r *Reader) ReadAll() ([]keysync.Value, error) {
	var out []keysync.Value
	for {
		v, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

type converter struct {
	opt keysync.LoadOpt
	// aliases being expanded on the current branch
	active map[*yaml.Node]bool
}

// node converts n found at path at; depth counts the mappings and sequences
// enclosing n.
func (c converter) node(n *yaml.Node, depth int, at []keysync.Segment) (keysync.Value, error) {
	if (n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode) && c.opt.MaxDepth > 0 && depth+1 > c.opt.MaxDepth {
		return nil, fmt.Errorf("yaml: max depth %d exceeded at %d:%d", c.opt.MaxDepth, n.Line, n.Column)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return keysync.Null(), nil
		}
		return c.node(n.Content[0], depth, at)
	case yaml.AliasNode:
		if n.Alias == nil {
			return keysync.Null(), nil
		}
		if c.active[n.Alias] {
			return nil, fmt.Errorf("yaml: alias *%s at %d:%d refers to itself", n.Value, n.Line, n.Column)
		}
		c.active[n.Alias] = true
		defer delete(c.active, n.Alias)
		return c.node(n.Alias, depth, at)
	case yaml.MappingNode:
		return c.mapping(n, depth, at)
	case yaml.SequenceNode:
		seq := make(keysync.Sequence, 0, len(n.Content))
		for i, child := range n.Content {
			v, err := c.node(child, depth+1, extend(at, keysync.IndexSegment(i)))
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	default:
		return keysync.Null(), nil
	}
}

func (c converter) mapping(n *yaml.Node, depth int, at []keysync.Segment) (keysync.Value, error) {
	m := keysync.NewMapping()
	first := make(map[string][2]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		v := n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.Value == "<<" && k.ShortTag() == "!!merge" {
			if err := c.merge(m, v, depth, at); err != nil {
				return nil, err
			}
			continue
		}
		key := k.Value
		keyAt := extend(at, keysync.KeySegment(key))
		if pos, dup := first[key]; dup {
			derr := &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			switch c.opt.Strictness.OnDuplicateKey {
			case keysync.Error:
				return nil, derr
			case keysync.Warn:
				if c.opt.OnIssue != nil {
					c.opt.OnIssue(keysync.Issue{
						Code:    keysync.CodeDuplicateKey,
						Path:    keysync.FormatPath(keyAt),
						Pointer: keysync.Pointer(keyAt),
						Message: derr.Error(),
						Cause:   derr,
						Offset:  -1,
					})
				}
			}
		}
		first[key] = [2]int{k.Line, k.Column}
		val, err := c.node(v, depth+1, keyAt)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
	return m, nil
}

// merge applies a "<<" merge key: entries from the referenced mapping(s) are
// added unless the mapping already defines them.
func (c converter) merge(dst *keysync.Mapping, n *yaml.Node, depth int, at []keysync.Segment) error {
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		v, err := c.node(src, depth, at)
		if err != nil {
			return err
		}
		sm, ok := v.(*keysync.Mapping)
		if !ok {
			return fmt.Errorf("yaml: merge key at %d:%d does not reference a mapping", n.Line, n.Column)
		}
		sm.Range(func(k string, vv keysync.Value) bool {
			if !dst.Has(k) {
				dst.Set(k, vv)
			}
			return true
		})
	}
	return nil
}

// extend returns at plus seg without sharing at's backing array.
func extend(at []keysync.Segment, seg keysync.Segment) []keysync.Segment {
	out := make([]keysync.Segment, len(at), len(at)+1)
	copy(out, at)
	return append(out, seg)
}

func scalar(n *yaml.Node) keysync.Value {
	switch n.ShortTag() {
	case "!!null":
		return keysync.Null()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return keysync.Scalar{V: b}
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return keysync.Scalar{V: i}
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return keysync.Scalar{V: f}
		}
	}
	return keysync.Scalar{V: n.Value}
}
