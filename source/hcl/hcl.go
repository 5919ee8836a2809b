// Package hcl decodes HCL native-syntax documents into keysync Values.
//
// Attributes and blocks become mapping keys in source order. A block
// `section "a" "b" { ... }` becomes the nested mapping section.a.b. Object and
// tuple constructor expressions are walked syntactically so their key order is
// kept; every other expression is evaluated without variables or functions and
// converted from its cty value, where object keys come out sorted.
package hcl

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	keysync "github.com/reoring/keysync"
)

// Decode parses data as an HCL file named filename (used in diagnostics).
func Decode(data []byte, filename string, opt keysync.LoadOpt) (keysync.Value, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to parse HCL file %s: unexpected body type %T", filename, file.Body)
	}
	d := decoder{opt: opt}
	return d.body(body, 0, nil)
}

type decoder struct {
	opt keysync.LoadOpt
}

// item is an attribute or a block, ordered by where it starts in the file.
type item struct {
	start int
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

func (d decoder) body(b *hclsyntax.Body, depth int, at []keysync.Segment) (*keysync.Mapping, error) {
	if err := d.checkDepth(depth, b.SrcRange); err != nil {
		return nil, err
	}
	items := make([]item, 0, len(b.Attributes)+len(b.Blocks))
	for _, a := range b.Attributes {
		items = append(items, item{start: a.SrcRange.Start.Byte, attr: a})
	}
	for _, blk := range b.Blocks {
		items = append(items, item{start: blk.TypeRange.Start.Byte, block: blk})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].start < items[j].start })

	m := keysync.NewMapping()
	for _, it := range items {
		if it.attr != nil {
			v, err := d.expr(it.attr.Expr, depth+1, extend(at, keysync.KeySegment(it.attr.Name)))
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", it.attr.Name, err)
			}
			m.Set(it.attr.Name, v)
			continue
		}
		if err := d.block(m, it.block, depth, at); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (d decoder) block(dst *keysync.Mapping, blk *hclsyntax.Block, depth int, at []keysync.Segment) error {
	keys := append([]string{blk.Type}, blk.Labels...)
	cur := dst
	for _, k := range keys[:len(keys)-1] {
		depth++
		existing, ok := cur.Get(k)
		if !ok {
			next := keysync.NewMapping()
			cur.Set(k, next)
			cur = next
			continue
		}
		next, isMap := existing.(*keysync.Mapping)
		if !isMap {
			return fmt.Errorf("%s: block %q conflicts with attribute %q", blk.TypeRange, blk.Type, k)
		}
		cur = next
	}
	last := keys[len(keys)-1]
	if cur.Has(last) {
		return fmt.Errorf("%s: duplicate block %s", blk.TypeRange, keysync.FormatPath(keySegments(keys)))
	}
	blockAt := at
	for _, k := range keys {
		blockAt = extend(blockAt, keysync.KeySegment(k))
	}
	body, err := d.body(blk.Body, depth+1, blockAt)
	if err != nil {
		return err
	}
	cur.Set(last, body)
	return nil
}

func (d decoder) expr(e hclsyntax.Expression, depth int, at []keysync.Segment) (keysync.Value, error) {
	switch x := e.(type) {
	case *hclsyntax.ParenthesesExpr:
		return d.expr(x.Expression, depth, at)
	case *hclsyntax.ObjectConsExpr:
		if err := d.checkDepth(depth, x.SrcRange); err != nil {
			return nil, err
		}
		m := keysync.NewMapping()
		for _, it := range x.Items {
			key, err := objectKey(it.KeyExpr)
			if err != nil {
				return nil, err
			}
			keyAt := extend(at, keysync.KeySegment(key))
			if m.Has(key) {
				if err := d.duplicate(keyAt, it.KeyExpr.Range()); err != nil {
					return nil, err
				}
			}
			v, err := d.expr(it.ValueExpr, depth+1, keyAt)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key, err)
			}
			m.Set(key, v)
		}
		return m, nil
	case *hclsyntax.TupleConsExpr:
		if err := d.checkDepth(depth, x.SrcRange); err != nil {
			return nil, err
		}
		seq := make(keysync.Sequence, 0, len(x.Exprs))
		for i, el := range x.Exprs {
			v, err := d.expr(el, depth+1, extend(at, keysync.IndexSegment(i)))
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	}
	val, diags := e.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyToValue(val)
}

// duplicate applies the duplicate key policy to the key at the end of at.
func (d decoder) duplicate(at []keysync.Segment, rng hcl.Range) error {
	msg := fmt.Sprintf("%s: duplicate object key %q", rng, at[len(at)-1].Key)
	switch d.opt.Strictness.OnDuplicateKey {
	case keysync.Error:
		return errors.New(msg)
	case keysync.Warn:
		if d.opt.OnIssue != nil {
			d.opt.OnIssue(keysync.Issue{
				Code:    keysync.CodeDuplicateKey,
				Path:    keysync.FormatPath(at),
				Pointer: keysync.Pointer(at),
				Message: msg,
				Offset:  int64(rng.Start.Byte),
			})
		}
	}
	return nil
}

func (d decoder) checkDepth(depth int, rng hcl.Range) error {
	if d.opt.MaxDepth > 0 && depth+1 > d.opt.MaxDepth {
		return fmt.Errorf("%s: max depth %d exceeded", rng, d.opt.MaxDepth)
	}
	return nil
}

func objectKey(e hclsyntax.Expression) (string, error) {
	kv, diags := e.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if kv.IsNull() || !kv.IsKnown() {
		return "", fmt.Errorf("%s: object key must be a known, non-null value", e.Range())
	}
	sv, err := convert.Convert(kv, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: object key: %w", e.Range(), err)
	}
	return sv.AsString(), nil
}

// ctyToValue recursively converts an evaluated cty.Value.
func ctyToValue(v cty.Value) (keysync.Value, error) {
	if v.IsNull() {
		return keysync.Null(), nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value of type %s is not known", v.Type().FriendlyName())
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return keysync.Scalar{V: v.AsString()}, nil
	case ty == cty.Number:
		return keysync.Scalar{V: json.Number(v.AsBigFloat().Text('f', -1))}, nil
	case ty == cty.Bool:
		return keysync.Scalar{V: v.True()}, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		seq := make(keysync.Sequence, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, el := it.Element()
			nv, err := ctyToValue(el)
			if err != nil {
				return nil, err
			}
			seq = append(seq, nv)
		}
		return seq, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := keysync.NewMapping()
		it := v.ElementIterator()
		for it.Next() {
			k, el := it.Element()
			key := k.AsString()
			nv, err := ctyToValue(el)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key, err)
			}
			m.Set(key, nv)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}

func extend(at []keysync.Segment, seg keysync.Segment) []keysync.Segment {
	out := make([]keysync.Segment, len(at), len(at)+1)
	copy(out, at)
	return append(out, seg)
}

func keySegments(keys []string) []keysync.Segment {
	segs := make([]keysync.Segment, len(keys))
	for i, k := range keys {
		segs[i] = keysync.KeySegment(k)
	}
	return segs
}
