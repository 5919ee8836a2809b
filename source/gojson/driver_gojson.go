// Package gojson provides a keysync.JSONDriver backed by goccy/go-json.
package gojson

import (
	"bytes"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"

	keysync "github.com/reoring/keysync"
	eng "github.com/reoring/keysync/internal/engine"
)

// Driver returns a keysync.JSONDriver backed by goccy/go-json.
func Driver() keysync.JSONDriver { return driver{} }

type driver struct{}

func (driver) NewReader(r io.Reader) keysync.Source { return keysync.SourceFromEngine(NewReader(r)) }
func (driver) NewBytes(b []byte) keysync.Source     { return keysync.SourceFromEngine(NewBytes(b)) }
func (driver) Name() string                         { return "go-json" }

type source struct {
	dec  *gojson.Decoder
	in   *countingReader
	keys eng.KeyTracker
}

// countingReader tracks how many bytes the decoder has pulled from r.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// NewReader wraps an io.Reader into an engine.TokenSource using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	in := &countingReader{r: r}
	dec := gojson.NewDecoder(in)
	dec.UseNumber()
	return &source{dec: dec, in: in}
}

// NewBytes wraps a byte slice into an engine.TokenSource using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	raw, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	tok := eng.Token{Offset: -1}
	switch v := raw.(type) {
	case gojson.Delim:
		if v == '{' || v == '[' {
			tok.Kind = s.keys.Open(v == '{')
		} else {
			tok.Kind = s.keys.Close()
		}
	case string:
		tok.Kind = s.keys.String()
		tok.String = v
	case bool:
		s.keys.Value()
		tok.Kind, tok.Bool = eng.KindBool, v
	case gojson.Number:
		s.keys.Value()
		tok.Kind, tok.Number = eng.KindNumber, string(v)
	case float64:
		s.keys.Value()
		tok.Kind, tok.Number = eng.KindNumber, strconv.FormatFloat(v, 'g', -1, 64)
	default:
		s.keys.Value()
		tok.Kind = eng.KindNull
	}
	return tok, nil
}

// Location is the number of bytes read from the input so far. go-json does
// not expose its token offset and reads ahead in chunks, so this can run ahead
// of the current token but never past the end of the input.
func (s *source) Location() int64 { return s.in.n }
