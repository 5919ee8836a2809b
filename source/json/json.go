// Package json adapts encoding/json's streaming decoder to the engine token
// protocol.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	eng "github.com/reoring/keysync/internal/engine"
)

type jsonSource struct {
	dec    *json.Decoder
	keys   eng.KeyTracker
	offset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, offset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	raw, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.offset = s.dec.InputOffset()
	tok := eng.Token{Offset: s.offset}

	switch v := raw.(type) {
	case json.Delim:
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
	case json.Number:
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

// Location is the decoder offset just past the last token.
func (s *jsonSource) Location() int64 { return s.offset }
