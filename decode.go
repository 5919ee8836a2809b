package keysync

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	eng "github.com/reoring/keysync/internal/engine"
)

// ErrTrailingData is returned when a JSON document holds more than one value.
var ErrTrailingData = errors.New("keysync: unexpected data after top-level value")

// DecodeValue builds a Value from the next complete value of src. Object keys
// keep their document order; a repeated key keeps its first position and its
// last value. Numbers are kept as json.Number.
func DecodeValue(src Source) (Value, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return decodeValue(src, tok)
}

// DecodeJSON decodes a single JSON document with the current JSON driver and
// the enforcement described by opt.
func DecodeJSON(data []byte, opt LoadOpt) (Value, error) {
	return DecodeJSONSource(JSONBytes(data), opt)
}

// DecodeJSONSource is DecodeJSON over an existing Source.
func DecodeJSONSource(src Source, opt LoadOpt) (Value, error) {
	src = EnforceSourceIfNeeded(src, opt)
	v, err := DecodeValue(src)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("keysync: empty JSON document: %w", io.ErrUnexpectedEOF)
		}
		return nil, wrapEngineError(err)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, wrapEngineError(err)
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

// wrapEngineError turns enforcement failures into Issues so callers can use
// AsIssues on load errors.
func wrapEngineError(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{{Pointer: ie.Path, Code: ie.Code, Message: ie.Message, Cause: err, Offset: -1}}
	}
	return err
}

func decodeValue(src Source, tok Token) (Value, error) {
	switch tok.Kind {
	case TokenBeginObject:
		return decodeObject(src)
	case TokenBeginArray:
		return decodeArray(src)
	case TokenString:
		return Scalar{V: tok.String}, nil
	case TokenNumber:
		return Scalar{V: json.Number(tok.Number)}, nil
	case TokenBool:
		return Scalar{V: tok.Bool}, nil
	case TokenNull:
		return Null(), nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src Source) (Value, error) {
	m := NewMapping()
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if tok.Kind == TokenEndObject {
			return m, nil
		}
		if tok.Kind != TokenKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		m.Set(tok.String, v)
	}
}

func decodeArray(src Source) (Value, error) {
	arr := Sequence{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if tok.Kind == TokenEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// A clean EOF inside a container is still a truncated document.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
