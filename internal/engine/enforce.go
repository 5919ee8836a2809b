package engine

import (
	"strconv"
	"strings"
)

// EnforceOptions controls what WrapWithEnforcement checks while tokens stream by.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives findings that do not stop decoding, such as duplicate
	// keys under DupWarn. Fatal issues are only returned as IssueError.
	IssueSink func(SimpleIssue)
}

// frame is one open container. For objects, key holds the member whose value
// is pending ("" with hasKey=false between members). For arrays, next is the
// index the following element will take.
type frame struct {
	pointer string
	object  bool
	seen    map[string]struct{}
	key     string
	hasKey  bool
	next    int
}

// WrapWithEnforcement returns a TokenSource that rejects (or reports) duplicate
// object keys, nesting deeper than MaxDepth and input beyond MaxBytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcer{inner: inner, opt: opt}
}

type enforcer struct {
	inner  TokenSource
	opt    EnforceOptions
	frames []frame
}

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	var at string
	switch tok.Kind {
	case KindKey:
		at, err = e.key(tok.String)
	case KindBeginObject, KindBeginArray:
		at = e.valuePointer()
		e.frames = append(e.frames, frame{pointer: at, object: tok.Kind == KindBeginObject, seen: map[string]struct{}{}})
		if e.opt.MaxDepth > 0 && len(e.frames) > e.opt.MaxDepth {
			err = IssueError{SimpleIssue{Code: CodeParseError, Path: rootSlash(at), Message: "max depth exceeded"}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.frames); n > 0 {
			at = e.frames[n-1].pointer
			e.frames = e.frames[:n-1]
		}
		e.memberDone()
	default:
		at = e.valuePointer()
		e.memberDone()
	}
	if err != nil {
		return Token{}, err
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return Token{}, IssueError{SimpleIssue{Code: CodeTruncated, Path: rootSlash(at), Message: "max bytes exceeded"}}
		}
	}
	return tok, nil
}

func (e *enforcer) Location() int64 { return e.inner.Location() }

func (e *enforcer) key(k string) (string, error) {
	n := len(e.frames)
	if n == 0 || !e.frames[n-1].object {
		return "", nil
	}
	top := &e.frames[n-1]
	at := top.pointer + "/" + escapePointer(k)
	if _, dup := top.seen[k]; dup && e.opt.OnDuplicate != DupIgnore {
		si := SimpleIssue{Code: CodeDuplicateKey, Path: at, Message: "key '" + k + "' duplicated"}
		if e.opt.OnDuplicate == DupError {
			return at, IssueError{si}
		}
		if e.opt.IssueSink != nil {
			e.opt.IssueSink(si)
		}
	}
	top.seen[k] = struct{}{}
	top.key, top.hasKey = k, true
	return at, nil
}

// valuePointer is the pointer of the value that starts now. Array indexes are
// consumed here.
func (e *enforcer) valuePointer() string {
	n := len(e.frames)
	if n == 0 {
		return ""
	}
	top := &e.frames[n-1]
	if top.object {
		if !top.hasKey {
			return top.pointer
		}
		return top.pointer + "/" + escapePointer(top.key)
	}
	i := top.next
	top.next++
	return top.pointer + "/" + strconv.Itoa(i)
}

func (e *enforcer) memberDone() {
	if n := len(e.frames); n > 0 && e.frames[n-1].object {
		e.frames[n-1].key, e.frames[n-1].hasKey = "", false
	}
}


func rootSlash(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(s string) string { return pointerEscaper.Replace(s) }
