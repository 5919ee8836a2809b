package keysync

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeMissingKey    = "missing_key"
	CodeShapeMismatch = "shape_mismatch"
	CodeDuplicateKey  = "duplicate_key"
	CodeParseError    = "parse_error"
	CodeTruncated     = "truncated"
	CodeNoCandidates  = "no_candidates"
	CodeLoadFailure   = "load_failure"
)

var (
	// ErrNoCandidates is reported when the document source yields nothing to
	// check. A run without candidates is a failure, not a vacuous success.
	ErrNoCandidates = errors.New("keysync: no candidate documents found")
	// ErrMissingKeys is reported when at least one candidate lacks template paths.
	ErrMissingKeys = errors.New("keysync: candidate documents are missing template keys")
)

// Issue represents a single finding about a document.
type Issue struct {
	Path    string // dotted path (for example: items[2].price).
	Pointer string // JSON Pointer of the same location (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	Offset  int64 // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"got":"scalar"}) for i18n
	// and machine-readable reports.
	Params map[string]any
}

// Issues is a collection of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		loc := it.Path
		if loc == "" {
			loc = it.Pointer
		}
		// e.g. missing_key at greeting.title
		fmt.Fprintf(b, "%s at %s", it.Code, loc)
		if it.Message != "" {
			b.WriteString(": " + it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// LoadError reports a candidate document that could not be read or parsed.
// It aborts a run instead of being folded into missing-key results.
type LoadError struct {
	Candidate string
	Cause     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("keysync: loading %s: %v", e.Candidate, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// AsLoadError extracts a *LoadError from err.
func AsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
