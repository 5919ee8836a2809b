package keysync

import "github.com/reoring/keysync/i18n"

// Reason explains why a template path is reported for a candidate.
type Reason int

const (
	// ReasonAbsent: the candidate has no value at the path or at one of its
	// ancestors.
	ReasonAbsent Reason = iota
	// ReasonShape: the candidate has a value at the path or at an ancestor, but
	// its shape cannot hold what the template defines there.
	ReasonShape
)

func (r Reason) String() string {
	if r == ReasonShape {
		return "shape"
	}
	return "absent"
}

// Missing is one reported template path with the context it was found in.
type Missing struct {
	Path    string // dotted/bracket notation, e.g. list[0].title
	Pointer string // RFC 6901 form of the same location, e.g. /list/0/title
	Reason  Reason
	// Got is the kind the candidate had at the node where matching stopped.
	// It is KindAbsent for ReasonAbsent.
	Got Kind
}

// Diff returns every path that template defines and candidate lacks or cannot
// represent, in depth-first template order. The root itself is never reported.
func Diff(template, candidate Value) []string {
	return DiffFrom(template, candidate, "")
}

// DiffFrom is Diff for a subtree whose accumulated path is currentPath.
func DiffFrom(template, candidate Value, currentPath string) []string {
	w := &walker{}
	w.compare(template, candidate, currentPath, cause{})
	return w.paths
}

// DiffDetailed is Diff with each path annotated by reason and JSON Pointer.
// The returned paths are exactly those of Diff, in the same order.
func DiffDetailed(template, candidate Value) []Missing {
	w := &walker{detailed: true}
	w.compare(template, candidate, "", cause{})
	return w.missing
}

// Paths lists every path a candidate has to provide to match template.
func Paths(template Value) []string {
	return Diff(template, Absent)
}

// MissingIssues converts the result of DiffDetailed into Issues.
func MissingIssues(missing []Missing) Issues {
	var iss Issues
	for _, m := range missing {
		code := CodeMissingKey
		params := map[string]any{}
		if m.Reason == ReasonShape {
			code = CodeShapeMismatch
			params["got"] = m.Got.String()
		}
		iss = AppendIssues(iss, Issue{
			Path:    m.Path,
			Pointer: m.Pointer,
			Code:    code,
			Message: i18n.T(code, map[string]string{"path": m.Path}),
			Params:  params,
		})
	}
	return iss
}

// cause records the first candidate node on the current branch that failed to
// match the template's shape.
type cause struct {
	set    bool
	reason Reason
	got    Kind
}

func (c cause) or(candidate Value) cause {
	if c.set {
		return c
	}
	if candidate.Kind() == KindAbsent {
		return cause{set: true, reason: ReasonAbsent, got: KindAbsent}
	}
	return cause{set: true, reason: ReasonShape, got: candidate.Kind()}
}

type walker struct {
	detailed bool
	segs     []Segment
	paths    []string
	missing  []Missing
}

func (w *walker) emit(path string, why cause) {
	w.paths = append(w.paths, path)
	if !w.detailed {
		return
	}
	w.missing = append(w.missing, Missing{
		Path:    path,
		Pointer: Pointer(w.segs),
		Reason:  why.reason,
		Got:     why.got,
	})
}

func (w *walker) push(s Segment) {
	if w.detailed {
		w.segs = append(w.segs, s)
	}
}

func (w *walker) pop() {
	if w.detailed {
		w.segs = w.segs[:len(w.segs)-1]
	}
}

func (w *walker) compare(t, c Value, path string, why cause) {
	if c == nil {
		c = Absent
	}
	switch tv := t.(type) {
	case Sequence:
		cs, ok := c.(Sequence)
		if !ok {
			why = why.or(c)
			if path != "" {
				w.emit(path, why)
			}
			for i := range tv {
				w.push(IndexSegment(i))
				w.compare(tv[i], Absent, JoinIndex(path, i), why)
				w.pop()
			}
			return
		}
		for i := range tv {
			w.push(IndexSegment(i))
			w.compare(tv[i], cs.At(i), JoinIndex(path, i), why)
			w.pop()
		}
	case *Mapping:
		cm, ok := c.(*Mapping)
		if !ok || cm == nil {
			why = why.or(c)
		}
		tv.Range(func(key string, child Value) bool {
			next := Absent
			if cm != nil {
				next = cm.Lookup(key)
			}
			w.push(KeySegment(key))
			w.compare(child, next, JoinKey(path, key), why)
			w.pop()
			return true
		})
	default:
		if c.Kind() == KindAbsent && path != "" {
			w.emit(path, why.or(c))
		}
	}
}
