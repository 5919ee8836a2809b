package report

import (
	"errors"
	"io"

	gojson "github.com/goccy/go-json"

	keysync "github.com/reoring/keysync"
	"github.com/reoring/keysync/runner"
)

// JSON renders the report as a single JSON object.
type JSON struct {
	Indent string
}

type jsonReport struct {
	Template     string          `json:"template,omitempty"`
	OK           bool            `json:"ok"`
	NoCandidates bool            `json:"no_candidates,omitempty"`
	Candidates   []jsonCandidate `json:"candidates"`
	Error        *jsonError      `json:"error,omitempty"`
}

type jsonCandidate struct {
	Candidate string        `json:"candidate"`
	Missing   []jsonMissing `json:"missing"`
}

type jsonMissing struct {
	Path    string `json:"path"`
	Pointer string `json:"pointer"`
	Reason  string `json:"reason"`
	Got     string `json:"got,omitempty"`
}

type jsonError struct {
	Code      string `json:"code"`
	Candidate string `json:"candidate,omitempty"`
	Message   string `json:"message"`
}

func (j JSON) Render(w io.Writer, rep *runner.Report) error {
	out := jsonReport{
		Template:     rep.Template,
		OK:           !rep.Failed(),
		NoCandidates: rep.NoCandidates,
		Candidates:   make([]jsonCandidate, 0, len(rep.Results)),
	}
	for _, res := range rep.Results {
		c := jsonCandidate{Candidate: res.Candidate, Missing: make([]jsonMissing, 0, len(res.Missing))}
		for _, m := range res.Missing {
			jm := jsonMissing{Path: m.Path, Pointer: m.Pointer, Reason: m.Reason.String()}
			if m.Reason == keysync.ReasonShape {
				jm.Got = m.Got.String()
			}
			c.Missing = append(c.Missing, jm)
		}
		out.Candidates = append(out.Candidates, c)
	}
	if rep.NoCandidates {
		out.Error = &jsonError{Code: keysync.CodeNoCandidates, Message: keysync.ErrNoCandidates.Error()}
	}
	return j.encode(w, out)
}

func (j JSON) RenderError(w io.Writer, err error) error {
	je := &jsonError{Code: "error", Message: errorMessage(err)}
	var le *keysync.LoadError
	if errors.As(err, &le) {
		je.Code = keysync.CodeLoadFailure
		je.Candidate = le.Candidate
	}
	return j.encode(w, jsonReport{Candidates: []jsonCandidate{}, Error: je})
}

func (j JSON) encode(w io.Writer, v any) error {
	enc := gojson.NewEncoder(w)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	return enc.Encode(v)
}
