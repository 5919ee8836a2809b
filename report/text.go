package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	keysync "github.com/reoring/keysync"
	"github.com/reoring/keysync/i18n"
	"github.com/reoring/keysync/runner"
)

// Text renders line-oriented output. Styling is applied only when w is a
// terminal.
type Text struct {
	// Detailed marks paths reported because of a shape mismatch with the kind
	// the candidate had instead.
	Detailed bool
}

type textStyles struct {
	ok, header, err lipgloss.Style
}

func stylesFor(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		err:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

func (t Text) Render(w io.Writer, rep *runner.Report) error {
	st := stylesFor(w)
	if rep.NoCandidates {
		_, err := fmt.Fprintln(w, st.err.Render(i18n.T(keysync.CodeNoCandidates, nil)))
		return err
	}
	failing := rep.Failing()
	if len(failing) == 0 {
		_, err := fmt.Fprintln(w, st.ok.Render(i18n.T("all_present", nil)))
		return err
	}
	for _, res := range failing {
		header := i18n.T("missing_header", map[string]string{"candidate": res.Candidate})
		if _, err := fmt.Fprintln(w, st.header.Render(header)); err != nil {
			return err
		}
		for _, m := range res.Missing {
			line := m.Path
			if t.Detailed && m.Reason == keysync.ReasonShape {
				line = fmt.Sprintf("%s (%s)", m.Path, m.Got)
			}
			if _, err := fmt.Fprintln(w, "  "+line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (Text) RenderError(w io.Writer, err error) error {
	st := stylesFor(w)
	_, werr := fmt.Fprintln(w, st.err.Render(errorMessage(err)))
	return werr
}

func errorMessage(err error) string {
	var le *keysync.LoadError
	if errors.As(err, &le) {
		return i18n.T(keysync.CodeLoadFailure, map[string]string{
			"candidate": le.Candidate,
			"cause":     fmt.Sprint(le.Cause),
		})
	}
	return err.Error()
}
