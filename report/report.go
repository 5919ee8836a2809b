// Package report renders runner reports for people and machines.
package report

import (
	"fmt"
	"io"

	"github.com/reoring/keysync/runner"
)

// Renderer writes a report, or the error that ended a run, to w.
type Renderer interface {
	Render(w io.Writer, rep *runner.Report) error
	RenderError(w io.Writer, err error) error
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"text", "json"}

// ForFormat returns the Renderer registered under name.
func ForFormat(name string) (Renderer, error) {
	switch name {
	case "", "text":
		return Text{}, nil
	case "json":
		return JSON{Indent: "  "}, nil
	}
	return nil, fmt.Errorf("unknown report format %q (want one of %v)", name, Formats)
}
