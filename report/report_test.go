package report

import (
	"bytes"
	"errors"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysync "github.com/reoring/keysync"
	"github.com/reoring/keysync/i18n"
	"github.com/reoring/keysync/runner"
)

func sampleReport() *runner.Report {
	tmpl := keysync.FromAny(map[string]any{
		"menu":  map[string]any{"open": "Open"},
		"list":  []any{1, 2},
		"title": "T",
	})
	return &runner.Report{
		Template: "en.json",
		Results: []runner.Result{
			{Candidate: "de.json", Missing: keysync.DiffDetailed(tmpl, keysync.FromAny(map[string]any{"menu": "flat", "list": []any{1}, "title": "x"}))},
			{Candidate: "fr.json"},
			{Candidate: "ja.json", Missing: keysync.DiffDetailed(tmpl, keysync.FromAny(map[string]any{"menu": map[string]any{"open": "x"}, "list": []any{1, 2}}))},
		},
	}
}

func TestText_Missing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, sampleReport()))
	want := "Missing keys in de.json:\n" +
		"  list[1]\n" +
		"  menu.open\n" +
		"Missing keys in ja.json:\n" +
		"  title\n"
	assert.Equal(t, want, buf.String())
}

func TestText_Detailed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text{Detailed: true}.Render(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "  menu.open (scalar)\n")
	assert.Contains(t, buf.String(), "  list[1]\n")
}

func TestText_SuccessAndNoCandidates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, &runner.Report{Results: []runner.Result{{Candidate: "fr.json"}}}))
	assert.Equal(t, "All candidate documents contain all template keys.\n", buf.String())

	buf.Reset()
	require.NoError(t, Text{}.Render(&buf, &runner.Report{NoCandidates: true}))
	assert.Equal(t, "No candidate documents found to validate.\n", buf.String())
}

func TestText_RenderError(t *testing.T) {
	var buf bytes.Buffer
	err := &keysync.LoadError{Candidate: "fr.json", Cause: errors.New("unexpected EOF")}
	require.NoError(t, Text{}.RenderError(&buf, err))
	assert.Equal(t, "Error loading fr.json: unexpected EOF\n", buf.String())

	buf.Reset()
	require.NoError(t, Text{}.RenderError(&buf, errors.New("plain")))
	assert.Equal(t, "plain\n", buf.String())
}

func TestText_Japanese(t *testing.T) {
	i18n.SetLanguage("ja")
	t.Cleanup(func() { i18n.SetLanguage("en") })

	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "de.json に不足しているキー:\n")
}

func TestJSON_Render(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{}.Render(&buf, sampleReport()))

	var got struct {
		Template   string `json:"template"`
		OK         bool   `json:"ok"`
		Candidates []struct {
			Candidate string `json:"candidate"`
			Missing   []struct {
				Path    string `json:"path"`
				Pointer string `json:"pointer"`
				Reason  string `json:"reason"`
				Got     string `json:"got"`
			} `json:"missing"`
		} `json:"candidates"`
	}
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "en.json", got.Template)
	assert.False(t, got.OK)
	require.Len(t, got.Candidates, 3)
	assert.Equal(t, "de.json", got.Candidates[0].Candidate)
	require.Len(t, got.Candidates[0].Missing, 2)
	m := got.Candidates[0].Missing[1]
	assert.Equal(t, "menu.open", m.Path)
	assert.Equal(t, "/menu/open", m.Pointer)
	assert.Equal(t, "shape", m.Reason)
	assert.Equal(t, "scalar", m.Got)
	assert.Empty(t, got.Candidates[1].Missing)
}

func TestJSON_NoCandidatesAndError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{}.Render(&buf, &runner.Report{NoCandidates: true}))
	assert.JSONEq(t, `{"ok":false,"no_candidates":true,"candidates":[],"error":{"code":"no_candidates","message":"keysync: no candidate documents found"}}`, buf.String())

	buf.Reset()
	err := &keysync.LoadError{Candidate: "fr.json", Cause: errors.New("bad")}
	require.NoError(t, JSON{}.RenderError(&buf, err))
	assert.JSONEq(t, `{"ok":false,"candidates":[],"error":{"code":"load_failure","candidate":"fr.json","message":"Error loading fr.json: bad"}}`, buf.String())
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("text")
	require.NoError(t, err)
	assert.IsType(t, Text{}, r)
	r, err = ForFormat("json")
	require.NoError(t, err)
	assert.IsType(t, JSON{}, r)
	_, err = ForFormat("xml")
	require.Error(t, err)
}
