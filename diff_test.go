package keysync_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysync "github.com/reoring/keysync"
)

// obj builds an ordered mapping from alternating keys and values.
func obj(kv ...any) *keysync.Mapping {
	m := keysync.NewMapping()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i].(string), keysync.FromAny(kv[i+1]))
	}
	return m
}

func seq(vs ...any) keysync.Sequence {
	out := make(keysync.Sequence, len(vs))
	for i, v := range vs {
		out[i] = keysync.FromAny(v)
	}
	return out
}

func s(v any) keysync.Scalar { return keysync.Scalar{V: v} }

func TestDiff_Scenarios(t *testing.T) {
	cases := []struct {
		name      string
		template  keysync.Value
		candidate keysync.Value
		want      []string
	}{
		{
			name:      "nested object missing reports leaves only",
			template:  obj("a", 1, "b", obj("c", 2)),
			candidate: obj("a", 1),
			want:      []string{"b.c"},
		},
		{
			name:      "array replaced by scalar",
			template:  obj("list", seq(1, 2, 3)),
			candidate: obj("list", "not an array"),
			want:      []string{"list", "list[0]", "list[1]", "list[2]"},
		},
		{
			name:      "object inside array",
			template:  obj("x", seq(obj("y", 1))),
			candidate: obj("x", seq(obj())),
			want:      []string{"x[0].y"},
		},
		{
			name:      "empty template object",
			template:  obj("a", obj()),
			candidate: obj(),
			want:      nil,
		},
		{
			name:      "shorter candidate array",
			template:  obj("list", seq("a", "b", "c")),
			candidate: obj("list", seq("a")),
			want:      []string{"list[1]", "list[2]"},
		},
		{
			name:      "scalar where object expected",
			template:  obj("menu", obj("open", "Open", "close", "Close")),
			candidate: obj("menu", "flat"),
			want:      []string{"menu.open", "menu.close"},
		},
		{
			name:      "null where array expected",
			template:  obj("tags", seq("x")),
			candidate: obj("tags", nil),
			want:      []string{"tags", "tags[0]"},
		},
		{
			name:      "present null scalar is not missing",
			template:  obj("title", "Hello"),
			candidate: obj("title", nil),
			want:      nil,
		},
		{
			name:      "mapping where array expected",
			template:  obj("list", seq(obj("a", 1))),
			candidate: obj("list", obj("a", 1)),
			want:      []string{"list", "list[0].a"},
		},
		{
			name:      "empty template array missing in candidate",
			template:  obj("list", seq()),
			candidate: obj(),
			want:      []string{"list"},
		},
		{
			name:      "extra candidate keys are ignored",
			template:  obj("a", 1),
			candidate: obj("a", 1, "b", 2),
			want:      nil,
		},
		{
			name:      "value types are not compared",
			template:  obj("n", 1, "s", "x"),
			candidate: obj("n", "one", "s", false),
			want:      nil,
		},
		{
			name:      "nested arrays",
			template:  obj("grid", seq(seq(1, 2), seq(3))),
			candidate: obj("grid", seq(seq(1))),
			want:      []string{"grid[0][1]", "grid[1]", "grid[1][0]"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := keysync.Diff(tc.template, tc.candidate)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Diff mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiff_IdenticalDocumentHasNothingMissing(t *testing.T) {
	docs := []keysync.Value{
		obj("a", 1, "b", obj("c", seq(1, obj("d", nil)))),
		seq(obj("x", 1), seq(2, 3)),
		s("scalar"),
		obj(),
		keysync.Null(),
	}
	for _, d := range docs {
		assert.Empty(t, keysync.Diff(d, d))
	}
}

func TestDiff_AllTopLevelKeysMissing(t *testing.T) {
	tmpl := obj(
		"title", "T",
		"menu", obj("file", obj("open", "O", "save", "S"), "edit", "E"),
		"list", seq("a", "b"),
	)
	got := keysync.Diff(tmpl, obj())
	want := []string{"title", "menu.file.open", "menu.file.save", "menu.edit", "list", "list[0]", "list[1]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestDiff_RootNeverReported(t *testing.T) {
	assert.Empty(t, keysync.Diff(s("x"), keysync.Absent))
	assert.Empty(t, keysync.Diff(obj(), keysync.Absent))
	// A root array still reports its elements.
	assert.Equal(t, []string{"[0]", "[1]"}, keysync.Diff(seq(1, 2), s("nope")))
}

func TestDiff_FollowsTemplateKeyOrder(t *testing.T) {
	tmpl := obj("zeta", 1, "alpha", 2, "mid", 3)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keysync.Diff(tmpl, obj()))
}

func TestDiff_Deterministic(t *testing.T) {
	tmpl := obj("a", seq(obj("b", 1, "c", seq(1, 2))), "d", obj("e", 1))
	cand := obj("a", seq(obj("c", seq(1))))
	first := keysync.Diff(tmpl, cand)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, keysync.Diff(tmpl, cand))
	}
}

func TestDiff_ReportedPathsExistInTemplate(t *testing.T) {
	tmpl := obj("a", seq(obj("b", 1)), "c", obj("d", seq(1, 2)), "e", 3)
	all := map[string]bool{}
	for _, p := range keysync.Paths(tmpl) {
		all[p] = true
	}
	for _, cand := range []keysync.Value{obj(), obj("a", "x"), obj("c", obj("d", 1)), keysync.Null(), seq()} {
		for _, p := range keysync.Diff(tmpl, cand) {
			assert.True(t, all[p], "path %q is not a template path", p)
		}
	}
}

func TestDiffFrom_UsesCurrentPath(t *testing.T) {
	got := keysync.DiffFrom(obj("b", 1), obj(), "root.a")
	assert.Equal(t, []string{"root.a.b"}, got)
	got = keysync.DiffFrom(seq(1), keysync.Absent, "list")
	assert.Equal(t, []string{"list", "list[0]"}, got)
}

func TestDiff_NilCandidateActsAsAbsent(t *testing.T) {
	assert.Equal(t, []string{"a"}, keysync.Diff(obj("a", 1), nil))
}

func TestDiffDetailed_MatchesDiffAndAnnotates(t *testing.T) {
	tmpl := obj("menu", obj("open", "O"), "list", seq(1, 2), "title", "T", "x", seq(obj("y", 1)))
	cand := obj("menu", "flat", "list", seq(1), "x", seq(obj()))

	detailed := keysync.DiffDetailed(tmpl, cand)
	paths := make([]string, len(detailed))
	for i, m := range detailed {
		paths[i] = m.Path
	}
	require.Equal(t, keysync.Diff(tmpl, cand), paths)

	want := []keysync.Missing{
		{Path: "menu.open", Pointer: "/menu/open", Reason: keysync.ReasonShape, Got: keysync.KindScalar},
		{Path: "list[1]", Pointer: "/list/1", Reason: keysync.ReasonAbsent, Got: keysync.KindAbsent},
		{Path: "title", Pointer: "/title", Reason: keysync.ReasonAbsent, Got: keysync.KindAbsent},
		{Path: "x[0].y", Pointer: "/x/0/y", Reason: keysync.ReasonAbsent, Got: keysync.KindAbsent},
	}
	if diff := cmp.Diff(want, detailed); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestDiffDetailed_ArrayContainerShape(t *testing.T) {
	got := keysync.DiffDetailed(obj("list", seq("a")), obj("list", "str"))
	require.Len(t, got, 2)
	assert.Equal(t, keysync.Missing{Path: "list", Pointer: "/list", Reason: keysync.ReasonShape, Got: keysync.KindScalar}, got[0])
	assert.Equal(t, keysync.Missing{Path: "list[0]", Pointer: "/list/0", Reason: keysync.ReasonShape, Got: keysync.KindScalar}, got[1])
}

func TestDiffDetailed_PointerEscapesKeys(t *testing.T) {
	got := keysync.DiffDetailed(obj("a/b", obj("c~d", 1)), obj())
	require.Len(t, got, 1)
	assert.Equal(t, "a/b.c~d", got[0].Path)
	assert.Equal(t, "/a~1b/c~0d", got[0].Pointer)
}

func TestMissingIssues(t *testing.T) {
	iss := keysync.MissingIssues(keysync.DiffDetailed(obj("a", obj("b", 1), "c", 2), obj("a", 5)))
	require.Len(t, iss, 2)
	assert.Equal(t, keysync.CodeShapeMismatch, iss[0].Code)
	assert.Equal(t, "scalar", iss[0].Params["got"])
	assert.Equal(t, keysync.CodeMissingKey, iss[1].Code)
	assert.Equal(t, "c", iss[1].Path)
	assert.Equal(t, "/c", iss[1].Pointer)
	assert.NotEmpty(t, iss[1].Message)
	assert.Contains(t, iss.Error(), "missing_key at c")
}

func TestPaths(t *testing.T) {
	tmpl := obj("a", 1, "b", obj("c", seq(obj("d", 1))), "e", obj())
	assert.Equal(t, []string{"a", "b.c", "b.c[0].d"}, keysync.Paths(tmpl))
}
