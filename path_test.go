package keysync

import "testing"

func TestJoinKeyAndIndex(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{JoinKey("", "a"), "a"},
		{JoinKey("a", "b"), "a.b"},
		{JoinIndex("a", 0), "a[0]"},
		{JoinIndex("", 3), "[3]"},
		{JoinKey(JoinIndex("list", 1), "title"), "list[1].title"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestFormatPathAgreesWithJoin(t *testing.T) {
	segs := []Segment{KeySegment("x"), IndexSegment(0), KeySegment("y"), IndexSegment(2)}
	want := JoinIndex(JoinKey(JoinIndex(JoinKey("", "x"), 0), "y"), 2)
	if got := FormatPath(segs); got != want {
		t.Fatalf("FormatPath = %q, want %q", got, want)
	}
}

func TestPointer(t *testing.T) {
	if got := Pointer(nil); got != "/" {
		t.Fatalf("root pointer = %q", got)
	}
	got := Pointer([]Segment{KeySegment("a/b"), IndexSegment(1), KeySegment("~c")})
	if got != "/a~1b/1/~0c" {
		t.Fatalf("pointer = %q", got)
	}
}
