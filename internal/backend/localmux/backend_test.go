package localmux

import "testing"

func TestParseTmuxVersion(t *testing.T) {
	cases := []struct {
		in           string
		major, minor int
		ok           bool
	}{
		{"tmux 3.2a", 3, 2, true},
		{"tmux 3.3", 3, 3, true},
		{"tmux next-3.4", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, c := range cases {
		major, minor, ok := parseTmuxVersion(c.in)
		if ok != c.ok || (ok && (major != c.major || minor != c.minor)) {
			t.Fatalf("parseTmuxVersion(%q) = (%d,%d,%v), want (%d,%d,%v)", c.in, major, minor, ok, c.major, c.minor, c.ok)
		}
	}
}

func TestShellEscape(t *testing.T) {
	got := shellEscape("it's a test")
	want := `'it'\''s a test'`
	if got != want {
		t.Fatalf("shellEscape = %q, want %q", got, want)
	}
}
