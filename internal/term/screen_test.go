package term

import "testing"

func TestFeedAndRender(t *testing.T) {
	s := NewScreen(20, 5)
	s.Feed([]byte("hello\r\n"))
	out := s.Render()
	if out == "" {
		t.Fatal("expected non-empty render after feeding bytes")
	}
}

func TestScrollbackOffsetClampedToZeroInitially(t *testing.T) {
	s := NewScreen(20, 5)
	if s.ScrollbackOffset() != 0 {
		t.Fatal("expected offset 0 on a fresh screen")
	}
}

func TestSetScrollbackOffsetClampsToAvailableDepth(t *testing.T) {
	s := NewScreen(20, 5)
	s.SetScrollbackOffset(9999)
	if s.ScrollbackOffset() != 0 {
		t.Fatalf("expected clamp to 0 scrollback rows, got %d", s.ScrollbackOffset())
	}
}

func TestResize(t *testing.T) {
	s := NewScreen(20, 5)
	s.Resize(40, 10)
	cols, rows := s.Size()
	if cols != 40 || rows != 10 {
		t.Fatalf("expected 40x10, got %dx%d", cols, rows)
	}
}

func TestTitleTrackedFromOSC(t *testing.T) {
	s := NewScreen(20, 5)
	s.Feed([]byte("\x1b]2;my session\x07"))
	if s.Title() != "my session" {
		t.Fatalf("expected title %q, got %q", "my session", s.Title())
	}
}

func TestAlternateScreenTrackedFromCSI(t *testing.T) {
	s := NewScreen(20, 5)
	if s.IsAlternateScreen() {
		t.Fatal("expected primary screen initially")
	}
	s.Feed([]byte("\x1b[?1049h"))
	if !s.IsAlternateScreen() {
		t.Fatal("expected alternate screen after CSI ?1049h")
	}
	s.Feed([]byte("\x1b[?1049l"))
	if s.IsAlternateScreen() {
		t.Fatal("expected primary screen after CSI ?1049l")
	}
}
