package input

import (
	"bytes"
	"testing"
)

func TestTranslatePrintableASCIIRoundTrip(t *testing.T) {
	for _, c := range []rune{'a', 'Z', '5', ' ', '!'} {
		got := Translate(Event{Code: KeyChar, Rune: c})
		if !bytes.Equal(got, []byte(string(c))) {
			t.Fatalf("translate(%q) = %v, want %v", c, got, []byte(string(c)))
		}
	}
}

func TestTranslateCtrlLetters(t *testing.T) {
	cases := map[rune]byte{'a': 0x01, 'c': 0x03, 'z': 0x1a}
	for r, want := range cases {
		got := Translate(Event{Code: KeyChar, Rune: r, Mods: ModCtrl})
		if len(got) != 1 || got[0] != want {
			t.Fatalf("ctrl+%c = %v, want [%d]", r, got, want)
		}
	}
}

func TestTranslateNamedKeys(t *testing.T) {
	if !bytes.Equal(Translate(Event{Code: KeyEnter}), []byte{'\r'}) {
		t.Fatal("enter should translate to CR")
	}
	if !bytes.Equal(Translate(Event{Code: KeyBackspace}), []byte{127}) {
		t.Fatal("backspace should translate to DEL")
	}
	if !bytes.Equal(Translate(Event{Code: KeyTab}), []byte{'\t'}) {
		t.Fatal("tab should translate to HT")
	}
}

func TestTranslateArrowModified(t *testing.T) {
	got := Translate(Event{Code: KeyUp, Mods: ModShift})
	want := []byte("\x1b[1;2A")
	if !bytes.Equal(got, want) {
		t.Fatalf("shift+up = %q, want %q", got, want)
	}
}

func TestTranslateArrowUnmodified(t *testing.T) {
	got := Translate(Event{Code: KeyLeft})
	want := []byte{0x1b, '[', 'D'}
	if !bytes.Equal(got, want) {
		t.Fatalf("left = %v, want %v", got, want)
	}
}

func TestTranslatePasteBracketed(t *testing.T) {
	got := TranslatePaste([]byte("hi"), true)
	want := append(append([]byte("\x1b[200~"), "hi"...), "\x1b[201~"...)
	if !bytes.Equal(got, want) {
		t.Fatalf("bracketed paste = %q, want %q", got, want)
	}
}

func TestTranslatePasteUnbracketed(t *testing.T) {
	got := TranslatePaste([]byte("hi"), false)
	if !bytes.Equal(got, []byte("hi")) {
		t.Fatalf("plain paste = %q, want %q", got, "hi")
	}
}
