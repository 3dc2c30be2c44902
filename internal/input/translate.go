// Package input implements the translator from structured key events
// to the xterm-compatible byte sequences a VT-aware child process
// expects (§4.2). It is pure and side-effect free: whether a given key
// event should reach the backend at all (e.g. control-modified keys
// while focus is Terminal) is decided by internal/app, not here.
package input

import "fmt"

// Modifier is a bitmask; values combine additively the same way CSI
// "1;<mod>" modifier codes do, so Modifiers.csiCode() below is a
// direct arithmetic mapping.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
)

func (m Modifier) has(f Modifier) bool { return m&f != 0 }

// csiCode encodes the modifier mask into the CSI "1;<mod>" convention:
// Shift=1, Alt=2, Ctrl=4, combined additively +1.
func (m Modifier) csiCode() int {
	code := 1
	if m.has(ModShift) {
		code += 1
	}
	if m.has(ModAlt) {
		code += 2
	}
	if m.has(ModCtrl) {
		code += 4
	}
	return code
}

// Key names understood by Translate for the "named key" case.
type Key string

const (
	KeyChar      Key = "char" // Rune holds the printable character
	KeyEnter     Key = "enter"
	KeyBackspace Key = "backspace"
	KeyTab       Key = "tab"
	KeyEscape    Key = "escape"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyHome      Key = "home"
	KeyEnd       Key = "end"
	KeyPageUp    Key = "pgup"
	KeyPageDown  Key = "pgdown"
	KeyDelete    Key = "delete"
	KeyInsert    Key = "insert"
	KeyF1        Key = "f1"
	KeyF2        Key = "f2"
	KeyF3        Key = "f3"
	KeyF4        Key = "f4"
	KeyF5        Key = "f5"
	KeyF6        Key = "f6"
	KeyF7        Key = "f7"
	KeyF8        Key = "f8"
	KeyF9        Key = "f9"
	KeyF10       Key = "f10"
	KeyF11       Key = "f11"
	KeyF12       Key = "f12"
)

// Event is the structured key event Translate consumes: {code,
// modifiers} per §4.2.
type Event struct {
	Code Key
	Rune rune // only meaningful when Code == KeyChar
	Mods Modifier
}

// bracketedPasteStart/End wrap PasteEvent payloads when the active
// screen has enabled bracketed-paste mode (CSI ?2004h).
const (
	bracketedPasteStart = "\x1b[200~"
	bracketedPasteEnd   = "\x1b[201~"
)

// Translate maps a structured key event to the byte sequence to write
// to the backend's input sink.
func Translate(ev Event) []byte {
	if ev.Code == KeyChar {
		return translateChar(ev.Rune, ev.Mods)
	}

	if arrow, ok := arrowFinal[ev.Code]; ok {
		return translateArrowLike(arrow, ev.Mods)
	}

	if base, ok := namedKeyBytes[ev.Code]; ok && ev.Mods == ModNone {
		return base
	}

	if seq, ok := tildeKeys[ev.Code]; ok {
		if ev.Mods == ModNone {
			return []byte(fmt.Sprintf("\x1b[%s~", seq))
		}
		return []byte(fmt.Sprintf("\x1b[%s;%d~", seq, ev.Mods.csiCode()))
	}

	if n, ok := functionKeys[ev.Code]; ok {
		return translateFunctionKey(n, ev.Mods)
	}

	// Unknown key: no bytes to send.
	return nil
}

// translateChar handles printable ASCII (round-trip law: no modifiers
// -> the character's own byte), Ctrl+A..Z -> 0x01..0x1A, and Alt as an
// ESC prefix.
func translateChar(r rune, mods Modifier) []byte {
	if mods.has(ModCtrl) {
		upper := r
		if upper >= 'a' && upper <= 'z' {
			upper -= 'a' - 'A'
		}
		if upper >= 'A' && upper <= 'Z' {
			b := byte(upper - 'A' + 1)
			return prefixAlt([]byte{b}, mods)
		}
		// Ctrl on a non-letter with no defined control code: fall
		// through and send the plain rune.
	}
	return prefixAlt([]byte(string(r)), mods)
}

func prefixAlt(b []byte, mods Modifier) []byte {
	if mods.has(ModAlt) {
		return append([]byte{0x1b}, b...)
	}
	return b
}

var namedKeyBytes = map[Key][]byte{
	KeyEnter:     {'\r'},
	KeyBackspace: {127},
	KeyTab:       {'\t'},
	KeyEscape:    {0x1b},
}

// arrowFinal maps arrow keys to their CSI final byte; combined with
// translateArrowLike this produces both the unmodified two-byte form
// (ESC [ <final>) and the modified "1;<mod><final>" form.
var arrowFinal = map[Key]byte{
	KeyUp:    'A',
	KeyDown:  'B',
	KeyRight: 'C',
	KeyLeft:  'D',
	KeyHome:  'H',
	KeyEnd:   'F',
}

func translateArrowLike(final byte, mods Modifier) []byte {
	if mods == ModNone {
		return []byte{0x1b, '[', final}
	}
	return []byte(fmt.Sprintf("\x1b[1;%d%c", mods.csiCode(), final))
}

// tildeKeys maps keys using the "CSI <n>~" family.
var tildeKeys = map[Key]string{
	KeyInsert:   "2",
	KeyDelete:   "3",
	KeyPageUp:   "5",
	KeyPageDown: "6",
}

var functionKeys = map[Key]int{
	KeyF1: 1, KeyF2: 2, KeyF3: 3, KeyF4: 4,
	KeyF5: 5, KeyF6: 6, KeyF7: 7, KeyF8: 8,
	KeyF9: 9, KeyF10: 10, KeyF11: 11, KeyF12: 12,
}

// functionKeyTilde is the CSI ~-family code used by F5 and above (F1-F4
// use SS3 letters instead).
var functionKeyTilde = map[int]string{
	5: "15", 6: "17", 7: "18", 8: "19",
	9: "20", 10: "21", 11: "23", 12: "24",
}

var functionKeySS3 = map[int]byte{1: 'P', 2: 'Q', 3: 'R', 4: 'S'}

func translateFunctionKey(n int, mods Modifier) []byte {
	if final, ok := functionKeySS3[n]; ok {
		if mods == ModNone {
			return []byte{0x1b, 'O', final}
		}
		return []byte(fmt.Sprintf("\x1b[1;%d%c", mods.csiCode(), final))
	}
	code := functionKeyTilde[n]
	if mods == ModNone {
		return []byte(fmt.Sprintf("\x1b[%s~", code))
	}
	return []byte(fmt.Sprintf("\x1b[%s;%d~", code, mods.csiCode()))
}

// TranslatePaste wraps verbatim paste bytes in bracketed-paste markers
// when the target screen has that mode enabled.
func TranslatePaste(data []byte, bracketed bool) []byte {
	if !bracketed {
		return data
	}
	out := make([]byte, 0, len(data)+len(bracketedPasteStart)+len(bracketedPasteEnd))
	out = append(out, bracketedPasteStart...)
	out = append(out, data...)
	out = append(out, bracketedPasteEnd...)
	return out
}
