// Package term implements the terminal pipeline: a byte stream is fed
// into a vt10x screen model, and a pure renderer turns that model plus
// a scrollback ring into rectangular cell grids for the view layer.
package term

import (
	"strings"
	"sync"

	"github.com/hinshun/vt10x"
)

const scrollbackCap = 1000

// Screen owns one session's VT state: the live vt10x terminal plus a
// scrollback ring of rows pushed out the top, and a lock shared by the
// feeding reader task and the rendering view function so a frame never
// observes a torn write (§4.1, §5 "shared-mutable screen").
type Screen struct {
	mu sync.Mutex

	vt   vt10x.Terminal
	cols int
	rows int

	scrollback       []Row // ring, oldest first, capped at scrollbackCap
	scrollbackOffset uint32

	title           string
	alternateScreen bool
	cursorRow       int
	cursorCol       int
	cursorVisible   bool

	lastGoodRender string
}

// Row is a snapshot of one rendered terminal line, used both for
// scrollback storage and as the renderer's output unit.
type Row struct {
	Cells []Cell
}

type Cell struct {
	Char rune
	FG   vt10x.Color
	BG   vt10x.Color
	Bold bool
}

func NewScreen(cols, rows int) *Screen {
	return &Screen{
		vt:            vt10x.New(vt10x.WithSize(cols, rows)),
		cols:          cols,
		rows:          rows,
		cursorVisible: true,
	}
}

// Feed appends bytes to the underlying VT parser. Before a write that
// contains newlines (outside the alternate screen), that many rows from
// the top of the live screen are captured into the scrollback ring;
// when the offset is pinned above zero it is advanced by the same
// count, clamped to the ring's depth, so the viewport stays put (§4.1
// scrollback contract).
func (s *Screen) Feed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scanEscapes(data, &s.title, &s.alternateScreen, &s.cursorRow, &s.cursorCol, &s.cursorVisible)

	pushed := s.countScrolledRows(data)

	s.vt.Write(data)

	if s.scrollbackOffset > 0 && pushed > 0 {
		s.scrollbackOffset += uint32(pushed)
		max := uint32(len(s.scrollback))
		if s.scrollbackOffset > max {
			s.scrollbackOffset = max
		}
	}
}

// countScrolledRows estimates how many rows the top of the visible
// screen will be pushed out by this write by counting every newline
// byte in it (zero on the alternate screen), and captures that many
// top rows first. This is a heuristic used purely to keep the
// scrollback pin approximately correct; it never blocks vt10x's own
// line-discipline.
func (s *Screen) countScrolledRows(data []byte) int {
	if s.alternateScreen {
		return 0
	}
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	s.captureTopRows(n)
	return n
}

// captureTopRows snapshots up to n rows currently at the top of the
// live screen into the scrollback ring before they are overwritten.
func (s *Screen) captureTopRows(n int) {
	cols, rows := s.vt.Size()
	if rows == 0 {
		return
	}
	if n > rows {
		n = rows
	}
	for i := 0; i < n; i++ {
		row := Row{Cells: make([]Cell, cols)}
		for c := 0; c < cols; c++ {
			cell := s.vt.Cell(c, i)
			row.Cells[c] = Cell{Char: cell.Char, FG: cell.FG, BG: cell.BG}
		}
		s.scrollback = append(s.scrollback, row)
	}
	if len(s.scrollback) > scrollbackCap {
		s.scrollback = s.scrollback[len(s.scrollback)-scrollbackCap:]
	}
}

func (s *Screen) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vt.Size()
}

func (s *Screen) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vt.Resize(cols, rows)
	s.cols, s.rows = cols, rows
}

func (s *Screen) ScrollbackOffset() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollbackOffset
}

// SetScrollbackOffset clamps to the available scrollback depth.
func (s *Screen) SetScrollbackOffset(offset uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := uint32(len(s.scrollback))
	if offset > max {
		offset = max
	}
	s.scrollbackOffset = offset
}

func (s *Screen) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Screen) IsAlternateScreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alternateScreen
}

// Cursor reports the tracked cursor position and its visibility. When
// the viewport is scrolled (offset > 0) the caller must not draw it,
// per §4.1.
func (s *Screen) Cursor() (col, row int, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorCol, s.cursorRow, s.cursorVisible && s.scrollbackOffset == 0
}

// Snapshot returns the rows currently visible in the viewport,
// accounting for scrollback offset: rows are pulled from the
// scrollback ring first (if offset > 0), then from the live screen.
func (s *Screen) Snapshot() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Screen) snapshotLocked() []Row {
	cols, rows := s.vt.Size()
	out := make([]Row, 0, rows)

	offset := int(s.scrollbackOffset)
	sbLen := len(s.scrollback)

	// The offset rows are taken from the tail of scrollback, closest
	// to the live screen first (so offset=1 shows the single most
	// recently scrolled-off row above the live view).
	fromScrollback := offset
	if fromScrollback > rows {
		fromScrollback = rows
	}
	if fromScrollback > sbLen {
		fromScrollback = sbLen
	}
	start := sbLen - offset
	if start < 0 {
		start = 0
	}
	for i := 0; i < fromScrollback; i++ {
		out = append(out, s.scrollback[start+i])
	}

	liveRows := rows - fromScrollback
	for r := 0; r < liveRows; r++ {
		row := Row{Cells: make([]Cell, cols)}
		for c := 0; c < cols; c++ {
			cell := s.vt.Cell(c, r)
			row.Cells[c] = Cell{Char: cell.Char, FG: cell.FG, BG: cell.BG}
		}
		out = append(out, row)
	}
	return out
}

// Render renders the currently visible rows into an ANSI string,
// suitable for embedding directly in a lipgloss frame. It never
// panics: a defer/recover falls back to the last successful render,
// matching the defensive idiom used for vt10x consumers elsewhere.
func (s *Screen) Render() (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = s.lastGoodRender
		}
	}()

	rows := s.Snapshot()
	var lines []string
	for _, row := range rows {
		lines = append(lines, renderRow(row))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	result = strings.Join(lines, "\n")
	s.mu.Lock()
	s.lastGoodRender = result
	s.mu.Unlock()
	return result
}

func renderRow(row Row) string {
	var b strings.Builder
	lastFG, lastBG := vt10x.DefaultFG, vt10x.DefaultBG
	for _, cell := range row.Cells {
		if cell.FG != lastFG || cell.BG != lastBG {
			b.WriteString("\x1b[0m")
			writeColor(&b, cell.FG, true)
			writeColor(&b, cell.BG, false)
			lastFG, lastBG = cell.FG, cell.BG
		}
		if cell.Char == 0 {
			b.WriteRune(' ')
		} else {
			b.WriteRune(cell.Char)
		}
	}
	b.WriteString("\x1b[0m")
	line := b.String()
	if strings.HasSuffix(line, "\x1b[0m") {
		prefix := strings.TrimRight(line[:len(line)-4], " ")
		line = prefix + "\x1b[0m"
	}
	return line
}

func writeColor(b *strings.Builder, c vt10x.Color, fg bool) {
	if fg && c == vt10x.DefaultFG {
		return
	}
	if !fg && c == vt10x.DefaultBG {
		return
	}
	base := 30
	base256 := "38"
	if !fg {
		base = 40
		base256 = "48"
	}
	if c.ANSI() {
		if c < 8 {
			b.WriteString("\x1b[" + itoa(base+int(c)) + "m")
		} else {
			b.WriteString("\x1b[" + itoa(base+60+int(c)-8) + "m")
		}
		return
	}
	b.WriteString("\x1b[" + base256 + ";5;" + itoa(int(c)) + "m")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [3]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}
