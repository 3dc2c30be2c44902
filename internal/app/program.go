package app

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thurbox/thurbox/internal/input"
)

const tickInterval = 250 * time.Millisecond

// Program adapts the pure AppModel/Update pair to bubbletea's tea.Model,
// the same shape the deleted agtop internal/ui.App used (a value-receiver
// struct, one big Update switch keyed on message type), except every
// case here does nothing but translate a tea.Msg into an app.Msg,
// call Update, and hand any effects to the Executor.
type Program struct {
	model AppModel
	exec  *Executor
	ctx   context.Context
}

// NewProgram builds the bubbletea-facing wrapper cmd/thurbox constructs
// tea.NewProgram with.
func NewProgram(ctx context.Context, model AppModel, exec *Executor) Program {
	return Program{model: model, exec: exec, ctx: ctx}
}

func (p Program) Init() tea.Cmd {
	return tea.Batch(waitForExecutorMsg(p.exec), tickCmd())
}

func waitForExecutorMsg(exec *Executor) tea.Cmd {
	return func() tea.Msg {
		return <-exec.Out
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return Tick{At: t} })
}

func (p Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	appMsg, teaCmd := translateTeaMsg(msg)
	if appMsg == nil {
		return p, teaCmd
	}

	now := time.Now()
	next, effects := Update(p.model, appMsg, now)
	p.model = next
	p.exec.Run(p.ctx, effects)

	if p.model.Quitting {
		return p, tea.Quit
	}

	cmds := []tea.Cmd{waitForExecutorMsg(p.exec)}
	if teaCmd != nil {
		cmds = append(cmds, teaCmd)
	}
	if _, isTick := msg.(Tick); isTick {
		cmds = append(cmds, tickCmd())
	}
	return p, tea.Batch(cmds...)
}

func (p Program) View() string {
	return Render(p.model)
}

// translateTeaMsg turns a tea.Msg into the app.Msg Update expects, plus
// a tea.Cmd to run alongside it (every case currently returns a nil
// Cmd). A message with no app.Msg counterpart comes back as a nil Msg
// and is dropped.
func translateTeaMsg(msg tea.Msg) (Msg, tea.Cmd) {
	switch ev := msg.(type) {
	case tea.WindowSizeMsg:
		return ResizeEvent{Width: ev.Width, Height: ev.Height}, nil
	case tea.KeyMsg:
		if ev.Paste {
			return PasteEvent{Data: []byte(string(ev.Runes))}, nil
		}
		return translateKey(ev), nil
	case tea.MouseMsg:
		if k, ok := translateMouse(ev); ok {
			return MouseEvent{Kind: k}, nil
		}
		return nil, nil
	case Tick:
		return ev, nil
	case Sync, BackendOutput, BackendDead, SessionAttached, WorktreeReady, WorktreeSynced, StatusTimeout:
		return msg.(Msg), nil
	}
	return nil, nil
}

func translateMouse(ev tea.MouseMsg) (MouseKind, bool) {
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		return MouseWheelUp, true
	case tea.MouseButtonWheelDown:
		return MouseWheelDown, true
	}
	return 0, false
}

// translateKey maps bubbletea's key representation onto the structured
// input.Event codec Translate expects, working from KeyMsg.String()'s
// "mod+mod+key" convention rather than its internal KeyType enum, so a
// single switch covers every modifier combination bubbletea reports.
func translateKey(ev tea.KeyMsg) KeyEvent {
	s := ev.String()
	var mods input.Modifier
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+"):
			mods |= input.ModCtrl
			s = s[len("ctrl+"):]
			continue
		case strings.HasPrefix(s, "alt+"):
			mods |= input.ModAlt
			s = s[len("alt+"):]
			continue
		case strings.HasPrefix(s, "shift+"):
			mods |= input.ModShift
			s = s[len("shift+"):]
			continue
		}
		break
	}

	if code, ok := namedKeys[s]; ok {
		return KeyEvent{Code: code, Mods: mods}
	}
	r := []rune(s)
	if len(r) == 1 {
		return KeyEvent{Code: input.KeyChar, Rune: r[0], Mods: mods}
	}
	if s == "space" {
		return KeyEvent{Code: input.KeyChar, Rune: ' ', Mods: mods}
	}
	return KeyEvent{Code: input.KeyChar, Mods: mods}
}

var namedKeys = map[string]input.Key{
	"enter":     input.KeyEnter,
	"backspace": input.KeyBackspace,
	"tab":       input.KeyTab,
	"esc":       input.KeyEscape,
	"up":        input.KeyUp,
	"down":      input.KeyDown,
	"left":      input.KeyLeft,
	"right":     input.KeyRight,
	"home":      input.KeyHome,
	"end":       input.KeyEnd,
	"pgup":      input.KeyPageUp,
	"pgdown":    input.KeyPageDown,
	"delete":    input.KeyDelete,
	"insert":    input.KeyInsert,
	"f1":        input.KeyF1,
	"f2":        input.KeyF2,
	"f3":        input.KeyF3,
	"f4":        input.KeyF4,
	"f5":        input.KeyF5,
	"f6":        input.KeyF6,
	"f7":        input.KeyF7,
	"f8":        input.KeyF8,
	"f9":        input.KeyF9,
	"f10":       input.KeyF10,
	"f11":       input.KeyF11,
	"f12":       input.KeyF12,
}
