package app

import (
	"time"

	"github.com/thurbox/thurbox/internal/input"
	"github.com/thurbox/thurbox/internal/session"
	"github.com/thurbox/thurbox/internal/sync"
	"github.com/thurbox/thurbox/internal/types"
)

// Msg is the closed set of events Update accepts, matching the "Event
// types flowing in" list from §4.8.
type Msg interface{ isAppMsg() }

type KeyEvent struct {
	Code input.Key
	Rune rune
	Mods input.Modifier
}

func (KeyEvent) isAppMsg() {}

type ResizeEvent struct{ Width, Height int }

func (ResizeEvent) isAppMsg() {}

type PasteEvent struct{ Data []byte }

func (PasteEvent) isAppMsg() {}

// MouseKind distinguishes the wheel directions the state machine
// reacts to; other buttons are ignored per §4.8 (mouse only drives
// scrollback).
type MouseKind int

const (
	MouseWheelUp MouseKind = iota
	MouseWheelDown
)

type MouseEvent struct{ Kind MouseKind }

func (MouseEvent) isAppMsg() {}

type BackendOutput struct {
	SessionID types.SessionId
	Data      []byte
}

func (BackendOutput) isAppMsg() {}

type BackendDead struct {
	SessionID types.SessionId
	Err       error
}

func (BackendDead) isAppMsg() {}

type Tick struct{ At time.Time }

func (Tick) isAppMsg() {}

type Sync struct{ Delta sync.StateDelta }

func (Sync) isAppMsg() {}

type StatusTimeout struct{}

func (StatusTimeout) isAppMsg() {}

// SessionAttached is the executor's reply to a Spawn/Restart effect:
// it hands back the live runtime so Update can install it in the
// model without ever performing I/O itself.
type SessionAttached struct {
	SessionID types.SessionId
	Runtime   *session.Runtime
	Err       error
}

func (SessionAttached) isAppMsg() {}

// WorktreeReady is the executor's reply to a WorktreeCreate effect.
type WorktreeReady struct {
	SessionID types.SessionId
	Worktree  *types.Worktree
	Err       error
}

func (WorktreeReady) isAppMsg() {}

// WorktreeSynced is the executor's reply to a WorktreeSync effect.
type WorktreeSynced struct {
	SessionID types.SessionId
	Status    types.WorktreeSyncStatus
}

func (WorktreeSynced) isAppMsg() {}
