package types

import (
	"strconv"
	"time"
)

type BackendType string

const (
	BackendLocalMux  BackendType = "tmux"
	BackendSshMux    BackendType = "ssh_tmux"  // reserved
	BackendContainer BackendType = "container" // reserved
	BackendRemote    BackendType = "remote"    // reserved
)

// SessionStatusKind is the coarse lifecycle state of a session.
type SessionStatusKind string

const (
	StatusStarting SessionStatusKind = "starting"
	StatusRunning  SessionStatusKind = "running"
	StatusIdle     SessionStatusKind = "idle"
	StatusError    SessionStatusKind = "error"
)

// SessionStatus carries the coarse kind plus, for Error, a short detail
// string. The thurerr.Kind of the failure is not kept.
type SessionStatus struct {
	Kind   SessionStatusKind
	Detail string
}

func Running() SessionStatus  { return SessionStatus{Kind: StatusRunning} }
func Idle() SessionStatus     { return SessionStatus{Kind: StatusIdle} }
func Starting() SessionStatus { return SessionStatus{Kind: StatusStarting} }
func Errored(detail string) SessionStatus {
	return SessionStatus{Kind: StatusError, Detail: detail}
}

type Session struct {
	ID              SessionId
	ProjectID       ProjectId
	Name            string
	ClaudeSessionID string // UUID, assigned before spawn, immutable across restarts
	BackendID       BackendId
	BackendType     BackendType
	Cwd             string
	AdditionalDirs  []string // supplemented feature: extra --add-dir roots
	Status          SessionStatus
	Role            *RoleId
	Worktree        *Worktree
	CreatedAt       time.Time
	LastActivityAt  time.Time
	DeletedAt       *time.Time
}

func (s *Session) IsDeleted() bool { return s.DeletedAt != nil }

// ElapsedBadge computes the "Waiting 45s" / "Idle 2m" status-bar badge
// described in §4.8.
func (s *Session) ElapsedBadge(now time.Time) string {
	d := now.Sub(s.LastActivityAt)
	verb := "Waiting"
	if s.Status.Kind == StatusIdle {
		verb = "Idle"
	}
	switch {
	case d < time.Minute:
		return verb + " " + strconv.Itoa(int(d.Seconds())) + "s"
	default:
		return verb + " " + strconv.Itoa(int(d.Minutes())) + "m"
	}
}
