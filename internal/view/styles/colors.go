// Package styles is the central theme table (§4.9: "all colors drawn
// from a central theme table keyed by semantic role"), built around
// lipgloss's AdaptiveColor and keyed to the session/project domain.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/thurbox/thurbox/internal/types"
)

var (
	BorderFocused  = lipgloss.AdaptiveColor{Light: "#2e5cb8", Dark: "#7aa2f7"}
	BorderActive   = lipgloss.AdaptiveColor{Light: "#2e5cb8", Dark: "#7aa2f7"}
	BorderInactive = lipgloss.AdaptiveColor{Light: "#c0c0c0", Dark: "#3b4261"}

	TitleText     = lipgloss.AdaptiveColor{Light: "#1a1b26", Dark: "#c0caf5"}
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1a1b26", Dark: "#c0caf5"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#8890a8", Dark: "#565f89"}
	TextDim       = lipgloss.AdaptiveColor{Light: "#b0b0b0", Dark: "#3b4261"}

	KeybindKey   = lipgloss.AdaptiveColor{Light: "#8a6200", Dark: "#e0af68"}
	KeybindLabel = lipgloss.AdaptiveColor{Light: "#8890a8", Dark: "#565f89"}

	StatusRunning = lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#7dcfff"}
	StatusIdle    = lipgloss.AdaptiveColor{Light: "#8890a8", Dark: "#565f89"}
	StatusStart   = lipgloss.AdaptiveColor{Light: "#8a6200", Dark: "#e0af68"}
	StatusError   = lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f7768e"}

	SyncUpToDate = lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#9ece6a"}
	SyncBehind   = lipgloss.AdaptiveColor{Light: "#8a6200", Dark: "#e0af68"}
	SyncAhead    = lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#7dcfff"}
	SyncDiverged = lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f7768e"}

	SelectedRowBg = lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#292e42"}
)

// SessionStatusColor returns the color for a session's coarse status
// kind.
func SessionStatusColor(kind types.SessionStatusKind) lipgloss.AdaptiveColor {
	switch kind {
	case types.StatusRunning:
		return StatusRunning
	case types.StatusIdle:
		return StatusIdle
	case types.StatusStarting:
		return StatusStart
	case types.StatusError:
		return StatusError
	default:
		return TextDim
	}
}

// SyncStatusColor returns the color for a worktree sync status kind.
func SyncStatusColor(kind types.SyncStatusKind) lipgloss.AdaptiveColor {
	switch kind {
	case types.SyncUpToDate:
		return SyncUpToDate
	case types.SyncBehind:
		return SyncBehind
	case types.SyncAhead:
		return SyncAhead
	case types.SyncDiverged, types.SyncErrored:
		return SyncDiverged
	default:
		return TextDim
	}
}
