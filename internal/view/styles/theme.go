package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Base lipgloss styles shared across view panels, built once here so
// every panel picks up NoColor (from Config.Theme.NoColor / NO_COLOR)
// consistently rather than each panel constructing its own renderer.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TitleText)
	DimStyle   = lipgloss.NewStyle().Foreground(TextDim)
	KeyStyle   = lipgloss.NewStyle().Foreground(KeybindKey).Bold(true)
	LabelStyle = lipgloss.NewStyle().Foreground(KeybindLabel)
)

// SetNoColor toggles color output process-wide, honoring NO_COLOR /
// Config.Theme.NoColor per §6.
func SetNoColor(disable bool) {
	if disable {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.TrueColor)
}
