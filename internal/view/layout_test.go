package view

import "testing"

func TestCalculateNarrowIsTerminalOnly(t *testing.T) {
	l := Calculate(79, 40)
	if l.ShowLeftPanel || l.ShowInfoPanel {
		t.Fatalf("expected no panels below narrow breakpoint, got %+v", l)
	}
	if l.TerminalWidth != 79 {
		t.Errorf("expected terminal to take full width, got %d", l.TerminalWidth)
	}
}

func TestCalculateMediumShowsLeftPanelOnly(t *testing.T) {
	l := Calculate(100, 40)
	if !l.ShowLeftPanel {
		t.Fatal("expected left panel at medium width")
	}
	if l.ShowInfoPanel {
		t.Fatal("expected no info panel below wide breakpoint")
	}
	if l.ProjectListWidth != l.SessionListWidth {
		t.Errorf("project and session list should share left column width")
	}
	if l.ProjectListHeight+l.SessionListHeight != l.TermHeight-1 {
		t.Errorf("project/session split should consume the full usable height")
	}
}

func TestCalculateWideShowsAllPanels(t *testing.T) {
	l := Calculate(140, 40)
	if !l.ShowLeftPanel || !l.ShowInfoPanel {
		t.Fatal("expected both panels at wide width")
	}
	total := l.ProjectListWidth + l.TerminalWidth + l.InfoPanelWidth
	if total != 140 {
		t.Errorf("expected panel widths to sum to terminal width, got %d", total)
	}
}
