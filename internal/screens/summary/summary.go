// Package summary shows the result of a finished adaptive test.
package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/ui/components"
	"github.com/abhisek/stylequiz/internal/ui/layout"
	"github.com/abhisek/stylequiz/internal/ui/theme"
)

// Step is one answered question, in the order it was served.
type Step struct {
	Difficulty assessment.Difficulty
	Correct    bool
}

// SummaryScreen displays the test summary.
type SummaryScreen struct {
	snap   assessment.Snapshot
	steps  []Step
	retake func() screen.Screen
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. retake builds a fresh test screen for the
// same subject; it may be nil.
func New(snap assessment.Snapshot, steps []Step, retake func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{snap: snap, steps: steps, retake: retake}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Test Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
	if s.retake != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Retake"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r", "R":
			if s.retake == nil {
				return s, nil
			}
			next := s.retake()
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	snap := s.snap
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Test complete!"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(width, theme.TextDim, snap.Subject.Name))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %d%%",
		snap.Answered, snap.Correct, snap.Accuracy)
	b.WriteString(theme.Centered(width, theme.Text, statsLine))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Accuracy", float64(snap.Accuracy)/100, true, min(width-8, 60))
	bar.Fill = accuracyColor(snap.Accuracy)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	if len(s.steps) > 0 {
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
			strings.Repeat("─", max(min(width-8, 60), 0)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Difficulty path")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderPath(s.steps)))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Centered(width, theme.TextDim, verdict(snap.Accuracy)))
	return b.String()
}

// renderPath draws the served tiers left to right, green for correct
// answers and red for misses.
func renderPath(steps []Step) string {
	parts := make([]string, 0, len(steps))
	for _, st := range steps {
		style := theme.Incorrect
		mark := "✗"
		if st.Correct {
			style = theme.Correct
			mark = "✓"
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s %s", st.Difficulty.Label(), mark)))
	}
	return strings.Join(parts, lipgloss.NewStyle().Foreground(theme.Border).Render("  →  "))
}

func accuracyColor(pct int) color.Color {
	switch {
	case pct >= 80:
		return theme.Success
	case pct >= 50:
		return theme.Accent
	}
	return theme.Error
}

func verdict(pct int) string {
	switch {
	case pct >= 80:
		return "Excellent work. The next test will start harder."
	case pct >= 50:
		return "Solid effort. Keep practicing to reach the hard tier."
	}
	return "Keep going. Review the basics and try again."
}
