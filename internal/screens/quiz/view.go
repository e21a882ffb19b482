package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}
	switch s.phase {
	case phaseStarting:
		return theme.Centered(width, theme.TextDim, "\n\n\nStarting your "+s.subject.Name+" test...")
	case phaseFailed:
		return theme.Centered(width, theme.Error,
			fmt.Sprintf("\n\n\n%s\n\nPress R to try again or Esc to go back.", s.errMsg))
	}
	return s.renderQuestion(width)
}

func (s *Screen) renderQuestion(width int) string {
	snap := s.ctrl.Snapshot()
	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.subject.Name)
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Question %d   %s %d/%d   %d%%",
			snap.Answered+1,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			snap.Correct, snap.Answered, snap.Accuracy))
	if s.phase == phaseFeedback {
		infoRight = lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("Answered %d   %s %d   %d%%",
				snap.Answered,
				lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
				snap.Correct, snap.Accuracy))
	}
	line := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(line + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, difficultyBadge(s.question.Difficulty)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(min(width-8, 72)).
		Foreground(theme.Text).
		Bold(true).
		Render(s.question.Text))
	b.WriteString("\n\n")
	b.WriteString(s.choice.View())
	b.WriteString("\n")

	switch {
	case s.phase == phaseSubmitting:
		b.WriteString(theme.Hint.Render("Checking your answer..."))
	case s.phase == phaseFeedback && s.outcome.Correct:
		b.WriteString(theme.Correct.Render("Correct!"))
		b.WriteString(theme.Hint.Render("   press any key"))
	case s.phase == phaseFeedback:
		b.WriteString(theme.Incorrect.Render("Not quite."))
		b.WriteString(theme.Hint.Render("   press any key"))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg + " Pick an answer to try again."))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func difficultyBadge(d assessment.Difficulty) string {
	if d == "" {
		return ""
	}
	color := theme.Secondary
	switch d {
	case assessment.DifficultyEasy:
		color = theme.Success
	case assessment.DifficultyHard:
		color = theme.Accent
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(d.Label())
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Leave this test?"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(width, theme.TextDim, "Answers so far stay recorded, but the test will not be scored."))
	b.WriteString("\n\n")
	b.WriteString(theme.Centered(width, theme.Success, "[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(width, theme.Primary, "[N] No, keep going"))
	return b.String()
}
