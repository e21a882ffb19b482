package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/screens/welcome"
	"github.com/abhisek/stylequiz/internal/ui/layout"
	"github.com/abhisek/stylequiz/internal/ui/theme"
	"github.com/abhisek/stylequiz/internal/vark"
)

// contentWidth returns the shared width of the home sections.
func contentWidth(width int) int {
	return max(min(width-6, 64), 30)
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompact(width, height+6)
	cw := contentWidth(width)

	var sections []string
	if !compact {
		sections = append(sections, welcome.RenderBanner(width))
	}
	sections = append(sections, theme.Card.Width(cw).Render(h.renderProfile(cw-6)))
	sections = append(sections, theme.Card.Width(cw).Render(h.menu.View()))
	if h.offline != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Accent).
			Width(cw).
			Align(lipgloss.Center).
			Render("Offline: "+h.offline))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) renderProfile(width int) string {
	if !h.loaded {
		return theme.Hint.Render("Checking your account...")
	}

	var b strings.Builder
	if h.user == nil {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Not signed in"))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Log in to take adaptive tests and sync your results."))
		if h.cached != nil {
			b.WriteString("\n\n")
			b.WriteString(styleBadge(h.cached.Type, "Saved on this device: "))
		}
		return b.String()
	}

	name := h.user.Name
	if name == "" {
		name = h.user.Email
	}
	role := "Student"
	if h.user.Role == gateway.RoleTeacher {
		role = "Teacher"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(name))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  ·  %s", role)))
	b.WriteString("\n\n")

	style := h.user.VarkType
	if !style.Valid() && h.cached != nil {
		style = h.cached.Type
	}
	if style.Valid() {
		b.WriteString(styleBadge(style, "Learning style: "))
	} else {
		b.WriteString(theme.Hint.Render("Take the questionnaire to discover your learning style."))
	}
	return b.String()
}

func styleBadge(s vark.Style, prefix string) string {
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render(prefix) +
		lipgloss.NewStyle().Foreground(theme.StyleColor(s)).Bold(true).Render(s.Label())
}
