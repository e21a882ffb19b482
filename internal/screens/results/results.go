// Package results shows the learner's test record as kept by the platform.
package results

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/screens/varkresult"
	"github.com/abhisek/stylequiz/internal/ui/layout"
	"github.com/abhisek/stylequiz/internal/ui/theme"
	"github.com/abhisek/stylequiz/internal/vark"
)

// Source is the part of the platform client this screen reads.
type Source = gateway.OverviewSource

type resultsLoadedMsg struct {
	Results *gateway.Results
	Vark    *vark.Result // nil when the questionnaire was never taken
	Err     error
}

// ResultsScreen displays overall stats, the learning style and recent
// tests.
type ResultsScreen struct {
	source  Source
	results *gateway.Results
	vark    *vark.Result
	offset  int
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen.
func New(source Source) *ResultsScreen {
	return &ResultsScreen{source: source}
}

func (s *ResultsScreen) Init() tea.Cmd {
	s.loaded = false
	s.errMsg = ""
	source := s.source
	return func() tea.Msg {
		ov, err := gateway.LoadOverview(context.Background(), source)
		if err != nil {
			return resultsLoadedMsg{Err: err}
		}
		return resultsLoadedMsg{Results: ov.Results, Vark: ov.Vark}
	}
}

func (s *ResultsScreen) Title() string {
	return "My Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = screen.ErrorText(msg.Err)
			return s, nil
		}
		s.results = msg.Results
		s.vark = msg.Vark
		s.offset = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "R":
			return s, s.Init()
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.results != nil && s.offset < len(s.results.History)-1 {
				s.offset++
			}
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	if !s.loaded {
		return theme.Centered(width, theme.TextDim, "\n\n  Loading results...")
	}
	if s.errMsg != "" {
		return theme.Centered(width, theme.Error,
			fmt.Sprintf("\n\nCould not load results: %s\n\nPress R to retry.", s.errMsg))
	}

	cw := min(width-4, 70)
	res := s.results
	var b strings.Builder
	b.WriteString("\n")

	stat := func(label, value string) string {
		return lipgloss.NewStyle().Width(cw / 3).Align(lipgloss.Center).Render(
			lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(value) + "\n" +
				lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("tests", fmt.Sprintf("%d", res.TestsCompleted)),
		stat("average", fmt.Sprintf("%.0f%%", res.AverageScore)),
		stat("correct answers", fmt.Sprintf("%d", res.CorrectAnswers)),
	)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Card.Render(stats)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, layout.Section("Learning style", cw)))
	b.WriteString("\n\n")
	if s.vark == nil {
		b.WriteString(theme.Centered(width, theme.TextDim, "Take the questionnaire to discover your learning style."))
	} else {
		style := s.vark.Type
		if !style.Valid() {
			style = s.vark.Dominant()
		}
		b.WriteString(theme.Centered(width, theme.StyleColor(style), style.Label()))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			varkresult.RenderDistribution(s.vark.Distribution, cw)))
	}
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, layout.Section("Recent tests", cw)))
	b.WriteString("\n\n")
	if len(res.History) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("No tests yet. Pick a subject to get started!"))
		return b.String()
	}

	visible := max(height-lipgloss.Height(b.String())-1, 3)
	end := min(s.offset+visible, len(res.History))
	var rows strings.Builder
	for _, rec := range res.History[s.offset:end] {
		date := rec.CompletedAt
		if t, ok := rec.Completed(); ok {
			date = t.Format("Jan 02, 2006")
		}
		line := fmt.Sprintf("%-14s  %-18s  %3.0f%%  %2d questions",
			date, truncate(rec.Subject, 18), rec.Score, rec.QuestionsAnswered)
		rows.WriteString(lipgloss.NewStyle().Foreground(scoreColor(rec.Score)).Render(line))
		rows.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(rows.String())))
	return b.String()
}

func scoreColor(score float64) color.Color {
	switch {
	case score >= 80:
		return theme.Success
	case score >= 50:
		return theme.Text
	}
	return theme.Error
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
