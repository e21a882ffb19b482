package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/sync/errgroup"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/store"
	"github.com/abhisek/stylequiz/internal/ui/layout"
	"github.com/abhisek/stylequiz/internal/ui/theme"
)

type historyLoadedMsg struct {
	Attempts []store.Attempt
	Stats    store.Stats
	Err      error
}

// HistoryScreen displays tests taken on this device.
type HistoryScreen struct {
	eventRepo store.EventRepo
	attempts  []store.Attempt
	stats     store.Stats
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		var msg historyLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			msg.Attempts, err = repo.History(ctx, store.QueryOpts{Limit: 50})
			return err
		})
		g.Go(func() error {
			var err error
			msg.Stats, err = repo.Stats(ctx)
			return err
		})
		msg.Err = g.Wait()
		return msg
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No tests on this device yet. Pick a subject to start!")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderStats()))
	b.WriteString("\n\n")

	for i, a := range s.attempts {
		dateStr := a.FinishedAt.Format("Jan 02, 2006 15:04")
		name := a.SubjectName
		if name == "" {
			name = a.SubjectID
		}
		status := ""
		if a.Action == store.ActionAbandon {
			status = "  (left early)"
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-16s  %d questions  %d%% accuracy%s",
			prefix, dateStr, name, a.Answered, a.Accuracy, status)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %d of %d correct   session %s", a.Correct, a.Answered, a.SessionID)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(accuracyColor(a.Accuracy)).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderStats summarizes every recorded answer, split by difficulty tier.
func (s *HistoryScreen) renderStats() string {
	st := s.stats
	line := fmt.Sprintf("%d tests   %d answers   %d%% accuracy",
		st.AttemptsCompleted, st.Answered, st.Accuracy)
	if st.AvgElapsedMs > 0 {
		line += fmt.Sprintf("   %.1fs per answer", float64(st.AvgElapsedMs)/1000)
	}
	var tiers []string
	for _, d := range []assessment.Difficulty{assessment.DifficultyEasy, assessment.DifficultyMedium, assessment.DifficultyHard} {
		ds, ok := st.ByDifficulty[string(d)]
		if !ok || ds.Answered == 0 {
			continue
		}
		tiers = append(tiers, fmt.Sprintf("%s %d/%d", d.Label(), ds.Correct, ds.Answered))
	}
	out := lipgloss.NewStyle().Foreground(theme.Accent).Render(line)
	if len(tiers) > 0 {
		out += "\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Render(strings.Join(tiers, "   "))
	}
	return lipgloss.NewStyle().Align(lipgloss.Center).Render(out)
}

func accuracyColor(pct int) color.Color {
	switch {
	case pct >= 80:
		return theme.Success
	case pct >= 50:
		return theme.Secondary
	default:
		return theme.TextDim
	}
}
