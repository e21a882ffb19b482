// Package subjects lists the subjects a learner can be tested on.
package subjects

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/screens/quiz"
	"github.com/abhisek/stylequiz/internal/ui/layout"
	"github.com/abhisek/stylequiz/internal/ui/theme"
)

type subjectsLoadedMsg struct {
	Subjects []assessment.Subject
	Err      error
}

// SubjectsScreen lets the learner pick a subject for an adaptive test.
type SubjectsScreen struct {
	gw       assessment.Gateway
	opts     []assessment.Option
	subjects []assessment.Subject
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*SubjectsScreen)(nil)
var _ screen.KeyHintProvider = (*SubjectsScreen)(nil)

// New creates a SubjectsScreen. opts are passed on to every test started
// from it.
func New(gw assessment.Gateway, opts ...assessment.Option) *SubjectsScreen {
	return &SubjectsScreen{gw: gw, opts: opts}
}

func (s *SubjectsScreen) Init() tea.Cmd {
	s.loaded = false
	s.errMsg = ""
	gw := s.gw
	return func() tea.Msg {
		subjects, err := gw.ListSubjects(context.Background())
		return subjectsLoadedMsg{Subjects: subjects, Err: err}
	}
}

func (s *SubjectsScreen) Title() string {
	return "Choose a Subject"
}

func (s *SubjectsScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start test"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SubjectsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case subjectsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = screen.ErrorText(msg.Err)
			return s, nil
		}
		s.subjects = msg.Subjects
		s.selected = min(s.selected, max(len(s.subjects)-1, 0))
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "R":
			if s.errMsg != "" {
				return s, s.Init()
			}
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.subjects)-1 {
				s.selected++
			}
		case "enter":
			if len(s.subjects) == 0 {
				return s, nil
			}
			next := quiz.New(s.gw, s.subjects[s.selected], s.opts...)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *SubjectsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return theme.Centered(width, theme.Error,
			fmt.Sprintf("\n\nCould not load subjects: %s\n\nPress R to retry.", s.errMsg))
	}
	if !s.loaded {
		return theme.Centered(width, theme.TextDim, "\n\n  Loading subjects...")
	}
	if len(s.subjects) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No subjects are available yet.")
	}

	cw := min(width-4, 70)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, layout.Section("Subjects", cw)))
	b.WriteString("\n\n")

	for i, subj := range s.subjects {
		title := subj.Name
		if subj.QuestionCount > 0 {
			title = fmt.Sprintf("%s  (%d questions)", subj.Name, subj.QuestionCount)
		}
		style := theme.Unselected
		prefix := "  "
		if i == s.selected {
			style = theme.Selected
			prefix = "▸ "
		}
		block := style.Render(prefix + title)
		if subj.Description != "" {
			block += "\n" + lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Width(cw).
				PaddingLeft(4).
				Render(subj.Description)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(cw).Render(block)))
		b.WriteString("\n\n")
	}
	return b.String()
}
