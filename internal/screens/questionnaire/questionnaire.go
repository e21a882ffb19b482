// Package questionnaire walks the learner through the VARK questionnaire
// and saves the resulting profile.
package questionnaire

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/screens/varkresult"
	"github.com/abhisek/stylequiz/internal/store"
	"github.com/abhisek/stylequiz/internal/ui/components"
	"github.com/abhisek/stylequiz/internal/ui/layout"
	"github.com/abhisek/stylequiz/internal/ui/theme"
	"github.com/abhisek/stylequiz/internal/vark"
)

// Source is the platform side of the questionnaire.
type Source interface {
	VarkQuestions(ctx context.Context) ([]vark.Question, error)
	SubmitVarkResult(ctx context.Context, d vark.Distribution) (vark.Style, error)
}

type questionsLoadedMsg struct {
	Questions []vark.Question
	Fallback  bool
}

type submittedMsg struct {
	Result vark.Result
	Note   string
}

// QuestionnaireScreen runs the questionnaire.
type QuestionnaireScreen struct {
	source     Source
	cache      store.VarkRepo
	log        *logging.Logger
	resultOpts []varkresult.Option

	q          *vark.Questionnaire
	choice     components.MultiChoice
	fallback   bool
	submitting bool
	errMsg     string
}

var _ screen.Screen = (*QuestionnaireScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionnaireScreen)(nil)

// New creates the questionnaire screen. cache and log may be nil.
// resultOpts configure the result screen shown at the end.
func New(source Source, cache store.VarkRepo, log *logging.Logger, resultOpts ...varkresult.Option) *QuestionnaireScreen {
	if log == nil {
		log = logging.Nop()
	}
	return &QuestionnaireScreen{source: source, cache: cache, log: log, resultOpts: resultOpts}
}

func (s *QuestionnaireScreen) Init() tea.Cmd {
	source, log := s.source, s.log
	return func() tea.Msg {
		qs, fallback := LoadQuestions(context.Background(), source, log)
		return questionsLoadedMsg{Questions: qs, Fallback: fallback}
	}
}

func (s *QuestionnaireScreen) Title() string {
	return "Learning Style Questionnaire"
}

func (s *QuestionnaireScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "1-4", Description: "Answer"},
		{Key: "Enter", Description: "Next"},
		{Key: "←", Description: "Previous"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *QuestionnaireScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsLoadedMsg:
		q, err := vark.NewQuestionnaire(msg.Questions)
		if err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		s.q = q
		s.fallback = msg.Fallback
		s.showCurrent()
		return s, nil

	case components.ChoiceMsg:
		return s.answer(msg.Index)

	case submittedMsg:
		opts := append([]varkresult.Option{varkresult.WithNote(msg.Note)}, s.resultOpts...)
		next := varkresult.New(msg.Result, opts...)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if s.q == nil || s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "left", "backspace":
			if s.q.Back() {
				s.showCurrent()
			}
			return s, nil
		}
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		return s, cmd
	}
	return s, nil
}

// showCurrent loads the current item into the selector, keeping an
// earlier pick highlighted.
func (s *QuestionnaireScreen) showCurrent() {
	cur := s.q.Current()
	opts := make([]string, len(cur.Options))
	for i, o := range cur.Options {
		opts[i] = o.Text
	}
	s.choice = components.NewMultiChoice(opts)
	if i := s.q.SelectedIndex(); i >= 0 {
		s.choice.Selected = i
	}
	s.errMsg = ""
}

func (s *QuestionnaireScreen) answer(index int) (screen.Screen, tea.Cmd) {
	if s.q == nil || s.submitting {
		return s, nil
	}
	if err := s.q.SelectIndex(index); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	done, err := s.q.Next()
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if !done {
		s.showCurrent()
		return s, nil
	}
	res, err := s.q.Result()
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.submitting = true
	return s, s.submit(res)
}

// submit sends the result to the platform and always caches it locally.
// The platform's classification wins when it sends one.
func (s *QuestionnaireScreen) submit(res vark.Result) tea.Cmd {
	source, cache, log := s.source, s.cache, s.log
	return func() tea.Msg {
		out, note := Submit(context.Background(), source, cache, log, res)
		return submittedMsg{Result: out, Note: note}
	}
}

func (s *QuestionnaireScreen) View(width, height int) string {
	if s.q == nil {
		if s.errMsg != "" {
			return theme.Centered(width, theme.Error, "\n\n"+s.errMsg)
		}
		return theme.Centered(width, theme.TextDim, "\n\n  Loading questionnaire...")
	}
	if s.submitting {
		return theme.Centered(width, theme.TextDim, "\n\n  Working out your learning style...")
	}

	cw := min(width-4, 70)
	var b strings.Builder
	b.WriteString("\n")
	bar := components.NewProgressBar(
		fmt.Sprintf("Question %d of %d", s.q.Index()+1, s.q.Len()),
		s.q.Progress(), false, cw)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(cw).
		Render(s.q.Current().Text)
	body += "\n\n" + s.choice.View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(body)))
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString(theme.Centered(width, theme.Error, s.errMsg))
		b.WriteString("\n")
	}
	if s.fallback {
		b.WriteString(theme.Centered(width, theme.TextDim,
			"Using the built-in questionnaire because the platform is unavailable."))
	}
	return b.String()
}
