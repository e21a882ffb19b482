// Package quiz is the adaptive test screen. It drives an
// assessment.Controller: the platform picks and grades every question, the
// screen only renders state and forwards the learner's picks.
package quiz

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/screens/summary"
	"github.com/abhisek/stylequiz/internal/ui/components"
	"github.com/abhisek/stylequiz/internal/ui/layout"
)

type phase int

const (
	phaseStarting phase = iota
	phaseAnswering
	phaseSubmitting
	phaseFeedback
	phaseFailed // the session could not be started
)

// Screen runs one adaptive test.
type Screen struct {
	gw      assessment.Gateway
	opts    []assessment.Option
	ctrl    *assessment.Controller
	subject assessment.Subject

	phase       phase
	choice      components.MultiChoice
	question    assessment.Question
	outcome     assessment.Outcome
	steps       []summary.Step
	errMsg      string
	confirmQuit bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.EscapeHandler = (*Screen)(nil)

// New creates a test screen for subject. opts configure the controller,
// e.g. assessment.WithObserver for local history.
func New(gw assessment.Gateway, subject assessment.Subject, opts ...assessment.Option) *Screen {
	return &Screen{
		gw:      gw,
		opts:    opts,
		ctrl:    assessment.NewController(gw, opts...),
		subject: subject,
	}
}

func (s *Screen) Init() tea.Cmd {
	return s.start()
}

func (s *Screen) Title() string {
	return s.subject.Name
}

func (s *Screen) HandlesEscape() bool { return true }

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave test"},
			{Key: "N", Description: "Keep going"},
		}
	case s.phase == phaseFailed:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-4", Description: "Answer"},
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)
	case answeredMsg:
		return s.handleAnswered(msg)
	case components.ChoiceMsg:
		return s.submit(msg.Index)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) start() tea.Cmd {
	s.phase = phaseStarting
	s.errMsg = ""
	s.steps = nil
	ctrl, subject := s.ctrl, s.subject
	return func() tea.Msg {
		return startedMsg{Err: ctrl.ChooseSubject(context.Background(), subject)}
	}
}

func (s *Screen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, assessment.ErrStale) {
			return s, nil
		}
		s.phase = phaseFailed
		s.errMsg = screen.ErrorText(msg.Err)
		return s, nil
	}
	s.showQuestion()
	return s, nil
}

// showQuestion loads the controller's current question into the selector.
func (s *Screen) showQuestion() {
	q, ok := s.ctrl.Question()
	if !ok {
		s.phase = phaseFailed
		s.errMsg = "The platform did not send a question."
		return
	}
	s.question = q
	s.choice = components.NewMultiChoice(q.Options)
	s.phase = phaseAnswering
	s.errMsg = ""
}

func (s *Screen) submit(index int) (screen.Screen, tea.Cmd) {
	if s.phase != phaseAnswering {
		return s, nil
	}
	if err := s.ctrl.SelectOption(index); err != nil {
		s.errMsg = screen.ErrorText(err)
		return s, nil
	}
	s.phase = phaseSubmitting
	s.choice.Locked = true
	s.errMsg = ""

	ctrl := s.ctrl
	return s, func() tea.Msg {
		out, err := ctrl.SubmitAnswer(context.Background())
		return answeredMsg{Outcome: out, Err: err}
	}
}

func (s *Screen) handleAnswered(msg answeredMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, assessment.ErrStale) {
			return s, nil
		}
		// The controller keeps the question on failure, so the learner can
		// submit again.
		s.phase = phaseAnswering
		s.choice.Locked = false
		s.choice.Chosen = -1
		s.errMsg = screen.ErrorText(msg.Err)
		return s, nil
	}
	s.outcome = msg.Outcome
	s.steps = append(s.steps, summary.Step{Difficulty: s.question.Difficulty, Correct: msg.Outcome.Correct})
	s.choice.Mark(msg.Outcome.Correct)
	s.phase = phaseFeedback
	return s, nil
}

func (s *Screen) advance() (screen.Screen, tea.Cmd) {
	if s.outcome.Completed {
		snap := s.ctrl.Snapshot()
		steps := s.steps
		gw, subject, opts := s.gw, s.subject, s.opts
		retake := func() screen.Screen { return New(gw, subject, opts...) }
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(snap, steps, retake)}
		}
	}
	s.showQuestion()
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			s.ctrl.Restart()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseFailed:
		switch key {
		case "r", "R":
			return s, s.start()
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	case phaseFeedback:
		return s.advance()
	case phaseStarting:
		if key == "esc" {
			s.ctrl.Restart()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}
	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	return s, cmd
}
