package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/screens/summary"
)

// scriptedGateway serves numbered questions and grades option 0 as
// correct. The test ends after length answers.
type scriptedGateway struct {
	length    int
	served    int
	startErr  error
	submitErr error
}

func (g *scriptedGateway) question() *assessment.Question {
	g.served++
	return &assessment.Question{
		ID:         fmt.Sprintf("q%d", g.served),
		Text:       fmt.Sprintf("Question number %d?", g.served),
		Options:    []string{"right", "wrong", "also wrong"},
		Difficulty: assessment.DifficultyMedium,
	}
}

func (g *scriptedGateway) ListSubjects(context.Context) ([]assessment.Subject, error) {
	return []assessment.Subject{testSubject}, nil
}

func (g *scriptedGateway) StartTest(context.Context, string) (*assessment.StartResult, error) {
	if g.startErr != nil {
		return nil, g.startErr
	}
	return &assessment.StartResult{SessionID: "s1", Question: g.question()}, nil
}

func (g *scriptedGateway) SubmitAnswer(_ context.Context, sub assessment.AnswerSubmission) (*assessment.AnswerResult, error) {
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	res := &assessment.AnswerResult{IsCorrect: sub.OptionIndex == 0}
	if g.served >= g.length {
		res.Completed = true
		return res, nil
	}
	res.NextQuestion = g.question()
	return res, nil
}

var testSubject = assessment.Subject{ID: "math", Name: "Mathematics"}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// drive feeds msg to s and keeps feeding the resulting messages back until
// the screen stops producing commands or emits a router message.
func drive(t *testing.T, s screen.Screen, msg tea.Msg) (screen.Screen, tea.Msg) {
	t.Helper()
	for i := 0; i < 10; i++ {
		var cmd tea.Cmd
		s, cmd = s.Update(msg)
		if cmd == nil {
			return s, nil
		}
		msg = cmd()
		switch msg.(type) {
		case router.PopScreenMsg, router.ReplaceScreenMsg:
			return s, msg
		}
	}
	t.Fatal("screen did not settle")
	return s, nil
}

func started(t *testing.T, gw *scriptedGateway) *Screen {
	t.Helper()
	s := New(gw, testSubject)
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("Init should start the session")
	}
	s.Update(cmd())
	return s
}

func TestQuiz_StartShowsFirstQuestion(t *testing.T) {
	s := started(t, &scriptedGateway{length: 3})
	if s.phase != phaseAnswering {
		t.Fatalf("phase = %d, want answering", s.phase)
	}
	view := s.View(100, 30)
	for _, want := range []string{"Question number 1?", "right", "Medium", "Mathematics"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestQuiz_AnswerShowsFeedbackThenNextQuestion(t *testing.T) {
	s := started(t, &scriptedGateway{length: 3})

	drive(t, s, key('1'))
	if s.phase != phaseFeedback {
		t.Fatalf("phase = %d, want feedback", s.phase)
	}
	if !s.outcome.Correct {
		t.Error("option 1 should be graded correct")
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("feedback should say Correct!")
	}

	drive(t, s, key('x'))
	if s.phase != phaseAnswering {
		t.Fatalf("phase = %d, want answering", s.phase)
	}
	if !strings.Contains(s.View(100, 30), "Question number 2?") {
		t.Error("expected the second question")
	}
}

func TestQuiz_CompletionReplacesWithSummary(t *testing.T) {
	s := started(t, &scriptedGateway{length: 2})

	drive(t, s, key('1'))
	drive(t, s, key(' '))
	drive(t, s, key('2'))
	if !s.outcome.Completed {
		t.Fatal("expected the test to be complete")
	}
	if !strings.Contains(s.View(100, 30), "Not quite.") {
		t.Error("feedback should report the miss")
	}

	_, msg := drive(t, s, key(' '))
	rep, ok := msg.(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("got %T, want ReplaceScreenMsg", msg)
	}
	sum, ok := rep.Screen.(*summary.SummaryScreen)
	if !ok {
		t.Fatalf("replacement is %T, want summary", rep.Screen)
	}
	view := sum.View(100, 30)
	if !strings.Contains(view, "Accuracy: 50%") {
		t.Errorf("summary should show 50%% accuracy:\n%s", view)
	}
}

func TestQuiz_SubmitErrorKeepsQuestion(t *testing.T) {
	gw := &scriptedGateway{length: 3}
	s := started(t, gw)
	gw.submitErr = &assessment.GatewayError{Op: "submit answer", Status: 500, Message: "Server hiccup"}

	drive(t, s, key('1'))
	if s.phase != phaseAnswering {
		t.Fatalf("phase = %d, want answering after failure", s.phase)
	}
	if !strings.Contains(s.View(100, 30), "Server hiccup") {
		t.Error("expected the platform message in the view")
	}

	gw.submitErr = nil
	drive(t, s, key('1'))
	if s.phase != phaseFeedback {
		t.Errorf("retry should succeed, phase = %d", s.phase)
	}
}

func TestQuiz_StartFailureAndRetry(t *testing.T) {
	gw := &scriptedGateway{length: 3, startErr: errors.New("connection refused")}
	s := started(t, gw)
	if s.phase != phaseFailed {
		t.Fatalf("phase = %d, want failed", s.phase)
	}

	gw.startErr = nil
	drive(t, s, key('r'))
	if s.phase != phaseAnswering {
		t.Errorf("retry should start the test, phase = %d", s.phase)
	}
}

func TestQuiz_EscConfirmsBeforeLeaving(t *testing.T) {
	s := started(t, &scriptedGateway{length: 3})
	if !s.HandlesEscape() {
		t.Fatal("quiz should handle Esc itself")
	}

	_, msg := drive(t, s, tea.KeyPressMsg{Code: tea.KeyEscape})
	if msg != nil || !s.confirmQuit {
		t.Fatal("first Esc should ask for confirmation")
	}
	if !strings.Contains(s.View(100, 30), "Leave this test?") {
		t.Error("expected the confirm prompt")
	}

	drive(t, s, key('n'))
	if s.confirmQuit {
		t.Error("N should dismiss the prompt")
	}

	drive(t, s, tea.KeyPressMsg{Code: tea.KeyEscape})
	_, msg = drive(t, s, key('y'))
	if _, ok := msg.(router.PopScreenMsg); !ok {
		t.Fatalf("got %T, want PopScreenMsg", msg)
	}
	if st := s.ctrl.State(); st != assessment.StateIdle {
		t.Errorf("controller state = %v, want idle", st)
	}
}

func TestQuiz_KeyHints(t *testing.T) {
	s := started(t, &scriptedGateway{length: 3})
	if len(s.KeyHints()) != 4 {
		t.Errorf("answering hints = %d, want 4", len(s.KeyHints()))
	}
	s.confirmQuit = true
	if len(s.KeyHints()) != 2 {
		t.Errorf("confirm hints = %d, want 2", len(s.KeyHints()))
	}
}
