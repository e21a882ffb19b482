package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func recordAttempt(t *testing.T, repo store.EventRepo, session, subject string, results ...bool) {
	t.Helper()
	ctx := context.Background()
	rec := store.NewAttemptRecorder(repo, nil)
	base := assessment.Event{SessionID: session, SubjectID: subject, SubjectName: subject}

	ev := base
	ev.Kind = assessment.EventStarted
	rec.Observe(ctx, ev)

	correct := 0
	for i, ok := range results {
		if ok {
			correct++
		}
		ev := base
		ev.Kind = assessment.EventAnswered
		ev.QuestionID = "q"
		ev.Difficulty = assessment.DifficultyMedium
		ev.ElapsedMs = 2000
		ev.Correct = ok
		ev.Answered = i + 1
		ev.CorrectSum = correct
		rec.Observe(ctx, ev)
	}

	ev = base
	ev.Kind = assessment.EventCompleted
	ev.Answered = len(results)
	ev.CorrectSum = correct
	rec.Observe(ctx, ev)
}

func loaded(t *testing.T, repo store.EventRepo) *HistoryScreen {
	t.Helper()
	s := New(repo)
	s.Update(s.Init()())
	return s
}

func TestHistory_Empty(t *testing.T) {
	s := loaded(t, openStore(t).Events())
	if !strings.Contains(s.View(100, 30), "No tests on this device yet") {
		t.Error("expected empty message")
	}
}

func TestHistory_ListsAttemptsAndStats(t *testing.T) {
	st := openStore(t)
	recordAttempt(t, st.Events(), "s1", "Mathematics", true, true, false, true)
	recordAttempt(t, st.Events(), "s2", "Science", false, false)

	s := loaded(t, st.Events())
	if len(s.attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(s.attempts))
	}
	view := s.View(120, 30)
	for _, want := range []string{"Science", "Mathematics", "75% accuracy", "2 tests", "Medium 3/6"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistory_ExpandAndNavigate(t *testing.T) {
	st := openStore(t)
	recordAttempt(t, st.Events(), "s1", "Mathematics", true)
	recordAttempt(t, st.Events(), "s2", "Science", true)
	s := loaded(t, st.Events())

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(120, 30), "session s1") {
		t.Error("expanded row should show its session")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("Esc should pop")
	}
}
