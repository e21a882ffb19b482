package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/vark"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range append([]string{tableCredentials, tableSequence}, eventTables...) {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Credentials().SetToken(ctx, "tok-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Credentials().Token(ctx)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != "tok-1" {
		t.Errorf("token = %q, want %q", got, "tok-1")
	}
}

func TestCredentials(t *testing.T) {
	s := openTestStore(t)
	repo := s.Credentials()
	ctx := context.Background()

	tok, err := repo.Token(ctx)
	if err != nil {
		t.Fatalf("token (empty): %v", err)
	}
	if tok != "" {
		t.Errorf("token = %q, want empty", tok)
	}

	for _, want := range []string{"first", "second"} {
		if err := repo.SetToken(ctx, want); err != nil {
			t.Fatalf("set %s: %v", want, err)
		}
		got, err := repo.Token(ctx)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if got != want {
			t.Errorf("token = %q, want %q", got, want)
		}
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if tok, _ := repo.Token(ctx); tok != "" {
		t.Errorf("token after clear = %q, want empty", tok)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(ctx, s.DB())
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestRecorderHistoryAndStats(t *testing.T) {
	s := openTestStore(t)
	events := s.Events()
	rec := NewAttemptRecorder(events, nil)
	ctx := context.Background()

	start := func(session string) {
		rec.Observe(ctx, assessment.Event{
			Kind: assessment.EventStarted, SessionID: session,
			SubjectID: "math", SubjectName: "Math",
		})
	}
	answer := func(session string, d assessment.Difficulty, correct bool, n, c int) {
		rec.Observe(ctx, assessment.Event{
			Kind: assessment.EventAnswered, SessionID: session, SubjectID: "math",
			QuestionID: "q", Difficulty: d, ElapsedMs: 1000, Correct: correct,
			Answered: n, CorrectSum: c,
		})
	}

	start("s1")
	answer("s1", assessment.DifficultyEasy, true, 1, 1)
	answer("s1", assessment.DifficultyMedium, false, 2, 1)
	answer("s1", assessment.DifficultyMedium, true, 3, 2)
	rec.Observe(ctx, assessment.Event{
		Kind: assessment.EventCompleted, SessionID: "s1", SubjectID: "math",
		SubjectName: "Math", Answered: 3, CorrectSum: 2,
	})

	start("s2")
	answer("s2", assessment.DifficultyEasy, false, 1, 0)
	rec.Observe(ctx, assessment.Event{
		Kind: assessment.EventAbandoned, SessionID: "s2", SubjectID: "math",
		Answered: 1, CorrectSum: 0,
	})

	history, err := events.History(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	if history[0].SessionID != "s2" || history[0].Action != ActionAbandon {
		t.Errorf("history[0] = %+v, want abandoned s2", history[0])
	}
	if history[1].Accuracy != 67 {
		t.Errorf("history[1].Accuracy = %d, want 67", history[1].Accuracy)
	}
	if history[0].AttemptID == history[1].AttemptID {
		t.Error("attempts share an id")
	}

	limited, err := events.History(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("history limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited history len = %d, want 1", len(limited))
	}

	st, err := events.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.AttemptsStarted != 2 || st.AttemptsCompleted != 1 || st.AttemptsAbandoned != 1 {
		t.Errorf("attempt counts = %d/%d/%d, want 2/1/1",
			st.AttemptsStarted, st.AttemptsCompleted, st.AttemptsAbandoned)
	}
	if st.Answered != 4 || st.Correct != 2 {
		t.Errorf("answers = %d correct of %d, want 2 of 4", st.Correct, st.Answered)
	}
	if st.Accuracy != 50 {
		t.Errorf("accuracy = %d, want 50", st.Accuracy)
	}
	if st.AvgElapsedMs != 1000 {
		t.Errorf("avg elapsed = %d, want 1000", st.AvgElapsedMs)
	}
	if got := st.ByDifficulty["medium"]; got.Answered != 2 || got.Correct != 1 {
		t.Errorf("medium = %+v, want 1 of 2", got)
	}
}

func TestAPIAndLLMEvents(t *testing.T) {
	s := openTestStore(t)
	events := s.Events()
	ctx := context.Background()

	calls := []APICallEventData{
		{Method: "GET", Path: "/test/subjects", Status: 200, LatencyMs: 12, Success: true},
		{Method: "POST", Path: "/test/start", Status: 500, LatencyMs: 40, ErrorMessage: "boom"},
	}
	for _, c := range calls {
		if err := events.AppendAPICall(ctx, c); err != nil {
			t.Fatalf("append api call: %v", err)
		}
	}
	err := events.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "m", Purpose: "study-tips", Success: true,
	})
	if err != nil {
		t.Fatalf("append llm request: %v", err)
	}

	st, err := events.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.APICalls != 2 || st.APIFailures != 1 {
		t.Errorf("api calls = %d (%d failed), want 2 (1 failed)", st.APICalls, st.APIFailures)
	}
	if st.LLMRequests != 1 {
		t.Errorf("llm requests = %d, want 1", st.LLMRequests)
	}
}

func TestVarkCache(t *testing.T) {
	s := openTestStore(t)
	repo := s.Vark()
	ctx := context.Background()

	rec, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if rec != nil {
		t.Fatal("expected nil record when none exist")
	}

	base := time.Now().Truncate(time.Millisecond)
	first := VarkRecord{
		Distribution: vark.Distribution{Visual: 50, Auditory: 50},
		Type:         vark.Visual,
		Timestamp:    base,
	}
	second := VarkRecord{
		Distribution: vark.Distribution{Visual: 25, Kinesthetic: 75},
		Type:         vark.Kinesthetic,
		Synced:       true,
		Timestamp:    base.Add(time.Minute),
	}
	for _, r := range []VarkRecord{first, second} {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	rec, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec.Type != vark.Kinesthetic || rec.Distribution != second.Distribution || !rec.Synced {
		t.Errorf("latest = %+v, want %+v", rec, second)
	}
	if !rec.Timestamp.Equal(second.Timestamp) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp, second.Timestamp)
	}

	if err := repo.Save(ctx, VarkRecord{Type: "smell"}); err == nil {
		t.Error("expected error for unknown style")
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.Events()

	if err := s.Credentials().SetToken(ctx, "keep-me"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := events.AppendAttempt(ctx, AttemptEventData{
		AttemptID: "a", SessionID: "s", SubjectID: "math", Action: ActionComplete,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Vark().Save(ctx, VarkRecord{Type: vark.Auditory}); err != nil {
		t.Fatalf("save vark: %v", err)
	}

	if err := events.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	history, err := events.History(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history len = %d, want 0", len(history))
	}
	if rec, _ := s.Vark().Latest(ctx); rec != nil {
		t.Errorf("vark cache survived reset: %+v", rec)
	}
	if tok, _ := s.Credentials().Token(ctx); tok != "keep-me" {
		t.Errorf("token = %q, want credentials to survive reset", tok)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("STYLEQUIZ_DB", filepath.Join(dir, "env", "custom.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path (env): %v", err)
	}
	if p != filepath.Join(dir, "env", "custom.db") {
		t.Errorf("path = %q, want env override", p)
	}

	t.Setenv("STYLEQUIZ_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("default path (xdg): %v", err)
	}
	if want := filepath.Join(dir, "stylequiz", "stylequiz.db"); p != want {
		t.Errorf("path = %q, want %q", p, want)
	}
}
