package assessment

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gate lets a test hold a gateway call open until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) wait() {
	if g == nil {
		return
	}
	g.entered <- struct{}{}
	<-g.release
}

type fakeGateway struct {
	mu         sync.Mutex
	startRes   *StartResult
	startErr   error
	answers    []*AnswerResult
	answerErr  error
	subs       []AnswerSubmission
	starts     []string
	startGate  *gate
	submitGate *gate
}

func (f *fakeGateway) ListSubjects(context.Context) ([]Subject, error) {
	return []Subject{{ID: "math", Name: "Math"}}, nil
}

func (f *fakeGateway) StartTest(_ context.Context, subjectID string) (*StartResult, error) {
	f.mu.Lock()
	g := f.startGate
	f.starts = append(f.starts, subjectID)
	res, err := f.startRes, f.startErr
	f.mu.Unlock()
	g.wait()
	return res, err
}

func (f *fakeGateway) SubmitAnswer(_ context.Context, sub AnswerSubmission) (*AnswerResult, error) {
	f.mu.Lock()
	g := f.submitGate
	f.subs = append(f.subs, sub)
	if f.answerErr != nil {
		err := f.answerErr
		f.mu.Unlock()
		g.wait()
		return nil, err
	}
	var res *AnswerResult
	if len(f.answers) > 0 {
		res = f.answers[0]
		f.answers = f.answers[1:]
	}
	f.mu.Unlock()
	g.wait()
	return res, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func question(id string) *Question {
	return &Question{
		ID:         id,
		Text:       "Question " + id,
		Options:    []string{"a", "b", "c", "d"},
		Difficulty: DifficultyMedium,
		SubjectID:  "math",
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventKind
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

var mathSubject = Subject{ID: "math", Name: "Math"}

func started(t *testing.T, gw *fakeGateway, opts ...Option) *Controller {
	t.Helper()
	if gw.startRes == nil {
		gw.startRes = &StartResult{SessionID: "s1", Question: question("q1")}
	}
	c := NewController(gw, opts...)
	require.NoError(t, c.ChooseSubject(context.Background(), mathSubject))
	return c
}

func TestChooseSubject_Success(t *testing.T) {
	gw := &fakeGateway{}
	c := started(t, gw)

	s := c.Snapshot()
	assert.Equal(t, StateAnswering, s.State)
	assert.Equal(t, "s1", s.SessionID)
	assert.Equal(t, 0, s.Answered)
	assert.Equal(t, 0, s.Correct)
	assert.Equal(t, -1, s.Selected)
	require.NotNil(t, s.Question)
	assert.Equal(t, "q1", s.Question.ID)
	assert.Equal(t, []string{"math"}, gw.starts)
}

func TestChooseSubject_EmptyID(t *testing.T) {
	c := NewController(&fakeGateway{})
	err := c.ChooseSubject(context.Background(), Subject{})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, StateIdle, c.State())
}

func TestChooseSubject_FailureIsRetryable(t *testing.T) {
	gw := &fakeGateway{startErr: &GatewayError{Op: "start test", Status: 404, Message: "Subject has no questions"}}
	c := NewController(gw)

	err := c.ChooseSubject(context.Background(), mathSubject)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Subject has no questions", UserMessage(err))

	s := c.Snapshot()
	assert.Equal(t, StateSubjectChosen, s.State)
	assert.Nil(t, s.Question)
	assert.Empty(t, s.SessionID)
	_, ok := c.Question()
	assert.False(t, ok)

	gw.startErr = nil
	gw.startRes = &StartResult{SessionID: "s2", Question: question("q1")}
	require.NoError(t, c.ChooseSubject(context.Background(), mathSubject))
	assert.Equal(t, StateAnswering, c.State())
}

func TestChooseSubject_PlainErrorIsWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	c := NewController(&fakeGateway{startErr: cause})

	err := c.ChooseSubject(context.Background(), mathSubject)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "start test", gwErr.Op)
}

func TestChooseSubject_MalformedStart(t *testing.T) {
	tests := []struct {
		name string
		res  *StartResult
	}{
		{"nil", nil},
		{"no session", &StartResult{Question: question("q1")}},
		{"no question", &StartResult{SessionID: "s1"}},
		{"no options", &StartResult{SessionID: "s1", Question: &Question{ID: "q1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(&fakeGateway{startRes: tt.res})
			err := c.ChooseSubject(context.Background(), mathSubject)
			var gwErr *GatewayError
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, StateSubjectChosen, c.State())
		})
	}
}

func TestChooseSubject_RejectedWhileAnswering(t *testing.T) {
	c := started(t, &fakeGateway{})

	err := c.ChooseSubject(context.Background(), mathSubject)
	var stErr *StateError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, StateAnswering, stErr.State)
	assert.Equal(t, "s1", c.Snapshot().SessionID)
}

func TestSelectOption(t *testing.T) {
	idle := NewController(&fakeGateway{})
	var stErr *StateError
	require.ErrorAs(t, idle.SelectOption(0), &stErr)

	c := started(t, &fakeGateway{})
	var valErr *ValidationError
	require.ErrorAs(t, c.SelectOption(-1), &valErr)
	require.ErrorAs(t, c.SelectOption(4), &valErr)
	assert.Equal(t, -1, c.Snapshot().Selected)

	require.NoError(t, c.SelectOption(3))
	require.NoError(t, c.SelectOption(1))
	assert.Equal(t, 1, c.Snapshot().Selected)
}

func TestSubmitAnswer_RequiresSelection(t *testing.T) {
	gw := &fakeGateway{}
	c := started(t, gw)

	_, err := c.SubmitAnswer(context.Background())
	var stErr *StateError
	require.ErrorAs(t, err, &stErr)
	assert.Empty(t, gw.subs, "nothing should reach the gateway")
}

func TestSubmitAnswer_NextQuestion(t *testing.T) {
	clock := newClock()
	gw := &fakeGateway{answers: []*AnswerResult{
		{IsCorrect: true, NextQuestion: question("q2")},
		{IsCorrect: false, NextQuestion: question("q3")},
	}}
	c := started(t, gw, WithClock(clock.Now))

	clock.Advance(1500 * time.Millisecond)
	require.NoError(t, c.SelectOption(2))
	out, err := c.SubmitAnswer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Outcome{Correct: true, Answered: 1, CorrectN: 1}, out)

	require.Len(t, gw.subs, 1)
	assert.Equal(t, AnswerSubmission{SessionID: "s1", QuestionID: "q1", OptionIndex: 2, ElapsedMs: 1500}, gw.subs[0])

	s := c.Snapshot()
	assert.Equal(t, StateAnswering, s.State)
	assert.Equal(t, "q2", s.Question.ID)
	assert.Equal(t, -1, s.Selected, "selection is cleared for the new question")
	assert.Equal(t, 1, s.Answered)
	assert.Equal(t, 1, s.Correct)

	// The timestamp resets per question.
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, c.SelectOption(0))
	out, err = c.SubmitAnswer(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, int64(200), gw.subs[1].ElapsedMs)
	assert.Equal(t, 2, c.Snapshot().Answered)
	assert.Equal(t, 1, c.Snapshot().Correct)
	assert.Equal(t, 50, c.Accuracy())
}

func TestSubmitAnswer_Completed(t *testing.T) {
	rec := &recorder{}
	gw := &fakeGateway{answers: []*AnswerResult{{IsCorrect: true, Completed: true}}}
	c := started(t, gw, WithObserver(rec))

	require.NoError(t, c.SelectOption(0))
	out, err := c.SubmitAnswer(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Completed)

	s := c.Snapshot()
	assert.Equal(t, StateCompleted, s.State)
	assert.Nil(t, s.Question)
	assert.Equal(t, 100, s.Accuracy)
	_, ok := c.Question()
	assert.False(t, ok)

	_, err = c.SubmitAnswer(context.Background())
	var stErr *StateError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, StateCompleted, stErr.State)
	require.ErrorAs(t, c.SelectOption(0), &stErr)

	assert.Equal(t, []EventKind{EventStarted, EventAnswered, EventCompleted}, rec.kinds())

	// A new session can be started straight from Completed.
	gw.startRes = &StartResult{SessionID: "s2", Question: question("q9")}
	require.NoError(t, c.ChooseSubject(context.Background(), mathSubject))
	s = c.Snapshot()
	assert.Equal(t, "s2", s.SessionID)
	assert.Equal(t, 0, s.Answered)
	assert.Nil(t, s.Last)
}

func TestSubmitAnswer_GatewayFailureLeavesStateUnchanged(t *testing.T) {
	gw := &fakeGateway{answerErr: &GatewayError{Op: "submit answer", Status: 500}}
	c := started(t, gw)
	require.NoError(t, c.SelectOption(1))
	before := c.Snapshot()

	_, err := c.SubmitAnswer(context.Background())
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, before, c.Snapshot())

	// The learner can resubmit the same question.
	gw.answerErr = nil
	gw.answers = []*AnswerResult{{IsCorrect: true, NextQuestion: question("q2")}}
	_, err = c.SubmitAnswer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Snapshot().Answered)
	assert.Equal(t, "q1", gw.subs[1].QuestionID)
}

func TestSubmitAnswer_MalformedVerdict(t *testing.T) {
	gw := &fakeGateway{answers: []*AnswerResult{{IsCorrect: true}}}
	c := started(t, gw)
	require.NoError(t, c.SelectOption(0))

	_, err := c.SubmitAnswer(context.Background())
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	s := c.Snapshot()
	assert.Equal(t, 0, s.Answered)
	assert.Equal(t, 0, s.Correct)
	assert.Equal(t, "q1", s.Question.ID)
}

func TestSubmitAnswer_NegativeElapsed(t *testing.T) {
	clock := newClock()
	gw := &fakeGateway{}
	c := started(t, gw, WithClock(clock.Now))
	require.NoError(t, c.SelectOption(0))

	clock.Advance(-time.Second)
	_, err := c.SubmitAnswer(context.Background())
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Empty(t, gw.subs)
	assert.Equal(t, StateAnswering, c.State())
}

func TestSubmitAnswer_BusyWhileInFlight(t *testing.T) {
	g := newGate()
	gw := &fakeGateway{answers: []*AnswerResult{{IsCorrect: true, NextQuestion: question("q2")}}}
	c := started(t, gw)
	gw.mu.Lock()
	gw.submitGate = g
	gw.mu.Unlock()
	require.NoError(t, c.SelectOption(0))

	done := make(chan error, 1)
	go func() {
		_, err := c.SubmitAnswer(context.Background())
		done <- err
	}()
	<-g.entered

	assert.True(t, c.Snapshot().Busy)
	_, err := c.SubmitAnswer(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.ChooseSubject(context.Background(), mathSubject), ErrBusy)

	close(g.release)
	require.NoError(t, <-done)
	s := c.Snapshot()
	assert.Equal(t, 1, s.Answered, "only one submission is counted")
	assert.False(t, s.Busy)
}

func TestRestart_DiscardsInFlightSubmit(t *testing.T) {
	g := newGate()
	gw := &fakeGateway{answers: []*AnswerResult{{IsCorrect: true, NextQuestion: question("q2")}}}
	c := started(t, gw)
	gw.mu.Lock()
	gw.submitGate = g
	gw.mu.Unlock()
	require.NoError(t, c.SelectOption(0))

	done := make(chan error, 1)
	go func() {
		_, err := c.SubmitAnswer(context.Background())
		done <- err
	}()
	<-g.entered

	c.Restart()
	close(g.release)
	assert.ErrorIs(t, <-done, ErrStale)

	s := c.Snapshot()
	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, 0, s.Answered)
	assert.Empty(t, s.SessionID)
}

func TestRestart_DiscardsInFlightStart(t *testing.T) {
	g := newGate()
	gw := &fakeGateway{
		startRes:  &StartResult{SessionID: "late", Question: question("q1")},
		startGate: g,
	}
	c := NewController(gw)

	done := make(chan error, 1)
	go func() { done <- c.ChooseSubject(context.Background(), mathSubject) }()
	<-g.entered
	assert.Equal(t, StateAwaitingQuestion, c.State())

	c.Restart()
	close(g.release)
	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Snapshot().SessionID)
}

func TestRestart_FromAnyState(t *testing.T) {
	rec := &recorder{}
	c := started(t, &fakeGateway{}, WithObserver(rec))
	c.Restart()
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, []EventKind{EventStarted, EventAbandoned}, rec.kinds())

	idle := NewController(&fakeGateway{}, WithObserver(rec))
	idle.Restart()
	assert.Equal(t, StateIdle, idle.State())
	assert.Len(t, rec.kinds(), 2, "restarting an idle controller emits nothing")
}

func TestInvariant_RandomSessions(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for run := 0; run < 50; run++ {
		n := 1 + rng.IntN(20)
		answers := make([]*AnswerResult, n)
		for i := range answers {
			answers[i] = &AnswerResult{IsCorrect: rng.IntN(2) == 0, NextQuestion: question("next")}
		}
		answers[n-1].Completed = true
		answers[n-1].NextQuestion = nil

		c := started(t, &fakeGateway{answers: answers})
		prevAnswered, prevCorrect := 0, 0
		for i := 0; i < n; i++ {
			require.NoError(t, c.SelectOption(rng.IntN(4)))
			out, err := c.SubmitAnswer(context.Background())
			require.NoError(t, err)

			s := c.Snapshot()
			assert.LessOrEqual(t, s.Correct, s.Answered)
			assert.Equal(t, prevAnswered+1, s.Answered)
			wantCorrect := prevCorrect
			if out.Correct {
				wantCorrect++
			}
			assert.Equal(t, wantCorrect, s.Correct)
			assert.Equal(t, Accuracy(s.Correct, s.Answered), s.Accuracy)
			assert.Equal(t, s.State == StateAnswering, s.Question != nil)
			prevAnswered, prevCorrect = s.Answered, s.Correct
		}
		assert.Equal(t, StateCompleted, c.State())
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, answered, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := Accuracy(tt.correct, tt.answered); got != tt.want {
			t.Errorf("Accuracy(%d, %d) = %d, want %d", tt.correct, tt.answered, got, tt.want)
		}
	}
}

func TestSnapshot_ReturnsCopies(t *testing.T) {
	c := started(t, &fakeGateway{})
	s := c.Snapshot()
	s.Question.Options[0] = "changed"

	q, ok := c.Question()
	require.True(t, ok)
	assert.Equal(t, "a", q.Options[0])
}
