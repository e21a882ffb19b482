// Package assessment drives one adaptive test session against a remote
// gateway. The gateway owns grading and question selection; the controller
// owns the protocol state and the running tally.
package assessment

import (
	"context"
	"sync"
	"time"
)

// Outcome is what a successful SubmitAnswer reports back to the caller.
type Outcome struct {
	Correct   bool
	Completed bool
	Answered  int
	CorrectN  int
}

// Snapshot is a read-only copy of the controller state for rendering.
type Snapshot struct {
	State     State
	Subject   Subject
	SessionID string
	Question  *Question // nil unless State is StateAnswering
	Selected  int       // -1 when nothing is selected
	Answered  int
	Correct   int
	Accuracy  int
	Busy      bool
	Last      *Outcome // result of the most recent submission in this session
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for time-to-answer.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithObserver registers an observer for committed session events.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// Controller is the adaptive test state machine. It is safe for concurrent
// use; the internal lock is never held across a gateway call.
type Controller struct {
	gw       Gateway
	now      func() time.Time
	observer Observer

	mu        sync.Mutex
	state     State
	gen       uint64 // bumped whenever the active session is replaced or dropped
	busy      bool
	subject   Subject
	sessionID string
	question  *Question
	selected  int
	answered  int
	correct   int
	shownAt   time.Time
	last      *Outcome
}

// NewController creates an idle controller backed by gw.
func NewController(gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:       gw,
		now:      time.Now,
		selected: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChooseSubject starts a new session for subject. It is valid from Idle,
// SubjectChosen (retrying a failed start) and Completed.
func (c *Controller) ChooseSubject(ctx context.Context, subject Subject) error {
	const op = "start test"
	if subject.ID == "" {
		return &ValidationError{Field: "subject", Message: "a subject must be chosen"}
	}

	c.mu.Lock()
	if c.busy {
		st := c.state
		c.mu.Unlock()
		return &StateError{Op: op, State: st, Err: ErrBusy}
	}
	if !c.state.canChooseSubject() {
		st := c.state
		c.mu.Unlock()
		return &StateError{Op: op, State: st}
	}
	c.gen++
	gen := c.gen
	c.clearSessionLocked()
	c.subject = subject
	c.state = StateAwaitingQuestion
	c.busy = true
	c.mu.Unlock()

	res, err := c.gw.StartTest(ctx, subject.ID)
	if err == nil {
		err = checkStart(op, res)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return ErrStale
	}
	c.busy = false
	if err != nil {
		c.state = StateSubjectChosen
		c.mu.Unlock()
		return asGatewayError(op, err)
	}
	c.sessionID = res.SessionID
	c.question = res.Question.clone()
	c.state = StateAnswering
	c.shownAt = c.now()
	ev := Event{
		Kind:        EventStarted,
		SessionID:   c.sessionID,
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		QuestionID:  c.question.ID,
		Difficulty:  c.question.Difficulty,
	}
	c.mu.Unlock()

	c.emit(ctx, ev)
	return nil
}

// SelectOption records the learner's pick for the current question
// without submitting it.
func (c *Controller) SelectOption(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAnswering {
		return &StateError{Op: "select option", State: c.state}
	}
	if index < 0 || index >= len(c.question.Options) {
		return &ValidationError{Field: "option", Message: "option index out of range"}
	}
	c.selected = index
	return nil
}

// SubmitAnswer sends the selected option to the gateway and applies the
// verdict. On any error the session is left exactly as it was.
func (c *Controller) SubmitAnswer(ctx context.Context) (Outcome, error) {
	const op = "submit answer"

	c.mu.Lock()
	if c.busy {
		st := c.state
		c.mu.Unlock()
		return Outcome{}, &StateError{Op: op, State: st, Err: ErrBusy}
	}
	if c.state != StateAnswering || c.selected < 0 {
		st := c.state
		c.mu.Unlock()
		return Outcome{}, &StateError{Op: op, State: st}
	}
	elapsed := c.now().Sub(c.shownAt).Milliseconds()
	if elapsed < 0 {
		c.mu.Unlock()
		return Outcome{}, &ValidationError{Field: "elapsed", Message: "clock went backwards"}
	}
	sub := AnswerSubmission{
		SessionID:   c.sessionID,
		QuestionID:  c.question.ID,
		OptionIndex: c.selected,
		ElapsedMs:   elapsed,
	}
	difficulty := c.question.Difficulty
	gen := c.gen
	c.busy = true
	c.mu.Unlock()

	res, err := c.gw.SubmitAnswer(ctx, sub)
	if err == nil {
		err = checkAnswer(op, res)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return Outcome{}, ErrStale
	}
	c.busy = false
	if err != nil {
		c.mu.Unlock()
		return Outcome{}, asGatewayError(op, err)
	}

	c.answered++
	if res.IsCorrect {
		c.correct++
	}
	c.selected = -1
	if res.Completed {
		c.state = StateCompleted
		c.question = nil
	} else {
		c.question = res.NextQuestion.clone()
		c.shownAt = c.now()
	}
	out := Outcome{
		Correct:   res.IsCorrect,
		Completed: res.Completed,
		Answered:  c.answered,
		CorrectN:  c.correct,
	}
	c.last = &out

	answered := Event{
		Kind:        EventAnswered,
		SessionID:   sub.SessionID,
		SubjectID:   c.subject.ID,
		SubjectName: c.subject.Name,
		QuestionID:  sub.QuestionID,
		Difficulty:  difficulty,
		OptionIndex: sub.OptionIndex,
		ElapsedMs:   sub.ElapsedMs,
		Correct:     res.IsCorrect,
		Answered:    c.answered,
		CorrectSum:  c.correct,
	}
	var completed *Event
	if res.Completed {
		ev := answered
		ev.Kind = EventCompleted
		ev.QuestionID = ""
		completed = &ev
	}
	c.mu.Unlock()

	c.emit(ctx, answered)
	if completed != nil {
		c.emit(ctx, *completed)
	}
	return out, nil
}

// Restart discards the session and returns to Idle. Any call still in
// flight will report ErrStale when it returns.
func (c *Controller) Restart() {
	c.mu.Lock()
	var ev *Event
	if c.state == StateAnswering || c.state == StateAwaitingQuestion {
		ev = &Event{
			Kind:        EventAbandoned,
			SessionID:   c.sessionID,
			SubjectID:   c.subject.ID,
			SubjectName: c.subject.Name,
			Answered:    c.answered,
			CorrectSum:  c.correct,
		}
	}
	c.gen++
	c.busy = false
	c.clearSessionLocked()
	c.subject = Subject{}
	c.state = StateIdle
	c.mu.Unlock()

	if ev != nil && ev.SessionID != "" {
		c.emit(context.Background(), *ev)
	}
}

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Question returns a copy of the current question. ok is false outside
// the Answering state.
func (c *Controller) Question() (q Question, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAnswering {
		return Question{}, false
	}
	return *c.question.clone(), true
}

// Accuracy is round(100*correct/answered), or 0 before the first answer.
func (c *Controller) Accuracy() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Accuracy(c.correct, c.answered)
}

// Snapshot returns a consistent copy of everything a view needs.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:     c.state,
		Subject:   c.subject,
		SessionID: c.sessionID,
		Selected:  c.selected,
		Answered:  c.answered,
		Correct:   c.correct,
		Accuracy:  Accuracy(c.correct, c.answered),
		Busy:      c.busy,
	}
	if c.state == StateAnswering {
		s.Question = c.question.clone()
	}
	if c.last != nil {
		last := *c.last
		s.Last = &last
	}
	return s
}

// Accuracy is round-half-up(100*correct/answered), or 0 when answered is 0.
func Accuracy(correct, answered int) int {
	if answered <= 0 {
		return 0
	}
	return (200*correct + answered) / (2 * answered)
}

func (c *Controller) clearSessionLocked() {
	c.sessionID = ""
	c.question = nil
	c.selected = -1
	c.answered = 0
	c.correct = 0
	c.shownAt = time.Time{}
	c.last = nil
}

func (c *Controller) emit(ctx context.Context, ev Event) {
	if c.observer != nil {
		c.observer.Observe(ctx, ev)
	}
}

func checkStart(op string, res *StartResult) error {
	if res == nil {
		return malformed(op, "empty body")
	}
	if res.SessionID == "" {
		return malformed(op, "missing session id")
	}
	return checkQuestion(op, res.Question)
}

func checkAnswer(op string, res *AnswerResult) error {
	if res == nil {
		return malformed(op, "empty body")
	}
	if res.Completed {
		return nil
	}
	return checkQuestion(op, res.NextQuestion)
}

func checkQuestion(op string, q *Question) error {
	if q == nil {
		return malformed(op, "missing question")
	}
	if q.ID == "" {
		return malformed(op, "question without id")
	}
	if len(q.Options) == 0 {
		return malformed(op, "question %s has no options", q.ID)
	}
	return nil
}
