package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/vark"
)

type testSession struct {
	ID         string
	UserID     string
	SubjectID  string
	Asked      map[string]bool
	Current    BankQuestion
	Difficulty assessment.Difficulty
	Answered   int
	Correct    int
	Done       bool
}

type testRecord struct {
	Subject     string
	Answered    int
	Correct     int
	CompletedAt time.Time
}

func (r testRecord) score() int { return assessment.Accuracy(r.Correct, r.Answered) }

func userPayload(acc account) map[string]any {
	out := map[string]any{
		"id":         acc.ID,
		"email":      acc.Email,
		"name":       acc.Name,
		"role":       acc.Role,
		"created_at": acc.CreatedAt.UTC().Format(time.RFC3339),
	}
	if acc.Vark != nil {
		out["vark_type"] = acc.Vark.Type
	}
	return out
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req gateway.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	req.ConfirmPassword = req.Password
	if err := gateway.ValidateRegistration(req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	acc, err := s.accounts.register(req.Email, req.Password, string(req.Role), s.now())
	if errors.Is(err, errEmailTaken) {
		fail(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		fail(w, http.StatusInternalServerError, err)
		return
	}
	s.issue(w, http.StatusCreated, acc)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req gateway.LoginRequest
	if err := decode(w, r, &req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	if err := gateway.ValidateLogin(req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	acc, err := s.accounts.login(req.Email, req.Password)
	if err != nil {
		fail(w, http.StatusUnauthorized, err)
		return
	}
	s.issue(w, http.StatusOK, acc)
}

func (s *Server) issue(w http.ResponseWriter, status int, acc account) {
	tok, err := s.tokens.issue(acc, s.now())
	if err != nil {
		fail(w, http.StatusInternalServerError, fmt.Errorf("issue token: %w", err))
		return
	}
	ok(w, status, map[string]any{"user": userPayload(acc), "token": tok})
}

func (s *Server) account(r *http.Request) account {
	acc, _ := s.accounts.get(claimsFrom(r.Context()).UserID)
	return acc
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, userPayload(s.account(r)))
}

func (s *Server) handleVarkQuestions(w http.ResponseWriter, r *http.Request) {
	type option struct {
		ID   string     `json:"id"`
		Text string     `json:"text"`
		Type vark.Style `json:"type"`
	}
	type question struct {
		ID      string   `json:"id"`
		Text    string   `json:"text"`
		Options []option `json:"options"`
	}
	var out []question
	for _, q := range vark.DefaultQuestions() {
		wq := question{ID: q.ID, Text: q.Text}
		for _, o := range q.Options {
			wq.Options = append(wq.Options, option{ID: o.ID, Text: o.Text, Type: o.Style})
		}
		out = append(out, wq)
	}
	ok(w, http.StatusOK, out)
}

func (s *Server) handleVarkSubmit(w http.ResponseWriter, r *http.Request) {
	var d vark.Distribution
	if err := decode(w, r, &d); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	for _, st := range vark.Styles {
		if v := d.Get(st); v < 0 || v > 100 {
			fail(w, http.StatusBadRequest, fmt.Errorf("%s must be between 0 and 100", st))
			return
		}
	}
	if d.Sum() == 0 {
		fail(w, http.StatusBadRequest, vark.ErrEmptyInput)
		return
	}
	res := vark.Result{Distribution: d, Type: d.Dominant()}
	s.accounts.setVark(s.account(r).ID, res)
	ok(w, http.StatusOK, map[string]any{"vark_type": res.Type})
}

func (s *Server) handleVarkResult(w http.ResponseWriter, r *http.Request) {
	acc := s.account(r)
	if acc.Vark == nil {
		ok(w, http.StatusOK, nil)
		return
	}
	ok(w, http.StatusOK, acc.Vark)
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	type subject struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		Description    string `json:"description,omitempty"`
		QuestionsCount int    `json:"questions_count"`
	}
	out := []subject{}
	for _, sub := range s.bank.Subjects() {
		out = append(out, subject{ID: sub.ID, Name: sub.Name, Description: sub.Description, QuestionsCount: sub.QuestionCount})
	}
	ok(w, http.StatusOK, out)
}

func (s *Server) questionPayload(q BankQuestion) map[string]any {
	out := map[string]any{
		"id":         q.ID,
		"text":       q.Text,
		"options":    q.Options,
		"difficulty": q.Difficulty,
		"subject":    q.SubjectID,
	}
	if s.cfg.LegacyPayloads {
		enc, _ := json.Marshal(q.Options)
		out["options"] = string(enc)
		out["correct_answer"] = q.Correct
	}
	return out
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID string `json:"subject_id"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	if req.SubjectID == "" {
		fail(w, http.StatusBadRequest, errors.New("subject_id is required"))
		return
	}
	if _, found := s.bank.Subject(req.SubjectID); !found {
		fail(w, http.StatusNotFound, fmt.Errorf("unknown subject %q", req.SubjectID))
		return
	}

	sess := &testSession{
		ID:         uuid.NewString(),
		UserID:     s.account(r).ID,
		SubjectID:  req.SubjectID,
		Asked:      make(map[string]bool),
		Difficulty: assessment.DifficultyMedium,
	}
	q, found := s.bank.Pick(sess.SubjectID, sess.Difficulty, sess.Asked)
	if !found {
		fail(w, http.StatusConflict, errors.New("this subject has no questions yet"))
		return
	}
	sess.Current = q
	sess.Asked[q.ID] = true

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	ok(w, http.StatusOK, map[string]any{"session_id": sess.ID, "question": s.questionPayload(q)})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID  string `json:"session_id"`
		QuestionID string `json:"question_id"`
		Answer     int    `json:"answer"`
		TimeSpent  int64  `json:"time_spent"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	if req.TimeSpent < 0 {
		fail(w, http.StatusBadRequest, errors.New("time_spent must not be negative"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, found := s.sessions[req.SessionID]
	if !found || sess.UserID != claimsFrom(r.Context()).UserID {
		fail(w, http.StatusNotFound, errors.New("no such test session"))
		return
	}
	if sess.Done {
		fail(w, http.StatusConflict, errors.New("this test is already complete"))
		return
	}
	if req.QuestionID != sess.Current.ID {
		fail(w, http.StatusConflict, errors.New("answer is for a question that is no longer current"))
		return
	}
	if req.Answer < 0 || req.Answer >= len(sess.Current.Options) {
		fail(w, http.StatusBadRequest, errors.New("answer is not one of the options"))
		return
	}

	correct := req.Answer == sess.Current.Correct
	sess.Answered++
	if correct {
		sess.Correct++
	}
	sess.Difficulty = nextDifficulty(sess.Difficulty, correct)

	var next BankQuestion
	more := sess.Answered < s.cfg.TestLength
	if more {
		next, more = s.bank.Pick(sess.SubjectID, sess.Difficulty, sess.Asked)
	}
	if !more {
		sess.Done = true
		sub, _ := s.bank.Subject(sess.SubjectID)
		s.history[sess.UserID] = append(s.history[sess.UserID], testRecord{
			Subject:     sub.Name,
			Answered:    sess.Answered,
			Correct:     sess.Correct,
			CompletedAt: s.now(),
		})
		ok(w, http.StatusOK, map[string]any{"is_correct": correct, "completed": true, "next_question": nil})
		return
	}

	sess.Current = next
	sess.Asked[next.ID] = true
	ok(w, http.StatusOK, map[string]any{
		"is_correct":    correct,
		"completed":     false,
		"next_question": s.questionPayload(next),
	})
}

type summary struct {
	TestsCompleted int
	AverageScore   float64
	CorrectAnswers int
	LastTest       *time.Time
}

// summarize must be called with s.mu held.
func (s *Server) summarize(userID string) summary {
	recs := s.history[userID]
	var sum summary
	total := 0
	for _, rec := range recs {
		sum.TestsCompleted++
		sum.CorrectAnswers += rec.Correct
		total += rec.score()
		if sum.LastTest == nil || rec.CompletedAt.After(*sum.LastTest) {
			t := rec.CompletedAt
			sum.LastTest = &t
		}
	}
	if sum.TestsCompleted > 0 {
		sum.AverageScore = float64(total) / float64(sum.TestsCompleted)
	}
	return sum
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	userID := claimsFrom(r.Context()).UserID

	s.mu.Lock()
	sum := s.summarize(userID)
	recs := append([]testRecord(nil), s.history[userID]...)
	s.mu.Unlock()

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CompletedAt.After(recs[j].CompletedAt) })
	history := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		history = append(history, map[string]any{
			"subject":            rec.Subject,
			"score":              rec.score(),
			"questions_answered": rec.Answered,
			"completed_at":       rec.CompletedAt.UTC().Format(time.RFC3339),
		})
	}
	ok(w, http.StatusOK, map[string]any{
		"tests_completed": sum.TestsCompleted,
		"average_score":   sum.AverageScore,
		"correct_answers": sum.CorrectAnswers,
		"test_history":    history,
	})
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID     string   `json:"subject_id"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correct_answer"`
		Difficulty    string   `json:"difficulty"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	q, err := s.bank.AddQuestion(assessment.Draft{
		SubjectID:    req.SubjectID,
		Text:         req.Text,
		Options:      req.Options,
		CorrectIndex: req.CorrectAnswer,
		Difficulty:   assessment.Difficulty(req.Difficulty),
	})
	if err != nil {
		fail(w, http.StatusBadRequest, err)
		return
	}
	out := s.questionPayload(q)
	out["options"] = q.Options
	out["correct_answer"] = q.Correct
	ok(w, http.StatusCreated, out)
}

func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	students := s.accounts.students()
	sort.Slice(students, func(i, j int) bool { return students[i].Email < students[j].Email })

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(students))
	for _, acc := range students {
		sum := s.summarize(acc.ID)
		row := map[string]any{
			"email":           acc.Email,
			"name":            acc.Name,
			"tests_completed": sum.TestsCompleted,
			"average_score":   sum.AverageScore,
		}
		if acc.Vark != nil {
			row["vark_type"] = acc.Vark.Type
		}
		if sum.LastTest != nil {
			row["last_test_date"] = sum.LastTest.UTC().Format(time.RFC3339)
		}
		out = append(out, row)
	}
	ok(w, http.StatusOK, out)
}
