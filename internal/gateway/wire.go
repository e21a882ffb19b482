package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/stylequiz/internal/assessment"
)

// flexID accepts ids sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type wireSubject struct {
	ID             flexID `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	QuestionsCount int    `json:"questions_count"`
}

func (w wireSubject) toSubject() assessment.Subject {
	return assessment.Subject{
		ID:            string(w.ID),
		Name:          w.Name,
		Description:   w.Description,
		QuestionCount: w.QuestionsCount,
	}
}

// wireQuestion omits correct_answer on purpose: grading belongs to the
// platform, so the key is never decoded.
type wireQuestion struct {
	ID         flexID          `json:"id"`
	Text       string          `json:"text"`
	Options    json.RawMessage `json:"options"`
	Difficulty string          `json:"difficulty"`
	Subject    flexID          `json:"subject"`
}

func (w *wireQuestion) toQuestion() (*assessment.Question, error) {
	if w == nil {
		return nil, nil
	}
	opts, err := ParseOptions(w.Options)
	if err != nil {
		return nil, fmt.Errorf("%w: question %s: %v", ErrMalformed, w.ID, err)
	}
	return &assessment.Question{
		ID:         string(w.ID),
		Text:       w.Text,
		Options:    opts,
		Difficulty: assessment.Difficulty(strings.ToLower(strings.TrimSpace(w.Difficulty))),
		SubjectID:  string(w.Subject),
	}, nil
}

type wireStart struct {
	SessionID flexID        `json:"session_id"`
	Question  *wireQuestion `json:"question"`
}

type wireAnswerRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Answer     int    `json:"answer"`
	TimeSpent  int64  `json:"time_spent"`
}

type wireAnswer struct {
	IsCorrect    bool          `json:"is_correct"`
	Completed    bool          `json:"completed"`
	NextQuestion *wireQuestion `json:"next_question"`
}
