package assessment

// Difficulty is the tier the platform assigned to a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Label returns a display name for the tier.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	return string(d)
}

// Subject is a topic the learner can be tested on.
type Subject struct {
	ID            string
	Name          string
	Description   string
	QuestionCount int
}

// Question is one adaptive-test item as served by the platform. The answer
// key is deliberately absent: correctness is decided by the gateway.
type Question struct {
	ID         string
	Text       string
	Options    []string
	Difficulty Difficulty
	SubjectID  string
}

// clone returns a deep copy so callers cannot mutate controller state.
func (q *Question) clone() *Question {
	if q == nil {
		return nil
	}
	cp := *q
	cp.Options = append([]string(nil), q.Options...)
	return &cp
}

// StartResult is the gateway's answer to starting a test.
type StartResult struct {
	SessionID string
	Question  *Question
}

// AnswerSubmission is the record sent to the gateway for one answer.
type AnswerSubmission struct {
	SessionID   string
	QuestionID  string
	OptionIndex int
	ElapsedMs   int64
}

// AnswerResult is the gateway's verdict on one answer.
type AnswerResult struct {
	IsCorrect    bool
	Completed    bool
	NextQuestion *Question
}
