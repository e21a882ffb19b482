package vark

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQuestions is returned when a questionnaire has no items.
	ErrNoQuestions = errors.New("vark: questionnaire has no questions")

	// ErrNoSelection is returned by Next when the current item has no pick.
	ErrNoSelection = errors.New("vark: no option selected")

	// ErrUnknownOption is returned when selecting an option id the current
	// question does not have.
	ErrUnknownOption = errors.New("vark: unknown option")

	// ErrBadOptionID is returned for an option whose id is empty or repeats
	// another option of the same question.
	ErrBadOptionID = errors.New("vark: option id missing or duplicated")

	// ErrFinished is returned when the questionnaire is already complete.
	ErrFinished = errors.New("vark: questionnaire already finished")
)

// Option is one answer choice of a questionnaire item. Each option maps
// to exactly one style.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Style Style  `json:"type"`
}

// Question is one questionnaire item.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Questionnaire walks a learner through a fixed list of questions.
// Answers are keyed by question id, so going back and picking a different
// option replaces the earlier answer rather than adding another one.
type Questionnaire struct {
	questions []Question
	index     int
	picks     map[string]string // question id -> option id
	finished  bool
}

// NewQuestionnaire validates the questions and returns a runner positioned
// on the first one.
func NewQuestionnaire(questions []Question) (*Questionnaire, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: missing id", i+1)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("question %d: duplicate id %q", i+1, q.ID)
		}
		seen[q.ID] = true
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %q: no options", q.ID)
		}
		ids := make(map[string]bool, len(q.Options))
		for j, o := range q.Options {
			if o.ID == "" || ids[o.ID] {
				return nil, fmt.Errorf("question %q option %d: %w", q.ID, j+1, ErrBadOptionID)
			}
			ids[o.ID] = true
			if !o.Style.Valid() {
				return nil, fmt.Errorf("question %q option %q: %w: %q", q.ID, o.ID, ErrUnknownStyle, string(o.Style))
			}
		}
	}
	qs := make([]Question, len(questions))
	copy(qs, questions)
	return &Questionnaire{
		questions: qs,
		picks:     make(map[string]string, len(qs)),
	}, nil
}

// Len returns the number of questions.
func (q *Questionnaire) Len() int {
	return len(q.questions)
}

// Index returns the zero-based position of the current question.
func (q *Questionnaire) Index() int {
	return q.index
}

// Current returns the question being answered.
func (q *Questionnaire) Current() Question {
	return q.questions[q.index]
}

// IsLast reports whether the current question is the final one.
func (q *Questionnaire) IsLast() bool {
	return q.index == len(q.questions)-1
}

// Finished reports whether every question has been answered and Next has
// moved past the last one.
func (q *Questionnaire) Finished() bool {
	return q.finished
}

// Progress returns the fraction (0.0-1.0) of the questionnaire reached,
// counting the current question.
func (q *Questionnaire) Progress() float64 {
	return float64(q.index+1) / float64(len(q.questions))
}

// Select records the learner's pick for the current question without
// advancing.
func (q *Questionnaire) Select(optionID string) error {
	if q.finished {
		return ErrFinished
	}
	cur := q.Current()
	for _, o := range cur.Options {
		if o.ID == optionID {
			q.picks[cur.ID] = optionID
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownOption, optionID)
}

// SelectIndex is Select addressed by option position.
func (q *Questionnaire) SelectIndex(i int) error {
	cur := q.Current()
	if i < 0 || i >= len(cur.Options) {
		return fmt.Errorf("%w: index %d", ErrUnknownOption, i)
	}
	return q.Select(cur.Options[i].ID)
}

// Selected returns the option id picked for the current question, or "".
func (q *Questionnaire) Selected() string {
	return q.picks[q.Current().ID]
}

// SelectedIndex returns the position of the picked option, or -1.
func (q *Questionnaire) SelectedIndex() int {
	id := q.Selected()
	for i, o := range q.Current().Options {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Next commits the current pick and moves forward. It returns true once
// the last question has been committed.
func (q *Questionnaire) Next() (bool, error) {
	if q.finished {
		return true, ErrFinished
	}
	if q.Selected() == "" {
		return false, ErrNoSelection
	}
	if q.IsLast() {
		q.finished = true
		return true, nil
	}
	q.index++
	return false, nil
}

// Back moves to the previous question, keeping its earlier pick. It
// returns false when already on the first question.
func (q *Questionnaire) Back() bool {
	if q.finished || q.index == 0 {
		return false
	}
	q.index--
	return true
}

// Answers returns the style of every committed pick in question order.
func (q *Questionnaire) Answers() []Style {
	out := make([]Style, 0, len(q.questions))
	for _, question := range q.questions {
		id, ok := q.picks[question.ID]
		if !ok {
			continue
		}
		for _, o := range question.Options {
			if o.ID == id {
				out = append(out, o.Style)
				break
			}
		}
	}
	return out
}

// Result aggregates the answers. It requires the questionnaire to be
// finished.
func (q *Questionnaire) Result() (Result, error) {
	if !q.finished {
		return Result{}, fmt.Errorf("vark: questionnaire not finished (%d/%d)", q.index+1, len(q.questions))
	}
	d, dom, err := Aggregate(q.Answers())
	if err != nil {
		return Result{}, err
	}
	return Result{Distribution: d, Type: dom}, nil
}
