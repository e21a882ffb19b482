package devserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/abhisek/stylequiz/internal/assessment"
)

// BankSubject is a subject in the question bank.
type BankSubject struct {
	ID          string
	Name        string
	Description string
}

// BankQuestion is a question with its answer key.
type BankQuestion struct {
	ID         string
	SubjectID  string
	Text       string
	Options    []string
	Correct    int
	Difficulty assessment.Difficulty
}

// Bank holds subjects and questions. It is safe for concurrent use.
type Bank struct {
	mu        sync.RWMutex
	subjects  []BankSubject
	questions map[string][]BankQuestion // by subject id
	nextID    int
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{questions: make(map[string][]BankQuestion)}
}

// AddSubject registers a subject. Re-adding an id replaces its metadata.
func (b *Bank) AddSubject(s BankSubject) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.subjects {
		if b.subjects[i].ID == s.ID {
			b.subjects[i] = s
			return
		}
	}
	b.subjects = append(b.subjects, s)
}

// AddQuestion validates d and files it under its subject.
func (b *Bank) AddQuestion(d assessment.Draft) (BankQuestion, error) {
	if err := assessment.ValidateDraft(d); err != nil {
		return BankQuestion{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasSubject(d.SubjectID) {
		return BankQuestion{}, &assessment.ValidationError{Field: "subject", Message: fmt.Sprintf("unknown subject %q", d.SubjectID)}
	}
	b.nextID++
	q := BankQuestion{
		ID:         fmt.Sprintf("q%d", b.nextID),
		SubjectID:  d.SubjectID,
		Text:       strings.TrimSpace(d.Text),
		Options:    trimAll(d.Options),
		Correct:    d.CorrectIndex,
		Difficulty: d.Difficulty,
	}
	b.questions[d.SubjectID] = append(b.questions[d.SubjectID], q)
	return q, nil
}

func (b *Bank) hasSubject(id string) bool {
	for _, s := range b.subjects {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Subjects lists subjects with their question counts, in insertion order.
func (b *Bank) Subjects() []assessment.Subject {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]assessment.Subject, 0, len(b.subjects))
	for _, s := range b.subjects {
		out = append(out, assessment.Subject{
			ID:            s.ID,
			Name:          s.Name,
			Description:   s.Description,
			QuestionCount: len(b.questions[s.ID]),
		})
	}
	return out
}

// Subject looks up one subject.
func (b *Bank) Subject(id string) (BankSubject, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subjects {
		if s.ID == id {
			return s, true
		}
	}
	return BankSubject{}, false
}

// Question looks up a question by subject and id.
func (b *Bank) Question(subjectID, id string) (BankQuestion, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, q := range b.questions[subjectID] {
		if q.ID == id {
			return q, true
		}
	}
	return BankQuestion{}, false
}

// Pick returns an unasked question of subjectID, preferring difficulty want
// and then the nearest tier. Within a tier the lowest id wins, which keeps
// runs reproducible.
func (b *Bank) Pick(subjectID string, want assessment.Difficulty, asked map[string]bool) (BankQuestion, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var pool []BankQuestion
	for _, q := range b.questions[subjectID] {
		if !asked[q.ID] {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return BankQuestion{}, false
	}
	target := level(want)
	sort.SliceStable(pool, func(i, j int) bool {
		di, dj := abs(level(pool[i].Difficulty)-target), abs(level(pool[j].Difficulty)-target)
		if di != dj {
			return di < dj
		}
		return pool[i].ID < pool[j].ID
	})
	return pool[0], true
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// DefaultBank is a small built-in bank for local play.
func DefaultBank() *Bank {
	b := NewBank()
	b.AddSubject(BankSubject{ID: "math", Name: "Mathematics", Description: "Arithmetic, fractions and algebra"})
	b.AddSubject(BankSubject{ID: "science", Name: "Science", Description: "Physics, chemistry and biology basics"})
	b.AddSubject(BankSubject{ID: "english", Name: "English", Description: "Grammar and vocabulary"})

	for _, d := range []assessment.Draft{
		{SubjectID: "math", Text: "What is 7 + 5?", Options: []string{"10", "11", "12", "13"}, CorrectIndex: 2, Difficulty: assessment.DifficultyEasy},
		{SubjectID: "math", Text: "What is 9 × 6?", Options: []string{"54", "56", "48", "63"}, CorrectIndex: 0, Difficulty: assessment.DifficultyEasy},
		{SubjectID: "math", Text: "What is 3/4 as a decimal?", Options: []string{"0.34", "0.75", "0.43", "1.33"}, CorrectIndex: 1, Difficulty: assessment.DifficultyMedium},
		{SubjectID: "math", Text: "Solve for x: 2x + 3 = 11", Options: []string{"3", "4", "5", "7"}, CorrectIndex: 1, Difficulty: assessment.DifficultyMedium},
		{SubjectID: "math", Text: "What is 15% of 240?", Options: []string{"24", "30", "36", "40"}, CorrectIndex: 2, Difficulty: assessment.DifficultyMedium},
		{SubjectID: "math", Text: "Solve for x: x² - 5x + 6 = 0 (smaller root)", Options: []string{"1", "2", "3", "6"}, CorrectIndex: 1, Difficulty: assessment.DifficultyHard},
		{SubjectID: "math", Text: "What is the derivative of x³?", Options: []string{"x²", "3x", "3x²", "x³/3"}, CorrectIndex: 2, Difficulty: assessment.DifficultyHard},

		{SubjectID: "science", Text: "What gas do plants absorb from the air?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Helium"}, CorrectIndex: 2, Difficulty: assessment.DifficultyEasy},
		{SubjectID: "science", Text: "What is the boiling point of water at sea level?", Options: []string{"90 °C", "100 °C", "110 °C", "120 °C"}, CorrectIndex: 1, Difficulty: assessment.DifficultyEasy},
		{SubjectID: "science", Text: "What is the chemical symbol for sodium?", Options: []string{"S", "So", "Na", "Sd"}, CorrectIndex: 2, Difficulty: assessment.DifficultyMedium},
		{SubjectID: "science", Text: "Which organelle produces most of a cell's energy?", Options: []string{"Nucleus", "Ribosome", "Mitochondrion", "Golgi body"}, CorrectIndex: 2, Difficulty: assessment.DifficultyMedium},
		{SubjectID: "science", Text: "What is the SI unit of force?", Options: []string{"Joule", "Newton", "Watt", "Pascal"}, CorrectIndex: 1, Difficulty: assessment.DifficultyHard},
		{SubjectID: "science", Text: "What is the pH of a neutral solution at 25 °C?", Options: []string{"0", "5", "7", "14"}, CorrectIndex: 2, Difficulty: assessment.DifficultyHard},

		{SubjectID: "english", Text: "Which word is a noun?", Options: []string{"Run", "Happy", "Table", "Quickly"}, CorrectIndex: 2, Difficulty: assessment.DifficultyEasy},
		{SubjectID: "english", Text: "What is the plural of 'mouse'?", Options: []string{"Mouses", "Mice", "Meese", "Mouse"}, CorrectIndex: 1, Difficulty: assessment.DifficultyEasy},
		{SubjectID: "english", Text: "Pick the correct form: 'She ___ to school yesterday.'", Options: []string{"go", "goes", "went", "gone"}, CorrectIndex: 2, Difficulty: assessment.DifficultyMedium},
		{SubjectID: "english", Text: "Which is a synonym of 'rapid'?", Options: []string{"Slow", "Quick", "Calm", "Late"}, CorrectIndex: 1, Difficulty: assessment.DifficultyMedium},
		{SubjectID: "english", Text: "Identify the figure of speech: 'The wind whispered.'", Options: []string{"Simile", "Metaphor", "Personification", "Hyperbole"}, CorrectIndex: 2, Difficulty: assessment.DifficultyHard},
		{SubjectID: "english", Text: "Which sentence uses the subjunctive mood?", Options: []string{"I was there.", "If I were you, I'd go.", "I will go.", "I am going."}, CorrectIndex: 1, Difficulty: assessment.DifficultyHard},
	} {
		if _, err := b.AddQuestion(d); err != nil {
			panic(fmt.Sprintf("devserver: default bank: %v", err))
		}
	}
	return b
}
