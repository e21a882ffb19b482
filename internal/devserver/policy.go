package devserver

import "github.com/abhisek/stylequiz/internal/assessment"

var tiers = [...]assessment.Difficulty{assessment.DifficultyEasy, assessment.DifficultyMedium, assessment.DifficultyHard}

func level(d assessment.Difficulty) int {
	for i, t := range tiers {
		if t == d {
			return i
		}
	}
	return 1
}

// nextDifficulty is the stand-in adaptive policy: step up a tier after a
// correct answer and down after a wrong one.
func nextDifficulty(cur assessment.Difficulty, correct bool) assessment.Difficulty {
	l := level(cur)
	if correct {
		l++
	} else {
		l--
	}
	l = max(0, min(l, len(tiers)-1))
	return tiers[l]
}
