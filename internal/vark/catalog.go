package vark

// DefaultQuestions is the built-in questionnaire used when the platform
// cannot supply one.
func DefaultQuestions() []Question {
	return []Question{
		{
			ID:   "1",
			Text: "You need to learn a new app. You:",
			Options: []Option{
				{ID: "a", Text: "Watch a demo video", Style: Visual},
				{ID: "b", Text: "Have a friend explain it to you", Style: Auditory},
				{ID: "c", Text: "Read the manual", Style: ReadWrite},
				{ID: "d", Text: "Start using it and experiment", Style: Kinesthetic},
			},
		},
		{
			ID:   "2",
			Text: "You remember information best when you:",
			Options: []Option{
				{ID: "a", Text: "See diagrams and charts", Style: Visual},
				{ID: "b", Text: "Listen to a lecture or conversation", Style: Auditory},
				{ID: "c", Text: "Take notes", Style: ReadWrite},
				{ID: "d", Text: "Practise or apply it", Style: Kinesthetic},
			},
		},
		{
			ID:   "3",
			Text: "You are giving directions to a visitor. You:",
			Options: []Option{
				{ID: "a", Text: "Draw a map", Style: Visual},
				{ID: "b", Text: "Tell them the way", Style: Auditory},
				{ID: "c", Text: "Write the directions down", Style: ReadWrite},
				{ID: "d", Text: "Walk there with them", Style: Kinesthetic},
			},
		},
		{
			ID:   "4",
			Text: "When preparing for an exam, you prefer to:",
			Options: []Option{
				{ID: "a", Text: "Colour-code and sketch the key ideas", Style: Visual},
				{ID: "b", Text: "Discuss the topics with others", Style: Auditory},
				{ID: "c", Text: "Rewrite your notes and lists", Style: ReadWrite},
				{ID: "d", Text: "Solve practice problems", Style: Kinesthetic},
			},
		},
		{
			ID:   "5",
			Text: "You are choosing a new phone. What helps most?",
			Options: []Option{
				{ID: "a", Text: "Comparison charts of the features", Style: Visual},
				{ID: "b", Text: "A salesperson talking you through it", Style: Auditory},
				{ID: "c", Text: "Written reviews and specifications", Style: ReadWrite},
				{ID: "d", Text: "Trying the phones in the shop", Style: Kinesthetic},
			},
		},
		{
			ID:   "6",
			Text: "A teacher's lesson is easiest to follow when it has:",
			Options: []Option{
				{ID: "a", Text: "Slides, pictures and diagrams", Style: Visual},
				{ID: "b", Text: "Questions, discussion and stories", Style: Auditory},
				{ID: "c", Text: "Handouts and reading material", Style: ReadWrite},
				{ID: "d", Text: "Demonstrations and hands-on tasks", Style: Kinesthetic},
			},
		},
	}
}

// Description explains how a learner with style s takes in information.
func Description(s Style) string {
	switch s {
	case Visual:
		return "You absorb information best through images, diagrams and visual material."
	case Auditory:
		return "You absorb information best through listening, discussion and audio material."
	case ReadWrite:
		return "You absorb information best through reading and writing, notes and text."
	case Kinesthetic:
		return "You absorb information best through practice, experiments and physical activity."
	}
	return ""
}

// Recommendations returns study suggestions for a learner whose dominant
// style is s.
func Recommendations(s Style) []string {
	switch s {
	case Visual:
		return []string{
			"Turn notes into mind maps and flowcharts",
			"Highlight with a consistent colour scheme",
			"Watch worked examples and video explanations",
		}
	case Auditory:
		return []string{
			"Explain topics out loud or to a study partner",
			"Record short summaries and listen back",
			"Join discussion groups and ask questions",
		}
	case ReadWrite:
		return []string{
			"Rewrite key ideas in your own words",
			"Keep lists, glossaries and summaries",
			"Read the textbook section before each lesson",
		}
	case Kinesthetic:
		return []string{
			"Learn through exercises and real examples",
			"Build, draw or act out the concept",
			"Study in short active sessions with breaks",
		}
	}
	return nil
}
