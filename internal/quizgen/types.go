package quizgen

import "github.com/abhisek/studyquiz/internal/corpus"

// Question is one generated assessment item, in presentation order.
type Question struct {
	// Question is the prompt shown to the user.
	Question string `json:"question"`

	Type QuestionType `json:"type"`

	// Options holds exactly 4 choices for multiple choice questions and
	// is empty for every other type.
	Options []string `json:"options,omitempty"`

	// CorrectAnswer is the option text for multiple choice, "True" or
	// "False" for true/false, and a brief answer for short answer.
	CorrectAnswer string `json:"correct_answer"`

	// Explanation references the source material.
	Explanation string `json:"explanation"`
}

// QuestionType is the answer format of a Question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeShortAnswer    QuestionType = "short_answer"
)

// Closed reports whether answers to t are graded by exact match.
func (t QuestionType) Closed() bool {
	return t == TypeMultipleChoice || t == TypeTrueFalse
}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	return t.Closed() || t == TypeShortAnswer
}

// Difficulty is the requested difficulty of a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyMixed  Difficulty = "mixed"
)

// TypeMix is the requested question type composition.
type TypeMix string

const (
	MixMCQ         TypeMix = "mcq"
	MixTrueFalse   TypeMix = "true_false"
	MixShortAnswer TypeMix = "short_answer"
	MixMixed       TypeMix = "mixed"
)

// Allows reports whether questions of type t belong in a quiz of mix m.
func (m TypeMix) Allows(t QuestionType) bool {
	switch m {
	case MixMixed:
		return t.Valid()
	case MixMCQ:
		return t == TypeMultipleChoice
	case MixTrueFalse:
		return t == TypeTrueFalse
	case MixShortAnswer:
		return t == TypeShortAnswer
	}
	return false
}

// GenerateInput holds everything needed to generate one quiz.
type GenerateInput struct {
	Corpus corpus.Corpus

	// SelectedTopics restricts the quiz to these topic titles when non-empty.
	SelectedTopics []string

	Config Config
}
