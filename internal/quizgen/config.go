package quizgen

import (
	"fmt"
	"math"
)

// Question count bounds for a quiz.
const (
	MinQuestions = 3
	MaxQuestions = 20
)

// Config is the user's quiz configuration. It is fixed once generation starts.
type Config struct {
	NumQuestions  int        `json:"numQuestions"`
	Difficulty    Difficulty `json:"difficulty"`
	QuestionTypes TypeMix    `json:"questionTypes"`
}

// DefaultConfig returns the configuration preselected for new quizzes.
func DefaultConfig() Config {
	return Config{
		NumQuestions:  7,
		Difficulty:    DifficultyMixed,
		QuestionTypes: MixMixed,
	}
}

// Validate rejects configurations before any remote call is made.
func (c Config) Validate() error {
	if c.NumQuestions < MinQuestions || c.NumQuestions > MaxQuestions {
		return fmt.Errorf("numQuestions must be between %d and %d, got %d", MinQuestions, MaxQuestions, c.NumQuestions)
	}
	switch c.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyMixed:
	default:
		return fmt.Errorf("difficulty must be one of easy, medium, hard, mixed; got %q", c.Difficulty)
	}
	switch c.QuestionTypes {
	case MixMCQ, MixTrueFalse, MixShortAnswer, MixMixed:
	default:
		return fmt.Errorf("questionTypes must be one of mcq, true_false, short_answer, mixed; got %q", c.QuestionTypes)
	}
	return nil
}

// Distribution returns the target number of questions per type. The
// counts guide the prompt; the returned set may differ.
func (c Config) Distribution() map[QuestionType]int {
	n := c.NumQuestions
	switch c.QuestionTypes {
	case MixMCQ:
		return map[QuestionType]int{TypeMultipleChoice: n}
	case MixTrueFalse:
		return map[QuestionType]int{TypeTrueFalse: n}
	case MixShortAnswer:
		return map[QuestionType]int{TypeShortAnswer: n}
	}
	return map[QuestionType]int{
		TypeMultipleChoice: int(math.Ceil(0.5 * float64(n))),
		TypeTrueFalse:      int(math.Floor(0.3 * float64(n))),
		TypeShortAnswer:    int(math.Floor(0.2 * float64(n))),
	}
}

// GeneratorConfig controls the behavior of the LLMGenerator.
type GeneratorConfig struct {
	// Validators is the ordered list run on every generated question.
	// The first failure discards the question.
	Validators []Validator

	MaxTokens   int
	Temperature float64
}

// DefaultGeneratorConfig returns the standard validator chain and
// recommended defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Validators: []Validator{
			&StructuralValidator{},
			&TypeFilterValidator{},
			&AnswerFormatValidator{},
		},
		MaxTokens:   8192,
		Temperature: 0.7,
	}
}
