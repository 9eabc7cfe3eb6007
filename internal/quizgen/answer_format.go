package quizgen

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// AnswerFormatValidator checks that the answer fits the question type and
// canonicalizes it: a multiple choice answer becomes the exact option
// text, a true/false answer becomes "True" or "False".
type AnswerFormatValidator struct{}

func (v *AnswerFormatValidator) Name() string { return "answer-format" }

func (v *AnswerFormatValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	switch q.Type {
	case TypeMultipleChoice:
		return v.multipleChoice(q)
	case TypeTrueFalse:
		q.Options = nil
		switch strings.ToLower(q.CorrectAnswer) {
		case "true":
			q.CorrectAnswer = "True"
		case "false":
			q.CorrectAnswer = "False"
		default:
			return v.fail(fmt.Sprintf("true/false answer must be True or False, got %q", q.CorrectAnswer))
		}
	case TypeShortAnswer:
		q.Options = nil
	}
	return nil
}

func (v *AnswerFormatValidator) multipleChoice(q *Question) *ValidationError {
	if len(q.Options) != 4 {
		return v.fail(fmt.Sprintf("multiple choice must have exactly 4 options, got %d", len(q.Options)))
	}
	seen := make(map[string]bool, 4)
	for i, o := range q.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			return v.fail(fmt.Sprintf("option %d is empty", i+1))
		}
		key := strings.ToLower(o)
		if seen[key] {
			return v.fail(fmt.Sprintf("duplicate option %q", o))
		}
		seen[key] = true
		q.Options[i] = o
	}

	if idx := matchOption(q.CorrectAnswer, q.Options); idx >= 0 {
		q.CorrectAnswer = q.Options[idx]
		return nil
	}
	return v.fail(fmt.Sprintf("correct_answer %q not found in options", q.CorrectAnswer))
}

func (v *AnswerFormatValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg}
}

// matchOption finds answer among options by text. A lone letter A-D is
// read as an option label only when no option is itself a single
// character, so an answer missing from a set like 2/3/5/6 or a/b/c/d is
// never mapped onto a different option. It returns -1 when nothing matches.
func matchOption(answer string, options []string) int {
	answer = strings.TrimSpace(answer)
	for i, o := range options {
		if strings.EqualFold(o, answer) {
			return i
		}
	}
	if len(answer) != 1 {
		return -1
	}
	for _, o := range options {
		if utf8.RuneCountInString(o) == 1 {
			return -1
		}
	}
	c := strings.ToUpper(answer)[0]
	if c >= 'A' && int(c-'A') < len(options) {
		return int(c - 'A')
	}
	return -1
}
