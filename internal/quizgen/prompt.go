package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a quiz generation expert. Generate educational quizzes STRICTLY based on the provided content.

CRITICAL RULES:
- Only use information from the provided text.
- Do NOT add external knowledge or facts.
- Questions must be answerable from the text alone.
- Explanations must reference specific parts of the provided content.
- For multiple_choice questions, give exactly 4 distinct options; correct_answer must be the exact text of one option.
- For true_false questions, use "True" or "False" as correct_answer and leave options empty.
- For short_answer questions, give a brief correct answer taken from the text and leave options empty.

Return ONLY valid JSON in this exact format:
{"questions": [{"question": "...", "type": "multiple_choice", "options": ["...", "...", "...", "..."], "correct_answer": "...", "explanation": "..."}]}`

var typeLabels = map[QuestionType]string{
	TypeMultipleChoice: "Multiple choice",
	TypeTrueFalse:      "True/False",
	TypeShortAnswer:    "Short answer",
}

var difficultyGuidance = map[Difficulty]string{
	DifficultyEasy:   "easy: recall of facts stated directly in the text",
	DifficultyMedium: "medium: understanding and connecting ideas within a section",
	DifficultyHard:   "hard: applying and comparing concepts across sections",
	DifficultyMixed:  "mixed: a blend of easy, medium, and hard questions",
}

// buildUserMessage constructs the user message from the corpus, topic
// scope and configuration.
func buildUserMessage(input GenerateInput) string {
	cfg := input.Config
	var b strings.Builder

	fmt.Fprintf(&b, "Generate exactly %d questions.\n", cfg.NumQuestions)
	fmt.Fprintf(&b, "Difficulty: %s\n", difficultyGuidance[cfg.Difficulty])

	b.WriteString("Question types:\n")
	b.WriteString(buildDistribution(cfg.Distribution()))

	b.WriteString("\n\nGenerate a quiz from this content:\n\n")
	b.WriteString(input.Corpus.String())

	if len(input.SelectedTopics) > 0 {
		b.WriteString("\n\nFocus ONLY on these specific topics from the content: ")
		b.WriteString(strings.Join(input.SelectedTopics, ", "))
	}
	return b.String()
}

// buildDistribution lists target counts in a fixed type order, skipping
// zero counts.
func buildDistribution(dist map[QuestionType]int) string {
	var b strings.Builder
	for _, t := range []QuestionType{TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer} {
		if n := dist[t]; n > 0 {
			fmt.Fprintf(&b, "- %s (%s): %d\n", typeLabels[t], t, n)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
