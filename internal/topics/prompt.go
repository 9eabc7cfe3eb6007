package topics

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyquiz/internal/corpus"
)

const continuationMarker = "... [content continues]"

const systemPrompt = `You are an expert educational content analyzer. Analyze the provided study material and identify its main subjects, chapters, and topics.

Rules:
- Identify 5-15 main topics, chapters, or subjects from the document.
- For each topic, list 3-8 specific subtopics that actually appear in the text.
- Use the document's own headings, chapter titles, and subheadings when possible.
- Topics should be distinct sections; cover every major section.
- Keep titles concise (at most 60 characters).
- Keep descriptions clear and informative (at most 120 characters).
- Use ids of the form "topic-1", "topic-2", and so on.
- Return only JSON of the form {"topics": [{"id", "title", "description", "subtopics"}]}.`

// buildUserMessage embeds c, truncated to budget characters.
func buildUserMessage(c corpus.Corpus, budget int) string {
	var b strings.Builder
	b.WriteString("Analyze this content and extract the complete topic structure:\n\n")
	if budget > 0 {
		b.WriteString(corpus.Truncate(c, budget, continuationMarker))
	} else {
		b.WriteString(c.String())
	}
	fmt.Fprintf(&b, "\n\n(%d characters of source material)", c.Len())
	return b.String()
}
