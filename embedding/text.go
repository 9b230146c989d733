package embedding

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"hotissue/board"
)

const (
	// Per-field character budget. Keeps the embedding cost bounded and the
	// semantic weight on title + analysis.
	fieldBudget = 500
	// How many leading comments contribute to the vector text.
	embedComments = 5

	shortTextPrefix = "theqoo 게시판: "
)

// BuildText concatenates the fields a document is embedded by: full title,
// full analysis, a truncated content prefix and a truncated prefix of the
// first few comments. Texts too short to carry signal get a board prefix so
// the vector still lands near board content.
func BuildText(doc *board.Document) string {
	parts := []string{doc.Title}
	if doc.Analysis != "" {
		parts = append(parts, doc.Analysis)
	}
	if doc.Content != "" {
		parts = append(parts, truncateClean(doc.Content, fieldBudget))
	}
	if len(doc.Comments) > 0 {
		n := len(doc.Comments)
		if n > embedComments {
			n = embedComments
		}
		joined := strings.Join(doc.Comments[:n], " ")
		parts = append(parts, truncateClean(joined, fieldBudget))
	}

	text := strings.Join(parts, " ")
	if len(strings.TrimSpace(text)) < 10 {
		text = shortTextPrefix + text
	}
	return text
}

// truncateClean cuts text to roughly budget characters at a natural
// boundary, falling back to a hard rune cut when the splitter produces
// nothing usable.
func truncateClean(text string, budget int) string {
	if len([]rune(text)) <= budget {
		return text
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(budget),
		textsplitter.WithChunkOverlap(0),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ".", "!", "?", " ", ""}),
	)
	chunks, err := splitter.SplitText(text)
	if err == nil && len(chunks) > 0 && strings.TrimSpace(chunks[0]) != "" {
		return chunks[0]
	}
	return string([]rune(text)[:budget])
}
