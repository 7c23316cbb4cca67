package quiz

import (
	"fmt"
	"strings"

	"github.com/pathwise/pathwise/internal/content"
)

const systemPrompt = `You are an educational AI that creates accurate and relevant quizzes. Output ONLY JSON.

Rules:
- Every question must be answerable from the supplied text alone
- Each question has exactly 4 options and exactly one correct option
- correct_answer must repeat the text of the correct option verbatim
- Keep explanations to one or two sentences
- Do not wrap the JSON in markdown fences or add commentary`

// outputShape is the example object the prompt asks the model to copy.
const outputShape = `{
  "questions": [
    {
      "id": 1,
      "question": "Question text here",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answer": "Option A",
      "explanation": "Why this is correct"
    }
  ]
}`

// buildUserMessage constructs the user message for quiz generation. The
// context blob is cut to budget characters.
func buildUserMessage(title, contextText string, in GenerateInput, budget int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a %s level quiz with %d multiple-choice questions based on the following text.\n\n",
		in.Difficulty, in.NumQuestions)

	if title != "" {
		fmt.Fprintf(&b, "Topic: %s\n\n", title)
	}

	b.WriteString("Text content:\n")
	b.WriteString(content.Truncate(contextText, budget))
	b.WriteString("\n\n")

	b.WriteString("Return the response ONLY as a valid JSON object with this structure:\n")
	b.WriteString(outputShape)
	b.WriteString("\n")

	return b.String()
}
