package evaluate

import (
	"fmt"
	"strings"

	"github.com/pathwise/pathwise/internal/content"
)

const tutorSystemPrompt = "You are a supportive and knowledgeable tutor."

const graderSystemPrompt = `You are a fair and encouraging teacher grading a student's written answer.

Rules:
- Judge the meaning of the answer, not its wording
- Never quote or reveal the reference answer in your feedback
- Keep the tone constructive and never discouraging
- Output ONLY a JSON object, with no markdown fences or commentary`

// buildFeedbackMessage builds the standard-mode tutoring prompt.
func buildFeedbackMessage(in AnswerInput, contextText string, budget int) string {
	var b strings.Builder

	b.WriteString("The user answered a quiz question. Provide immersive, educational feedback.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", in.Question)
	fmt.Fprintf(&b, "User Answer: %s\n", in.UserAnswer)
	fmt.Fprintf(&b, "Correct Answer: %s\n", in.CorrectAnswer)
	fmt.Fprintf(&b, "Context: %s\n\n", content.Truncate(contextText, budget))

	b.WriteString("If the answer is correct, congratulate them and reinforce the concept.\n")
	b.WriteString("If incorrect, explain why it's wrong and guide them to the correct understanding without being discouraging.\n")

	return b.String()
}

// buildGradingMessage builds the descriptive-mode grading prompt.
func buildGradingMessage(in AnswerInput, contextText string, budget int) string {
	var b strings.Builder

	b.WriteString("Grade the student's answer against the reference answer.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", in.Question)
	fmt.Fprintf(&b, "Student Answer: %s\n", in.UserAnswer)
	fmt.Fprintf(&b, "Reference Answer: %s\n", in.CorrectAnswer)
	if contextText != "" {
		fmt.Fprintf(&b, "Context: %s\n", content.Truncate(contextText, budget))
	}

	b.WriteString("\nRespond with JSON exactly like:\n")
	b.WriteString(`{"level_of_correctness": "correct" | "partially correct" | "incorrect", "feedback": "<feedback for the student>"}`)
	b.WriteString("\n")

	return b.String()
}

// buildSpeechMessage builds the prompt sent with the recording.
func buildSpeechMessage(reference string) string {
	var b strings.Builder

	b.WriteString("You are an experienced language teacher. A student's audio is provided as a file attached to this request.\n")
	fmt.Fprintf(&b, "Target text: %q.\n\n", reference)
	b.WriteString("Please listen to the audio and evaluate the student's spoken response with two outputs in JSON exactly like:\n")
	b.WriteString(`{"grade": <number 0-100>, "feedback": "<brief feedback (1-2 paragraphs)>"}`)
	b.WriteString("\n\nGrading criteria (approx):\n")
	b.WriteString(" - Pronunciation accuracy: 40%\n")
	b.WriteString(" - Fluency and organization: 20%\n")
	b.WriteString(" - Accuracy against target text: 40%\n\n")
	b.WriteString("Keep the JSON compact and valid. Only output the JSON.\n")

	return b.String()
}
