package evaluate

import "github.com/pathwise/pathwise/internal/llm"

// DescriptiveSchema defines the grading response for free-text answers.
// The level is normalized after decoding, so the schema does not pin its
// spelling.
var DescriptiveSchema = &llm.Schema{
	Name:        "descriptive-evaluation",
	Description: "A correctness level and feedback for a free-text answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"level_of_correctness": map[string]any{
				"type":        "string",
				"description": "One of: correct, partially correct, incorrect",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Encouraging feedback that does not reveal the reference answer",
			},
		},
		"required": []any{"level_of_correctness", "feedback"},
	},
}

// SpeechSchema defines the grading response for a spoken answer. Both
// fields are optional on the wire; missing values get defaults.
var SpeechSchema = &llm.Schema{
	Name:        "speech-evaluation",
	Description: "A 0-100 grade and feedback for a spoken answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"grade": map[string]any{
				"type":        "number",
				"description": "Overall grade from 0 to 100",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Brief feedback, one or two paragraphs",
			},
		},
	},
}
