package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathwise/pathwise/internal/evaluate"
	"github.com/pathwise/pathwise/internal/ui/theme"
)

var answerCmd = &cobra.Command{
	Use:   "answer <content-id>",
	Short: "Grade an answer to a question about a content item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question, _ := cmd.Flags().GetString("question")
		answer, _ := cmd.Flags().GetString("answer")
		correct, _ := cmd.Flags().GetString("correct")
		mode, _ := cmd.Flags().GetString("mode")
		provider, _ := cmd.Flags().GetString("provider")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		res, err := a.Evaluator.Evaluate(cmd.Context(), evaluate.AnswerInput{
			Question:      question,
			UserAnswer:    answer,
			CorrectAnswer: correct,
			ContentID:     args[0],
			Mode:          evaluate.Mode(mode),
			Provider:      provider,
		})
		if err != nil {
			return explain(err)
		}

		if asJSON {
			return printJSON(os.Stdout, res)
		}
		fmt.Println(verdict(res))
		fmt.Println()
		fmt.Println(res.Feedback)
		if res.ParseError {
			fmt.Println(theme.Hint.Render("(the grader's reply was not valid JSON; shown as-is)"))
		}
		return nil
	},
}

func verdict(res *evaluate.Result) string {
	switch {
	case res.IsCorrect:
		return theme.Correct.Render("Correct")
	case res.Level == evaluate.LevelPartial:
		return theme.Partial.Render("Partially correct")
	case res.Level == evaluate.LevelUnknown:
		return theme.Hint.Render("Ungraded")
	default:
		return theme.Incorrect.Render("Incorrect")
	}
}

func init() {
	answerCmd.Flags().String("question", "", "Question text (required)")
	answerCmd.Flags().String("answer", "", "Learner's answer (required)")
	answerCmd.Flags().String("correct", "", "Reference answer (required)")
	answerCmd.Flags().String("mode", string(evaluate.ModeStandard), "Grading mode: standard or descriptive")
	answerCmd.Flags().String("provider", "", "Model provider: ollama, gemini, anthropic, openai or mock")
	answerCmd.Flags().Bool("json", false, "Print the result as JSON")
}
