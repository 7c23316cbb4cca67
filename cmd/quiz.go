package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathwise/pathwise/internal/quiz"
	"github.com/pathwise/pathwise/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <content-id>",
	Short: "Generate a multiple-choice quiz for a content item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("questions")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		provider, _ := cmd.Flags().GetString("provider")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		q, err := a.Quiz.Generate(cmd.Context(), quiz.GenerateInput{
			ContentID:    args[0],
			NumQuestions: n,
			Difficulty:   difficulty,
			Provider:     provider,
		})
		if err != nil {
			return explain(err)
		}

		if asJSON {
			return printJSON(os.Stdout, q)
		}
		for _, qu := range q.Questions {
			fmt.Println(theme.Title.Render(fmt.Sprintf("%d. %s", qu.ID, qu.Question)))
			for i, opt := range qu.Options {
				line := fmt.Sprintf("   %c) %s", 'a'+i, opt)
				if opt == qu.CorrectAnswer {
					line = theme.Correct.Render(line)
				}
				fmt.Println(line)
			}
			fmt.Println(theme.Hint.Render("   " + qu.Explanation))
			fmt.Println()
		}
		return nil
	},
}

func init() {
	quizCmd.Flags().IntP("questions", "n", 5, "Number of questions")
	quizCmd.Flags().String("difficulty", "intermediate", "Quiz difficulty")
	quizCmd.Flags().String("provider", "", "Model provider: ollama, gemini, anthropic, openai or mock")
	quizCmd.Flags().Bool("json", false, "Print the quiz as JSON")
}
