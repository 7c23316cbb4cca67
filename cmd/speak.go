package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pathwise/pathwise/internal/evaluate"
	"github.com/pathwise/pathwise/internal/ui/theme"
)

var speakCmd = &cobra.Command{
	Use:   "speak <content-id> <audio-file>",
	Short: "Grade a spoken recording against a content item's text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reference, _ := cmd.Flags().GetString("reference")
		provider, _ := cmd.Flags().GetString("provider")
		asJSON, _ := cmd.Flags().GetBool("json")

		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("open recording: %w", err)
		}
		defer f.Close()

		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		res, err := a.Evaluator.EvaluateSpeech(cmd.Context(), evaluate.SpeechInput{
			Audio:     f,
			Filename:  filepath.Base(args[1]),
			Reference: reference,
			ContentID: args[0],
			Provider:  provider,
		})
		if err != nil {
			return explain(err)
		}

		if asJSON {
			return printJSON(os.Stdout, res)
		}
		fmt.Println(theme.Title.Render(fmt.Sprintf("Grade: %.0f / 100", res.Grade)))
		fmt.Println()
		fmt.Println(res.Feedback)
		if res.ParseError {
			fmt.Println(theme.Hint.Render("(the grader's reply was not valid JSON; shown as-is)"))
		}
		return nil
	},
}

func init() {
	speakCmd.Flags().String("reference", "", "Text the learner was asked to say (default: the content text)")
	speakCmd.Flags().String("provider", "", "Audio-capable provider (default gemini)")
	speakCmd.Flags().Bool("json", false, "Print the result as JSON")
}
