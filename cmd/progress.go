package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathwise/pathwise/internal/progress"
	"github.com/pathwise/pathwise/internal/store"
	"github.com/pathwise/pathwise/internal/ui/components"
	"github.com/pathwise/pathwise/internal/ui/theme"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Record and inspect learner progress",
}

var progressRecordCmd = &cobra.Command{
	Use:   "record <user> <content-id>",
	Short: "Record activity on a content item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pct, _ := cmd.Flags().GetFloat64("pct")
		minutes, _ := cmd.Flags().GetInt("minutes")

		u := progress.ContentUpdate{
			UserID:     args[0],
			ContentID:  args[1],
			Percentage: pct,
			TimeDelta:  minutes,
		}
		if cmd.Flags().Changed("score") {
			score, _ := cmd.Flags().GetFloat64("score")
			u.Score = &score
		}

		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		r, err := a.Progress.RecordContentProgress(cmd.Context(), u)
		if err != nil {
			return explain(err)
		}
		printRollup(r)
		return nil
	},
}

var progressCompleteCmd = &cobra.Command{
	Use:   "complete <user> <content-id>",
	Short: "Mark a content item complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		r, err := a.Progress.MarkContentComplete(cmd.Context(), args[0], args[1])
		if err != nil {
			return explain(err)
		}
		printRollup(r)
		return nil
	},
}

var progressShowCmd = &cobra.Command{
	Use:   "show <user> <path-id>",
	Short: "Show a learner's progress through a path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		rep, err := a.Progress.PathReport(cmd.Context(), args[0], args[1])
		if err != nil {
			return explain(err)
		}
		if asJSON {
			return printJSON(os.Stdout, rep)
		}
		printReport(rep)
		return nil
	},
}

const barWidth = 48

func printRollup(r *progress.Rollup) {
	printRecord("content "+r.Content.Key.ContentID, r.Content)
	if r.Module != nil {
		printRecord("module  "+r.Module.Key.ModuleID, r.Module)
	}
	if r.Path != nil {
		printRecord("path    "+r.Path.Key.PathID, r.Path)
	}
}

func printRecord(label string, p *store.Progress) {
	fmt.Printf("%s  %s\n", components.NewProgressBar(label, p.Percentage, true, barWidth).View(), theme.Status(p.Status))
}

func printReport(rep *progress.Report) {
	fmt.Println(theme.Title.Render(rep.Path.Title))
	switch {
	case rep.Enrollment == nil:
		fmt.Println(theme.Hint.Render("not enrolled"))
	case !rep.Enrollment.Active:
		fmt.Println(theme.Hint.Render("enrollment inactive"))
	default:
		fmt.Println(theme.Hint.Render("enrolled " + rep.Enrollment.EnrolledAt.Local().Format("2006-01-02")))
	}
	fmt.Println()

	if len(rep.Records) == 0 {
		fmt.Println("No progress recorded yet.")
		return
	}

	var totalMinutes int
	for _, p := range rep.Records {
		var label string
		switch p.Granularity() {
		case store.GranularityPath:
			label = "path    " + p.Key.PathID
		case store.GranularityModule:
			label = "module  " + p.Key.ModuleID
		default:
			label = "content " + p.Key.ContentID
			totalMinutes += p.TimeSpent
		}
		line := fmt.Sprintf("%s  %s", components.NewProgressBar(label, p.Percentage, true, barWidth).View(), theme.Status(p.Status))
		if p.Score != nil {
			line += theme.Hint.Render(fmt.Sprintf("  score %.0f (%d attempts)", *p.Score, p.Attempts))
		}
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Println(theme.Hint.Render(fmt.Sprintf("%d minutes spent", totalMinutes)))
}

func init() {
	progressRecordCmd.Flags().Float64("pct", 0, "Completion percentage (0-100)")
	progressRecordCmd.Flags().Int("minutes", 0, "Minutes spent since the last update")
	progressRecordCmd.Flags().Float64("score", 0, "Score of an attempt")
	progressShowCmd.Flags().Bool("json", false, "Print the report as JSON")

	progressCmd.AddCommand(progressRecordCmd)
	progressCmd.AddCommand(progressCompleteCmd)
	progressCmd.AddCommand(progressShowCmd)
}
