package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathwise/pathwise/internal/ui/theme"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <user> <path-id>",
	Short: "Enroll a learner in a learning path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		if _, err := a.Progress.Enroll(cmd.Context(), args[0], args[1]); err != nil {
			return explain(err)
		}
		fmt.Printf("Enrolled %s in %s.\n", args[0], args[1])
		return nil
	},
}

var unenrollCmd = &cobra.Command{
	Use:   "unenroll <user> <path-id>",
	Short: "Deactivate a learner's enrollment; progress is kept",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		if err := a.Progress.Unenroll(cmd.Context(), args[0], args[1]); err != nil {
			return explain(err)
		}
		fmt.Printf("Unenrolled %s from %s.\n", args[0], args[1])
		return nil
	},
}

var enrollmentsCmd = &cobra.Command{
	Use:   "enrollments <user>",
	Short: "List a learner's enrollments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		list, err := a.Progress.Enrollments(cmd.Context(), args[0])
		if err != nil {
			return explain(err)
		}
		if len(list) == 0 {
			fmt.Printf("%s is not enrolled in any path.\n", args[0])
			return nil
		}
		for _, e := range list {
			state := "active"
			if !e.Active {
				state = "inactive"
			}
			fmt.Printf("%s  %s\n", theme.Title.Render(e.PathID),
				theme.Hint.Render(state+", enrolled "+e.EnrolledAt.Local().Format("2006-01-02")))
		}
		return nil
	},
}
