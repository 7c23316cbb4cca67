package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathwise/pathwise/internal/store"
	"github.com/pathwise/pathwise/internal/ui/theme"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the course catalog",
}

var contentImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import learning paths, modules, content items and passages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		var catalog store.Catalog
		if err := json.Unmarshal(data, &catalog); err != nil {
			return fmt.Errorf("parse catalog %s: %w", args[0], err)
		}

		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		n, err := a.Store.ContentRepo().Import(cmd.Context(), &catalog)
		if err != nil {
			return fmt.Errorf("import catalog: %w", err)
		}
		fmt.Printf("Imported %d paths, %d content items.\n", len(catalog.Paths), n)
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learning paths and their modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, done, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer done()

		ctx := cmd.Context()
		repo := a.Store.ContentRepo()
		paths, err := repo.ListPaths(ctx)
		if err != nil {
			return fmt.Errorf("list paths: %w", err)
		}
		if len(paths) == 0 {
			fmt.Println("No learning paths. Import a catalog with `pathwise content import`.")
			return nil
		}

		for _, p := range paths {
			fmt.Printf("%s  %s  %s\n", theme.Title.Render(p.ID), p.Title,
				theme.Hint.Render(fmt.Sprintf("%d enrollments", p.TotalEnrollments)))
			moduleIDs, err := repo.ModuleIDs(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("list modules of %s: %w", p.ID, err)
			}
			for _, mid := range moduleIDs {
				contentIDs, err := repo.ContentIDs(ctx, mid)
				if err != nil {
					return fmt.Errorf("list content of %s: %w", mid, err)
				}
				fmt.Printf("  %s  %s\n", mid, theme.Hint.Render(fmt.Sprintf("%d items", len(contentIDs))))
			}
		}
		return nil
	},
}

func init() {
	contentCmd.AddCommand(contentImportCmd)
	contentCmd.AddCommand(contentListCmd)
}
