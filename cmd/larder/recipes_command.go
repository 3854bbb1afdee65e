package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"larder/internal/recipe"
)

// recordLister is the read side both record store backends implement.
type recordLister interface {
	List(ctx context.Context) ([]recipe.Record, error)
}

func newRecipesCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List stored recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}
			bound, err := cmdCtx.buildServices(logger)
			if err != nil {
				return err
			}
			defer bound.cleanup()

			lister, ok := bound.records.(recordLister)
			if !ok {
				return fmt.Errorf("record store backend does not support listing")
			}
			records, err := lister.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recipes stored yet")
				return nil
			}

			headers := []string{"Name", "Category", "Difficulty", "Servings", "Total Time", "Stored"}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				stored := ""
				if !rec.CreatedAt.IsZero() {
					stored = rec.CreatedAt.Format("2006-01-02")
				}
				rows = append(rows, []string{
					rec.Name,
					string(rec.Category),
					string(rec.Difficulty),
					strconv.Itoa(rec.Servings),
					fmt.Sprintf("%d min", rec.TotalMinutes),
					stored,
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
}
