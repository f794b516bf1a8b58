package main

import (
	"fmt"
	"io"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/spf13/cobra"
)

var repair bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check ledger consistency and optionally repair it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		out := cmd.OutOrStdout()
		consistency := app.Services.Consistency
		result, err := consistency.ValidateAll(ctx)
		if err != nil {
			return err
		}
		printIssues(out, "found", result.Errors)
		if result.Valid || !repair {
			if !result.Valid {
				return fmt.Errorf("ledger has %d inconsistencies", len(result.Errors))
			}
			fmt.Fprintln(out, "ledger is consistent")
			return nil
		}

		repaired, err := consistency.AttemptDataRepair(ctx, result)
		if err != nil {
			return err
		}
		printIssues(out, "repaired", repaired.Repaired)
		printIssues(out, "unrepaired", repaired.Unrepaired)

		after, err := consistency.ValidateAll(ctx)
		if err != nil {
			return err
		}
		if !after.Valid {
			return fmt.Errorf("ledger still has %d inconsistencies", len(after.Errors))
		}
		fmt.Fprintln(out, "ledger is consistent")
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&repair, "repair", false, "Repair what can be repaired safely")
}

func printIssues(w io.Writer, label string, issues []domain.ConsistencyIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "%s %d:\n", label, len(issues))
	for _, i := range issues {
		fmt.Fprintf(w, "  %-24s %s\n", i.Code, i.Message)
	}
}
