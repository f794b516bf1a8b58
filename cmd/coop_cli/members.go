package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var membersCmd = &cobra.Command{
	Use:   "members <file>",
	Short: "Load a member register CSV into the ledger",
	Long: `members registers every member in the file that is not yet known by nomor_anggota.
Columns: nomor_anggota, nama_anggota and optionally nik, status, saldo_hutang, saldo_piutang.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, app, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.LoadMembers(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d, already registered %d\n", len(result.Created), len(result.Skipped))
		return nil
	},
}
