package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/SscSPs/coop_backoffice/internal/core/services"
	"github.com/spf13/cobra"
)

var (
	templateFormat string
	templateOutDir string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the import template (CSV or XLSX) to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := services.NewTemplateService()

		var (
			file domain.TemplateFile
			err  error
		)
		switch templateFormat {
		case "csv":
			file, err = svc.GenerateTemplate()
		case "xlsx":
			file, err = svc.GenerateXLSXTemplate()
		default:
			return fmt.Errorf("unknown format %q, expected csv or xlsx", templateFormat)
		}
		if err != nil {
			return err
		}

		path := filepath.Join(templateOutDir, file.Filename)
		if err := os.WriteFile(path, file.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write template: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVarP(&templateFormat, "format", "f", "csv", "Template format: csv or xlsx")
	templateCmd.Flags().StringVarP(&templateOutDir, "out", "o", ".", "Directory to write the template to")
}
