package cmd

import (
	"fmt"
	"path"
	"time"

	"github.com/chrisdamba/backoffice/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data for analysis",
}

var exportLedgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Write the inventory ledger as parquet or csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		buFlag, _ := cmd.Flags().GetString("business-unit")
		format, _ := cmd.Flags().GetString("format")
		destination, _ := cmd.Flags().GetString("destination")
		units, err := businessUnits(buFlag)
		if err != nil {
			return err
		}
		if destination != "" && len(units) > 1 {
			return fmt.Errorf("--destination needs --business-unit")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		factory := a.cloud
		exporter := export.NewExporter(a.store, factory, a.cfg.OutputPath, a.logger)
		results := make([]*export.Result, 0, len(units))
		for _, bu := range units {
			dest := destination
			if dest == "" && factory != nil {
				name := fmt.Sprintf("ledger-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
				dest = "s3://" + a.cfg.CloudStorage.BucketName + "/" + path.Join("ledger", string(bu), name)
			}
			result, err := exporter.ExportLedger(cmd.Context(), bu, format, dest)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return printJSON(results)
	},
}

func init() {
	exportLedgerCmd.Flags().String("business-unit", "", "Business unit; both when empty")
	exportLedgerCmd.Flags().String("format", export.FormatParquet, "Output format: parquet or csv")
	exportLedgerCmd.Flags().String("destination", "", "Local path or s3://bucket/key (default under output_path)")
	exportCmd.AddCommand(exportLedgerCmd)
}
