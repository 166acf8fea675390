package cmd

import (
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/spf13/cobra"
)

var zreportCmd = &cobra.Command{
	Use:   "zreport",
	Short: "Generate (or regenerate) the Z report of a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		buFlag, _ := cmd.Flags().GetString("business-unit")
		day, _ := cmd.Flags().GetString("day")
		units, err := businessUnits(buFlag)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if day == "" {
			day = today(a.cfg.Location())
		}
		reports := make([]*models.ZReport, 0, len(units))
		for _, bu := range units {
			report, err := a.orders.GenerateZReport(cmd.Context(), bu, day)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
		return printJSON(reports)
	},
}

func init() {
	zreportCmd.Flags().String("business-unit", "", "Business unit; both when empty")
	zreportCmd.Flags().String("day", "", "Day as YYYY-MM-DD in the report time zone (default today)")
}
