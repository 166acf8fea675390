package cmd

import (
	"fmt"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the inventory ledger",
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay the ledger and report ingredients whose stock snapshot drifted",
	RunE: func(cmd *cobra.Command, args []string) error {
		buFlag, _ := cmd.Flags().GetString("business-unit")
		units, err := businessUnits(buFlag)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		drifts := []models.LedgerDrift{}
		for _, bu := range units {
			found, err := a.inventory.VerifyLedger(cmd.Context(), bu)
			if err != nil {
				return err
			}
			drifts = append(drifts, found...)
		}
		if err := printJSON(drifts); err != nil {
			return err
		}
		if len(drifts) > 0 {
			return fmt.Errorf("%d ingredient(s) drifted from their ledger", len(drifts))
		}
		return nil
	},
}

func init() {
	ledgerVerifyCmd.Flags().String("business-unit", "", "Business unit; both when empty")
	ledgerCmd.AddCommand(ledgerVerifyCmd)
}
