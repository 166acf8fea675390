package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Work with supplier invoices",
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supplier invoices, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		buFlag, _ := cmd.Flags().GetString("business-unit")
		bu := models.BusinessUnit(buFlag)
		if !bu.Valid() {
			return fmt.Errorf("--business-unit must be restaurant or coffee")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.invoices.ListInvoices(cmd.Context(), bu)
		if err != nil {
			return err
		}
		return printJSON(list)
	},
}

var invoicesAttachCmd = &cobra.Command{
	Use:   "attach <invoice-id> <file>",
	Short: "Upload a scanned invoice to cloud storage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		invoice, err := a.invoices.AttachFile(cmd.Context(), args[0], filepath.Base(args[1]), f)
		if err != nil {
			return err
		}
		return printJSON(invoice)
	},
}

func init() {
	invoicesListCmd.Flags().String("business-unit", "", "Business unit (restaurant or coffee)")
	invoicesCmd.AddCommand(invoicesListCmd, invoicesAttachCmd)
}
