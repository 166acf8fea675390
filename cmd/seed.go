package cmd

import (
	"fmt"

	"github.com/chrisdamba/backoffice/internal/factories"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo catalog with opening stock",
	RunE: func(cmd *cobra.Command, args []string) error {
		buFlag, _ := cmd.Flags().GetString("business-unit")
		menuItems, _ := cmd.Flags().GetInt("menu-items")
		units, err := businessUnits(buFlag)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cf := &factories.CatalogFactory{}
		seeder := factories.NewSeeder(a.store, a.inventory, a.logger)
		catalogs := make([]*factories.Catalog, 0, len(units))
		steps := 0
		for _, bu := range units {
			catalog := cf.CreateCatalog(bu, menuItems)
			catalogs = append(catalogs, catalog)
			steps += factories.Steps(catalog)
		}

		bar := progressbar.Default(int64(steps), "seeding")
		summaries := make([]*factories.SeedSummary, 0, len(catalogs))
		for _, catalog := range catalogs {
			summary, err := seeder.Seed(cmd.Context(), catalog, func() { bar.Add(1) })
			if err != nil {
				return fmt.Errorf("seed %s: %w", catalog.BusinessUnit, err)
			}
			summaries = append(summaries, summary)
		}
		bar.Finish()
		return printJSON(summaries)
	},
}

func init() {
	seedCmd.Flags().String("business-unit", "", "Business unit to seed ("+string(models.BusinessUnitRestaurant)+" or "+string(models.BusinessUnitCoffee)+"); both when empty")
	seedCmd.Flags().Int("menu-items", 0, "Number of menu items per business unit (0 = all)")
}
