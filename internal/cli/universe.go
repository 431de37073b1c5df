package cli

import (
	"github.com/spf13/cobra"

	"nse-screener/internal/models"
	"nse-screener/internal/universe"
	"nse-screener/pkg/utils"
)

func newUniverseCmd(app *App) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "universe",
		Short: "Show the symbol universe",
		Long:  "Resolve and print the symbol list a batch run would use.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var symbols []string
			var err error
			switch {
			case fromFile != "":
				symbols, err = universe.FromFile(fromFile)
			case app.Config.Output.SymbolFile != "":
				symbols, err = universe.FromFile(app.Config.Output.SymbolFile)
			default:
				source := universe.NewSource(app.Config.Fetch.RequestTimeout, app.Logger)
				symbols = source.Symbols(cmd.Context())
			}
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"count":   len(symbols),
					"symbols": symbols,
				})
			}

			output.Info("%d symbols", len(symbols))
			for _, s := range symbols {
				output.Println(s)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "CSV file with a SYMBOL column")
	return cmd
}

func newMarketCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Market session helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current NSE session status",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			status := utils.GetMarketStatus()
			if output.IsJSON() {
				output.JSON(map[string]interface{}{
					"status": status,
					"open":   status == models.MarketOpen,
				})
				return
			}
			output.Printf("NSE: %s\n", output.MarketStatus(string(status)))
		},
	})

	return cmd
}
