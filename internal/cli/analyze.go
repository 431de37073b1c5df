package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nse-screener/internal/analysis"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var years int

	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Technical snapshot for a symbol",
		Long: `Compute a technical snapshot from daily history: moving averages with
golden/death-cross state, RSI, MACD and Bollinger Bands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(strings.TrimSpace(args[0]))

			candles, err := app.Provider.GetDailyHistory(cmd.Context(), symbol, years)
			if err != nil {
				return fmt.Errorf("fetching history for %s: %w", symbol, err)
			}

			analyzer := analysis.NewAnalyzer(app.Config.Signals.Workers)
			report, err := analyzer.Analyze(cmd.Context(), symbol, candles)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			output.Bold("%s technical snapshot (%d candles)", symbol, len(candles))
			output.Printf("  Close:     %.2f\n", report.Close)
			output.Println()

			output.Bold("Moving Averages")
			for _, p := range []int{10, 50, 100, 200} {
				value, ok := report.SMA[p]
				if !ok || value == 0 {
					output.Printf("  SMA %-3d    insufficient history\n", p)
					continue
				}
				position := "below"
				if report.Close > value {
					position = "above"
				}
				output.Printf("  SMA %-3d    %.2f  (price %s)\n", p, value, position)
			}
			if report.GoldenCross {
				output.Success("  Golden cross: SMA50 above SMA200")
			} else if report.DeathCross {
				output.Warning("  Death cross: SMA50 below SMA200")
			}
			output.Println()

			output.Bold("Momentum")
			output.Printf("  RSI 14:    %.1f\n", report.RSI)
			macdState := "bearish"
			if report.MACDBullish {
				macdState = "bullish"
			}
			output.Printf("  MACD:      %.2f  signal %.2f  (%s)\n", report.MACD, report.MACDSignal, macdState)
			output.Println()

			output.Bold("Bollinger Bands (20, 2)")
			output.Printf("  Upper:     %.2f\n", report.BollUpper)
			output.Printf("  Middle:    %.2f\n", report.BollMiddle)
			output.Printf("  Lower:     %.2f\n", report.BollLower)
			return nil
		},
	}

	cmd.Flags().IntVar(&years, "years", 2, "years of daily history to analyze")
	return cmd
}
