package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nse-screener/internal/models"
	"nse-screener/internal/screener"
	"nse-screener/internal/signals"
	"nse-screener/pkg/utils"
)

func newSignalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Candle-signal detection and ranking",
		Long:  "Detect qualifying up-day sequences in daily history and rank them against live prices.",
	}

	cmd.AddCommand(newSignalsGenerateCmd(app))
	cmd.AddCommand(newSignalsRankCmd(app))

	return cmd
}

func newSignalsGenerateCmd(app *App) *cobra.Command {
	var symbolsFlag []string
	var symbolFile string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate candle signals from full daily history",
		Long: `Scan each symbol's daily history for runs of consecutive up-days whose
low-to-high span clears the configured gain threshold. Signals whose buy
level was revisited and target re-hit later are dropped. The dated
artifact for today is fully replaced on each run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Artifacts == nil {
				return fmt.Errorf("output directory unavailable")
			}

			symbols, err := resolveUniverse(cmd.Context(), app, symbolsFlag, symbolFile)
			if err != nil {
				return err
			}
			output.Info("Scanning %d symbols for candle signals", len(symbols))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			generator := signals.NewGenerator(app.Config, app.Provider, app.Logger)
			if !output.IsJSON() {
				generator.OnProgress(func(done, total int, symbol string) {
					output.Progress(done, total, "Scanning")
				})
			}

			rows, err := generator.Generate(ctx, symbols)
			if err != nil {
				return err
			}

			now := time.Now()
			path, err := app.Artifacts.WriteSignals(rows, now)
			if err != nil {
				return err
			}
			if app.Store != nil {
				date := now.Format("2006-01-02")
				if err := app.Store.SaveSignals(context.Background(), date, rows); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to record signals in store")
				} else if err := app.Store.SetLastSync("signals", now); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to record sync time")
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"signals":  len(rows),
					"artifact": path,
				})
			}
			output.Println()
			output.Success("Found %d signals across %d symbols", len(rows), len(symbols))
			output.Dim("Artifact: %s", path)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&symbolsFlag, "symbols", nil, "explicit symbols to scan (comma-separated)")
	cmd.Flags().StringVar(&symbolFile, "symbol-file", "", "CSV file with a SYMBOL column")

	return cmd
}

func newSignalsRankCmd(app *App) *cobra.Command {
	var fromFile string
	var limit int

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank stored signals by closeness to their buy level",
		Long: `Load the newest signals artifact, keep the latest signal per symbol,
fetch each symbol's current price and rank the survivors by absolute
distance from the buy level. Symbols already at or above their sell
target are dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			path := fromFile
			if path == "" && app.Artifacts != nil {
				path = app.Artifacts.LatestSignalsFile()
			}

			var rows []models.SignalRow
			switch {
			case path != "":
				var err error
				rows, err = screener.ReadSignals(path)
				if err != nil {
					return err
				}
				output.Info("Ranking %d signals from %s", len(rows), path)
			case app.Store != nil:
				// No artifact on disk; the store may still have a run.
				date, err := app.Store.LatestSignalDate(cmd.Context())
				if err != nil || date == "" {
					return fmt.Errorf("no signals found; run 'signals generate' first")
				}
				rows, err = app.Store.GetSignals(cmd.Context(), date)
				if err != nil {
					return err
				}
				output.Info("Ranking %d signals stored on %s", len(rows), date)
			default:
				return fmt.Errorf("no signals artifact found; run 'signals generate' first")
			}

			if !output.IsJSON() && !utils.IsMarketOpen() {
				output.Warning("Market is closed; prices reflect the last session.")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ranker := signals.NewRanker(app.Provider, app.Config.Fetch.MarketInterval, app.Logger)
			ranked, err := ranker.Rank(ctx, rows)
			if err != nil {
				return err
			}
			if limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}

			if output.IsJSON() {
				return output.JSON(ranked)
			}
			if len(ranked) == 0 {
				output.Dim("No actionable signals right now.")
				return nil
			}

			table := NewTable(output, "Symbol", "Buy Date", "Buy", "Sell", "Current", "Proximity", "Potential")
			for _, r := range ranked {
				table.AddRow(
					r.Symbol,
					r.BuyDate,
					fmt.Sprintf("%.2f", r.BuyPrice),
					fmt.Sprintf("%.2f", r.SellPrice),
					fmt.Sprintf("%.2f", r.CurrentPrice),
					output.FormatPercent(r.Proximity),
					fmt.Sprintf("%.1f%%", r.PotentialGain),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "signals artifact to rank (default: newest)")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap the number of ranked rows shown")

	return cmd
}
