package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nse-screener/internal/models"
	"nse-screener/internal/screener"
	"nse-screener/internal/store"
	"nse-screener/internal/universe"
	"nse-screener/pkg/utils"
)

func newScreenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Fundamental screening",
		Long:  "Screen NSE companies on profitability, returns and shareholding criteria.",
	}

	cmd.AddCommand(newScreenRunCmd(app))
	cmd.AddCommand(newScreenRulesCmd(app))
	cmd.AddCommand(newScreenRunsCmd(app))

	return cmd
}

func newScreenRunCmd(app *App) *cobra.Command {
	var symbolsFlag []string
	var symbolFile string
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full screening batch",
		Long: `Run the screening batch over the symbol universe.

Results are streamed to checkpoint artifacts during the run, so Ctrl-C
leaves an interrupted artifact behind instead of losing everything. When
a comprehensive artifact newer than the staleness window exists, it is
reused unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Artifacts == nil {
				return fmt.Errorf("output directory unavailable")
			}

			symbols, err := resolveUniverse(cmd.Context(), app, symbolsFlag, symbolFile)
			if err != nil {
				return err
			}
			output.Info("Screening %d symbols", len(symbols))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := screener.NewRunner(app.Config, app.Provider, app.Artifacts, app.Logger)
			if !output.IsJSON() {
				runner.OnProgress(func(done, total int, symbol string) {
					output.Progress(done, total, "Screening")
				})
			}

			rows, summary, err := runner.Run(ctx, symbols, force)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			if app.Store != nil && summary.ReusedFrom == "" {
				run := &store.ScreeningRun{
					RunDate:     time.Now().Format("2006-01-02"),
					Processed:   summary.Processed,
					Passed:      summary.Passed,
					Skipped:     summary.Skipped,
					Duration:    summary.Duration,
					Interrupted: summary.Interrupted,
				}
				if _, err := app.Store.SaveScreeningRun(context.Background(), run, rows); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to record run in store")
				} else if err := app.Store.SetLastSync("screening", time.Now()); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to record sync time")
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"processed":   summary.Processed,
					"passed":      summary.Passed,
					"skipped":     summary.Skipped,
					"duration":    summary.Duration.String(),
					"interrupted": summary.Interrupted,
					"reused_from": summary.ReusedFrom,
				})
			}

			printSummary(output, summary)
			printPassed(output, rows)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&symbolsFlag, "symbols", nil, "explicit symbols to screen (comma-separated)")
	cmd.Flags().StringVar(&symbolFile, "symbol-file", "", "CSV file with a SYMBOL column")
	cmd.Flags().BoolVar(&force, "force", false, "ignore recent artifacts and re-fetch everything")

	return cmd
}

func newScreenRulesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rules [symbol]",
		Short: "Show the rule set, or evaluate one symbol against it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if len(args) == 0 {
				return showRules(output, app)
			}
			symbol := strings.ToUpper(strings.TrimSpace(args[0]))

			profile, err := app.Provider.GetProfile(cmd.Context(), symbol)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", symbol, err)
			}
			screener.Classify(profile)
			evaluator := screener.NewEvaluator(app.Config.Screening)
			passes := evaluator.Evaluate(profile)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"profile": profile,
					"passes":  passes,
				})
			}

			output.Bold("%s — %s", profile.Symbol, profile.CompanyName)
			output.Printf("  Sector:          %s / %s\n", profile.Sector, profile.Industry)
			output.Printf("  Market Cap:      %s\n", utils.FormatCrore(profile.MarketCap))
			output.Printf("  Net Profit:      %.2f Cr\n", profile.NetProfit)
			output.Printf("  ROCE:            %.2f%%\n", profile.ROCE)
			output.Printf("  ROE:             %.2f%%\n", profile.ROE)
			output.Printf("  Debt/Equity:     %.2f\n", profile.DebtToEquity)
			output.Printf("  Public Holding:  %.2f%%\n", profile.PublicHolding)
			output.Printf("  Latest Quarter:  %.2f Cr\n", profile.LatestQuarterProfit)
			output.Printf("  Prior Quarters:  %s\n", models.JoinQuarters(profile.Last3QProfits))
			output.Printf("  Bank/Finance:    %v   PSU: %v\n", profile.IsBankFinance, profile.IsPSU)
			output.Println()
			output.Printf("  Verdict: %s\n", output.Verdict(passes))
			return nil
		},
	}
}

func showRules(output *Output, app *App) error {
	cfg := app.Config.Screening
	if output.IsJSON() {
		return output.JSON(cfg)
	}

	output.Bold("Bank / Finance / Insurance")
	output.Printf("  Net profit > %.0f Cr AND ROE > %.0f%%\n", cfg.BankMinNetProfit, cfg.BankMinROE)
	output.Println()
	output.Bold("Other companies")
	output.Printf("  Net profit > %.0f Cr AND ROCE > %.0f%%\n", cfg.NonBankMinNetProfit, cfg.NonBankMinROCE)
	output.Println("  AND latest quarterly profit exceeds each of the prior three quarters")
	output.Printf("  Non-PSU only: public holding < %.0f%%\n", cfg.MaxPublicHolding)
	return nil
}

func newScreenRunsCmd(app *App) *cobra.Command {
	var limit int
	var runID int64
	var passedOnly bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent screening runs, or show one run's verdicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			if runID > 0 {
				rows, err := app.Store.GetRunRows(cmd.Context(), runID, passedOnly)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(rows)
				}
				if len(rows) == 0 {
					output.Dim("No rows recorded for run %d.", runID)
					return nil
				}
				table := NewTable(output, "Symbol", "Company", "Net Profit (Cr)", "ROCE", "ROE", "Verdict")
				for _, r := range rows {
					table.AddRow(
						r.Symbol,
						r.CompanyName,
						fmt.Sprintf("%.0f", r.NetProfit),
						fmt.Sprintf("%.1f%%", r.ROCE),
						fmt.Sprintf("%.1f%%", r.ROE),
						output.Verdict(r.PassesCriteria),
					)
				}
				table.Render()
				return nil
			}

			runs, err := app.Store.GetScreeningRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(runs)
			}
			if len(runs) == 0 {
				output.Dim("No screening runs recorded yet.")
				return nil
			}
			if last := app.Store.GetLastSync("screening"); !last.IsZero() {
				output.Dim("Last recorded run: %s", last.Format("2006-01-02 15:04"))
			}

			table := NewTable(output, "ID", "Date", "Processed", "Passed", "Skipped", "Duration", "Status")
			for _, r := range runs {
				status := "complete"
				if r.Interrupted {
					status = "interrupted"
				}
				table.AddRow(
					fmt.Sprintf("%d", r.ID),
					r.RunDate,
					fmt.Sprintf("%d", r.Processed),
					fmt.Sprintf("%d", r.Passed),
					fmt.Sprintf("%d", r.Skipped),
					r.Duration.Round(time.Second).String(),
					status,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	cmd.Flags().Int64Var(&runID, "id", 0, "show one run's verdict rows instead of the run list")
	cmd.Flags().BoolVar(&passedOnly, "passed", false, "with --id, show only passing rows")
	return cmd
}

func printSummary(output *Output, summary screener.Summary) {
	output.Println()
	if summary.ReusedFrom != "" {
		output.Info("Reused recent results from %s", summary.ReusedFrom)
	}
	output.Bold("Summary")
	output.Printf("  Processed: %d\n", summary.Processed)
	output.Printf("  Passed:    %d (%.1f%%)\n", summary.Passed, summary.PassRate()*100)
	output.Printf("  Skipped:   %d\n", summary.Skipped)
	output.Printf("  Duration:  %s\n", summary.Duration.Round(time.Second))
	if summary.Interrupted {
		output.Warning("  Run was interrupted; results are partial.")
	}
}

func printPassed(output *Output, rows []models.ScreeningRow) {
	var passed []models.ScreeningRow
	for _, r := range rows {
		if r.PassesCriteria {
			passed = append(passed, r)
		}
	}
	if len(passed) == 0 {
		return
	}

	output.Println()
	table := NewTable(output, "Symbol", "Company", "Net Profit (Cr)", "ROCE", "ROE", "Public Holding")
	for _, r := range passed {
		table.AddRow(
			r.Symbol,
			r.CompanyName,
			fmt.Sprintf("%.0f", r.NetProfit),
			fmt.Sprintf("%.1f%%", r.ROCE),
			fmt.Sprintf("%.1f%%", r.ROE),
			fmt.Sprintf("%.1f%%", r.PublicHolding),
		)
	}
	table.Render()
}

// resolveUniverse picks the symbol list: explicit flags first, then a
// symbol file, then the configured file, then the exchange list.
func resolveUniverse(ctx context.Context, app *App, symbolsFlag []string, symbolFile string) ([]string, error) {
	if len(symbolsFlag) > 0 {
		symbols := make([]string, 0, len(symbolsFlag))
		for _, s := range symbolsFlag {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				symbols = append(symbols, s)
			}
		}
		return symbols, nil
	}
	if symbolFile == "" {
		symbolFile = app.Config.Output.SymbolFile
	}
	if symbolFile != "" {
		return universe.FromFile(symbolFile)
	}

	source := universe.NewSource(app.Config.Fetch.RequestTimeout, app.Logger)
	return source.Symbols(ctx), nil
}
