package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/engine"
	"github.com/Veraticus/spare/internal/window"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize card spending up to a point in time",
		Long: `Show the dashboard for a moment: a greeting, spend and cashback per card,
the five largest payments, and the exchange rates and stock prices listed
in the user settings file.

By default the window runs from the start of the month to the given time.`,
		Example: `  spare dashboard -t operations.xlsx --time "2024-03-20 14:30:00"
  spare dashboard -t operations.xlsx --period W -o json`,
		RunE: runDashboard,
	}

	// Flags
	cmd.Flags().String("time", "", "reference time YYYY-MM-DD HH:MM:SS (default: now)")
	cmd.Flags().StringP("period", "p", "M", "window: M (month), W (week), Y (year), ALL")

	// Bind to viper
	_ = viper.BindPFlag("dashboard.time", cmd.Flags().Lookup("time"))
	_ = viper.BindPFlag("dashboard.period", cmd.Flags().Lookup("period"))

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	period, err := window.ParsePolicy(viper.GetString("dashboard.period"))
	if err != nil {
		return common.NewUserError("Неизвестный период. Используйте M, W, Y или ALL.", err)
	}

	table, err := loadTable(ctx)
	if err != nil {
		return err
	}

	at, err := parseDateTime(viper.GetString("dashboard.time"), table.Loc())
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	composer := engine.NewComposer(newQuoteClient(), policy())
	dashboard, err := composer.ComposePeriod(ctx, table, at, settings, period)
	if err != nil {
		return fmt.Errorf("failed to compose dashboard: %w", err)
	}

	slog.Debug("Dashboard ready",
		"cards", len(dashboard.Cards),
		"top", len(dashboard.TopTransactions),
		"rates", len(dashboard.CurrencyRates),
		"stocks", len(dashboard.StockPrices))

	return newRenderer(cmd.OutOrStdout()).Dashboard(dashboard)
}
