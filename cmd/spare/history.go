package main

import (
	"fmt"

	"github.com/Veraticus/spare/internal/audit"
	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/config"
	"github.com/Veraticus/spare/internal/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show category reports saved in the audit database",
		Long: `List report snapshots stored by the sqlite audit backend, newest first.
The database is read from audit.database whichever backend is active.`,
		RunE: runHistory,
	}

	// Flags
	cmd.Flags().String("kind", engine.SpendingReportKind, "report kind")
	cmd.Flags().IntP("limit", "n", 10, "maximum number of reports")

	// Bind to viper
	_ = viper.BindPFlag("history.kind", cmd.Flags().Lookup("kind"))
	_ = viper.BindPFlag("history.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	limit := viper.GetInt("history.limit")
	if limit <= 0 {
		return common.NewUserError("Количество отчетов должно быть положительным.", fmt.Errorf("history limit must be positive, got %d", limit))
	}

	path := config.ExpandPath(viper.GetString("audit.database"))
	sink, err := audit.OpenSQLiteSink(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open audit database %s: %w", path, err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			common.LogError(cerr, "Failed to close audit database", common.Fields{"path": path})
		}
	}()

	reports, err := sink.History(ctx, viper.GetString("history.kind"), limit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	return newRenderer(cmd.OutOrStdout()).History(reports)
}
