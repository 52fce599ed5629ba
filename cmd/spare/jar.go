package main

import (
	"errors"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/engine"
	"github.com/Veraticus/spare/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func jarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jar",
		Short: "Compute the round-up savings jar for a month",
		Long: `Round every expense of the month up to the next multiple of the limit and
add up the differences: the amount an investment jar would have put aside.`,
		Example: `  spare jar -t operations.xlsx --month 2024-03 --limit 50`,
		RunE:    runJar,
	}

	// Flags
	cmd.Flags().StringP("month", "m", "", "month YYYY-MM (default: current month)")
	cmd.Flags().IntP("limit", "l", 50, "round-up step: 10, 50 or 100")

	// Bind to viper
	_ = viper.BindPFlag("jar.month", cmd.Flags().Lookup("month"))
	_ = viper.BindPFlag("jar.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func runJar(cmd *cobra.Command, _ []string) error {
	limit := viper.GetInt("jar.limit")
	if err := engine.ValidateLimit(limit); err != nil {
		return common.NewUserError("Недопустимый лимит. Пожалуйста, выберите 10, 50 или 100.", err)
	}

	table, err := loadTable(cmd.Context())
	if err != nil {
		return err
	}

	month := viper.GetString("jar.month")
	if month == "" {
		month = time.Now().In(table.Loc()).Format(model.MonthLayout)
	}

	saved, err := engine.InvestmentJar(table, month, limit, policy())
	if errors.Is(err, common.ErrInvalidMonth) {
		return common.NewUserError("Некорректный формат месяца. Пожалуйста, используйте формат YYYY-MM.", err)
	}
	if err != nil {
		return err
	}

	return newRenderer(cmd.OutOrStdout()).Jar(saved)
}
