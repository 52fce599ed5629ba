package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Report spending in one category over 90 days",
		Long: `Total the absolute amounts of one category over the 90 days ending at the
given date. Every report is also saved through the configured audit backend
(audit.backend: file, sqlite or none).`,
		Example: `  spare category -t operations.xlsx --category "Супермаркеты" --date 2024-03-31`,
		RunE:    runCategory,
	}

	// Flags
	cmd.Flags().StringP("category", "c", "", "category name as it appears in the table")
	cmd.Flags().StringP("date", "d", "", "end of the window YYYY-MM-DD (default: now)")
	_ = cmd.MarkFlagRequired("category")

	// Bind to viper
	_ = viper.BindPFlag("category.name", cmd.Flags().Lookup("category"))
	_ = viper.BindPFlag("category.date", cmd.Flags().Lookup("date"))

	return cmd
}

func runCategory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	table, err := loadTable(ctx)
	if err != nil {
		return err
	}

	input := viper.GetString("category.name")
	category, err := engine.ResolveCategory(table, input, policy())
	switch {
	case errors.Is(err, common.ErrEmptyCategory):
		return common.NewUserError("Категория не может быть пустой. Пожалуйста, введите корректную категорию.", err)
	case errors.Is(err, common.ErrUnknownCategory):
		return common.NewUserError(fmt.Sprintf("Категория '%s' не найдена. Доступные категории: spare categories", input), err)
	case err != nil:
		return err
	}

	ref, err := engine.ParseReportDate(viper.GetString("category.date"), time.Now().In(table.Loc()))
	if err != nil {
		return common.NewUserError("Некорректный формат даты. Пожалуйста, используйте формат YYYY-MM-DD.", err)
	}

	sink, closeSink, err := openAudit(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSink(); cerr != nil {
			common.LogError(cerr, "Failed to close audit sink", nil)
		}
	}()

	report, err := engine.NewReporter(time.Now, sink).SpendingByCategory(ctx, table, category, ref)
	if err != nil {
		return fmt.Errorf("failed to build category report: %w", err)
	}

	return newRenderer(cmd.OutOrStdout()).Category(report)
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories present in the table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := loadTable(cmd.Context())
			if err != nil {
				return err
			}
			return newRenderer(cmd.OutOrStdout()).Categories(table.Categories())
		},
	}
}
