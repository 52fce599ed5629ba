package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/spare/internal/cli"
	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/engine"
	"github.com/Veraticus/spare/internal/model"
	"github.com/spf13/cobra"
)

func interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Ask for each query in turn",
		Long: `Load the table once, then ask for a dashboard time, a savings jar month and
limit, and a category with an optional report date. Invalid answers are asked
again. Ctrl+C ends the session.`,
		RunE: runInteractive,
	}
}

// session carries the state shared by the interactive steps.
type session struct {
	table    model.Table
	settings model.Settings
	prompter *cli.Prompter
	renderer *cli.Renderer
	out      io.Writer
	policy   engine.Policy
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	table, err := loadTable(cmd.Context())
	if err != nil {
		_, _ = fmt.Fprintln(out, cli.FormatError("Не удалось загрузить данные о транзакциях."))
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(out)
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	s := &session{
		table:    table,
		settings: settings,
		prompter: cli.NewPrompter(cmd.InOrStdin(), out, table.Loc()),
		renderer: newRenderer(out),
		out:      out,
		policy:   policy(),
	}

	steps := []func(context.Context) error{s.dashboard, s.jar, s.category}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			if endOfSession(err) || handler.WasInterrupted() {
				return nil
			}
			return err
		}
	}
	return nil
}

// endOfSession reports whether err only means the user stopped answering.
func endOfSession(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputCancelled) || errors.Is(err, context.Canceled)
}

func (s *session) warn(message string) error {
	_, err := fmt.Fprintln(s.out, cli.FormatWarning(message))
	return err
}

// dashboard asks for a time until one has operations, then shows its dashboard.
func (s *session) dashboard(ctx context.Context) error {
	composer := engine.NewComposer(newQuoteClient(), s.policy)
	for {
		at, err := s.prompter.DateTime(ctx)
		if err != nil {
			return err
		}

		dashboard, err := composer.Compose(ctx, s.table, at, s.settings)
		if errors.Is(err, common.ErrNoData) {
			if err := s.warn("Дата не найдена. Введите другую дату."); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		return s.renderer.Dashboard(dashboard)
	}
}

func (s *session) jar(ctx context.Context) error {
	month, err := s.prompter.Month(ctx)
	if err != nil {
		return err
	}
	limit, err := s.prompter.Limit(ctx)
	if err != nil {
		return err
	}

	saved, err := engine.InvestmentJar(s.table, month, limit, s.policy)
	if errors.Is(err, common.ErrNoData) {
		return s.warn(fmt.Sprintf("Нет операций за %s", month))
	}
	if err != nil {
		return err
	}
	return s.renderer.Jar(saved)
}

func (s *session) category(ctx context.Context) error {
	category, err := s.prompter.Category(ctx, func(input string) (string, error) {
		return engine.ResolveCategory(s.table, input, s.policy)
	})
	if err != nil {
		return err
	}
	ref, err := s.prompter.ReportDate(ctx, time.Now())
	if err != nil {
		return err
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

	report, err := engine.NewReporter(time.Now, sink).SpendingByCategory(ctx, s.table, category, ref)
	if err != nil {
		_, werr := fmt.Fprintln(s.out, cli.FormatError(fmt.Sprintf("Ошибка при получении отчета по категории '%s': %v", category, err)))
		return werr
	}
	return s.renderer.Category(report)
}
