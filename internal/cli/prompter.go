package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/engine"
	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/window"
)

// Prompts shown by the interactive session.
const (
	PromptDateTime   = "Введите дату и время (YYYY-MM-DD HH:MM:SS)"
	PromptMonth      = "Введите месяц для расчета (YYYY-MM)"
	PromptLimit      = "Введите лимит округления (10, 50 или 100)"
	PromptCategory   = "Введите категорию для анализа расходов"
	PromptReportDate = "Введите дату для анализа расходов (YYYY-MM-DD), или нажмите Enter для текущей даты"
)

// Prompter asks for input until it validates. It returns io.EOF when input
// ends and ErrInputCancelled when the context is canceled.
type Prompter struct {
	reader   *NonBlockingReader
	writer   io.Writer
	location *time.Location
}

// NewPrompter creates a prompter reading times in loc.
func NewPrompter(reader io.Reader, writer io.Writer, loc *time.Location) *Prompter {
	if loc == nil {
		loc = time.Local
	}
	return &Prompter{
		reader:   NewNonBlockingReader(reader),
		writer:   writer,
		location: loc,
	}
}

// ask shows prompt and re-asks until accept succeeds. accept's error message
// is shown to the user.
func (p *Prompter) ask(ctx context.Context, prompt string, accept func(string) error) error {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				_, _ = fmt.Fprintln(p.writer)
			}
			return err
		}

		err = accept(line)
		if err == nil {
			return nil
		}

		slog.Debug("Rejected input", "prompt", prompt, "error", err)
		if _, werr := fmt.Fprintln(p.writer, FormatError(userMessage(err))); werr != nil {
			return fmt.Errorf("failed to write message: %w", werr)
		}
	}
}

// DateTime asks for the dashboard reference time.
func (p *Prompter) DateTime(ctx context.Context) (time.Time, error) {
	var t time.Time
	err := p.ask(ctx, PromptDateTime, func(s string) error {
		parsed, err := time.ParseInLocation(model.DateTimeLayout, s, p.location)
		if err != nil {
			return common.NewUserError("Некорректный формат даты и времени. Пожалуйста, попробуйте снова.", common.ErrInvalidDate)
		}
		t = parsed
		return nil
	})
	return t, err
}

// Month asks for a YYYY-MM month.
func (p *Prompter) Month(ctx context.Context) (string, error) {
	var month string
	err := p.ask(ctx, PromptMonth, func(s string) error {
		if _, _, err := window.Month(s, p.location); err != nil {
			return common.NewUserError("Некорректный формат месяца. Пожалуйста, используйте формат YYYY-MM.", err)
		}
		month = s
		return nil
	})
	return month, err
}

// Limit asks for a round-up limit.
func (p *Prompter) Limit(ctx context.Context) (int, error) {
	var limit int
	err := p.ask(ctx, PromptLimit, func(s string) error {
		n, err := strconv.Atoi(s)
		if err == nil {
			err = engine.ValidateLimit(n)
		}
		if err != nil {
			return common.NewUserError("Недопустимый лимит. Пожалуйста, выберите 10, 50 или 100.", common.ErrInvalidLimit)
		}
		limit = n
		return nil
	})
	return limit, err
}

// Category asks for a category and resolves it against the known ones.
func (p *Prompter) Category(ctx context.Context, resolve func(string) (string, error)) (string, error) {
	var category string
	err := p.ask(ctx, PromptCategory, func(s string) error {
		resolved, err := resolve(s)
		switch {
		case errors.Is(err, common.ErrEmptyCategory):
			return common.NewUserError("Категория не может быть пустой. Пожалуйста, введите корректную категорию.", err)
		case errors.Is(err, common.ErrUnknownCategory):
			return common.NewUserError(fmt.Sprintf("Категория '%s' не найдена. Пожалуйста, введите существующую категорию.", strings.TrimSpace(s)), err)
		case err != nil:
			return err
		}
		category = resolved
		return nil
	})
	return category, err
}

// ReportDate asks for the optional category report date. Blank input means now.
func (p *Prompter) ReportDate(ctx context.Context, now time.Time) (time.Time, error) {
	var ref time.Time
	err := p.ask(ctx, PromptReportDate, func(s string) error {
		parsed, err := engine.ParseReportDate(s, now.In(p.location))
		if err != nil {
			return common.NewUserError("Некорректный формат даты. Пожалуйста, используйте формат YYYY-MM-DD.", err)
		}
		ref = parsed
		return nil
	})
	return ref, err
}

func userMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
