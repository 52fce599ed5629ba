package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// Renderer writes reports either as indented JSON or as styled text.
type Renderer struct {
	writer io.Writer
	format string
}

// NewRenderer creates a renderer. Unknown formats fall back to JSON.
func NewRenderer(w io.Writer, format string) *Renderer {
	if format != FormatTable {
		format = FormatJSON
	}
	return &Renderer{writer: w, format: format}
}

// WriteJSON writes v as four-space indented JSON with non-ASCII text kept.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

// Money formats an amount with two decimals and the ruble sign.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2) + " ₽"
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return ExpenseStyle.Render(Money(d))
	}
	return IncomeStyle.Render(Money(d))
}

func (r *Renderer) emit(text string) error {
	_, err := fmt.Fprintln(r.writer, text)
	return err
}

// Dashboard renders the dashboard response.
func (r *Renderer) Dashboard(d model.Dashboard) error {
	if r.format == FormatJSON {
		return WriteJSON(r.writer, d)
	}

	sections := []string{TitleStyle.Render(d.Greeting)}

	cards := [][]string{{"Карта", "Потрачено", "Кэшбэк"}}
	for _, c := range d.Cards {
		label := "*" + c.LastDigits
		if c.Cash {
			label = "Наличные"
		}
		cards = append(cards, []string{label, Money(c.TotalSpent), Money(c.Cashback)})
	}
	sections = append(sections, RenderBox(CardIcon+" Карты", table(cards)))

	top := [][]string{{"Дата", "Сумма", "Категория", "Описание"}}
	for _, t := range d.TopTransactions {
		top = append(top, []string{t.Date, signed(t.Amount), t.Category, t.Description})
	}
	sections = append(sections, RenderBox(ChartIcon+" Топ-5 транзакций", table(top)))

	if len(d.CurrencyRates) > 0 || len(d.StockPrices) > 0 {
		market := [][]string{{"Инструмент", "Значение"}}
		for _, c := range d.CurrencyRates {
			market = append(market, []string{c.Currency, c.Rate.String()})
		}
		for _, s := range d.StockPrices {
			market = append(market, []string{s.Stock, s.Price.StringFixed(2)})
		}
		sections = append(sections, RenderBox(CoinIcon+" Рынок", table(market)))
	} else {
		sections = append(sections, SubtleStyle.Render("Рыночные данные недоступны"))
	}

	return r.emit(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// Jar renders the savings jar result.
func (r *Renderer) Jar(s model.SavedAmount) error {
	if r.format == FormatJSON {
		return WriteJSON(r.writer, s)
	}
	return r.emit(FormatSuccess(fmt.Sprintf("%s Сумма отложенная в 'Инвесткопилку' за %s: %s (лимит %d, операций %d)",
		JarIcon, s.Month, BoldStyle.Render(Money(s.Amount)), s.Limit, s.Transactions)))
}

// Category renders a category spend report.
func (r *Renderer) Category(c model.CategoryReport) error {
	if r.format == FormatJSON {
		return WriteJSON(r.writer, c)
	}
	body := table([][]string{
		{"Категория", "Потрачено", "Период"},
		{c.Category, Money(c.TotalSpent), c.DateRange.StartDate + " — " + c.DateRange.EndDate},
	})
	return r.emit(RenderBox(ChartIcon+" Расходы по категории", body))
}

// Categories renders the list of known categories.
func (r *Renderer) Categories(categories []string) error {
	if r.format == FormatJSON {
		if categories == nil {
			categories = []string{}
		}
		return WriteJSON(r.writer, categories)
	}
	return r.emit(strings.Join(categories, "\n"))
}

// HistoryEntry is the JSON form of a stored report snapshot.
type HistoryEntry struct {
	Kind      string          `json:"kind"`
	CreatedAt string          `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
	ID        int64           `json:"id"`
}

// History renders stored report snapshots, newest first.
func (r *Renderer) History(reports []storage.Report) error {
	entries := make([]HistoryEntry, 0, len(reports))
	for _, rep := range reports {
		entries = append(entries, HistoryEntry{
			ID:        rep.ID,
			Kind:      rep.Kind,
			CreatedAt: rep.CreatedAt.Local().Format(model.DateTimeLayout),
			Payload:   json.RawMessage(rep.Payload),
		})
	}

	if r.format == FormatJSON {
		return WriteJSON(r.writer, entries)
	}

	rows := [][]string{{"#", "Создан", "Тип", "Отчет"}}
	for _, e := range entries {
		rows = append(rows, []string{fmt.Sprint(e.ID), e.CreatedAt, e.Kind, string(e.Payload)})
	}
	return r.emit(RenderBox(HistoryIcon+" История отчетов", table(rows)))
}

// table lays out rows in aligned columns; the first row is the header.
func table(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	lines := make([]string, 0, len(rows))
	for n, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := TableCellStyle.Width(widths[i] + 2)
			if n == 0 {
				style = style.Inherit(TableHeaderStyle)
			}
			cells[i] = style.Render(cell)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	if len(rows) == 1 {
		lines = append(lines, SubtleStyle.Render("нет данных"))
	}
	return strings.Join(lines, "\n")
}
