package output

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// TableData представляет данные для табличного вывода
type TableData struct {
	Headers []string
	Rows    []*TableRow
}

// TableRow представляет строку таблицы
type TableRow struct {
	Cells []string
	Style RowStyle
}

// RowStyle определяет стиль строки
type RowStyle int

const (
	StyleDefault RowStyle = iota
	StyleHeader
	StyleSeparator
	StyleSuccess
	StyleError
	StyleWarning
	StyleInfo
)

const (
	colorReset = "\033[0m"
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"
)

var styleColors = map[RowStyle]string{
	StyleHeader:    "\033[1;34m",
	StyleSeparator: "\033[1;90m",
	StyleSuccess:   "\033[1;32m",
	StyleError:     "\033[1;31m",
	StyleWarning:   "\033[1;33m",
	StyleInfo:      "\033[1;36m",
}

// NewTableData создает новые табличные данные
func NewTableData(headers ...string) *TableData {
	return &TableData{
		Headers: headers,
		Rows:    make([]*TableRow, 0),
	}
}

// Table позволяет передавать *TableData туда, где ожидается Tabular
func (td *TableData) Table() *TableData {
	return td
}

// AddRow добавляет строку
func (td *TableData) AddRow(cells ...string) {
	td.Rows = append(td.Rows, &TableRow{Cells: cells})
}

// AddRowWithStyle добавляет строку с указанием стиля
func (td *TableData) AddRowWithStyle(cells []string, style RowStyle) {
	td.Rows = append(td.Rows, &TableRow{Cells: cells, Style: style})
}

// String возвращает строковое представление таблицы без цветов
func (td *TableData) String() string {
	return td.Render(false)
}

// Render выводит таблицу, раскрашивая строки по их стилю
func (td *TableData) Render(useColors bool) string {
	if len(td.Rows) == 0 {
		return "No data found"
	}

	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	// Заголовок
	if len(td.Headers) > 0 {
		fmt.Fprintln(w, strings.Join(td.Headers, "\t"))
		separators := make([]string, len(td.Headers))
		for i := range separators {
			separators[i] = strings.Repeat("-", len(td.Headers[i]))
		}
		fmt.Fprintln(w, strings.Join(separators, "\t"))
	}

	for _, row := range td.Rows {
		fmt.Fprintln(w, strings.Join(row.Cells, "\t"))
	}
	w.Flush()

	out := strings.TrimRight(builder.String(), "\n")
	if !useColors {
		return out
	}
	return td.applyColors(out)
}

// applyColors применяет цвета построчно. Ширина колонок уже посчитана
// tabwriter, поэтому escape последовательности не сбивают выравнивание
func (td *TableData) applyColors(output string) string {
	lines := strings.Split(output, "\n")
	offset := 0
	if len(td.Headers) > 0 {
		lines[0] = colorize(lines[0], StyleHeader)
		if len(lines) > 1 {
			lines[1] = colorize(lines[1], StyleSeparator)
		}
		offset = 2
	}
	for i, row := range td.Rows {
		if offset+i < len(lines) {
			lines[offset+i] = colorize(lines[offset+i], row.Style)
		}
	}
	return strings.Join(lines, "\n")
}

func colorize(line string, style RowStyle) string {
	color, ok := styleColors[style]
	if !ok {
		return line
	}
	return color + line + colorReset
}

// statusStyle возвращает стиль строки для статуса
func statusStyle(status string) RowStyle {
	switch strings.ToLower(status) {
	case "active", "delivered", "success":
		return StyleSuccess
	case "inactive", "cancelled", "error":
		return StyleError
	case "pending", "warning":
		return StyleWarning
	case "processing", "shipped", "info":
		return StyleInfo
	default:
		return StyleDefault
	}
}

// getStatusIcon возвращает иконку для статуса
func getStatusIcon(status string) string {
	switch statusStyle(status) {
	case StyleSuccess:
		return "✓"
	case StyleError:
		return "✗"
	case StyleWarning:
		return "⚠"
	case StyleInfo:
		return "→"
	default:
		return "?"
	}
}

func withIcon(status string) string {
	return getStatusIcon(status) + " " + status
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
