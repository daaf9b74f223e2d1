package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"AdminPanelPlatform/services/admin-cli/internal/notify"
)

// FormatType представляет тип форматирования вывода
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ParseFormat разбирает значение флага --output
func ParseFormat(value string) (FormatType, error) {
	switch FormatType(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", value)
	}
}

// Tabular данные, которые умеют представлять себя таблицей
type Tabular interface {
	Table() *TableData
}

// Formatter интерфейс для форматирования вывода
type Formatter interface {
	Format(data interface{}) (string, error)
}

// TableFormatter форматирует данные в виде таблицы
type TableFormatter struct {
	UseColors bool
}

// NewTableFormatter создает табличный форматировщик
func NewTableFormatter(useColors bool) *TableFormatter {
	return &TableFormatter{UseColors: useColors}
}

// Format выводит Tabular и *TableData таблицей, остальное через %v
func (f *TableFormatter) Format(data interface{}) (string, error) {
	switch v := data.(type) {
	case *TableData:
		return v.Render(f.UseColors), nil
	case Tabular:
		return v.Table().Render(f.UseColors), nil
	case string:
		return v, nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// JSONFormatter форматирует данные в JSON
type JSONFormatter struct {
	Pretty bool
}

// NewJSONFormatter создает JSON форматировщик
func NewJSONFormatter(pretty bool) *JSONFormatter {
	return &JSONFormatter{Pretty: pretty}
}

// Format сериализует данные
func (f *JSONFormatter) Format(data interface{}) (string, error) {
	var output []byte
	var err error

	if f.Pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(output), nil
}

// YAMLFormatter форматирует данные в YAML
type YAMLFormatter struct{}

// NewYAMLFormatter создает YAML форматировщик
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format сериализует данные. Имена полей берутся из json тегов,
// поэтому YAML совпадает по структуре с JSON выводом
func (f *YAMLFormatter) Format(data interface{}) (string, error) {
	plain, err := toPlain(data)
	if err != nil {
		return "", err
	}
	output, err := yaml.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(output), nil
}

// toPlain переводит значение в map/slice представление через JSON
func toPlain(data interface{}) (interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}
	var plain interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("failed to convert data: %w", err)
	}
	return plain, nil
}

// GetFormatter возвращает подходящий форматировщик
func GetFormatter(format FormatType, pretty bool, useColors bool) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(pretty)
	case FormatYAML:
		return NewYAMLFormatter()
	default:
		return NewTableFormatter(useColors)
	}
}

// Printer выводит результаты команд в выбранном формате
type Printer struct {
	format    FormatType
	formatter Formatter
	useColors bool
	w         io.Writer
	notes     io.Writer
	now       func() time.Time
}

// NewPrinter создает Printer. Результаты пишутся в w, уведомления в notes,
// чтобы json и yaml вывод оставался разбираемым.
// Цвета включаются только для таблицы в терминале
func NewPrinter(format FormatType, w, notes io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	if notes == nil {
		notes = os.Stderr
	}
	useColors := format == FormatTable && w == os.Stdout && DetectColors()
	return &Printer{
		format:    format,
		formatter: GetFormatter(format, true, useColors),
		useColors: useColors,
		w:         w,
		notes:     notes,
		now:       time.Now,
	}
}

// Format возвращает формат вывода
func (p *Printer) Format() FormatType {
	return p.format
}

// Print выводит данные. Для json и yaml данные оборачиваются в конверт
// с метаданными команды
func (p *Printer) Print(command string, data interface{}, meta *Metadata) error {
	var payload interface{}
	switch p.format {
	case FormatJSON:
		out := NewJSONOutput(true, data, nil)
		out.Timestamp = p.now()
		out.Metadata = withCommand(meta, command, p.format)
		payload = out
	case FormatYAML:
		out := NewYAMLOutput(true, data, nil)
		out.Timestamp = p.now()
		out.Metadata = withCommand(meta, command, p.format)
		payload = out
	default:
		payload = data
	}

	text, err := p.formatter.Format(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, strings.TrimRight(text, "\n"))
	return err
}

// PrintError выводит ошибку в выбранном формате
func (p *Printer) PrintError(command string, cause error) error {
	var payload interface{}
	switch p.format {
	case FormatJSON:
		out := NewJSONOutput(false, nil, cause)
		out.Timestamp = p.now()
		out.Metadata = withCommand(nil, command, p.format)
		payload = out
	case FormatYAML:
		out := NewYAMLOutput(false, nil, cause)
		out.Timestamp = p.now()
		out.Metadata = withCommand(nil, command, p.format)
		payload = out
	default:
		payload = "Error: " + getErrorString(cause)
	}

	text, err := p.formatter.Format(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, strings.TrimRight(text, "\n"))
	return err
}

// PrintNotifications выводит активные уведомления
func (p *Printer) PrintNotifications(items []notify.Notification) error {
	if len(items) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(p.notes, NotificationLines(items, p.useColors))
	return err
}

func withCommand(meta *Metadata, command string, format FormatType) *Metadata {
	if meta == nil {
		meta = &Metadata{}
	}
	meta.Command = command
	meta.Format = string(format)
	return meta
}

// DetectColors определяет нужно ли использовать цвета
func DetectColors() bool {
	if colors := os.Getenv("ADMIN_PANEL_COLORS"); colors != "" {
		return strings.ToLower(colors) == "true"
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal()
}

// isTerminal проверяет, что вывод идет в терминал
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
