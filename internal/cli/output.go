package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Output печатает результаты команд.
// Данные идут в w, сообщения о ходе работы в errW, чтобы JSON в stdout
// оставался пригодным для разбора.
type Output struct {
	jsonMode bool
	w        io.Writer
	errW     io.Writer
}

// NewOutput создаёт Output поверх заданных потоков.
func NewOutput(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{jsonMode: jsonMode, w: w, errW: errW}
}

// JSONMode возвращает true, если данные выводятся в JSON.
func (o *Output) JSONMode() bool {
	return o.jsonMode
}

// Render печатает view: в JSON режиме целиком, иначе его таблицы
// подряд через пустую строку.
func (o *Output) Render(v view) error {
	if o.jsonMode {
		return o.JSON(v)
	}
	for i, t := range v.tables() {
		if i > 0 {
			if _, err := fmt.Fprintln(o.w); err != nil {
				return err
			}
		}
		if err := o.table(t); err != nil {
			return err
		}
	}
	return nil
}

// table выравнивает колонки через tabwriter; под заголовком строка из "-".
func (o *Output) table(t table) error {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	rule := make([]string, len(t.headers))
	for i, h := range t.headers {
		rule[i] = strings.Repeat("-", len(h))
	}

	lines := make([][]string, 0, len(t.rows)+2)
	lines = append(lines, t.headers, rule)
	lines = append(lines, t.rows...)
	for _, cells := range lines {
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// JSON печатает v с отступом в два пробела.
func (o *Output) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Linef печатает одну строку данных, для потокового вывода.
func (o *Output) Linef(format string, args ...any) error {
	_, err := fmt.Fprintf(o.w, format+"\n", args...)
	return err
}

// Status печатает сообщение о ходе работы.
func (o *Output) Status(msg string) {
	fmt.Fprintln(o.errW, msg)
}
