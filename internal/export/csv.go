package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM нужен, чтобы Excel открывал корейский текст без кракозябр
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV пишет таблицу в UTF-8: одна строка заголовка, по строке на запись
func WriteCSV(w io.Writer, t Table, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
