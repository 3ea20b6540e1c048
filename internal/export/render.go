package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"adlib-crawler/internal/normalize"
	"adlib-crawler/internal/scraper"
)

// RenderTable печатает таблицу в терминал, длинные ячейки обрезаются
func RenderTable(w io.Writer, t Table, maxCellChars int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, r := range t.Rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = normalize.Truncate(cell, maxCellChars)
		}
		tw.AppendRow(row)
	}

	tw.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(t.Rows))})
	tw.Render()
}

// RenderPreviews выводит первые limit скачанных медиа
func RenderPreviews(w io.Writer, previews []scraper.Preview, limit int) {
	if len(previews) == 0 || limit == 0 {
		return
	}
	if limit > 0 && len(previews) > limit {
		previews = previews[:limit]
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("콘텐츠 미리보기")
	tw.AppendHeader(table.Row{"#", "컨텐츠 유형", "파일"})
	for i, p := range previews {
		tw.AppendRow(table.Row{i + 1, p.ContentType.String(), p.Path})
	}
	tw.Render()
}
