package export

import (
	"fmt"
	"strings"

	"adlib-crawler/internal/scraper"
)

// Fields какие колонки оставить в выгрузке
type Fields struct {
	AdvertiserName bool
	ContentType    bool
	LibraryID      bool
	AdURL          bool
	StartedAt      bool
	LandingURL     bool
}

func AllFields() Fields {
	return Fields{
		AdvertiserName: true,
		ContentType:    true,
		LibraryID:      true,
		AdURL:          true,
		StartedAt:      true,
		LandingURL:     true,
	}
}

type column struct {
	key     string
	header  string
	enabled func(Fields) bool
	value   func(scraper.AdRecord) string
}

// Порядок колонок совпадает с исходной таблицей
var columns = []column{
	{"page", "페이지명", func(f Fields) bool { return f.AdvertiserName }, func(r scraper.AdRecord) string { return r.AdvertiserName }},
	{"type", "컨텐츠 유형", func(f Fields) bool { return f.ContentType }, func(r scraper.AdRecord) string { return r.ContentType.String() }},
	{"id", "라이브러리 ID", func(f Fields) bool { return f.LibraryID }, func(r scraper.AdRecord) string { return r.LibraryID }},
	{"ad_url", "광고 링크", func(f Fields) bool { return f.AdURL }, func(r scraper.AdRecord) string { return r.AdURL }},
	{"start", "게재 시작", func(f Fields) bool { return f.StartedAt }, func(r scraper.AdRecord) string { return r.StartedAt }},
	{"landing", "랜딩 링크", func(f Fields) bool { return f.LandingURL }, func(r scraper.AdRecord) string { return r.LandingURL }},
}

// FieldKeys допустимые имена для --fields и output.fields
func FieldKeys() []string {
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = c.key
	}
	return keys
}

// ParseFields разбирает список ключей колонок. Пустой список означает все колонки.
func ParseFields(keys []string) (Fields, error) {
	if len(keys) == 0 {
		return AllFields(), nil
	}

	var f Fields
	for _, raw := range keys {
		key := strings.ToLower(strings.TrimSpace(raw))
		switch key {
		case "page":
			f.AdvertiserName = true
		case "type":
			f.ContentType = true
		case "id":
			f.LibraryID = true
		case "ad_url":
			f.AdURL = true
		case "start":
			f.StartedAt = true
		case "landing":
			f.LandingURL = true
		default:
			return Fields{}, fmt.Errorf("unknown field %q (allowed: %s)", raw, strings.Join(FieldKeys(), ", "))
		}
	}
	return f, nil
}

type Table struct {
	Header []string
	Rows   [][]string
}

// Project оставляет в записях только выбранные колонки
func Project(records []scraper.AdRecord, f Fields) Table {
	var selected []column
	for _, c := range columns {
		if c.enabled(f) {
			selected = append(selected, c)
		}
	}

	t := Table{Header: make([]string, len(selected))}
	for i, c := range selected {
		t.Header[i] = c.header
	}

	t.Rows = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(selected))
		for i, c := range selected {
			row[i] = c.value(rec)
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}
