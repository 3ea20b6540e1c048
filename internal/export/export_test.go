package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adlib-crawler/internal/scraper"
)

var testRecords = []scraper.AdRecord{
	{
		LibraryID:      "12345",
		AdvertiserName: "Acme, Inc.",
		StartedAt:      "게재 시작함 2024-01-01",
		AdURL:          "https://www.facebook.com/ads/library/?id=12345",
		LandingURL:     "https://example.com/?a=1&b=\"2\"",
		ContentType:    scraper.ContentImage,
		MediaPath:      "/tmp/x/12345.jpg",
	},
	{
		LibraryID:      "67890",
		AdvertiserName: scraper.NotAvailable,
		StartedAt:      scraper.NotAvailable,
		AdURL:          "https://www.facebook.com/ads/library/?id=67890",
		LandingURL:     scraper.NotAvailable,
		ContentType:    scraper.ContentNone,
	},
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	data = bytes.TrimPrefix(data, utf8BOM)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestParseFields(t *testing.T) {
	f, err := ParseFields(nil)
	require.NoError(t, err)
	assert.Equal(t, AllFields(), f)

	f, err = ParseFields([]string{"id", " Landing "})
	require.NoError(t, err)
	assert.Equal(t, Fields{LibraryID: true, LandingURL: true}, f)

	_, err = ParseFields([]string{"id", "title"})
	assert.Error(t, err)
}

func TestProjectAllFieldsOrder(t *testing.T) {
	table := Project(testRecords, AllFields())

	assert.Equal(t, []string{"페이지명", "컨텐츠 유형", "라이브러리 ID", "광고 링크", "게재 시작", "랜딩 링크"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{
		"Acme, Inc.", "이미지", "12345",
		"https://www.facebook.com/ads/library/?id=12345",
		"게재 시작함 2024-01-01", "https://example.com/?a=1&b=\"2\"",
	}, table.Rows[0])
	assert.Equal(t, "N/A", table.Rows[1][1])
}

func TestProjectionRoundTrip(t *testing.T) {
	subsets := [][]string{
		{"id"},
		{"id", "start"},
		{"page", "landing", "type"},
		{"ad_url", "landing"},
		nil,
	}

	for _, keys := range subsets {
		t.Run(strings.Join(keys, ","), func(t *testing.T) {
			fields, err := ParseFields(keys)
			require.NoError(t, err)

			table := Project(testRecords, fields)

			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, table, true))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

			rows := readCSV(t, buf.Bytes())
			require.Len(t, rows, len(testRecords)+1)
			assert.Equal(t, table.Header, rows[0])

			for i, rec := range testRecords {
				got := map[string]string{}
				for j, h := range rows[0] {
					got[h] = rows[i+1][j]
				}

				want := map[string]string{}
				if fields.AdvertiserName {
					want["페이지명"] = rec.AdvertiserName
				}
				if fields.ContentType {
					want["컨텐츠 유형"] = rec.ContentType.String()
				}
				if fields.LibraryID {
					want["라이브러리 ID"] = rec.LibraryID
				}
				if fields.AdURL {
					want["광고 링크"] = rec.AdURL
				}
				if fields.StartedAt {
					want["게재 시작"] = rec.StartedAt
				}
				if fields.LandingURL {
					want["랜딩 링크"] = rec.LandingURL
				}
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestWriteCSVWithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Project(nil, Fields{LibraryID: true}), false))
	assert.Equal(t, "라이브러리 ID\n", buf.String())
}

func TestWriteArchive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.jpg"), []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.mp4"), []byte("video"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, dir, []byte("csv-data")))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	contents := map[string]string{}
	var names []string
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		names = append(names, f.Name)
		contents[f.Name] = string(data)
	}
	sort.Strings(names)

	assert.Equal(t, []string{"1.jpg", "2.mp4", MetadataFileName}, names)
	assert.Equal(t, "csv-data", contents[MetadataFileName])
	assert.Equal(t, "video", contents["2.mp4"])
}

func TestWriteArchiveMissingDir(t *testing.T) {
	var buf bytes.Buffer
	err := WriteArchive(&buf, filepath.Join(t.TempDir(), "missing"), []byte("x"))
	assert.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, Project(testRecords, Fields{LibraryID: true, AdvertiserName: true}), 60)

	out := buf.String()
	assert.Contains(t, out, "12345")
	assert.Contains(t, out, "Acme, Inc.")
	assert.Contains(t, strings.ToLower(out), "2 rows")
}

func TestRenderPreviewsLimit(t *testing.T) {
	previews := []scraper.Preview{
		{ContentType: scraper.ContentImage, Path: "/tmp/a.jpg"},
		{ContentType: scraper.ContentVideo, Path: "/tmp/b.mp4"},
	}

	var buf bytes.Buffer
	RenderPreviews(&buf, previews, 1)
	assert.Contains(t, buf.String(), "/tmp/a.jpg")
	assert.NotContains(t, buf.String(), "/tmp/b.mp4")

	buf.Reset()
	RenderPreviews(&buf, previews, 0)
	assert.Empty(t, buf.String())
}
