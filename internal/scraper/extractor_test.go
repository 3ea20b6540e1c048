package scraper

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adlib-crawler/internal/normalize"
	"adlib-crawler/internal/observability"
)

type fakeMedia struct {
	calls []string
	err   error
}

func (f *fakeMedia) Download(_ context.Context, rawURL, dest string) error {
	f.calls = append(f.calls, rawURL+" -> "+dest)
	return f.err
}

func newTestExtractor(media MediaFetcher, capture bool, dir string) *Extractor {
	return NewExtractor(
		DefaultSelectors(),
		normalize.NewNormalizer(normalize.Options{TrimNBSP: true, CollapseSpaces: true}),
		media,
		ExtractorOptions{CaptureContent: capture, ContentDir: dir},
		observability.NewNopLogger(),
	)
}

const fullCardHTML = `<div class="xh8yej3">
	<a href="https://www.facebook.com/acme"><span>Acme Store</span></a>
	<span>게재 시작함 2024-01-01</span>
	<a href="https://l.facebook.com/l.php?u=https%3A%2F%2Fexample.com&amp;h=AT0abc">Shop now</a>
	<img class="x1ll5gia xh8yej3" src="https://scontent.example/img.jpg">
</div>`

func TestExtractKoreanLabels(t *testing.T) {
	e := newTestExtractor(&fakeMedia{}, false, "")

	card := AdCard{Text: "라이브러리 ID: 12345\n게재 시작함 2024-01-01"}
	rec, warnings, err := e.Extract(context.Background(), card, NewSeenIDSet())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "12345", rec.LibraryID)
	assert.Equal(t, "게재 시작함 2024-01-01", rec.StartedAt)
	assert.Equal(t, "https://www.facebook.com/ads/library/?id=12345", rec.AdURL)
	assert.Equal(t, NotAvailable, rec.AdvertiserName)
	assert.Equal(t, NotAvailable, rec.LandingURL)
	assert.Equal(t, ContentNone, rec.ContentType)
}

func TestExtractFullCard(t *testing.T) {
	e := newTestExtractor(&fakeMedia{}, false, "")

	card := AdCard{
		Text: "활성\n라이브러리 ID: 777\n게재 시작함 2024-01-01\nAcme Store",
		HTML: fullCardHTML,
	}
	rec, _, err := e.Extract(context.Background(), card, NewSeenIDSet())
	require.NoError(t, err)

	assert.Equal(t, "777", rec.LibraryID)
	assert.Equal(t, "Acme Store", rec.AdvertiserName)
	assert.Equal(t, "https://example.com", rec.LandingURL)
	// Без захвата контента тип не определяется
	assert.Equal(t, ContentNone, rec.ContentType)
	assert.Empty(t, rec.MediaPath)
}

func TestExtractDiscardsCardWithoutID(t *testing.T) {
	e := newTestExtractor(&fakeMedia{}, false, "")

	tests := []string{
		"게재 시작함 2024-01-01",
		"라이브러리 ID:   \n게재 시작함 2024-01-01",
		"",
	}

	for _, text := range tests {
		rec, _, err := e.Extract(context.Background(), AdCard{Text: text}, NewSeenIDSet())
		assert.ErrorIs(t, err, ErrNoLibraryID, "text %q", text)
		assert.Nil(t, rec)
	}
}

func TestExtractDuplicateSkipsMedia(t *testing.T) {
	media := &fakeMedia{}
	e := newTestExtractor(media, true, t.TempDir())
	seen := NewSeenIDSet()

	card := AdCard{Text: "라이브러리 ID: 1", HTML: fullCardHTML}

	_, _, err := e.Extract(context.Background(), card, seen)
	require.NoError(t, err)
	require.Len(t, media.calls, 1)

	_, _, err = e.Extract(context.Background(), card, seen)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Len(t, media.calls, 1, "duplicate must not trigger a download")
}

func TestExtractLandingURL(t *testing.T) {
	e := newTestExtractor(&fakeMedia{}, false, "")

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "wrapped",
			html: `<a href="https://l.facebook.com/l.php?u=https%3A%2F%2Fexample.com&amp;h=xyz">x</a>`,
			want: "https://example.com",
		},
		{
			name: "wrapped with path and query",
			html: `<a href="https://l.facebook.com/l.php?u=https%3A%2F%2Fshop.example.com%2Fp%3Fa%3D1%26b%3D2&amp;h=xyz">x</a>`,
			want: "https://shop.example.com/p?a=1&b=2",
		},
		{
			name: "no redirect link",
			html: `<a href="https://example.com">x</a>`,
			want: NotAvailable,
		},
		{
			name: "empty parameter",
			html: `<a href="https://l.facebook.com/l.php?u=&amp;h=xyz">x</a>`,
			want: NotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, err := e.Extract(context.Background(), AdCard{Text: "라이브러리 ID: 5", HTML: tt.html}, NewSeenIDSet())
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.LandingURL)
		})
	}
}

func TestExtractNoMediaNoFetch(t *testing.T) {
	media := &fakeMedia{}
	e := newTestExtractor(media, true, t.TempDir())

	html := `<div><img class="other" src="https://scontent.example/avatar.jpg"><span>게재 시작함</span></div>`
	rec, warnings, err := e.Extract(context.Background(), AdCard{Text: "라이브러리 ID: 9", HTML: html}, NewSeenIDSet())
	require.NoError(t, err)

	assert.Equal(t, ContentNone, rec.ContentType)
	assert.Empty(t, rec.MediaPath)
	assert.Empty(t, warnings)
	assert.Empty(t, media.calls)
}

func TestExtractPrefersVideo(t *testing.T) {
	media := &fakeMedia{}
	dir := t.TempDir()
	e := newTestExtractor(media, true, dir)

	html := `<div>
		<video src="https://video.example/v.mp4"></video>
		<img class="xh8yej3" src="https://scontent.example/img.jpg">
	</div>`
	rec, _, err := e.Extract(context.Background(), AdCard{Text: "라이브러리 ID: 42", HTML: html}, NewSeenIDSet())
	require.NoError(t, err)

	assert.Equal(t, ContentVideo, rec.ContentType)
	assert.Equal(t, filepath.Join(dir, "42.mp4"), rec.MediaPath)
	require.Len(t, media.calls, 1)
	assert.Contains(t, media.calls[0], "https://video.example/v.mp4")
}

func TestExtractVideoSourceFallback(t *testing.T) {
	media := &fakeMedia{}
	e := newTestExtractor(media, true, t.TempDir())

	html := `<div><video><source src="https://video.example/s.mp4"></video></div>`
	rec, _, err := e.Extract(context.Background(), AdCard{Text: "라이브러리 ID: 43", HTML: html}, NewSeenIDSet())
	require.NoError(t, err)

	assert.Equal(t, ContentVideo, rec.ContentType)
	require.Len(t, media.calls, 1)
	assert.Contains(t, media.calls[0], "https://video.example/s.mp4")
}

func TestExtractVideoWithoutSourceFallsBackToImage(t *testing.T) {
	media := &fakeMedia{}
	dir := t.TempDir()
	e := newTestExtractor(media, true, dir)

	html := `<div><video></video><img class="xh8yej3" src="https://scontent.example/img.jpg"></div>`
	rec, _, err := e.Extract(context.Background(), AdCard{Text: "라이브러리 ID: 44", HTML: html}, NewSeenIDSet())
	require.NoError(t, err)

	assert.Equal(t, ContentImage, rec.ContentType)
	assert.Equal(t, filepath.Join(dir, "44.jpg"), rec.MediaPath)
}

func TestExtractMediaFailureIsWarning(t *testing.T) {
	media := &fakeMedia{err: errors.New("unexpected status: 404")}
	e := newTestExtractor(media, true, t.TempDir())

	rec, warnings, err := e.Extract(context.Background(), AdCard{Text: "라이브러리 ID: 45", HTML: fullCardHTML}, NewSeenIDSet())
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, ContentImage, rec.ContentType)
	assert.NotEmpty(t, rec.MediaPath)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "404")
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "123", safeFileName("123"))
	assert.Equal(t, "_etc_passwd", safeFileName("../etc/passwd"))
}
