package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"adlib-crawler/internal/normalize"
	"adlib-crawler/internal/observability"
)

const DefaultAdURLTemplate = "https://www.facebook.com/ads/library/?id=%s"

var (
	ErrNoLibraryID = errors.New("library id not found in card")
	ErrDuplicate   = errors.New("library id already collected")

	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// MediaFetcher скачивает медиа по URL в dest
type MediaFetcher interface {
	Download(ctx context.Context, rawURL, dest string) error
}

type ExtractorOptions struct {
	CaptureContent bool
	ContentDir     string
	AdURLTemplate  string
}

type Extractor struct {
	selectors  *Selectors
	normalizer *normalize.Normalizer
	media      MediaFetcher
	opts       ExtractorOptions
	logger     *observability.Logger
}

func NewExtractor(
	selectors *Selectors,
	n *normalize.Normalizer,
	media MediaFetcher,
	opts ExtractorOptions,
	logger *observability.Logger,
) *Extractor {
	if opts.AdURLTemplate == "" {
		opts.AdURLTemplate = DefaultAdURLTemplate
	}
	return &Extractor{
		selectors:  selectors,
		normalizer: n,
		media:      media,
		opts:       opts,
		logger:     logger,
	}
}

// Extract строит AdRecord из одной карточки.
// ErrNoLibraryID и ErrDuplicate означают, что карточку надо молча пропустить.
// Остальные проблемы не прерывают карточку: поле получает N/A, а текст
// проблемы попадает в warnings.
func (e *Extractor) Extract(ctx context.Context, card AdCard, seen *SeenIDSet) (*AdRecord, []string, error) {
	lines := e.normalizer.Lines(card.Text)

	id := e.libraryID(lines)
	if id == "" {
		return nil, nil, ErrNoLibraryID
	}

	// Дубликат отсекаем до любых дорогих операций (скачивание медиа)
	if !seen.Admit(id) {
		return nil, nil, fmt.Errorf("%w: %s", ErrDuplicate, id)
	}

	rec := &AdRecord{
		LibraryID:      id,
		StartedAt:      findLine(lines, e.selectors.StartedMarker),
		AdvertiserName: NotAvailable,
		LandingURL:     NotAvailable,
		AdURL:          fmt.Sprintf(e.opts.AdURLTemplate, id),
	}
	if rec.StartedAt == "" {
		rec.StartedAt = NotAvailable
	}

	var warnings []string

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(card.HTML))
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("card %s: failed to parse HTML: %v", id, err))
		return rec, warnings, nil
	}

	if landing, ok := e.landingURL(doc); ok {
		rec.LandingURL = landing
	}

	if name := strings.TrimSpace(doc.Find(e.selectors.AdvertiserName).First().Text()); name != "" {
		rec.AdvertiserName = e.normalizer.CleanText(name)
	}

	if e.opts.CaptureContent {
		warnings = append(warnings, e.captureMedia(ctx, doc, rec)...)
	}

	return rec, warnings, nil
}

func (e *Extractor) libraryID(lines []string) string {
	line := findLine(lines, e.selectors.LibraryIDLabel)
	if line == "" {
		return ""
	}
	return strings.TrimSpace(strings.Replace(line, e.selectors.LibraryIDLabel, "", 1))
}

// landingURL достаёт настоящий адрес из ссылки-обёртки l.php?u=...
func (e *Extractor) landingURL(doc *goquery.Document) (string, bool) {
	href, exists := doc.Find(e.selectors.LandingLink).First().Attr("href")
	if !exists || href == "" {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		e.logger.Debug("Malformed redirect link", "href", href, "error", err.Error())
		return "", false
	}

	target := strings.TrimSpace(u.Query().Get(e.selectors.RedirectParam))
	if target == "" {
		return "", false
	}
	return target, true
}

// captureMedia: сначала видео, потом картинка. Сбой поиска одного
// варианта не мешает попробовать следующий.
func (e *Extractor) captureMedia(ctx context.Context, doc *goquery.Document, rec *AdRecord) []string {
	src, ctype := e.videoSource(doc), ContentVideo
	if src == "" {
		src, ctype = attr(doc.Find(e.selectors.Image).First(), "src"), ContentImage
	}
	if src == "" {
		rec.ContentType = ContentNone
		return nil
	}

	ext := ".jpg"
	if ctype == ContentVideo {
		ext = ".mp4"
	}

	rec.ContentType = ctype
	rec.MediaPath = filepath.Join(e.opts.ContentDir, safeFileName(rec.LibraryID)+ext)

	if err := e.media.Download(ctx, src, rec.MediaPath); err != nil {
		return []string{fmt.Sprintf("card %s: media download failed: %s: %v", rec.LibraryID, src, err)}
	}
	return nil
}

func (e *Extractor) videoSource(doc *goquery.Document) string {
	if src := attr(doc.Find(e.selectors.Video).First(), "src"); src != "" {
		return src
	}
	if e.selectors.VideoSource == "" {
		return ""
	}
	return attr(doc.Find(e.selectors.VideoSource).First(), "src")
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}

// findLine возвращает первую строку, содержащую marker
func findLine(lines []string, marker string) string {
	if marker == "" {
		return ""
	}
	for _, line := range lines {
		if strings.Contains(line, marker) {
			return line
		}
	}
	return ""
}

func safeFileName(id string) string {
	return unsafeFileChars.ReplaceAllString(id, "_")
}
