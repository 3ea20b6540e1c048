package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"adlib-crawler/internal/browser"
	"adlib-crawler/internal/config"
	"adlib-crawler/internal/export"
	"adlib-crawler/internal/fetcher"
	"adlib-crawler/internal/normalize"
	"adlib-crawler/internal/observability"
	"adlib-crawler/internal/scraper"
)

var ErrInvalidURL = errors.New("invalid ad library URL")

// PageFactory поднимает браузер и возвращает вкладку и функцию освобождения
type PageFactory func(ctx context.Context) (scraper.Page, func(), error)

type Orchestrator struct {
	cfg       *config.Config
	selectors *scraper.Selectors
	logger    *observability.Logger
	out       io.Writer
	newPage   PageFactory
	now       func() time.Time
}

func NewOrchestrator(
	cfg *config.Config,
	selectors *scraper.Selectors,
	logger *observability.Logger,
	out io.Writer,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		selectors: selectors,
		logger:    logger,
		out:       out,
		newPage:   RodPageFactory(cfg.BrowserOptions(), logger),
		now:       time.Now,
	}
}

// RodPageFactory запускает Chrome через rod
func RodPageFactory(opts browser.Options, logger *observability.Logger) PageFactory {
	return func(ctx context.Context) (scraper.Page, func(), error) {
		sess, err := browser.Launch(ctx, opts, logger)
		if err != nil {
			return nil, nil, err
		}

		page, err := sess.NewPage()
		if err != nil {
			sess.Close()
			return nil, nil, err
		}

		return page, sess.Close, nil
	}
}

type RunOptions struct {
	URL     string
	Fields  export.Fields
	Content bool
	OutDir  string
}

type Report struct {
	RunID       string
	CardsSeen   int
	Records     int
	Previews    int
	Warnings    []string
	Scroll      scraper.ScrollStats
	CSVPath     string
	ArchivePath string
}

// Run выполняет один полный проход: браузер → прокрутка → разбор → выгрузка.
// Браузер и временный каталог освобождаются на любом пути выхода.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if err := o.validateURL(opts.URL); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := o.logger.With("run_id", runID)

	tempDir, err := os.MkdirTemp("", "adlib-crawler-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			logger.Warn("Failed to remove temp dir", "path", tempDir, "error", err.Error())
		}
	}()

	contentDir := filepath.Join(tempDir, "contents")
	if opts.Content {
		if err := os.MkdirAll(contentDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create content dir: %w", err)
		}
	}

	logger.Info("Starting browser", "url", opts.URL, "content", opts.Content)

	page, release, err := o.newPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("browser session failed to start: %w", err)
	}
	closeBrowser := sync.OnceFunc(release)
	defer closeBrowser()

	scr := o.buildScraper(opts, contentDir, logger)

	result, err := scr.Scrape(ctx, page, opts.URL)
	closeBrowser()
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     runID,
		CardsSeen: result.CardsSeen,
		Records:   len(result.Records),
		Previews:  len(result.Previews),
		Warnings:  result.Warnings,
		Scroll:    result.Scroll,
	}

	table := export.Project(result.Records, opts.Fields)
	export.RenderTable(o.out, table, o.cfg.Output.MaxCellChars)

	if len(result.Records) == 0 {
		logger.Info("No ads collected")
		return report, nil
	}

	stamp := o.now().Format("20060102_150405")

	var csvBuf bytes.Buffer
	if err := export.WriteCSV(&csvBuf, table, o.cfg.Output.BOM); err != nil {
		return report, err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return report, fmt.Errorf("failed to create output dir: %w", err)
	}

	report.CSVPath = filepath.Join(opts.OutDir, fmt.Sprintf("ad_data_%s.csv", stamp))
	if err := os.WriteFile(report.CSVPath, csvBuf.Bytes(), 0o644); err != nil {
		return report, fmt.Errorf("failed to write CSV: %w", err)
	}
	logger.Info("CSV written", "path", report.CSVPath, "rows", len(table.Rows))

	if opts.Content {
		report.ArchivePath = filepath.Join(opts.OutDir, fmt.Sprintf("contents_%s.zip", stamp))
		if err := writeArchiveFile(report.ArchivePath, contentDir, csvBuf.Bytes()); err != nil {
			return report, err
		}
		logger.Info("Archive written", "path", report.ArchivePath, "media", len(result.Previews))

		// Превью показываем до удаления временного каталога
		export.RenderPreviews(o.out, result.Previews, o.cfg.Output.PreviewLimit)
	}

	return report, nil
}

func (o *Orchestrator) validateURL(rawURL string) error {
	re, err := regexp.Compile(o.cfg.Target.URLPattern)
	if err != nil {
		return fmt.Errorf("bad url pattern: %w", err)
	}
	if !re.MatchString(rawURL) {
		return fmt.Errorf("%w: %q (example: https://www.facebook.com/ads/library/?active_status=all&ad_type=all&country=KR&q=...)", ErrInvalidURL, rawURL)
	}
	return nil
}

func (o *Orchestrator) buildScraper(opts RunOptions, contentDir string, logger *observability.Logger) *scraper.Scraper {
	media := fetcher.NewMediaFetcher(o.cfg.GetMediaTimeout(), o.cfg.Media.UserAgent, logger)

	extractor := scraper.NewExtractor(
		o.selectors,
		normalize.NewNormalizer(o.cfg.NormalizeOptions()),
		media,
		scraper.ExtractorOptions{
			CaptureContent: opts.Content,
			ContentDir:     contentDir,
			AdURLTemplate:  o.cfg.Target.AdURLTemplate,
		},
		logger,
	)

	return scraper.NewScraper(
		o.selectors,
		scraper.NewScrollDriver(o.cfg.ScrollOptions(), logger),
		extractor,
		o.cfg.GetRodInitialWait(),
		logger,
	)
}

func writeArchiveFile(path, contentDir string, csvData []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	if err := export.WriteArchive(f, contentDir, csvData); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
