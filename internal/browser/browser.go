package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"adlib-crawler/internal/observability"
	"adlib-crawler/internal/scraper"
)

type Options struct {
	ChromePath  string
	Headless    bool
	WindowSize  string
	PageTimeout time.Duration
}

// Session один процесс Chrome на один запуск
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	opts     Options
	logger   *observability.Logger
}

// Launch запускает Chrome. Ошибка здесь фатальна для всего запуска.
func Launch(ctx context.Context, opts Options, logger *observability.Logger) (*Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled")

	if opts.WindowSize != "" {
		l = l.Set("window-size", opts.WindowSize)
	}
	if opts.ChromePath != "" {
		l = l.Bin(opts.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	logger.Info("Browser started", "headless", opts.Headless, "control_url", controlURL)

	return &Session{
		launcher: l,
		browser:  b,
		opts:     opts,
		logger:   logger,
	}, nil
}

// NewPage открывает пустую вкладку
func (s *Session) NewPage() (*Page, error) {
	p, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return &Page{page: p, timeout: s.opts.PageTimeout, logger: s.logger}, nil
}

// Close закрывает браузер и гасит процесс; вызывать на любом пути выхода
func (s *Session) Close() {
	if err := s.browser.Close(); err != nil {
		s.logger.Warn("Failed to close browser", "error", err.Error())
	}
	s.launcher.Kill()
	s.launcher.Cleanup()
}

// Page реализует scraper.Page поверх rod
type Page struct {
	page    *rod.Page
	timeout time.Duration
	logger  *observability.Logger
}

var _ scraper.Page = (*Page)(nil)

func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if p.timeout > 0 {
		page = page.Timeout(p.timeout)
	}

	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (p *Page) ScrollHeight(ctx context.Context) (int, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *Page) ScrollToBottom(ctx context.Context) error {
	_, err := p.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

// FindCards один проход по DOM в порядке документа, без дедупликации
func (p *Page) FindCards(ctx context.Context, xpath string) ([]scraper.AdCard, []string, error) {
	elements, err := p.page.Context(ctx).ElementsX(xpath)
	if err != nil {
		return nil, nil, err
	}

	cards := make([]scraper.AdCard, 0, len(elements))
	var warnings []string

	for i, el := range elements {
		text, err := el.Text()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("card node %d: failed to read text: %v", i+1, err))
			continue
		}

		html, err := el.HTML()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("card node %d: failed to read HTML: %v", i+1, err))
			continue
		}

		cards = append(cards, scraper.AdCard{Text: text, HTML: html})
	}

	p.logger.Info("Ad cards located", "nodes", len(elements), "snapshots", len(cards))

	return cards, warnings, nil
}
