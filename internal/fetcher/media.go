package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"adlib-crawler/internal/observability"
)

const DefaultMediaTimeout = 10 * time.Second

// MediaFetcher скачивает превью (картинки и видео) карточек.
// Без ретраев: любой сбой возвращается вызывающему как ошибка.
type MediaFetcher struct {
	client    *http.Client
	userAgent string
	logger    *observability.Logger
}

func NewMediaFetcher(timeout time.Duration, userAgent string, logger *observability.Logger) *MediaFetcher {
	if timeout <= 0 {
		timeout = DefaultMediaTimeout
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &MediaFetcher{
		client:    client,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Download потоково пишет тело ответа в dest. Файл появляется только
// после полностью успешной загрузки со статусом 200.
func (f *MediaFetcher) Download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid media URL: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Debug("Failed to close response body", "url", rawURL, "error", err.Error())
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write media: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move media into place: %w", err)
	}

	f.logger.Debug("Media downloaded",
		"url", rawURL,
		"path", dest,
		"bytes", written,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return nil
}
