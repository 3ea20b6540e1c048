package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adlib-crawler/internal/observability"
)

// Page живая вкладка браузера, открытая на листинге
type Page interface {
	Scrollable
	Navigate(ctx context.Context, url string) error
	// FindCards возвращает снимки карточек в порядке документа и
	// предупреждения по узлам, снять которые не удалось
	FindCards(ctx context.Context, xpath string) ([]AdCard, []string, error)
}

type Scraper struct {
	selectors   *Selectors
	scroll      *ScrollDriver
	extractor   *Extractor
	initialWait time.Duration
	logger      *observability.Logger
}

func NewScraper(
	selectors *Selectors,
	scroll *ScrollDriver,
	extractor *Extractor,
	initialWait time.Duration,
	logger *observability.Logger,
) *Scraper {
	return &Scraper{
		selectors:   selectors,
		scroll:      scroll,
		extractor:   extractor,
		initialWait: initialWait,
		logger:      logger,
	}
}

// Scrape открывает листинг, докручивает его до конца и разбирает карточки
func (s *Scraper) Scrape(ctx context.Context, page Page, listingURL string) (*Result, error) {
	s.logger.Info("Opening listing", "url", listingURL)

	if err := page.Navigate(ctx, listingURL); err != nil {
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}

	// Даём странице отрисовать первую порцию карточек
	if err := sleepContext(ctx, s.initialWait); err != nil {
		return nil, err
	}

	stats, err := s.scroll.Run(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("scroll interrupted: %w", err)
	}

	s.logger.Info("Scroll finished",
		"iterations", stats.Iterations,
		"final_height", stats.FinalHeight,
		"stabilized", stats.Stabilized,
		"reason", stats.StopReason,
	)

	cards, warnings, err := page.FindCards(ctx, s.selectors.CardXPath)
	if err != nil {
		return nil, fmt.Errorf("failed to locate ad cards: %w", err)
	}

	result := s.ExtractAll(ctx, cards)
	result.Scroll = stats
	result.Warnings = append(warnings, result.Warnings...)

	return result, nil
}

// ExtractAll разбирает уже найденные карточки. Ошибка одной карточки
// превращается в предупреждение и не влияет на остальные.
func (s *Scraper) ExtractAll(ctx context.Context, cards []AdCard) *Result {
	result := &Result{CardsSeen: len(cards)}
	seen := NewSeenIDSet()

	var skippedNoID, skippedDup int

	for i, card := range cards {
		if ctx.Err() != nil {
			s.logger.Warn("Extraction cancelled", "card_num", i+1, "remaining", len(cards)-i)
			break
		}

		rec, warnings, err := s.extractOne(ctx, card, seen)
		for _, w := range warnings {
			s.logger.Warn("Card warning", "card_num", i+1, "warning", w)
		}
		result.Warnings = append(result.Warnings, warnings...)

		switch {
		case errors.Is(err, ErrNoLibraryID):
			skippedNoID++
			continue
		case errors.Is(err, ErrDuplicate):
			skippedDup++
			continue
		case err != nil:
			msg := fmt.Sprintf("card %d: %v", i+1, err)
			s.logger.Warn("Failed to parse card", "card_num", i+1, "error", err.Error())
			result.Warnings = append(result.Warnings, msg)
			continue
		}

		result.Records = append(result.Records, *rec)
		if rec.MediaPath != "" {
			result.Previews = append(result.Previews, Preview{ContentType: rec.ContentType, Path: rec.MediaPath})
		}

		s.logger.Debug("Card info",
			"card_num", i+1,
			"library_id", rec.LibraryID,
			"advertiser", rec.AdvertiserName,
			"content_type", rec.ContentType.String(),
		)
	}

	s.logger.Info("Extraction completed",
		"cards_seen", len(cards),
		"records", len(result.Records),
		"skipped_no_id", skippedNoID,
		"skipped_duplicate", skippedDup,
		"warnings", len(result.Warnings),
	)

	return result
}

// extractOne изолирует карточку: паника при разборе становится ошибкой этой карточки
func (s *Scraper) extractOne(ctx context.Context, card AdCard, seen *SeenIDSet) (rec *AdRecord, warnings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("panic while parsing card: %v", r)
		}
	}()
	return s.extractor.Extract(ctx, card, seen)
}
