package scraper

import (
	"context"
	"time"

	"adlib-crawler/internal/observability"
)

// Scrollable часть браузерной страницы, нужная для прокрутки
type Scrollable interface {
	ScrollHeight(ctx context.Context) (int, error)
	ScrollToBottom(ctx context.Context) error
}

type ScrollOptions struct {
	Pause        time.Duration
	MaxScrolls   int
	StableRounds int
}

type ScrollStats struct {
	Iterations  int
	FinalHeight int
	Stabilized  bool
	StopReason  string
}

type ScrollDriver struct {
	opts   ScrollOptions
	logger *observability.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewScrollDriver(opts ScrollOptions, logger *observability.Logger) *ScrollDriver {
	if opts.StableRounds < 1 {
		opts.StableRounds = 1
	}
	return &ScrollDriver{
		opts:   opts,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Run прокручивает страницу вниз, пока высота растёт, но не более MaxScrolls раз.
// Упереться в лимит не ошибка: дальше работаем с тем, что успело загрузиться.
// Ошибка возвращается только при отмене ctx.
func (d *ScrollDriver) Run(ctx context.Context, page Scrollable) (ScrollStats, error) {
	stats := ScrollStats{}

	lastHeight, err := page.ScrollHeight(ctx)
	if err != nil {
		d.logger.Warn("Failed to read initial scroll height", "error", err.Error())
		stats.StopReason = "initial height unavailable"
		return stats, ctx.Err()
	}
	stats.FinalHeight = lastHeight

	stableRounds := 0
	for i := 0; i < d.opts.MaxScrolls; i++ {
		if err := page.ScrollToBottom(ctx); err != nil {
			d.logger.Warn("Scroll command failed", "iteration", i+1, "error", err.Error())
			stats.StopReason = "scroll command failed"
			return stats, ctx.Err()
		}
		stats.Iterations++

		if err := d.sleep(ctx, d.opts.Pause); err != nil {
			stats.StopReason = "cancelled"
			return stats, err
		}

		newHeight, err := page.ScrollHeight(ctx)
		if err != nil {
			d.logger.Warn("Failed to read scroll height", "iteration", i+1, "error", err.Error())
			stats.StopReason = "height unavailable"
			return stats, ctx.Err()
		}

		d.logger.Debug("Scroll iteration",
			"iteration", i+1,
			"last_height", lastHeight,
			"new_height", newHeight,
		)

		if newHeight == lastHeight {
			stableRounds++
			if stableRounds >= d.opts.StableRounds {
				stats.Stabilized = true
				stats.StopReason = "height stable"
				return stats, nil
			}
			continue
		}

		stableRounds = 0
		lastHeight = newHeight
		stats.FinalHeight = newHeight
	}

	stats.StopReason = "max scrolls reached"
	d.logger.Warn("Scroll limit reached, listing may be incomplete",
		"max_scrolls", d.opts.MaxScrolls,
		"final_height", stats.FinalHeight,
	)
	return stats, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
