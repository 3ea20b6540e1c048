package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"adlib-crawler/internal/browser"
	"adlib-crawler/internal/export"
	"adlib-crawler/internal/normalize"
	"adlib-crawler/internal/observability"
	"adlib-crawler/internal/scraper"
)

type Config struct {
	Rod           RodConfig           `yaml:"rod"`
	Scroll        ScrollConfig        `yaml:"scroll"`
	Media         MediaConfig         `yaml:"media"`
	Target        TargetConfig        `yaml:"target"`
	SelectorsFile string              `yaml:"selectors_file"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`

	baseDir string
}

type RodConfig struct {
	ChromePath   string `yaml:"chrome_path"`
	Headless     bool   `yaml:"headless"`
	WindowSize   string `yaml:"window_size"`
	PageTimeoutS int    `yaml:"page_timeout_s"`
	InitialWaitS int    `yaml:"initial_wait_s"`
}

type ScrollConfig struct {
	PauseMS      int `yaml:"pause_ms"`
	MaxScrolls   int `yaml:"max_scrolls"`
	StableRounds int `yaml:"stable_rounds"`
}

type MediaConfig struct {
	TimeoutS  int    `yaml:"timeout_s"`
	UserAgent string `yaml:"user_agent"`
}

type TargetConfig struct {
	URLPattern    string `yaml:"url_pattern"`
	AdURLTemplate string `yaml:"ad_url_template"`
}

type NormalizeConfig struct {
	TrimNBSP       bool `yaml:"trim_nbsp"`
	CollapseSpaces bool `yaml:"collapse_spaces"`
}

type OutputConfig struct {
	Dir          string   `yaml:"dir"`
	Fields       []string `yaml:"fields"`
	Content      bool     `yaml:"content"`
	BOM          bool     `yaml:"bom"`
	PreviewLimit int      `yaml:"preview_limit"`
	MaxCellChars int      `yaml:"max_cell_chars"`
}

type ObservabilityConfig struct {
	LogPath    string `yaml:"log_path"`
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default значения, повторяющие поведение исходного инструмента
func Default() *Config {
	return &Config{
		Rod: RodConfig{
			Headless:     true,
			WindowSize:   "1920,1080",
			PageTimeoutS: 60,
			InitialWaitS: 5,
		},
		Scroll: ScrollConfig{
			PauseMS:      2000,
			MaxScrolls:   50,
			StableRounds: 1,
		},
		Media: MediaConfig{
			TimeoutS: 10,
		},
		Target: TargetConfig{
			URLPattern:    `^https://www\.facebook\.com/ads/library/.*`,
			AdURLTemplate: scraper.DefaultAdURLTemplate,
		},
		Normalize: NormalizeConfig{
			TrimNBSP:       true,
			CollapseSpaces: true,
		},
		Output: OutputConfig{
			Dir:          ".",
			BOM:          true,
			PreviewLimit: 10,
			MaxCellChars: 60,
		},
		Observability: ObservabilityConfig{
			LogLevel:   "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.Rod.PageTimeoutS <= 0 {
		return fmt.Errorf("rod.page_timeout_s must be > 0")
	}
	if c.Rod.InitialWaitS < 0 {
		return fmt.Errorf("rod.initial_wait_s must be >= 0")
	}
	if c.Scroll.PauseMS < 0 {
		return fmt.Errorf("scroll.pause_ms must be >= 0")
	}
	if c.Scroll.MaxScrolls <= 0 {
		return fmt.Errorf("scroll.max_scrolls must be > 0")
	}
	if c.Scroll.StableRounds <= 0 {
		return fmt.Errorf("scroll.stable_rounds must be > 0")
	}
	if c.Media.TimeoutS <= 0 {
		return fmt.Errorf("media.timeout_s must be > 0")
	}
	if c.Target.URLPattern == "" {
		return fmt.Errorf("target.url_pattern is required")
	}
	if _, err := regexp.Compile(c.Target.URLPattern); err != nil {
		return fmt.Errorf("target.url_pattern is not a valid regexp: %w", err)
	}
	if strings.Count(c.Target.AdURLTemplate, "%s") != 1 {
		return fmt.Errorf("target.ad_url_template must contain exactly one %%s")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if _, err := export.ParseFields(c.Output.Fields); err != nil {
		return fmt.Errorf("output.fields: %w", err)
	}
	if c.Output.PreviewLimit < 0 {
		return fmt.Errorf("output.preview_limit must be >= 0")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	return nil
}

// Getters
func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodInitialWait() time.Duration {
	return time.Duration(c.Rod.InitialWaitS) * time.Second
}

func (c *Config) GetScrollPause() time.Duration {
	return time.Duration(c.Scroll.PauseMS) * time.Millisecond
}

func (c *Config) GetMediaTimeout() time.Duration {
	return time.Duration(c.Media.TimeoutS) * time.Second
}

// Fields выбранные колонки; Validate уже проверил список
func (c *Config) Fields() export.Fields {
	f, _ := export.ParseFields(c.Output.Fields)
	return f
}

func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		ChromePath:  c.Rod.ChromePath,
		Headless:    c.Rod.Headless,
		WindowSize:  c.Rod.WindowSize,
		PageTimeout: c.GetRodPageTimeout(),
	}
}

func (c *Config) ScrollOptions() scraper.ScrollOptions {
	return scraper.ScrollOptions{
		Pause:        c.GetScrollPause(),
		MaxScrolls:   c.Scroll.MaxScrolls,
		StableRounds: c.Scroll.StableRounds,
	}
}

func (c *Config) NormalizeOptions() normalize.Options {
	return normalize.Options{
		TrimNBSP:       c.Normalize.TrimNBSP,
		CollapseSpaces: c.Normalize.CollapseSpaces,
	}
}

func (c *Config) LoggerOptions() observability.Options {
	return observability.Options{
		LogPath:    c.Observability.LogPath,
		LogLevel:   c.Observability.LogLevel,
		MaxSizeMB:  c.Observability.MaxSizeMB,
		MaxBackups: c.Observability.MaxBackups,
		MaxAgeDays: c.Observability.MaxAgeDays,
	}
}
