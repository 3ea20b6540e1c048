package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"adlib-crawler/internal/scraper"
)

// LoadSelectors загружает селекторы из YAML файла; незаданные ключи берутся по умолчанию
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	// Проверяем существование файла
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("selectors file not found: %s: %w", filePath, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close selectors file: %v\n", closeErr)
		}
	}()

	selectors := scraper.DefaultSelectors()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	if err := validateSelectors(selectors); err != nil {
		return nil, err
	}

	return selectors, nil
}

// Selectors возвращает селекторы из selectors_file или встроенные.
// Относительный путь считается от каталога конфига.
func (c *Config) Selectors() (*scraper.Selectors, error) {
	if c.SelectorsFile == "" {
		return scraper.DefaultSelectors(), nil
	}

	filePath := c.SelectorsFile
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(c.baseDir, filePath)
	}

	return LoadSelectors(filePath)
}

// validateSelectors проверяет минимальный набор селекторов
func validateSelectors(s *scraper.Selectors) error {
	if s.CardXPath == "" {
		return fmt.Errorf("card_xpath is required")
	}
	if s.LibraryIDLabel == "" {
		return fmt.Errorf("library_id_label is required")
	}
	if s.StartedMarker == "" {
		return fmt.Errorf("started_marker is required")
	}
	if s.LandingLink == "" {
		return fmt.Errorf("landing_link is required")
	}
	if s.RedirectParam == "" {
		return fmt.Errorf("redirect_param is required")
	}
	if s.AdvertiserName == "" {
		return fmt.Errorf("advertiser_name is required")
	}
	if s.Video == "" {
		return fmt.Errorf("video is required")
	}
	if s.Image == "" {
		return fmt.Errorf("image is required")
	}

	return nil
}
