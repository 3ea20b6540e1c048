package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var spaceRun = regexp.MustCompile(`[ \t\f\v]+`)

type Options struct {
	TrimNBSP       bool
	CollapseSpaces bool
}

type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Lines разбивает innerText карточки на очищенные непустые строки
func (n *Normalizer) Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = n.CleanText(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// CleanText убирает NBSP и схлопывает пробелы в пределах одной строки
func (n *Normalizer) CleanText(text string) string {
	if n.opts.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.opts.CollapseSpaces {
		text = spaceRun.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}

// Truncate обрезает текст до maxChars символов (не байт), добавляя "…"
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:maxChars-1])

	// Для текста режем по последнему пробелу, URL режем как есть
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "…"
}
