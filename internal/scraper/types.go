package scraper

// NotAvailable подставляется вместо поля, которое не удалось извлечь
const NotAvailable = "N/A"

type ContentType int

const (
	ContentNone ContentType = iota
	ContentImage
	ContentVideo
)

// String возвращает подпись для таблицы (как в исходном UI)
func (c ContentType) String() string {
	switch c {
	case ContentImage:
		return "이미지"
	case ContentVideo:
		return "영상"
	default:
		return NotAvailable
	}
}

// AdCard снимок одного DOM-узла карточки; живёт только во время извлечения
type AdCard struct {
	Text string // innerText
	HTML string // outerHTML
}

type AdRecord struct {
	LibraryID      string
	AdvertiserName string
	StartedAt      string
	AdURL          string
	LandingURL     string
	ContentType    ContentType
	MediaPath      string
}

type Preview struct {
	ContentType ContentType
	Path        string
}

type Result struct {
	Records   []AdRecord
	Previews  []Preview
	Warnings  []string
	CardsSeen int
	Scroll    ScrollStats
}

type Selectors struct {
	CardXPath      string `yaml:"card_xpath"`
	LibraryIDLabel string `yaml:"library_id_label"`
	StartedMarker  string `yaml:"started_marker"`
	LandingLink    string `yaml:"landing_link"`
	RedirectParam  string `yaml:"redirect_param"`
	AdvertiserName string `yaml:"advertiser_name"`
	Video          string `yaml:"video"`
	VideoSource    string `yaml:"video_source"`
	Image          string `yaml:"image"`
}

// DefaultSelectors соответствуют корейской локали Ad Library
func DefaultSelectors() *Selectors {
	return &Selectors{
		CardXPath:      "//div[contains(@class, 'xh8yej3') and descendant::span[contains(text(), '게재 시작함')]]",
		LibraryIDLabel: "라이브러리 ID:",
		StartedMarker:  "게재 시작함",
		LandingLink:    "a[href*='l.php?u=']",
		RedirectParam:  "u",
		AdvertiserName: "a[href*='facebook.com'] > span",
		Video:          "video",
		VideoSource:    "video > source",
		Image:          "img.xh8yej3",
	}
}
