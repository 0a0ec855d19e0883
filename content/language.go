package content

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

const defaultLanguage = "en"

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// siteLanguages are the languages the site publishes or plans to publish in.
var siteLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Japanese,
	lingua.Chinese,
	lingua.Korean,
	lingua.Ukrainian,
}

// DetectLanguage returns the ISO 639-1 code of text, "en" when undecided.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return defaultLanguage
	}
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(siteLanguages...).
			Build()
	})
	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return defaultLanguage
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
