package format

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func printer(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// Rating formats a 0-10 score with one decimal using the locale's separator.
// Example: Rating(9.6, "de") => "9,6/10". A zero score formats as "".
func Rating(score float64, lang string) string {
	if score <= 0 {
		return ""
	}
	return printer(lang).Sprintf("%.1f", score) + "/10"
}

// Stars converts a 0-10 score into a 0-5 star count rounded to halves.
func Stars(score float64) float64 {
	if score <= 0 {
		return 0
	}
	if score > 10 {
		score = 10
	}
	halves := int(score + 0.5)
	return float64(halves) / 2
}

// Date formats time in a locale-friendly short form.
func Date(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ja", "zh":
		return t.Format("2006年1月2日")
	case "ko":
		return t.Format("2006년 1월 2일")
	case "de", "nl":
		return t.Format("02.01.2006")
	case "es", "fr", "th":
		return t.Format("02/01/2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}
