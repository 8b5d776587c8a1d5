package i18n

import "strings"

type Lang string

const (
	RU Lang = "ru"
	KZ Lang = "kz"
	UZ Lang = "uz"
)

// Languages lists the supported languages in keyboard order.
var Languages = []Lang{RU, KZ, UZ}

type label struct {
	text   string
	tokens []string
}

var labels = map[Lang]label{
	RU: {text: "🇷🇺 Русский", tokens: []string{"Рус"}},
	KZ: {text: "🇰🇿 Қазақша", tokens: []string{"Қаз"}},
	UZ: {text: "🇺🇿 O‘zbekcha", tokens: []string{"O‘z", "O'z"}},
}

// Label returns the button text for a language.
func Label(lang Lang) string {
	return labels[lang].text
}

// Labels returns the button texts of all supported languages.
func Labels() []string {
	out := make([]string, 0, len(Languages))
	for _, l := range Languages {
		out = append(out, Label(l))
	}
	return out
}

// ResolveLanguage matches user text against the language labels. A bare tag
// ("ru", "kz", "uz") is accepted as well.
func ResolveLanguage(text string) (Lang, bool) {
	for _, l := range Languages {
		for _, token := range labels[l].tokens {
			if strings.Contains(text, token) {
				return l, true
			}
		}
	}
	if l, ok := Parse(text); ok {
		return l, true
	}
	return "", false
}

func Parse(s string) (Lang, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch Lang(s) {
	case RU, KZ, UZ:
		return Lang(s), true
	default:
		return "", false
	}
}
