package poems

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is one of the catalog's translation languages.
type Language string

const (
	Portuguese Language = "pt"
	English    Language = "en"
	Spanish    Language = "es"
)

// DefaultLanguage is used when nothing in the environment matches.
const DefaultLanguage = Portuguese

// Languages lists the supported languages in display order.
var Languages = []Language{Portuguese, English, Spanish}

var (
	supportedTags = []language.Tag{language.Portuguese, language.English, language.Spanish}
	matcher       = language.NewMatcher(supportedTags)
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	switch l {
	case Portuguese, English, Spanish:
		return true
	}
	return false
}

// Name returns the language's own name.
func (l Language) Name() string {
	switch l {
	case Portuguese:
		return "Português"
	case English:
		return "English"
	case Spanish:
		return "Español"
	default:
		return string(l)
	}
}

func (l Language) String() string { return string(l) }

// ParseLanguage accepts "pt", "en", "es" and any BCP 47 or POSIX locale
// that matches one of them ("pt_BR.UTF-8", "es-AR").
func ParseLanguage(s string) (Language, error) {
	l, ok := match(s)
	if !ok {
		return "", fmt.Errorf("unsupported language %q: use pt, en or es", s)
	}
	return l, nil
}

// DetectLanguage picks the first supported language among the given locale
// strings (typically $LC_ALL, $LC_MESSAGES, $LANG) and falls back to
// DefaultLanguage.
func DetectLanguage(locales ...string) Language {
	for _, s := range locales {
		if l, ok := match(s); ok {
			return l
		}
	}
	return DefaultLanguage
}

func match(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "C" || s == "POSIX" {
		return "", false
	}
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")

	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return Language(supportedTags[idx].String()), true
}
