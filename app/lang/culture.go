package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Supported grammar cultures.
const (
	cultureEnUS = "en-us"
	cultureFrFR = "fr-fr"

	// CultureAny marks a registration that applies to every culture.
	CultureAny = "*"
)

var (
	supportedCultures = []string{cultureEnUS, cultureFrFR}
	supportedTags     = []language.Tag{language.AmericanEnglish, language.MustParse("fr-FR")}
	cultureMatcher    = language.NewMatcher(supportedTags)
)

// MatchCulture maps any BCP 47 culture name to the nearest supported grammar
// culture. Unknown or empty names fall back to en-us.
func MatchCulture(culture string) string {
	c := strings.ToLower(strings.TrimSpace(culture))
	for _, s := range supportedCultures {
		if c == s {
			return s
		}
	}
	tag, err := language.Parse(culture)
	if err != nil {
		return cultureEnUS
	}
	_, idx, conf := cultureMatcher.Match(tag)
	if conf == language.No {
		return cultureEnUS
	}
	return supportedCultures[idx]
}

// cultureTag returns the language tag of a supported culture.
func cultureTag(culture string) language.Tag {
	switch MatchCulture(culture) {
	case cultureFrFR:
		return supportedTags[1]
	default:
		return supportedTags[0]
	}
}

type cultureInfo struct {
	decimalSeparator rune
	groupSeparator   rune
	dayFirst         bool // d/m/y date order
}

func cultureInfoFor(culture string) cultureInfo {
	switch MatchCulture(culture) {
	case cultureFrFR:
		return cultureInfo{decimalSeparator: ',', groupSeparator: ' ', dayFirst: true}
	default:
		return cultureInfo{decimalSeparator: '.', groupSeparator: ','}
	}
}

// cultureMatches reports whether a registration for cultures applies to the
// already-matched culture.
func cultureMatches(cultures []string, culture string) bool {
	for _, c := range cultures {
		if c == CultureAny || c == culture {
			return true
		}
	}
	return false
}
