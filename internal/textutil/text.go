// Package textutil holds the string normalizers shared by every provider
// adapter: whitespace cleanup, title casing, phone digits, URLs, timestamps,
// and stable hashes.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	trailingPunctRe = regexp.MustCompile(`[,;:!?]+$`)
	fiveDigitsRe    = regexp.MustCompile(`\d{5}`)
	stateRe         = regexp.MustCompile(`^[A-Z]{2}$`)
)

// upperAbbreviations stay fully uppercase after title casing.
var upperAbbreviations = map[string]bool{
	"ne": true,
	"nw": true,
	"se": true,
	"sw": true,
	"po": true,
}

// CleanText trims, collapses internal whitespace, and strips trailing
// punctuation. It returns "" when nothing is left.
func CleanText(s string) string {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	return trailingPunctRe.ReplaceAllString(cleaned, "")
}

// TitleCase lowercases s and uppercases the first rune of each
// space-separated word when it is a letter, so ordinals like "3rd" stay
// lowercase. Directional and PO abbreviations stay uppercase.
func TitleCase(s string) string {
	if s == "" {
		return ""
	}
	lower := cases.Lower(language.English)
	upper := cases.Upper(language.English)
	words := strings.Split(lower.String(s), " ")
	for i, w := range words {
		if upperAbbreviations[strings.ReplaceAll(w, ".", "")] {
			words[i] = upper.String(w)
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 || !unicode.IsLetter(r) {
			continue
		}
		words[i] = upper.String(w[:size]) + w[size:]
	}
	return strings.Join(words, " ")
}

// State uppercases a cleaned state value and truncates it to two characters.
// Anything that is not then two letters yields "".
func State(s string) string {
	s = strings.ToUpper(CleanText(s))
	if len(s) > 2 {
		s = s[:2]
	}
	if !stateRe.MatchString(s) {
		return ""
	}
	return s
}

// Zip returns the first run of five digits in s, or "" when there is none.
func Zip(s string) string {
	return fiveDigitsRe.FindString(CleanText(s))
}

// PhoneDigits strips everything but ASCII digits.
func PhoneDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
