package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims the string, collapses internal whitespace runs to a
// single space, and title-cases each word. Applied to usernames, category
// names, and recipe names so uniqueness comparisons see one canonical form.
func NormalizeName(name string) string {
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return ""
	}
	words := strings.Split(name, " ")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// CollapseWhitespace trims and collapses whitespace without changing case.
// Used for free-text fields (ingredients, preparation methods).
func CollapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// titleWord uppercases the first letter of a word and lowercases the rest.
func titleWord(w string) string {
	runes := []rune(w)
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}
