package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// separatorRe matches runs of underscores, whitespace and dashes,
// e.g. "Rest - Areas" -> "rest_areas".
var separatorRe = regexp.MustCompile(`[_\s-]+`)

// NormalizeCategory maps free-text category input to a canonical category.
// Known synonyms resolve to their layer; anything else passes through in
// normalized form. Blank input yields Other.
func (c *Catalog) NormalizeCategory(raw string) Category {
	key := normalizeKey(raw)
	if key == "" {
		return Other
	}
	if canonical, ok := c.synonyms[key]; ok {
		return canonical
	}
	return Category(key)
}

// normalizeKey lowercases and collapses separators to a single underscore.
func normalizeKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return separatorRe.ReplaceAllString(strings.ToLower(raw), "_")
}

// titleCase turns "fuel_depot" into "Fuel Depot".
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
