package api

import (
	"strings"
	"unicode"

	"github.com/rpupo63/portfolio-cms/errs"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases s, strips diacritics and collapses every run of
// characters that are neither letters nor digits into a single dash:
// "Web Développement" -> "web-developpement", "機械 学習" -> "機械-学習".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// categorySlug is Slugify for the category field; a category with no letter
// or digit has no slug and is rejected.
func categorySlug(category string) (string, error) {
	slug := Slugify(category)
	if slug == "" {
		return "", errs.NewInvalidFieldError("category", "must contain a letter or digit")
	}
	return slug, nil
}
