package slug

import (
	"regexp"
	"strings"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Latin letters with diacritics that appear in Portuguese and Spanish
	// names, folded to their ASCII base letter.
	fold = strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"í", "i", "ì", "i", "î", "i", "ï", "i", "ı", "i",
		"ó", "o", "ò", "o", "ô", "o", "õ", "o", "ö", "o",
		"ú", "u", "ù", "u", "û", "u", "ü", "u",
		"ç", "c", "ñ", "n", "ğ", "g", "ş", "s",
	)
)

// Generate builds a URL slug from a display name.
//
//   - "João Pedro"      → "joao-pedro"
//   - "  Ana   Conceição!" → "ana-conceicao"
func Generate(name string) string {
	s := fold.Replace(strings.ToLower(strings.TrimSpace(name)))
	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// Terms splits a slug back into the lower-case words it was built from.
// "carlos-silva" yields ["carlos" "silva"]; an empty or all-separator slug
// yields nil.
func Terms(s string) []string {
	terms := strings.FieldsFunc(Generate(s), func(r rune) bool { return r == '-' })
	if len(terms) == 0 {
		return nil
	}
	return terms
}
