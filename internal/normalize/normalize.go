// Package normalize provides the text rules shared by the roster index and
// the name formatter: accent folding, index tokens, name casing and surname
// extraction.
//
// All functions are pure and safe for concurrent use.
package normalize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxTokens is how many leading tokens of a name take part in indexing.
	MaxTokens = 3

	// MinTokenRunes is the shortest token (in runes) that is indexed.
	MinTokenRunes = 3
)

// prepositions are the name particles kept lowercase by FormatName and
// skipped by ExtractSurname.
var prepositions = map[string]bool{
	"de":  true,
	"da":  true,
	"do":  true,
	"dos": true,
	"das": true,
	"e":   true,
}

// IsPreposition reports whether token is one of the name particles.
func IsPreposition(token string) bool {
	return prepositions[strings.ToLower(token)]
}

// newAccentStripper returns a fresh transformer; transformers carry state and
// must not be shared between goroutines.
func newAccentStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// StripAccents removes combining marks, keeping case.
func StripAccents(s string) string {
	out, _, err := transform.String(newAccentStripper(), s)
	if err != nil {
		return s
	}
	return out
}

// Normalize returns the comparison form of v: any value is coerced to a
// string, lowercased, stripped of accents and whitespace-collapsed.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(v any) string {
	s := toString(v)
	if s == "" {
		return ""
	}
	// Lowercase before stripping: some uppercase letters lower to a base
	// letter plus a combining mark (U+0130).
	s = StripAccents(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Tokens returns the index tokens of a name: the first MaxTokens words of its
// normalized form, keeping only words of at least MinTokenRunes runes.
func Tokens(name string) []string {
	fields := strings.Fields(Normalize(name))
	if len(fields) > MaxTokens {
		fields = fields[:MaxTokens]
	}

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= MinTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// FormatName title-cases each word of name. Prepositions are lowercased
// unless they open the name, and a word with an apostrophe has both sides of
// the first apostrophe title-cased ("d'avila" -> "D'Avila"). Blank input is
// returned unchanged; otherwise runs of whitespace collapse to one space.
func FormatName(name string) string {
	if strings.TrimSpace(name) == "" {
		return name
	}

	caser := cases.Title(language.Und)
	words := strings.Fields(name)
	for i, w := range words {
		switch {
		case i > 0 && IsPreposition(w):
			words[i] = strings.ToLower(w)
		case strings.Contains(w, "'"):
			left, right, _ := strings.Cut(w, "'")
			words[i] = caser.String(left) + "'" + caser.String(right)
		default:
			words[i] = caser.String(w)
		}
	}
	return strings.Join(words, " ")
}

// ExtractSurname returns the last word of a formatted name that is not a
// preposition. When every word is a preposition the last word is returned,
// and blank input yields "".
func ExtractSurname(formatted string) string {
	words := strings.Fields(formatted)
	if len(words) == 0 {
		return ""
	}
	for i := len(words) - 1; i >= 0; i-- {
		if !IsPreposition(words[i]) {
			return words[i]
		}
	}
	return words[len(words)-1]
}
