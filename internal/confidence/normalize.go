package confidence

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// folder performs Unicode case folding for comparisons. Folding (rather
// than lowercasing) handles names like "İnci" and "Straße" correctly.
var folder = cases.Fold()

// foldEqual reports whether two strings are equal under Unicode case
// folding, ignoring surrounding whitespace.
func foldEqual(a, b string) bool {
	return folder.String(strings.TrimSpace(a)) == folder.String(strings.TrimSpace(b))
}

// nameTokens splits a name into folded tokens, dropping punctuation.
// "Doe, Jane M." and "jane m doe" tokenize identically up to order.
func nameTokens(name string) []string {
	folded := folder.String(name)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// nameSimilarity scores how well a listed name matches a known name,
// in [0,100]. Exact token-set equality scores 100, containment (one name's
// tokens are a subset of the other's, covering middle names and suffixes)
// scores 90, and anything else scores by token overlap scaled to top out
// at 80 so partial overlap alone can never look like an exact match.
func nameSimilarity(known, listed string) float64 {
	knownTokens := nameTokens(known)
	listedTokens := nameTokens(listed)
	if len(knownTokens) == 0 || len(listedTokens) == 0 {
		return 0
	}

	knownSet := tokenSet(knownTokens)
	listedSet := tokenSet(listedTokens)

	inter := 0
	for tok := range knownSet {
		if listedSet[tok] {
			inter++
		}
	}

	switch {
	case inter == len(knownSet) && inter == len(listedSet):
		return 100
	case inter == len(knownSet) || inter == len(listedSet):
		return 90
	default:
		union := len(knownSet) + len(listedSet) - inter
		return 80 * float64(inter) / float64(union)
	}
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// digits strips everything but decimal digits from a phone number, and
// drops a leading US country code so "+1 (512) 555-0143" and
// "512-555-0143" compare equal.
func digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) == 11 && d[0] == '1' {
		return d[1:]
	}
	return d
}

// lastN returns the last n bytes of s, or s itself when shorter.
func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
