package decision

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/xrash/smetrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Jaro-Winkler parameters: boost weight and prefix length.
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Sanitize reduces message text to the form compared by the collector:
// mentions resolved to names, compatibility-normalized, accents stripped,
// lower-cased, whitespace collapsed.
func Sanitize(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// SanitizeMessage sanitizes a message with its mentions replaced by names.
func SanitizeMessage(m *discordgo.Message) string {
	if m == nil {
		return ""
	}
	return Sanitize(m.ContentWithMentionsReplaced())
}

// Similarity is the Jaro-Winkler similarity of two sanitized texts, in [0, 1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	ta, tb := runeTokens(a, b)
	return smetrics.JaroWinkler(ta, tb, jwBoostThreshold, jwPrefixSize)
}

// Token bytes for runes that occur in only one of the two texts. They never
// match anything on the other side.
const (
	tokenOnlyA  = 0
	tokenOnlyB  = 1
	firstShared = 2
)

// runeTokens rewrites a and b with one byte per rune so that smetrics, which
// compares bytes, scores characters. Runes present in both texts get distinct
// bytes; past 254 of them the rest are treated as unmatched, which can only
// lower the score.
func runeTokens(a, b string) (string, string) {
	inB := make(map[rune]struct{}, len(b))
	for _, r := range b {
		inB[r] = struct{}{}
	}

	codes := make(map[rune]byte)
	next := firstShared
	for _, r := range a {
		if next > 0xFF {
			break
		}
		if _, ok := inB[r]; !ok {
			continue
		}
		if _, ok := codes[r]; !ok {
			codes[r] = byte(next)
			next++
		}
	}

	return encodeRunes(a, codes, tokenOnlyA), encodeRunes(b, codes, tokenOnlyB)
}

func encodeRunes(s string, codes map[rune]byte, unmatched byte) string {
	out := make([]byte, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		if c, ok := codes[r]; ok {
			out = append(out, c)
		} else {
			out = append(out, unmatched)
		}
	}
	return string(out)
}
