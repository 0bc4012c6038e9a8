package decision

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	fixtures := []struct {
		in  string
		out string
	}{
		{"Buy   CRYPTO\nnow", "buy crypto now"},
		{"  padded  ", "padded"},
		{"ｆｒｅｅ ｎｉｔｒｏ", "free nitro"},
		{"Café crème", "cafe creme"},
		{"", ""},
	}
	for _, fix := range fixtures {
		assert.Equal(t, fix.out, Sanitize(fix.in), fix.in)
	}
}

func TestSanitizeMessageReplacesMentions(t *testing.T) {
	m := &discordgo.Message{
		Content:  "hey <@99> free nitro",
		Mentions: []*discordgo.User{{ID: "99", Username: "Bob"}},
	}
	assert.Equal(t, "hey @bob free nitro", SanitizeMessage(m))
	assert.Equal(t, "", SanitizeMessage(nil))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("same", "same"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("", "x"))

	near := Similarity(Sanitize("buy crypto now http://x"), Sanitize("buy crypto now http://x!!"))
	assert.GreaterOrEqual(t, near, 0.75)

	far := Similarity(Sanitize("buy crypto now http://x"), Sanitize("ok"))
	assert.Less(t, far, 0.75)
}

func TestSimilarityComparesCharacters(t *testing.T) {
	fixtures := []struct {
		text, other     string
		ascii, asciiAlt string
	}{
		{"ок", "ой", "ok", "oj"},
		{"нет", "нам", "net", "nam"},
		{"привет мир", "привет мир!", "privet mir", "privet mir!"},
		{"🍯🐻", "🍯🐝", "hb", "hx"},
	}
	for _, fix := range fixtures {
		got := Similarity(Sanitize(fix.text), Sanitize(fix.other))
		want := Similarity(fix.ascii, fix.asciiAlt)
		assert.InDelta(t, want, got, 1e-9, "%s vs %s", fix.text, fix.other)
	}

	assert.Less(t, Similarity("ок", "ой"), 0.75)
	assert.GreaterOrEqual(t, Similarity("бесплатный нитро тут", "бесплатный нитро тут!"), 0.75)
}

func TestRuneTokens(t *testing.T) {
	a, b := runeTokens("ок", "ой")
	assert.Equal(t, "\x02\x00", a)
	assert.Equal(t, "\x02\x01", b)

	a, b = runeTokens("abc", "xyz")
	assert.Equal(t, "\x00\x00\x00", a)
	assert.Equal(t, "\x01\x01\x01", b)
}
