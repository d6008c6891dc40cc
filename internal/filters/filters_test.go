package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFunctionWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  bool
	}{
		{"der", true},
		{"Die", true},
		{"EINEM", true},
		{"sich", true},
		{"über", true},
		{"weil", true},
		{"  und  ", true},
		{"Hund", false},
		{"laufen", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFunctionWord(tt.token))
			assert.Equal(t, tt.want, German{}.IsFunctionWord(tt.token))
		})
	}
}

func TestLooksLikePhrase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"single word", "Hund", false},
		{"article and noun", "die Katze", false},
		{"two nouns", "Hund Katze", false},
		{"reflexive verb", "sich freuen", true},
		{"reflexive verb with preposition", "sich freuen auf", true},
		{"verb with preposition", "warten auf", true},
		{"preposition and noun", "zu Hause", true},
		{"contraction and noun", "im Voraus", true},
		{"noun verb idiom", "Bescheid sagen", true},
		{"prepositional idiom", "auf jeden Fall", true},
		{"only function words", "der die das", false},
		{"conjugation list", "laufen lief gelaufen", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LooksLikePhrase(tt.text))
		})
	}
}

func TestSplitLeadingArticle(t *testing.T) {
	t.Parallel()

	article, rest := SplitLeadingArticle("Der Hund")
	assert.Equal(t, "der", article)
	assert.Equal(t, "Hund", rest)

	article, rest = SplitLeadingArticle("  das   kleine Haus ")
	assert.Equal(t, "das", article)
	assert.Equal(t, "kleine Haus", rest)

	article, rest = SplitLeadingArticle("Hund")
	assert.Empty(t, article)
	assert.Equal(t, "Hund", rest)

	// a bare article is the word itself, not a hint
	article, rest = SplitLeadingArticle("die")
	assert.Empty(t, article)
	assert.Equal(t, "die", rest)

	article, rest = SplitLeadingArticle("einen Hund")
	assert.Empty(t, article)
	assert.Equal(t, "einen Hund", rest)
}

func TestIsArticle(t *testing.T) {
	t.Parallel()

	assert.True(t, IsArticle("des"))
	assert.True(t, IsArticle("Eine"))
	assert.False(t, IsArticle("sich"))
}
