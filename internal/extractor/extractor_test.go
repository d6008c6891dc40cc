package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_DropsArticlesAndCollapsesVerbForms(t *testing.T) {
	t.Parallel()

	got := Extract("Hund, die Katze, laufen lief gelaufen")
	assert.Equal(t, []string{"Hund", "Katze", "laufen"}, got)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "empty input",
			raw:  "",
			want: []string{},
		},
		{
			name: "only punctuation and numbers",
			raw:  "1. ,,, ;; 42\n---",
			want: []string{},
		},
		{
			name: "one word per line with numbering and bullets",
			raw:  "1. Hund\n2) Katze\n- Maus\n• Vogel",
			want: []string{"Hund", "Katze", "Maus", "Vogel"},
		},
		{
			name: "space-separated unrelated verbs collapse like principal parts",
			raw:  "kaufen verkaufen bezahlen",
			want: []string{"kaufen"},
		},
		{
			name: "comma-separated verbs stay separate",
			raw:  "kaufen, verkaufen, bezahlen",
			want: []string{"kaufen", "verkaufen", "bezahlen"},
		},
		{
			name: "case-insensitive duplicates keep first form",
			raw:  "Hund\nhund\nHUND, Katze",
			want: []string{"Hund", "Katze"},
		},
		{
			name: "dash and colon glosses",
			raw:  "Hund - dog\nKatze: cat\nVogel (bird)",
			want: []string{"Hund", "Katze", "Vogel"},
		},
		{
			name: "cyrillic translation removed",
			raw:  "sich entwickeln развиваться\nder Eigentümer,-= der Besitzer,/ владелец",
			want: []string{"sich entwickeln", "Eigentümer"},
		},
		{
			name: "column separated translation",
			raw:  "Anfang\tbeginning\nEnde     end\nMitte=middle",
			want: []string{"Anfang", "Ende", "Mitte"},
		},
		{
			name: "separable verb forms",
			raw:  "anfangen fing an angefangen",
			want: []string{"anfangen"},
		},
		{
			name: "phrases stay intact",
			raw:  "sich freuen auf; warten auf, zu Hause",
			want: []string{"sich freuen auf", "warten auf", "zu Hause"},
		},
		{
			name: "plain word list is split",
			raw:  "Hund Katze Maus",
			want: []string{"Hund", "Katze", "Maus"},
		},
		{
			name: "function words alone are dropped",
			raw:  "und\noder\nder\nsich",
			want: []string{},
		},
		{
			name: "windows line endings",
			raw:  "Hund\r\nKatze\r\n",
			want: []string{"Hund", "Katze"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Extract(tt.raw))
		})
	}
}

type listRules struct {
	stop map[string]bool
}

func (r listRules) IsFunctionWord(token string) bool { return r.stop[strings.ToLower(token)] }
func (r listRules) LooksLikePhrase(string) bool      { return true }

func TestExtractor_UsesProvidedRules(t *testing.T) {
	t.Parallel()

	e := New(listRules{stop: map[string]bool{"katze": true}})
	got := e.Extract("Hund Maus, Katze")

	require.Len(t, got, 1)
	assert.Equal(t, "Hund Maus", got[0])
}

func TestExtract_NeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []string{"\x00\x01", "((((", "::::", "= = =", "\t\t\t", "ü", strings.Repeat("a, ", 1000)}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Extract(in) })
	}
}
