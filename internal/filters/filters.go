// Package filters holds the German word lists that decide which tokens are
// vocabulary and which multi-word strings should be kept together.
package filters

import (
	"strings"
	"unicode"
)

// Rules decides what the extractor keeps. Swap the implementation to change
// the rule set without touching extraction.
type Rules interface {
	IsFunctionWord(token string) bool
	LooksLikePhrase(text string) bool
}

var articles = set(
	"der", "die", "das",
	"den", "dem", "des",
	"ein", "eine", "einer", "einen", "einem", "eines",
)

var pronouns = set(
	"ich", "du", "er", "sie", "es", "wir", "ihr",
	"mein", "meine", "meiner", "meinen", "meinem", "meines",
	"dein", "deine", "deiner", "deinen", "deinem", "deines",
	"sein", "seine", "seiner", "seinen", "seinem", "seines",
	"ihre", "ihrer", "ihren", "ihrem", "ihres",
	"unser", "unsere", "unserer", "unseren", "unserem", "unseres",
	"euer", "eure", "eurer", "euren", "eurem", "eures",
	"dieser", "diese", "dieses", "diesen", "diesem",
	"jener", "jene", "jenes", "jenen", "jenem",
	"wer", "was", "welcher", "welche", "welches",
	"mich", "mir", "dich", "dir", "sich", "uns", "euch",
)

var prepositions = set(
	"an", "auf", "aus", "bei", "durch", "für", "gegen", "hinter",
	"in", "mit", "nach", "neben", "ohne", "über", "um", "unter",
	"von", "vor", "zu", "zwischen",
)

var conjunctions = set(
	"und", "oder", "aber", "denn", "sondern", "dass", "weil", "wenn",
	"als", "wie", "ob", "bis", "seit", "während", "bevor", "nachdem",
)

var reflexives = set("sich", "mich", "dich", "uns", "euch")

// German is the default rule set.
type German struct{}

// IsFunctionWord reports whether token is an article, pronoun, preposition or conjunction.
func (German) IsFunctionWord(token string) bool {
	return IsFunctionWord(token)
}

// LooksLikePhrase reports whether text is a collocation to keep as one entry.
func (German) LooksLikePhrase(text string) bool {
	return LooksLikePhrase(text)
}

// IsFunctionWord is the package-level form of German.IsFunctionWord.
func IsFunctionWord(token string) bool {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return false
	}
	_, a := articles[t]
	_, p := pronouns[t]
	_, pr := prepositions[t]
	_, c := conjunctions[t]
	return a || p || pr || c
}

// IsArticle reports whether token is a definite or indefinite article in any case.
func IsArticle(token string) bool {
	_, ok := articles[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// LooksLikePhrase is true for multi-token strings shaped like a German
// collocation rather than a list of separate words:
//   - reflexive verbs: "sich freuen", "sich freuen auf", "sich kümmern um"
//   - verb + preposition government: "warten auf", "teilnehmen an"
//   - "zu" + infinitive or noun + verb idioms: "Bescheid sagen", "Rad fahren"
//   - a preposition or article framing content words: "zu Hause", "im Voraus"
//
// Two or more capitalised nouns in a row ("Hund Katze") and bare lists of
// lowercase words without a function word are not phrases.
func LooksLikePhrase(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return false
	}

	var content, function int
	hasReflexive := false
	for _, tok := range tokens {
		low := strings.ToLower(tok)
		if _, ok := reflexives[low]; ok {
			hasReflexive = true
		}
		if IsFunctionWord(low) || isContraction(low) {
			function++
			continue
		}
		content++
	}
	if content == 0 {
		return false
	}

	first := strings.ToLower(tokens[0])
	last := strings.ToLower(tokens[len(tokens)-1])

	// sich + verb (+ preposition)
	if hasReflexive {
		_, firstReflexive := reflexives[first]
		if firstReflexive && isVerbLike(tokens[1]) {
			return true
		}
	}

	// verb + governed preposition: "warten auf"
	if len(tokens) == 2 && isVerbLike(tokens[0]) {
		if _, ok := prepositions[last]; ok {
			return true
		}
	}

	// "zu Hause", "im Voraus", "am Ende"
	if len(tokens) == 2 && (isPreposition(first) || isContraction(first)) && isCapitalized(tokens[1]) {
		return true
	}

	// noun + verb idiom: "Bescheid sagen", "Rad fahren"
	if len(tokens) == 2 && isCapitalized(tokens[0]) && isVerbLike(tokens[1]) && !isCapitalized(tokens[1]) {
		return true
	}

	// longer expressions that mix function words with content: "auf jeden Fall"
	if len(tokens) >= 3 && function >= 1 && content >= 1 && !isCapitalized(tokens[0]) {
		return isPreposition(first) || hasReflexive
	}

	return false
}

func isPreposition(token string) bool {
	_, ok := prepositions[strings.ToLower(token)]
	return ok
}

// isContraction covers preposition+article contractions.
func isContraction(token string) bool {
	switch strings.ToLower(token) {
	case "am", "im", "zum", "zur", "vom", "beim", "ins", "ans", "aufs":
		return true
	}
	return false
}

func isCapitalized(token string) bool {
	for _, r := range token {
		return unicode.IsUpper(r)
	}
	return false
}

// isVerbLike is a lowercase token with an infinitive ending.
func isVerbLike(token string) bool {
	if isCapitalized(token) {
		return false
	}
	t := strings.ToLower(token)
	if len([]rune(t)) < 3 || IsFunctionWord(t) {
		return false
	}
	return strings.HasSuffix(t, "en") || strings.HasSuffix(t, "eln") || strings.HasSuffix(t, "ern")
}

// SplitLeadingArticle separates "der Hund" into ("der", "Hund").
// Only der/die/das count; the article is returned lowercased.
func SplitLeadingArticle(text string) (article, rest string) {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", text
	}
	switch low := strings.ToLower(fields[0]); low {
	case "der", "die", "das":
		return low, strings.Join(fields[1:], " ")
	}
	return "", text
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
