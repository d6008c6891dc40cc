// Package extractor turns pasted word lists and OCR output into candidate
// German vocabulary entries.
package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/example/deutschbot/internal/filters"
)

var (
	cyrillicPattern = regexp.MustCompile(`[а-яА-ЯёЁ]+`)
	// columns separated by "=", a run of tabs or 3+ spaces hold the translation
	columnPattern = regexp.MustCompile(`\t+| {3,}|=`)
	// ",-" ",/e" ",-en" gender and plural markers from textbook lists
	grammarMarkPattern = regexp.MustCompile(`,[-/][a-zäöüß]*`)
	// single-letter case abbreviations: A, D, G
	caseAbbrevPattern = regexp.MustCompile(`(?:^|\s)[ADG](?:\s|$)`)
	listPrefixPattern = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|[-*•·–—]\s+)`)
	segmentPattern    = regexp.MustCompile(`[,;•·]`)
	// gloss markers inside one segment: "Hund - dog", "Hund: dog", "Hund (dog)"
	glossPattern = regexp.MustCompile(`\s[-–—]\s|:|\(|\[`)
)

const trimSet = `.,;:!?"'()[]{}«»„“”‚‘’`

// Extractor splits raw text into candidates using a replaceable rule set.
type Extractor struct {
	rules filters.Rules
}

// New creates an extractor. A nil rule set falls back to filters.German.
func New(rules filters.Rules) *Extractor {
	if rules == nil {
		rules = filters.German{}
	}
	return &Extractor{rules: rules}
}

var defaultExtractor = New(nil)

// Extract runs the default German extractor.
func Extract(raw string) []string {
	return defaultExtractor.Extract(raw)
}

// Extract returns candidates in first-seen order, deduplicated case-insensitively.
// It never fails; unusable input yields an empty slice.
func (e *Extractor) Extract(raw string) []string {
	result := make([]string, 0)
	seen := make(map[string]struct{})

	add := func(candidate string) {
		candidate = strings.Trim(candidate, trimSet)
		candidate = strings.Join(strings.Fields(candidate), " ")
		if candidate == "" || !hasLetter(candidate) || e.rules.IsFunctionWord(candidate) {
			return
		}
		key := strings.ToLower(candidate)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		result = append(result, candidate)
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	for _, line := range strings.Split(raw, "\n") {
		for _, segment := range e.segments(line) {
			for _, candidate := range e.candidates(segment) {
				add(candidate)
			}
		}
	}

	return result
}

// segments strips the line-level gloss and splits the rest on list delimiters.
func (e *Extractor) segments(line string) []string {
	line = cyrillicPattern.ReplaceAllString(line, "")
	line = listPrefixPattern.ReplaceAllString(line, "")
	line = grammarMarkPattern.ReplaceAllString(line, "")

	if loc := columnPattern.FindStringIndex(line); loc != nil {
		line = line[:loc[0]]
	}
	line = caseAbbrevPattern.ReplaceAllString(line, " ")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	parts := segmentPattern.Split(line, -1)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if loc := glossPattern.FindStringIndex(part); loc != nil {
			part = part[:loc[0]]
		}
		part = strings.TrimSpace(part)
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// candidates applies verb-group collapsing and phrase detection to one segment.
func (e *Extractor) candidates(segment string) []string {
	words := make([]string, 0)
	for _, w := range strings.Fields(segment) {
		if w = strings.Trim(w, trimSet); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil
	}

	if isConjugationGroup(words) {
		return words[:1]
	}

	if len(words) > 1 && e.rules.LooksLikePhrase(strings.Join(words, " ")) {
		return []string{strings.Join(words, " ")}
	}

	return words
}

// isConjugationGroup matches "laufen lief gelaufen" and "anfangen fing an angefangen":
// an infinitive followed by lowercase principal parts.
// The forms are not checked against a common stem, so a line of unrelated
// verbs such as "kaufen verkaufen bezahlen" also matches and keeps only "kaufen".
func isConjugationGroup(words []string) bool {
	if len(words) < 3 {
		return false
	}
	first, second := words[0], words[1]
	if !isLower(first) || !isLower(second) || len([]rune(second)) <= 2 {
		return false
	}
	if filters.IsFunctionWord(second) || filters.IsFunctionWord(first) {
		return false
	}
	return strings.HasSuffix(first, "en") ||
		strings.HasSuffix(first, "eln") ||
		strings.HasSuffix(first, "ern") ||
		strings.HasSuffix(first, "n")
}

func isLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
