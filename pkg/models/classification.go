package models

import "strings"

// Classification is the word type and article assigned by the language model
type Classification struct {
	WordType WordType `json:"word_type"`
	Article  *string  `json:"article,omitempty"`
}

// IsArticle reports whether s is one of the three definite nominative articles.
func IsArticle(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "der", "die", "das":
		return true
	}
	return false
}

// Normalize enforces "article is set if and only if the word is a noun".
// An article returned for a non-noun is dropped. A noun without a usable article
// takes the hint (the article the user typed) or is downgraded to WordTypeOther.
func (c Classification) Normalize(hint string) Classification {
	out := Classification{WordType: ParseWordType(string(c.WordType))}
	if out.WordType != WordTypeNoun {
		return out
	}

	var article string
	if c.Article != nil && IsArticle(*c.Article) {
		article = strings.ToLower(strings.TrimSpace(*c.Article))
	} else if IsArticle(hint) {
		article = strings.ToLower(strings.TrimSpace(hint))
	}
	if article == "" {
		return Classification{WordType: WordTypeOther}
	}
	out.Article = &article
	return out
}

// ValidationResult is the verdict on a quiz answer
type ValidationResult struct {
	IsCorrect           bool   `json:"is_correct"`
	Feedback            string `json:"feedback"`
	AcceptedTranslation string `json:"correct_translation"`
}

// BatchClassification is the merged outcome of classifying many words.
// Every requested word is a key of exactly one of the two maps.
type BatchClassification struct {
	Classified map[string]Classification
	Failed     map[string]error
}
