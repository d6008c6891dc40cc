package models

import (
	"strings"
	"time"
)

// PendingTranslation marks an entry whose translation has not been resolved by a quiz yet.
// The translation column is NOT NULL, so the placeholder stands in for "unknown".
const PendingTranslation = "[pending]"

// WordType is the part of speech assigned to an entry
type WordType string

const (
	WordTypeNoun      WordType = "noun"
	WordTypeVerb      WordType = "verb"
	WordTypeAdjective WordType = "adjective"
	WordTypeAdverb    WordType = "adverb"
	WordTypePhrase    WordType = "phrase"
	WordTypeOther     WordType = "other"
)

// ParseWordType maps free-form classifier output onto a known word type.
func ParseWordType(s string) WordType {
	switch WordType(strings.ToLower(strings.TrimSpace(s))) {
	case WordTypeNoun:
		return WordTypeNoun
	case WordTypeVerb:
		return WordTypeVerb
	case WordTypeAdjective:
		return WordTypeAdjective
	case WordTypeAdverb:
		return WordTypeAdverb
	case WordTypePhrase:
		return WordTypePhrase
	default:
		return WordTypeOther
	}
}

// EntryStatus is the lifecycle state of an entry
type EntryStatus string

const (
	StatusActive  EntryStatus = "active"
	StatusDeleted EntryStatus = "deleted"
)

// VocabularyEntry is one German word or phrase owned by a user
type VocabularyEntry struct {
	ID                 int64       `json:"id" db:"id"`
	UserID             int64       `json:"user_id" db:"user_id"`
	Word               string      `json:"word" db:"word"`
	WordType           WordType    `json:"word_type" db:"word_type"`
	Article            *string     `json:"article,omitempty" db:"article"`
	Translation        string      `json:"translation" db:"translation"`
	Validated          bool        `json:"validated" db:"validated"`
	ValidationFeedback *string     `json:"validation_feedback,omitempty" db:"validation_feedback"`
	CorrectCount       int         `json:"correct_count" db:"correct_count"`
	IncorrectCount     int         `json:"incorrect_count" db:"incorrect_count"`
	TotalReviews       int         `json:"total_reviews" db:"total_reviews"`
	Status             EntryStatus `json:"status" db:"status"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	LastReviewedAt     *time.Time  `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
}

// DisplayForm returns "der Hund" for nouns with an article and the bare word otherwise.
func (e *VocabularyEntry) DisplayForm() string {
	if e.WordType == WordTypeNoun && e.Article != nil && *e.Article != "" {
		return *e.Article + " " + e.Word
	}
	return e.Word
}

// SuccessRate is the share of correct answers in percent, 0 before the first review.
func (e *VocabularyEntry) SuccessRate() float64 {
	if e.TotalReviews == 0 {
		return 0
	}
	return float64(e.CorrectCount) / float64(e.TotalReviews) * 100
}

// IsPending reports whether the translation still holds the placeholder.
func (e *VocabularyEntry) IsPending() bool {
	return e.Translation == PendingTranslation
}

// ArticleText returns the article or an empty string.
func (e *VocabularyEntry) ArticleText() string {
	if e.Article == nil {
		return ""
	}
	return *e.Article
}

// NormalizeWord is the case-insensitive key used for duplicate detection.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.Join(strings.Fields(word), " "))
}

// WordListing is an entry prepared for display
type WordListing struct {
	Entry       VocabularyEntry
	DisplayForm string
	SuccessRate float64
}
