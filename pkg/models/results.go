package models

// SkipReason explains why a token was not stored
type SkipReason string

const (
	SkipDuplicate                 SkipReason = "duplicate"
	SkipClassificationUnavailable SkipReason = "classification_unavailable"
	SkipStorageUnavailable        SkipReason = "storage_unavailable"
	SkipInvalid                   SkipReason = "invalid"
)

// SkippedToken is a candidate that did not become an entry
type SkippedToken struct {
	Token  string     `json:"token"`
	Reason SkipReason `json:"reason"`
	Err    error      `json:"-"`
}

// AddReport is the outcome of a bulk add
type AddReport struct {
	Added   []VocabularyEntry `json:"added"`
	Skipped []SkippedToken    `json:"skipped"`
}

// AddWordResult is the outcome of a single add
type AddWordResult struct {
	Entry          VocabularyEntry
	Classification Classification
	// ArticleAdded is true when the article came from the classifier rather than the user.
	ArticleAdded bool
}

// QuizOutcome is returned after an answer has been validated and recorded
type QuizOutcome struct {
	IsCorrect           bool
	Feedback            string
	AcceptedTranslation string
	WasFirstTranslation bool
	Entry               VocabularyEntry
}
