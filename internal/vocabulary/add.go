package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/deutschbot/internal/filters"
	"github.com/example/deutschbot/pkg/models"
)

// AddSingleWord classifies and stores one word the user typed. A leading
// der/die/das is stripped and used as a hint when the classifier gives no article.
func (e *Engine) AddSingleWord(ctx context.Context, user *models.User, rawWord string) (*models.AddWordResult, error) {
	hint, word := splitArticle(cleanWord(rawWord))
	if word == "" {
		return nil, fmt.Errorf("%w: empty word", models.ErrInvalidInput)
	}

	existing, err := e.entries.FindActiveByWord(ctx, user.ID, word)
	if err == nil {
		return nil, fmt.Errorf("%w: %q is already in the list as %q", models.ErrDuplicateEntry, word, existing.DisplayForm())
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	classification, err := e.classifier.Classify(ctx, word)
	if err != nil {
		e.log.Warn("classification failed", "user_id", user.ID, "word", word, "error", err)
		return nil, fmt.Errorf("failed to classify %q: %w", word, err)
	}
	classification = classification.Normalize(hint)

	entry, err := e.entries.Create(ctx, newEntry(user.ID, word, classification))
	if err != nil {
		return nil, err
	}

	e.log.Info("word added", "user_id", user.ID, "entry_id", entry.ID, "word", entry.Word, "word_type", entry.WordType)

	return &models.AddWordResult{
		Entry:          *entry,
		Classification: classification,
		ArticleAdded:   classification.Article != nil && *classification.Article != hint,
	}, nil
}

// AddBulk extracts candidates from pasted text and stores them.
func (e *Engine) AddBulk(ctx context.Context, user *models.User, rawText string) models.AddReport {
	return e.AddFromExtractedTokens(ctx, user, e.extractor.Extract(rawText))
}

// ExtractTokens runs the extractor without storing anything, e.g. to show OCR output for review.
func (e *Engine) ExtractTokens(rawText string) []string {
	return e.extractor.Extract(rawText)
}

type candidate struct {
	word string
	hint string
}

// AddFromExtractedTokens stores already extracted tokens, e.g. an OCR list the user reviewed.
// Every token ends up either added or skipped with a reason; one failure never stops the rest.
func (e *Engine) AddFromExtractedTokens(ctx context.Context, user *models.User, tokens []string) models.AddReport {
	report := models.AddReport{
		Added:   make([]models.VocabularyEntry, 0, len(tokens)),
		Skipped: make([]models.SkippedToken, 0),
	}
	skip := func(token string, reason models.SkipReason, err error) {
		report.Skipped = append(report.Skipped, models.SkippedToken{Token: token, Reason: reason, Err: err})
	}

	candidates := make([]candidate, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		hint, word := splitArticle(cleanWord(token))
		switch {
		case word == "":
			continue
		case filters.IsFunctionWord(word):
			skip(word, models.SkipInvalid, models.ErrInvalidInput)
			continue
		case seen[models.NormalizeWord(word)]:
			skip(word, models.SkipDuplicate, models.ErrDuplicateEntry)
			continue
		}
		seen[models.NormalizeWord(word)] = true
		candidates = append(candidates, candidate{word: word, hint: hint})
	}
	if len(candidates) == 0 {
		return report
	}

	words := make([]string, 0, len(candidates))
	for _, c := range candidates {
		words = append(words, c.word)
	}

	existing, err := e.entries.ActiveWords(ctx, user.ID, words)
	if err != nil {
		// Create still rejects duplicates, so continue without the pre-check
		e.log.Warn("duplicate pre-check failed", "user_id", user.ID, "error", err)
		existing = map[string]bool{}
	}

	fresh := make([]candidate, 0, len(candidates))
	toClassify := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if existing[models.NormalizeWord(c.word)] {
			skip(c.word, models.SkipDuplicate, models.ErrDuplicateEntry)
			continue
		}
		fresh = append(fresh, c)
		toClassify = append(toClassify, c.word)
	}
	if len(fresh) == 0 {
		return report
	}

	batch := e.classifier.ClassifyBatch(ctx, toClassify, e.batchSize)

	for _, c := range fresh {
		classification, ok := batch.Classified[c.word]
		if !ok {
			err := batch.Failed[c.word]
			if err == nil {
				err = models.ErrClassificationUnavailable
			}
			e.log.Warn("word not classified", "user_id", user.ID, "word", c.word, "error", err)
			skip(c.word, models.SkipClassificationUnavailable, err)
			continue
		}

		entry, err := e.entries.Create(ctx, newEntry(user.ID, c.word, classification.Normalize(c.hint)))
		switch {
		case err == nil:
			report.Added = append(report.Added, *entry)
		case errors.Is(err, models.ErrDuplicateEntry):
			skip(c.word, models.SkipDuplicate, err)
		case errors.Is(err, models.ErrInvalidInput):
			skip(c.word, models.SkipInvalid, err)
		default:
			e.log.Error("failed to store word", "user_id", user.ID, "word", c.word, "error", err)
			skip(c.word, models.SkipStorageUnavailable, err)
		}
	}

	e.log.Info("bulk add finished", "user_id", user.ID, "added", len(report.Added), "skipped", len(report.Skipped))
	return report
}

func newEntry(userID int64, word string, c models.Classification) *models.VocabularyEntry {
	return &models.VocabularyEntry{
		UserID:      userID,
		Word:        word,
		WordType:    c.WordType,
		Article:     c.Article,
		Translation: models.PendingTranslation,
		Status:      models.StatusActive,
	}
}

// cleanWord trims surrounding punctuation and collapses inner whitespace.
func cleanWord(raw string) string {
	return strings.Trim(strings.Join(strings.Fields(raw), " "), `.,;:!?"'«»„“”`)
}

// splitArticle returns the typed article hint and the word without it.
func splitArticle(word string) (hint, rest string) {
	hint, rest = filters.SplitLeadingArticle(word)
	return hint, strings.TrimSpace(rest)
}
