package vocabulary

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/deutschbot/pkg/models"
)

// PickQuizItem returns a random active entry or models.ErrNotFound for an empty list.
func (e *Engine) PickQuizItem(ctx context.Context, user *models.User) (*models.VocabularyEntry, error) {
	return e.entries.PickRandomForUser(ctx, user.ID)
}

// ValidateQuizAnswer checks answer against the entry, fills in the translation the
// first time the entry is quizzed and records the result.
func (e *Engine) ValidateQuizAnswer(ctx context.Context, entry *models.VocabularyEntry, answer string) (*models.QuizOutcome, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: empty answer", models.ErrInvalidInput)
	}

	// the caller's copy may be stale
	current, err := e.entries.GetByID(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusActive {
		return nil, models.ErrNotFound
	}

	verdict, err := e.classifier.ValidateAnswer(ctx, current.DisplayForm(), answer)
	if err != nil {
		e.log.Warn("answer validation failed", "entry_id", current.ID, "error", err)
		return nil, fmt.Errorf("failed to validate answer for %q: %w", current.Word, err)
	}

	accepted := verdict.AcceptedTranslation
	var fill string
	if current.IsPending() {
		fill = accepted
		if fill == "" {
			fill = answer
		}
	}

	// only one of several concurrent answers gets to fill the translation
	updated, firstTranslation, err := e.entries.RecordAnswer(ctx, current.ID, verdict.IsCorrect, verdict.Feedback, fill)
	if err != nil {
		return nil, err
	}
	if accepted == "" {
		accepted = updated.Translation
	}

	e.log.Info("quiz answer recorded",
		"user_id", updated.UserID,
		"entry_id", updated.ID,
		"correct", verdict.IsCorrect,
		"first_translation", firstTranslation,
	)

	return &models.QuizOutcome{
		IsCorrect:           verdict.IsCorrect,
		Feedback:            verdict.Feedback,
		AcceptedTranslation: accepted,
		WasFirstTranslation: firstTranslation,
		Entry:               *updated,
	}, nil
}
