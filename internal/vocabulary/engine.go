// Package vocabulary orchestrates extraction, classification and storage of
// a user's German vocabulary and records quiz answers.
package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/deutschbot/internal/extractor"
	"github.com/example/deutschbot/pkg/models"
)

const defaultBatchSize = 30

type entryStore interface {
	Create(ctx context.Context, entry *models.VocabularyEntry) (*models.VocabularyEntry, error)
	GetByID(ctx context.Context, id int64) (*models.VocabularyEntry, error)
	FindActiveByWord(ctx context.Context, userID int64, word string) (*models.VocabularyEntry, error)
	ActiveWords(ctx context.Context, userID int64, words []string) (map[string]bool, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]models.VocabularyEntry, error)
	CountForUser(ctx context.Context, userID int64) (int, error)
	PickRandomForUser(ctx context.Context, userID int64) (*models.VocabularyEntry, error)
	SearchForUser(ctx context.Context, userID int64, term string, limit int) ([]models.VocabularyEntry, error)
	UpdateReviewStats(ctx context.Context, id int64, wasCorrect bool, feedback string) (*models.VocabularyEntry, error)
	UpdateTranslation(ctx context.Context, id int64, translation string) (*models.VocabularyEntry, error)
	RecordAnswer(ctx context.Context, id int64, wasCorrect bool, feedback, translation string) (*models.VocabularyEntry, bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

type userStore interface {
	GetOrCreate(ctx context.Context, profile models.Profile) (*models.User, error)
}

type classifier interface {
	Classify(ctx context.Context, word string) (models.Classification, error)
	ClassifyBatch(ctx context.Context, words []string, batchSize int) models.BatchClassification
	ValidateAnswer(ctx context.Context, displayForm, answer string) (models.ValidationResult, error)
}

// Options tune the engine. Zero values select the defaults.
type Options struct {
	BatchSize int
	Extractor *extractor.Extractor
	Logger    *slog.Logger
}

// Engine is the entry point the conversation driver calls.
// It keeps no per-user state between calls.
type Engine struct {
	entries    entryStore
	users      userStore
	classifier classifier
	extractor  *extractor.Extractor
	batchSize  int
	log        *slog.Logger
}

// NewEngine creates an engine over the given store and classifier.
func NewEngine(entries entryStore, users userStore, cl classifier, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Extractor == nil {
		opts.Extractor = extractor.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		entries:    entries,
		users:      users,
		classifier: cl,
		extractor:  opts.Extractor,
		batchSize:  opts.BatchSize,
		log:        opts.Logger.With("component", "vocabulary"),
	}
}

// GetOrCreateUser returns the user behind a Telegram account and touches last_active.
func (e *Engine) GetOrCreateUser(ctx context.Context, profile models.Profile) (*models.User, error) {
	user, err := e.users.GetOrCreate(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user %d: %w", profile.TelegramID, err)
	}
	return user, nil
}

// ListWords returns active entries newest first, with display form and success rate.
func (e *Engine) ListWords(ctx context.Context, user *models.User, limit int) ([]models.WordListing, error) {
	entries, err := e.entries.ListForUser(ctx, user.ID, limit)
	if err != nil {
		return nil, err
	}
	return toListings(entries), nil
}

// CountWords returns the number of active entries.
func (e *Engine) CountWords(ctx context.Context, user *models.User) (int, error) {
	return e.entries.CountForUser(ctx, user.ID)
}

// SearchWords finds active entries whose word or translation contains term.
func (e *Engine) SearchWords(ctx context.Context, user *models.User, term string, limit int) ([]models.WordListing, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", models.ErrInvalidInput)
	}
	entries, err := e.entries.SearchForUser(ctx, user.ID, term, limit)
	if err != nil {
		return nil, err
	}
	return toListings(entries), nil
}

// GetEntry returns one of the user's active entries.
func (e *Engine) GetEntry(ctx context.Context, user *models.User, id int64) (*models.VocabularyEntry, error) {
	entry, err := e.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != user.ID || entry.Status != models.StatusActive {
		return nil, models.ErrNotFound
	}
	return entry, nil
}

// DeleteWord soft-deletes the user's active entry for rawWord. A typed article is ignored.
// It reports false when no such entry exists.
func (e *Engine) DeleteWord(ctx context.Context, user *models.User, rawWord string) (bool, error) {
	_, word := splitArticle(cleanWord(rawWord))
	if word == "" {
		return false, fmt.Errorf("%w: empty word", models.ErrInvalidInput)
	}

	entry, err := e.entries.FindActiveByWord(ctx, user.ID, word)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	deleted, err := e.entries.SoftDelete(ctx, entry.ID)
	if err != nil {
		return false, err
	}
	if deleted {
		e.log.Info("entry deleted", "user_id", user.ID, "entry_id", entry.ID, "word", entry.Word)
	}
	return deleted, nil
}

func toListings(entries []models.VocabularyEntry) []models.WordListing {
	out := make([]models.WordListing, 0, len(entries))
	for _, entry := range entries {
		out = append(out, models.WordListing{
			Entry:       entry,
			DisplayForm: entry.DisplayForm(),
			SuccessRate: entry.SuccessRate(),
		})
	}
	return out
}
