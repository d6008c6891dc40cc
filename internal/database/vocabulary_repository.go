package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/example/deutschbot/pkg/models"
)

const vocabularyTable = "vocabulary"

var vocabularyColumns = []string{
	"id", "user_id", "word", "word_type", "article", "translation", "validated",
	"validation_feedback", "correct_count", "incorrect_count", "total_reviews",
	"status", "created_at", "last_reviewed_at",
}

// VocabularyRepository handles database operations for vocabulary entries.
// It is the only writer of the vocabulary table.
type VocabularyRepository struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

// NewVocabularyRepository creates a new repository instance
func NewVocabularyRepository(db *sqlx.DB) *VocabularyRepository {
	return &VocabularyRepository{
		db:  db,
		sb:  statementBuilder(db),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *VocabularyRepository) selectEntries() sq.SelectBuilder {
	return r.sb.Select(vocabularyColumns...).From(vocabularyTable)
}

func (r *VocabularyRepository) get(ctx context.Context, q sq.SelectBuilder) (*models.VocabularyEntry, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %v", err)
	}
	var entry models.VocabularyEntry
	if err := r.db.GetContext(ctx, &entry, query, args...); err != nil {
		return nil, wrapDBError(err)
	}
	return &entry, nil
}

func (r *VocabularyRepository) list(ctx context.Context, q sq.SelectBuilder) ([]models.VocabularyEntry, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %v", err)
	}
	entries := make([]models.VocabularyEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, wrapDBError(err)
	}
	return entries, nil
}

// Create inserts a new active entry. An active entry with the same word
// (case-insensitive) for the user yields models.ErrDuplicateEntry.
func (r *VocabularyRepository) Create(ctx context.Context, entry *models.VocabularyEntry) (*models.VocabularyEntry, error) {
	if entry == nil || strings.TrimSpace(entry.Word) == "" {
		return nil, fmt.Errorf("%w: word is required", models.ErrInvalidInput)
	}
	translation, normalized := entry.Translation, models.NormalizeWord(entry.Translation)
	if translation == "" || translation == models.PendingTranslation {
		translation, normalized = models.PendingTranslation, ""
	}
	wordType := entry.WordType
	if wordType == "" {
		wordType = models.WordTypeOther
	}

	insert := r.sb.Insert(vocabularyTable).
		Columns("user_id", "word", "word_normalized", "word_type", "article", "translation",
			"translation_normalized", "validated", "validation_feedback", "status", "created_at").
		Values(entry.UserID, entry.Word, models.NormalizeWord(entry.Word), wordType, entry.Article, translation,
			normalized, entry.Validated, entry.ValidationFeedback, models.StatusActive, r.now()).
		Suffix("RETURNING id")

	query, args, err := insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %v", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create entry %q: %w", entry.Word, wrapDBError(err))
	}

	return r.GetByID(ctx, id)
}

// GetByID returns an entry by ID regardless of its status
func (r *VocabularyRepository) GetByID(ctx context.Context, id int64) (*models.VocabularyEntry, error) {
	entry, err := r.get(ctx, r.selectEntries().Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("failed to get entry by ID: %w", err)
	}
	return entry, nil
}

// FindActiveByWord returns the user's active entry for word, compared case-insensitively
func (r *VocabularyRepository) FindActiveByWord(ctx context.Context, userID int64, word string) (*models.VocabularyEntry, error) {
	entry, err := r.get(ctx, r.selectEntries().Where(sq.Eq{
		"user_id":         userID,
		"word_normalized": models.NormalizeWord(word),
		"status":          models.StatusActive,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to find entry by word: %w", err)
	}
	return entry, nil
}

// ActiveWords returns the normalized forms among words that the user already has
func (r *VocabularyRepository) ActiveWords(ctx context.Context, userID int64, words []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(words) == 0 {
		return existing, nil
	}

	normalized := make([]string, 0, len(words))
	for _, w := range words {
		normalized = append(normalized, models.NormalizeWord(w))
	}

	query, args, err := r.sb.Select("word_normalized").From(vocabularyTable).
		Where(sq.Eq{"user_id": userID, "status": models.StatusActive, "word_normalized": normalized}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %v", err)
	}

	var found []string
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("failed to check existing words: %w", wrapDBError(err))
	}
	for _, w := range found {
		existing[w] = true
	}
	return existing, nil
}

// ListForUser returns active entries, most recently added first. limit <= 0 means no limit.
func (r *VocabularyRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]models.VocabularyEntry, error) {
	q := r.selectEntries().
		Where(sq.Eq{"user_id": userID, "status": models.StatusActive}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	entries, err := r.list(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// CountForUser returns the number of active entries
func (r *VocabularyRepository) CountForUser(ctx context.Context, userID int64) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").From(vocabularyTable).
		Where(sq.Eq{"user_id": userID, "status": models.StatusActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %v", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", wrapDBError(err))
	}
	return count, nil
}

// PickRandomForUser returns a uniformly random active entry or models.ErrNotFound
func (r *VocabularyRepository) PickRandomForUser(ctx context.Context, userID int64) (*models.VocabularyEntry, error) {
	entry, err := r.get(ctx, r.selectEntries().
		Where(sq.Eq{"user_id": userID, "status": models.StatusActive}).
		OrderBy("RANDOM()").
		Limit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to pick random entry: %w", err)
	}
	return entry, nil
}

// SearchForUser matches term as a case-insensitive substring of the word or the translation
func (r *VocabularyRepository) SearchForUser(ctx context.Context, userID int64, term string, limit int) ([]models.VocabularyEntry, error) {
	pattern := "%" + escapeLike(models.NormalizeWord(term)) + "%"
	q := r.selectEntries().
		Where(sq.Eq{"user_id": userID, "status": models.StatusActive}).
		Where(sq.Or{
			sq.Expr(`word_normalized LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`translation_normalized LIKE ? ESCAPE '\'`, pattern),
		}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	entries, err := r.list(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	return entries, nil
}

// UpdateReviewStats records one quiz answer. Counters are incremented in SQL
// so concurrent answers never overwrite each other.
func (r *VocabularyRepository) UpdateReviewStats(ctx context.Context, id int64, wasCorrect bool, feedback string) (*models.VocabularyEntry, error) {
	if err := r.exec(ctx, r.db, r.reviewUpdate(id, wasCorrect, feedback)); err != nil {
		return nil, fmt.Errorf("failed to update review stats: %w", err)
	}
	return r.GetByID(ctx, id)
}

// UpdateTranslation overwrites the translation and marks the entry as validated
func (r *VocabularyRepository) UpdateTranslation(ctx context.Context, id int64, translation string) (*models.VocabularyEntry, error) {
	update := r.sb.Update(vocabularyTable).
		Set("translation", translation).
		Set("translation_normalized", models.NormalizeWord(translation)).
		Set("validated", true).
		Where(sq.Eq{"id": id})

	if err := r.exec(ctx, r.db, update); err != nil {
		return nil, fmt.Errorf("failed to update translation: %w", err)
	}
	return r.GetByID(ctx, id)
}

// RecordAnswer stores one quiz answer in a single transaction. A non-empty
// translation is written only while the entry is still pending; filled reports
// whether this call was the one that wrote it.
func (r *VocabularyRepository) RecordAnswer(ctx context.Context, id int64, wasCorrect bool, feedback, translation string) (entry *models.VocabularyEntry, filled bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", wrapDBError(err))
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if translation != "" {
		if filled, err = r.fillPending(ctx, tx, id, translation); err != nil {
			return nil, false, fmt.Errorf("failed to fill translation: %w", err)
		}
	}

	if err = r.exec(ctx, tx, r.reviewUpdate(id, wasCorrect, feedback)); err != nil {
		return nil, false, fmt.Errorf("failed to update review stats: %w", err)
	}

	query, args, err := r.selectEntries().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build query: %v", err)
	}
	var updated models.VocabularyEntry
	if err = tx.GetContext(ctx, &updated, query, args...); err != nil {
		err = wrapDBError(err)
		return nil, false, fmt.Errorf("failed to get entry by ID: %w", err)
	}

	if err = tx.Commit(); err != nil {
		err = wrapDBError(err)
		return nil, false, fmt.Errorf("failed to commit answer: %w", err)
	}
	return &updated, filled, nil
}

func (r *VocabularyRepository) fillPending(ctx context.Context, ex sqlx.ExecerContext, id int64, translation string) (bool, error) {
	query, args, err := r.sb.Update(vocabularyTable).
		Set("translation", translation).
		Set("translation_normalized", models.NormalizeWord(translation)).
		Set("validated", true).
		Where(sq.Eq{"id": id, "translation": models.PendingTranslation}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %v", err)
	}

	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return false, wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError(err)
	}
	return n > 0, nil
}

// reviewUpdate only touches active entries
func (r *VocabularyRepository) reviewUpdate(id int64, wasCorrect bool, feedback string) sq.UpdateBuilder {
	correct, incorrect := 0, 1
	if wasCorrect {
		correct, incorrect = 1, 0
	}

	update := r.sb.Update(vocabularyTable).
		Set("correct_count", sq.Expr("correct_count + ?", correct)).
		Set("incorrect_count", sq.Expr("incorrect_count + ?", incorrect)).
		Set("total_reviews", sq.Expr("total_reviews + 1")).
		Set("last_reviewed_at", r.now())
	if feedback != "" {
		update = update.Set("validation_feedback", feedback)
	}
	return update.Where(sq.Eq{"id": id, "status": models.StatusActive})
}

// SoftDelete marks an active entry as deleted. It reports false when the entry
// was already deleted or does not exist.
func (r *VocabularyRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.sb.Update(vocabularyTable).
		Set("status", models.StatusDeleted).
		Where(sq.Eq{"id": id, "status": models.StatusActive}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %v", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", wrapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", wrapDBError(err))
	}
	return n > 0, nil
}

// exec runs an update that must touch exactly one row
func (r *VocabularyRepository) exec(ctx context.Context, ex sqlx.ExecerContext, update sq.UpdateBuilder) error {
	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %v", err)
	}
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
