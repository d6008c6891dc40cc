package database

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/deutschbot/pkg/models"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(context.Background(), Config{Driver: DriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sqlx.DB, telegramID int64) *models.User {
	t.Helper()
	user, err := NewUserRepository(db).GetOrCreate(context.Background(), models.Profile{
		TelegramID: telegramID,
		Username:   "user",
		FirstName:  "Anna",
	})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string { return &s }

func noun(userID int64, word, article string) *models.VocabularyEntry {
	return &models.VocabularyEntry{
		UserID:   userID,
		Word:     word,
		WordType: models.WordTypeNoun,
		Article:  strPtr(article),
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(context.Background(), Config{Driver: "mysql"})
	require.Error(t, err)
}

func TestMigrate_IsRepeatable(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
}

func TestUserRepository_GetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, models.Profile{TelegramID: 42, Username: "anna", FirstName: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), first.TelegramID)
	assert.Equal(t, "en", first.LanguagePreference)

	repo.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	second, err := repo.GetOrCreate(ctx, models.Profile{TelegramID: 42, FirstName: "Anne"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "anna", second.Username, "empty profile fields keep the stored value")
	assert.Equal(t, "Anne", second.FirstName)
	assert.True(t, second.LastActive.After(first.LastActive))
	assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Second)

	_, err = repo.GetByTelegramID(ctx, 7)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserRepository_ListActiveWithVocabulary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	vocab := NewVocabularyRepository(db)

	withWords := createUser(t, db, 1)
	createUser(t, db, 2)
	_, err := vocab.Create(ctx, noun(withWords.ID, "Hund", "der"))
	require.NoError(t, err)

	users, err := NewUserRepository(db).ListActiveWithVocabulary(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, withWords.ID, users[0].ID)

	users, err = NewUserRepository(db).ListActiveWithVocabulary(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestVocabularyRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)

	entry, err := repo.Create(ctx, noun(user.ID, "Hund", "der"))
	require.NoError(t, err)

	assert.NotZero(t, entry.ID)
	assert.Equal(t, "Hund", entry.Word)
	assert.Equal(t, models.WordTypeNoun, entry.WordType)
	assert.Equal(t, "der", entry.ArticleText())
	assert.Equal(t, models.PendingTranslation, entry.Translation)
	assert.Equal(t, models.StatusActive, entry.Status)
	assert.Zero(t, entry.TotalReviews)
	assert.Nil(t, entry.LastReviewedAt)

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Word, got.Word)

	_, err = repo.GetByID(ctx, entry.ID+100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVocabularyRepository_CreateRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	anna := createUser(t, db, 1)
	ben := createUser(t, db, 2)

	_, err := repo.Create(ctx, noun(anna.ID, "Hund", "der"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, noun(anna.ID, "hund", "der"))
	assert.ErrorIs(t, err, models.ErrDuplicateEntry)

	_, err = repo.Create(ctx, noun(ben.ID, "Hund", "der"))
	assert.NoError(t, err, "another user may own the same word")

	count, err := repo.CountForUser(ctx, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVocabularyRepository_CreateRejectsArticleOnNonNoun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	user := createUser(t, db, 1)

	_, err := repo.Create(context.Background(), &models.VocabularyEntry{
		UserID:   user.ID,
		Word:     "laufen",
		WordType: models.WordTypeVerb,
		Article:  strPtr("das"),
	})
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestVocabularyRepository_ListForUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)
	other := createUser(t, db, 2)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, w := range []string{"Hund", "Katze", "Maus"} {
		repo.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := repo.Create(ctx, noun(user.ID, w, "die"))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, noun(other.ID, "Vogel", "der"))
	require.NoError(t, err)

	all, err := repo.ListForUser(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Maus", "Katze", "Hund"}, words(all))

	limited, err := repo.ListForUser(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maus", "Katze"}, words(limited))

	none, err := repo.ListForUser(ctx, 999, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVocabularyRepository_PickRandomCoversAllEntries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)

	_, err := repo.PickRandomForUser(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	for _, w := range []string{"Hund", "Katze", "Maus"} {
		_, err := repo.Create(ctx, noun(user.ID, w, "die"))
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 300 && len(seen) < 3; i++ {
		e, err := repo.PickRandomForUser(ctx, user.ID)
		require.NoError(t, err)
		seen[e.Word] = true
	}
	assert.Len(t, seen, 3)
}

func TestVocabularyRepository_UpdateReviewStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)

	entry, err := repo.Create(ctx, noun(user.ID, "Hund", "der"))
	require.NoError(t, err)

	for _, correct := range []bool{true, false, true, true} {
		entry, err = repo.UpdateReviewStats(ctx, entry.ID, correct, "ok")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, entry.CorrectCount)
	assert.Equal(t, 1, entry.IncorrectCount)
	assert.Equal(t, 4, entry.TotalReviews)
	assert.Equal(t, entry.TotalReviews, entry.CorrectCount+entry.IncorrectCount)
	assert.InDelta(t, 75.0, entry.SuccessRate(), 0.001)
	require.NotNil(t, entry.LastReviewedAt)
	require.NotNil(t, entry.ValidationFeedback)
	assert.Equal(t, "ok", *entry.ValidationFeedback)

	_, err = repo.UpdateReviewStats(ctx, 12345, true, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVocabularyRepository_UpdateTranslation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)

	entry, err := repo.Create(ctx, noun(user.ID, "Hund", "der"))
	require.NoError(t, err)
	assert.False(t, entry.Validated)

	entry, err = repo.UpdateTranslation(ctx, entry.ID, "dog")
	require.NoError(t, err)
	assert.Equal(t, "dog", entry.Translation)
	assert.True(t, entry.Validated)
	assert.False(t, entry.IsPending())

	_, err = repo.UpdateTranslation(ctx, 12345, "cat")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVocabularyRepository_RecordAnswer_FillsPendingOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)

	entry, err := repo.Create(ctx, noun(user.ID, "Hund", "der"))
	require.NoError(t, err)

	entry, filled, err := repo.RecordAnswer(ctx, entry.ID, false, "not quite", "dog")
	require.NoError(t, err)
	assert.True(t, filled)
	assert.Equal(t, "dog", entry.Translation)
	assert.True(t, entry.Validated)
	assert.Equal(t, 1, entry.IncorrectCount)

	entry, filled, err = repo.RecordAnswer(ctx, entry.ID, true, "", "hound")
	require.NoError(t, err)
	assert.False(t, filled)
	assert.Equal(t, "dog", entry.Translation)
	assert.Equal(t, 2, entry.TotalReviews)
	require.NotNil(t, entry.ValidationFeedback)
	assert.Equal(t, "not quite", *entry.ValidationFeedback)

	_, _, err = repo.RecordAnswer(ctx, 12345, true, "", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVocabularyRepository_RecordAnswer_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)

	entry, err := repo.Create(ctx, noun(user.ID, "Hund", "der"))
	require.NoError(t, err)
	deleted, err := repo.SoftDelete(ctx, entry.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	// the translation fill succeeds, the stats update finds no active entry
	_, filled, err := repo.RecordAnswer(ctx, entry.ID, true, "ok", "dog")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.False(t, filled)

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending())
	assert.False(t, got.Validated)
	assert.Zero(t, got.TotalReviews)
}

func TestVocabularyRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)

	entry, err := repo.Create(ctx, noun(user.ID, "Hund", "der"))
	require.NoError(t, err)

	deleted, err := repo.SoftDelete(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.SoftDelete(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete is a no-op")

	list, err := repo.ListForUser(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	count, err := repo.CountForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.PickRandomForUser(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, got.Status)

	// the word can be added again once the old entry is gone
	_, err = repo.Create(ctx, noun(user.ID, "Hund", "der"))
	assert.NoError(t, err)
}

func TestVocabularyRepository_FindAndSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVocabularyRepository(db)
	ctx := context.Background()
	user := createUser(t, db, 1)

	hund, err := repo.Create(ctx, noun(user.ID, "Hund", "der"))
	require.NoError(t, err)
	_, err = repo.UpdateTranslation(ctx, hund.ID, "Dog")
	require.NoError(t, err)
	_, err = repo.Create(ctx, noun(user.ID, "Übung", "die"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.VocabularyEntry{UserID: user.ID, Word: "100%_sicher", WordType: models.WordTypePhrase})
	require.NoError(t, err)

	found, err := repo.FindActiveByWord(ctx, user.ID, "HUND")
	require.NoError(t, err)
	assert.Equal(t, hund.ID, found.ID)

	_, err = repo.FindActiveByWord(ctx, user.ID, "Katze")
	assert.ErrorIs(t, err, models.ErrNotFound)

	res, err := repo.SearchForUser(ctx, user.ID, "dog", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hund"}, words(res))

	res, err = repo.SearchForUser(ctx, user.ID, "übu", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Übung"}, words(res))

	uebung, err := repo.FindActiveByWord(ctx, user.ID, "übung")
	require.NoError(t, err)
	_, err = repo.UpdateTranslation(ctx, uebung.ID, "Übungsaufgabe")
	require.NoError(t, err)
	res, err = repo.SearchForUser(ctx, user.ID, "ÜBUNGSAUF", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Übung"}, words(res))

	res, err = repo.SearchForUser(ctx, user.ID, "pending", 0)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = repo.SearchForUser(ctx, user.ID, "%", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"100%_sicher"}, words(res))

	existing, err := repo.ActiveWords(ctx, user.ID, []string{"hund", "Katze", "ÜBUNG"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"hund": true, "übung": true}, existing)
}

func words(entries []models.VocabularyEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Word)
	}
	return out
}
