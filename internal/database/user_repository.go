package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/example/deutschbot/pkg/models"
)

const usersTable = "users"

var userColumns = []string{
	"id", "telegram_id", "username", "first_name", "last_name",
	"language_preference", "created_at", "last_active",
}

// UserRepository handles database operations for users
type UserRepository struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		db:  db,
		sb:  statementBuilder(db),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns the user for a Telegram account, creating it on first contact.
// Non-empty profile fields overwrite the stored ones and last_active is refreshed.
func (r *UserRepository) GetOrCreate(ctx context.Context, profile models.Profile) (*models.User, error) {
	now := r.now()

	query, args, err := r.sb.Insert(usersTable).
		Columns("telegram_id", "username", "first_name", "last_name", "created_at", "last_active").
		Values(profile.TelegramID, profile.Username, profile.FirstName, profile.LastName, now, now).
		Suffix(`ON CONFLICT (telegram_id) DO UPDATE SET
			username = COALESCE(NULLIF(excluded.username, ''), users.username),
			first_name = COALESCE(NULLIF(excluded.first_name, ''), users.first_name),
			last_name = COALESCE(NULLIF(excluded.last_name, ''), users.last_name),
			last_active = excluded.last_active`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %v", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", wrapDBError(err))
	}

	return r.GetByTelegramID(ctx, profile.TelegramID)
}

// GetByTelegramID returns a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From(usersTable).
		Where(sq.Eq{"telegram_id": telegramID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %v", err)
	}

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get user by telegram ID: %w", wrapDBError(err))
	}
	return &user, nil
}

// ListActiveWithVocabulary returns users seen since the given time who own at least one active entry
func (r *UserRepository) ListActiveWithVocabulary(ctx context.Context, since time.Time) ([]models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From(usersTable).
		Where(sq.GtOrEq{"last_active": since.UTC()}).
		Where(sq.Expr("EXISTS (SELECT 1 FROM vocabulary v WHERE v.user_id = users.id AND v.status = ?)", models.StatusActive)).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %v", err)
	}

	users := make([]models.User, 0)
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", wrapDBError(err))
	}
	return users, nil
}
