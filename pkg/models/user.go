package models

import "time"

// User represents a Telegram user using the bot
type User struct {
	ID                 int64     `json:"id" db:"id"`
	TelegramID         int64     `json:"telegram_id" db:"telegram_id"`
	Username           string    `json:"username" db:"username"`
	FirstName          string    `json:"first_name" db:"first_name"`
	LastName           string    `json:"last_name" db:"last_name"`
	LanguagePreference string    `json:"language_preference" db:"language_preference"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	LastActive         time.Time `json:"last_active" db:"last_active"`
}

// Profile carries the Telegram account fields seen on an incoming message
type Profile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}
