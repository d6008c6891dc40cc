// Package bot is the Telegram conversation driver for the vocabulary engine.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/example/deutschbot/internal/ocr"
	"github.com/example/deutschbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	listLimit      = 50
	searchLimit    = 20
	maxPhotoBytes  = 10 << 20
	maxImportBytes = 5 << 20
)

// sender is the part of tgbotapi.BotAPI the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// vocabularyEngine is implemented by *vocabulary.Engine.
type vocabularyEngine interface {
	GetOrCreateUser(ctx context.Context, profile models.Profile) (*models.User, error)
	AddSingleWord(ctx context.Context, user *models.User, rawWord string) (*models.AddWordResult, error)
	AddBulk(ctx context.Context, user *models.User, rawText string) models.AddReport
	AddFromExtractedTokens(ctx context.Context, user *models.User, tokens []string) models.AddReport
	ExtractTokens(rawText string) []string
	ListWords(ctx context.Context, user *models.User, limit int) ([]models.WordListing, error)
	CountWords(ctx context.Context, user *models.User) (int, error)
	SearchWords(ctx context.Context, user *models.User, term string, limit int) ([]models.WordListing, error)
	GetEntry(ctx context.Context, user *models.User, id int64) (*models.VocabularyEntry, error)
	DeleteWord(ctx context.Context, user *models.User, rawWord string) (bool, error)
	PickQuizItem(ctx context.Context, user *models.User) (*models.VocabularyEntry, error)
	ValidateQuizAnswer(ctx context.Context, entry *models.VocabularyEntry, answer string) (*models.QuizOutcome, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	client   *tgbotapi.BotAPI
	api      sender
	engine   vocabularyEngine
	ocr      ocr.Engine
	sessions *SessionStore
	http     *http.Client
	log      *slog.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// New authorizes against the Bot API and creates a bot instance.
func New(token string, debug bool, engine vocabularyEngine, ocrEngine ocr.Engine, sessions *SessionStore, logger *slog.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}
	client.Debug = debug

	b := newBot(client, engine, ocrEngine, sessions, logger)
	b.client = client
	b.log.Info("authorized on account", "username", client.Self.UserName)
	return b, nil
}

func newBot(api sender, engine vocabularyEngine, ocrEngine ocr.Engine, sessions *SessionStore, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if ocrEngine == nil {
		ocrEngine = ocr.Disabled{}
	}
	if sessions == nil {
		sessions = NewSessionStore(0)
	}
	return &Bot{
		api:      api,
		engine:   engine,
		ocr:      ocrEngine,
		sessions: sessions,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      logger.With("component", "bot"),
		now:      time.Now,
	}
}

// Start polls for updates until ctx is cancelled. Each update is handled in its own goroutine.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return fmt.Errorf("bot is not connected")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.log.Info("bot is polling for updates")
	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			b.wg.Wait()
			b.log.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// SendReminder implements scheduler.Notifier.
func (b *Bot) SendReminder(ctx context.Context, user models.User) error {
	count, err := b.engine.CountWords(ctx, &user)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	text := fmt.Sprintf("👋 Zeit zum Üben! You have %d word(s) in your vocabulary.\n\nUse /quiz to practice a few of them today.", count)
	return b.reply(user.TelegramID, text)
}

func (b *Bot) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Debug("failed to send chat action", "chat_id", chatID, "error", err)
	}
}

// download fetches a Telegram file, refusing anything larger than limit.
func (b *Bot) download(ctx context.Context, fileID string, limit int64) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file is larger than %d bytes", limit)
	}
	return data, nil
}
