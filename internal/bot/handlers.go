package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/deutschbot/internal/excel"
	"github.com/example/deutschbot/internal/ocr"
	"github.com/example/deutschbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic while handling update", "update_id", update.UpdateID, "panic", r)
		}
	}()

	user, err := b.engine.GetOrCreateUser(ctx, models.Profile{
		TelegramID: message.From.ID,
		Username:   message.From.UserName,
		FirstName:  message.From.FirstName,
		LastName:   message.From.LastName,
	})
	if err != nil {
		b.log.Error("failed to load user", "telegram_id", message.From.ID, "error", err)
		_ = b.reply(message.Chat.ID, userErrorText(err))
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, user, message)
		return
	}

	session, ok := b.sessions.Get(user.TelegramID, b.now())
	if !ok {
		_ = b.reply(message.Chat.ID, fallbackText)
		return
	}

	switch session.State {
	case stateAwaitingWord:
		if strings.TrimSpace(message.Text) == "" {
			_ = b.reply(message.Chat.ID, "Please enter a valid German word.")
			return
		}
		b.sessions.Clear(user.TelegramID)
		b.addWord(ctx, user, message.Chat.ID, message.Text)
	case stateAwaitingBulk:
		b.sessions.Clear(user.TelegramID)
		b.addBulk(ctx, user, message.Chat.ID, message.Text)
	case stateAwaitingPhoto:
		b.processPhoto(ctx, user, message)
	case stateReviewingPhoto:
		b.processPhotoReview(ctx, user, message, session)
	case stateAwaitingImport:
		b.processImport(ctx, user, message)
	case stateAwaitingAnswer:
		b.processQuizAnswer(ctx, user, message, session)
	default:
		b.sessions.Clear(user.TelegramID)
		_ = b.reply(message.Chat.ID, fallbackText)
	}
}

// handleCommand routes a command. Any command ends the exchange in progress.
func (b *Bot) handleCommand(ctx context.Context, user *models.User, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	command := message.Command()
	if command != "cancel" {
		b.sessions.Clear(user.TelegramID)
	}
	b.log.Info("command received", "user_id", user.ID, "command", command)

	switch command {
	case "start":
		_ = b.reply(chatID, fmt.Sprintf(welcomeText, escape(message.From.FirstName)))
	case "help":
		_ = b.reply(chatID, helpText)
	case "addword":
		if args != "" {
			b.addWord(ctx, user, chatID, args)
			return
		}
		b.sessions.Set(user.TelegramID, Session{State: stateAwaitingWord}, b.now())
		_ = b.reply(chatID, "📝 Let's add a new German word!\n\n"+
			"Enter the German word (with or without article):\n"+
			"Examples: 'Hund' or 'der Hund'\n\n"+
			"💡 Tip: If you don't include the article (der/die/das), I'll add it for you!")
	case "bulkadd":
		if args != "" {
			b.addBulk(ctx, user, chatID, args)
			return
		}
		b.sessions.Set(user.TelegramID, Session{State: stateAwaitingBulk}, b.now())
		_ = b.reply(chatID, "📋 Paste your word list.\n\n"+
			"One word per line or separated by commas. Translations, verb forms and grammar notes are fine, I'll keep the German words.")
	case "addphoto":
		if _, disabled := b.ocr.(ocr.Disabled); disabled {
			_ = b.reply(chatID, "📸 Photo import is not enabled on this bot. Use /bulkadd to paste the words instead.")
			return
		}
		b.sessions.Set(user.TelegramID, Session{State: stateAwaitingPhoto}, b.now())
		_ = b.reply(chatID, "📸 Send me a photo of your word list, textbook page or notes.")
	case "import":
		b.sessions.Set(user.TelegramID, Session{State: stateAwaitingImport}, b.now())
		_ = b.reply(chatID, fmt.Sprintf("📎 Send an .xlsx or .csv file with one German word per row in the first column (up to %d rows).", excel.MaxRows))
	case "mywords":
		b.listWords(ctx, user, chatID)
	case "quiz":
		b.startQuiz(ctx, user, chatID)
	case "delete":
		b.deleteWord(ctx, user, chatID, args)
	case "search":
		b.searchWords(ctx, user, chatID, args)
	case "export":
		b.exportWords(ctx, user, chatID)
	case "cancel":
		if b.sessions.Clear(user.TelegramID) {
			_ = b.reply(chatID, "✖️ Cancelled.")
		} else {
			_ = b.reply(chatID, "Nothing to cancel.")
		}
	default:
		_ = b.reply(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

func (b *Bot) addWord(ctx context.Context, user *models.User, chatID int64, text string) {
	b.typing(chatID)

	res, err := b.engine.AddSingleWord(ctx, user, text)
	if err != nil {
		b.log.Warn("failed to add word", "user_id", user.ID, "word", text, "error", err)
		_ = b.reply(chatID, userErrorText(err))
		return
	}

	total, err := b.engine.CountWords(ctx, user)
	if err != nil {
		b.log.Warn("failed to count words", "user_id", user.ID, "error", err)
		total = 0
	}
	_ = b.reply(chatID, formatAddWordResult(res, total))
}

func (b *Bot) addBulk(ctx context.Context, user *models.User, chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		_ = b.reply(chatID, "Please paste some text with German words.")
		return
	}
	b.typing(chatID)
	b.sendReport(user, chatID, b.engine.AddBulk(ctx, user, text))
}

func (b *Bot) sendReport(user *models.User, chatID int64, report models.AddReport) {
	b.log.Debug("add report sent", "user_id", user.ID, "added", len(report.Added), "skipped", len(report.Skipped))
	_ = b.reply(chatID, formatReport(report))
}

func (b *Bot) processPhoto(ctx context.Context, user *models.User, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	var fileID string
	switch {
	case len(message.Photo) > 0:
		fileID = message.Photo[len(message.Photo)-1].FileID
	case message.Document != nil && strings.HasPrefix(message.Document.MimeType, "image/"):
		fileID = message.Document.FileID
	default:
		_ = b.reply(chatID, "Please send a photo, or /cancel.")
		return
	}

	b.typing(chatID)
	image, err := b.download(ctx, fileID, maxPhotoBytes)
	if err != nil {
		b.log.Warn("failed to download photo", "user_id", user.ID, "error", err)
		_ = b.reply(chatID, "❌ I couldn't download that photo. Please try again.")
		return
	}

	text, err := b.ocr.ExtractText(ctx, image)
	if err != nil {
		b.log.Warn("text extraction failed", "user_id", user.ID, "engine", b.ocr.Name(), "error", err)
		_ = b.reply(chatID, "❌ I couldn't read text from that photo. Try a sharper picture, or use /bulkadd.")
		return
	}

	tokens := b.engine.ExtractTokens(text)
	if len(tokens) == 0 {
		_ = b.reply(chatID, "🤷 I couldn't find any German words in that photo. Try another one, or /cancel.")
		return
	}

	b.sessions.Set(user.TelegramID, Session{State: stateReviewingPhoto, Tokens: tokens}, b.now())
	_ = b.reply(chatID, formatPhotoReview(tokens))
}

func (b *Bot) processPhotoReview(ctx context.Context, user *models.User, message *tgbotapi.Message, session Session) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)
	if text == "" {
		_ = b.reply(chatID, "Reply <b>ok</b> to add the words, send a corrected list, or /cancel.")
		return
	}

	b.sessions.Clear(user.TelegramID)
	b.typing(chatID)

	if isConfirmation(text) {
		b.sendReport(user, chatID, b.engine.AddFromExtractedTokens(ctx, user, session.Tokens))
		return
	}
	b.sendReport(user, chatID, b.engine.AddBulk(ctx, user, text))
}

func isConfirmation(text string) bool {
	switch strings.ToLower(strings.Trim(text, " .!")) {
	case "ok", "okay", "yes", "y", "ja", "👍":
		return true
	}
	return false
}

func (b *Bot) processImport(ctx context.Context, user *models.User, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	doc := message.Document
	if doc == nil {
		_ = b.reply(chatID, "Please send an .xlsx or .csv file, or /cancel.")
		return
	}
	if int64(doc.FileSize) > maxImportBytes {
		_ = b.reply(chatID, "❌ That file is too large.")
		return
	}

	b.typing(chatID)
	data, err := b.download(ctx, doc.FileID, maxImportBytes)
	if err != nil {
		b.log.Warn("failed to download import file", "user_id", user.ID, "file", doc.FileName, "error", err)
		_ = b.reply(chatID, "❌ I couldn't download that file. Please try again.")
		return
	}

	tokens, err := excel.ReadTokens(doc.FileName, bytes.NewReader(data))
	if errors.Is(err, excel.ErrUnsupportedFormat) {
		_ = b.reply(chatID, "Please send an .xlsx or .csv file, or /cancel.")
		return
	}
	b.sessions.Clear(user.TelegramID)
	if err != nil {
		b.log.Warn("failed to read import file", "user_id", user.ID, "file", doc.FileName, "error", err)
		_ = b.reply(chatID, "❌ I couldn't read that file.")
		return
	}

	b.sendReport(user, chatID, b.engine.AddFromExtractedTokens(ctx, user, tokens))
}

func (b *Bot) listWords(ctx context.Context, user *models.User, chatID int64) {
	listings, err := b.engine.ListWords(ctx, user, listLimit)
	if err != nil {
		b.log.Error("failed to list words", "user_id", user.ID, "error", err)
		_ = b.reply(chatID, "❌ Sorry, couldn't load your vocabulary.")
		return
	}
	if len(listings) == 0 {
		_ = b.reply(chatID, "📚 Your vocabulary is empty!\n\nUse /addword to add your first German word.")
		return
	}

	total, err := b.engine.CountWords(ctx, user)
	if err != nil {
		total = len(listings)
	}
	title := fmt.Sprintf("📚 <b>Your Vocabulary (%d words)</b>", total)
	if total > len(listings) {
		title += fmt.Sprintf("\n<i>showing the latest %d, use /export for all</i>", len(listings))
	}

	for _, text := range formatListings(title, listings) {
		if err := b.reply(chatID, text); err != nil {
			return
		}
	}
	_ = b.reply(chatID, "💡 Ready to practice? Use /quiz to test yourself!")
}

func (b *Bot) searchWords(ctx context.Context, user *models.User, chatID int64, term string) {
	if term == "" {
		_ = b.reply(chatID, "Usage: /search <i>text</i>\nExample: /search hund")
		return
	}

	listings, err := b.engine.SearchWords(ctx, user, term, searchLimit)
	if err != nil {
		b.log.Error("failed to search words", "user_id", user.ID, "term", term, "error", err)
		_ = b.reply(chatID, userErrorText(err))
		return
	}
	if len(listings) == 0 {
		_ = b.reply(chatID, fmt.Sprintf("🔍 Nothing matches <b>%s</b>.", escape(term)))
		return
	}

	title := fmt.Sprintf("🔍 <b>%d match(es) for %s</b>", len(listings), escape(term))
	for _, text := range formatListings(title, listings) {
		if err := b.reply(chatID, text); err != nil {
			return
		}
	}
}

func (b *Bot) deleteWord(ctx context.Context, user *models.User, chatID int64, word string) {
	if word == "" {
		_ = b.reply(chatID, "Usage: /delete <i>word</i>\nExample: /delete hund or /delete der Hund")
		return
	}

	deleted, err := b.engine.DeleteWord(ctx, user, word)
	if err != nil {
		b.log.Error("failed to delete word", "user_id", user.ID, "word", word, "error", err)
		_ = b.reply(chatID, userErrorText(err))
		return
	}
	if !deleted {
		_ = b.reply(chatID, fmt.Sprintf("🤷 <b>%s</b> is not in your vocabulary.", escape(word)))
		return
	}
	_ = b.reply(chatID, fmt.Sprintf("🗑️ <b>%s</b> removed from your vocabulary.", escape(word)))
}

func (b *Bot) exportWords(ctx context.Context, user *models.User, chatID int64) {
	listings, err := b.engine.ListWords(ctx, user, 0)
	if err != nil {
		b.log.Error("failed to list words for export", "user_id", user.ID, "error", err)
		_ = b.reply(chatID, "❌ Sorry, couldn't load your vocabulary.")
		return
	}
	if len(listings) == 0 {
		_ = b.reply(chatID, "📚 Your vocabulary is empty, nothing to export yet.")
		return
	}

	entries := make([]models.VocabularyEntry, 0, len(listings))
	for _, l := range listings {
		entries = append(entries, l.Entry)
	}
	data, err := excel.Export(entries)
	if err != nil {
		b.log.Error("failed to build export", "user_id", user.ID, "error", err)
		_ = b.reply(chatID, "❌ Sorry, couldn't build the spreadsheet.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "vocabulary.xlsx", Bytes: data})
	doc.Caption = fmt.Sprintf("📤 %d word(s)", len(entries))
	if _, err := b.api.Send(doc); err != nil {
		b.log.Error("failed to send export", "user_id", user.ID, "error", err)
	}
}

func (b *Bot) startQuiz(ctx context.Context, user *models.User, chatID int64) {
	entry, err := b.engine.PickQuizItem(ctx, user)
	if errors.Is(err, models.ErrNotFound) {
		_ = b.reply(chatID, "📚 You don't have any words yet!\n\nUse /addword to add some vocabulary first.")
		return
	}
	if err != nil {
		b.log.Error("failed to start quiz", "user_id", user.ID, "error", err)
		_ = b.reply(chatID, "❌ Sorry, couldn't start the quiz.")
		return
	}

	b.sessions.Set(user.TelegramID, Session{State: stateAwaitingAnswer, EntryID: entry.ID}, b.now())
	_ = b.reply(chatID, formatQuizQuestion(entry))
}

func (b *Bot) processQuizAnswer(ctx context.Context, user *models.User, message *tgbotapi.Message, session Session) {
	chatID := message.Chat.ID
	answer := strings.TrimSpace(message.Text)
	if answer == "" {
		_ = b.reply(chatID, "Please provide an answer.")
		return
	}

	entry, err := b.engine.GetEntry(ctx, user, session.EntryID)
	if err != nil {
		b.sessions.Clear(user.TelegramID)
		b.log.Warn("quiz entry unavailable", "user_id", user.ID, "entry_id", session.EntryID, "error", err)
		_ = b.reply(chatID, userErrorText(err))
		return
	}

	b.typing(chatID)
	outcome, err := b.engine.ValidateQuizAnswer(ctx, entry, answer)
	if err != nil {
		b.log.Warn("failed to validate answer", "user_id", user.ID, "entry_id", entry.ID, "error", err)
		if errors.Is(err, models.ErrClassificationUnavailable) {
			// the answer was not recorded, so the same question stays open
			b.sessions.Set(user.TelegramID, session, b.now())
			_ = b.reply(chatID, userErrorText(err)+"\nSend your answer again, or /cancel.")
			return
		}
		b.sessions.Clear(user.TelegramID)
		_ = b.reply(chatID, userErrorText(err))
		return
	}

	b.sessions.Clear(user.TelegramID)
	b.log.Info("quiz answered", "user_id", user.ID, "entry_id", entry.ID, "correct", outcome.IsCorrect)
	_ = b.reply(chatID, formatQuizOutcome(outcome))
	_ = b.reply(chatID, "Want to practice more? Use /quiz again!")
}
