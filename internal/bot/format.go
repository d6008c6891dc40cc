package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/example/deutschbot/pkg/models"
)

// maxMessageLen keeps messages well under Telegram's 4096 character limit.
const maxMessageLen = 3500

// maxReportItems caps how many words a bulk report names one by one.
const maxReportItems = 40

const (
	welcomeText = "👋 <b>Willkommen, %s!</b>\n\n" +
		"🇩🇪 I'm your German vocabulary learning assistant!\n\n" +
		"<b>Available Commands:</b>\n" +
		"📝 /addword - Add a new German word\n" +
		"📋 /bulkadd - Add many words from text\n" +
		"📸 /addphoto - Add words from a photo\n" +
		"📎 /import - Add words from an .xlsx or .csv file\n" +
		"📚 /mywords - View your vocabulary\n" +
		"🎯 /quiz - Practice with a quiz\n" +
		"🔍 /search - Find a word\n" +
		"🗑️ /delete - Remove a word\n" +
		"📤 /export - Download your vocabulary\n" +
		"ℹ️ /help - Show the help message\n\n" +
		"<i>Get started by adding your first word with /addword!</i>"

	helpText = "<b>🇩🇪 German Vocabulary Bot Help</b>\n\n" +
		"📝 <b>/addword</b> <i>[word]</i>\n" +
		"   Add one German word. Only the German word is needed, the translation is learned in the quiz.\n\n" +
		"📋 <b>/bulkadd</b>\n" +
		"   Paste a list of words. Mixed languages, verb forms and grammar notes are cleaned up.\n\n" +
		"📸 <b>/addphoto</b>\n" +
		"   Send a photo of a textbook page or your notes, review the words, then confirm.\n\n" +
		"📎 <b>/import</b>\n" +
		"   Send an .xlsx or .csv file with the German words in the first column.\n\n" +
		"📚 <b>/mywords</b>\n" +
		"   View your saved words with statistics.\n\n" +
		"🎯 <b>/quiz</b>\n" +
		"   Translate a random word. Your first attempt saves the translation.\n\n" +
		"🔍 <b>/search</b> <i>&lt;text&gt;</i>\n" +
		"   Find words by German text or translation.\n\n" +
		"🗑️ <b>/delete</b> <i>&lt;word&gt;</i>\n" +
		"   Example: /delete hund or /delete der Hund\n\n" +
		"📤 <b>/export</b>\n" +
		"   Download your vocabulary as a spreadsheet.\n\n" +
		"✖️ <b>/cancel</b>\n" +
		"   Stop the current step.\n\n" +
		"✨ Articles (der/die/das) are added for you automatically."

	fallbackText = "💡 I'm not sure what you mean.\n\n" +
		"Try one of these commands:\n" +
		"/addword - Add a new word\n" +
		"/bulkadd - Add many words from text\n" +
		"/mywords - View your vocabulary\n" +
		"/quiz - Practice your words\n" +
		"/delete - Remove a word\n" +
		"/help - Get help"
)

var skipReasonText = map[models.SkipReason]string{
	models.SkipDuplicate:                 "already in your vocabulary",
	models.SkipClassificationUnavailable: "could not be classified, try again later",
	models.SkipStorageUnavailable:        "could not be saved",
	models.SkipInvalid:                   "not a vocabulary word",
}

func escape(s string) string {
	return html.EscapeString(s)
}

func translationText(entry *models.VocabularyEntry) string {
	if entry.IsPending() {
		return "<i>translation pending</i>"
	}
	return escape(entry.Translation)
}

func formatAddWordResult(res *models.AddWordResult, total int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ <b>%s</b> saved", escape(res.Entry.DisplayForm())))
	sb.WriteString(fmt.Sprintf(" (%s)\n", res.Entry.WordType))
	if res.ArticleAdded {
		sb.WriteString(fmt.Sprintf("✨ I added the article <b>%s</b> for you.\n", escape(res.Entry.ArticleText())))
	}
	sb.WriteString("\n🎯 Use /quiz to learn its translation.")
	if total > 0 {
		sb.WriteString(fmt.Sprintf("\n📊 Total words: %d", total))
	}
	return sb.String()
}

func formatReport(report models.AddReport) string {
	var sb strings.Builder

	if len(report.Added) == 0 && len(report.Skipped) == 0 {
		return "🤷 I couldn't find any German words in that."
	}

	sb.WriteString(fmt.Sprintf("✅ <b>Added %d word(s)</b>\n", len(report.Added)))
	for i := range report.Added {
		if i == maxReportItems {
			sb.WriteString(fmt.Sprintf("… and %d more\n", len(report.Added)-maxReportItems))
			break
		}
		sb.WriteString("• " + escape(report.Added[i].DisplayForm()) + "\n")
	}

	if len(report.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ <b>Skipped %d</b>\n", len(report.Skipped)))
		for i, skipped := range report.Skipped {
			if i == maxReportItems {
				sb.WriteString(fmt.Sprintf("… and %d more\n", len(report.Skipped)-maxReportItems))
				break
			}
			reason, ok := skipReasonText[skipped.Reason]
			if !ok {
				reason = string(skipped.Reason)
			}
			sb.WriteString(fmt.Sprintf("• %s: %s\n", escape(skipped.Token), reason))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// formatListings renders the vocabulary list, split into messages of at most maxMessageLen.
func formatListings(title string, listings []models.WordListing) []string {
	var (
		messages []string
		sb       strings.Builder
	)
	sb.WriteString(title + "\n\n")

	for i := range listings {
		l := &listings[i]
		stats := ""
		if l.Entry.TotalReviews > 0 {
			stats = fmt.Sprintf(" [%d✓/%d✗, %.0f%%]", l.Entry.CorrectCount, l.Entry.IncorrectCount, l.SuccessRate)
		}
		line := fmt.Sprintf("%d. <b>%s</b> = %s%s\n", i+1, escape(l.DisplayForm), translationText(&l.Entry), stats)

		if sb.Len()+len(line) > maxMessageLen {
			messages = append(messages, sb.String())
			sb.Reset()
		}
		sb.WriteString(line)
	}
	if sb.Len() > 0 {
		messages = append(messages, sb.String())
	}
	return messages
}

func formatQuizQuestion(entry *models.VocabularyEntry) string {
	return fmt.Sprintf("🎯 <b>Quiz Time!</b>\n\nTranslate this German word to English:\n\n<b>%s</b>\n\nYour answer:",
		escape(entry.DisplayForm()))
}

func formatQuizOutcome(outcome *models.QuizOutcome) string {
	var sb strings.Builder
	if outcome.IsCorrect {
		sb.WriteString("✅ <b>Correct!</b>\n\n")
	} else {
		sb.WriteString("❌ <b>Not quite!</b>\n\n")
	}

	sb.WriteString(fmt.Sprintf("📖 <b>%s</b> = %s\n", escape(outcome.Entry.DisplayForm()), escape(outcome.AcceptedTranslation)))
	if outcome.WasFirstTranslation {
		sb.WriteString("💾 Translation saved to your vocabulary.\n")
	}
	if outcome.Feedback != "" {
		sb.WriteString(fmt.Sprintf("\n💬 %s\n", escape(outcome.Feedback)))
	}

	e := &outcome.Entry
	sb.WriteString("\n📊 Your stats for this word:\n")
	sb.WriteString(fmt.Sprintf("   Correct: %d | Incorrect: %d\n", e.CorrectCount, e.IncorrectCount))
	sb.WriteString(fmt.Sprintf("   Success rate: %.0f%%", e.SuccessRate()))
	return sb.String()
}

func formatPhotoReview(tokens []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📸 I found <b>%d</b> word(s):\n\n", len(tokens)))
	for _, t := range tokens {
		sb.WriteString(escape(t) + "\n")
	}
	sb.WriteString("\nReply <b>ok</b> to add them, send a corrected list instead, or /cancel.")
	return sb.String()
}

// userErrorText maps engine errors to a message the user can act on.
func userErrorText(err error) string {
	switch {
	case errors.Is(err, models.ErrDuplicateEntry):
		return "📚 That word is already in your vocabulary."
	case errors.Is(err, models.ErrInvalidInput):
		return "Please enter a valid German word."
	case errors.Is(err, models.ErrClassificationUnavailable):
		return "🤖 The language service is not responding right now. Please try again in a moment."
	case errors.Is(err, models.ErrNotFound):
		return "❌ That word is no longer in your vocabulary."
	case errors.Is(err, models.ErrStorageUnavailable):
		return "❌ Sorry, I couldn't reach the database. Please try again later."
	default:
		return "❌ Sorry, something went wrong. Please try again later."
	}
}
