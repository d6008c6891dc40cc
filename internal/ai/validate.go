package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/deutschbot/pkg/models"
)

const validateSystemPrompt = `You are a helpful German vocabulary tutor for English speakers.
Check whether the learner's English translation of a German word is correct. Accept synonyms and close matches.
Give clear, encouraging feedback in one or two sentences and mention the article of nouns when relevant.
Return a JSON object with these fields:
- "is_correct": true if the translation is correct or close enough
- "feedback": a short friendly message explaining the result
- "correct_translation": the canonical English translation of the German word

Examples:
german_word="der Hund", user_translation="dog"
{"is_correct": true, "feedback": "Perfect! 'Der Hund' means 'dog'.", "correct_translation": "dog"}
german_word="der Tisch", user_translation="fish"
{"is_correct": false, "feedback": "Not quite! 'Der Tisch' means 'table', not 'fish'.", "correct_translation": "table"}`

// ValidateAnswer judges a learner's translation of displayForm ("der Hund").
func (c *ChatGPT) ValidateAnswer(ctx context.Context, displayForm, answer string) (models.ValidationResult, error) {
	prompt := fmt.Sprintf("german_word=%q, user_translation=%q", displayForm, answer)

	var result models.ValidationResult
	if err := c.completeJSON(ctx, validateSystemPrompt, prompt, 0.3, &result); err != nil {
		return models.ValidationResult{}, err
	}

	result.Feedback = strings.TrimSpace(result.Feedback)
	result.AcceptedTranslation = strings.TrimSpace(result.AcceptedTranslation)
	return result, nil
}
