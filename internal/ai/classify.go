package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/example/deutschbot/pkg/models"
)

const classifySystemPrompt = `You are a German grammar assistant. You classify German vocabulary for a learner.
For every word decide the part of speech: one of "noun", "verb", "adjective", "adverb", "phrase", "other".
Use "phrase" for multi-word expressions such as "sich freuen auf" or "zu Hause".
For nouns give the nominative singular definite article: "der", "die" or "das". For anything else the article is null.
Always answer with a JSON object and nothing else.`

type classificationJSON struct {
	Word     string  `json:"word"`
	WordType string  `json:"word_type"`
	Article  *string `json:"article"`
}

// toClassification drops any article the model returned for a non-noun
// and any article that is not der/die/das.
func (r classificationJSON) toClassification() models.Classification {
	out := models.Classification{WordType: models.ParseWordType(r.WordType)}
	if out.WordType != models.WordTypeNoun || r.Article == nil || !models.IsArticle(*r.Article) {
		return out
	}
	article := strings.ToLower(strings.TrimSpace(*r.Article))
	out.Article = &article
	return out
}

// Classify asks for the word type and, for nouns, the article of one word.
func (c *ChatGPT) Classify(ctx context.Context, word string) (models.Classification, error) {
	prompt := fmt.Sprintf(
		"Classify the German word or phrase %q.\n"+
			`Return {"word_type": "...", "article": "der" | "die" | "das" | null}.`,
		word,
	)

	var result classificationJSON
	if err := c.completeJSON(ctx, classifySystemPrompt, prompt, 0.1, &result); err != nil {
		return models.Classification{}, err
	}
	if strings.TrimSpace(result.WordType) == "" {
		return models.Classification{}, fmt.Errorf("%w: empty word_type for %q", models.ErrClassificationUnavailable, word)
	}

	return result.toClassification(), nil
}

// ClassifyBatch classifies words in chunks of at most batchSize, one request per chunk.
// A failed chunk marks only its own words as failed; results are keyed by the word as given.
func (c *ChatGPT) ClassifyBatch(ctx context.Context, words []string, batchSize int) models.BatchClassification {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	result := models.BatchClassification{
		Classified: make(map[string]models.Classification, len(words)),
		Failed:     make(map[string]error),
	}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for _, chunk := range chunkWords(words, batchSize) {
		g.Go(func() error {
			classified, err := c.classifyChunk(ctx, chunk)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				c.log.Warn("chunk classification failed", "words", len(chunk), "error", err)
				for _, w := range chunk {
					result.Failed[w] = err
				}
				return nil
			}
			for _, w := range chunk {
				if cl, ok := classified[w]; ok {
					result.Classified[w] = cl
					continue
				}
				result.Failed[w] = fmt.Errorf("%w: no classification returned for %q", models.ErrClassificationUnavailable, w)
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (c *ChatGPT) classifyChunk(ctx context.Context, chunk []string) (map[string]models.Classification, error) {
	list, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal words: %v", models.ErrClassificationUnavailable, err)
	}

	prompt := "Classify each of these German words or phrases: " + string(list) + "\n" +
		`Return {"results": [{"word": "<exactly as given>", "word_type": "...", "article": "der" | "die" | "das" | null}]} ` +
		"with one item per input word, in the same order."

	var response struct {
		Results []classificationJSON `json:"results"`
	}
	if err := c.completeJSON(ctx, classifySystemPrompt, prompt, 0.1, &response); err != nil {
		return nil, err
	}

	return matchResults(chunk, response.Results), nil
}

// matchResults maps model output back onto the requested words. Exact matches win;
// otherwise the comparison ignores case and surrounding whitespace.
func matchResults(chunk []string, results []classificationJSON) map[string]models.Classification {
	byExact := make(map[string]classificationJSON, len(results))
	byFold := make(map[string]classificationJSON, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.WordType) == "" {
			continue
		}
		byExact[r.Word] = r
		byFold[models.NormalizeWord(r.Word)] = r
	}

	out := make(map[string]models.Classification, len(chunk))
	for _, w := range chunk {
		if r, ok := byExact[w]; ok {
			out[w] = r.toClassification()
			continue
		}
		if r, ok := byFold[models.NormalizeWord(w)]; ok {
			out[w] = r.toClassification()
		}
	}
	return out
}

func chunkWords(words []string, size int) [][]string {
	chunks := make([][]string, 0, (len(words)+size-1)/size)
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		chunks = append(chunks, words[start:end])
	}
	return chunks
}
