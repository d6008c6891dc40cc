package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiInstruction = `You read photos of German vocabulary lists, textbook pages and handwritten notes.
Transcribe the German words and phrases exactly as written, one entry per line, top to bottom.
Keep articles (der/die/das) and reflexive "sich". Leave out translations into other languages,
page numbers, exercise instructions and anything that is not German vocabulary.
Reply with plain text only.`

// Gemini extracts text with a Gemini vision model.
type Gemini struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewGemini creates a Gemini engine.
func NewGemini(apiKey, model string, timeout time.Duration) *Gemini {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gemini{
		APIKey:  strings.TrimSpace(apiKey),
		Model:   strings.TrimSpace(model),
		Timeout: timeout,
	}
}

func (g *Gemini) Name() string { return "gemini" }

// ExtractText sends the image to the model and returns its transcription.
func (g *Gemini) ExtractText(ctx context.Context, image []byte) (string, error) {
	if g.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	if len(image) == 0 {
		return "", errors.New("gemini: empty image")
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "text/plain",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(geminiInstruction)}}

	resp, err := m.GenerateContent(ctx,
		genai.Text("Transcribe the German vocabulary in this image."),
		&genai.Blob{MIMEType: imageMIME(image), Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	return stripCodeFences(firstText(resp)), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

// imageMIME sniffs the image type; Telegram photos are JPEG when in doubt.
func imageMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/jpeg"
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func ptrFloat32(v float32) *float32 { return &v }
