package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// HTTPServer calls a self-hosted OCR service: POST {endpoint}/ocr with a
// multipart "image" file and lang=deu, answering {"text": "..."}.
type HTTPServer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPServer creates an engine for the OCR service at endpoint.
func NewHTTPServer(endpoint string, timeout time.Duration) *HTTPServer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPServer{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *HTTPServer) Name() string { return "http" }

// ExtractText uploads the image and returns the recognised text.
func (s *HTTPServer) ExtractText(ctx context.Context, image []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("image", "photo.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %v", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("failed to write image: %v", err)
	}
	if err := w.WriteField("lang", "deu"); err != nil {
		return "", fmt.Errorf("failed to write form field: %v", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/ocr", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ocr server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}
	return result.Text, nil
}

// Probe tries the usual health endpoints and falls back to the base URL.
func (s *HTTPServer) Probe(ctx context.Context) error {
	for _, path := range []string{"/health", "/healthz", "/status", "/ping"} {
		if code, err := s.get(ctx, path); err == nil && code == http.StatusOK {
			return nil
		}
	}
	code, err := s.get(ctx, "/")
	if err != nil {
		return fmt.Errorf("ocr server unreachable: %w", err)
	}
	if code >= http.StatusInternalServerError {
		return fmt.Errorf("ocr server returned status %d", code)
	}
	return nil
}

func (s *HTTPServer) get(ctx context.Context, path string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
