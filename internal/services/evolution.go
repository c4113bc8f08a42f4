package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const evolutionTimeout = 30 * time.Second

// EvolutionOption configures the gateway client
type EvolutionOption func(*EvolutionService)

// WithEvolutionHTTPClient sets a custom HTTP client
func WithEvolutionHTTPClient(httpClient *http.Client) EvolutionOption {
	return func(s *EvolutionService) {
		s.httpClient = httpClient
	}
}

// EvolutionService sends WhatsApp messages through an Evolution API instance
type EvolutionService struct {
	baseURL    string
	apiKey     string
	instance   string
	httpClient *http.Client
}

// NewEvolutionService creates a gateway client for the given instance
func NewEvolutionService(baseURL, apiKey, instance string, opts ...EvolutionOption) *EvolutionService {
	s := &EvolutionService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		instance:   instance,
		httpClient: &http.Client{Timeout: evolutionTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendText normalizes the phone and posts an outbound text message.
// Delivery is best-effort: callers are expected to log the returned error
// and carry on rather than fail the request.
func (s *EvolutionService) SendText(ctx context.Context, telefone, mensagem string) error {
	body, err := json.Marshal(sendTextRequest{
		Number: NormalizePhone(telefone),
		Text:   mensagem,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", s.baseURL, s.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
