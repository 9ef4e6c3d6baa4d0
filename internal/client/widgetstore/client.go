// Package widgetstore is the HTTP client for the widget store API and the
// assistant's chatbot endpoint.
package widgetstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
	"github.com/GregMSThompson/finance-widgets/internal/errs"
	"github.com/GregMSThompson/finance-widgets/internal/models"
	"github.com/GregMSThompson/finance-widgets/pkg/logger"
)

const (
	serviceStore     = "widget store"
	serviceAssistant = "assistant"

	maxErrorBody = 64 << 10
)

type Client struct {
	apiURL     string
	chatURL    string
	token      string
	httpClient *http.Client
}

// Config points the client at the store and the assistant. ChatURL defaults
// to APIURL; Token is sent as a bearer token when set.
type Config struct {
	APIURL  string
	ChatURL string
	Token   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	chatURL := cfg.ChatURL
	if chatURL == "" {
		chatURL = cfg.APIURL
	}
	return &Client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		chatURL:    strings.TrimRight(chatURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// List returns every widget of the authenticated user.
func (c *Client) List(ctx context.Context) ([]models.Widget, error) {
	var out []models.Widget
	if err := c.do(ctx, serviceStore, http.MethodGet, c.apiURL+"/widgets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Refresh asks the store to re-resolve a dynamic widget's query.
func (c *Client) Refresh(ctx context.Context, id string) (*dto.RefreshResponse, error) {
	var out dto.RefreshResponse
	endpoint := fmt.Sprintf("%s/widgets/%s/refresh", c.apiURL, url.PathEscape(id))
	if err := c.do(ctx, serviceStore, http.MethodPost, endpoint, nil, &out); err != nil {
		return nil, err
	}
	if out.Status == dto.RefreshStatusError {
		return nil, errs.NewExternalServiceError(serviceStore, http.StatusOK, out.Error, nil)
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/widgets/%s", c.apiURL, url.PathEscape(id))
	return c.do(ctx, serviceStore, http.MethodDelete, endpoint, nil, nil)
}

// Chat posts a conversational turn to the assistant.
func (c *Client) Chat(ctx context.Context, req dto.ChatbotRequest) (*dto.ChatbotResponse, error) {
	var out dto.ChatbotResponse
	if err := c.do(ctx, serviceAssistant, http.MethodPost, c.chatURL+"/chatbot", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, service, method, endpoint string, body, out any) error {
	log := logger.FromContext(ctx)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.NewExternalServiceError(service, 0, "", err)
	}
	defer resp.Body.Close()

	log.Debug("http request",
		"service", service,
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errs.NewExternalServiceError(service, resp.StatusCode, errorReason(raw, resp.Status), nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return errs.NewExternalServiceError(service, resp.StatusCode, "malformed response body", err)
	}
	return nil
}

// errorReason digs the failure reason out of an error body. The refresh
// payload uses "error"; the store's generic error body uses "message".
func errorReason(raw []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" && len(s) < 200 {
		return s
	}
	return fallback
}
