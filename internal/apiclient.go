package internal

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

// APIClient — HTTP-клиент бота к собственному API сервиса. Бот — отдельный
// канал и авторизуется общим токеном, а не initData.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateLead отправляет собранную анкету на /api/bot/leads.
func (c *APIClient) CreateLead(ctx context.Context, lead *LeadRequest) (*LeadOut, error) {
	body, err := json.Marshal(lead)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/bot/leads", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Bot-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("api non-2xx: %d: %s", resp.StatusCode, string(snippet))
	}

	var out LeadOut
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) GetDocuments(ctx context.Context) ([]DocumentOut, error) {
	var out []DocumentOut
	if err := c.getJSON(ctx, "/api/content/documents", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) GetFAQ(ctx context.Context) ([]FAQOut, error) {
	var out []FAQOut
	if err := c.getJSON(ctx, "/api/content/faq", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("api non-2xx: %d: %s", resp.StatusCode, string(snippet))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
