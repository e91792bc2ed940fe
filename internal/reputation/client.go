// Package reputation реализует клиент сервиса проверки репутации
// email-адресов (Abstract Email Validation API).
package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/digitalguardian/breachwatch/internal/models"
)

const (
	abstractBaseURL = "https://emailvalidation.abstractapi.com/v1"
	defaultTimeout  = 10 * time.Second
)

// ErrNotConfigured — API-ключ репутации не задан в конфигурации.
var ErrNotConfigured = errors.New("email reputation API not configured")

// Client — http-клиент сервиса репутации.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент репутации. Пустой ключ допустим:
// в этом случае Check вернёт ErrNotConfigured. При nil httpClient
// используется клиент с таймаутом по умолчанию.
func NewClient(apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    abstractBaseURL,
		httpClient: httpClient,
	}
}

// У Abstract булевы признаки приходят вложенными объектами {"value": bool},
// а quality_score — строкой. Разворачиваем всё здесь.
type abstractResponse struct {
	Email             string          `json:"email"`
	Deliverability    string          `json:"deliverability"`
	QualityScore      json.RawMessage `json:"quality_score"`
	IsFreeEmail       abstractFlag    `json:"is_free_email"`
	IsDisposableEmail abstractFlag    `json:"is_disposable_email"`
	IsCatchallEmail   abstractFlag    `json:"is_catchall_email"`
	IsRoleEmail       abstractFlag    `json:"is_role_email"`
	IsMxFound         abstractFlag    `json:"is_mx_found"`
	IsSMTPValid       abstractFlag    `json:"is_smtp_valid"`
}

type abstractFlag struct {
	Value *bool `json:"value"`
}

// Check запрашивает репутацию адреса и возвращает усечённый ответ.
func (c *Client) Check(ctx context.Context, email string) (*models.EmailReputation, error) {
	const op = "reputation.Check"
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	reqURL := fmt.Sprintf("%s/?api_key=%s&email=%s", c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var raw abstractResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.EmailReputation{
		Email:             raw.Email,
		Deliverability:    raw.Deliverability,
		QualityScore:      parseScore(raw.QualityScore),
		IsFreeEmail:       raw.IsFreeEmail.Value,
		IsDisposableEmail: raw.IsDisposableEmail.Value,
		IsCatchallEmail:   raw.IsCatchallEmail.Value,
		IsRoleEmail:       raw.IsRoleEmail.Value,
		IsMxFound:         raw.IsMxFound.Value,
		IsSMTPValid:       raw.IsSMTPValid.Value,
	}, nil
}

// parseScore принимает число либо строку с числом.
func parseScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			return parsed
		}
	}
	return 0
}
