package breachsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/digitalguardian/breachwatch/internal/models"
)

const hibpBaseURL = "https://haveibeenpwned.com/api/v3"

// HIBPClient — адаптер HaveIBeenPwned.
type HIBPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewHIBPClient создаёт адаптер HIBP с переданным http-клиентом.
// Таймаут запроса задаётся клиентом, попытка всегда одна.
func NewHIBPClient(apiKey string, httpClient *http.Client) *HIBPClient {
	return &HIBPClient{
		apiKey:     apiKey,
		baseURL:    hibpBaseURL,
		httpClient: httpClient,
	}
}

// hibpBreach — сырой ответ HIBP; поля счётчика и даты лежат плоско.
type hibpBreach struct {
	Name        string   `json:"Name"`
	Title       string   `json:"Title"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	Description string   `json:"Description"`
	DataClasses []string `json:"DataClasses"`
	IsVerified  bool     `json:"IsVerified"`
	PwnCount    int      `json:"PwnCount"`
}

// Lookup запрашивает утечки для адреса. 404 означает "адрес не найден"
// и возвращает пустой список; любой другой не-успешный статус — ErrProvider.
func (c *HIBPClient) Lookup(ctx context.Context, email string) ([]models.NormalizedBreach, error) {
	const op = "breachsource.hibp.Lookup"

	reqURL := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false",
		c.baseURL, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}
	req.Header.Set("hibp-api-key", c.apiKey)
	req.Header.Set("User-Agent", "breachwatch/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return []models.NormalizedBreach{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: unexpected status %s", op, ErrProvider, resp.Status)
	}

	var raw []hibpBreach
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}

	result := make([]models.NormalizedBreach, 0, len(raw))
	for _, b := range raw {
		result = append(result, models.NormalizedBreach{
			Name:        b.Name,
			Title:       b.Title,
			Domain:      b.Domain,
			Date:        b.BreachDate,
			Description: b.Description,
			DataClasses: b.DataClasses,
			HitCount:    b.PwnCount,
			Verified:    b.IsVerified,
		})
	}
	return result, nil
}
