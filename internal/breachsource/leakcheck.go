package breachsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/digitalguardian/breachwatch/internal/models"
)

const leakCheckBaseURL = "https://leakcheck.io/api/v2"

// LeakCheckClient — адаптер LeakCheck.
type LeakCheckClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewLeakCheckClient создаёт адаптер LeakCheck с переданным http-клиентом.
func NewLeakCheckClient(apiKey string, httpClient *http.Client) *LeakCheckClient {
	return &LeakCheckClient{
		apiKey:     apiKey,
		baseURL:    leakCheckBaseURL,
		httpClient: httpClient,
	}
}

// У LeakCheck метаданные утечки могут лежать как во вложенном объекте
// source, так и плоско в самой записи; счётчик — в count или pwn_count.
// Все эти различия разрешаются здесь и не утекают выше.
type leakCheckResponse struct {
	Success bool             `json:"success"`
	Result  []leakCheckEntry `json:"result"`
}

type leakCheckEntry struct {
	Name        string          `json:"name"`
	Domain      string          `json:"domain"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Fields      []string        `json:"fields"`
	Count       int             `json:"count"`
	PwnCount    int             `json:"pwn_count"`
	Source      leakCheckSource `json:"source"`
}

type leakCheckSource struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Lookup запрашивает утечки для адреса. Ответ с success=false считается
// отсутствием результатов, как и пустой список.
func (c *LeakCheckClient) Lookup(ctx context.Context, email string) ([]models.NormalizedBreach, error) {
	const op = "breachsource.leakcheck.Lookup"

	reqURL := fmt.Sprintf("%s/query/%s?type=email&limit=100", c.baseURL, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
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

	var raw leakCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProvider, err)
	}
	if !raw.Success || len(raw.Result) == 0 {
		return []models.NormalizedBreach{}, nil
	}

	result := make([]models.NormalizedBreach, 0, len(raw.Result))
	for _, item := range raw.Result {
		result = append(result, normalizeLeakCheckEntry(item))
	}
	return result, nil
}

// normalizeLeakCheckEntry подставляет значения по умолчанию один раз,
// на границе адаптера.
func normalizeLeakCheckEntry(item leakCheckEntry) models.NormalizedBreach {
	name := item.Source.Name
	if name == "" {
		name = item.Name
	}
	if name == "" {
		name = "Unknown"
	}
	domain := item.Source.Domain
	if domain == "" {
		domain = item.Domain
	}
	if domain == "" {
		domain = "unknown"
	}
	date := item.Date
	if date == "" {
		date = item.Source.Date
	}
	if date == "" {
		date = "unknown"
	}
	description := item.Source.Description
	if description == "" {
		description = item.Description
	}
	if description == "" {
		description = "Breach detected."
	}
	dataClasses := item.Fields
	if len(dataClasses) == 0 {
		dataClasses = []string{"Email addresses"}
	}
	hitCount := item.Count
	if hitCount == 0 {
		hitCount = item.PwnCount
	}
	return models.NormalizedBreach{
		Name:        name,
		Title:       name,
		Domain:      domain,
		Date:        date,
		Description: description,
		DataClasses: dataClasses,
		HitCount:    hitCount,
		Verified:    true,
	}
}
