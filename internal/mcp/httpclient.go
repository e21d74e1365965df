package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/koifit/internal/models"
	"github.com/claude/koifit/internal/workout"
)

// HTTPClient implements DataSource by calling the Koifit JSON API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the store lives on the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, workout.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) ListDays(ctx context.Context) ([]models.Day, error) {
	var days []models.Day
	if err := c.get(ctx, "/api/v1/days", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *HTTPClient) ActiveSession(ctx context.Context) (*models.ActiveSession, error) {
	var resp struct {
		SessionID *int64 `json:"session_id"`
		DayID     int64  `json:"day_id"`
		DayLabel  string `json:"day_label"`
	}
	if err := c.get(ctx, "/api/v1/sessions/active", nil, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == nil {
		return nil, nil
	}
	return &models.ActiveSession{SessionID: *resp.SessionID, DayID: resp.DayID, DayLabel: resp.DayLabel}, nil
}

func (c *HTTPClient) View(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	var detail models.SessionDetail
	if err := c.get(ctx, "/api/v1/sessions/"+strconv.FormatInt(sessionID, 10), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *HTTPClient) Previous(ctx context.Context, slotID, exerciseID int64) (*models.PreviousAttempt, error) {
	params := url.Values{}
	params.Set("exercise_id", strconv.FormatInt(exerciseID, 10))

	// A JSON null leaves prev nil.
	var prev *models.PreviousAttempt
	path := "/api/v1/slots/" + strconv.FormatInt(slotID, 10) + "/previous"
	if err := c.get(ctx, path, params, &prev); err != nil {
		return nil, err
	}
	return prev, nil
}
