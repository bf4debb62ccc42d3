package events

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

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
)

// APIClient reads events and sends RSVPs over the HTTP API. It is the Source a Board uses
// outside the server process, for example a lobby screen signed in as a resident:
//
//	board := events.NewBoard(events.NewAPIClient("https://skyon.example", idToken, nil))
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClient talks to the API at baseURL with token as the bearer ID token. A nil hc gets
// a client with a 30s timeout.
func NewAPIClient(baseURL, token string, hc *http.Client) *APIClient {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), token: token, httpClient: hc}
}

// List fetches the events, most recent first. match sees each event re-encoded as a record.
func (c *APIClient) List(ctx context.Context, match func(rec docstore.Record, v *Event) bool) ([]*Event, error) {
	var page struct {
		Items []*Event `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/events", nil, &page); err != nil {
		return nil, err
	}
	if match == nil {
		return page.Items, nil
	}
	out := make([]*Event, 0, len(page.Items))
	for _, ev := range page.Items {
		rec, err := docstore.Fields(ev)
		if err != nil {
			return nil, err
		}
		if match(rec, ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (c *APIClient) RSVP(ctx context.Context, id string, seen *int) (int, error) {
	var res RSVPResult
	path := "/api/v1/events/" + url.PathEscape(id) + "/rsvp"
	if err := c.do(ctx, http.MethodPost, path, RSVPRequest{Seen: seen}, &res); err != nil {
		return 0, err
	}
	return res.RSVPs, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, apperr.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: %w: %s", method, path, statusErr(resp.StatusCode), e.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusErr(code int) error {
	switch code {
	case http.StatusBadRequest:
		return apperr.ErrValidation
	case http.StatusUnauthorized:
		return apperr.ErrUnauthenticated
	case http.StatusForbidden:
		return apperr.ErrUnauthorized
	case http.StatusNotFound:
		return apperr.ErrNotFound
	default:
		return apperr.ErrStoreUnavailable
	}
}
