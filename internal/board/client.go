package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"outreach_backend/platform/apperr"
	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

// Client is an HTTP client for the external board API.
type Client struct {
	baseURL    string
	token      string
	spaceID    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a board client from configuration. The client is constructed
// explicitly and passed where needed; there is no process-wide instance.
func New(cfg config.BoardConfig, log *logger.Logger) *Client {
	timeout := cfg.GetBoardTimeout()
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.GetBoardBaseURL(), "/"),
		token:   cfg.GetBoardToken(),
		spaceID: cfg.GetBoardSpaceID(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// apiError is the board's error body shape.
type apiError struct {
	Err   string `json:"err"`
	ECode string `json:"ECODE"`
}

// do performs one board API call and maps failures onto the typed error
// taxonomy. This is the single place where board error text is interpreted;
// call sites only ever branch on apperr kinds.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "encode board request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build board request", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
			return apperr.Wrap(apperr.KindTransient, "board request timed out", err)
		}
		return apperr.Wrap(apperr.KindTransient, "board request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindInternal, "decode board response", err)
	}
	return nil
}

// mapError converts one board error response to a typed error.
func (c *Client) mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))

	var body apiError
	_ = json.Unmarshal(raw, &body)
	message := body.Err
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperr.NotFound(message)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return apperr.Transient(fmt.Sprintf("board returned %d: %s", resp.StatusCode, message))
	case isSchemaConflict(message, body.ECode):
		return apperr.SchemaConflict(message)
	case isQuotaExceeded(message, body.ECode):
		return apperr.QuotaExceeded(message)
	default:
		return apperr.BadRequest(fmt.Sprintf("board returned %d: %s", resp.StatusCode, message))
	}
}

// The board does not document stable error codes for these two cases, so
// the mapping keys off the message once, here, at the boundary.
func isSchemaConflict(message, code string) bool {
	lower := strings.ToLower(message)
	return strings.HasPrefix(code, "CRTSK") && strings.Contains(lower, "status") ||
		strings.Contains(lower, "status not found") ||
		strings.Contains(lower, "status does not exist") ||
		strings.Contains(lower, "invalid status")
}

func isQuotaExceeded(message, code string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "quota") ||
		strings.Contains(lower, "field limit") ||
		strings.Contains(lower, "custom field limit") ||
		strings.HasPrefix(code, "FIELD")
}
