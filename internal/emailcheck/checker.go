// Package emailcheck answers whether an address is deliverable enough
// to send to. The external validation provider is optional; without one
// every address passes, which matches how the send path treats
// validation as a filter, not a gate.
package emailcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

// Verdict is the provider's deliverability classification.
type Verdict string

const (
	VerdictValid    Verdict = "valid"
	VerdictInvalid  Verdict = "invalid"
	VerdictCatchAll Verdict = "catch_all"
)

// Checker classifies addresses via an HTTP validation provider.
type Checker struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

func New(cfg config.EmailValidationConfig, log *logger.Logger) *Checker {
	return &Checker{
		baseURL: strings.TrimSuffix(cfg.GetEmailValidationBaseURL(), "/"),
		apiKey:  cfg.GetEmailValidationAPIKey(),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Check classifies one address. An empty address is invalid; an
// unconfigured provider answers valid for everything else.
func (c *Checker) Check(ctx context.Context, email string) (Verdict, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return VerdictInvalid, nil
	}
	if c.baseURL == "" || c.apiKey == "" {
		return VerdictValid, nil
	}

	endpoint := fmt.Sprintf("%s?api_key=%s&email=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return VerdictValid, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VerdictValid, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return VerdictValid, fmt.Errorf("validator returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Deliverability string `json:"deliverability"`
		IsCatchAll     struct {
			Value bool `json:"value"`
		} `json:"is_catchall_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return VerdictValid, err
	}

	switch strings.ToUpper(decoded.Deliverability) {
	case "DELIVERABLE":
		if decoded.IsCatchAll.Value {
			return VerdictCatchAll, nil
		}
		return VerdictValid, nil
	case "UNDELIVERABLE":
		return VerdictInvalid, nil
	default:
		// UNKNOWN / RISKY: not provably dead, keep it sendable.
		return VerdictCatchAll, nil
	}
}

// Sendable folds a verdict into the engine's yes/no question. Catch-all
// domains stay sendable; only a provable invalid blocks the send.
func (c *Checker) Sendable(ctx context.Context, email string) (bool, error) {
	verdict, err := c.Check(ctx, email)
	if err != nil {
		return true, err
	}
	return verdict != VerdictInvalid, nil
}
