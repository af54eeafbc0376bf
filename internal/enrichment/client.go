package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kapu/delphi-enrich-web/internal/constants"
	"github.com/kapu/delphi-enrich-web/internal/domain"
	"github.com/kapu/delphi-enrich-web/internal/util"
	"github.com/kapu/delphi-enrich-web/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to the external enrichment service. Every call is a single
// attempt; failures are returned to the caller as *errors.APIError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, breaker *util.CircuitBreaker, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = constants.APIConfig.DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
		logger:  logger,
	}
}

// WithJar returns a copy of the client that sends and stores cookies in jar.
// The transport and breaker stay shared.
func (c *Client) WithJar(jar http.CookieJar) *Client {
	clone := *c
	hc := *c.httpClient
	hc.Jar = jar
	clone.httpClient = &hc
	return &clone
}

func (c *Client) Enrich(ctx context.Context, req EnrichRequest) (*EnrichResponse, error) {
	var raw struct {
		RequireSocialURL bool                `json:"require_social_url"`
		Message          string              `json:"message"`
		Location         string              `json:"location"`
		Candidates       *[]domain.Candidate `json:"candidates"`
	}
	if err := c.doRequest(ctx, http.MethodPost, constants.APIConfig.EnrichPath, req, &raw); err != nil {
		c.logger.Warn("Enrich request failed",
			zap.Error(err),
			zap.Bool("with_social_url", req.SocialURL != ""),
		)
		return nil, err
	}

	resp := &EnrichResponse{
		RequireSocialURL: raw.RequireSocialURL,
		Message:          raw.Message,
		Location:         raw.Location,
	}
	if raw.Candidates != nil {
		resp.HasCandidates = true
		resp.Candidates = *raw.Candidates
	}

	c.logger.Debug("Enrich response received",
		zap.Bool("require_social_url", resp.RequireSocialURL),
		zap.Int("candidates", len(resp.Candidates)),
		zap.String("location", resp.Location),
	)
	return resp, nil
}

func (c *Client) ConfirmProfile(ctx context.Context, req ConfirmRequest) (*domain.Profile, error) {
	profile, err := c.fetchProfile(ctx, constants.APIConfig.ConfirmProfilePath, req)
	if err != nil {
		c.logger.Warn("Confirm profile request failed", zap.Error(err))
		return nil, err
	}
	return profile, nil
}

func (c *Client) FullProfile(ctx context.Context, req FullProfileRequest) (*domain.Profile, error) {
	profile, err := c.fetchProfile(ctx, constants.APIConfig.FullProfilePath, req)
	if err != nil {
		c.logger.Warn("Full profile request failed",
			zap.Error(err),
			zap.String("candidate_url", req.URL),
		)
		return nil, err
	}
	return profile, nil
}

func (c *Client) fetchProfile(ctx context.Context, path string, reqBody any) (*domain.Profile, error) {
	var payload json.RawMessage
	if err := c.doRequest(ctx, http.MethodPost, path, reqBody, &payload); err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(payload); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.NewAPIError("empty profile payload", http.StatusBadGateway, map[string]any{
			"path": path,
		})
	}

	profile, err := domain.ParseProfile(payload)
	if err != nil {
		return nil, errors.NewAPIError("failed to decode profile", http.StatusBadGateway, map[string]any{
			"path": path,
		}).WithCause(err)
	}
	return profile, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqBody, respBody any) error {
	url := c.baseURL + path

	if c.breaker != nil && !c.breaker.CanExecute() {
		return errors.NewAPIError("circuit breaker open", http.StatusServiceUnavailable, map[string]any{
			"url":            url,
			"retry_after_ms": c.breaker.RetryAfter().Milliseconds(),
		}).WithServerMessage(constants.Messages.ServiceUnavailable)
	}

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return errors.NewAPIError("failed to marshal request", http.StatusBadRequest, map[string]any{
				"url": url,
			}).WithCause(err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return errors.NewAPIError("failed to create request", http.StatusInternalServerError, map[string]any{
			"url": url,
		}).WithCause(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if ip := ForwardedFor(ctx); ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return errors.NewAPIError("request failed", http.StatusBadGateway, map[string]any{
			"url": url,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure()
		return errors.NewAPIError("failed to read response", http.StatusBadGateway, map[string]any{
			"url": url,
		}).WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			c.recordFailure()
		}
		apiErr := errors.NewAPIError(
			fmt.Sprintf("enrichment API error: %s", resp.Status),
			resp.StatusCode,
			map[string]any{
				"url":  url,
				"body": util.TruncateString(string(bodyBytes), 512),
			},
		)
		var errBody errorResponse
		if json.Unmarshal(bodyBytes, &errBody) == nil {
			apiErr.WithServerMessage(errBody.Error)
		}
		return apiErr
	}

	c.recordSuccess()

	if respBody != nil {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return errors.NewAPIError("failed to decode response", http.StatusBadGateway, map[string]any{
				"url": url,
			}).WithCause(err)
		}
	}

	return nil
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.RecordFailure()
	}
}

func (c *Client) recordSuccess() {
	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
}
