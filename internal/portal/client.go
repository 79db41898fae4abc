package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/config"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/logger"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/session"
	"github.com/alienorar/student-system.asianuniversity.uz/pkg/errors"
)

// Client talks to the remote student-portal REST backend. Read calls are
// retried on transport failure up to the configured attempt count with a
// fixed delay; mutations are issued exactly once and their failures are
// surfaced for explicit user re-action.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	session    session.Store
	log        zerolog.Logger
}

func NewClient(cfg *config.Config, store session.Store) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Portal.Timeout,
		},
		session: store,
		log:     logger.Named("portal"),
	}
}

// studentURL joins a path under the authenticated student API prefix.
func (c *Client) studentURL(path string) string {
	return c.cfg.Portal.BaseURL + c.cfg.Portal.APIPrefix + path
}

// rootURL joins a path directly under the base URL; the upload and
// start-lesson endpoints live outside the student prefix.
func (c *Client) rootURL(path string) string {
	return c.cfg.Portal.BaseURL + path
}

// ImageURL turns the file path reference returned by the upload endpoint
// into an absolute URL.
func (c *Client) ImageURL(filePath string) string {
	return c.cfg.Portal.BaseURL + filePath
}

func (c *Client) authorize(req *http.Request) error {
	rec, err := c.session.Load()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if rec.AccessToken != "" {
		req.Header.Set(c.cfg.Portal.TokenHeader, rec.AccessToken)
	}
	return nil
}

// getJSON fetches an enveloped resource, retrying transport-level and 5xx
// failures. Application-level failures (success:false) are never retried.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	attempts := c.cfg.Portal.RetryAttempts + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.log.Warn().Err(lastErr).Int("attempt", attempt+1).Str("url", url).
				Msg("Read failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.Portal.RetryDelay):
			}
		}

		err := c.doEnveloped(ctx, http.MethodGet, url, nil, out)
		if err == nil {
			return nil
		}
		if !errors.IsRetryable(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exhausted: %w", lastErr)
}

// postJSON issues a mutation exactly once.
func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	return c.doEnveloped(ctx, http.MethodPost, url, body, out)
}

func (c *Client) doEnveloped(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewRetryableError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.NewRetryableError(
			fmt.Errorf("%w: HTTP %d", errors.ErrPortalUnavailable, resp.StatusCode), "portal unavailable")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return errors.ErrNotAuthenticated
	}

	var env model.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return errors.NewAPIError(env.ErrorMessage)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal data: %w", err)
		}
	}
	return nil
}
