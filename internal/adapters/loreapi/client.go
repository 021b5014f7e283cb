package loreapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PabloGalante/lorekeeper/internal/domain"
	"github.com/PabloGalante/lorekeeper/internal/observability"
)

const (
	DefaultBaseURL = "https://www.worldanvil.com/api/external/boromir"

	headerAppKey    = "x-application-key"
	headerAuthToken = "x-auth-token"

	// upstream error bodies are only read for a message
	maxErrorBody = 64 << 10
)

// Client fetches world snapshots from the World Anvil Boromir API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a client timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  "lorekeeper/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FetchWorld implements domain.LoreFetcher. Missing credentials fail before any request is made.
func (c *Client) FetchWorld(ctx context.Context, creds domain.Credentials) (*domain.WorldSnapshot, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/world/%s?granularity=1", c.baseURL, url.PathEscape(creds.WorldID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set(headerAppKey, creds.ApplicationKey)
	req.Header.Set(headerAuthToken, creds.AuthToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	log := observability.LoggerFromContext(ctx)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tErr := transportError(err)
		log.Error("lore fetch failed", "error", tErr)
		return nil, tErr
	}
	defer resp.Body.Close()

	log.Info("lore fetch completed", "status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	snap, err := domain.ParseWorldSnapshot(data)
	if err != nil {
		return nil, &domain.UpstreamError{
			Service: domain.ServiceLore,
			Status:  resp.StatusCode,
			Message: err.Error(),
		}
	}
	return snap, nil
}

// transportError drops the request URL from err; the path carries the world id.
func transportError(err error) *domain.TransportError {
	var uErr *url.Error
	if errors.As(err, &uErr) {
		err = fmt.Errorf("%s request: %w", uErr.Op, uErr.Err)
	}
	return &domain.TransportError{Service: domain.ServiceLore, Err: err}
}

func upstreamError(resp *http.Response) *domain.UpstreamError {
	msg := fmt.Sprintf("service returned %d", resp.StatusCode)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		switch {
		case strings.TrimSpace(body.Message) != "":
			msg = body.Message
		case strings.TrimSpace(body.Error) != "":
			msg = body.Error
		}
	}

	return &domain.UpstreamError{
		Service: domain.ServiceLore,
		Status:  resp.StatusCode,
		Message: msg,
	}
}
