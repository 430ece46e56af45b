// Package web downloads markup over http and https.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/htmltab/internal/connectors/textdecode"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
	"github.com/custodia-labs/htmltab/internal/logger"
)

// Verify interface compliance.
var _ driven.Fetcher = (*Connector)(nil)

// acceptHeader prefers HTML but takes whatever the server has.
const acceptHeader = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"

// DefaultMaxBytes caps a downloaded page.
const DefaultMaxBytes int64 = 32 << 20

// Config configures the web connector.
type Config struct {
	// UserAgent is sent with every request. Empty uses domain.DefaultUserAgent.
	UserAgent string

	// Timeout bounds a single request, including reading the body.
	Timeout time.Duration

	// Headers are extra "Key: Value" request headers.
	Headers []string

	// RateLimit throttles requests across all fetches by this connector.
	RateLimit RateLimitConfig

	// MaxBytes caps the response body size. Zero uses DefaultMaxBytes.
	MaxBytes int64

	// MaxRetries is how often a 429 response is retried after backing off.
	MaxRetries int
}

// ConfigFromSettings builds a Config from application fetch settings.
func ConfigFromSettings(s domain.FetchSettings) Config {
	return Config{
		UserAgent: s.UserAgent,
		Timeout:   s.Timeout,
		Headers:   s.Headers,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: s.RequestsPerSecond,
			BurstSize:         s.Burst,
		},
		MaxRetries: 1,
	}
}

// Option configures a Connector.
type Option func(*Connector)

// WithHTTPClient replaces the HTTP client. The client's timeout is kept.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) {
		c.client = client
	}
}

// Connector fetches pages over HTTP.
// It is safe for concurrent use; all fetches share one rate limiter.
type Connector struct {
	client   *http.Client
	limiter  *RateLimiter
	header   http.Header
	maxBytes int64
	retries  int
}

// New creates a web connector. It fails if a configured header is malformed.
func New(cfg Config, opts ...Option) (*Connector, error) {
	header, err := ParseHeaders(cfg.Headers)
	if err != nil {
		return nil, err
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = domain.DefaultUserAgent
	}
	header.Set("User-Agent", userAgent)
	if header.Get("Accept") == "" {
		header.Set("Accept", acceptHeader)
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	c := &Connector{
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  NewRateLimiter(cfg.RateLimit),
		header:   header,
		maxBytes: maxBytes,
		retries:  max(cfg.MaxRetries, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Kinds returns the source kinds this connector reads.
func (c *Connector) Kinds() []domain.SourceKind {
	return []domain.SourceKind{domain.SourceURL}
}

// Fetch downloads the page and decodes it using the response charset.
func (c *Connector) Fetch(ctx context.Context, src domain.Source) (*domain.Document, error) {
	if src.Kind != domain.SourceURL {
		return nil, fmt.Errorf("%w: %s source %q", domain.ErrUnsupportedSource, src.Kind, src.Location)
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, src.Location)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			c.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
			if attempt < c.retries {
				logger.Debug("rate limited by %s, retrying", src.Location)
				continue
			}
			return nil, fmt.Errorf("%w: %w: %s", domain.ErrFetchFailed, ErrRateLimited, src.Location)
		}

		doc, err := c.read(resp, src)
		resp.Body.Close()
		return doc, err
	}
}

func (c *Connector) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	req.Header = c.header.Clone()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	return resp, nil
}

func (c *Connector) read(resp *http.Response, src domain.Source) (*domain.Document, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: src.Location, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrFetchFailed, src.Location, err)
	}
	if int64(len(raw)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %w: more than %d bytes", domain.ErrFetchFailed, ErrTooLarge, c.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	decoded, err := textdecode.Decode(raw, contentType)
	if err != nil {
		return nil, err
	}
	logger.Debug("downloaded %s: %d bytes, %s, charset %s", src.Location, len(raw), resp.Status, decoded.Charset)

	return &domain.Document{
		Source:      src,
		Text:        decoded.Text,
		ContentType: contentType,
		Charset:     decoded.Charset,
		Size:        len(raw),
		FetchedAt:   time.Now(),
	}, nil
}

// ParseHeaders parses "Key: Value" lines into a header.
func ParseHeaders(lines []string) (http.Header, error) {
	header := make(http.Header, len(lines)+2)
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("%w: header %q must look like \"Key: Value\"", domain.ErrInvalidInput, line)
		}
		header.Add(key, strings.TrimSpace(value))
	}
	return header, nil
}

// parseRetryAfter converts a Retry-After value, either seconds or an
// HTTP date, to a duration. Unparseable values return zero.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return at.Sub(now)
	}
	return 0
}
