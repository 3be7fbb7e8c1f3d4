package github

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

const (
	userAgent         = "weekly-report-bot/1.0"
	maxRetries        = 3
	requestTimeoutSec = 30 // 30 second timeout per request

	// Waits beyond this are not worth holding a report for
	maxRateLimitWait = 2 * time.Minute
)

// baseBackoff is the first retry delay; later attempts double it
var baseBackoff = time.Second

// New creates a new GitHub client with OAuth2 authentication and retry logic
func New(ctx context.Context, token string) *github.Client {
	client := github.NewClient(newHTTPClient(token))
	client.UserAgent = userAgent
	return client
}

// newHTTPClient returns an authenticated client that retries transient
// failures and rate limits
func newHTTPClient(token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})

	return &http.Client{
		Timeout: requestTimeoutSec * time.Second,
		Transport: &retryTransport{
			base: &oauth2.Transport{
				Source: ts,
				Base:   http.DefaultTransport,
			},
		},
	}
}

// retryDelay decides whether a response is worth another attempt and how
// long to wait first. body may be empty when the caller has not read it.
func retryDelay(status int, header http.Header, body string, attempt int) (time.Duration, bool) {
	switch {
	case status >= 500:
		return backoff(attempt), true
	case status == http.StatusTooManyRequests, isRateLimited(status, header, body):
		wait := rateLimitWait(header, attempt)
		if wait > maxRateLimitWait {
			return 0, false
		}
		return wait, true
	}
	return 0, false
}

// isRateLimited separates primary and secondary rate limits from 403s caused
// by missing scopes or SSO, which never succeed on retry
func isRateLimited(status int, header http.Header, body string) bool {
	if status != http.StatusForbidden {
		return false
	}
	return header.Get("Retry-After") != "" ||
		header.Get("X-RateLimit-Remaining") == "0" ||
		strings.Contains(strings.ToLower(body), "rate limit")
}

// rateLimitWait reads Retry-After, then X-RateLimit-Reset, falling back to
// the normal backoff
func rateLimitWait(header http.Header, attempt int) time.Duration {
	if s := header.Get("Retry-After"); s != "" {
		if sec, err := strconv.Atoi(s); err == nil && sec >= 0 {
			return time.Duration(sec) * time.Second
		}
	}
	if s := header.Get("X-RateLimit-Reset"); s != "" {
		if reset, err := strconv.ParseInt(s, 10, 64); err == nil {
			if d := time.Until(time.Unix(reset, 0)); d > 0 {
				return d + time.Second
			}
		}
	}
	return backoff(attempt)
}

// backoff is baseBackoff * 2^attempt with ±25% jitter
func backoff(attempt int) time.Duration {
	d := baseBackoff << attempt
	spread := int64(d / 4)
	if spread <= 0 {
		return d
	}
	n, err := rand.Int(rand.Reader, big.NewInt(2*spread+1))
	if err != nil {
		return d
	}
	return d + time.Duration(n.Int64()-spread)
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryTransport retries network errors and the responses retryDelay accepts.
// Everything else, including 401/404 and scope related 403s, passes through
// for go-github to turn into an ErrorResponse.
type retryTransport struct {
	base http.RoundTripper
}

func (rt *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := rt.base.RoundTrip(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if attempt == maxRetries {
				break
			}
			if err := sleepCtx(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		wait, retry := retryDelay(resp.StatusCode, resp.Header, "", attempt)
		if !retry || attempt == maxRetries {
			return resp, nil
		}
		resp.Body.Close()
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("GitHub API request failed after %d attempts: %w", maxRetries+1, lastErr)
}
