package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"golang.org/x/oauth2"
)

const defaultGraphQLURL = "https://api.github.com/graphql"

// GraphQLClient posts queries to the GitHub GraphQL API with retry
type GraphQLClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewGraphQLClient creates a GraphQL client authenticated with token. The
// transport does not retry; Query applies the same policy as the REST
// transport, reading the error body as well.
func NewGraphQLClient(ctx context.Context, token string) *GraphQLClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GraphQLClient{
		httpClient: &http.Client{
			Timeout: requestTimeoutSec * time.Second,
			Transport: &oauth2.Transport{
				Source: ts,
				Base:   http.DefaultTransport,
			},
		},
		baseURL: defaultGraphQLURL,
	}
}

// NewGraphQLClientWithURL creates a client for a custom endpoint, such as a
// GitHub Enterprise server or a test server
func NewGraphQLClientWithURL(httpClient *http.Client, baseURL string) *GraphQLClient {
	return &GraphQLClient{httpClient: httpClient, baseURL: baseURL}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// rateLimited reports a secondary rate limit, which GitHub returns with
// status 200 and an error of type RATE_LIMITED
func (r *graphQLResponse) rateLimited() bool {
	for _, e := range r.Errors {
		if e.Type == "RATE_LIMITED" {
			return true
		}
	}
	return false
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Query executes a query and decodes its data field into out
func (c *GraphQLClient) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	response, err := c.executeGraphQLWithRetry(ctx, graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(response.Data, out); err != nil {
		return fmt.Errorf("failed to decode GraphQL data: %w", err)
	}
	return nil
}

func (c *GraphQLClient) executeGraphQLWithRetry(ctx context.Context, request graphQLRequest) (*graphQLResponse, error) {
	logger := ai.LoggerFrom(ctx)

	for attempt := 0; ; attempt++ {
		response, err := c.executeGraphQL(ctx, request)
		if err == nil && response.rateLimited() && attempt < maxRetries {
			wait := backoff(attempt)
			logger.Debug("GraphQL rate limited", "attempt", attempt+1, "wait", wait)
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}
		if err == nil {
			if len(response.Errors) > 0 {
				logger.Debug("GraphQL errors in response", "errors", len(response.Errors))
				return nil, formatGraphQLErrors(response.Errors)
			}
			return response, nil
		}

		httpErr, ok := err.(*httpError)
		if !ok {
			return nil, err
		}
		wait, retry := retryDelay(httpErr.StatusCode, httpErr.Headers, httpErr.Body, attempt)
		if !retry {
			return nil, enhanceGraphQLError(err)
		}
		if attempt == maxRetries {
			return nil, fmt.Errorf("GraphQL request failed after %d attempts: %w", maxRetries+1, enhanceGraphQLError(err))
		}

		logger.Debug("Retrying GraphQL request", "attempt", attempt+1, "status", httpErr.StatusCode, "wait", wait)
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (c *GraphQLClient) executeGraphQL(ctx context.Context, request graphQLRequest) (*graphQLResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Headers:    resp.Header,
		}
	}

	var response graphQLResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal GraphQL response: %w", err)
	}

	return &response, nil
}

// httpError represents an HTTP error response
type httpError struct {
	StatusCode int
	Body       string
	Headers    http.Header
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func enhanceGraphQLError(err error) error {
	if httpErr, ok := err.(*httpError); ok {
		switch httpErr.StatusCode {
		case 401:
			return fmt.Errorf("GitHub GraphQL authentication failed.\nYour GITHUB_TOKEN may be invalid.\nVisit https://github.com/settings/tokens to create or update your token: %w", err)
		case 403:
			if strings.Contains(httpErr.Body, "rate limit") {
				return fmt.Errorf("GitHub GraphQL API rate limit exceeded: %w", err)
			}
			return fmt.Errorf("GitHub GraphQL access denied. Your token may lack the scopes needed to read discussions: %w", err)
		case 429:
			return fmt.Errorf("GitHub GraphQL API rate limit exceeded.\nRetry after a few minutes: %w", err)
		}
	}
	return err
}

func formatGraphQLErrors(errors []graphQLError) error {
	var messages []string
	for _, err := range errors {
		messages = append(messages, err.Message)
	}
	return fmt.Errorf("GraphQL errors:\n  - %s", strings.Join(messages, "\n  - "))
}
