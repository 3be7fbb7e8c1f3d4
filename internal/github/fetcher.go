package github

import (
	"context"
	"sync"

	"github.com/google/go-github/v66/github"
)

// Fetcher turns GitHub REST and GraphQL data into activity records
type Fetcher struct {
	client  *github.Client
	graphql *GraphQLClient

	mu           sync.Mutex
	contributors map[string]map[string]bool // owner/repo -> logins
}

// NewFetcher creates a fetcher over an authenticated REST client and a GraphQL
// client. graphql may be nil, in which case discussions are skipped.
func NewFetcher(client *github.Client, graphql *GraphQLClient) *Fetcher {
	return &Fetcher{
		client:       client,
		graphql:      graphql,
		contributors: make(map[string]map[string]bool),
	}
}

// NewFetcherFromToken builds both clients from a token
func NewFetcherFromToken(ctx context.Context, token string) *Fetcher {
	return NewFetcher(New(ctx, token), NewGraphQLClient(ctx, token))
}
