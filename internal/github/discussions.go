package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/budget"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
)

// Discussion threads are fitted more aggressively than issue posts
const (
	discussionCommentWords = 300
	discussionThreadWords  = 6000
	discussionThreadHead   = 0.4
	discussionPageSize     = 50
	discussionCommentLimit = 100
)

const discussionSearchQuery = `
query($q: String!, $first: Int!, $after: String, $comments: Int!) {
  search(query: $q, type: DISCUSSION, first: $first, after: $after) {
    nodes {
      ... on Discussion {
        title
        url
        body
        createdAt
        upvoteCount
        author { login }
        comments(first: $comments) {
          nodes {
            author { login }
            body
          }
        }
      }
    }
    pageInfo {
      endCursor
      hasNextPage
    }
  }
}`

type discussionSearchData struct {
	Search struct {
		Nodes    []discussionNode `json:"nodes"`
		PageInfo struct {
			EndCursor   *string `json:"endCursor"`
			HasNextPage bool    `json:"hasNextPage"`
		} `json:"pageInfo"`
	} `json:"search"`
}

type discussionNode struct {
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Body        string          `json:"body"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpvoteCount int             `json:"upvoteCount"`
	Author      *discussionUser `json:"author"`
	Comments    struct {
		Nodes []struct {
			Author *discussionUser `json:"author"`
			Body   string          `json:"body"`
		} `json:"nodes"`
	} `json:"comments"`
}

// ghostLogin stands in for deleted accounts, as github.com renders them
const ghostLogin = "ghost"

type discussionUser struct {
	Login string `json:"login"`
}

func loginOf(author *discussionUser) string {
	if author == nil || author.Login == "" {
		return ghostLogin
	}
	return author.Login
}

func (n discussionNode) authorLogin() string {
	return loginOf(n.Author)
}

// DiscussionSearchQuery builds the search used to find discussions touched in
// the window
func DiscussionSearchQuery(owner, repo, user string, window derive.Window) string {
	parts := []string{"repo:" + owner + "/" + repo}
	if user != "" {
		parts = append(parts, "involves:"+user)
	}
	parts = append(parts, window.UpdatedQualifier())
	return strings.Join(parts, " ")
}

// FetchDiscussions searches discussions updated in the window through the
// GraphQL API and renders each one's posts as the record body
func (f *Fetcher) FetchDiscussions(ctx context.Context, owner, repo, user string, window derive.Window) ([]*activity.Record, error) {
	logger := ai.LoggerFrom(ctx)

	if f.graphql == nil {
		logger.Debug("GraphQL client not configured, skipping discussions")
		return nil, nil
	}

	query := DiscussionSearchQuery(owner, repo, user, window)
	logger.Debug("Searching discussions", "query", query)

	var records []*activity.Record
	var cursor *string
	for {
		var data discussionSearchData
		vars := map[string]any{
			"q":        query,
			"first":    discussionPageSize,
			"after":    cursor,
			"comments": discussionCommentLimit,
		}
		if err := f.graphql.Query(ctx, discussionSearchQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("failed to search discussions for %s/%s: %w", owner, repo, err)
		}

		for _, node := range data.Search.Nodes {
			if node.URL == "" {
				continue
			}
			records = append(records, activity.NewRecord(
				activity.KindDiscussion,
				node.authorLogin(),
				node.Title,
				node.URL,
				discussionThread(node),
				activity.DateOf(node.CreatedAt),
			))
		}

		if !data.Search.PageInfo.HasNextPage || data.Search.PageInfo.EndCursor == nil {
			break
		}
		cursor = data.Search.PageInfo.EndCursor
	}

	logger.Debug("Discussion search completed", "total", len(records))
	return records, nil
}

func discussionThread(n discussionNode) string {
	var b strings.Builder

	upvotes := ""
	if n.UpvoteCount > 0 {
		upvotes = fmt.Sprintf("Upvotes: %d ", n.UpvoteCount)
	}
	fmt.Fprintf(&b, "Title: '%s' Url: '%s' Body: '%s' Created At: %s %sAuthor: %s\n",
		n.Title, n.URL, fitPost(n.Body, budget.PostWordCap),
		activity.DateOf(n.CreatedAt), upvotes, n.authorLogin())

	for _, c := range n.Comments.Nodes {
		comment := fmt.Sprintf("%s comments: '%s'", loginOf(c.Author), c.Body)
		b.WriteString(fitPost(comment, discussionCommentWords))
		b.WriteByte('\n')
	}

	return budget.StripAndFit(b.String(), budget.CodeFence, discussionThreadWords, discussionThreadHead)
}
