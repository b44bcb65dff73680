package leetcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultGraphQLURL is the public LeetCode GraphQL endpoint.
const DefaultGraphQLURL = "https://leetcode.com/graphql"

const userProfileQuery = `query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    submitStats {
      acSubmissionNum {
        difficulty
        count
        submissions
      }
    }
  }
}`

// ErrUserNotFound indicates LeetCode has no user with the requested name.
var ErrUserNotFound = errors.New("leetcode user not found")

// Stats holds the accepted-solution counts of a LeetCode user.
type Stats struct {
	Username     string `json:"username"`
	TotalSolved  int    `json:"totalSolved"`
	EasySolved   int    `json:"easySolved"`
	MediumSolved int    `json:"mediumSolved"`
	HardSolved   int    `json:"hardSolved"`
}

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphQLResponse struct {
	Data *struct {
		MatchedUser *struct {
			SubmitStats struct {
				AcSubmissionNum []struct {
					Difficulty  string `json:"difficulty"`
					Count       int    `json:"count"`
					Submissions int    `json:"submissions"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
		} `json:"matchedUser"`
	} `json:"data"`
}

// Client queries the LeetCode GraphQL API.
type Client struct {
	client *resty.Client
}

// NewClient builds a client for the given GraphQL endpoint.
func NewClient(graphQLURL string, timeout time.Duration) *Client {
	if graphQLURL == "" {
		graphQLURL = DefaultGraphQLURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(graphQLURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0")

	return &Client{client: client}
}

// FetchStats returns the solved counts for username.
func (c *Client) FetchStats(ctx context.Context, username string) (Stats, error) {
	var body graphQLResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(graphQLRequest{
			Query:     userProfileQuery,
			Variables: map[string]string{"username": username},
		}).
		SetResult(&body).
		Post("")
	if err != nil {
		return Stats{}, fmt.Errorf("query leetcode: %w", err)
	}
	if resp.IsError() {
		return Stats{}, fmt.Errorf("query leetcode: unexpected status %s", resp.Status())
	}

	if body.Data == nil || body.Data.MatchedUser == nil {
		return Stats{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	stats := Stats{Username: username}
	for _, entry := range body.Data.MatchedUser.SubmitStats.AcSubmissionNum {
		switch strings.ToLower(entry.Difficulty) {
		case "all":
			stats.TotalSolved = entry.Count
		case "easy":
			stats.EasySolved = entry.Count
		case "medium":
			stats.MediumSolved = entry.Count
		case "hard":
			stats.HardSolved = entry.Count
		}
	}

	return stats, nil
}
