// Package githubapi is the caller for the GitHub REST and GraphQL APIs. It
// handles authentication with the access token when provided, translates
// rate-limit headers into typed errors, and paces requests through the
// sliding-window limiter. Retrying is delegated to the apiclient layer.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/apiclient"
	"github.com/devscout/github-leadgen/internal/limiter"
	"github.com/devscout/github-leadgen/pkg/log"
)

// ErrNotFound marks a 404 from GitHub: the account is gone or renamed.
// Fatal for the node, not for the crawl.
var ErrNotFound = errors.New("github: not found")

type Caller struct {
	Logger      log.Logger
	Config      *cfg.Config
	client      *apiclient.Client
	rateLimiter *limiter.RateLimiter
	httpClient  *http.Client
}

func NewCaller(logger log.Logger, config *cfg.Config) *Caller {
	return &Caller{
		Logger:      logger,
		Config:      config,
		client:      apiclient.NewClient(logger, config),
		rateLimiter: limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchUser returns the base profile document for a login.
func (c *Caller) FetchUser(ctx context.Context, login string) (*UserResponse, error) {
	url := fmt.Sprintf("%s/users/%s", c.Config.GithubApi.ApiUrl, login)
	user := &UserResponse{}
	if err := c.get(ctx, url, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListConnections returns one page of a user's followers or following. An
// empty page means the listing is exhausted.
func (c *Caller) ListConnections(ctx context.Context, login, direction string, page, perPage int) ([]string, error) {
	url := fmt.Sprintf("%s/users/%s/%s?per_page=%d&page=%d",
		c.Config.GithubApi.ApiUrl, login, direction, perPage, page)
	var connections []ConnectionResponse
	if err := c.get(ctx, url, &connections); err != nil {
		return nil, err
	}
	logins := make([]string, 0, len(connections))
	for _, conn := range connections {
		// Organizations follow nobody worth recruiting
		if conn.Type == "Organization" {
			continue
		}
		logins = append(logins, conn.Login)
	}
	return logins, nil
}

// ListRepos returns the user's most recently pushed non-fork repositories.
func (c *Caller) ListRepos(ctx context.Context, login string, limit int) ([]RepoResponse, error) {
	url := fmt.Sprintf("%s/users/%s/repos?sort=pushed&per_page=%d",
		c.Config.GithubApi.ApiUrl, login, limit)
	var repos []RepoResponse
	if err := c.get(ctx, url, &repos); err != nil {
		return nil, err
	}
	filtered := make([]RepoResponse, 0, len(repos))
	for _, repo := range repos {
		if repo.Fork {
			continue
		}
		filtered = append(filtered, repo)
	}
	return filtered, nil
}

// FetchContributions queries the GraphQL contribution calendar for the past
// year and flattens it into per-day counts plus the aggregate totals.
func (c *Caller) FetchContributions(ctx context.Context, login string) (*ContributionResult, error) {
	query := `query($login: String!) {
		user(login: $login) {
			contributionsCollection {
				totalCommitContributions
				totalIssueContributions
				totalPullRequestContributions
				contributionCalendar {
					totalContributions
					weeks { contributionDays { date contributionCount } }
				}
			}
		}
	}`
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": map[string]string{"login": login},
	})
	if err != nil {
		return nil, err
	}

	result := &graphqlResponse{}
	err = c.client.Call(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.GithubApi.GraphqlUrl, bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		return c.do(req, result)
	})
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("github graphql: %s", result.Errors[0].Message)
	}

	collection := result.Data.User.ContributionsCollection
	contrib := &ContributionResult{
		Commits:       collection.TotalCommitContributions,
		Issues:        collection.TotalIssueContributions,
		PullRequests:  collection.TotalPullRequestContributions,
		CalendarTotal: collection.ContributionCalendar.TotalContributions,
	}
	for _, week := range collection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			contrib.Calendar = append(contrib.Calendar, ContributionDay{
				Date:  day.Date,
				Count: day.ContributionCount,
			})
		}
	}
	return contrib, nil
}

// ContributionResult mirrors model.ContributionSummary without importing it.
type ContributionResult struct {
	Commits       int
	Issues        int
	PullRequests  int
	CalendarTotal int
	Calendar      []ContributionDay
}

type ContributionDay struct {
	Date  string
	Count int
}

func (c *Caller) get(ctx context.Context, url string, v interface{}) error {
	return c.client.Call(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		return c.do(req, v)
	})
}

// do sends one request and decodes the response, translating the GitHub
// status and rate-limit headers into the apiclient error taxonomy.
func (c *Caller) do(req *http.Request, v interface{}) error {
	ctx := req.Context()
	c.rateLimiter.Wait(time.Duration(c.Config.GithubApi.ThrottleDelay) * time.Millisecond)

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if rateErr := c.handleRateLimit(ctx, resp); rateErr != nil {
		return rateErr
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return &apiclient.ServerError{Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("github: unexpected response: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// handleRateLimit reads the rate-limit headers and returns a typed error
// carrying the reset time when the quota is exhausted.
func (c *Caller) handleRateLimit(ctx context.Context, resp *http.Response) error {
	rateRemaining := resp.Header.Get("X-RateLimit-Remaining")
	if (resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests) || rateRemaining != "0" {
		return nil
	}

	resetTimeStr := resp.Header.Get("X-RateLimit-Reset")
	resetTimeInt, err := strconv.ParseInt(resetTimeStr, 10, 64)
	if err != nil {
		// Cannot determine the exact reset, fall back to the configured wait
		reset := time.Now().Add(time.Duration(c.Config.GithubApi.RateLimitResetMin) * time.Minute)
		c.Logger.Warn(ctx, "Rate limit hit with unparsable reset header, assuming %v minutes", c.Config.GithubApi.RateLimitResetMin)
		return &apiclient.RateLimitError{Reset: reset}
	}

	resetTime := time.Unix(resetTimeInt, 0)
	c.Logger.Warn(ctx, "Rate limit hit! GitHub quota resets at %s", resetTime.Format(time.RFC3339))
	return &apiclient.RateLimitError{Reset: resetTime}
}
