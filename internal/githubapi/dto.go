package githubapi

import "time"

// UserResponse maps the GitHub REST user document.
type UserResponse struct {
	Login       string    `json:"login"`
	Id          int64     `json:"id"`
	Name        string    `json:"name"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Email       string    `json:"email"`
	Blog        string    `json:"blog"`
	Bio         string    `json:"bio"`
	TwitterUser string    `json:"twitter_username"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"public_repos"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConnectionResponse is one entry of a followers/following page.
type ConnectionResponse struct {
	Login string `json:"login"`
	Id    int64  `json:"id"`
	Type  string `json:"type"`
}

// RepoResponse is one entry of a user's repository listing.
type RepoResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Fork        bool   `json:"fork"`
}

// GraphQL contribution calendar response shapes

type graphqlResponse struct {
	Data struct {
		User struct {
			ContributionsCollection struct {
				TotalCommitContributions      int `json:"totalCommitContributions"`
				TotalIssueContributions       int `json:"totalIssueContributions"`
				TotalPullRequestContributions int `json:"totalPullRequestContributions"`
				ContributionCalendar          struct {
					TotalContributions int `json:"totalContributions"`
					Weeks              []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}
