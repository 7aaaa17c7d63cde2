// Package rater scores an enriched profile against the hiring rubric. The
// crawler treats it as an opaque collaborator behind the Rater interface.
package rater

import (
	"context"
	"fmt"
	"strings"

	"github.com/devscout/github-leadgen/internal/model"
)

// Result is a scored profile: overall score, per-criterion breakdown and
// classification tags.
type Result struct {
	Score     float64               `json:"score"`
	Breakdown model.RatingBreakdown `json:"breakdown"`
	Tags      model.StringList      `json:"tags"`
}

type Rater interface {
	Rate(ctx context.Context, user *model.User) (*Result, error)
}

// BuildDocument flattens the scraped and enriched facets into the text the
// rubric is applied to.
func BuildDocument(user *model.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GitHub login: %s\n", user.Login)
	if user.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", user.Name)
	}
	if user.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", user.Company)
	}
	if user.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", user.Location)
	}
	if user.Blog != "" {
		fmt.Fprintf(&b, "Website: %s\n", user.Blog)
	}
	fmt.Fprintf(&b, "Followers: %d, Following: %d, Public repos: %d\n",
		user.Followers, user.Following, user.PublicRepos)

	if user.Contributions != nil {
		fmt.Fprintf(&b, "Contributions last year: %d commits, %d issues, %d PRs, %d calendar total, %d active months\n",
			user.Contributions.Commits, user.Contributions.Issues,
			user.Contributions.PullRequests, user.Contributions.CalendarTotal,
			user.Contributions.ActiveMonths())
	}
	if user.Repos != nil {
		b.WriteString("Repositories:\n")
		for _, repo := range *user.Repos {
			fmt.Fprintf(&b, "- %s (%s, %d stars): %s\n", repo.Name, repo.Language, repo.Stars, repo.Description)
		}
	}
	if user.SocialBio != nil && *user.SocialBio != "" {
		fmt.Fprintf(&b, "Bio: %s\n", *user.SocialBio)
	}
	if user.LinkedinSummary != nil && *user.LinkedinSummary != "" {
		fmt.Fprintf(&b, "Professional summary: %s\n", *user.LinkedinSummary)
	} else if user.LinkedinExperience != nil && *user.LinkedinExperience != "" {
		fmt.Fprintf(&b, "Professional experience: %s\n", *user.LinkedinExperience)
	}
	if user.EmployerInsights != nil && *user.EmployerInsights != "" {
		fmt.Fprintf(&b, "Employer insights: %s\n", *user.EmployerInsights)
	}
	if user.WebResearch != nil && *user.WebResearch != "" {
		fmt.Fprintf(&b, "Web research:\n%s\n", *user.WebResearch)
	}
	return b.String()
}
