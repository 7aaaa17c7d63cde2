// Package filter decides whether a freshly scraped profile is worth rating.
// Evaluate is a pure predicate: no I/O, deterministic, and the first failing
// check decides the ignore reason. Seed users never go through it.
package filter

import (
	"strings"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/model"
)

// Verdict is the outcome of an evaluation. Reason is only set when Keep is
// false and is always one of the model.Reason* constants.
type Verdict struct {
	Keep   bool
	Reason string
}

func keep() Verdict {
	return Verdict{Keep: true}
}

func ignore(reason string) Verdict {
	return Verdict{Keep: false, Reason: reason}
}

// Evaluate runs the checks in precedence order against the scraped profile
// and its contribution summary. Contributions may be nil when the fetch
// failed; that is itself an ignore reason.
func Evaluate(user *model.User, contributions *model.ContributionSummary, config cfg.Filter) Verdict {
	// 1. Location
	if inBannedRegion(user.Location, config.BannedRegions) {
		return ignore(model.ReasonBannedRegion)
	}

	// 2. Account age
	if user.GithubCreatedAt != nil {
		ageDays := int(user.CreatedAgeDays())
		if ageDays < config.MinAccountAgeDays {
			return ignore(model.ReasonAccountTooNew)
		}
	}

	// 3. Profile completeness
	if user.Name == "" && user.Company == "" && user.Blog == "" && user.Email == "" {
		return ignore(model.ReasonInsufficientProfile)
	}

	// 4. Follower/following bounds
	if user.Followers > config.MaxFollowers || user.Following > config.MaxFollowing {
		return ignore(model.ReasonFollowerCountOutOfBand)
	}

	// 5. Contribution availability
	if contributions == nil {
		return ignore(model.ReasonContributionsUnfetchable)
	}

	// 6. Contribution volume against the follower tier. Popularity has to be
	// backed by proportionate activity.
	minContributions := config.TierOneContributions
	if user.Followers >= config.TierTwoFollowers {
		minContributions = config.TierThreeContributions
	} else if user.Followers >= config.TierOneFollowers {
		minContributions = config.TierTwoContributions
	}
	if contributions.Total() < minContributions {
		return ignore(model.ReasonLowContributionVolume)
	}

	// 7. Activity spread
	if contributions.ActiveMonths() < config.MinActiveMonths {
		return ignore(model.ReasonInsufficientActiveMonths)
	}

	// 8. Weekday-only pattern. Zero-contribution calendars never trip this.
	if contributions.WeekdayRatio() >= config.WeekdayRatioCutoff {
		return ignore(model.ReasonWeekdayOnlyActivity)
	}

	return keep()
}

func inBannedRegion(location string, banned []string) bool {
	if location == "" {
		return false
	}
	lower := strings.ToLower(location)
	for _, region := range banned {
		if region == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(region)) {
			return true
		}
	}
	return false
}
