package crawler

import (
	"context"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/enrich"
	"github.com/devscout/github-leadgen/internal/filter"
	"github.com/devscout/github-leadgen/internal/githubapi"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/internal/rater"
	"github.com/devscout/github-leadgen/pkg/log"
)

// Processor runs the per-user state machine:
// unscraped -> scraped -> filtered -> enriched -> rated -> processed/ignored.
// Every sub-step persists before the next starts, so a crash mid-pipeline
// loses at most the step in flight and a restart resumes where it stopped.
type Processor struct {
	Logger   log.Logger
	Config   *cfg.Config
	UserMd   *model.User
	Source   ProfileSource
	Enricher *enrich.Pipeline
	Rater    rater.Rater
}

func NewProcessor(logger log.Logger, config *cfg.Config, userMd *model.User, source ProfileSource, enricher *enrich.Pipeline, r rater.Rater) *Processor {
	return &Processor{
		Logger:   logger,
		Config:   config,
		UserMd:   userMd,
		Source:   source,
		Enricher: enricher,
		Rater:    r,
	}
}

// Process takes one claimed user to a terminal state and returns the updated
// document. A nil error with Status=ignored is a normal outcome; an error is
// only returned for the credits-exhausted signal and for store failures;
// the scheduler converts the latter to ignored.
func (p *Processor) Process(ctx context.Context, user *model.User) (*model.User, error) {
	// Already rated: re-entrant resume. Never re-scrape or re-rate; the user
	// was claimed only because an edge direction still needs discovery.
	if user.Rating != nil {
		if err := p.UserMd.SetStatus(user.Login, model.StatusProcessed); err != nil {
			return user, err
		}
		user.Status = model.StatusProcessed
		return user, nil
	}

	// Scrape base profile
	if !user.ProfileScraped {
		profile, err := p.Source.FetchUser(ctx, user.Login)
		if err != nil {
			// Fatal for the user, not for the crawl
			p.Logger.Warn(ctx, "Scrape failed for %s: %v", user.Login, err)
			if setErr := p.UserMd.SetIgnored(user.Login, model.ReasonScrapeError); setErr != nil {
				return user, setErr
			}
			user.Status = model.StatusIgnored
			user.IgnoredReason = model.ReasonScrapeError
			return user, nil
		}
		fields := model.ProfileFields{
			Name:        profile.Name,
			Company:     profile.Company,
			Location:    profile.Location,
			Email:       profile.Email,
			Blog:        profile.Blog,
			Followers:   profile.Followers,
			Following:   profile.Following,
			PublicRepos: profile.PublicRepos,
		}
		if !profile.CreatedAt.IsZero() {
			createdAt := profile.CreatedAt
			fields.CreatedAt = &createdAt
		}
		if err := p.UserMd.SetProfile(user.Login, fields); err != nil {
			return user, err
		}
		applyProfile(user, fields)

		// The social bio rides along with the profile document
		if user.SocialBio == nil {
			bio := profile.Bio
			if err := p.UserMd.SetSocialBio(user.Login, bio); err != nil {
				return user, err
			}
			user.SocialBio = &bio
		}
	}

	// Contribution summary
	if user.Contributions == nil {
		contrib, err := p.Source.FetchContributions(ctx, user.Login)
		if err != nil {
			if !user.Seed {
				p.Logger.Warn(ctx, "Contributions unavailable for %s: %v", user.Login, err)
				if setErr := p.UserMd.SetIgnored(user.Login, model.ReasonContributionsUnfetchable); setErr != nil {
					return user, setErr
				}
				user.Status = model.StatusIgnored
				user.IgnoredReason = model.ReasonContributionsUnfetchable
				return user, nil
			}
			// Seeds bypass the filter, the facet just stays absent
			p.Logger.Warn(ctx, "Contributions unavailable for seed %s, continuing: %v", user.Login, err)
		} else {
			summary := toSummary(contrib)
			if err := p.UserMd.SetContributions(user.Login, summary); err != nil {
				return user, err
			}
			user.Contributions = summary
		}
	}

	// Filter (seeds bypass entirely)
	if !user.Seed {
		verdict := filter.Evaluate(user, user.Contributions, p.Config.Filter)
		if !verdict.Keep {
			p.Logger.Info(ctx, "Filtered out %s: %s", user.Login, verdict.Reason)
			if err := p.UserMd.SetIgnored(user.Login, verdict.Reason); err != nil {
				return user, err
			}
			user.Status = model.StatusIgnored
			user.IgnoredReason = verdict.Reason
			return user, nil
		}
	}

	// Enrichment. ErrCreditsExhausted passes through here untouched.
	if p.Enricher != nil {
		enriched, err := p.Enricher.Enrich(ctx, user)
		user = enriched
		if err != nil {
			return user, err
		}
	}

	// Rating. Seeds get the documented default so the queue bootstraps with
	// a priority-bearing rating without spending an LLM call.
	if user.Seed && user.Depth == 0 {
		score := p.Config.Crawler.SeedDefaultRating
		if err := p.UserMd.SetRating(user.Login, score, model.RatingBreakdown{}, model.StringList{"seed"}); err != nil {
			return user, err
		}
		user.Rating = &score
	} else {
		result, err := p.Rater.Rate(ctx, user)
		if err != nil {
			return user, err
		}
		if err := p.UserMd.SetRating(user.Login, result.Score, result.Breakdown, result.Tags); err != nil {
			return user, err
		}
		user.Rating = &result.Score
		user.RatingBreakdown = result.Breakdown
		user.Tags = result.Tags
	}

	// Terminal
	if err := p.UserMd.SetStatus(user.Login, model.StatusProcessed); err != nil {
		return user, err
	}
	user.Status = model.StatusProcessed
	return user, nil
}

func applyProfile(user *model.User, fields model.ProfileFields) {
	user.ProfileScraped = true
	user.Name = fields.Name
	user.Company = fields.Company
	user.Location = fields.Location
	user.Email = fields.Email
	user.Blog = fields.Blog
	user.Followers = fields.Followers
	user.Following = fields.Following
	user.PublicRepos = fields.PublicRepos
	user.GithubCreatedAt = fields.CreatedAt
}

func toSummary(contrib *githubapi.ContributionResult) *model.ContributionSummary {
	summary := &model.ContributionSummary{
		Commits:       contrib.Commits,
		Issues:        contrib.Issues,
		PullRequests:  contrib.PullRequests,
		CalendarTotal: contrib.CalendarTotal,
	}
	for _, day := range contrib.Calendar {
		summary.Calendar = append(summary.Calendar, model.ContributionDay{
			Date:  day.Date,
			Count: day.Count,
		})
	}
	return summary
}
