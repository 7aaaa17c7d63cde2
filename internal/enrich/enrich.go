// Package enrich fills in the optional profile facets before rating. Every
// facet follows the same contract: if the column is already set, do nothing;
// otherwise fetch and persist immediately. Redundant calls across restarts
// are therefore free, and a crash loses at most the facet in flight.
package enrich

import (
	"context"
	"errors"
	"sync"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/log"
)

// ErrCreditsExhausted signals that the paid data provider ran out of quota.
// It must pass through every layer uncaught so the scheduler can stop the
// whole crawl instead of silently degrading data quality.
var ErrCreditsExhausted = errors.New("enrich: data provider credits exhausted")

// RepoFetcher lists a user's repositories.
type RepoFetcher interface {
	FetchRepos(ctx context.Context, login string) (*model.RepoList, error)
}

// Researcher performs the generic background web search for a user.
type Researcher interface {
	Research(ctx context.Context, user *model.User) (string, error)
}

// LinkedinProvider is the professional-network data source. Its methods form
// a dependency chain: url -> experience -> (summary) -> employer insights.
type LinkedinProvider interface {
	FindProfileUrl(ctx context.Context, user *model.User) (string, error)
	FetchExperience(ctx context.Context, profileUrl string) (string, error)
	EmployerInsights(ctx context.Context, company string) (string, error)
}

// Summarizer condenses raw experience text into a short narrative.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Pipeline struct {
	Logger     log.Logger
	Config     *cfg.Config
	UserMd     *model.User
	Repos      RepoFetcher
	Researcher Researcher
	Linkedin   LinkedinProvider
	Summarizer Summarizer
}

func NewPipeline(logger log.Logger, config *cfg.Config, userMd *model.User) *Pipeline {
	return &Pipeline{
		Logger: logger,
		Config: config,
		UserMd: userMd,
	}
}

// Enrich runs all facets for the user and returns the updated document. The
// web-research facet is independent of the LinkedIn chain and runs
// concurrently with it. Individual facet failures leave the facet absent;
// only ErrCreditsExhausted aborts.
func (p *Pipeline) Enrich(ctx context.Context, user *model.User) (*model.User, error) {
	if err := p.ensureRepos(ctx, user); err != nil {
		return user, err
	}

	var wg sync.WaitGroup
	var researchErr, linkedinErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		researchErr = p.ensureWebResearch(ctx, user)
	}()
	go func() {
		defer wg.Done()
		linkedinErr = p.ensureLinkedinChain(ctx, user)
	}()
	wg.Wait()

	if errors.Is(researchErr, ErrCreditsExhausted) {
		return user, researchErr
	}
	if errors.Is(linkedinErr, ErrCreditsExhausted) {
		return user, linkedinErr
	}
	return user, nil
}

func (p *Pipeline) ensureRepos(ctx context.Context, user *model.User) error {
	if user.Repos != nil || p.Repos == nil {
		return nil
	}
	repos, err := p.Repos.FetchRepos(ctx, user.Login)
	if err != nil {
		if errors.Is(err, ErrCreditsExhausted) {
			return err
		}
		p.Logger.Warn(ctx, "Repo facet failed for %s, leaving absent: %v", user.Login, err)
		return nil
	}
	if err := p.UserMd.SetRepos(user.Login, repos); err != nil {
		return err
	}
	user.Repos = repos
	return nil
}

func (p *Pipeline) ensureWebResearch(ctx context.Context, user *model.User) error {
	if user.WebResearch != nil || p.Researcher == nil {
		return nil
	}
	text, err := p.Researcher.Research(ctx, user)
	if err != nil {
		if errors.Is(err, ErrCreditsExhausted) {
			return err
		}
		p.Logger.Warn(ctx, "Web research failed for %s, leaving absent: %v", user.Login, err)
		return nil
	}
	if err := p.UserMd.SetWebResearch(user.Login, text); err != nil {
		return err
	}
	user.WebResearch = &text
	return nil
}

// ensureLinkedinChain walks the dependent facets in order. A missing earlier
// facet stops the chain; the later facets stay absent until the next pass.
func (p *Pipeline) ensureLinkedinChain(ctx context.Context, user *model.User) error {
	if p.Linkedin == nil {
		return nil
	}

	// Profile URL discovery
	if user.LinkedinUrl == nil {
		url, err := p.Linkedin.FindProfileUrl(ctx, user)
		if err != nil {
			if errors.Is(err, ErrCreditsExhausted) {
				return err
			}
			p.Logger.Warn(ctx, "LinkedIn url discovery failed for %s: %v", user.Login, err)
			return nil
		}
		if err := p.UserMd.SetLinkedinUrl(user.Login, url); err != nil {
			return err
		}
		user.LinkedinUrl = &url
	}
	if *user.LinkedinUrl == "" {
		// Fetched and definitively not found, nothing further to chain
		return nil
	}

	// Experience
	if user.LinkedinExperience == nil {
		experience, err := p.Linkedin.FetchExperience(ctx, *user.LinkedinUrl)
		if err != nil {
			if errors.Is(err, ErrCreditsExhausted) {
				return err
			}
			p.Logger.Warn(ctx, "LinkedIn experience fetch failed for %s: %v", user.Login, err)
			return nil
		}
		if err := p.UserMd.SetLinkedinExperience(user.Login, experience); err != nil {
			return err
		}
		user.LinkedinExperience = &experience
	}

	// Summary
	if user.LinkedinSummary == nil && p.Summarizer != nil && *user.LinkedinExperience != "" {
		summary, err := p.Summarizer.Summarize(ctx, *user.LinkedinExperience)
		if err != nil {
			p.Logger.Warn(ctx, "LinkedIn summary generation failed for %s: %v", user.Login, err)
			return nil
		}
		if err := p.UserMd.SetLinkedinSummary(user.Login, summary); err != nil {
			return err
		}
		user.LinkedinSummary = &summary
	}

	// Employer insights
	if user.EmployerInsights == nil && user.Company != "" {
		insights, err := p.Linkedin.EmployerInsights(ctx, user.Company)
		if err != nil {
			if errors.Is(err, ErrCreditsExhausted) {
				return err
			}
			p.Logger.Warn(ctx, "Employer insights lookup failed for %s: %v", user.Login, err)
			return nil
		}
		if err := p.UserMd.SetEmployerInsights(user.Login, insights); err != nil {
			return err
		}
		user.EmployerInsights = &insights
	}

	return nil
}
