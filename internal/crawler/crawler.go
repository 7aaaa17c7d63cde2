// Package crawler is the traversal core: a persistent, resumable
// priority-driven walk over the GitHub follow graph. The scheduler claims
// batches of pending users from the store, the processor runs the per-user
// state machine (scrape, filter, enrich, rate) and the discoverer expands
// rated users' connections back into the store.
package crawler

import (
	"context"
	"fmt"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/enrich"
	"github.com/devscout/github-leadgen/internal/githubapi"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/internal/rater"
	"github.com/devscout/github-leadgen/internal/research"
	"github.com/devscout/github-leadgen/pkg/db"
	kafkapkg "github.com/devscout/github-leadgen/pkg/kafka"
	"github.com/devscout/github-leadgen/pkg/log"
)

type Crawler interface {
	Crawl() bool
}

// ProfileSource fetches profile documents and contribution calendars.
// Implemented by githubapi.Caller; faked in tests.
type ProfileSource interface {
	FetchUser(ctx context.Context, login string) (*githubapi.UserResponse, error)
	FetchContributions(ctx context.Context, login string) (*githubapi.ContributionResult, error)
}

// EdgeSource paginates a user's followers/following lists.
type EdgeSource interface {
	ListConnections(ctx context.Context, login, direction string, page, perPage int) ([]string, error)
}

// LeadPublisher emits rated-lead events. Implemented by the Kafka producer.
type LeadPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// repoFetcher adapts the GitHub caller to the enrichment facet interface.
type repoFetcher struct {
	caller *githubapi.Caller
	limit  int
}

func (r *repoFetcher) FetchRepos(ctx context.Context, login string) (*model.RepoList, error) {
	repos, err := r.caller.ListRepos(ctx, login, r.limit)
	if err != nil {
		return nil, err
	}
	list := make(model.RepoList, 0, len(repos))
	for _, repo := range repos {
		list = append(list, model.RepoSummary{
			Name:        repo.Name,
			Description: repo.Description,
			Language:    repo.Language,
			Stars:       repo.Stars,
			Forks:       repo.Forks,
		})
	}
	return &list, nil
}

// FactoryCrawler wires a full crawler from configuration. The only supported
// version today is "v1"; the switch stays so operators keep a stable flag
// when the traversal strategy gets revisions.
func FactoryCrawler(version string, logger log.Logger, config *cfg.Config, conn db.Connector) (Crawler, error) {
	switch version {
	case "v1":
		return newSchedulerFromConfig(logger, config, conn)
	default:
		return nil, fmt.Errorf("[ERROR] Unsupported crawler version: %s", version)
	}
}

func newSchedulerFromConfig(logger log.Logger, config *cfg.Config, conn db.Connector) (*Scheduler, error) {
	userMd, err := model.NewUser(config, logger, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create user model: %w", err)
	}
	edgeMd, err := model.NewEdge(config, logger, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create edge model: %w", err)
	}

	caller := githubapi.NewCaller(logger, config)
	llm := rater.NewLlmRater(logger, config)

	pipeline := enrich.NewPipeline(logger, config, userMd)
	pipeline.Repos = &repoFetcher{caller: caller, limit: 30}
	pipeline.Researcher = research.NewWebResearcher(logger, config)
	pipeline.Summarizer = llm
	if config.Enrich.LinkedinApiUrl != "" {
		pipeline.Linkedin = enrich.NewHttpLinkedinProvider(logger, config)
	}

	processor := NewProcessor(logger, config, userMd, caller, pipeline, llm)
	discoverer := NewDiscoverer(logger, config, userMd, edgeMd, caller)

	var publisher LeadPublisher
	if len(config.Kafka.Brokers) > 0 {
		publisher = kafkapkg.NewProducer(config, logger, config.Kafka.Producer.TopicLead)
	}

	return NewScheduler(logger, config, userMd, processor, discoverer, publisher), nil
}
