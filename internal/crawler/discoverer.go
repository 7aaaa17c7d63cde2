package crawler

import (
	"context"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/log"
)

// Discoverer paginates a processed user's connections and feeds them back
// into the store as pending users. Pagination is page-at-a-time: each page's
// edges and upserts are durably written before the next page is requested,
// so memory stays bounded and a crash resumes by re-paginating from page 1
// (duplicate inserts are tolerated).
type Discoverer struct {
	Logger log.Logger
	Config *cfg.Config
	UserMd *model.User
	EdgeMd *model.Edge
	Source EdgeSource
}

func NewDiscoverer(logger log.Logger, config *cfg.Config, userMd *model.User, edgeMd *model.Edge, source EdgeSource) *Discoverer {
	return &Discoverer{
		Logger: logger,
		Config: config,
		UserMd: userMd,
		EdgeMd: edgeMd,
		Source: source,
	}
}

// Discover expands one edge direction of a user. Already-scraped directions
// are skipped, making the call idempotent across restarts; the scraped flag
// only flips after every page succeeded.
func (d *Discoverer) Discover(ctx context.Context, user *model.User, direction string) error {
	if direction == model.DirectionFollowing && user.FollowingScraped {
		return nil
	}
	if direction == model.DirectionFollowers && user.FollowersScraped {
		return nil
	}

	perPage := d.Config.GithubApi.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	neighborDepth := user.Depth + 1
	total := 0

	for page := 1; ; page++ {
		logins, err := d.Source.ListConnections(ctx, user.Login, direction, page, perPage)
		if err != nil {
			// Without the rest of the pages the direction is incomplete, so
			// the scraped flag stays false and a later pass retries.
			d.Logger.Error(ctx, "Pagination failed for %s %s page %d: %v", user.Login, direction, page, err)
			return err
		}
		if len(logins) == 0 {
			break
		}

		// Edges first, then the neighbor upserts
		pairs := make([][2]string, 0, len(logins))
		for _, login := range logins {
			if direction == model.DirectionFollowing {
				pairs = append(pairs, [2]string{user.Login, login})
			} else {
				pairs = append(pairs, [2]string{login, user.Login})
			}
		}
		if err := d.EdgeMd.InsertPage(pairs); err != nil {
			d.Logger.Warn(ctx, "Edge insert failed for %s %s page %d, continuing: %v", user.Login, direction, page, err)
		}

		for _, login := range logins {
			if login == user.Login {
				continue
			}
			if err := d.UserMd.UpsertPending(login, neighborDepth); err != nil {
				d.Logger.Warn(ctx, "Upsert failed for %s, continuing: %v", login, err)
				continue
			}
			if user.Rating != nil {
				if err := d.UserMd.AppendParentRating(login, user.Login, *user.Rating, direction); err != nil {
					d.Logger.Warn(ctx, "Parent rating append failed for %s, continuing: %v", login, err)
				}
			}
		}

		total += len(logins)
		if len(logins) < perPage {
			break
		}
	}

	if err := d.UserMd.MarkScraped(user.Login, direction); err != nil {
		return err
	}
	if direction == model.DirectionFollowing {
		user.FollowingScraped = true
	} else {
		user.FollowersScraped = true
	}
	d.Logger.Info(ctx, "Discovered %d %s connections for %s", total, direction, user.Login)
	return nil
}
