package crawler

import (
	"testing"

	"github.com/devscout/github-leadgen/internal/enrich"
	"github.com/devscout/github-leadgen/internal/model"
)

func TestCrawlSeedBootstrap(t *testing.T) {
	env := newTestEnv(t)
	env.config.Crawler.Seeds = []string{"seed"}
	env.config.Crawler.MaxDepth = 1
	env.edges.following["seed"] = []string{"alice", "bob"}

	publisher := &fakePublisher{}
	if ok := env.scheduler(publisher).Crawl(); !ok {
		t.Fatalf("crawl reported failure")
	}

	// The seed and both discovered neighbors end up processed and rated.
	for _, login := range []string{"seed", "alice", "bob"} {
		user, err := env.userMd.GetByLogin(login)
		if err != nil {
			t.Fatalf("%s missing from store: %v", login, err)
		}
		if user.Status != model.StatusProcessed {
			t.Errorf("%s status = %q (reason %q), want processed", login, user.Status, user.IgnoredReason)
		}
		if user.Rating == nil {
			t.Errorf("%s has no rating", login)
		}
	}

	// Neighbors carry the seed's vouching
	alice, _ := env.userMd.GetByLogin("alice")
	if alice.Depth != 1 || alice.ParentRatingSum != env.config.Crawler.SeedDefaultRating {
		t.Errorf("alice depth/parent = %d/%v", alice.Depth, alice.ParentRatingSum)
	}

	// Depth-1 users sit at max depth, so their connections are never expanded
	if alice.FollowingScraped {
		t.Errorf("max-depth user was expanded")
	}

	// Every rated user was published exactly once
	if got := len(publisher.published()); got != 3 {
		t.Errorf("published %d leads, want 3", got)
	}

	// The seed kept its default rating, the neighbors were LLM-rated
	if env.rater.ratedCount("seed") != 0 {
		t.Errorf("seed sent to the rater")
	}
	if env.rater.ratedCount("alice") != 1 || env.rater.ratedCount("bob") != 1 {
		t.Errorf("neighbor rating calls = %d/%d, want 1/1",
			env.rater.ratedCount("alice"), env.rater.ratedCount("bob"))
	}
}

func TestCrawlFollowerExpansionNeedsHighRating(t *testing.T) {
	env := newTestEnv(t)
	env.config.Crawler.Seeds = []string{"seed"}
	env.config.Crawler.MaxDepth = 1
	env.config.Crawler.FollowerThreshold = 85
	env.edges.followers["seed"] = []string{"fan"}

	if ok := env.scheduler(nil).Crawl(); !ok {
		t.Fatalf("crawl reported failure")
	}

	// Seed default rating (90) clears the follower threshold, so the
	// expensive followers direction was walked too.
	fan, err := env.userMd.GetByLogin("fan")
	if err != nil {
		t.Fatalf("fan not discovered: %v", err)
	}
	if fan.ViaFollowing {
		t.Errorf("fan discovered via followers should not carry the following flag")
	}

	seed, _ := env.userMd.GetByLogin("seed")
	if !seed.FollowersScraped {
		t.Errorf("followers direction not scraped despite qualifying rating")
	}
}

func TestCrawlLowRatingSkipsFollowers(t *testing.T) {
	env := newTestEnv(t)
	env.config.Crawler.Seeds = []string{"seed"}
	env.config.Crawler.MaxDepth = 2
	env.config.Crawler.SeedDefaultRating = 70
	env.config.Crawler.FollowerThreshold = 85
	env.edges.followers["seed"] = []string{"fan"}

	if ok := env.scheduler(nil).Crawl(); !ok {
		t.Fatalf("crawl reported failure")
	}

	seed, _ := env.userMd.GetByLogin("seed")
	if seed.FollowersScraped {
		t.Errorf("followers walked despite rating below the threshold")
	}
	if _, err := env.userMd.GetByLogin("fan"); err == nil {
		t.Errorf("fan discovered through a direction that should stay closed")
	}
}

func TestCrawlResumeDoesNotReRate(t *testing.T) {
	env := newTestEnv(t)
	env.config.Crawler.Seeds = []string{"seed"}
	env.config.Crawler.MaxDepth = 1
	env.edges.following["seed"] = []string{"alice"}

	// First run completes the whole crawl.
	if ok := env.scheduler(nil).Crawl(); !ok {
		t.Fatalf("first crawl failed")
	}
	firstRatings := env.rater.totalCalls()

	// Second run over the same store must find nothing to redo.
	if ok := env.scheduler(nil).Crawl(); !ok {
		t.Fatalf("second crawl failed")
	}
	if env.rater.totalCalls() != firstRatings {
		t.Errorf("resume re-rated users: %d -> %d calls", firstRatings, env.rater.totalCalls())
	}
	if env.source.calls("alice") != 1 {
		t.Errorf("resume re-scraped alice %d times", env.source.calls("alice"))
	}
}

func TestCrawlIgnoredUsersAreNotExpanded(t *testing.T) {
	env := newTestEnv(t)
	env.config.Crawler.Seeds = []string{"seed"}
	env.config.Crawler.MaxDepth = 2
	env.edges.following["seed"] = []string{"empty"}
	env.edges.following["empty"] = []string{"hidden"}
	// empty fails the profile-completeness check
	env.source.profiles["empty"] = goodProfile("empty")
	env.source.profiles["empty"].Name = ""
	env.source.profiles["empty"].Email = ""
	env.source.profiles["empty"].Company = ""
	env.source.profiles["empty"].Blog = ""

	if ok := env.scheduler(nil).Crawl(); !ok {
		t.Fatalf("crawl reported failure")
	}

	emptyUser, _ := env.userMd.GetByLogin("empty")
	if emptyUser.Status != model.StatusIgnored {
		t.Fatalf("empty status = %q, want ignored", emptyUser.Status)
	}
	if _, err := env.userMd.GetByLogin("hidden"); err == nil {
		t.Errorf("connections of an ignored user were discovered")
	}
}

func TestCrawlCreditsExhaustedHaltsScheduler(t *testing.T) {
	env := newTestEnv(t)
	env.config.Crawler.Seeds = []string{"seed"}
	env.config.Crawler.MaxDepth = 1

	pipeline := enrich.NewPipeline(env.logger, env.config, env.userMd)
	pipeline.Linkedin = creditsLinkedin{}
	processor := NewProcessor(env.logger, env.config, env.userMd, env.source, pipeline, env.rater)
	scheduler := NewScheduler(env.logger, env.config, env.userMd, processor, env.discoverer(), nil)

	if ok := scheduler.Crawl(); ok {
		t.Fatalf("crawl must report failure when credits run out")
	}

	// The halted user keeps its claim; re-running after a quota refill is the
	// documented recovery path.
	seed, _ := env.userMd.GetByLogin("seed")
	if seed.Status == model.StatusIgnored {
		t.Errorf("credit exhaustion must not mark the user ignored")
	}
	if env.rater.totalCalls() != 0 {
		t.Errorf("rating proceeded on partially enriched data")
	}
}

func TestCrawlResumesAfterCreditsHalt(t *testing.T) {
	env := newTestEnv(t)
	env.config.Crawler.Seeds = []string{"seed"}
	env.config.Crawler.MaxDepth = 1

	// First run halts mid-claim: the seed is left in processing.
	pipeline := enrich.NewPipeline(env.logger, env.config, env.userMd)
	pipeline.Linkedin = creditsLinkedin{}
	processor := NewProcessor(env.logger, env.config, env.userMd, env.source, pipeline, env.rater)
	halted := NewScheduler(env.logger, env.config, env.userMd, processor, env.discoverer(), nil)
	if ok := halted.Crawl(); ok {
		t.Fatalf("crawl must report failure when credits run out")
	}
	seed, _ := env.userMd.GetByLogin("seed")
	if seed.Status != model.StatusProcessing {
		t.Fatalf("halted seed status = %q, want processing", seed.Status)
	}

	// After a quota refill a fresh run must reclaim the stranded row and
	// finish it; nothing but the loaded store carries state across runs.
	if ok := env.scheduler(nil).Crawl(); !ok {
		t.Fatalf("resumed crawl reported failure")
	}
	seed, _ = env.userMd.GetByLogin("seed")
	if seed.Status != model.StatusProcessed {
		t.Errorf("resumed seed status = %q, want processed", seed.Status)
	}
	if seed.Rating == nil || *seed.Rating != env.config.Crawler.SeedDefaultRating {
		t.Errorf("resumed seed was not rated with the seed default")
	}
	if !seed.FollowingScraped {
		t.Errorf("resumed seed was not expanded")
	}
}

func TestCrawlRequeuesUnscrapedProcessed(t *testing.T) {
	env := newTestEnv(t)
	env.config.Crawler.MaxDepth = 2
	env.edges.following["old"] = []string{"fresh"}

	// A previous run rated this user but crashed before expanding it.
	if err := env.userMd.UpsertPending("old", 0); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := env.userMd.SetRating("old", 75, model.RatingBreakdown{}, model.StringList{}); err != nil {
		t.Fatalf("set rating failed: %v", err)
	}
	if err := env.userMd.SetStatus("old", model.StatusProcessed); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	if ok := env.scheduler(nil).Crawl(); !ok {
		t.Fatalf("crawl reported failure")
	}

	old, _ := env.userMd.GetByLogin("old")
	if !old.FollowingScraped {
		t.Errorf("re-queued user was not expanded")
	}
	if env.rater.ratedCount("old") != 0 {
		t.Errorf("re-queued user was re-rated")
	}
	if _, err := env.userMd.GetByLogin("fresh"); err != nil {
		t.Errorf("connections of the re-queued user not discovered: %v", err)
	}
}
