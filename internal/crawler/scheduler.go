package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/enrich"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/log"
)

// Scheduler is the outer crawl loop. Batches are sequential; the users
// inside a batch are processed concurrently, with the store as the only
// shared state. A batch is never abandoned mid-flight: even when the
// credits-exhausted signal fires, in-flight siblings finish before the
// scheduler refuses to claim the next batch.
type Scheduler struct {
	Logger     log.Logger
	Config     *cfg.Config
	UserMd     *model.User
	Processor  *Processor
	Discoverer *Discoverer
	Publisher  LeadPublisher

	workers   chan struct{}
	errorChan chan error

	processedCount int32
	ignoredCount   int32
	creditsHalted  int32
}

func NewScheduler(logger log.Logger, config *cfg.Config, userMd *model.User, processor *Processor, discoverer *Discoverer, publisher LeadPublisher) *Scheduler {
	batchSize := config.Crawler.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Scheduler{
		Logger:     logger,
		Config:     config,
		UserMd:     userMd,
		Processor:  processor,
		Discoverer: discoverer,
		Publisher:  publisher,
		workers:    make(chan struct{}, batchSize),
		errorChan:  make(chan error, 100),
	}
}

func (s *Scheduler) Crawl() bool {
	ctx := context.Background()
	startTime := time.Now()
	s.Logger.Info(ctx, "Starting lead crawl at %s", startTime.Format(time.RFC3339))

	crawlCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.errorMonitor(crawlCtx)

	if err := s.insertSeeds(ctx); err != nil {
		s.Logger.Error(ctx, "Seed insertion failed: %v", err)
		return false
	}
	if err := s.releasePass(ctx); err != nil {
		s.Logger.Error(ctx, "Release pass failed: %v", err)
		return false
	}
	if err := s.requeuePass(ctx); err != nil {
		s.Logger.Error(ctx, "Re-queue pass failed: %v", err)
		return false
	}

	batches := 0
	for {
		if atomic.LoadInt32(&s.creditsHalted) == 1 {
			s.Logger.Alert(ctx, "Data provider credits exhausted, stopping the crawl. Replenish quota and re-run to resume.")
			break
		}

		batch, err := s.UserMd.ClaimBatch(s.Config.Crawler.BatchSize, s.Config.Crawler.ExpansionThreshold)
		if err != nil {
			s.Logger.Error(ctx, "Batch selection failed: %v", err)
			return false
		}
		if len(batch) == 0 {
			s.logTermination(ctx)
			break
		}

		batches++
		s.Logger.Info(ctx, "Batch %d: processing %d users", batches, len(batch))
		s.runBatch(ctx, batch)
	}

	close(s.errorChan)
	s.logCrawlResults(ctx, startTime, batches)
	return atomic.LoadInt32(&s.creditsHalted) == 0
}

// insertSeeds upserts the configured seed identities as depth-0 pending
// users. Idempotent: existing seeds keep whatever state they reached.
func (s *Scheduler) insertSeeds(ctx context.Context) error {
	for _, seed := range s.Config.Crawler.Seeds {
		if seed == "" {
			continue
		}
		if err := s.UserMd.UpsertSeed(seed); err != nil {
			return fmt.Errorf("failed to upsert seed %s: %w", seed, err)
		}
	}
	s.Logger.Info(ctx, "Seeded %d identities", len(s.Config.Crawler.Seeds))
	return nil
}

// releasePass returns rows stranded in processing by a previous run back to
// pending. Only one scheduler runs against a store, so at startup a
// processing row can only be left over from a crash or a credits halt.
func (s *Scheduler) releasePass(ctx context.Context) error {
	released, err := s.UserMd.ReleaseStale()
	if err != nil {
		return err
	}
	if released > 0 {
		s.Logger.Info(ctx, "Released %d users stranded in processing", released)
	}
	return nil
}

// requeuePass resets processed users below maxDepth whose following
// direction was never paginated. This makes raising maxDepth (or fixing a
// discovery bug) resumable without re-rating anyone.
func (s *Scheduler) requeuePass(ctx context.Context) error {
	requeued, err := s.UserMd.RequeueUnscraped(s.Config.Crawler.MaxDepth)
	if err != nil {
		return err
	}
	if requeued > 0 {
		s.Logger.Info(ctx, "Re-queued %d processed users with unscraped connections", requeued)
	}
	return nil
}

func (s *Scheduler) runBatch(ctx context.Context, batch []model.User) {
	var wg sync.WaitGroup
	for i := range batch {
		user := batch[i]
		wg.Add(1)
		s.workers <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-s.workers }()
			defer func() {
				if r := recover(); r != nil {
					s.errorChan <- fmt.Errorf("panic while processing %s: %v", user.Login, r)
					if err := s.UserMd.SetIgnored(user.Login, model.ReasonScrapeError); err != nil {
						s.errorChan <- err
					}
					atomic.AddInt32(&s.ignoredCount, 1)
				}
			}()
			s.processOne(ctx, &user)
		}()
	}
	wg.Wait()
}

// processOne runs the full per-user pass: state machine, lead publishing and
// connection discovery. One bad user never aborts its siblings.
func (s *Scheduler) processOne(ctx context.Context, user *model.User) {
	processed, err := s.Processor.Process(ctx, user)
	if err != nil {
		if errors.Is(err, enrich.ErrCreditsExhausted) {
			// Stop the world: quota is global, not per-user. The flag stops
			// the next batch selection, not the in-flight siblings.
			atomic.StoreInt32(&s.creditsHalted, 1)
			s.errorChan <- err
			return
		}
		// Fatal for the user, not the crawl
		s.errorChan <- fmt.Errorf("processing %s failed: %w", user.Login, err)
		if setErr := s.UserMd.SetIgnored(user.Login, model.ReasonScrapeError); setErr != nil {
			s.errorChan <- setErr
		}
		atomic.AddInt32(&s.ignoredCount, 1)
		return
	}

	if processed.Status == model.StatusIgnored {
		atomic.AddInt32(&s.ignoredCount, 1)
		return
	}
	atomic.AddInt32(&s.processedCount, 1)

	s.publishLead(ctx, processed)
	s.discover(ctx, processed)
}

func (s *Scheduler) publishLead(ctx context.Context, user *model.User) {
	if s.Publisher == nil || user.Rating == nil {
		return
	}
	summary := ""
	if user.LinkedinSummary != nil {
		summary = *user.LinkedinSummary
	}
	msg := model.LeadMessage{
		Login:   user.Login,
		Rating:  *user.Rating,
		Depth:   user.Depth,
		Tags:    user.Tags,
		Summary: summary,
	}
	if err := s.Publisher.Publish(ctx, "lead", msg); err != nil {
		s.Logger.Warn(ctx, "Lead publish failed for %s: %v", user.Login, err)
	}
}

// discover expands the user's connections. Following is the default
// direction; followers is the expensive one, reserved for users whose own
// rating clears the high bar.
func (s *Scheduler) discover(ctx context.Context, user *model.User) {
	if user.Depth >= s.Config.Crawler.MaxDepth {
		return
	}
	if err := s.Discoverer.Discover(ctx, user, model.DirectionFollowing); err != nil {
		s.errorChan <- fmt.Errorf("following discovery for %s failed: %w", user.Login, err)
	}
	if user.Rating != nil && *user.Rating >= s.Config.Crawler.FollowerThreshold {
		if err := s.Discoverer.Discover(ctx, user, model.DirectionFollowers); err != nil {
			s.errorChan <- fmt.Errorf("followers discovery for %s failed: %w", user.Login, err)
		}
	}
}

// logTermination tells the operator which kind of "done" this is: nothing
// pending at all, or pending users that no longer meet the depth/priority
// criteria. Both are valid terminal states.
func (s *Scheduler) logTermination(ctx context.Context) {
	pending, err := s.UserMd.PendingCount()
	if err != nil {
		s.Logger.Error(ctx, "Pending count failed: %v", err)
		return
	}
	if pending == 0 {
		s.Logger.Info(ctx, "Crawl fully complete: no pending users remain")
	} else {
		s.Logger.Info(ctx, "Crawl complete within current bounds: %d pending users are below the expansion criteria", pending)
	}
}

func (s *Scheduler) errorMonitor(ctx context.Context) {
	for {
		select {
		case err, ok := <-s.errorChan:
			if !ok {
				return
			}
			if err != nil {
				s.Logger.Error(ctx, "Worker error: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) logCrawlResults(ctx context.Context, startTime time.Time, batches int) {
	endTime := time.Now()
	s.Logger.Info(ctx, "==== CRAWL RESULTS ====")
	s.Logger.Info(ctx, "Start: %s", startTime.Format(time.RFC3339))
	s.Logger.Info(ctx, "End: %s", endTime.Format(time.RFC3339))
	s.Logger.Info(ctx, "Duration: %v", endTime.Sub(startTime))
	s.Logger.Info(ctx, "Batches: %d", batches)
	s.Logger.Info(ctx, "Users processed: %d", atomic.LoadInt32(&s.processedCount))
	s.Logger.Info(ctx, "Users ignored: %d", atomic.LoadInt32(&s.ignoredCount))

	counts, err := s.UserMd.CountByStatus()
	if err != nil {
		return
	}
	for _, status := range []string{model.StatusPending, model.StatusProcessing, model.StatusProcessed, model.StatusIgnored} {
		s.Logger.Info(ctx, "Store status %s: %d", status, counts[status])
	}
}
