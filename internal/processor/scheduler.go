// Package processor runs the background mining pass over candidate domains.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/boilerplate"
)

// DomainSource lists domains whose pattern library needs a mining pass.
type DomainSource interface {
	CandidateDomains(ctx context.Context, limit int) ([]string, error)
}

// PatternInvalidator drops a domain's cached patterns after promotion so the
// next clean sees the new library.
type PatternInvalidator interface {
	Invalidate(dom string)
}

// Logger defines the logging interface used by the scheduler.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Options configure the mining scheduler.
type Options struct {
	// Schedule is a standard 5-field cron expression.
	Schedule string
	// DomainsPerMinute rate-limits mining so a pass never saturates the
	// article store.
	DomainsPerMinute int
	// BatchLimit caps how many candidate domains one pass picks up.
	BatchLimit int
	// Mining options forwarded to every AnalyzeDomain call.
	Mining boilerplate.MiningOptions
}

// Scheduler runs periodic mining passes over domains with recent cleaning
// activity but no fresh patterns. Mining stays strictly offline: the
// scheduler shares nothing with the inline cleaning path except the pattern
// library itself.
type Scheduler struct {
	miner   *boilerplate.Miner
	source  DomainSource
	cache   PatternInvalidator
	logger  Logger
	opts    Options
	limiter *rate.Limiter

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	busy   bool
}

// NewScheduler creates a mining scheduler. cache may be nil when no inline
// cleaner shares the process.
func NewScheduler(
	miner *boilerplate.Miner,
	source DomainSource,
	cache PatternInvalidator,
	logger Logger,
	opts Options,
) *Scheduler {
	perMinute := opts.DomainsPerMinute
	if perMinute <= 0 {
		perMinute = 6
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 20
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		miner:   miner,
		source:  source,
		cache:   cache,
		logger:  logger,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		cron:    cron.New(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start registers the cron entry and begins scheduling.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.Schedule, s.trigger); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("mining scheduler started", "schedule", s.opts.Schedule)
	return nil
}

// trigger launches one pass unless the previous one is still running.
func (s *Scheduler) trigger() {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		s.logger.Warn("previous mining pass still running, skipping trigger")
		return
	}
	s.busy = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.busy = false
			s.mu.Unlock()
		}()
		s.RunPass(s.ctx)
	}()
}

// RunPass mines every candidate domain once, honoring the rate limit and
// the scheduler's lifecycle context. Exported so the CLI can run a single
// pass on demand.
func (s *Scheduler) RunPass(ctx context.Context) {
	start := time.Now()
	domains, err := s.source.CandidateDomains(ctx, s.opts.BatchLimit)
	if err != nil {
		s.logger.Error("failed to list candidate domains", "error", err)
		return
	}
	if len(domains) == 0 {
		s.logger.Debug("no candidate domains for mining pass")
		return
	}

	s.logger.Info("mining pass starting", "domains", len(domains))
	mined := 0
	for _, dom := range domains {
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Warn("mining pass cancelled", "mined", mined, "error", err)
			return
		}

		analysis, err := s.miner.AnalyzeDomain(ctx, dom, s.opts.Mining)
		if err != nil {
			s.logger.Error("mining failed for domain", "domain", dom, "error", err)
			continue
		}
		mined++
		if analysis.PatternsPromoted > 0 && s.cache != nil {
			s.cache.Invalidate(dom)
		}
	}

	s.logger.Info("mining pass complete",
		"domains", len(domains),
		"mined", mined,
		"duration", time.Since(start).String(),
	)
}

// Stop cancels any running pass and waits for it to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.cancel()
	s.wg.Wait()
	s.logger.Info("mining scheduler stopped")
}
