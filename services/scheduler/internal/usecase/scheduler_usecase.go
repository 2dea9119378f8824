package usecase

import (
	"context"
	"errors"
	"time"

	"postpilot/pkg/logger"
	"postpilot/pkg/models"
	"postpilot/pkg/queue"
	"postpilot/services/scheduler/internal/publisher"
	"postpilot/services/scheduler/internal/repo/persistent"

	"golang.org/x/sync/errgroup"
)

type SchedulerUseCase interface {
	RunCycle(ctx context.Context)
}

type Options struct {
	// MaxAttempts bounds transient-failure retries. A post whose publish
	// attempt fails transiently for the MaxAttempts-th time goes to failed
	// with reason max_retries_exceeded.
	MaxAttempts int

	// Workers bounds concurrent dispatches within one poll cycle.
	Workers int

	// PublishTimeout bounds a single platform API call. A timeout counts as
	// a network error for retry purposes.
	PublishTimeout time.Duration

	// ClaimGrace is how long a post may sit claimed before the watchdog
	// reverts it to scheduled.
	ClaimGrace time.Duration

	// BatchLimit caps the number of due posts fetched per cycle.
	BatchLimit int

	// Now is the clock; it defaults to time.Now and is injectable in tests.
	Now func() time.Time
}

type schedulerUseCase struct {
	postRepo    persistent.PostRepository
	registry    *publisher.Registry
	queueClient *queue.Client
	logger      *logger.Logger
	opts        Options
}

func NewSchedulerUseCase(
	postRepo persistent.PostRepository,
	registry *publisher.Registry,
	queueClient *queue.Client,
	log *logger.Logger,
	opts Options,
) SchedulerUseCase {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 30 * time.Second
	}
	if opts.ClaimGrace <= 0 {
		opts.ClaimGrace = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &schedulerUseCase{
		postRepo:    postRepo,
		registry:    registry,
		queueClient: queueClient,
		logger:      log,
		opts:        opts,
	}
}

// RunCycle executes one poll cycle: revert stale claims, surface integrity
// faults, recompute the due-set from the store and dispatch each due post
// through a bounded worker pool. Failures are isolated per post; a store
// error skips the cycle entirely and the next tick tries again.
func (uc *schedulerUseCase) RunCycle(ctx context.Context) {
	now := uc.opts.Now()

	released, err := uc.postRepo.ReleaseStuck(ctx, now.Add(-uc.opts.ClaimGrace))
	if err != nil {
		uc.logger.Warn("scheduler: failed to release stuck claims: %v", err)
	} else if released > 0 {
		uc.logger.Warn("scheduler: released %d posts stuck in publishing past the claim grace window", released)
	}

	missing, err := uc.postRepo.CountMissingSchedule(ctx)
	if err != nil {
		uc.logger.Warn("scheduler: failed to check for posts missing a due time: %v", err)
	} else if missing > 0 {
		uc.logger.Error("scheduler: data integrity fault: %d scheduled posts have no scheduled_at and are excluded from publication", missing)
	}

	duePosts, err := uc.postRepo.FindDue(ctx, now, uc.opts.BatchLimit)
	if err != nil {
		uc.logger.Warn("scheduler: post store unavailable, skipping cycle: %v", err)
		return
	}
	if len(duePosts) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Workers)
	for _, post := range duePosts {
		post := post
		g.Go(func() error {
			uc.processPost(gctx, post)
			return nil
		})
	}
	g.Wait()
}

func (uc *schedulerUseCase) processPost(ctx context.Context, post *models.Post) {
	if post.ScheduledAt == nil {
		// FindDue excludes these; seeing one here means the due-set query
		// and the integrity check disagree
		uc.logger.Error("post_missing_schedule post_id=%s", post.ID)
		return
	}

	claimed, err := uc.postRepo.Claim(ctx, post.ID, uc.opts.Now())
	if err != nil {
		uc.logger.Warn("scheduler: claim failed for post %s: %v", post.ID, err)
		return
	}
	if !claimed {
		// Another worker won the race or the authoring flow edited the post
		// out of scheduled; skip silently for this cycle
		uc.logger.Info("post_claim_conflict post_id=%s", post.ID)
		return
	}

	pub, ok := uc.registry.Resolve(post.Platform)
	if !ok {
		uc.failPost(post, string(publisher.ReasonUnsupportedPlatform))
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, uc.opts.PublishTimeout)
	err = pub.Publish(publishCtx, post)
	cancel()

	if err == nil {
		publishedAt := uc.opts.Now()
		if err := uc.postRepo.MarkPublished(context.Background(), post.ID, publishedAt); err != nil {
			if errors.Is(err, persistent.ErrClaimLost) {
				uc.logger.Error("scheduler: claim on post %s was lost before it could be marked published; the platform call went out and the post may go out again", post.ID)
				return
			}
			uc.logger.Error("scheduler: failed to mark post %s published: %v", post.ID, err)
			return
		}
		uc.logger.Info("post_published post_id=%s platform=%s attempt=%d", post.ID, post.Platform, post.Attempts+1)
		uc.emitEvent(queue.RoutingKeyPostPublished, post, "")
		return
	}

	reason := publisher.ReasonOf(err)
	if publisher.Transient(reason) {
		if post.Attempts+1 >= uc.opts.MaxAttempts {
			uc.logger.Warn("scheduler: post %s exhausted %d attempts (last error: %v)", post.ID, uc.opts.MaxAttempts, err)
			uc.failPost(post, string(publisher.ReasonMaxRetriesExceeded))
			return
		}
		if err := uc.postRepo.ReleaseForRetry(context.Background(), post.ID); err != nil {
			if errors.Is(err, persistent.ErrClaimLost) {
				uc.logger.Error("scheduler: claim on post %s was lost before it could be released for retry", post.ID)
				return
			}
			uc.logger.Error("scheduler: failed to release post %s for retry: %v", post.ID, err)
			return
		}
		uc.logger.Warn("scheduler: transient failure for post %s (%s), attempt %d of %d, will retry next cycle: %v",
			post.ID, reason, post.Attempts+1, uc.opts.MaxAttempts, err)
		return
	}

	uc.logger.Warn("scheduler: permanent failure for post %s: %v", post.ID, err)
	uc.failPost(post, string(reason))
}

func (uc *schedulerUseCase) failPost(post *models.Post, reason string) {
	// Mark operations use a fresh context: an expired publish deadline must
	// not prevent recording the outcome
	if err := uc.postRepo.MarkFailed(context.Background(), post.ID, reason); err != nil {
		if errors.Is(err, persistent.ErrClaimLost) {
			uc.logger.Error("scheduler: claim on post %s was lost before it could be marked failed", post.ID)
			return
		}
		uc.logger.Error("scheduler: failed to mark post %s failed: %v", post.ID, err)
		return
	}
	uc.logger.Info("post_failed post_id=%s reason=%s", post.ID, reason)
	uc.emitEvent(queue.RoutingKeyPostFailed, post, reason)
}

// emitEvent notifies downstream consumers of an outcome. Best effort: the
// state transition already happened and is the source of truth.
func (uc *schedulerUseCase) emitEvent(routingKey string, post *models.Post, reason string) {
	if uc.queueClient == nil {
		return
	}
	event := map[string]interface{}{
		"post_id":  post.ID,
		"user_id":  post.UserID,
		"platform": string(post.Platform),
	}
	if reason != "" {
		event["reason"] = reason
	}
	if err := uc.queueClient.PublishPostEvent(routingKey, event); err != nil {
		uc.logger.Warn("scheduler: failed to emit %s event for post %s: %v", routingKey, post.ID, err)
	}
}
