package usecase

import (
	"context"
	"fmt"
	"time"

	"postpilot/domain/apperror"
	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"
	"postpilot/infrastructure/pubsub"
	"postpilot/infrastructure/servicebus"

	"golang.org/x/sync/errgroup"
)

// PublishOptions bounds the orchestrator's fan-out.
type PublishOptions struct {
	MaxConcurrent      int           // concurrent platform dispatches
	PerPlatformTimeout time.Duration // ceiling for one publisher call
	LockTTL            time.Duration // must cover the whole fan-out
}

func (o PublishOptions) withDefaults() PublishOptions {
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
	if o.PerPlatformTimeout <= 0 {
		o.PerPlatformTimeout = 5 * time.Minute
	}
	if o.LockTTL <= 0 {
		o.LockTTL = time.Hour
	}
	return o
}

type IPublishUsecase interface {
	PublishPost(ctx context.Context, userID string, post *model.ScheduledPost) (*model.PublicationResult, error)
}

type publishUsecase struct {
	postRepo   repository.IScheduledPost
	resolver   repository.IArtifactResolver
	publishers map[string]repository.IPlatformPublisher
	lock       repository.IPublishLock
	auditRepo  repository.IPublicationAudit
	usageRepo  repository.IUsageStats
	events     pubsub.IResultPublisher
	alerts     servicebus.IFailureNotifier
	opts       PublishOptions
}

// NewPublishUsecase wires the dispatch orchestrator. publishers is the
// registered platform -> publisher mapping; events, alerts, auditRepo and
// usageRepo may be nil (the corresponding side effect is skipped).
func NewPublishUsecase(
	postRepo repository.IScheduledPost,
	resolver repository.IArtifactResolver,
	publishers map[string]repository.IPlatformPublisher,
	lock repository.IPublishLock,
	auditRepo repository.IPublicationAudit,
	usageRepo repository.IUsageStats,
	events pubsub.IResultPublisher,
	alerts servicebus.IFailureNotifier,
	opts PublishOptions,
) IPublishUsecase {
	return &publishUsecase{
		postRepo:   postRepo,
		resolver:   resolver,
		publishers: publishers,
		lock:       lock,
		auditRepo:  auditRepo,
		usageRepo:  usageRepo,
		events:     events,
		alerts:     alerts,
		opts:       opts.withDefaults(),
	}
}

// PublishPost resolves the post's artifacts and dispatches one publish attempt
// per requested platform that has an account binding. Per-platform failures
// are always folded into the result, never returned as errors. Fatal errors:
// Unauthenticated, InvalidArgument, NotFound, ArtifactUnavailable, Internal.
func (u *publishUsecase) PublishPost(ctx context.Context, userID string, post *model.ScheduledPost) (*model.PublicationResult, error) {
	if userID == "" {
		return nil, apperror.New(apperror.Unauthenticated, "caller identity required")
	}
	if post == nil || post.ID == "" {
		return nil, apperror.New(apperror.InvalidArgument, "post id required")
	}
	if post.VideoPath == "" {
		// A payload without a video reference means the caller wants the stored post.
		stored, err := u.postRepo.GetByID(ctx, post.ID)
		if err != nil {
			return nil, apperror.Wrap(apperror.Internal, err, "loading post %s", post.ID)
		}
		if stored == nil {
			return nil, apperror.New(apperror.NotFound, "post %s not found", post.ID)
		}
		post = stored
	}
	if post.UserID != "" && post.UserID != userID {
		return nil, apperror.New(apperror.NotFound, "post %s not found", post.ID)
	}
	if post.VideoPath == "" {
		return nil, apperror.New(apperror.InvalidArgument, "post %s has no video artifact", post.ID)
	}

	lg := logger.GetLogger().WithField("post_id", post.ID).WithField("user_id", userID)

	acquired, err := u.lock.Acquire(ctx, post.ID, u.opts.LockTTL)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, err, "acquiring publish lock for post %s", post.ID)
	}
	if !acquired {
		return nil, apperror.New(apperror.Internal, "publish already in flight for post %s", post.ID)
	}
	defer func() {
		if rErr := u.lock.Release(context.WithoutCancel(ctx), post.ID); rErr != nil {
			lg.WithField("error", rErr).Warn("failed releasing publish lock")
		}
	}()

	if err := u.postRepo.UpdateStatus(ctx, post.ID, model.PostStatusPublishing); err != nil {
		lg.WithField("error", err).Warn("failed marking post publishing")
	}

	if u.resolver == nil {
		if sErr := u.postRepo.UpdateStatus(ctx, post.ID, model.PostStatusFailed); sErr != nil {
			lg.WithField("error", sErr).Warn("failed marking post failed")
		}
		return nil, apperror.New(apperror.ArtifactUnavailable, "artifact storage not configured")
	}

	video, err := u.resolver.Resolve(ctx, post.VideoPath)
	if err != nil {
		if sErr := u.postRepo.UpdateStatus(ctx, post.ID, model.PostStatusFailed); sErr != nil {
			lg.WithField("error", sErr).Warn("failed marking post failed")
		}
		return nil, apperror.Wrap(apperror.ArtifactUnavailable, err, "resolving video %s", post.VideoPath)
	}

	// Thumbnail failure is recoverable: platforms accept a video without one.
	var thumbnail *model.ArtifactAccess
	var thumbnailURL string
	if post.ThumbnailPath != "" {
		access, tErr := u.resolver.Resolve(ctx, post.ThumbnailPath)
		if tErr != nil {
			lg.WithField("error", tErr).WithField("thumbnail_path", post.ThumbnailPath).
				Warn("thumbnail resolution failed - publishing without thumbnail")
		} else {
			thumbnail = &access
			thumbnailURL = access.URL
		}
	}

	outcomes := u.dispatch(ctx, post, video, thumbnail)
	if ctx.Err() != nil {
		// Cancelled mid fan-out: in-flight outcomes are discarded, downstream
		// reconciliation tolerates the at-least-once side effects.
		return nil, apperror.Wrap(apperror.Internal, ctx.Err(), "publication cancelled for post %s", post.ID)
	}

	result := AggregateOutcomes(outcomes, video.URL, thumbnailURL)

	status := model.PostStatusFailed
	if result.Success {
		status = model.PostStatusCompleted
	}
	if err := u.postRepo.UpdateStatus(ctx, post.ID, status); err != nil {
		lg.WithField("error", err).Warn("failed updating post status")
	}

	u.recordSideEffects(ctx, post, userID, result)
	return result, nil
}

// dispatch fans out one publisher call per requested platform present in the
// account-binding map. Platforms without a binding are skipped, not failed.
// Outcomes land in requested order; no outcome depends on a sibling's fate.
func (u *publishUsecase) dispatch(ctx context.Context, post *model.ScheduledPost, video model.ArtifactAccess, thumbnail *model.ArtifactAccess) []model.PublishOutcome {
	lg := logger.GetLogger().WithField("post_id", post.ID)

	type target struct {
		platform string
		binding  model.AccountBinding
	}
	seen := make(map[string]struct{}, len(post.Platforms))
	targets := make([]target, 0, len(post.Platforms))
	for _, platform := range post.Platforms {
		if _, dup := seen[platform]; dup {
			continue
		}
		seen[platform] = struct{}{}
		binding, ok := post.Accounts[platform]
		if !ok {
			lg.WithField("platform", platform).Info("no account binding - skipping platform")
			continue
		}
		targets = append(targets, target{platform: platform, binding: binding})
	}

	meta := model.PostMetadata{Title: post.Title, Description: post.Description}
	outcomes := make([]model.PublishOutcome, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(u.opts.MaxConcurrent)
	for i, t := range targets {
		g.Go(func() error {
			publisher, ok := u.publishers[t.platform]
			if !ok {
				outcomes[i] = model.PublishOutcome{
					Platform: t.platform,
					Success:  false,
					Message:  fmt.Sprintf("no publisher registered for platform %q", t.platform),
				}
				return nil
			}
			callCtx, cancel := context.WithTimeout(ctx, u.opts.PerPlatformTimeout)
			defer cancel()
			outcomes[i] = publishSafely(callCtx, publisher, t.platform, t.binding, video, thumbnail, meta)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// publishSafely enforces the publisher contract even against a panicking
// implementation: the result is always an outcome for the right platform.
func publishSafely(ctx context.Context, publisher repository.IPlatformPublisher, platform string, binding model.AccountBinding, video model.ArtifactAccess, thumbnail *model.ArtifactAccess, meta model.PostMetadata) (outcome model.PublishOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().WithField("platform", platform).WithField("panic", r).Error("publisher panicked")
			outcome = model.PublishOutcome{
				Platform: platform,
				Success:  false,
				Message:  fmt.Sprintf("publisher panic: %v", r),
			}
		}
	}()
	outcome = publisher.Publish(ctx, binding, video, thumbnail, meta)
	outcome.Platform = platform
	return outcome
}

// recordSideEffects persists and broadcasts the run's result. Every step is
// best-effort: the caller already holds a complete PublicationResult.
func (u *publishUsecase) recordSideEffects(ctx context.Context, post *model.ScheduledPost, userID string, result *model.PublicationResult) {
	u.writeAudits(ctx, post, userID, result)

	if u.usageRepo != nil {
		today := time.Now().UTC().Format(model.DateKeyLayout)
		if err := u.usageRepo.IncrementPublishCount(ctx, userID, today); err != nil {
			logger.GetLogger().WithField("error", err).Warn("failed incrementing usage counters")
		}
	}
	if u.events != nil {
		if _, err := u.events.PublishResult(ctx, post.ID, userID, result); err != nil {
			logger.GetLogger().WithField("error", err).Warn("failed publishing result event")
		}
	}
	if u.alerts != nil && !result.Success && len(result.Outcomes) > 0 {
		if err := u.alerts.NotifyFailure(ctx, post.ID, userID, result); err != nil {
			logger.GetLogger().WithField("error", err).Warn("failed sending failure notification")
		}
	}
}

func (u *publishUsecase) writeAudits(ctx context.Context, post *model.ScheduledPost, userID string, result *model.PublicationResult) {
	if u.auditRepo == nil || len(result.Outcomes) == 0 {
		return
	}
	now := time.Now().UTC()
	audits := make([]*model.PublicationAudit, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		status := "failed"
		if o.Success {
			status = "success"
		}
		audit := &model.PublicationAudit{
			PostID:    post.ID,
			UserID:    userID,
			Platform:  o.Platform,
			Status:    status,
			CreatedAt: now,
		}
		if o.Message != "" {
			msg := o.Message
			audit.Message = &msg
		}
		if o.ExternalID != "" {
			ref := o.ExternalID
			audit.ExternalRef = &ref
		}
		audits = append(audits, audit)
	}
	if err := u.auditRepo.CreateAudit(ctx, audits); err != nil {
		logger.GetLogger().WithField("error", err).WithField("post_id", post.ID).Warn("failed writing publication audit")
	}
}
