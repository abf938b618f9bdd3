package repository

import (
	"context"

	"postpilot/domain/model"
)

// IPlatformPublisher uploads one video to one platform account. Publish never
// returns an error: every failure is folded into a failed PublishOutcome so
// one platform cannot abort sibling dispatches. thumbnail may be nil.
type IPlatformPublisher interface {
	Publish(ctx context.Context, binding model.AccountBinding, video model.ArtifactAccess, thumbnail *model.ArtifactAccess, meta model.PostMetadata) model.PublishOutcome
}
