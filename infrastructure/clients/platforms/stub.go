// Package platforms holds the per-platform publisher implementations behind
// the uniform IPlatformPublisher contract.
package platforms

import (
	"context"
	"fmt"

	"postpilot/domain/model"
	"postpilot/domain/repository"
)

// StubPublisher satisfies the publisher contract for platforms whose upload
// flow is not integrated yet. It deterministically returns a failed outcome
// so the orchestrator and aggregator stay fully exercisable.
type StubPublisher struct {
	platform string
}

func NewStubPublisher(platform string) repository.IPlatformPublisher {
	return &StubPublisher{platform: platform}
}

func (p *StubPublisher) Publish(_ context.Context, _ model.AccountBinding, _ model.ArtifactAccess, _ *model.ArtifactAccess, _ model.PostMetadata) model.PublishOutcome {
	return model.PublishOutcome{
		Platform: p.platform,
		Success:  false,
		Message:  fmt.Sprintf("%s upload not implemented", p.platform),
	}
}
