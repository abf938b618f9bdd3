package repository

import (
	"context"

	"postpilot/domain/model"
)

// IPublicationAudit is the append-only log of publish outcomes.
type IPublicationAudit interface {
	CreateAudit(ctx context.Context, audits []*model.PublicationAudit) error
	GetByPostID(ctx context.Context, postID string) ([]*model.PublicationAudit, error)
}
