package repository

import (
	"context"

	"postpilot/domain/model"
)

// IArtifactResolver turns a stored-object path into a short-lived access URL.
// Resolution is idempotent and side-effect free; each call yields an
// independently expiring access. Errors carry apperror kinds ObjectNotFound,
// AccessDenied or TransientStorageError.
type IArtifactResolver interface {
	Resolve(ctx context.Context, path string) (model.ArtifactAccess, error)
}
