// Package objectstore resolves stored artifacts into short-lived signed URLs.
package objectstore

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"postpilot/domain/apperror"
	"postpilot/domain/model"
	"postpilot/domain/repository"
)

// NewStorageClient creates the shared GCS client, constructed once at process start.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	return storage.NewClient(ctx)
}

// GCSResolver issues V4 signed GET URLs. Each Resolve call yields an
// independently expiring access; nothing in the bucket is mutated.
type GCSResolver struct {
	client *storage.Client
	bucket string
	ttl    time.Duration
}

func NewGCSResolver(client *storage.Client, bucket string, ttl time.Duration) repository.IArtifactResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GCSResolver{client: client, bucket: bucket, ttl: ttl}
}

func (r *GCSResolver) Resolve(ctx context.Context, path string) (model.ArtifactAccess, error) {
	if path == "" {
		return model.ArtifactAccess{}, apperror.New(apperror.InvalidArgument, "artifact path required")
	}

	// Attrs first: signing alone never touches the store, so a missing object
	// would otherwise surface only when a platform tries to download it.
	if _, err := r.client.Bucket(r.bucket).Object(path).Attrs(ctx); err != nil {
		return model.ArtifactAccess{}, classifyStorageError(err, path)
	}

	expires := time.Now().UTC().Add(r.ttl)
	url, err := r.client.Bucket(r.bucket).SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expires,
	})
	if err != nil {
		return model.ArtifactAccess{}, apperror.Wrap(apperror.Internal, err, "signing URL for %s", path)
	}
	return model.ArtifactAccess{URL: url, ExpiresAt: expires}, nil
}

func classifyStorageError(err error, path string) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return apperror.Wrap(apperror.ObjectNotFound, err, "object %s does not exist", path)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperror.Wrap(apperror.AccessDenied, err, "access denied to %s", path)
		case http.StatusNotFound:
			return apperror.Wrap(apperror.ObjectNotFound, err, "object %s does not exist", path)
		}
	}
	return apperror.Wrap(apperror.TransientStorageError, err, "object store unreachable for %s", path)
}
