package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
)

// NewPubSub creates the shared Pub/Sub client. Constructed once at process
// start and injected everywhere it is needed.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return client, nil
}
