package model

import "time"

// Post status lifecycle: pending -> publishing -> completed|failed
const (
	PostStatusPending    = "pending"
	PostStatusPublishing = "publishing"
	PostStatusCompleted  = "completed"
	PostStatusFailed     = "failed"
)

// AccountBinding holds opaque per-platform account data (tokens, channel/page ids).
// The orchestrator never inspects it; only the matching publisher does.
type AccountBinding map[string]string

// ScheduledPost is a user-authored video post scheduled for future publication.
type ScheduledPost struct {
	ID            string                    `json:"id" bson:"_id"`
	UserID        string                    `json:"user_id" bson:"user_id"`
	VideoPath     string                    `json:"video_path" bson:"video_path"`
	ThumbnailPath string                    `json:"thumbnail_path,omitempty" bson:"thumbnail_path,omitempty"`
	Platforms     []string                  `json:"platforms" bson:"platforms"`
	Accounts      map[string]AccountBinding `json:"accounts" bson:"accounts"`
	Title         string                    `json:"title,omitempty" bson:"title,omitempty"`
	Description   string                    `json:"description,omitempty" bson:"description,omitempty"`
	ScheduledTime time.Time                 `json:"scheduled_time" bson:"scheduled_time"`
	Status        string                    `json:"status" bson:"status"`
	CreatedAt     time.Time                 `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at" bson:"updated_at"`
}

// PostMetadata is the descriptive subset of a post handed to publishers.
type PostMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ArtifactAccess is a resolved, time-bounded URL to a stored artifact.
// Ephemeral: owned by the orchestration run that resolved it, never persisted.
type ArtifactAccess struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PublishOutcome is the result of one platform-publish attempt.
// Immutable once returned by a publisher.
type PublishOutcome struct {
	Platform   string `json:"platform"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// PublicationResult aggregates the outcomes of one orchestration run.
type PublicationResult struct {
	Success      bool             `json:"success"`
	Outcomes     []PublishOutcome `json:"outcomes"`
	VideoURL     string           `json:"video_url,omitempty"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
}

// PublicationAudit is an append-only log row per publish outcome.
type PublicationAudit struct {
	ID          int64     `json:"id"`
	PostID      string    `json:"post_id"`
	UserID      string    `json:"user_id"`
	Platform    string    `json:"platform"`
	Status      string    `json:"status"` // success | failed
	Message     *string   `json:"message,omitempty"`
	ExternalRef *string   `json:"external_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
