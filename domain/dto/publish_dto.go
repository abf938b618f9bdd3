package dto

import (
	"time"

	"postpilot/domain/model"
)

// SchedulePostRequest creates a new scheduled post.
type SchedulePostRequest struct {
	VideoPath     string                          `json:"video_path" binding:"required"`
	ThumbnailPath string                          `json:"thumbnail_path"`
	Platforms     []string                        `json:"platforms" binding:"required"`
	Accounts      map[string]model.AccountBinding `json:"accounts" binding:"required"`
	Title         string                          `json:"title"`
	Description   string                          `json:"description"`
	ScheduledTime time.Time                       `json:"scheduled_time" binding:"required"`
}

// PublishPostRequest triggers publication of a scheduled post. The payload is
// optional; when absent the post is loaded from the store by id.
type PublishPostRequest struct {
	Post *PostPayload `json:"post,omitempty"`
}

// PostPayload is the ScheduledPost-shaped body accepted on publish requests.
type PostPayload struct {
	VideoPath     string                          `json:"video_path"`
	ThumbnailPath string                          `json:"thumbnail_path"`
	Platforms     []string                        `json:"platforms"`
	Accounts      map[string]model.AccountBinding `json:"accounts"`
	Title         string                          `json:"title"`
	Description   string                          `json:"description"`
	ScheduledTime time.Time                       `json:"scheduled_time"`
}

// PublishPostResponse wraps the aggregate result of one orchestration run.
type PublishPostResponse struct {
	PostID string                   `json:"post_id"`
	Result *model.PublicationResult `json:"result"`
}

// SignedURLRequest asks for a time-bounded access URL to one stored object.
type SignedURLRequest struct {
	FileName  string `json:"fileName" binding:"required"`
	Operation string `json:"operation" binding:"required"` // read | write
}

// SignedURLResponse carries the issued URL plus store identifiers.
type SignedURLResponse struct {
	SignedURL  string `json:"signedUrl"`
	BucketName string `json:"bucketName"`
	AccountID  string `json:"accountId"`
}

// SweepResponse summarizes one retention sweep run.
type SweepResponse struct {
	Job           string `json:"job"`
	UsersAffected int    `json:"usersAffected"`
}
