// Package worker delegates signed-URL issuance to the external storage worker.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"postpilot/domain/apperror"
	"postpilot/infrastructure/logger"
)

type IWorkerClient interface {
	IssueSignedURL(ctx context.Context, fileName, operation, userID string) (string, error)
}

// Client calls the storage worker over HTTP. The worker authenticates the
// request with the service key and the caller id header.
type Client struct {
	endpoint   string
	serviceKey string
	httpClient *http.Client
}

func NewWorkerClient(endpoint, serviceKey string) *Client {
	return &Client{
		endpoint:   endpoint,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type signedURLRequest struct {
	FileName  string `json:"fileName"`
	Operation string `json:"operation"`
	UserID    string `json:"userId"`
}

type signedURLResponse struct {
	SignedURL string `json:"signedUrl"`
}

func (c *Client) IssueSignedURL(ctx context.Context, fileName, operation, userID string) (string, error) {
	payload, err := json.Marshal(signedURLRequest{FileName: fileName, Operation: operation, UserID: userID})
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, err, "encoding worker request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, err, "building worker request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("X-Caller-ID", userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, err, "worker request failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		logger.GetLogger().
			WithField("status", resp.StatusCode).
			WithField("body", string(body)).
			Error("Worker returned an error")
		return "", apperror.New(apperror.Internal, "worker error: status %d: %s", resp.StatusCode, truncate(string(body), 256))
	}

	var out signedURLResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", apperror.Wrap(apperror.Internal, err, "decoding worker response")
	}
	if out.SignedURL == "" {
		return "", apperror.New(apperror.Internal, "worker response missing signedUrl")
	}
	return out.SignedURL, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
