package platforms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"
)

const PlatformYouTube = "YouTube"

// YouTubeConfig holds the OAuth application credentials shared by all
// account bindings.
type YouTubeConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// YouTubePublisher uploads videos to YouTube by streaming the signed artifact
// URL into a resumable insert. Per-account tokens come from the binding.
type YouTubePublisher struct {
	config     YouTubeConfig
	httpClient *http.Client
}

func NewYouTubePublisher(config YouTubeConfig) repository.IPlatformPublisher {
	return &YouTubePublisher{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (p *YouTubePublisher) Publish(ctx context.Context, binding model.AccountBinding, video model.ArtifactAccess, _ *model.ArtifactAccess, meta model.PostMetadata) model.PublishOutcome {
	fail := func(format string, args ...interface{}) model.PublishOutcome {
		msg := fmt.Sprintf(format, args...)
		logger.GetLogger().WithField("platform", PlatformYouTube).Warn(msg)
		return model.PublishOutcome{Platform: PlatformYouTube, Success: false, Message: msg}
	}

	accessToken := binding["access_token"]
	refreshToken := binding["refresh_token"]
	if accessToken == "" && refreshToken == "" {
		return fail("account binding has no OAuth tokens")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.ClientSecret,
		RedirectURL:  p.config.RedirectURL,
		Scopes:       []string{youtube.YoutubeUploadScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return fail("failed to create YouTube service: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, video.URL, nil)
	if err != nil {
		return fail("failed to build artifact download request: %v", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fail("failed to download video artifact: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fail("artifact download returned status %d", resp.StatusCode)
	}

	upload := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{PrivacyStatus: privacyFor(binding)},
	}
	call := service.Videos.Insert([]string{"snippet", "status"}, upload)
	inserted, err := call.Media(resp.Body).Do()
	if err != nil {
		return fail("failed to upload to YouTube: %v", err)
	}

	logger.GetLogger().
		WithField("video_id", inserted.Id).
		Info("YouTube upload completed")
	return model.PublishOutcome{
		Platform:   PlatformYouTube,
		Success:    true,
		Message:    "uploaded",
		ExternalID: inserted.Id,
	}
}

func privacyFor(binding model.AccountBinding) string {
	switch binding["privacy"] {
	case "public":
		return "public"
	case "unlisted":
		return "unlisted"
	default:
		return "private"
	}
}
