package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"postpilot/domain/apperror"
	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/usecase"
)

// Mock implementations

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.ScheduledPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, postID string) (*model.ScheduledPost, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledPost), args.Error(1)
}

func (m *MockPostRepository) UpdateStatus(ctx context.Context, postID string, status string) error {
	args := m.Called(ctx, postID, status)
	return args.Error(0)
}

type MockArtifactResolver struct {
	mock.Mock
}

func (m *MockArtifactResolver) Resolve(ctx context.Context, path string) (model.ArtifactAccess, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(model.ArtifactAccess), args.Error(1)
}

type MockPublishLock struct {
	mock.Mock
}

func (m *MockPublishLock) Acquire(ctx context.Context, postID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, postID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockPublishLock) Release(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) CreateAudit(ctx context.Context, audits []*model.PublicationAudit) error {
	args := m.Called(ctx, audits)
	return args.Error(0)
}

func (m *MockAuditRepository) GetByPostID(ctx context.Context, postID string) ([]*model.PublicationAudit, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PublicationAudit), args.Error(1)
}

type MockUsageStatsRepository struct {
	mock.Mock
}

func (m *MockUsageStatsRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUsageStatsRepository) GetDaily(ctx context.Context, userID string) (map[string]model.DailyUsage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.DailyUsage), args.Error(1)
}

func (m *MockUsageStatsRepository) DeleteDaily(ctx context.Context, userID string, dates []string) error {
	args := m.Called(ctx, userID, dates)
	return args.Error(0)
}

func (m *MockUsageStatsRepository) IncrementPublishCount(ctx context.Context, userID string, date string) error {
	args := m.Called(ctx, userID, date)
	return args.Error(0)
}

type MockResultPublisher struct {
	mock.Mock
}

func (m *MockResultPublisher) PublishResult(ctx context.Context, postID, userID string, result *model.PublicationResult) (string, error) {
	args := m.Called(ctx, postID, userID, result)
	return args.String(0), args.Error(1)
}

type MockFailureNotifier struct {
	mock.Mock
}

func (m *MockFailureNotifier) NotifyFailure(ctx context.Context, postID, userID string, result *model.PublicationResult) error {
	args := m.Called(ctx, postID, userID, result)
	return args.Error(0)
}

// publisherFunc adapts a plain function to the publisher contract.
type publisherFunc func(ctx context.Context, binding model.AccountBinding, video model.ArtifactAccess, thumbnail *model.ArtifactAccess, meta model.PostMetadata) model.PublishOutcome

func (f publisherFunc) Publish(ctx context.Context, binding model.AccountBinding, video model.ArtifactAccess, thumbnail *model.ArtifactAccess, meta model.PostMetadata) model.PublishOutcome {
	return f(ctx, binding, video, thumbnail, meta)
}

func succeedingPublisher(platform string) repository.IPlatformPublisher {
	return publisherFunc(func(_ context.Context, _ model.AccountBinding, _ model.ArtifactAccess, _ *model.ArtifactAccess, _ model.PostMetadata) model.PublishOutcome {
		return model.PublishOutcome{Platform: platform, Success: true, ExternalID: platform + "-video-1"}
	})
}

func failingPublisher(platform, message string) repository.IPlatformPublisher {
	return publisherFunc(func(_ context.Context, _ model.AccountBinding, _ model.ArtifactAccess, _ *model.ArtifactAccess, _ model.PostMetadata) model.PublishOutcome {
		return model.PublishOutcome{Platform: platform, Success: false, Message: message}
	})
}

// Test fixture helpers

func testPost() *model.ScheduledPost {
	return &model.ScheduledPost{
		ID:            "post-1",
		UserID:        "user-1",
		VideoPath:     "videos/user-1/clip.mp4",
		ThumbnailPath: "",
		Platforms:     []string{"YouTube"},
		Accounts:      map[string]model.AccountBinding{"YouTube": {"access_token": "tok", "channel_id": "channel-1"}},
		Title:         "My clip",
	}
}

func newOpenLock() *MockPublishLock {
	lock := new(MockPublishLock)
	lock.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	lock.On("Release", mock.Anything, mock.Anything).Return(nil)
	return lock
}

func newPermissivePostRepo() *MockPostRepository {
	repo := new(MockPostRepository)
	repo.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return repo
}

func newResolverFor(paths ...string) *MockArtifactResolver {
	resolver := new(MockArtifactResolver)
	for _, path := range paths {
		resolver.On("Resolve", mock.Anything, path).
			Return(model.ArtifactAccess{URL: "https://signed.example/" + path, ExpiresAt: time.Now().Add(time.Hour)}, nil)
	}
	return resolver
}

func TestPublishPost_SingleSuccessfulPlatform(t *testing.T) {
	post := testPost()
	postRepo := newPermissivePostRepo()
	resolver := newResolverFor(post.VideoPath)
	lock := newOpenLock()
	publishers := map[string]repository.IPlatformPublisher{
		"YouTube": succeedingPublisher("YouTube"),
	}

	uc := usecase.NewPublishUsecase(postRepo, resolver, publishers, lock, nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Outcomes, 1)
	assert.Equal(t, "YouTube", result.Outcomes[0].Platform)
	assert.Equal(t, "https://signed.example/"+post.VideoPath, result.VideoURL)
	assert.Empty(t, result.ThumbnailURL)
	postRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "post-1", model.PostStatusPublishing)
	postRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "post-1", model.PostStatusCompleted)
	lock.AssertCalled(t, "Release", mock.Anything, "post-1")
}

func TestPublishPost_SkipsPlatformsWithoutBinding(t *testing.T) {
	post := testPost()
	post.Platforms = []string{"YouTube", "TikTok"}
	// No TikTok account binding, so TikTok must be skipped rather than failed.
	postRepo := newPermissivePostRepo()
	resolver := newResolverFor(post.VideoPath)
	publishers := map[string]repository.IPlatformPublisher{
		"YouTube": succeedingPublisher("YouTube"),
		"TikTok":  failingPublisher("TikTok", "should never be called"),
	}

	uc := usecase.NewPublishUsecase(postRepo, resolver, publishers, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Outcomes, 1)
	assert.Equal(t, "YouTube", result.Outcomes[0].Platform)
}

func TestPublishPost_StubPlatformsYieldFailedOutcomes(t *testing.T) {
	post := testPost()
	post.Platforms = []string{"TikTok", "Instagram"}
	post.Accounts = map[string]model.AccountBinding{
		"TikTok":    {"account_id": "tk-1"},
		"Instagram": {"account_id": "ig-1"},
	}
	postRepo := newPermissivePostRepo()
	resolver := newResolverFor(post.VideoPath)
	publishers := map[string]repository.IPlatformPublisher{
		"TikTok":    failingPublisher("TikTok", "TikTok upload not implemented"),
		"Instagram": failingPublisher("Instagram", "Instagram upload not implemented"),
	}

	uc := usecase.NewPublishUsecase(postRepo, resolver, publishers, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, result.Outcomes, 2)
	for _, outcome := range result.Outcomes {
		assert.False(t, outcome.Success)
		assert.Contains(t, outcome.Message, "not implemented")
	}
	postRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "post-1", model.PostStatusFailed)
}

func TestPublishPost_VideoResolutionFailureIsFatal(t *testing.T) {
	post := testPost()
	postRepo := newPermissivePostRepo()
	resolver := new(MockArtifactResolver)
	resolver.On("Resolve", mock.Anything, post.VideoPath).
		Return(model.ArtifactAccess{}, apperror.New(apperror.ObjectNotFound, "object %s does not exist", post.VideoPath))

	uc := usecase.NewPublishUsecase(postRepo, resolver, nil, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.Nil(t, result)
	assert.True(t, apperror.IsKind(err, apperror.ArtifactUnavailable))
	postRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "post-1", model.PostStatusFailed)
}

func TestPublishPost_ThumbnailFailureIsNonFatal(t *testing.T) {
	post := testPost()
	post.ThumbnailPath = "thumbs/user-1/clip.jpg"
	postRepo := newPermissivePostRepo()
	resolver := newResolverFor(post.VideoPath)
	resolver.On("Resolve", mock.Anything, post.ThumbnailPath).
		Return(model.ArtifactAccess{}, apperror.New(apperror.TransientStorageError, "storage backend unavailable"))
	publishers := map[string]repository.IPlatformPublisher{
		"YouTube": succeedingPublisher("YouTube"),
	}

	uc := usecase.NewPublishUsecase(postRepo, resolver, publishers, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Outcomes, 1)
	assert.Empty(t, result.ThumbnailURL)
}

func TestPublishPost_EmptyPlatformListIsNotASuccess(t *testing.T) {
	post := testPost()
	post.Platforms = nil
	postRepo := newPermissivePostRepo()
	resolver := newResolverFor(post.VideoPath)

	uc := usecase.NewPublishUsecase(postRepo, resolver, nil, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.Outcomes)
	postRepo.AssertCalled(t, "UpdateStatus", mock.Anything, "post-1", model.PostStatusFailed)
}

func TestPublishPost_LockContention(t *testing.T) {
	post := testPost()
	postRepo := newPermissivePostRepo()
	lock := new(MockPublishLock)
	lock.On("Acquire", mock.Anything, "post-1", mock.Anything).Return(false, nil)

	uc := usecase.NewPublishUsecase(postRepo, newResolverFor(post.VideoPath), nil, lock, nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.Nil(t, result)
	assert.True(t, apperror.IsKind(err, apperror.Internal))
	assert.Contains(t, err.Error(), "already in flight")
	lock.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestPublishPost_PanickingPublisherIsContained(t *testing.T) {
	post := testPost()
	post.Platforms = []string{"YouTube", "TikTok"}
	post.Accounts = map[string]model.AccountBinding{
		"YouTube": {"access_token": "tok"},
		"TikTok":  {"account_id": "tk-1"},
	}
	publishers := map[string]repository.IPlatformPublisher{
		"YouTube": publisherFunc(func(_ context.Context, _ model.AccountBinding, _ model.ArtifactAccess, _ *model.ArtifactAccess, _ model.PostMetadata) model.PublishOutcome {
			panic("boom")
		}),
		"TikTok": succeedingPublisher("TikTok"),
	}

	uc := usecase.NewPublishUsecase(newPermissivePostRepo(), newResolverFor(post.VideoPath), publishers, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Outcomes, 2)
	assert.False(t, result.Outcomes[0].Success)
	assert.Equal(t, "YouTube", result.Outcomes[0].Platform)
	assert.Contains(t, result.Outcomes[0].Message, "publisher panic")
	assert.True(t, result.Outcomes[1].Success)
}

func TestPublishPost_OutcomesFollowRequestedOrderDeduplicated(t *testing.T) {
	post := testPost()
	post.Platforms = []string{"TikTok", "YouTube", "TikTok"}
	post.Accounts = map[string]model.AccountBinding{
		"YouTube": {"access_token": "tok"},
		"TikTok":  {"account_id": "tk-1"},
	}
	publishers := map[string]repository.IPlatformPublisher{
		"YouTube": succeedingPublisher("YouTube"),
		"TikTok":  failingPublisher("TikTok", "TikTok upload not implemented"),
	}

	uc := usecase.NewPublishUsecase(newPermissivePostRepo(), newResolverFor(post.VideoPath), publishers, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.Len(t, result.Outcomes, 2)
	assert.Equal(t, "TikTok", result.Outcomes[0].Platform)
	assert.Equal(t, "YouTube", result.Outcomes[1].Platform)
}

func TestPublishPost_UnregisteredPlatform(t *testing.T) {
	post := testPost()
	post.Platforms = []string{"MySpace"}
	post.Accounts = map[string]model.AccountBinding{"MySpace": {"account_id": "ms-1"}}

	uc := usecase.NewPublishUsecase(newPermissivePostRepo(), newResolverFor(post.VideoPath), map[string]repository.IPlatformPublisher{}, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, result.Outcomes, 1)
	assert.Contains(t, result.Outcomes[0].Message, "no publisher registered")
}

func TestPublishPost_MissingCallerIdentity(t *testing.T) {
	uc := usecase.NewPublishUsecase(newPermissivePostRepo(), nil, nil, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "", testPost())

	assert.Nil(t, result)
	assert.True(t, apperror.IsKind(err, apperror.Unauthenticated))
}

func TestPublishPost_LoadsStoredPostWhenPayloadHasNoVideo(t *testing.T) {
	stored := testPost()
	postRepo := newPermissivePostRepo()
	postRepo.On("GetByID", mock.Anything, "post-1").Return(stored, nil)
	publishers := map[string]repository.IPlatformPublisher{
		"YouTube": succeedingPublisher("YouTube"),
	}

	uc := usecase.NewPublishUsecase(postRepo, newResolverFor(stored.VideoPath), publishers, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", &model.ScheduledPost{ID: "post-1", UserID: "user-1"})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	postRepo.AssertCalled(t, "GetByID", mock.Anything, "post-1")
}

func TestPublishPost_UnknownPostNotFound(t *testing.T) {
	postRepo := newPermissivePostRepo()
	postRepo.On("GetByID", mock.Anything, "post-404").Return(nil, nil)

	uc := usecase.NewPublishUsecase(postRepo, nil, nil, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", &model.ScheduledPost{ID: "post-404", UserID: "user-1"})

	assert.Nil(t, result)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestPublishPost_ForeignPostLooksLikeNotFound(t *testing.T) {
	post := testPost()
	post.UserID = "someone-else"

	uc := usecase.NewPublishUsecase(newPermissivePostRepo(), nil, nil, newOpenLock(), nil, nil, nil, nil, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.Nil(t, result)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestPublishPost_RecordsSideEffects(t *testing.T) {
	post := testPost()
	post.Platforms = []string{"YouTube", "TikTok"}
	post.Accounts = map[string]model.AccountBinding{
		"YouTube": {"access_token": "tok"},
		"TikTok":  {"account_id": "tk-1"},
	}
	publishers := map[string]repository.IPlatformPublisher{
		"YouTube": failingPublisher("YouTube", "YouTube quota exceeded"),
		"TikTok":  failingPublisher("TikTok", "TikTok upload not implemented"),
	}

	auditRepo := new(MockAuditRepository)
	auditRepo.On("CreateAudit", mock.Anything, mock.MatchedBy(func(audits []*model.PublicationAudit) bool {
		return len(audits) == 2
	})).Return(nil).Once()

	usageRepo := new(MockUsageStatsRepository)
	today := time.Now().UTC().Format(model.DateKeyLayout)
	usageRepo.On("IncrementPublishCount", mock.Anything, "user-1", today).Return(nil).Once()

	events := new(MockResultPublisher)
	events.On("PublishResult", mock.Anything, "post-1", "user-1", mock.Anything).Return("msg-1", nil).Once()

	alerts := new(MockFailureNotifier)
	alerts.On("NotifyFailure", mock.Anything, "post-1", "user-1", mock.Anything).Return(nil).Once()

	uc := usecase.NewPublishUsecase(newPermissivePostRepo(), newResolverFor(post.VideoPath), publishers, newOpenLock(), auditRepo, usageRepo, events, alerts, usecase.PublishOptions{})
	result, err := uc.PublishPost(context.Background(), "user-1", post)

	assert.NoError(t, err)
	assert.False(t, result.Success)
	auditRepo.AssertExpectations(t)
	usageRepo.AssertExpectations(t)
	events.AssertExpectations(t)
	alerts.AssertExpectations(t)
}
