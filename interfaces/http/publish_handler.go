package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"postpilot/domain/dto"
	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"
	"postpilot/usecase"
)

type IPublishHandler interface {
	SchedulePost(ctx *gin.Context)
	GetPost(ctx *gin.Context)
	PublishPost(ctx *gin.Context)
	GetPublications(ctx *gin.Context)
}

type PublishHandler struct {
	publishUsecase usecase.IPublishUsecase
	postRepo       repository.IScheduledPost
	auditRepo      repository.IPublicationAudit
}

func NewPublishHandler(publishUsecase usecase.IPublishUsecase, postRepo repository.IScheduledPost, auditRepo repository.IPublicationAudit) IPublishHandler {
	return &PublishHandler{publishUsecase: publishUsecase, postRepo: postRepo, auditRepo: auditRepo}
}

func (h *PublishHandler) SchedulePost(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	var req dto.SchedulePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	for _, platform := range req.Platforms {
		if _, ok := req.Accounts[platform]; !ok {
			logger.GetLogger().WithField("platform", platform).Info("scheduled platform has no account binding")
		}
	}

	post := &model.ScheduledPost{
		ID:            uuid.NewString(),
		UserID:        userID,
		VideoPath:     req.VideoPath,
		ThumbnailPath: req.ThumbnailPath,
		Platforms:     req.Platforms,
		Accounts:      req.Accounts,
		Title:         req.Title,
		Description:   req.Description,
		ScheduledTime: req.ScheduledTime,
		Status:        model.PostStatusPending,
	}
	if err := h.postRepo.Create(ctx.Request.Context(), post); err != nil {
		status, msg := statusForError(err)
		ctx.JSON(status, gin.H{"error": msg})
		return
	}
	ctx.JSON(http.StatusCreated, post)
}

func (h *PublishHandler) GetPost(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	postID := ctx.Param("postId")
	post, err := h.postRepo.GetByID(ctx.Request.Context(), postID)
	if err != nil {
		status, msg := statusForError(err)
		ctx.JSON(status, gin.H{"error": msg})
		return
	}
	if post == nil || post.UserID != userID {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	ctx.JSON(http.StatusOK, post)
}

func (h *PublishHandler) PublishPost(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	postID := ctx.Param("postId")

	var req dto.PublishPostRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	post := &model.ScheduledPost{ID: postID, UserID: userID}
	if req.Post != nil {
		post.VideoPath = req.Post.VideoPath
		post.ThumbnailPath = req.Post.ThumbnailPath
		post.Platforms = req.Post.Platforms
		post.Accounts = req.Post.Accounts
		post.Title = req.Post.Title
		post.Description = req.Post.Description
		post.ScheduledTime = req.Post.ScheduledTime
	}

	started := time.Now()
	result, err := h.publishUsecase.PublishPost(ctx.Request.Context(), userID, post)
	if err != nil {
		logger.GetLogger().
			WithField("post_id", postID).
			WithField("user_id", userID).
			WithField("error", err.Error()).
			Warn("publish request failed")
		status, msg := statusForError(err)
		ctx.JSON(status, gin.H{"error": msg})
		return
	}
	logger.GetLogger().
		WithField("post_id", postID).
		WithField("duration_ms", time.Since(started).Milliseconds()).
		WithField("success", result.Success).
		Info("publish request completed")
	ctx.JSON(http.StatusOK, dto.PublishPostResponse{PostID: postID, Result: result})
}

func (h *PublishHandler) GetPublications(ctx *gin.Context) {
	postID := ctx.Param("postId")
	if h.auditRepo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "publication audit store not configured"})
		return
	}
	list, err := h.auditRepo.GetByPostID(ctx.Request.Context(), postID)
	if err != nil {
		status, msg := statusForError(err)
		ctx.JSON(status, gin.H{"error": msg})
		return
	}
	if list == nil {
		list = []*model.PublicationAudit{}
	}
	ctx.JSON(http.StatusOK, gin.H{"post_id": postID, "publications": list})
}
