package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"postpilot/domain/dto"
	"postpilot/usecase"
)

type IStorageHandler interface {
	SignedURL(ctx *gin.Context)
}

type StorageHandler struct {
	signedURLUsecase usecase.ISignedURLUsecase
}

func NewStorageHandler(signedURLUsecase usecase.ISignedURLUsecase) IStorageHandler {
	return &StorageHandler{signedURLUsecase: signedURLUsecase}
}

func (h *StorageHandler) SignedURL(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	var req dto.SignedURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.signedURLUsecase.IssueSignedURL(ctx.Request.Context(), userID, req)
	if err != nil {
		status, msg := statusForError(err)
		ctx.JSON(status, gin.H{"error": msg})
		return
	}
	ctx.JSON(http.StatusOK, res)
}
