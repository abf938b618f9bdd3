package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"postpilot/domain/dto"
	"postpilot/infrastructure/logger"
	"postpilot/usecase"
)

type ISweepHandler interface {
	SweepDaily(ctx *gin.Context)
	SweepWeekly(ctx *gin.Context)
}

type SweepHandler struct {
	sweeperUsecase usecase.ISweeperUsecase
}

func NewSweepHandler(sweeperUsecase usecase.ISweeperUsecase) ISweepHandler {
	return &SweepHandler{sweeperUsecase: sweeperUsecase}
}

func (h *SweepHandler) SweepDaily(ctx *gin.Context) {
	affected, err := h.sweeperUsecase.SweepDaily(ctx.Request.Context())
	if err != nil {
		status, msg := statusForError(err)
		ctx.JSON(status, gin.H{"error": msg})
		return
	}
	logger.GetLogger().WithField("users_affected", affected).Info("daily sweep completed")
	ctx.JSON(http.StatusOK, dto.SweepResponse{Job: "daily", UsersAffected: affected})
}

func (h *SweepHandler) SweepWeekly(ctx *gin.Context) {
	affected, err := h.sweeperUsecase.SweepWeekly(ctx.Request.Context())
	if err != nil {
		status, msg := statusForError(err)
		ctx.JSON(status, gin.H{"error": msg})
		return
	}
	logger.GetLogger().WithField("users_affected", affected).Info("weekly sweep completed")
	ctx.JSON(http.StatusOK, dto.SweepResponse{Job: "weekly", UsersAffected: affected})
}
