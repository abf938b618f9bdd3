package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"postpilot/infrastructure/configuration"
	httpHandler "postpilot/interfaces/http"
	"postpilot/interfaces/middleware"
)

func InitiateRouter(
	publishHandler httpHandler.IPublishHandler,
	storageHandler httpHandler.IStorageHandler,
	sweepHandler httpHandler.ISweepHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://tulus.tech", "https://admin.tulus.tech", "http://localhost:4201", "http://localhost:4200", "https://localhost:4201", "https://localhost:4200"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	api := router.Group("api")
	api.Use(middleware.Auth(configuration.C.App.SecretKey))
	{
		api.POST("/posts", publishHandler.SchedulePost)
		api.GET("/posts/:postId", publishHandler.GetPost)
		api.POST("/posts/:postId/publish", publishHandler.PublishPost)
		api.GET("/posts/:postId/publications", publishHandler.GetPublications)

		api.POST("/storage/signed-url", storageHandler.SignedURL)
	}

	internal := router.Group("internal")
	internal.Use(middleware.CronAuth(configuration.C.App.CronToken))
	{
		internal.POST("/sweep/daily", sweepHandler.SweepDaily)
		internal.POST("/sweep/weekly", sweepHandler.SweepWeekly)
	}

	return router
}
