package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hireflow/hireflow/pkg/apiserver/handlers"
	"github.com/hireflow/hireflow/pkg/apiserver/middleware"
	"github.com/hireflow/hireflow/pkg/config"
	"github.com/hireflow/hireflow/pkg/store/postgres"
	redisclient "github.com/hireflow/hireflow/pkg/store/redis"
)

type Server struct {
	router *gin.Engine
	db     *postgres.Store
	redis  *redisclient.Client
	cfg    *config.Config
	logger *zap.Logger
}

func NewServer(db *postgres.Store, redis *redisclient.Client, cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		db:     db,
		redis:  redis,
		cfg:    cfg,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.Use(middleware.Auth(s.cfg.Auth))

		applicationHandler := handlers.NewApplicationHandler(s.db, s.redis, s.logger)
		api.POST("/applications", applicationHandler.Create)
		api.GET("/applications", applicationHandler.List)
		api.GET("/applications/:id", applicationHandler.Get)
		api.GET("/applications/:id/history", applicationHandler.GetHistory)
		api.PUT("/applications/:id/status", applicationHandler.UpdateStatus)
		api.DELETE("/applications/:id", applicationHandler.Delete)

		emailHandler := handlers.NewEmailHandler(s.db, s.redis, s.logger)
		api.POST("/emails", emailHandler.Schedule)
		api.GET("/emails", emailHandler.List)
		api.GET("/emails/:id", emailHandler.Get)
		api.POST("/emails/:id/cancel", emailHandler.Cancel)
		api.PUT("/emails/:id/schedule", emailHandler.Reschedule)
		api.GET("/email-logs", emailHandler.ListLogs)

		templateHandler := handlers.NewTemplateHandler(s.db, s.logger)
		api.GET("/templates", templateHandler.List)
		api.POST("/templates", templateHandler.Create)
		api.GET("/templates/:slug", templateHandler.Get)
		api.PUT("/templates/:slug", templateHandler.Update)

		catalogHandler := handlers.NewCatalogHandler(s.db, s.logger)
		api.GET("/jobs", catalogHandler.ListJobs)
		api.POST("/jobs", catalogHandler.CreateJob)
		api.GET("/jobs/:id", catalogHandler.GetJob)
		api.PUT("/jobs/:id", catalogHandler.UpdateJob)
		api.DELETE("/jobs/:id", catalogHandler.DeleteJob)
		api.GET("/visits", catalogHandler.ListVisits)
		api.POST("/visits", catalogHandler.CreateVisit)
		api.GET("/videos", catalogHandler.ListVideos)
		api.POST("/videos", catalogHandler.CreateVideo)
		api.PUT("/videos/:id", catalogHandler.UpdateVideo)
		api.GET("/settings", catalogHandler.ListSettings)
		api.PUT("/settings/:status_type", catalogHandler.UpdateSetting)

		feedHandler := handlers.NewFeedHandler(s.redis, s.logger)
		api.GET("/feed", feedHandler.Stream)
	}

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
