package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/model"
	"github.com/hireflow/hireflow/pkg/status"
	"github.com/hireflow/hireflow/pkg/store/postgres"
)

// CatalogHandler serves the supporting admin surfaces: job postings, CRM
// sales visits, training videos, and notification settings.
type CatalogHandler struct {
	db     *postgres.Store
	logger *zap.Logger
}

func NewCatalogHandler(db *postgres.Store, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{db: db, logger: logger}
}

type jobCreateRequest struct {
	Title          string `json:"title" binding:"required"`
	Department     string `json:"department"`
	Location       string `json:"location"`
	EmploymentType string `json:"employment_type"`
	Description    string `json:"description"`
	Open           *bool  `json:"open"`
}

type jobUpdateRequest struct {
	Title          *string `json:"title"`
	Department     *string `json:"department"`
	Location       *string `json:"location"`
	EmploymentType *string `json:"employment_type"`
	Description    *string `json:"description"`
	Open           *bool   `json:"open"`
}

func (h *CatalogHandler) ListJobs(c *gin.Context) {
	openOnly, _ := strconv.ParseBool(c.DefaultQuery("open", "false"))
	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	repo := postgres.NewJobRepository(h.db.DB())
	jobs, total, err := repo.List(c.Request.Context(), openOnly, limit, offset)
	if err != nil {
		h.logger.Error("failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": total})
}

func (h *CatalogHandler) CreateJob(c *gin.Context) {
	var req jobCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	open := true
	if req.Open != nil {
		open = *req.Open
	}

	job := &model.JobPosting{
		ID:             uuid.New(),
		Title:          req.Title,
		Department:     req.Department,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Description:    req.Description,
		Open:           open,
	}

	repo := postgres.NewJobRepository(h.db.DB())
	if err := repo.Create(c.Request.Context(), job); err != nil {
		h.logger.Error("failed to create job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *CatalogHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	repo := postgres.NewJobRepository(h.db.DB())
	job, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("failed to get job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *CatalogHandler) UpdateJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	var req jobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.EmploymentType != nil {
		updates["employment_type"] = *req.EmploymentType
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Open != nil {
		updates["open"] = *req.Open
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	repo := postgres.NewJobRepository(h.db.DB())
	if err := repo.Update(c.Request.Context(), id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("failed to update job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *CatalogHandler) DeleteJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	repo := postgres.NewJobRepository(h.db.DB())
	if err := repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("failed to delete job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type visitCreateRequest struct {
	Company     string    `json:"company" binding:"required"`
	ContactName string    `json:"contact_name"`
	RepID       string    `json:"rep_id" binding:"required"`
	VisitedAt   time.Time `json:"visited_at" binding:"required"`
	Notes       string    `json:"notes"`
	Outcome     string    `json:"outcome"`
}

func (h *CatalogHandler) ListVisits(c *gin.Context) {
	repID := strings.TrimSpace(c.Query("rep_id"))
	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	repo := postgres.NewVisitRepository(h.db.DB())
	visits, total, err := repo.List(c.Request.Context(), repID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list visits", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list visits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"visits": visits, "total": total})
}

func (h *CatalogHandler) CreateVisit(c *gin.Context) {
	var req visitCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	visit := &model.SalesVisit{
		ID:          uuid.New(),
		Company:     req.Company,
		ContactName: req.ContactName,
		RepID:       req.RepID,
		VisitedAt:   req.VisitedAt,
		Notes:       req.Notes,
		Outcome:     req.Outcome,
	}

	repo := postgres.NewVisitRepository(h.db.DB())
	if err := repo.Create(c.Request.Context(), visit); err != nil {
		h.logger.Error("failed to create visit", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create visit"})
		return
	}

	c.JSON(http.StatusCreated, visit)
}

type videoCreateRequest struct {
	Title       string `json:"title" binding:"required"`
	URL         string `json:"url" binding:"required,url"`
	Category    string `json:"category"`
	DurationSec int    `json:"duration_sec"`
	Published   bool   `json:"published"`
}

type videoUpdateRequest struct {
	Title     *string `json:"title"`
	Category  *string `json:"category"`
	Published *bool   `json:"published"`
}

func (h *CatalogHandler) ListVideos(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	publishedOnly, _ := strconv.ParseBool(c.DefaultQuery("published", "false"))

	repo := postgres.NewVideoRepository(h.db.DB())
	videos, err := repo.List(c.Request.Context(), category, publishedOnly)
	if err != nil {
		h.logger.Error("failed to list videos", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list videos"})
		return
	}

	c.JSON(http.StatusOK, videos)
}

func (h *CatalogHandler) CreateVideo(c *gin.Context) {
	var req videoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	video := &model.TrainingVideo{
		ID:          uuid.New(),
		Title:       req.Title,
		URL:         req.URL,
		Category:    req.Category,
		DurationSec: req.DurationSec,
		Published:   req.Published,
	}

	repo := postgres.NewVideoRepository(h.db.DB())
	if err := repo.Create(c.Request.Context(), video); err != nil {
		h.logger.Error("failed to create video", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create video"})
		return
	}

	c.JSON(http.StatusCreated, video)
}

func (h *CatalogHandler) UpdateVideo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	var req videoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	repo := postgres.NewVideoRepository(h.db.DB())
	if err := repo.Update(c.Request.Context(), id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		h.logger.Error("failed to update video", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update video"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type settingUpdateRequest struct {
	TemplateSlug string `json:"template_slug" binding:"required"`
	Enabled      bool   `json:"enabled"`
	DelayMinutes int    `json:"delay_minutes"`
}

func (h *CatalogHandler) ListSettings(c *gin.Context) {
	repo := postgres.NewSettingRepository(h.db.DB())
	settings, err := repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *CatalogHandler) UpdateSetting(c *gin.Context) {
	// The notification path looks settings up under the canonical key, so
	// legacy aliases in the path must be folded before the row is written.
	statusType, ok := status.SettingsKey(c.Param("status_type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status type"})
		return
	}

	var req settingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	setting := &model.NotificationSetting{
		ID:           uuid.New(),
		StatusType:   statusType,
		TemplateSlug: req.TemplateSlug,
		Enabled:      req.Enabled,
		DelayMinutes: req.DelayMinutes,
	}

	repo := postgres.NewSettingRepository(h.db.DB())
	if err := repo.Upsert(c.Request.Context(), setting); err != nil {
		h.logger.Error("failed to update setting", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update setting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
