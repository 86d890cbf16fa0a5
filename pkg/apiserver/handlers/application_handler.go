package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/mailqueue"
	"github.com/hireflow/hireflow/pkg/model"
	"github.com/hireflow/hireflow/pkg/status"
	"github.com/hireflow/hireflow/pkg/store/postgres"
	redisclient "github.com/hireflow/hireflow/pkg/store/redis"
)

type ApplicationHandler struct {
	db     *postgres.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

func NewApplicationHandler(db *postgres.Store, redis *redisclient.Client, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{db: db, redis: redis, logger: logger}
}

type applicationCreateRequest struct {
	JobID       string   `json:"job_id"`
	FullName    string   `json:"full_name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Phone       string   `json:"phone"`
	Position    string   `json:"position" binding:"required"`
	CoverLetter string   `json:"cover_letter"`
	Documents   []string `json:"documents"`
	Referred    bool     `json:"referred"`
}

type statusChangeRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type applicationResponse struct {
	ID          string   `json:"id"`
	JobID       *string  `json:"job_id,omitempty"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	Position    string   `json:"position"`
	CoverLetter string   `json:"cover_letter,omitempty"`
	Documents   []string `json:"documents,omitempty"`
	Referred    bool     `json:"referred"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type historyResponse struct {
	ID             string  `json:"id"`
	ApplicationID  string  `json:"application_id"`
	PreviousStatus string  `json:"previous_status"`
	NewStatus      string  `json:"new_status"`
	Note           string  `json:"note,omitempty"`
	ChangedBy      *string `json:"changed_by"`
	CreatedAt      string  `json:"created_at"`
}

func (h *ApplicationHandler) service() *status.Service {
	db := h.db.DB()
	var bus *eventbus.Bus
	var sink mailqueue.EventSink
	if h.redis != nil {
		bus = eventbus.NewBus(h.redis.Client())
		sink = bus
	}
	scheduler := mailqueue.NewScheduler(
		postgres.NewDelayedEmailRepository(db),
		postgres.NewTemplateRepository(db),
		sink,
		h.logger,
	)
	return status.NewService(
		postgres.NewApplicationRepository(db),
		postgres.NewHistoryRepository(db),
		postgres.NewSettingRepository(db),
		scheduler,
		bus,
		h.logger,
	)
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	var req applicationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	app := &model.Application{
		ID:          uuid.New(),
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Position:    req.Position,
		CoverLetter: req.CoverLetter,
		Documents:   req.Documents,
		Referred:    req.Referred,
		Status:      status.Submitted,
	}

	if req.JobID != "" {
		jobID, err := uuid.Parse(req.JobID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job_id"})
			return
		}
		app.JobID = &jobID
	}

	repo := postgres.NewApplicationRepository(h.db.DB())
	if err := repo.Create(c.Request.Context(), app); err != nil {
		h.logger.Error("failed to create application", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create application"})
		return
	}

	c.JSON(http.StatusCreated, mapApplication(app))
}

func (h *ApplicationHandler) List(c *gin.Context) {
	var statusFilter *model.ApplicationStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		canonical, ok := status.Canonicalize(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		statusFilter = &canonical
	}

	var jobID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("job_id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job_id"})
			return
		}
		jobID = &parsed
	}

	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	repo := postgres.NewApplicationRepository(h.db.DB())
	apps, total, err := repo.List(c.Request.Context(), statusFilter, jobID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list applications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list applications"})
		return
	}

	response := make([]applicationResponse, 0, len(apps))
	for i := range apps {
		response = append(response, mapApplication(&apps[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": response,
		"total":        total,
	})
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	repo := postgres.NewApplicationRepository(h.db.DB())
	app, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		h.logger.Error("failed to get application", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get application"})
		return
	}

	c.JSON(http.StatusOK, mapApplication(app))
}

func (h *ApplicationHandler) GetHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	limit := parseLimit(c.Query("limit"), 100)

	repo := postgres.NewHistoryRepository(h.db.DB())
	entries, err := repo.ListByApplication(c.Request.Context(), id, limit)
	if err != nil {
		h.logger.Error("failed to list status history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list status history"})
		return
	}

	response := make([]historyResponse, 0, len(entries))
	for i := range entries {
		response = append(response, mapHistory(&entries[i]))
	}

	c.JSON(http.StatusOK, response)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var actor *string
	if adminID := c.GetString("admin_id"); adminID != "" {
		actor = &adminID
	}

	entry, err := h.service().ApplyStatusChange(c.Request.Context(), id, req.Status, req.Note, actor)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, status.ErrApplicationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		default:
			h.logger.Error("failed to apply status change", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply status change"})
		}
		return
	}

	c.JSON(http.StatusOK, mapHistory(entry))
}

func (h *ApplicationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	repo := postgres.NewApplicationRepository(h.db.DB())
	if err := repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		h.logger.Error("failed to delete application", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete application"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func mapApplication(app *model.Application) applicationResponse {
	resp := applicationResponse{
		ID:          app.ID.String(),
		FullName:    app.FullName,
		Email:       app.Email,
		Phone:       app.Phone,
		Position:    app.Position,
		CoverLetter: app.CoverLetter,
		Documents:   app.Documents,
		Referred:    app.Referred,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt.UTC().Format(timeRFC3339Nano),
		UpdatedAt:   app.UpdatedAt.UTC().Format(timeRFC3339Nano),
	}
	if app.JobID != nil {
		jobID := app.JobID.String()
		resp.JobID = &jobID
	}
	return resp
}

func mapHistory(entry *model.StatusHistoryEntry) historyResponse {
	return historyResponse{
		ID:             entry.ID.String(),
		ApplicationID:  entry.ApplicationID.String(),
		PreviousStatus: string(entry.PreviousStatus),
		NewStatus:      string(entry.NewStatus),
		Note:           entry.Note,
		ChangedBy:      entry.ChangedBy,
		CreatedAt:      entry.CreatedAt.UTC().Format(timeRFC3339Nano),
	}
}
