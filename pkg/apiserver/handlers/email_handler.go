package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/mailqueue"
	"github.com/hireflow/hireflow/pkg/model"
	"github.com/hireflow/hireflow/pkg/store/postgres"
	redisclient "github.com/hireflow/hireflow/pkg/store/redis"
)

type EmailHandler struct {
	db     *postgres.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

func NewEmailHandler(db *postgres.Store, redis *redisclient.Client, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{db: db, redis: redis, logger: logger}
}

type scheduleRequest struct {
	TemplateSlug  string                 `json:"template_slug" binding:"required"`
	Recipient     string                 `json:"recipient" binding:"required,email"`
	Variables     map[string]interface{} `json:"variables"`
	ScheduledFor  time.Time              `json:"scheduled_for" binding:"required"`
	ApplicationID string                 `json:"application_id"`
	StatusType    string                 `json:"status_type"`
}

type rescheduleRequest struct {
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
}

type emailResponse struct {
	ID            string      `json:"id"`
	TemplateSlug  string      `json:"template_slug"`
	Recipient     string      `json:"recipient"`
	Subject       string      `json:"subject"`
	Variables     model.JSONB `json:"variables,omitempty"`
	ScheduledFor  string      `json:"scheduled_for"`
	ApplicationID *string     `json:"application_id,omitempty"`
	StatusType    string      `json:"status_type,omitempty"`
	Status        string      `json:"status"`
	MessageID     string      `json:"message_id,omitempty"`
	Error         string      `json:"error,omitempty"`
	SentAt        *string     `json:"sent_at,omitempty"`
	CreatedAt     string      `json:"created_at"`
}

func (h *EmailHandler) scheduler() *mailqueue.Scheduler {
	db := h.db.DB()
	var bus mailqueue.EventSink
	if h.redis != nil {
		bus = eventbus.NewBus(h.redis.Client())
	}
	return mailqueue.NewScheduler(
		postgres.NewDelayedEmailRepository(db),
		postgres.NewTemplateRepository(db),
		bus,
		h.logger,
	)
}

func (h *EmailHandler) Schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var applicationID *uuid.UUID
	if req.ApplicationID != "" {
		parsed, err := uuid.Parse(req.ApplicationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application_id"})
			return
		}
		applicationID = &parsed
	}

	id, err := h.scheduler().Schedule(c.Request.Context(), mailqueue.ScheduleRequest{
		TemplateSlug:  req.TemplateSlug,
		Recipient:     req.Recipient,
		Variables:     req.Variables,
		ScheduledFor:  req.ScheduledFor,
		ApplicationID: applicationID,
		StatusType:    req.StatusType,
	})
	if err != nil {
		switch {
		case errors.Is(err, mailqueue.ErrAlreadyScheduled):
			c.JSON(http.StatusConflict, gin.H{"error": "an email is already scheduled for this application"})
		case errors.Is(err, mailqueue.ErrScheduledInPast), errors.Is(err, mailqueue.ErrTemplateNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("failed to schedule email", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule email"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

func (h *EmailHandler) List(c *gin.Context) {
	var statusFilter *model.DelayedEmailStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed := model.DelayedEmailStatus(raw)
		if !isValidEmailStatus(parsed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		statusFilter = &parsed
	}

	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	repo := postgres.NewDelayedEmailRepository(h.db.DB())
	emails, total, err := repo.List(c.Request.Context(), statusFilter, limit, offset)
	if err != nil {
		h.logger.Error("failed to list emails", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list emails"})
		return
	}

	response := make([]emailResponse, 0, len(emails))
	for i := range emails {
		response = append(response, mapEmail(&emails[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"emails": response,
		"total":  total,
	})
}

func (h *EmailHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return
	}

	repo := postgres.NewDelayedEmailRepository(h.db.DB())
	email, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
			return
		}
		h.logger.Error("failed to get email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get email"})
		return
	}

	c.JSON(http.StatusOK, mapEmail(email))
}

func (h *EmailHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return
	}

	if err := h.scheduler().Cancel(c.Request.Context(), id); err != nil {
		if errors.Is(err, mailqueue.ErrNotScheduled) {
			c.JSON(http.StatusConflict, gin.H{"error": "email is not in scheduled state"})
			return
		}
		h.logger.Error("failed to cancel email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *EmailHandler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.scheduler().Reschedule(c.Request.Context(), id, req.ScheduledFor); err != nil {
		switch {
		case errors.Is(err, mailqueue.ErrNotScheduled):
			c.JSON(http.StatusConflict, gin.H{"error": "email is not in scheduled state"})
		case errors.Is(err, mailqueue.ErrScheduledInPast):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("failed to reschedule email", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reschedule email"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rescheduled"})
}

func (h *EmailHandler) ListLogs(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 100)
	offset := parseOffset(c.Query("offset"))

	repo := postgres.NewEmailLogRepository(h.db.DB())
	logs, err := repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list email logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list email logs"})
		return
	}

	c.JSON(http.StatusOK, logs)
}

func mapEmail(email *model.DelayedEmail) emailResponse {
	resp := emailResponse{
		ID:           email.ID.String(),
		TemplateSlug: email.TemplateSlug,
		Recipient:    email.Recipient,
		Subject:      email.Subject,
		Variables:    email.Variables,
		ScheduledFor: email.ScheduledFor.UTC().Format(timeRFC3339Nano),
		StatusType:   email.StatusType,
		Status:       string(email.Status),
		MessageID:    email.MessageID,
		Error:        email.ErrorMessage,
		SentAt:       formatTime(email.SentAt),
		CreatedAt:    email.CreatedAt.UTC().Format(timeRFC3339Nano),
	}
	if email.ApplicationID != nil {
		appID := email.ApplicationID.String()
		resp.ApplicationID = &appID
	}
	return resp
}

func isValidEmailStatus(status model.DelayedEmailStatus) bool {
	switch status {
	case model.EmailScheduled, model.EmailProcessing, model.EmailSent, model.EmailFailed, model.EmailCancelled:
		return true
	default:
		return false
	}
}
