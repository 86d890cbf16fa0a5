package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireflow/hireflow/pkg/model"
	"github.com/hireflow/hireflow/pkg/store/postgres"
)

type TemplateHandler struct {
	db     *postgres.Store
	logger *zap.Logger
}

func NewTemplateHandler(db *postgres.Store, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{db: db, logger: logger}
}

type templateCreateRequest struct {
	Slug      string   `json:"slug" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	Subject   string   `json:"subject" binding:"required"`
	Body      string   `json:"body" binding:"required"`
	Variables []string `json:"variables"`
	Active    *bool    `json:"active"`
}

type templateUpdateRequest struct {
	Name    *string `json:"name"`
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
	Active  *bool   `json:"active"`
}

func (h *TemplateHandler) List(c *gin.Context) {
	repo := postgres.NewTemplateRepository(h.db.DB())
	templates, err := repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list templates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}

	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req templateCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	tmpl := &model.EmailTemplate{
		ID:        uuid.New(),
		Slug:      req.Slug,
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		Variables: req.Variables,
		Active:    active,
	}

	repo := postgres.NewTemplateRepository(h.db.DB())
	if err := repo.Create(c.Request.Context(), tmpl); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "template slug already exists"})
			return
		}
		h.logger.Error("failed to create template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create template"})
		return
	}

	c.JSON(http.StatusCreated, tmpl)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	repo := postgres.NewTemplateRepository(h.db.DB())
	tmpl, err := repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		h.logger.Error("failed to get template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get template"})
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var req templateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Subject != nil {
		updates["subject"] = *req.Subject
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	repo := postgres.NewTemplateRepository(h.db.DB())
	if err := repo.Update(c.Request.Context(), c.Param("slug"), updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		h.logger.Error("failed to update template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update template"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
