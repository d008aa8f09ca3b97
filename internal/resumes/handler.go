package resumes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-studio-backend/internal/shared/server/middleware"
	"resume-studio-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.create)
	rg.POST("/resumes/validate", h.validate)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.remove)
	rg.POST("/resumes/:id/duplicate", h.duplicate)
	rg.GET("/resumes/:id/snapshots/:version", h.snapshot)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docs, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to list resumes")
		return
	}
	respond.OK(c, gin.H{"resumes": toSummaries(docs)})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch resume")
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		writeError(c, err, "failed to create resume")
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var patch UpdatePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "failed to update resume")
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err, "failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) duplicate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Duplicate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to duplicate resume")
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

// validate checks a candidate document and echoes it back. It never persists;
// durable writes go through the create/update endpoints.
func (h *Handler) validate(c *gin.Context) {
	var doc Resume
	if err := c.ShouldBindJSON(&doc); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc.Sections = NormalizeSections(doc.Sections)
	if err := Validate(doc); err != nil {
		writeError(c, err, "validation failed")
		return
	}
	respond.OK(c, gin.H{"valid": true, "resume": doc})
}

func (h *Handler) snapshot(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "version must be a positive integer", nil)
		return
	}

	rc, err := h.Svc.OpenSnapshot(c.Request.Context(), userID, c.Param("id"), version)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "snapshot not found", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func writeError(c *gin.Context, err error, fallback string) {
	if ve, ok := AsValidationError(err); ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", ve.Error(), ve.Fields)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
