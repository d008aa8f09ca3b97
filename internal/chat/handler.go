package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"resume-studio-backend/internal/coverletters"
	"resume-studio-backend/internal/llm"
	"resume-studio-backend/internal/resumes"
	"resume-studio-backend/internal/shadow"
	"resume-studio-backend/internal/shared/metrics"
	"resume-studio-backend/internal/shared/server/middleware"
	"resume-studio-backend/internal/shared/server/respond"
	"resume-studio-backend/internal/shared/telemetry"
	"resume-studio-backend/internal/updates"
)

const defaultTimeout = 60 * time.Second

// Handler exposes the chat endpoints. Each request gets its own shadow
// store, so concurrent chats never observe each other's drafts.
type Handler struct {
	LLM      llm.Client
	Updates  *updates.Broker
	MaxSteps int
	Timeout  time.Duration
	Now      func() time.Time
}

// NewHandler constructs a Handler. maxSteps and timeout fall back to
// defaults when zero.
func NewHandler(client llm.Client, broker *updates.Broker, maxSteps int, timeout time.Duration) *Handler {
	return &Handler{
		LLM:      client,
		Updates:  broker,
		MaxSteps: maxSteps,
		Timeout:  timeout,
		Now:      time.Now,
	}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat/resume", h.resumeChat)
	rg.POST("/chat/cover-letter", h.coverLetterChat)
}

type resumeChatRequest struct {
	Messages       json.RawMessage `json:"messages"`
	ResumeID       string          `json:"resumeId"`
	UserID         string          `json:"userId"`
	JobDescription string          `json:"jobDescription"`
	TargetRole     string          `json:"targetRole"`
	Resume         *resumes.Resume `json:"resume"`
	MaxSteps       int             `json:"maxSteps"`
}

func (h *Handler) resumeChat(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req resumeChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	messages, err := parseMessages(req.Messages)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	if req.Resume != nil && req.ResumeID != "" && req.Resume.ID != "" && req.Resume.ID != req.ResumeID {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeId does not match resume.id", nil)
		return
	}

	// Body userId is a fallback for unauthenticated local tooling; the
	// middleware identity wins when both are present.
	if userID == "" {
		userID = req.UserID
	}

	store := shadow.NewResumeStore(h.Now)
	editing := req.Resume != nil

	var doc resumes.Resume
	if editing {
		doc = *req.Resume
		if doc.ID == "" {
			doc.ID = req.ResumeID
		}
		// Client snapshots often omit ownership; without it the persisted
		// document would land in a partition the owner cannot read.
		if doc.UserID == "" {
			doc.UserID = userID
		}
		doc.Sections = resumes.NormalizeSections(doc.Sections)
	} else {
		// Creation flow: seed an empty draft for the tools to build up.
		doc = resumes.New(userID, "Untitled resume", nil, h.Now().UTC())
		if req.ResumeID != "" {
			doc.ID = req.ResumeID
		}
	}
	if doc.ID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume must carry an id", nil)
		return
	}
	store.Load(doc)
	c.Set("documentId", doc.ID)

	base := resumeCreatePrompt
	if editing {
		base = resumeEditPrompt
	}
	system := buildSystemPrompt(base, req.JobDescription, req.TargetRole)

	h.stream(c, streamInput{
		system:   system,
		messages: messages,
		tools:    ResumeTools(store, doc.ID),
		maxSteps: req.MaxSteps,
		docID:    doc.ID,
	})
}

type letterChatRequest struct {
	Messages       json.RawMessage           `json:"messages"`
	CoverLetterID  string                    `json:"coverLetterId"`
	ChatID         string                    `json:"chatId"`
	JobDescription string                    `json:"jobDescription"`
	CoverLetter    *coverletters.CoverLetter `json:"coverLetter"`
	MaxSteps       int                       `json:"maxSteps"`
}

func (h *Handler) coverLetterChat(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req letterChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	messages, err := parseMessages(req.Messages)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	if req.CoverLetter != nil && req.CoverLetterID != "" && req.CoverLetter.ID != "" && req.CoverLetter.ID != req.CoverLetterID {
		respond.Error(c, http.StatusBadRequest, "validation_error", "coverLetterId does not match coverLetter.id", nil)
		return
	}

	store := shadow.NewLetterStore(h.Now)
	editing := req.CoverLetter != nil

	var doc coverletters.CoverLetter
	if editing {
		doc = *req.CoverLetter
		if doc.ID == "" {
			doc.ID = req.CoverLetterID
		}
		if doc.UserID == "" {
			doc.UserID = userID
		}
	} else {
		doc = coverletters.New(userID, "Untitled cover letter", "", coverletters.TemplateClassic, h.Now().UTC())
		if req.CoverLetterID != "" {
			doc.ID = req.CoverLetterID
		}
	}
	if doc.ID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cover letter must carry an id", nil)
		return
	}
	store.Load(doc)
	c.Set("documentId", doc.ID)

	base := letterCreatePrompt
	if editing {
		base = letterEditPrompt
	}
	system := buildSystemPrompt(base, req.JobDescription, "")

	h.stream(c, streamInput{
		system:   system,
		messages: messages,
		tools:    LetterTools(store, doc.ID),
		maxSteps: req.MaxSteps,
		docID:    doc.ID,
	})
}

type streamInput struct {
	system   string
	messages []llm.Message
	tools    []Tool
	maxSteps int
	docID    string
}

// stream runs the agent loop and writes the event stream. Once the first
// event is written the response is committed; later failures surface as a
// terminal error event, not a status code.
func (h *Handler) stream(c *gin.Context, in streamInput) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	maxSteps := h.MaxSteps
	if in.maxSteps > 0 {
		maxSteps = in.maxSteps
	}

	c.Header("Content-Type", sse.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	emit := func(ev Event) {
		_ = sse.Encode(c.Writer, sse.Event{Event: ev.Type, Data: ev.Data})
		c.Writer.Flush()
	}

	runner := &Runner{
		Client:   llm.WithRetry(h.LLM, middleware.RequestIDFromContext(c), in.docID),
		MaxSteps: maxSteps,
		OnUpdate: func(kind updates.Kind, docID string, raw json.RawMessage) {
			if h.Updates != nil {
				h.Updates.Publish(updates.Update{
					Kind:  kind,
					DocID: docID,
					Doc:   raw,
					At:    h.Now().UTC(),
				})
			}
		},
	}

	convo := append([]llm.Message{{Role: llm.RoleSystem, Content: in.system}}, in.messages...)

	metrics.IncChatStreamStarted()
	start := time.Now()
	steps, err := runner.Run(ctx, convo, in.tools, emit)
	metrics.ObserveChatStreamDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	c.Set("chatSteps", steps)

	if err != nil {
		metrics.IncChatStreamFailed()
		telemetry.Error("chat.stream_failed", map[string]any{
			"request_id":  middleware.RequestIDFromContext(c),
			"document_id": in.docID,
			"steps":       steps,
			"error":       err.Error(),
		})
		emit(Event{Type: EventError, Data: map[string]any{"message": "chat stream failed"}})
		return
	}
	metrics.IncChatStreamFinished()
	telemetry.Info("chat.stream_finished", map[string]any{
		"request_id":  middleware.RequestIDFromContext(c),
		"document_id": in.docID,
		"steps":       steps,
	})
}
