package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legalens-backend/internal/analysis"
	"legalens-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the chat service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat/sessions", h.createSession)
	rg.GET("/chat/sessions/:id", h.getSession)
	rg.POST("/chat/sessions/:id/messages", h.sendMessage)
}

type createSessionRequest struct {
	AnalysisID string `json:"analysisId"`
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AnalysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysisId is required", nil)
		return
	}

	session, err := h.Svc.CreateSession(c.Request.Context(), req.AnalysisID)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrAnalysisNotReady):
			respond.Error(c, http.StatusConflict, "analysis_not_ready", "analysis must be completed before chatting", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create chat session", nil)
		}
		return
	}
	c.Set("sessionId", session.ID)
	c.Set("analysisId", session.AnalysisID)

	respond.Created(c, sessionResponse(session))
}

func (h *Handler) getSession(c *gin.Context) {
	sessionID := c.Param("id")
	session, err := h.Svc.Get(c.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "chat session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch chat session", nil)
		}
		return
	}
	c.Set("sessionId", session.ID)
	c.Set("analysisId", session.AnalysisID)

	respond.OK(c, sessionResponse(session))
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	sessionID := c.Param("id")
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_payload", "invalid message payload", nil)
		return
	}

	turn, err := h.Svc.Send(c.Request.Context(), sessionID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuestion):
			respond.Error(c, http.StatusBadRequest, "validation_error", "content is required", nil)
		case errors.Is(err, ErrSessionNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "chat session not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to send message", nil)
		}
		return
	}
	c.Set("sessionId", turn.Session.ID)
	c.Set("analysisId", turn.Session.AnalysisID)

	resp := gin.H{
		"sessionId": turn.Session.ID,
		"reply":     turn.Reply,
		"degraded":  turn.Degraded,
	}
	if len(turn.Suggestions) > 0 {
		resp["suggestions"] = turn.Suggestions
	}
	respond.OK(c, resp)
}

func sessionResponse(session Session) gin.H {
	return gin.H{
		"id":         session.ID,
		"analysisId": session.AnalysisID,
		"docType":    session.Context.DocType,
		"messages":   session.Messages,
		"createdAt":  session.CreatedAt,
		"updatedAt":  session.UpdatedAt,
	}
}
