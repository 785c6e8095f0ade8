package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"graph-explorer/backend/internal/state"
	apperrors "graph-explorer/backend/pkg/errors"
	"graph-explorer/backend/pkg/logger"
)

// Handler exposes the session over HTTP.
type Handler struct {
	session *Session
	logger  *zap.Logger
}

// NewHandler creates the HTTP handlers for session.
func NewHandler(session *Session) *Handler {
	return &Handler{
		session: session,
		logger:  logger.With("http"),
	}
}

// Register mounts the graph routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/graph", h.getGraph)
	r.POST("/graph/load", h.load)
	r.POST("/graph/expand", h.expand)
	r.GET("/labels/:label", h.labelView)
}

type expandResponse struct {
	Outcome Outcome `json:"outcome"`
	state.Snapshot
}

func (h *Handler) getGraph(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *Handler) load(c *gin.Context) {
	var req struct {
		Query    string `json:"query" binding:"required"`
		NodeType string `json:"node_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.session.Load(c.Request.Context(), req.Query, req.NodeType); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *Handler) expand(c *gin.Context) {
	var req struct {
		NodeID string `json:"node_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.session.Expand(c.Request.Context(), req.NodeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, expandResponse{Outcome: outcome, Snapshot: h.session.Snapshot()})
}

func (h *Handler) labelView(c *gin.Context) {
	view, err := h.session.LabelView(c.Request.Context(), c.Param("label"))
	if err != nil {
		if errors.Is(err, ErrLabelViewUnsupported) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": apperrors.UserMessage(err)})
}
