package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/concesa/salesagent/internal/agent"
	"github.com/concesa/salesagent/internal/utils"
)

type ChatHandler struct {
	agent *agent.Orchestrator
}

func NewChatHandler(a *agent.Orchestrator) *ChatHandler {
	return &ChatHandler{agent: a}
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
	// Verbose includes the per-tool trace of the turn in the response.
	Verbose bool `json:"verbose"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.Chat", "invalid request body", err))
		return
	}

	// Omitted session_id starts a fresh conversation; the generated ID comes
	// back in the response so the client can continue it.
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	res, err := h.agent.Chat(c.Request.Context(), req.SessionID, req.Message, req.Verbose)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
