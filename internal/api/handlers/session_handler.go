package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/services"
)

type SessionHandler struct {
	store services.SessionStore
}

func NewSessionHandler(store services.SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	sess := h.store.NewSession()

	c.JSON(http.StatusOK, StartSessionResponse{
		SessionID: sess.SessionID,
		CreatedAt: sess.CreatedAt.Format(time.RFC3339),
	})
}

type SessionStatsResponse struct {
	SessionID    string              `json:"session_id"`
	CustomerName string              `json:"customer_name,omitempty"`
	MessageCount int                 `json:"message_count"`
	Stats        models.SessionStats `json:"stats"`
	CreatedAt    time.Time           `json:"created_at"`
	LastActiveAt time.Time           `json:"last_active_at"`
}

func (h *SessionHandler) Stats(c *gin.Context) {
	sess, err := h.store.Stats(c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionStatsResponse{
		SessionID:    sess.SessionID,
		CustomerName: sess.CustomerName,
		MessageCount: len(sess.Messages),
		Stats:        sess.Stats,
		CreatedAt:    sess.CreatedAt,
		LastActiveAt: sess.LastActiveAt,
	})
}

// Reset clears a session's history and counters but keeps the customer
// binding, so a returning caller is still greeted by name.
func (h *SessionHandler) Reset(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.store.Reset(sessionID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"status":     "reset",
	})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.store.Delete(sessionID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"status":     "deleted",
	})
}
