package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concesa/salesagent/internal/agent"
)

type InfoHandler struct {
	profile agent.Profile
}

func NewInfoHandler(profile agent.Profile) *InfoHandler {
	return &InfoHandler{profile: profile}
}

// Info describes the service and its surface for anyone probing the root.
func (h *InfoHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "concesa-sales-agent",
		"status":  "ok",
		"profile": h.profile.Name,
		"model":   h.profile.Model,
		"endpoints": gin.H{
			"chat":      "POST /chat",
			"sessions":  "POST /sessions",
			"stats":     "GET /sessions/:session_id/stats",
			"dashboard": "GET /crm/dashboard",
			"health":    "GET /health",
		},
	})
}
