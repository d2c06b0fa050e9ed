package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concesa/salesagent/internal/catalog"
	"github.com/concesa/salesagent/internal/services"
)

type HealthHandler struct {
	index    *catalog.Index
	crm      services.CRMService
	sessions services.SessionStore
}

func NewHealthHandler(index *catalog.Index, crm services.CRMService, sessions services.SessionStore) *HealthHandler {
	return &HealthHandler{index: index, crm: crm, sessions: sessions}
}

type HealthResponse struct {
	Status         string `json:"status"`
	IndexReady     bool   `json:"index_ready"`
	CRMReady       bool   `json:"crm_ready"`
	ActiveSessions int    `json:"active_sessions"`
}

// Health reports readiness. Serving traffic needs both the catalog index and
// the CRM database, so either one missing degrades the status to 503.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:         "ok",
		IndexReady:     h.index.Ready(),
		CRMReady:       h.crm.Ping(c.Request.Context()) == nil,
		ActiveSessions: h.sessions.Count(),
	}

	status := http.StatusOK
	if !resp.IndexReady || !resp.CRMReady {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}
