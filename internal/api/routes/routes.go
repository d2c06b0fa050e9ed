package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/concesa/salesagent/internal/api/handlers"
)

type Deps struct {
	Info    *handlers.InfoHandler
	Chat    *handlers.ChatHandler
	Session *handlers.SessionHandler
	CRM     *handlers.CRMHandler
	Catalog *handlers.CatalogHandler
	Health  *handlers.HealthHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", d.Info.Info)
	r.GET("/health", d.Health.Health)

	r.POST("/chat", d.Chat.Chat)

	r.POST("/sessions", d.Session.Start)
	r.GET("/sessions/:session_id/stats", d.Session.Stats)
	r.POST("/sessions/:session_id/reset", d.Session.Reset)
	r.DELETE("/sessions/:session_id", d.Session.Delete)

	r.GET("/crm/dashboard", d.CRM.Dashboard)
	r.GET("/crm/customers/:customer_id", d.CRM.Customer)

	r.GET("/catalog/info", d.Catalog.Info)
	r.POST("/catalog/rebuild", d.Catalog.Rebuild)
}
