package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/concesa/salesagent/internal/services"
	"github.com/concesa/salesagent/internal/utils"
)

type CRMHandler struct {
	crm services.CRMService
}

func NewCRMHandler(crm services.CRMService) *CRMHandler {
	return &CRMHandler{crm: crm}
}

func (h *CRMHandler) Dashboard(c *gin.Context) {
	dash, err := h.crm.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}

func (h *CRMHandler) Customer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("customer_id"), 10, 32)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CRMHandler.Customer", "customer_id must be a number", err))
		return
	}

	limit := 50
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	detail, err := h.crm.CustomerDetail(c.Request.Context(), uint(id), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
