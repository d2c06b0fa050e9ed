package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concesa/salesagent/internal/catalog"
	"github.com/concesa/salesagent/internal/utils"
)

type CatalogHandler struct {
	indexer *catalog.Indexer
	index   *catalog.Index
}

func NewCatalogHandler(indexer *catalog.Indexer, index *catalog.Index) *CatalogHandler {
	return &CatalogHandler{indexer: indexer, index: index}
}

// Info returns the manifest of the generation currently serving searches.
func (h *CatalogHandler) Info(c *gin.Context) {
	man, ok := h.index.Manifest()
	if !ok {
		writeError(c, utils.E(utils.CodeResourceUnavailable, "CatalogHandler.Info", "catalog index not built yet", nil))
		return
	}

	c.JSON(http.StatusOK, man)
}

// Rebuild re-reads the catalog source and swaps in a fresh index generation.
// Searches keep hitting the old generation until the swap.
func (h *CatalogHandler) Rebuild(c *gin.Context) {
	man, err := h.indexer.Rebuild(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, man)
}
