package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"accessgate/internal/application/reconcile"
	"accessgate/internal/shared/logger"
	"accessgate/internal/shared/utils"
)

// ReconcileHandler triggers owner reconciliation on demand.
type ReconcileHandler struct {
	service *reconcile.Service
	catalog reconcile.CatalogSource
	logger  logger.Interface
}

// NewReconcileHandler creates a new ReconcileHandler
func NewReconcileHandler(service *reconcile.Service, catalog reconcile.CatalogSource, logger logger.Interface) *ReconcileHandler {
	return &ReconcileHandler{
		service: service,
		catalog: catalog,
		logger:  logger,
	}
}

// SummaryResponse is the payload returned after a reconciliation pass.
type SummaryResponse struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// Run handles POST /api/v1/reconcile
func (h *ReconcileHandler) Run(c *gin.Context) {
	summary, err := h.service.RunFromSource(c.Request.Context(), h.catalog)
	if err != nil {
		h.logger.Errorw("reconciliation pass failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", SummaryResponse{
		Added:     summary.Added,
		Removed:   summary.Removed,
		Unchanged: summary.Unchanged,
		Skipped:   summary.Skipped,
	})
}
