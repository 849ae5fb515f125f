// Package handlers contains the gin HTTP handlers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"accessgate/internal/application/access"
	"accessgate/internal/shared/logger"
	"accessgate/internal/shared/utils"
)

// AccessRequestHandler handles access request evaluation HTTP requests
type AccessRequestHandler struct {
	evaluateUseCase *access.EvaluateUseCase
	logger          logger.Interface
}

// NewAccessRequestHandler creates a new AccessRequestHandler
func NewAccessRequestHandler(evaluateUseCase *access.EvaluateUseCase, logger logger.Interface) *AccessRequestHandler {
	return &AccessRequestHandler{
		evaluateUseCase: evaluateUseCase,
		logger:          logger,
	}
}

// EvaluationResponse is the payload returned after evaluating a request.
type EvaluationResponse struct {
	RequestID uint       `json:"request_id"`
	Status    string     `json:"status"`
	Deferred  bool       `json:"deferred"`
	Reason    string     `json:"reason,omitempty"`
	EndingAt  *time.Time `json:"ending_at,omitempty"`
}

// Evaluate handles POST /api/v1/access-requests/:id/evaluate
func (h *AccessRequestHandler) Evaluate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request id")
		return
	}

	result, err := h.evaluateUseCase.Execute(c.Request.Context(), uint(id))
	if err != nil {
		h.logger.Errorw("failed to evaluate access request", "request_id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	response := EvaluationResponse{
		RequestID: result.Request.ID(),
		Status:    string(result.Request.Status()),
		Deferred:  result.Decision == nil,
	}
	if result.Decision != nil {
		response.Reason = result.Decision.Reason
		response.EndingAt = result.Decision.EndingAt
	}

	utils.SuccessResponse(c, http.StatusOK, "", response)
}
