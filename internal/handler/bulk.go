package handler

import (
	"net/http"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/middleware"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/service"

	"github.com/gin-gonic/gin"
)

type BulkHandler struct{ svc service.BulkExecutor }

func NewBulkHandler(svc service.BulkExecutor) *BulkHandler {
	return &BulkHandler{svc: svc}
}

// Execute godoc
// @Summary      Bulk price adjustment
// @Description  Applies one adjustment strategy across the selected SKUs. Invalid items are skipped and reported; valid items are applied, previewed or routed to approval.
// @Tags         bulk
// @Security     BearerAuth
// @Param        body body     dto.BulkAdjustmentRequest true "Adjustment"
// @Success      200  {object} dto.BulkOperationResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/prices/bulk [post]
func (h *BulkHandler) Execute(c *gin.Context) {
	var req dto.BulkAdjustmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Execute(c.Request.Context(), req, claims.Username)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
