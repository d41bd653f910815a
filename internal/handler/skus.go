package handler

import (
	"net/http"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/apierror"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SkusHandler struct{ svc service.SkuLedger }

func NewSkusHandler(svc service.SkuLedger) *SkusHandler {
	return &SkusHandler{svc: svc}
}

func (h *SkusHandler) List(c *gin.Context) {
	var filter dto.SkuFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list skus"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SkusHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ApplyPrice godoc
// @Summary      Apply a new selling price to a SKU
// @Description  Recomputes the margin, reclassifies the SKU and records an immutable price-change row, all in one transaction.
// @Tags         skus
// @Security     BearerAuth
// @Param        id   path     string                true  "SKU UUID"
// @Param        body body     dto.ApplyPriceRequest true  "New prices"
// @Success      200  {object} dto.SkuResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/skus/{id}/price [patch]
func (h *SkusHandler) ApplyPrice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.ApplyPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	// Direct writes through the API are always manual. The bulk and
	// approval sources are reserved for the executor and the workflow.
	req.Source = "manual"
	resp, err := h.svc.ApplyPrice(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarginRisk godoc
// @Summary      Margin risk worklist
// @Description  Returns warning and critical SKUs split into urgent (margin below 5%) and the rest, ordered worst-first.
// @Tags         skus
// @Security     BearerAuth
// @Success      200 {object} dto.MarginRiskResponse
// @Router       /v1/margin-risk [get]
func (h *SkusHandler) MarginRisk(c *gin.Context) {
	resp, err := h.svc.MarginRisk(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to build risk worklist"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
