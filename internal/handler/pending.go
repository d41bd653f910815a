package handler

import (
	"net/http"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/apierror"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/middleware"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PendingHandler struct{ svc service.PendingUpdateWorkflow }

func NewPendingHandler(svc service.PendingUpdateWorkflow) *PendingHandler {
	return &PendingHandler{svc: svc}
}

func (h *PendingHandler) Propose(c *gin.Context) {
	var req dto.ProposeUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Propose(c.Request.Context(), req, claims.Username)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PendingHandler) List(c *gin.Context) {
	var filter dto.PendingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list pending updates"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Approve godoc
// @Summary      Approve a pending price update
// @Description  Resolves the pending record exactly once and applies the proposed price to the ledger. A second approval or rejection returns 409.
// @Tags         pending
// @Security     BearerAuth
// @Param        id path string true "Pending update UUID"
// @Success      200 {object} dto.PendingUpdateResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/pending-updates/{id}/approve [post]
func (h *PendingHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Approve(c.Request.Context(), id, claims.Username)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PendingHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.RejectUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Reject(c.Request.Context(), id, req.Reason, claims.Username)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
