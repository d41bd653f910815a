package handler

import (
	"net/http"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/apierror"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/service"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RulesHandler struct {
	svc        service.PriceRuleRegistry
	dispatcher *worker.Dispatcher
}

func NewRulesHandler(svc service.PriceRuleRegistry, dispatcher *worker.Dispatcher) *RulesHandler {
	return &RulesHandler{svc: svc, dispatcher: dispatcher}
}

func (h *RulesHandler) Create(c *gin.Context) {
	var req dto.CreatePriceRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RulesHandler) List(c *gin.Context) {
	var filter dto.PriceRuleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list price rules"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RulesHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Activate(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RulesHandler) Expire(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Expire(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Evaluate godoc
// @Summary      Queue evaluation of a price rule
// @Description  Enqueues a background job that matches the rule against the ledger and files pending updates for every SKU it would reprice.
// @Tags         rules
// @Security     BearerAuth
// @Param        id path string true "Rule UUID"
// @Success      202 {object} map[string]string
// @Router       /v1/price-rules/{id}/evaluate [post]
func (h *RulesHandler) Evaluate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.dispatcher.EnqueueRuleEval(c.Request.Context(), id.String()); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to queue rule evaluation"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "rule_id": id.String()})
}
