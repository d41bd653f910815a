package handler

import (
	"net/http"
	"strconv"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/apierror"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/model"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PriceChangesHandler serves the immutable price-change audit trail per SKU.
type PriceChangesHandler struct {
	repo repository.PriceChangeRepository
}

func NewPriceChangesHandler(repo repository.PriceChangeRepository) *PriceChangesHandler {
	return &PriceChangesHandler{repo: repo}
}

// ListBySku godoc
// @Summary      Price-change history of a SKU
// @Description  Returns the immutable price-change trail of a SKU, newest first.
// @Tags         skus
// @Security     BearerAuth
// @Param        id    path     string  true  "SKU UUID"
// @Param        page  query    int     false "Page (default 1)"
// @Param        limit query    int     false "Rows per page (default 50, max 200)"
// @Success      200   {object} dto.PriceChangeListResponse
// @Failure      400   {object} apierror.APIError
// @Router       /v1/skus/{id}/price-changes [get]
func (h *PriceChangesHandler) ListBySku(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sku id"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, total, err := h.repo.ListBySku(c.Request.Context(), id, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to load price changes"))
		return
	}

	data := make([]dto.PriceChangeItem, 0, len(rows))
	for _, r := range rows {
		data = append(data, changeToDTO(&r))
	}

	c.JSON(http.StatusOK, dto.PriceChangeListResponse{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func changeToDTO(pc *model.PriceChange) dto.PriceChangeItem {
	return dto.PriceChangeItem{
		ID:            pc.ID.String(),
		SkuID:         pc.SkuID.String(),
		SellingBefore: pc.SellingBefore,
		SellingAfter:  pc.SellingAfter,
		BaseBefore:    pc.BaseBefore,
		BaseAfter:     pc.BaseAfter,
		MarginBefore:  pc.MarginBefore,
		MarginAfter:   pc.MarginAfter,
		Source:        pc.Source,
		CreatedAt:     pc.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
