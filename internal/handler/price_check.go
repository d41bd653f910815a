package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Marveltechapps/selorg-pricing-engine/internal/apierror"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/dto"
	"github.com/Marveltechapps/selorg-pricing-engine/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const priceCacheTTL = 4 * time.Hour

// PriceCheckHandler serves the public price lookup endpoint.
// No authentication required — no side effects whatsoever.
type PriceCheckHandler struct {
	repo repository.SkuRepository
	rdb  *redis.Client
}

func NewPriceCheckHandler(repo repository.SkuRepository, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{repo: repo, rdb: rdb}
}

// GetByCode godoc
// @Summary Price lookup by SKU code (no authentication)
// @Tags price
// @Produce json
// @Param code path string true "SKU code"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price-check/{code} [get]
func (h *PriceCheckHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()
	// Same key the ledger invalidates on every price write.
	cacheKey := "pricing:sku:" + code

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceCheckResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	sku, err := h.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("sku not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("failed to load sku"))
		return
	}

	resp := dto.PriceCheckResponse{
		Code:         sku.Code,
		Name:         sku.Name,
		Category:     sku.Category,
		SellingPrice: sku.SellingPrice,
		BasePrice:    sku.BasePrice,
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
