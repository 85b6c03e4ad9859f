package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/msakr99/pharmasky-backend-sub001/internal/apierror"
	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/model"
	"github.com/msakr99/pharmasky-backend-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StockCheckHandler serves the availability endpoint clients poll before
// placing orders. Read-through Redis cache — the inventory service deletes
// the key on every mutation, so a hit is at most one mutation stale.
type StockCheckHandler struct {
	svc service.InventoryService
	rdb *redis.Client
	ttl time.Duration
}

func NewStockCheckHandler(svc service.InventoryService, rdb *redis.Client, ttl time.Duration) *StockCheckHandler {
	return &StockCheckHandler{svc: svc, rdb: rdb, ttl: ttl}
}

func (h *StockCheckHandler) GetStock(c *gin.Context) {
	productID, ok := pathUUID(c, "product_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var warehouse *model.Warehouse
	if raw := c.Query("warehouse_id"); raw != "" {
		warehouseID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid warehouse_id"))
			return
		}
		warehouse, err = h.svc.GetWarehouse(ctx, warehouseID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	} else {
		w, err := h.svc.GetOrCreateMainWarehouse(ctx, false)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		warehouse = w
	}

	cacheKey := service.StockCacheKey(warehouse.ID, productID)

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.StockResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	available, err := h.svc.Availability(ctx, productID, warehouse)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.StockResponse{
		ProductID:   productID.String(),
		WarehouseID: warehouse.ID.String(),
		Available:   available,
	}

	// Populate cache — best effort, ignore errors
	if h.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, h.ttl).Err()
		}
	}

	c.JSON(http.StatusOK, resp)
}
