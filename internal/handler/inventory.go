package handler

import (
	"net/http"
	"time"

	"github.com/msakr99/pharmasky-backend-sub001/internal/apierror"
	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/model"
	"github.com/msakr99/pharmasky-backend-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func (h *InventoryHandler) CreateWarehouse(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	w, err := h.svc.CreateWarehouse(c.Request.Context(), req.Name, model.WarehouseKind(req.Kind))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, warehouseToResponse(w))
}

func (h *InventoryHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.svc.ListWarehouses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list warehouses"))
		return
	}
	resp := make([]dto.WarehouseResponse, 0, len(warehouses))
	for i := range warehouses {
		resp = append(resp, *warehouseToResponse(&warehouses[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) GetWarehouse(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	w, err := h.svc.GetWarehouse(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, warehouseToResponse(w))
}

// GetMainWarehouse reports the MAIN warehouse without auto-creating it —
// a read should not have write side effects.
func (h *InventoryHandler) GetMainWarehouse(c *gin.Context) {
	w, err := h.svc.GetOrCreateMainWarehouse(c.Request.Context(), true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, warehouseToResponse(w))
}

func (h *InventoryHandler) ListWarehouseItems(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListItems(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list items"))
		return
	}
	resp := make([]dto.InventoryItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, *itemToResponse(&items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req dto.CreateInventoryItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
		return
	}

	input := service.ItemInput{
		ProductID:           productID,
		OperatingNumber:     req.OperatingNumber,
		PurchaseDiscountPct: req.PurchaseDiscountPct,
		SellingDiscountPct:  req.SellingDiscountPct,
		Quantity:            req.Quantity,
	}

	if req.WarehouseID != "" {
		warehouseID, err := uuid.Parse(req.WarehouseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid warehouse_id"))
			return
		}
		w, err := h.svc.GetWarehouse(c.Request.Context(), warehouseID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		input.Warehouse = w
	}

	if req.ExpiryDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid expiry_date, expected YYYY-MM-DD"))
			return
		}
		input.ExpiryDate = &t
	}

	item, err := h.svc.CreateItem(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemToResponse(item))
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInventoryItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	changes := service.ItemChanges{
		PurchaseDiscountPct: req.PurchaseDiscountPct,
		SellingDiscountPct:  req.SellingDiscountPct,
		Quantity:            req.Quantity,
		RemainingQuantity:   req.RemainingQuantity,
		OperatingNumber:     req.OperatingNumber,
	}
	if req.ExpiryDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid expiry_date, expected YYYY-MM-DD"))
			return
		}
		changes.ExpiryDate = &t
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), id, changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(item))
}

func (h *InventoryHandler) TransferItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.TransferInventoryItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid warehouse_id"))
		return
	}

	item, err := h.svc.TransferItem(c.Request.Context(), id, warehouseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(item))
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) Deduct(c *gin.Context) {
	var req dto.DeductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
		return
	}

	var warehouse *model.Warehouse
	if req.WarehouseID != "" {
		warehouseID, err := uuid.Parse(req.WarehouseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid warehouse_id"))
			return
		}
		warehouse, err = h.svc.GetWarehouse(c.Request.Context(), warehouseID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}

	if err := h.svc.Deduct(c.Request.Context(), productID, req.Quantity, warehouse); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func warehouseToResponse(w *model.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:                 w.ID.String(),
		Name:               w.Name,
		Kind:               string(w.Kind),
		ItemCount:          w.ItemCount,
		TotalQuantity:      w.TotalQuantity,
		TotalPurchaseValue: w.TotalPurchaseValue,
		TotalSellingValue:  w.TotalSellingValue,
	}
}

func itemToResponse(item *model.InventoryItem) *dto.InventoryItemResponse {
	resp := &dto.InventoryItemResponse{
		ID:                  item.ID.String(),
		WarehouseID:         item.WarehouseID.String(),
		ProductID:           item.ProductID.String(),
		OperatingNumber:     item.OperatingNumber,
		PurchaseDiscountPct: item.PurchaseDiscountPct,
		PurchasePrice:       item.PurchasePrice,
		SellingDiscountPct:  item.SellingDiscountPct,
		SellingPrice:        item.SellingPrice,
		Quantity:            item.Quantity,
		RemainingQuantity:   item.RemainingQuantity,
		PurchaseSubTotal:    item.PurchaseSubTotal,
		SellingSubTotal:     item.SellingSubTotal,
	}
	if item.ExpiryDate != nil {
		d := item.ExpiryDate.Format("2006-01-02")
		resp.ExpiryDate = &d
	}
	return resp
}
