package handler

import (
	"net/http"

	"github.com/msakr99/pharmasky-backend-sub001/internal/apierror"
	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type OffersHandler struct{ svc service.OfferService }

func NewOffersHandler(svc service.OfferService) *OffersHandler {
	return &OffersHandler{svc: svc}
}

func (h *OffersHandler) Create(c *gin.Context) {
	var req dto.CreateOfferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OffersHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OffersHandler) List(c *gin.Context) {
	var filter dto.OfferFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list offers"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OffersHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
