package handler

import (
	"errors"
	"net/http"

	"github.com/msakr99/pharmasky-backend-sub001/internal/apierror"
	"github.com/msakr99/pharmasky-backend-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondServiceError translates service-layer errors into HTTP responses.
// Caller-fixable failures come back as 4xx with structured detail where the
// error carries it; integrity violations are 500s with a generic body since
// their detail belongs in the logs, not the client.
func respondServiceError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError
	var invoiceStockErr *service.InvoiceStockError
	var negErr *service.NegativeRemainingError
	var remErr *service.InvalidRemainingError
	var offerErr *service.InsufficientOfferError
	var integrityErr *service.IntegrityError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, apierror.NewStock(
			stockErr.Error(), stockErr.ProductID.String(), stockErr.Requested, stockErr.Available))

	case errors.As(err, &invoiceStockErr):
		c.JSON(http.StatusConflict, gin.H{
			"detail": invoiceStockErr.Error(),
			"lines":  invoiceStockErr.Lines,
		})

	case errors.As(err, &negErr), errors.As(err, &remErr), errors.As(err, &offerErr),
		errors.Is(err, service.ErrDiscountBelowProfit),
		errors.Is(err, service.ErrNonPositiveQuantity),
		errors.Is(err, service.ErrInvoiceClosed),
		errors.Is(err, service.ErrInvoiceNotReceivable),
		errors.Is(err, service.ErrItemReceived),
		errors.Is(err, service.ErrOfferPriced):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))

	case errors.Is(err, service.ErrMainWarehouseMissing),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("not found"))

	case errors.As(err, &integrityErr):
		c.JSON(http.StatusInternalServerError, apierror.New("internal inconsistency detected"))

	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
