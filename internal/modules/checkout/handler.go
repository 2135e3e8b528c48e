package checkout

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/modules/payment"
	"stayhub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/checkout")
	{
		g.POST("/calculate", h.Calculate)
		g.POST("/create-intent", h.CreateIntent)
		g.POST("/confirm", h.Confirm)
	}
}

func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	pricing, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"pricing": pricing})
}

func (h *Handler) CreateIntent(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	resp, err := h.service.CreateIntent(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) Confirm(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	resp, err := h.service.Confirm(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var gatewayErr *payment.GatewayError
	var notSucceeded *PaymentNotSucceededError

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidDateRange):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInvalidPrice):
		response.Error(c, http.StatusBadRequest, "INVALID_PRICE", err.Error())
	case errors.Is(err, ErrTooManyGuests):
		response.Error(c, http.StatusBadRequest, "TOO_MANY_GUESTS", err.Error())
	case errors.Is(err, ErrPropertyNotFound):
		response.Error(c, http.StatusNotFound, "PROPERTY_NOT_FOUND", "Property not found")
	case errors.Is(err, ErrPropertyUnavailable):
		response.Error(c, http.StatusBadRequest, "PROPERTY_UNAVAILABLE", "Property is not available for the selected dates")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Payment intent belongs to another user")
	case errors.Is(err, ErrAvailabilityLost):
		response.Error(c, http.StatusBadRequest, "AVAILABILITY_LOST",
			"The dates are no longer available; our team will contact you about a refund")
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, payment.ErrIntentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Payment intent not found")
	case errors.As(err, &notSucceeded):
		response.Error(c, http.StatusBadRequest, "PAYMENT_NOT_SUCCEEDED", notSucceeded.Error())
	case errors.As(err, &gatewayErr):
		response.Error(c, http.StatusBadRequest, "PAYMENT_ERROR", gatewayErr.Message)
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Checkout failed")
	}
}
