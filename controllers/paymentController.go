package controllers

import (
	"errors"
	"net/http"

	"cityfixer-be/models"
	"cityfixer-be/payments"
	"cityfixer-be/store"

	"github.com/gin-gonic/gin"
)

// CreatePayment records a completed checkout against an issue
func (h *Handler) CreatePayment(c *gin.Context) {
	var input struct {
		IssueID       string `json:"issueId" binding:"required"`
		Title         string `json:"title"`
		Email         string `json:"email"`
		Amount        int64  `json:"amount"`
		Currency      string `json:"currency"`
		TransactionID string `json:"transactionId"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	issueID, err := store.ParseObjectID(input.IssueID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue id"})
		return
	}

	payment := models.Payment{
		IssueID:       issueID,
		Title:         input.Title,
		Email:         input.Email,
		Amount:        input.Amount,
		Currency:      input.Currency,
		TransactionID: input.TransactionID,
	}

	ctx, cancel := storeContext()
	defer cancel()

	result, err := h.Payments.Create(ctx, &payment)
	if err != nil {
		h.internalError(c, "CreatePayment", "Failed to record payment", input.IssueID, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayments lists every payment, newest first
func (h *Handler) GetPayments(c *gin.Context) {
	ctx, cancel := storeContext()
	defer cancel()

	list, err := h.Payments.List(ctx)
	if err != nil {
		h.internalError(c, "GetPayments", "Failed to retrieve payments", nil, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// CreateCheckoutSession starts a hosted checkout for expediting an issue
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var input struct {
		Title   string `json:"title" binding:"required"`
		IssueID string `json:"issueID" binding:"required"`
		Email   string `json:"email"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	url, err := h.Checkout.CreateSession(ctx, payments.CheckoutRequest{
		Title:   input.Title,
		IssueID: input.IssueID,
		Email:   input.Email,
	})
	if err != nil {
		if errors.Is(err, payments.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Payments are not configured"})
			return
		}
		h.internalError(c, "CreateCheckoutSession", "Failed to create checkout session", input.IssueID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
