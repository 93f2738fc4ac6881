package controllers

import (
	"context"
	"net/http"
	"time"

	"cityfixer-be/config"
	"cityfixer-be/payments"
	"cityfixer-be/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const storeTimeout = 10 * time.Second

// TrackingAllocator hands out tracking ids for new issues.
type TrackingAllocator interface {
	Allocate(ctx context.Context) (string, error)
}

// Handler carries the dependencies shared by every route.
type Handler struct {
	Issues   store.IssueStore
	Payments store.PaymentStore
	Tracker  TrackingAllocator
	Checkout payments.CheckoutProvider
	Logger   *logrus.Logger
}

func NewHandler(issues store.IssueStore, paymentStore store.PaymentStore, tracker TrackingAllocator, checkout payments.CheckoutProvider) *Handler {
	return &Handler{
		Issues:   issues,
		Payments: paymentStore,
		Tracker:  tracker,
		Checkout: checkout,
		Logger:   config.GetLogger(),
	}
}

// storeContext bounds a store call. Requests run to completion, so it is not
// tied to the client connection.
func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// parseIssueParam parses the :id route param, writing a 400 when it is malformed.
func parseIssueParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := store.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// internalError logs err and writes a generic 500.
func (h *Handler) internalError(c *gin.Context, funcName, message string, data any, err error) {
	config.LogError(h.Logger, "controllers", funcName, message, data, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": message})
}

// Home is the liveness probe.
func Home(c *gin.Context) {
	c.String(http.StatusOK, "City Fixer Server is running")
}
