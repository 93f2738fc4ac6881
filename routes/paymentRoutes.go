package routes

import (
	"cityfixer-be/controllers"

	"github.com/gin-gonic/gin"
)

// PaymentRoutes sets up payment recording and checkout routes
func PaymentRoutes(r *gin.Engine, h *controllers.Handler) {
	payment := r.Group("/payments")
	{
		payment.POST("", h.CreatePayment)
		payment.GET("", h.GetPayments)
	}

	r.POST("/create-checkout-session", h.CreateCheckoutSession)
}
