package routes

import (
	"cityfixer-be/controllers"
	"cityfixer-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, h *controllers.Handler, limiter middlewares.IssueLimiter) {
	issue := r.Group("/issues")
	{
		issue.POST("", middlewares.IssueRateLimiter(limiter), h.CreateIssue)
		issue.GET("", h.GetIssues)
		issue.GET("/resolved", h.GetResolvedIssues)
		issue.GET("/count", h.GetIssueCount)
		issue.PATCH("/:id", h.UpdateIssue)
		issue.PATCH("/:id/upvote", h.UpvoteIssue)
		issue.DELETE("/:id", h.DeleteIssue)
	}
}
