package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"cityfixer-be/metrics"
	"cityfixer-be/models"
	"cityfixer-be/store"

	"github.com/gin-gonic/gin"
)

// CreateIssue stores a new issue stamped with a tracking id and creation time
func (h *Handler) CreateIssue(c *gin.Context) {
	var input struct {
		Title         string `json:"title" binding:"required"`
		Description   string `json:"description"`
		Category      string `json:"category"`
		Location      string `json:"location"`
		Image         string `json:"image"`
		Status        string `json:"status"`
		Priority      string `json:"priority" binding:"omitempty,oneof=High Medium Low"`
		ReporterEmail string `json:"reporterEmail"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	// Set default status if not provided
	status := models.Pending
	if input.Status != "" {
		status = models.IssueStatus(input.Status)
	}

	ctx, cancel := storeContext()
	defer cancel()

	trackingID, err := h.Tracker.Allocate(ctx)
	if err != nil {
		h.internalError(c, "CreateIssue", "Failed to allocate tracking id", nil, err)
		return
	}

	issue := models.Issue{
		TrackingID:    trackingID,
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Location:      input.Location,
		Image:         input.Image,
		Status:        status,
		Priority:      models.IssuePriority(input.Priority),
		ReporterEmail: input.ReporterEmail,
		UpvotedBy:     []string{},
	}

	result, err := h.Issues.Create(ctx, &issue)
	if err != nil {
		h.internalError(c, "CreateIssue", "Failed to create issue", trackingID, err)
		return
	}
	metrics.IssuesCreated.Inc()

	c.JSON(http.StatusOK, gin.H{
		"acknowledged": result.Acknowledged,
		"insertedId":   result.InsertedID,
		"trackingId":   issue.TrackingID,
	})
}

// GetIssues lists issues filtered, ordered and paginated by the query string
func (h *Handler) GetIssues(c *gin.Context) {
	q, err := store.ParseIssueQuery(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid issue id"})
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	issues, err := h.Issues.Find(ctx, q)
	if err != nil {
		h.internalError(c, "GetIssues", "Failed to retrieve issues", c.Request.URL.RawQuery, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

// GetResolvedIssues returns the latest resolved issues
func (h *Handler) GetResolvedIssues(c *gin.Context) {
	ctx, cancel := storeContext()
	defer cancel()

	issues, err := h.Issues.Resolved(ctx)
	if err != nil {
		h.internalError(c, "GetResolvedIssues", "Failed to retrieve resolved issues", nil, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

// GetIssueCount returns the estimated total number of issues. Filters are not applied.
func (h *Handler) GetIssueCount(c *gin.Context) {
	ctx, cancel := storeContext()
	defer cancel()

	count, err := h.Issues.EstimatedCount(ctx)
	if err != nil {
		h.internalError(c, "GetIssueCount", "Failed to count issues", nil, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": strconv.FormatInt(count, 10)})
}

// UpdateIssue sets the given fields and updatedAt
func (h *Handler) UpdateIssue(c *gin.Context) {
	issueID, ok := parseIssueParam(c)
	if !ok {
		return
	}

	var input models.IssueUpdate
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	result, err := h.Issues.Update(ctx, issueID, input)
	if err != nil {
		h.internalError(c, "UpdateIssue", "Failed to update issue", issueID.Hex(), err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpvoteIssue records one vote per email per issue
func (h *Handler) UpvoteIssue(c *gin.Context) {
	issueID, ok := parseIssueParam(c)
	if !ok {
		return
	}

	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	err := h.Issues.Upvote(ctx, issueID, input.Email)
	if err == nil {
		metrics.Upvotes.WithLabelValues("accepted").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Upvoted successfully"})
		return
	}
	if !errors.Is(err, store.ErrAlreadyUpvoted) {
		h.internalError(c, "UpvoteIssue", "Failed to upvote issue", issueID.Hex(), err)
		return
	}

	// The vote was a no-op; tell a missing issue apart from a repeat vote.
	exists, err := h.Issues.Exists(ctx, issueID)
	if err != nil {
		h.internalError(c, "UpvoteIssue", "Failed to upvote issue", issueID.Hex(), err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Issue not found"})
		return
	}

	metrics.Upvotes.WithLabelValues("duplicate").Inc()
	c.JSON(http.StatusConflict, gin.H{"message": "Already upvoted"})
}

// DeleteIssue removes an issue permanently
func (h *Handler) DeleteIssue(c *gin.Context) {
	issueID, ok := parseIssueParam(c)
	if !ok {
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	result, err := h.Issues.Delete(ctx, issueID)
	if err != nil {
		h.internalError(c, "DeleteIssue", "Failed to delete issue", issueID.Hex(), err)
		return
	}

	c.JSON(http.StatusOK, result)
}
