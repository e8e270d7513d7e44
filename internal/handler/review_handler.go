package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/logic"
	"github.com/lumina/lts/internal/monitoring"
)

type ReviewHandler struct {
	reviews *logic.ReviewLogic
}

func NewReviewHandler(reviews *logic.ReviewLogic) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// GetReviews handles GET /api/v1/reviews/:eventId.
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid event id")
		return
	}

	reviews, err := h.reviews.GetReviews(eventID)
	if err != nil {
		logger.Error("Failed to list reviews for event %d: %v", eventID, err)
		FailFromError(c, err)
		return
	}
	Success(c, reviews)
}

// GetStats handles GET /api/v1/reviews/:eventId/stats.
func (h *ReviewHandler) GetStats(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		Fail(c, http.StatusBadRequest, "invalid event id")
		return
	}

	stats, err := h.reviews.GetStats(eventID)
	if err != nil {
		logger.Error("Failed to compute review stats for event %d: %v", eventID, err)
		FailFromError(c, err)
		return
	}
	Success(c, stats)
}

// CreateReview handles POST /api/v1/reviews.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req logic.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), req)
	if err != nil {
		FailFromError(c, err)
		return
	}

	monitoring.ReviewsCreated.Inc()
	Created(c, review)
}

// UpdateReview handles PUT /api/v1/reviews/:id.
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID := c.Param("id")
	if reviewID == "" {
		Fail(c, http.StatusBadRequest, "review id required")
		return
	}

	var req logic.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), reviewID, req)
	if err != nil {
		FailFromError(c, err)
		return
	}
	Success(c, review)
}
