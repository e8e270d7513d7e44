package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/wallet"
)

// TicketVerifier reports whether an address holds a ticket for an event.
// Backed by the chain accessor in production.
type TicketVerifier interface {
	OwnsTicketForEvent(ctx context.Context, owner common.Address, eventID int64) (bool, error)
}

// ReviewLogic enforces the review rules: signed challenge, ticket
// ownership, and one review per (event, author) pair.
type ReviewLogic struct {
	db       *gorm.DB
	verifier TicketVerifier
	now      func() time.Time
}

func NewReviewLogic(db *gorm.DB, verifier TicketVerifier) *ReviewLogic {
	return &ReviewLogic{db: db, verifier: verifier, now: time.Now}
}

type CreateReviewRequest struct {
	EventID   int64  `json:"eventId" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
	Signature string `json:"signature" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// CreateReview verifies the signed challenge, the author's ticket
// ownership, and uniqueness, then persists the review.
func (r *ReviewLogic) CreateReview(ctx context.Context, req CreateReviewRequest) (*model.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1-5", ErrValidation)
	}

	author, err := r.authenticate(req.Message, req.Signature, req.EventID, wallet.ReviewActionCreate)
	if err != nil {
		return nil, err
	}

	owns, err := r.verifier.OwnsTicketForEvent(ctx, author, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ticket ownership: %w", err)
	}
	if !owns {
		return nil, ErrTicketRequired
	}

	var count int64
	if err := r.db.Model(&model.Review{}).
		Where("event_id = ? AND lower(user_address) = lower(?)", req.EventID, author.Hex()).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyReviewed
	}

	review := &model.Review{
		ID:          uuid.NewString(),
		EventID:     req.EventID,
		UserAddress: author.Hex(),
		Rating:      req.Rating,
		Comment:     req.Comment,
		IsVerified:  true,
	}
	if err := r.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview rewrites the rating and comment of an existing review. Only
// the original author's signature succeeds; no second record is created.
func (r *ReviewLogic) UpdateReview(ctx context.Context, reviewID string, req CreateReviewRequest) (*model.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1-5", ErrValidation)
	}

	var review model.Review
	if err := r.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	author, err := r.authenticate(req.Message, req.Signature, review.EventID, wallet.ReviewActionUpdate)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(author.Hex(), review.UserAddress) {
		return nil, ErrNotAuthor
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	if err := r.db.Save(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviews lists an event's reviews, newest first. Records without an
// author address are malformed and excluded.
func (r *ReviewLogic) GetReviews(eventID int64) ([]model.Review, error) {
	var reviews []model.Review
	if err := r.db.
		Where("event_id = ? AND user_address <> ''", eventID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetStats recomputes the aggregates from the full well-formed review set.
func (r *ReviewLogic) GetStats(eventID int64) (*model.ReviewStats, error) {
	reviews, err := r.GetReviews(eventID)
	if err != nil {
		return nil, err
	}

	stats := &model.ReviewStats{
		EventID:      eventID,
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	var sum int
	for _, review := range reviews {
		if review.Rating < 1 || review.Rating > 5 {
			continue
		}
		stats.TotalReviews++
		stats.Distribution[review.Rating]++
		sum += review.Rating
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}
	return stats, nil
}

func (r *ReviewLogic) authenticate(msg, sig string, eventID int64, action wallet.ReviewAction) (common.Address, error) {
	author, err := wallet.RecoverAddress(msg, sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	if err := wallet.CheckReviewMessage(msg, eventID, action, r.now()); err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return author, nil
}
