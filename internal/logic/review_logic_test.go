package logic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina/lts/internal/model"
	"github.com/lumina/lts/internal/wallet"
)

func signedReviewRequest(t *testing.T, signer *wallet.Signer, eventID int64, rating int, action wallet.ReviewAction) CreateReviewRequest {
	t.Helper()
	msg := wallet.BuildReviewMessage(eventID, action, time.Now())
	sig, err := signer.SignMessage(msg)
	require.NoError(t, err)
	return CreateReviewRequest{
		EventID:   eventID,
		Rating:    rating,
		Comment:   "great show",
		Signature: sig,
		Message:   msg,
	}
}

func TestCreateReview(t *testing.T) {
	db := newTestDB(t)
	signer := newTestSigner(t)
	verifier := &fakeVerifier{}
	verifier.grant(signer.Address(), 7)
	logic := NewReviewLogic(db, verifier)

	review, err := logic.CreateReview(context.Background(), signedReviewRequest(t, signer, 7, 5, wallet.ReviewActionCreate))
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, signer.Address().Hex(), review.UserAddress)
	assert.True(t, review.IsVerified)
}

func TestCreateReviewRequiresTicket(t *testing.T) {
	db := newTestDB(t)
	signer := newTestSigner(t)
	logic := NewReviewLogic(db, &fakeVerifier{})

	_, err := logic.CreateReview(context.Background(), signedReviewRequest(t, signer, 7, 4, wallet.ReviewActionCreate))
	assert.ErrorIs(t, err, ErrTicketRequired)
}

func TestCreateReviewRejectsSecondReviewSameAuthor(t *testing.T) {
	db := newTestDB(t)
	signer := newTestSigner(t)
	verifier := &fakeVerifier{}
	verifier.grant(signer.Address(), 7)
	logic := NewReviewLogic(db, verifier)

	_, err := logic.CreateReview(context.Background(), signedReviewRequest(t, signer, 7, 5, wallet.ReviewActionCreate))
	require.NoError(t, err)

	_, err = logic.CreateReview(context.Background(), signedReviewRequest(t, signer, 7, 3, wallet.ReviewActionCreate))
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	var count int64
	db.Model(&model.Review{}).Where("event_id = ?", 7).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateReviewRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	signer := newTestSigner(t)
	verifier := &fakeVerifier{}
	verifier.grant(signer.Address(), 7)
	logic := NewReviewLogic(db, verifier)

	req := signedReviewRequest(t, signer, 7, 5, wallet.ReviewActionCreate)
	req.Signature = "0xdeadbeef"
	_, err := logic.CreateReview(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCreateReviewRejectsReplayedMessageForOtherEvent(t *testing.T) {
	db := newTestDB(t)
	signer := newTestSigner(t)
	verifier := &fakeVerifier{}
	verifier.grant(signer.Address(), 8)
	logic := NewReviewLogic(db, verifier)

	// Signed challenge for event 7 replayed against event 8.
	req := signedReviewRequest(t, signer, 7, 5, wallet.ReviewActionCreate)
	req.EventID = 8
	_, err := logic.CreateReview(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCreateReviewRatingBounds(t *testing.T) {
	db := newTestDB(t)
	signer := newTestSigner(t)
	logic := NewReviewLogic(db, &fakeVerifier{})

	for _, rating := range []int{0, 6, -1} {
		_, err := logic.CreateReview(context.Background(), signedReviewRequest(t, signer, 7, rating, wallet.ReviewActionCreate))
		assert.ErrorIs(t, err, ErrValidation, "rating %d", rating)
	}
}

func TestUpdateReviewOnlyAuthor(t *testing.T) {
	db := newTestDB(t)
	author := newTestSigner(t)
	stranger := newTestSigner(t)
	verifier := &fakeVerifier{}
	verifier.grant(author.Address(), 7)
	logic := NewReviewLogic(db, verifier)

	created, err := logic.CreateReview(context.Background(), signedReviewRequest(t, author, 7, 5, wallet.ReviewActionCreate))
	require.NoError(t, err)

	_, err = logic.UpdateReview(context.Background(), created.ID,
		signedReviewRequest(t, stranger, 7, 1, wallet.ReviewActionUpdate))
	assert.ErrorIs(t, err, ErrNotAuthor)

	updated, err := logic.UpdateReview(context.Background(), created.ID,
		signedReviewRequest(t, author, 7, 2, wallet.ReviewActionUpdate))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, created.ID, updated.ID)

	var count int64
	db.Model(&model.Review{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateReviewNotFound(t *testing.T) {
	db := newTestDB(t)
	signer := newTestSigner(t)
	logic := NewReviewLogic(db, &fakeVerifier{})

	_, err := logic.UpdateReview(context.Background(), "no-such-id",
		signedReviewRequest(t, signer, 7, 2, wallet.ReviewActionUpdate))
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestGetReviewsFiltersMalformedAuthors(t *testing.T) {
	db := newTestDB(t)
	logic := NewReviewLogic(db, &fakeVerifier{})

	require.NoError(t, db.Create(&model.Review{ID: "a", EventID: 7, UserAddress: "0xAbc", Rating: 5}).Error)
	require.NoError(t, db.Create(&model.Review{ID: "b", EventID: 7, UserAddress: "", Rating: 1}).Error)

	reviews, err := logic.GetReviews(7)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "a", reviews[0].ID)
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t)
	logic := NewReviewLogic(db, &fakeVerifier{})

	ratings := []int{5, 5, 4, 2}
	for i, rating := range ratings {
		require.NoError(t, db.Create(&model.Review{
			ID:          string(rune('a' + i)),
			EventID:     7,
			UserAddress: "0x" + string(rune('a'+i)),
			Rating:      rating,
		}).Error)
	}
	// Malformed row must not skew the aggregates.
	require.NoError(t, db.Create(&model.Review{ID: "z", EventID: 7, UserAddress: "", Rating: 1}).Error)

	stats, err := logic.GetStats(7)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalReviews)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.Equal(t, 2, stats.Distribution[5])
	assert.Equal(t, 1, stats.Distribution[4])
	assert.Equal(t, 1, stats.Distribution[2])
	assert.Equal(t, 0, stats.Distribution[1])
}

func TestGetStatsEmpty(t *testing.T) {
	db := newTestDB(t)
	logic := NewReviewLogic(db, &fakeVerifier{})

	stats, err := logic.GetStats(99)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalReviews)
	assert.Zero(t, stats.AverageRating)
}
