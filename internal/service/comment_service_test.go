package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddComment_CompletedBookingRequired(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	ctx := context.Background()

	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	outsider := env.user(t, "outsider")
	item := env.item(t, owner, "Grill", true)
	env.pastBooking(t, item, booker, env.now.Add(-6*day), env.now.Add(-5*day), models.StatusApproved)

	comment, err := env.comments.AddComment(ctx, booker.ID, item.ID, "  worked great  ")
	require.NoError(t, err)
	assert.Equal(t, "booker", comment.AuthorName)
	assert.Equal(t, "worked great", comment.Text)
	assert.True(t, comment.Created.Equal(env.now))

	_, err = env.comments.AddComment(ctx, outsider.ID, item.ID, "never used it")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAddComment_Eligibility(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	ctx := context.Background()
	now := env.now

	owner := env.user(t, "owner")
	active := env.user(t, "active")
	rejected := env.user(t, "rejected")
	item := env.item(t, owner, "Canoe", true)

	// still running: end is in the future
	env.pastBooking(t, item, active, now.Add(-day), now.Add(day), models.StatusApproved)
	_, err := env.comments.AddComment(ctx, active.ID, item.ID, "so far so good")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	// status does not matter once the period is over
	env.pastBooking(t, item, rejected, now.Add(-3*day), now.Add(-2*day), models.StatusRejected)
	_, err = env.comments.AddComment(ctx, rejected.ID, item.ID, "never got it")
	assert.NoError(t, err)

	_, err = env.comments.AddComment(ctx, rejected.ID, item.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.comments.AddComment(ctx, 404, item.ID, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.comments.AddComment(ctx, rejected.ID, 404, "wrong item")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	view, err := env.items.GetItem(ctx, owner.ID, item.ID)
	require.NoError(t, err)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "rejected", view.Comments[0].AuthorName)
}

func TestAddComment_PublishesEvent(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	ctx := context.Background()
	pub := new(mockPublisher)
	env.comments.eventBus = pub

	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	item := env.item(t, owner, "Tripod", true)
	env.pastBooking(t, item, booker, env.now.Add(-2*day), env.now.Add(-day), models.StatusApproved)

	pub.On("PublishJSON", events.EventCommentAdded, mock.AnythingOfType("events.CommentEventPayload")).Return(nil).Once()

	_, err := env.comments.AddComment(ctx, booker.ID, item.ID, "sturdy")
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestAddComment_EligibilityLookupFails(t *testing.T) {
	repo := new(mockRepo)
	env := newTestEnv(t, config.BookingConfig{})
	svc := NewCommentService(repo, nil, env.logger)
	fixed := env.now
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1, Name: "a"}, nil)
	repo.On("GetItemByID", ctx, int64(2)).Return(&models.Item{ID: 2, OwnerID: 3}, nil)
	repo.On("HasCompletedBooking", ctx, int64(1), int64(2), fixed).Return(false, errors.New("io error"))

	_, err := svc.AddComment(ctx, 1, 2, "text")
	require.Error(t, err)
	assert.Nil(t, domain.KindOf(err))
	repo.AssertExpectations(t)
}
