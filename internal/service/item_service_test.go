package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetItem_ProjectionOwnerOnly(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	ctx := context.Background()
	now := env.now

	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	item := env.item(t, owner, "Drone", true)

	env.pastBooking(t, item, booker, now.Add(-10*day), now.Add(-9*day), models.StatusApproved)
	last := env.pastBooking(t, item, booker, now.Add(-4*day), now.Add(-3*day), models.StatusApproved)
	env.pastBooking(t, item, booker, now.Add(-2*day), now.Add(-day), models.StatusRejected)
	next, err := env.bookings.CreateBooking(ctx, booker.ID, item.ID, now.Add(2*day), now.Add(3*day))
	require.NoError(t, err)
	later, err := env.bookings.CreateBooking(ctx, booker.ID, item.ID, now.Add(5*day), now.Add(6*day))
	require.NoError(t, err)
	waiting, err := env.bookings.CreateBooking(ctx, booker.ID, item.ID, now.Add(day), now.Add(2*day))
	require.NoError(t, err)

	for _, id := range []int64{next.ID, later.ID} {
		_, err := env.bookings.ApproveBooking(ctx, owner.ID, id, true)
		require.NoError(t, err)
	}

	view, err := env.items.GetItem(ctx, owner.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, view.LastBooking)
	require.NotNil(t, view.NextBooking)
	assert.Equal(t, last.ID, view.LastBooking.ID)
	assert.Equal(t, booker.ID, view.LastBooking.BookerID)
	assert.Equal(t, next.ID, view.NextBooking.ID)
	assert.NotEqual(t, waiting.ID, view.NextBooking.ID, "waiting bookings are not projected")

	other, err := env.items.GetItem(ctx, booker.ID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, other.LastBooking)
	assert.Nil(t, other.NextBooking)
	assert.Equal(t, "Drone", other.Name)

	_, err = env.items.GetItem(ctx, owner.ID, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetItem_CommentsNewestFirst(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	ctx := context.Background()

	owner := env.user(t, "owner")
	first := env.user(t, "first")
	second := env.user(t, "second")
	item := env.item(t, owner, "Hammock", true)
	env.pastBooking(t, item, first, env.now.Add(-3*day), env.now.Add(-2*day), models.StatusApproved)
	env.pastBooking(t, item, second, env.now.Add(-3*day), env.now.Add(-2*day), models.StatusApproved)

	_, err := env.comments.AddComment(ctx, first.ID, item.ID, "first!")
	require.NoError(t, err)
	env.comments.now = func() time.Time { return env.now.Add(time.Minute) }
	_, err = env.comments.AddComment(ctx, second.ID, item.ID, "second")
	require.NoError(t, err)

	view, err := env.items.GetItem(ctx, first.ID, item.ID)
	require.NoError(t, err)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, "second", view.Comments[0].Text)
	assert.Equal(t, "first", view.Comments[1].AuthorName)
}

func TestCreateAndUpdateItem(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	ctx := context.Background()

	owner := env.user(t, "owner")
	stranger := env.user(t, "stranger")

	_, err := env.items.CreateItem(ctx, 404, &models.Item{Name: "Orphan", Available: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	missing := int64(77)
	_, err = env.items.CreateItem(ctx, owner.ID, &models.Item{Name: "Answer", RequestID: &missing})
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	_, err = env.items.CreateItem(ctx, owner.ID, &models.Item{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	item := env.item(t, owner, "Saw", true)

	name := "Table saw"
	blank := " "
	unavailable := false
	updated, err := env.items.UpdateItem(ctx, owner.ID, item.ID, models.ItemPatch{
		Name:        &name,
		Description: &blank,
		Available:   &unavailable,
	})
	require.NoError(t, err)
	assert.Equal(t, "Table saw", updated.Name)
	assert.Equal(t, "Saw for rent", updated.Description)
	assert.False(t, updated.Available)

	_, err = env.items.UpdateItem(ctx, stranger.ID, item.ID, models.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.items.UpdateItem(ctx, owner.ID, 404, models.ItemPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// availability flag gates new bookings
	_, err = env.bookings.CreateBooking(ctx, stranger.ID, item.ID, env.now.Add(day), env.now.Add(2*day))
	assert.ErrorIs(t, err, domain.ErrItemUnavailable)
}

func TestOwnerItemsAndSearch(t *testing.T) {
	env := newTestEnv(t, config.BookingConfig{})
	ctx := context.Background()

	owner := env.user(t, "owner")
	other := env.user(t, "other")
	env.item(t, owner, "Blue kayak", true)
	env.item(t, owner, "Red kayak", false)
	env.item(t, other, "Paddle", true)

	views, err := env.items.GetOwnerItems(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	for _, v := range views {
		assert.NotNil(t, v.Comments)
	}

	_, err = env.items.GetOwnerItems(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, err := env.items.SearchItems(ctx, other.ID, "KAYAK")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Blue kayak", found[0].Name)

	found, err = env.items.SearchItems(ctx, other.ID, "  ")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}
