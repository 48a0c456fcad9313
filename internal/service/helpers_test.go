package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

// mockRepo overrides only what a test needs; anything else panics on the nil embedded interface.
type mockRepo struct {
	domain.Repository
	mock.Mock
}

func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockRepo) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, bookerID, itemID, now)
	return args.Bool(0), args.Error(1)
}

type testEnv struct {
	store    *database.MemoryStore
	now      time.Time
	bookings *BookingService
	comments *CommentService
	items    *ItemService
	users    *UserService
	requests *RequestService
	logger   *zerolog.Logger
}

func newTestEnv(t *testing.T, cfg config.BookingConfig) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := database.NewMemoryStore()
	now := time.Now().UTC().Truncate(time.Second)
	clock := func() time.Time { return now }

	env := &testEnv{
		store:    store,
		now:      now,
		bookings: NewBookingService(store, nil, cfg, &logger),
		comments: NewCommentService(store, nil, &logger),
		items:    NewItemService(store, &logger),
		users:    NewUserService(store, &logger),
		requests: NewRequestService(store, &logger),
		logger:   &logger,
	}
	env.bookings.now = clock
	env.comments.now = clock
	env.items.now = clock
	env.requests.now = clock
	return env
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &models.User{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) item(t *testing.T, owner *models.User, name string, available bool) *models.Item {
	t.Helper()
	it, err := e.items.CreateItem(context.Background(), owner.ID, &models.Item{
		Name:        name,
		Description: name + " for rent",
		Available:   available,
	})
	require.NoError(t, err)
	return it
}

// pastBooking stores a booking directly, bypassing the future-start rule.
func (e *testEnv) pastBooking(t *testing.T, item *models.Item, booker *models.User, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		Start:  start,
		End:    end,
		Status: status,
		Item:   models.ItemRef{ID: item.ID},
		Booker: models.UserRef{ID: booker.ID},
	}
	require.NoError(t, e.store.CreateBooking(context.Background(), b))
	return b
}

const day = 24 * time.Hour
