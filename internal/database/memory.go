package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// MemoryStore is a process-local entity store with the same semantics as DB.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[int64]models.User
	items    map[int64]models.Item
	bookings map[int64]models.Booking
	comments map[int64]models.Comment
	requests map[int64]models.ItemRequest
	nextID   map[string]int64
}

var _ domain.Repository = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]models.User),
		items:    make(map[int64]models.Item),
		bookings: make(map[int64]models.Booking),
		comments: make(map[int64]models.Comment),
		requests: make(map[int64]models.ItemRequest),
		nextID:   make(map[string]int64),
	}
}

func (m *MemoryStore) id(table string) int64 {
	m.nextID[table]++
	return m.nextID[table]
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) emailTaken(email string, except int64) bool {
	for _, u := range m.users {
		if u.ID != except && u.Email == email {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTaken(user.Email, 0) {
		return domain.ErrEmailTaken
	}
	now := utc(time.Now())
	user.ID = m.id("users")
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MemoryStore) GetAllUsers(_ context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if m.emailTaken(user.Email, user.ID) {
		return domain.ErrEmailTaken
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.UpdatedAt = utc(time.Now())
	m.users[user.ID] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	if m.userReferenced(id) {
		return domain.Errorf(domain.ErrConflict, "user %d is still referenced", id)
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) userReferenced(id int64) bool {
	for _, it := range m.items {
		if it.OwnerID == id {
			return true
		}
	}
	for _, b := range m.bookings {
		if b.Booker.ID == id {
			return true
		}
	}
	for _, c := range m.comments {
		if c.AuthorID == id {
			return true
		}
	}
	for _, r := range m.requests {
		if r.RequestorID == id {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateItem(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[item.OwnerID]; !ok {
		return domain.Errorf(domain.ErrConflict, "owner %d does not exist", item.OwnerID)
	}
	if item.RequestID != nil {
		if _, ok := m.requests[*item.RequestID]; !ok {
			return domain.Errorf(domain.ErrConflict, "request %d does not exist", *item.RequestID)
		}
	}
	now := utc(time.Now())
	item.ID = m.id("items")
	item.CreatedAt = now
	item.UpdatedAt = now
	m.items[item.ID] = *item
	return nil
}

func (m *MemoryStore) GetItemByID(_ context.Context, id int64) (*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &it, nil
}

func (m *MemoryStore) UpdateItem(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[item.ID]
	if !ok {
		return domain.ErrItemNotFound
	}
	stored.Name = item.Name
	stored.Description = item.Description
	stored.Available = item.Available
	stored.UpdatedAt = utc(time.Now())
	m.items[item.ID] = stored
	item.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryStore) filterItems(keep func(models.Item) bool) []*models.Item {
	items := make([]*models.Item, 0)
	for _, it := range m.items {
		if keep(it) {
			it := it
			items = append(items, &it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (m *MemoryStore) GetItemsByOwner(_ context.Context, ownerID int64) ([]*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filterItems(func(it models.Item) bool { return it.OwnerID == ownerID }), nil
}

func (m *MemoryStore) SearchItems(_ context.Context, text string) ([]*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(text)
	return m.filterItems(func(it models.Item) bool {
		return it.Available &&
			(strings.Contains(strings.ToLower(it.Name), needle) ||
				strings.Contains(strings.ToLower(it.Description), needle))
	}), nil
}

func (m *MemoryStore) GetItemsByRequests(_ context.Context, requestIDs []int64) ([]*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[int64]bool, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = true
	}
	return m.filterItems(func(it models.Item) bool {
		return it.RequestID != nil && wanted[*it.RequestID]
	}), nil
}

func (m *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[booking.Item.ID]; !ok {
		return domain.Errorf(domain.ErrConflict, "item %d does not exist", booking.Item.ID)
	}
	if _, ok := m.users[booking.Booker.ID]; !ok {
		return domain.Errorf(domain.ErrConflict, "booker %d does not exist", booking.Booker.ID)
	}
	if !booking.End.After(booking.Start) {
		return domain.ErrInvalidInterval
	}
	if booking.Status == "" {
		booking.Status = models.StatusWaiting
	}

	now := utc(time.Now())
	booking.ID = m.id("bookings")
	booking.Start = utc(booking.Start)
	booking.End = utc(booking.End)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	m.bookings[booking.ID] = *booking
	return nil
}

// resolve refreshes the denormalized item and booker summaries.
func (m *MemoryStore) resolve(b models.Booking) *models.Booking {
	if it, ok := m.items[b.Item.ID]; ok {
		b.Item = models.ItemRef{ID: it.ID, Name: it.Name, OwnerID: it.OwnerID}
	}
	if u, ok := m.users[b.Booker.ID]; ok {
		b.Booker = models.UserRef{ID: u.ID, Name: u.Name}
	}
	return &b
}

func (m *MemoryStore) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return m.resolve(b), nil
}

func (m *MemoryStore) UpdateBookingStatus(_ context.Context, id int64, from, to models.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if b.Status != from {
		return domain.Errorf(domain.ErrConflict, "booking %d status changed to %s concurrently", id, b.Status)
	}
	b.Status = to
	b.UpdatedAt = utc(time.Now())
	m.bookings[id] = b
	return nil
}

func (m *MemoryStore) selectBookings(keep func(*models.Booking) bool) []*models.Booking {
	out := make([]*models.Booking, 0)
	for _, b := range m.bookings {
		rb := m.resolve(b)
		if keep(rb) {
			out = append(out, rb)
		}
	}
	return out
}

func (m *MemoryStore) ListBookings(_ context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := utc(filter.Now)
	out := m.selectBookings(func(b *models.Booking) bool {
		if filter.OwnerID != 0 {
			if b.Item.OwnerID != filter.OwnerID {
				return false
			}
		} else if b.Booker.ID != filter.BookerID {
			return false
		}
		return b.Matches(filter.State, now)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID > out[j].ID
		}
		return out[i].Start.After(out[j].Start)
	})
	return out, nil
}

func (m *MemoryStore) LastApprovedBooking(_ context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last *models.Booking
	for _, b := range m.selectBookings(func(b *models.Booking) bool {
		return b.Item.ID == itemID && b.Status == models.StatusApproved && b.Start.Before(now)
	}) {
		if last == nil || b.End.After(last.End) || (b.End.Equal(last.End) && b.ID > last.ID) {
			last = b
		}
	}
	return last, nil
}

func (m *MemoryStore) NextApprovedBooking(_ context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var next *models.Booking
	for _, b := range m.selectBookings(func(b *models.Booking) bool {
		return b.Item.ID == itemID && b.Status == models.StatusApproved && b.Start.After(now)
	}) {
		if next == nil || b.Start.Before(next.Start) || (b.Start.Equal(next.Start) && b.ID < next.ID) {
			next = b
		}
	}
	return next, nil
}

func (m *MemoryStore) HasCompletedBooking(_ context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.bookings {
		if b.Booker.ID == bookerID && b.Item.ID == itemID && b.End.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[comment.ItemID]; !ok {
		return domain.Errorf(domain.ErrConflict, "item %d does not exist", comment.ItemID)
	}
	if _, ok := m.users[comment.AuthorID]; !ok {
		return domain.Errorf(domain.ErrConflict, "author %d does not exist", comment.AuthorID)
	}
	if comment.Created.IsZero() {
		comment.Created = time.Now()
	}
	comment.Created = utc(comment.Created)
	comment.ID = m.id("comments")
	m.comments[comment.ID] = *comment
	return nil
}

func (m *MemoryStore) GetCommentsByItem(_ context.Context, itemID int64) ([]*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Comment, 0)
	for _, c := range m.comments {
		if c.ItemID != itemID {
			continue
		}
		c := c
		if u, ok := m.users[c.AuthorID]; ok {
			c.AuthorName = u.Name
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID > out[j].ID
		}
		return out[i].Created.After(out[j].Created)
	})
	return out, nil
}

func (m *MemoryStore) CreateRequest(_ context.Context, request *models.ItemRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[request.RequestorID]; !ok {
		return domain.Errorf(domain.ErrConflict, "requestor %d does not exist", request.RequestorID)
	}
	if request.Created.IsZero() {
		request.Created = time.Now()
	}
	request.Created = utc(request.Created)
	request.ID = m.id("requests")
	m.requests[request.ID] = *request
	return nil
}

func (m *MemoryStore) GetRequestByID(_ context.Context, id int64) (*models.ItemRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return &r, nil
}

func (m *MemoryStore) filterRequests(keep func(models.ItemRequest) bool) []*models.ItemRequest {
	out := make([]*models.ItemRequest, 0)
	for _, r := range m.requests {
		if keep(r) {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID > out[j].ID
		}
		return out[i].Created.After(out[j].Created)
	})
	return out
}

func (m *MemoryStore) GetRequestsByRequestor(_ context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filterRequests(func(r models.ItemRequest) bool { return r.RequestorID == requestorID }), nil
}

func (m *MemoryStore) GetRequestsExcept(_ context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filterRequests(func(r models.ItemRequest) bool { return r.RequestorID != requestorID }), nil
}
