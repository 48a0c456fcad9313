package models

import "time"

type Booking struct {
	ID        int64         `json:"id"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Status    BookingStatus `json:"status"`
	Item      ItemRef       `json:"item"`
	Booker    UserRef       `json:"booker"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsCurrent reports start <= now <= end.
func (b *Booking) IsCurrent(now time.Time) bool {
	return !b.Start.After(now) && !b.End.Before(now)
}

// IsPast reports end < now.
func (b *Booking) IsPast(now time.Time) bool {
	return b.End.Before(now)
}

// IsFuture reports start > now.
func (b *Booking) IsFuture(now time.Time) bool {
	return b.Start.After(now)
}

// Matches reports whether the booking belongs to the given bucket at instant now.
func (b *Booking) Matches(state BookingState, now time.Time) bool {
	switch state {
	case StateCurrent:
		return b.IsCurrent(now)
	case StatePast:
		return b.IsPast(now)
	case StateFuture:
		return b.IsFuture(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	default:
		return true
	}
}

// BookingFilter selects bookings for a listing. Exactly one of BookerID or OwnerID is set.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    BookingState
	Now      time.Time
}
