package models

import (
	"fmt"
	"strings"
)

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

// validTransitions lists the statuses reachable from each status.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusWaiting:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
	StatusCanceled: {},
}

// IsValid reports whether s is a known status.
func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status table allows s -> target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// BookingState is the bucket used to filter booking listings.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var knownStates = map[BookingState]struct{}{
	StateAll:      {},
	StateCurrent:  {},
	StatePast:     {},
	StateFuture:   {},
	StateWaiting:  {},
	StateRejected: {},
}

// ParseBookingState parses a bucket token case-insensitively. An empty token means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return StateAll, nil
	}
	state := BookingState(token)
	if _, ok := knownStates[state]; !ok {
		return "", fmt.Errorf("unknown state: %s", raw)
	}
	return state, nil
}

// Role selects which side of a booking a listing is computed for.
type Role string

const (
	RoleBooker Role = "BOOKER"
	RoleOwner  Role = "OWNER"
)

// ParseRole parses a role token case-insensitively. An empty token means BOOKER.
func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(RoleBooker):
		return RoleBooker, nil
	case string(RoleOwner):
		return RoleOwner, nil
	default:
		return "", fmt.Errorf("unknown role: %s", raw)
	}
}

const (
	// HeaderSharerUserID carries the caller identity on every API request.
	HeaderSharerUserID = "X-Sharer-User-Id"

	// WireTimeLayout is the timestamp layout used by API clients.
	WireTimeLayout = "2006-01-02T15:04:05"

	// DefaultQuotaWindow окно квоты на изменяющие запросы, в секундах
	DefaultQuotaWindow = 60

	// DefaultQuotaRequests количество изменяющих запросов в окне
	DefaultQuotaRequests = 30
)
