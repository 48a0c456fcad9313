package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	// strict rejects approve/reject of a booking that has already left WAITING.
	strict bool
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, cfg config.BookingConfig, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		strict:   cfg.StrictTransitions,
		logger:   logger,
		now:      time.Now,
	}
}

// ValidateInterval checks a requested booking period against the current time.
func ValidateInterval(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domain.Errorf(domain.ErrInvalidArgument, "booking start and end are required")
	}
	if !end.After(start) {
		return domain.ErrInvalidInterval
	}
	// end > start, so a future start implies a future end
	if !start.After(now) {
		return domain.ErrStartInPast
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if err := ValidateInterval(start, end, s.now()); err != nil {
		return nil, err
	}

	booker, err := s.repo.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == booker.ID {
		return nil, domain.ErrOwnItemBooking
	}
	if !item.Available {
		return nil, domain.ErrItemUnavailable
	}

	booking := &models.Booking{
		Start:  start.UTC(),
		End:    end.UTC(),
		Status: models.StatusWaiting,
		Item:   models.ItemRef{ID: item.ID, Name: item.Name, OwnerID: item.OwnerID},
		Booker: models.UserRef{ID: booker.ID, Name: booker.Name},
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", booker.ID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, "", booker.ID)

	return booking, nil
}

// ApproveBooking lets the item owner approve or reject a booking.
func (s *BookingService) ApproveBooking(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Item.OwnerID != ownerID {
		return nil, domain.ErrNotOwner
	}

	target := models.StatusRejected
	if approved {
		target = models.StatusApproved
	}

	previous := booking.Status
	if s.strict && !previous.CanTransitionTo(target) {
		return nil, fmt.Errorf("booking %d is %s: %w", booking.ID, previous, domain.ErrAlreadyDecided)
	}

	if err := s.repo.UpdateBookingStatus(ctx, booking.ID, previous, target); err != nil {
		return nil, err
	}
	booking.Status = target

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("from", string(previous)).
		Str("to", string(target)).
		Msg("booking decided")

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, booking, previous, ownerID)

	return booking, nil
}

// GetBooking returns a booking to its booker or to the owner of the booked item.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Booker.ID != userID && booking.Item.OwnerID != userID {
		return nil, domain.ErrNotParticipant
	}
	return booking, nil
}

// ListBookings returns the user's bookings (role BOOKER) or the bookings of the
// user's items (role OWNER) in the given bucket, most recent start first.
func (s *BookingService) ListBookings(ctx context.Context, userID int64, role models.Role, state string) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	bucket, err := models.ParseBookingState(state)
	if err != nil {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "Unknown state: %s", state)
	}

	filter := models.BookingFilter{State: bucket, Now: s.now().UTC()}
	switch role {
	case models.RoleOwner:
		filter.OwnerID = userID
	case models.RoleBooker, "":
		filter.BookerID = userID
	default:
		return nil, domain.Errorf(domain.ErrInvalidArgument, "unknown role: %s", role)
	}

	return s.repo.ListBookings(ctx, filter)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, previous models.BookingStatus, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:      booking.ID,
		BookerID:       booking.Booker.ID,
		BookerName:     booking.Booker.Name,
		ItemID:         booking.Item.ID,
		ItemName:       booking.Item.Name,
		OwnerID:        booking.Item.OwnerID,
		Status:         string(booking.Status),
		Start:          booking.Start,
		End:            booking.End,
		PreviousStatus: string(previous),
		ChangedByID:    changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
