package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := utc(time.Now())
	status := booking.Status
	if status == "" {
		status = models.StatusWaiting
	}

	query, args, err := db.builder.Insert("bookings").Rows(goqu.Record{
		"start_at":   utc(booking.Start),
		"end_at":     utc(booking.End),
		"item_id":    booking.Item.ID,
		"booker_id":  booking.Booker.ID,
		"status":     string(status),
		"created_at": now,
		"updated_at": now,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", translateConstraint(err, nil))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.Status = status
	booking.Start = utc(booking.Start)
	booking.End = utc(booking.End)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

// bookingSelect joins the item and booker so every read carries both summaries.
func (db *DB) bookingSelect() *goqu.SelectDataset {
	return db.builder.From(goqu.T("bookings").As("b")).
		Join(goqu.T("items").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			"b.id", "b.start_at", "b.end_at", "b.status", "b.created_at", "b.updated_at",
			"i.id", "i.name", "i.owner_id",
			"u.id", "u.name",
		)
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var status string
	err := row.Scan(
		&b.ID, &b.Start, &b.End, &status, &b.CreatedAt, &b.UpdatedAt,
		&b.Item.ID, &b.Item.Name, &b.Item.OwnerID,
		&b.Booker.ID, &b.Booker.Name,
	)
	if err != nil {
		return nil, err
	}
	b.Status = models.BookingStatus(status)
	return &b, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := db.queryBooking(ctx, db.bookingSelect().Where(goqu.I("b.id").Eq(id)))
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

// UpdateBookingStatus moves a booking from one status to another in a single
// transaction. If the stored status is no longer from, nothing is written.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, from, to models.BookingStatus) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read booking status in tx: %w", err)
	}
	if models.BookingStatus(current) != from {
		return domain.Errorf(domain.ErrConflict, "booking %d status changed to %s concurrently", id, current)
	}

	query, args, err := db.builder.Update("bookings").
		Set(goqu.Record{"status": string(to), "updated_at": utc(time.Now())}).
		Where(goqu.Ex{"id": id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update booking status in tx: %w", err)
	}

	return tx.Commit()
}

// ListBookings returns the bookings of a booker or of an owner's items that fall
// into the filter's bucket at filter.Now, most recent start first.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	ds := db.bookingSelect()
	if filter.OwnerID != 0 {
		ds = ds.Where(goqu.I("i.owner_id").Eq(filter.OwnerID))
	} else {
		ds = ds.Where(goqu.I("b.booker_id").Eq(filter.BookerID))
	}
	if cond := bucketCondition(filter.State, utc(filter.Now)); cond != nil {
		ds = ds.Where(cond)
	}
	ds = ds.Order(goqu.I("b.start_at").Desc(), goqu.I("b.id").Desc())

	return db.queryBookings(ctx, ds)
}

func bucketCondition(state models.BookingState, now time.Time) exp.Expression {
	switch state {
	case models.StateCurrent:
		return goqu.And(goqu.I("b.start_at").Lte(now), goqu.I("b.end_at").Gte(now))
	case models.StatePast:
		return goqu.I("b.end_at").Lt(now)
	case models.StateFuture:
		return goqu.I("b.start_at").Gt(now)
	case models.StateWaiting:
		return goqu.I("b.status").Eq(string(models.StatusWaiting))
	case models.StateRejected:
		return goqu.I("b.status").Eq(string(models.StatusRejected))
	default:
		return nil
	}
}

// LastApprovedBooking returns the approved booking of the item that started
// before now with the latest end, or nil.
func (db *DB) LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.queryBooking(ctx, db.bookingSelect().
		Where(
			goqu.I("b.item_id").Eq(itemID),
			goqu.I("b.status").Eq(string(models.StatusApproved)),
			goqu.I("b.start_at").Lt(utc(now)),
		).
		Order(goqu.I("b.end_at").Desc(), goqu.I("b.id").Desc()).
		Limit(1))
}

// NextApprovedBooking returns the approved booking of the item with the
// earliest start after now, or nil.
func (db *DB) NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.queryBooking(ctx, db.bookingSelect().
		Where(
			goqu.I("b.item_id").Eq(itemID),
			goqu.I("b.status").Eq(string(models.StatusApproved)),
			goqu.I("b.start_at").Gt(utc(now)),
		).
		Order(goqu.I("b.start_at").Asc(), goqu.I("b.id").Asc()).
		Limit(1))
}

// HasCompletedBooking reports whether the booker has any booking of the item that ended before now.
func (db *DB) HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query, args, err := db.builder.From("bookings").
		Select(goqu.L("1")).
		Where(
			goqu.C("booker_id").Eq(bookerID),
			goqu.C("item_id").Eq(itemID),
			goqu.C("end_at").Lt(utc(now)),
		).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var one int
	err = db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check completed booking: %w", err)
	}
	return true, nil
}

func (db *DB) queryBooking(ctx context.Context, ds *goqu.SelectDataset) (*models.Booking, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	booking, err := scanBooking(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) queryBookings(ctx context.Context, ds *goqu.SelectDataset) ([]*models.Booking, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
