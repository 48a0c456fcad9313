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

var requestColumns = []interface{}{"id", "description", "requestor_id", "created"}

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	if request.Created.IsZero() {
		request.Created = time.Now()
	}
	request.Created = utc(request.Created)

	query, args, err := db.builder.Insert("item_requests").Rows(goqu.Record{
		"description":  request.Description,
		"requestor_id": request.RequestorID,
		"created":      request.Created,
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", translateConstraint(err, nil))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query, args, err := db.builder.From("item_requests").
		Select(requestColumns...).
		Where(goqu.Ex{"id": id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var r models.ItemRequest
	err = db.QueryRowContext(ctx, query, args...).Scan(&r.ID, &r.Description, &r.RequestorID, &r.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item request: %w", err)
	}
	return &r, nil
}

func (db *DB) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	return db.queryRequests(ctx, goqu.C("requestor_id").Eq(requestorID))
}

// GetRequestsExcept returns everyone else's requests, newest first.
func (db *DB) GetRequestsExcept(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	return db.queryRequests(ctx, goqu.C("requestor_id").Neq(requestorID))
}

func (db *DB) queryRequests(ctx context.Context, where exp.Expression) ([]*models.ItemRequest, error) {
	query, args, err := db.builder.From("item_requests").
		Select(requestColumns...).
		Where(where).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query item requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.ItemRequest, 0)
	for rows.Next() {
		var r models.ItemRequest
		if err := rows.Scan(&r.ID, &r.Description, &r.RequestorID, &r.Created); err != nil {
			return nil, fmt.Errorf("failed to scan item request: %w", err)
		}
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}
