package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// RequestService handles requests for items nobody has listed yet.
type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, requestorID int64, description string) (*models.ItemRequestView, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "request description must not be blank")
	}
	if _, err := s.repo.GetUserByID(ctx, requestorID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		Description: description,
		RequestorID: requestorID,
		Created:     s.now().UTC(),
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("create item request: %w", err)
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requestor_id", requestorID).Msg("item request created")
	view := models.NewItemRequestView(request, nil)
	return &view, nil
}

func (s *RequestService) GetOwnRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequestView, error) {
	if _, err := s.repo.GetUserByID(ctx, requestorID); err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	return s.withAnswers(ctx, requests)
}

// GetOtherRequests lists everyone else's requests, newest first.
func (s *RequestService) GetOtherRequests(ctx context.Context, userID int64) ([]*models.ItemRequestView, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.repo.GetRequestsExcept(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withAnswers(ctx, requests)
}

func (s *RequestService) GetRequest(ctx context.Context, userID, requestID int64) (*models.ItemRequestView, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	views, err := s.withAnswers(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// withAnswers attaches the items created in reply to each request.
func (s *RequestService) withAnswers(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestView, error) {
	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}

	items, err := s.repo.GetItemsByRequests(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("answers for item requests: %w", err)
	}
	byRequest := make(map[int64][]*models.Item, len(requests))
	for _, it := range items {
		if it.RequestID != nil {
			byRequest[*it.RequestID] = append(byRequest[*it.RequestID], it)
		}
	}

	views := make([]*models.ItemRequestView, 0, len(requests))
	for _, r := range requests {
		view := models.NewItemRequestView(r, byRequest[r.ID])
		views = append(views, &view)
	}
	return views, nil
}
