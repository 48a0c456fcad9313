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

type ItemService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewItemService(repo domain.Repository, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "item name must not be blank")
	}

	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		if _, err := s.repo.GetRequestByID(ctx, *item.RequestID); err != nil {
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// UpdateItem applies a partial update. Only the owner may change an item; blank
// names and descriptions are ignored.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, domain.ErrNotOwner
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.logger.Info().Int64("item_id", item.ID).Bool("available", item.Available).Msg("item updated")
	return item, nil
}

// GetItem builds the item view. Last and next approved bookings are attached only
// when the viewer owns the item.
func (s *ItemService) GetItem(ctx context.Context, userID, itemID int64) (*models.ItemView, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, item, userID, s.now().UTC())
}

// GetOwnerItems returns all items of the owner with their projections.
func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID int64) ([]*models.ItemView, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view, err := s.project(ctx, item, ownerID, now)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ItemService) project(ctx context.Context, item *models.Item, viewerID int64, now time.Time) (*models.ItemView, error) {
	view := models.NewItemView(item)

	if item.OwnerID == viewerID {
		last, err := s.repo.LastApprovedBooking(ctx, item.ID, now)
		if err != nil {
			return nil, fmt.Errorf("last booking of item %d: %w", item.ID, err)
		}
		next, err := s.repo.NextApprovedBooking(ctx, item.ID, now)
		if err != nil {
			return nil, fmt.Errorf("next booking of item %d: %w", item.ID, err)
		}
		view.LastBooking = models.NewBookingShort(last)
		view.NextBooking = models.NewBookingShort(next)
	}

	comments, err := s.repo.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("comments of item %d: %w", item.ID, err)
	}
	view.Comments = models.NewCommentViews(comments)

	return &view, nil
}

// SearchItems finds available items by name or description. Blank text matches nothing.
func (s *ItemService) SearchItems(ctx context.Context, userID int64, text string) ([]*models.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*models.Item{}, nil
	}
	items, err := s.repo.SearchItems(ctx, text)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int64("user_id", userID).Str("text", text).Int("found", len(items)).Msg("item search")
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}
