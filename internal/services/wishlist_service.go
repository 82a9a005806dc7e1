package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

type WishlistService struct {
	wishlist *repositories.WishlistRepo
	products ProductLookup
	sink     AnalyticsSink
}

func NewWishlistService(wishlist *repositories.WishlistRepo, products ProductLookup, sink AnalyticsSink) *WishlistService {
	return &WishlistService{wishlist: wishlist, products: products, sink: sink}
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID, meta RequestMeta) (*models.WishlistItem, error) {
	p, err := s.products.GetActive(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "product lookup failed", err)
	}

	item, err := s.wishlist.Add(ctx, userID, productID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to add wishlist item", err)
	}

	e := models.AnalyticsEvent{
		EventType: models.EventWishlistAdd,
		UserID:    &userID,
		ProductID: &p.ID,
	}
	meta.apply(&e)
	s.sink.Record(ctx, e)

	return item, nil
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItemWithProduct, error) {
	items, err := s.wishlist.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to list wishlist", err)
	}
	return items, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	n, err := s.wishlist.Remove(ctx, userID, productID)
	if err != nil {
		return apperr.Wrap(apperr.CodeStorage, "failed to remove wishlist item", err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeNotFound, "wishlist item not found")
	}
	return nil
}
