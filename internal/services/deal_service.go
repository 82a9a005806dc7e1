package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/events"
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

// DealStore is the persistence surface of the status tracker.
type DealStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Deal, error)
	List(ctx context.Context, f repositories.DealFilter) ([]models.DealWithParties, error)
	CountAsSeller(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAsBuyer(ctx context.Context, userID uuid.UUID) (int64, error)
}

type DealService struct {
	store     DealStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewDealService(store DealStore, publisher events.Publisher, log *zap.Logger) *DealService {
	return &DealService{store: store, publisher: publisher, log: log}
}

// AdvanceStatus moves a deal to a new fulfillment status. Only the seller
// may do this; the new status is validated for membership only, not
// ordering (pending may jump straight to completed).
func (s *DealService) AdvanceStatus(ctx context.Context, dealID, actorID uuid.UUID, newStatus string) (*models.Deal, error) {
	deal, err := s.get(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.SellerID != actorID {
		return nil, apperr.New(apperr.CodeUnauthorized, "only the seller can update this deal")
	}
	if !models.CanSetDealStatus(newStatus) {
		return nil, apperr.Newf(apperr.CodeInvalidInput, "invalid status, must be one of: %s", strings.Join(models.DealStatuses, ", "))
	}

	oldStatus := deal.Status
	updated, err := s.store.UpdateStatus(ctx, dealID, newStatus)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to update deal status", err)
	}

	if err := s.publisher.Publish(ctx, "events:deal", events.Event{
		Type: events.EventDealStatusChanged,
		Payload: map[string]any{
			"deal_id":    updated.ID.String(),
			"old_status": oldStatus,
			"new_status": updated.Status,
		},
	}); err != nil {
		s.log.Warn("deal event publish failed", zap.Error(err))
	}

	return updated, nil
}

// Get returns a deal to one of its parties; outsiders get not-found.
func (s *DealService) Get(ctx context.Context, dealID, actorID uuid.UUID) (*models.Deal, error) {
	deal, err := s.get(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.SellerID != actorID && deal.BuyerID != actorID {
		return nil, apperr.New(apperr.CodeNotFound, "deal not found")
	}
	return deal, nil
}

func (s *DealService) List(ctx context.Context, f repositories.DealFilter) ([]models.DealWithParties, error) {
	return s.store.List(ctx, f)
}

func (s *DealService) CountAsSeller(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.CountAsSeller(ctx, userID)
}

func (s *DealService) CountAsBuyer(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.CountAsBuyer(ctx, userID)
}

func (s *DealService) get(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	deal, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "deal not found")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "deal lookup failed", err)
	}
	return deal, nil
}
