package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/events"
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

type fakeDealStore struct {
	deals map[uuid.UUID]*models.Deal
}

func (f *fakeDealStore) GetByID(_ context.Context, id uuid.UUID) (*models.Deal, error) {
	d, ok := f.deals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDealStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*models.Deal, error) {
	d, ok := f.deals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	cp := *d
	return &cp, nil
}

func (f *fakeDealStore) List(_ context.Context, _ repositories.DealFilter) ([]models.DealWithParties, error) {
	return nil, nil
}

func (f *fakeDealStore) CountAsSeller(_ context.Context, _ uuid.UUID) (int64, error) { return 0, nil }
func (f *fakeDealStore) CountAsBuyer(_ context.Context, _ uuid.UUID) (int64, error)  { return 0, nil }

type fakePublisher struct {
	published []events.Event
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, e events.Event) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, e)
	return nil
}

func newDealFixture() (*DealService, *fakeDealStore, *fakePublisher, *models.Deal) {
	deal := &models.Deal{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		BuyerID:     uuid.New(),
		SellerID:    uuid.New(),
		AgreedPrice: decimal.NewFromInt(140),
		Status:      models.DealStatusPending,
	}
	store := &fakeDealStore{deals: map[uuid.UUID]*models.Deal{deal.ID: deal}}
	pub := &fakePublisher{}
	return NewDealService(store, pub, zap.NewNop()), store, pub, deal
}

func TestAdvanceStatus(t *testing.T) {
	svc, _, pub, deal := newDealFixture()
	ctx := context.Background()

	updated, err := svc.AdvanceStatus(ctx, deal.ID, deal.SellerID, models.DealStatusPaid)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if updated.Status != models.DealStatusPaid {
		t.Errorf("status = %q, want paid", updated.Status)
	}
	if len(pub.published) != 1 || pub.published[0].Type != events.EventDealStatusChanged {
		t.Errorf("expected one deal_status_changed event, got %+v", pub.published)
	}
}

func TestAdvanceStatusSkipsIntermediateStates(t *testing.T) {
	svc, _, _, deal := newDealFixture()

	// Cash-in-person sales never go through paid or shipped.
	updated, err := svc.AdvanceStatus(context.Background(), deal.ID, deal.SellerID, models.DealStatusCompleted)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if updated.Status != models.DealStatusCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}
}

func TestAdvanceStatusSellerOnly(t *testing.T) {
	svc, _, _, deal := newDealFixture()

	_, err := svc.AdvanceStatus(context.Background(), deal.ID, deal.BuyerID, models.DealStatusPaid)
	wantCode(t, err, apperr.CodeUnauthorized)
}

func TestAdvanceStatusUnknownStatus(t *testing.T) {
	svc, _, _, deal := newDealFixture()

	_, err := svc.AdvanceStatus(context.Background(), deal.ID, deal.SellerID, "refunded")
	wantCode(t, err, apperr.CodeInvalidInput)
}

func TestAdvanceStatusPublishFailureIsNonFatal(t *testing.T) {
	svc, _, pub, deal := newDealFixture()
	pub.err = context.DeadlineExceeded

	updated, err := svc.AdvanceStatus(context.Background(), deal.ID, deal.SellerID, models.DealStatusPaid)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if updated.Status != models.DealStatusPaid {
		t.Errorf("status = %q, want paid despite publish failure", updated.Status)
	}
}

func TestDealGetRestrictedToParties(t *testing.T) {
	svc, _, _, deal := newDealFixture()
	ctx := context.Background()

	if _, err := svc.Get(ctx, deal.ID, deal.BuyerID); err != nil {
		t.Fatalf("get as buyer: %v", err)
	}
	_, err := svc.Get(ctx, deal.ID, uuid.New())
	wantCode(t, err, apperr.CodeNotFound)
}
