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
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

// --- in-memory fakes ---

type fakeNegotiationStore struct {
	negotiations map[uuid.UUID]*models.Negotiation
	rounds       map[uuid.UUID][]models.OfferRound
	deals        []*models.Deal
	seq          int64
}

func newFakeNegotiationStore() *fakeNegotiationStore {
	return &fakeNegotiationStore{
		negotiations: make(map[uuid.UUID]*models.Negotiation),
		rounds:       make(map[uuid.UUID][]models.OfferRound),
	}
}

func (f *fakeNegotiationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Negotiation, error) {
	n, ok := f.negotiations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNegotiationStore) LatestRound(_ context.Context, negotiationID uuid.UUID) (*models.OfferRound, error) {
	rounds := f.rounds[negotiationID]
	if len(rounds) == 0 {
		return nil, pgx.ErrNoRows
	}
	cp := rounds[len(rounds)-1]
	return &cp, nil
}

func (f *fakeNegotiationStore) ListRounds(_ context.Context, negotiationID uuid.UUID) ([]models.OfferRound, error) {
	return append([]models.OfferRound(nil), f.rounds[negotiationID]...), nil
}

func (f *fakeNegotiationStore) Start(_ context.Context, n *models.Negotiation, round *models.OfferRound) error {
	for _, prev := range f.negotiations {
		if prev.ProductID == n.ProductID && prev.SellerID == n.SellerID &&
			prev.BuyerID == n.BuyerID && prev.Status == models.NegotiationStatusOpen {
			prev.Status = models.NegotiationStatusCanceled
		}
	}
	n.ID = uuid.New()
	n.Status = models.NegotiationStatusOpen
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	f.negotiations[n.ID] = &cp

	round.ID = uuid.New()
	round.NegotiationID = n.ID
	f.appendRound(round)
	return nil
}

func (f *fakeNegotiationStore) AppendRound(_ context.Context, round *models.OfferRound) error {
	n, ok := f.negotiations[round.NegotiationID]
	if !ok {
		return pgx.ErrNoRows
	}
	round.ID = uuid.New()
	f.appendRound(round)
	n.LastOfferPrice = round.Price
	n.UpdatedAt = time.Now()
	return nil
}

func (f *fakeNegotiationStore) appendRound(round *models.OfferRound) {
	f.seq++
	round.Seq = f.seq
	round.CreatedAt = time.Now()
	f.rounds[round.NegotiationID] = append(f.rounds[round.NegotiationID], *round)
}

func (f *fakeNegotiationStore) CloseIfOpen(_ context.Context, id uuid.UUID, status string) (*models.Negotiation, error) {
	n, ok := f.negotiations[id]
	if !ok || n.Status != models.NegotiationStatusOpen {
		return nil, pgx.ErrNoRows
	}
	n.Status = status
	n.UpdatedAt = time.Now()
	cp := *n
	return &cp, nil
}

func (f *fakeNegotiationStore) AcceptAndCreateDeal(_ context.Context, id uuid.UUID) (*models.Negotiation, *models.Deal, error) {
	n, ok := f.negotiations[id]
	if !ok || n.Status != models.NegotiationStatusOpen {
		return nil, nil, pgx.ErrNoRows
	}
	n.Status = models.NegotiationStatusAccepted
	n.UpdatedAt = time.Now()

	deal := &models.Deal{
		ID:          uuid.New(),
		ProductID:   n.ProductID,
		BuyerID:     n.BuyerID,
		SellerID:    n.SellerID,
		AgreedPrice: n.LastOfferPrice,
		Status:      models.DealStatusPending,
		CreatedAt:   time.Now(),
	}
	f.deals = append(f.deals, deal)

	cp := *n
	return &cp, deal, nil
}

func (f *fakeNegotiationStore) List(_ context.Context, _ repositories.NegotiationFilter) ([]models.NegotiationWithParties, error) {
	return nil, nil
}

func (f *fakeNegotiationStore) CountAsSeller(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, neg := range f.negotiations {
		if neg.SellerID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeNegotiationStore) CountAsBuyer(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, neg := range f.negotiations {
		if neg.BuyerID == userID {
			n++
		}
	}
	return n, nil
}

type fakeProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) GetActive(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := f.GetByID(context.Background(), id)
	if err != nil || !p.IsActive {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type fakeBlocks struct {
	pairs map[[2]uuid.UUID]bool
}

func (f *fakeBlocks) block(blocker, blocked uuid.UUID) {
	if f.pairs == nil {
		f.pairs = make(map[[2]uuid.UUID]bool)
	}
	f.pairs[[2]uuid.UUID{blocker, blocked}] = true
}

func (f *fakeBlocks) IsBlockedBetween(_ context.Context, a, b uuid.UUID) (bool, error) {
	return f.pairs[[2]uuid.UUID{a, b}] || f.pairs[[2]uuid.UUID{b, a}], nil
}

type fakeProfiles struct {
	byUser map[uuid.UUID]*models.UserProfile
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return f.byUser[userID], nil
}

type fakeUsers struct {
	byID map[uuid.UUID]*models.User
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

type fakeSink struct {
	events []models.AnalyticsEvent
}

func (f *fakeSink) Record(_ context.Context, e models.AnalyticsEvent) {
	f.events = append(f.events, e)
}

// --- fixture ---

type negFixture struct {
	svc      *NegotiationService
	store    *fakeNegotiationStore
	products *fakeProducts
	blocks   *fakeBlocks
	profiles *fakeProfiles
	sink     *fakeSink

	seller  uuid.UUID
	buyer   uuid.UUID
	other   uuid.UUID
	product uuid.UUID
}

func newNegFixture(t *testing.T) *negFixture {
	t.Helper()

	f := &negFixture{
		store:    newFakeNegotiationStore(),
		blocks:   &fakeBlocks{},
		profiles: &fakeProfiles{byUser: make(map[uuid.UUID]*models.UserProfile)},
		sink:     &fakeSink{},
		seller:   uuid.New(),
		buyer:    uuid.New(),
		other:    uuid.New(),
		product:  uuid.New(),
	}
	f.products = &fakeProducts{byID: map[uuid.UUID]*models.Product{
		f.product: {
			ID:            f.product,
			SellerID:      f.seller,
			Title:         "vintage amp",
			Price:         decimal.NewFromInt(200),
			MinOfferPrice: decimal.NewFromInt(120),
			IsActive:      true,
		},
	}}
	users := &fakeUsers{byID: map[uuid.UUID]*models.User{
		f.seller: {ID: f.seller, Username: "alice", Email: "alice@example.com"},
		f.buyer:  {ID: f.buyer, Username: "bob", Email: "bob@example.com"},
		f.other:  {ID: f.other, Username: "mallory", Email: "mallory@example.com"},
	}}
	f.svc = NewNegotiationService(f.store, f.products, f.blocks, f.profiles, users, f.sink, &fakePublisher{}, zap.NewNop())
	return f
}

func (f *negFixture) start(t *testing.T, price int64) *models.NegotiationDetail {
	t.Helper()
	det, err := f.svc.Start(context.Background(), f.buyer, f.product, decimal.NewFromInt(price), "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return det
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %q, got nil", code)
	}
	if got := apperr.CodeOf(err); got != code {
		t.Fatalf("expected code %q, got %q (%v)", code, got, err)
	}
}

// --- tests ---

func TestStartNegotiation(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()

	det, err := f.svc.Start(ctx, f.buyer, f.product, decimal.NewFromInt(150), "would you take 150?")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if det.Status != models.NegotiationStatusOpen {
		t.Errorf("status = %q, want open", det.Status)
	}
	if !det.LastOfferPrice.Equal(decimal.NewFromInt(150)) {
		t.Errorf("last offer price = %s, want 150", det.LastOfferPrice)
	}
	if len(det.Rounds) != 1 {
		t.Fatalf("rounds = %d, want 1", len(det.Rounds))
	}
	if det.Rounds[0].OfferedByID != f.buyer {
		t.Errorf("opening round not attributed to buyer")
	}
	if det.SellerUsername != "alice" || det.BuyerUsername != "bob" {
		t.Errorf("party usernames = %q/%q", det.SellerUsername, det.BuyerUsername)
	}
	if len(f.sink.events) != 1 || f.sink.events[0].EventType != models.EventOfferCreated {
		t.Errorf("expected one offer_created analytics event, got %+v", f.sink.events)
	}
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *negFixture)
		buyer    func(f *negFixture) uuid.UUID
		price    int64
		wantCode string
	}{
		{
			name:     "below minimum offer",
			price:    100,
			wantCode: apperr.CodeBelowMinimumOffer,
		},
		{
			name:  "exactly at minimum offer succeeds",
			price: 120,
		},
		{
			name:     "self negotiation",
			buyer:    func(f *negFixture) uuid.UUID { return f.seller },
			price:    150,
			wantCode: apperr.CodeSelfNegotiation,
		},
		{
			name:     "buyer blocked by seller",
			setup:    func(f *negFixture) { f.blocks.block(f.seller, f.buyer) },
			price:    150,
			wantCode: apperr.CodeBlocked,
		},
		{
			name:     "seller blocked by buyer",
			setup:    func(f *negFixture) { f.blocks.block(f.buyer, f.seller) },
			price:    150,
			wantCode: apperr.CodeBlocked,
		},
		{
			name:     "inactive product",
			setup:    func(f *negFixture) { f.products.byID[f.product].IsActive = false },
			price:    150,
			wantCode: apperr.CodeNotFound,
		},
		{
			name:     "negative price",
			price:    -1,
			wantCode: apperr.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newNegFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			buyer := f.buyer
			if tt.buyer != nil {
				buyer = tt.buyer(f)
			}
			_, err := f.svc.Start(context.Background(), buyer, f.product, decimal.NewFromInt(tt.price), "")
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("start: %v", err)
				}
				return
			}
			wantCode(t, err, tt.wantCode)
		})
	}
}

func TestStartSupersedesPriorOpen(t *testing.T) {
	f := newNegFixture(t)

	first := f.start(t, 150)
	second := f.start(t, 160)

	prev, err := f.store.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if prev.Status != models.NegotiationStatusCanceled {
		t.Errorf("first negotiation status = %q, want canceled", prev.Status)
	}
	if second.Status != models.NegotiationStatusOpen {
		t.Errorf("second negotiation status = %q, want open", second.Status)
	}
}

func TestOffer(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()
	det := f.start(t, 150)

	// Seller counters; the floor applies to counters too.
	_, err := f.svc.Offer(ctx, det.ID, f.seller, decimal.NewFromInt(100), "")
	wantCode(t, err, apperr.CodeBelowMinimumOffer)

	countered, err := f.svc.Offer(ctx, det.ID, f.seller, decimal.NewFromInt(180), "can do 180")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if !countered.LastOfferPrice.Equal(decimal.NewFromInt(180)) {
		t.Errorf("last offer price = %s, want 180", countered.LastOfferPrice)
	}
	if len(countered.Rounds) != 2 {
		t.Errorf("rounds = %d, want 2", len(countered.Rounds))
	}

	// Consecutive rounds from the same party are allowed.
	if _, err := f.svc.Offer(ctx, det.ID, f.seller, decimal.NewFromInt(170), ""); err != nil {
		t.Fatalf("second consecutive counter: %v", err)
	}

	_, err = f.svc.Offer(ctx, det.ID, f.other, decimal.NewFromInt(160), "")
	wantCode(t, err, apperr.CodeNotAParty)
}

func TestOfferOnClosedNegotiation(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()
	det := f.start(t, 150)

	if _, err := f.svc.Reject(ctx, det.ID, f.seller); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := f.svc.Offer(ctx, det.ID, f.buyer, decimal.NewFromInt(160), "")
	wantCode(t, err, apperr.CodeInvalidTransition)
}

func TestAcceptCreatesDeal(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()
	det := f.start(t, 150)

	// Buyer lowers to 140; seller accepts at the buyer's latest price.
	if _, err := f.svc.Offer(ctx, det.ID, f.buyer, decimal.NewFromInt(140), ""); err != nil {
		t.Fatalf("offer: %v", err)
	}

	res, err := f.svc.Accept(ctx, det.ID, f.seller)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if res.Negotiation.Status != models.NegotiationStatusAccepted {
		t.Errorf("negotiation status = %q, want accepted", res.Negotiation.Status)
	}
	if res.Deal == nil {
		t.Fatal("accept returned no deal")
	}
	if !res.Deal.AgreedPrice.Equal(decimal.NewFromInt(140)) {
		t.Errorf("agreed price = %s, want 140", res.Deal.AgreedPrice)
	}
	if res.Deal.Status != models.DealStatusPending {
		t.Errorf("deal status = %q, want pending", res.Deal.Status)
	}
	if len(f.store.deals) != 1 {
		t.Errorf("deals created = %d, want exactly 1", len(f.store.deals))
	}

	// No profiles configured: contact degrades to username + account email.
	if res.BuyerContact.FullName != "bob" || res.BuyerContact.Email != "bob@example.com" {
		t.Errorf("buyer contact fallback = %+v", res.BuyerContact)
	}
	if res.SellerContact.FullName != "alice" || res.SellerContact.Email != "alice@example.com" {
		t.Errorf("seller contact fallback = %+v", res.SellerContact)
	}
}

func TestAcceptUsesProfileWhenPresent(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()
	f.profiles.byUser[f.seller] = &models.UserProfile{
		UserID:   f.seller,
		FullName: "Alice Smith",
		Email:    "contact@alice.example.com",
		Phone:    "+1-555-0100",
		City:     "Portland",
	}
	det := f.start(t, 150)

	res, err := f.svc.Accept(ctx, det.ID, f.seller)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if res.SellerContact.FullName != "Alice Smith" || res.SellerContact.Phone != "+1-555-0100" {
		t.Errorf("seller contact = %+v, want profile data", res.SellerContact)
	}
}

func TestAcceptOwnOfferRejected(t *testing.T) {
	f := newNegFixture(t)
	det := f.start(t, 150)

	// The buyer made the latest offer, so the buyer may not accept it.
	_, err := f.svc.Accept(context.Background(), det.ID, f.buyer)
	wantCode(t, err, apperr.CodeInvalidTransition)
	if len(f.store.deals) != 0 {
		t.Errorf("deal created for a self-accept")
	}
}

func TestAcceptIsNotIdempotent(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()
	det := f.start(t, 150)

	if _, err := f.svc.Accept(ctx, det.ID, f.seller); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	_, err := f.svc.Accept(ctx, det.ID, f.seller)
	wantCode(t, err, apperr.CodeInvalidTransition)
	if len(f.store.deals) != 1 {
		t.Errorf("deals = %d, want exactly 1 after repeated accept", len(f.store.deals))
	}
}

func TestBlockAfterStartDoesNotFreezeNegotiation(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()
	det := f.start(t, 150)

	// Blocks gate only the start of new negotiations.
	f.blocks.block(f.seller, f.buyer)

	if _, err := f.svc.Offer(ctx, det.ID, f.seller, decimal.NewFromInt(160), ""); err != nil {
		t.Fatalf("offer after block: %v", err)
	}
	if _, err := f.svc.Accept(ctx, det.ID, f.buyer); err != nil {
		t.Fatalf("accept after block: %v", err)
	}
}

func TestRejectAndCancel(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()

	det := f.start(t, 150)
	rejected, err := f.svc.Reject(ctx, det.ID, f.seller)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.NegotiationStatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}

	// Terminal states admit no further transitions.
	_, err = f.svc.Cancel(ctx, det.ID, f.buyer)
	wantCode(t, err, apperr.CodeInvalidTransition)
	_, err = f.svc.Accept(ctx, det.ID, f.buyer)
	wantCode(t, err, apperr.CodeInvalidTransition)

	det2 := f.start(t, 150)
	canceled, err := f.svc.Cancel(ctx, det2.ID, f.buyer)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != models.NegotiationStatusCanceled {
		t.Errorf("status = %q, want canceled", canceled.Status)
	}
}

func TestGetRestrictedToParties(t *testing.T) {
	f := newNegFixture(t)
	ctx := context.Background()
	det := f.start(t, 150)

	if _, err := f.svc.Get(ctx, det.ID, f.buyer); err != nil {
		t.Fatalf("get as buyer: %v", err)
	}
	// Outsiders learn nothing, not even that the negotiation exists.
	_, err := f.svc.Get(ctx, det.ID, f.other)
	wantCode(t, err, apperr.CodeNotFound)
}
