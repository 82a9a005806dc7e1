package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/events"
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

// Collaborator interfaces consumed by the negotiation engine. The engine
// owns none of this data; it only needs these narrow read surfaces plus the
// fire-and-forget analytics sink.
type ProductLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type BlockChecker interface {
	IsBlockedBetween(ctx context.Context, a, b uuid.UUID) (bool, error)
}

type ProfileLookup interface {
	// GetByUserID returns (nil, nil) when the user has no profile.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AnalyticsSink records an event best-effort. Implementations must swallow
// their own failures; a dead sink never aborts a negotiation transition.
type AnalyticsSink interface {
	Record(ctx context.Context, e models.AnalyticsEvent)
}

// NegotiationStore is the persistence surface of the engine. Start and
// AcceptAndCreateDeal are atomic units; CloseIfOpen and AcceptAndCreateDeal
// are compare-and-set transitions returning pgx.ErrNoRows when the
// negotiation is missing or no longer open.
type NegotiationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Negotiation, error)
	LatestRound(ctx context.Context, negotiationID uuid.UUID) (*models.OfferRound, error)
	ListRounds(ctx context.Context, negotiationID uuid.UUID) ([]models.OfferRound, error)
	Start(ctx context.Context, n *models.Negotiation, round *models.OfferRound) error
	AppendRound(ctx context.Context, round *models.OfferRound) error
	CloseIfOpen(ctx context.Context, id uuid.UUID, status string) (*models.Negotiation, error)
	AcceptAndCreateDeal(ctx context.Context, id uuid.UUID) (*models.Negotiation, *models.Deal, error)
	List(ctx context.Context, f repositories.NegotiationFilter) ([]models.NegotiationWithParties, error)
	CountAsSeller(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAsBuyer(ctx context.Context, userID uuid.UUID) (int64, error)
}

type NegotiationService struct {
	store     NegotiationStore
	products  ProductLookup
	blocks    BlockChecker
	profiles  ProfileLookup
	users     UserLookup
	analytics AnalyticsSink
	publisher events.Publisher
	log       *zap.Logger
}

func NewNegotiationService(
	store NegotiationStore,
	products ProductLookup,
	blocks BlockChecker,
	profiles ProfileLookup,
	users UserLookup,
	analytics AnalyticsSink,
	publisher events.Publisher,
	log *zap.Logger,
) *NegotiationService {
	return &NegotiationService{
		store:     store,
		products:  products,
		blocks:    blocks,
		profiles:  profiles,
		users:     users,
		analytics: analytics,
		publisher: publisher,
		log:       log,
	}
}

// publish fires a lifecycle event on the negotiation stream. Delivery is
// best-effort; the state transition has already committed.
func (s *NegotiationService) publish(ctx context.Context, stream, eventType string, payload map[string]any) {
	if err := s.publisher.Publish(ctx, stream, events.Event{Type: eventType, Payload: payload}); err != nil {
		s.log.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}

// AcceptResult carries everything the accept response discloses. The
// contact payloads exist only here; no other read path may expose them.
type AcceptResult struct {
	Negotiation   *models.NegotiationDetail `json:"negotiation"`
	Deal          *models.Deal              `json:"deal"`
	BuyerContact  models.ContactPayload     `json:"buyer_contact"`
	SellerContact models.ContactPayload     `json:"seller_contact"`
}

// validateMinOffer enforces the seller's price floor. A zero floor means
// the product accepts any non-negative offer.
func validateMinOffer(product *models.Product, price decimal.Decimal) error {
	if product.MinOfferPrice.IsPositive() && price.LessThan(product.MinOfferPrice) {
		return apperr.Newf(apperr.CodeBelowMinimumOffer, "minimum offer is %s", product.MinOfferPrice.StringFixed(2))
	}
	return nil
}

// Start opens a negotiation on an active product. Any prior open
// negotiation for the same (product, seller, buyer) triple is superseded in
// the same transaction that creates the new one.
func (s *NegotiationService) Start(ctx context.Context, buyerID, productID uuid.UUID, price decimal.Decimal, message string) (*models.NegotiationDetail, error) {
	if price.IsNegative() {
		return nil, apperr.New(apperr.CodeInvalidInput, "price must be non-negative")
	}

	product, err := s.products.GetActive(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "product lookup failed", err)
	}

	if product.SellerID == buyerID {
		return nil, apperr.New(apperr.CodeSelfNegotiation, "you can't negotiate on your own product")
	}

	if err := validateMinOffer(product, price); err != nil {
		return nil, err
	}

	blocked, err := s.blocks.IsBlockedBetween(ctx, buyerID, product.SellerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "block check failed", err)
	}
	if blocked {
		return nil, apperr.New(apperr.CodeBlocked, "you cannot negotiate with this user")
	}

	n := &models.Negotiation{
		ProductID:      product.ID,
		SellerID:       product.SellerID,
		BuyerID:        buyerID,
		LastOfferPrice: price,
	}
	round := &models.OfferRound{
		OfferedByID: buyerID,
		Price:       price,
		Message:     message,
	}
	if err := s.store.Start(ctx, n, round); err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to start negotiation", err)
	}

	s.analytics.Record(ctx, models.AnalyticsEvent{
		EventType:     models.EventOfferCreated,
		UserID:        &buyerID,
		ProductID:     &product.ID,
		NegotiationID: &n.ID,
		Extra:         map[string]any{"role": "buyer"},
	})
	s.publish(ctx, "events:negotiation", events.EventNegotiationStarted, map[string]any{
		"negotiation_id": n.ID.String(),
		"product_id":     product.ID.String(),
	})

	return s.detail(ctx, n)
}

// Offer appends a counter-offer round. Consecutive rounds from the same
// party are allowed.
func (s *NegotiationService) Offer(ctx context.Context, negotiationID, actorID uuid.UUID, price decimal.Decimal, message string) (*models.NegotiationDetail, error) {
	if price.IsNegative() {
		return nil, apperr.New(apperr.CodeInvalidInput, "price must be non-negative")
	}

	n, err := s.getNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if !n.IsParty(actorID) {
		return nil, apperr.New(apperr.CodeNotAParty, "not a party to this negotiation")
	}
	if n.Status != models.NegotiationStatusOpen {
		return nil, apperr.New(apperr.CodeInvalidTransition, "negotiation is not open")
	}

	// Validate against the negotiation's product; the listing may have gone
	// inactive mid-negotiation but its floor still applies.
	product, err := s.products.GetByID(ctx, n.ProductID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "product lookup failed", err)
	}
	if err := validateMinOffer(product, price); err != nil {
		return nil, err
	}

	round := &models.OfferRound{
		NegotiationID: n.ID,
		OfferedByID:   actorID,
		Price:         price,
		Message:       message,
	}
	if err := s.store.AppendRound(ctx, round); err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to record offer", err)
	}
	n.LastOfferPrice = price

	s.analytics.Record(ctx, models.AnalyticsEvent{
		EventType:     models.EventOfferCreated,
		UserID:        &actorID,
		ProductID:     &n.ProductID,
		NegotiationID: &n.ID,
	})
	s.publish(ctx, "events:negotiation", events.EventOfferPlaced, map[string]any{
		"negotiation_id": n.ID.String(),
		"price":          price.StringFixed(2),
	})

	return s.detail(ctx, n)
}

// Accept closes the negotiation and creates the deal in one atomic unit.
// Only the counter-party of the most recent round may accept. Racing
// accepts resolve to exactly one deal; the loser gets invalid_transition.
func (s *NegotiationService) Accept(ctx context.Context, negotiationID, actorID uuid.UUID) (*AcceptResult, error) {
	n, err := s.getNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if !n.IsParty(actorID) {
		return nil, apperr.New(apperr.CodeNotAParty, "not a party to this negotiation")
	}
	if n.Status != models.NegotiationStatusOpen {
		return nil, apperr.New(apperr.CodeInvalidTransition, "negotiation is not open")
	}

	last, err := s.store.LatestRound(ctx, negotiationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeInvalidTransition, "no offers to accept")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to load latest offer", err)
	}
	if last.OfferedByID == actorID {
		return nil, apperr.New(apperr.CodeInvalidTransition, "counter-party must accept the latest offer")
	}

	accepted, deal, err := s.store.AcceptAndCreateDeal(ctx, negotiationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race: someone else closed it between our read and the CAS.
			return nil, apperr.New(apperr.CodeInvalidTransition, "negotiation is not open")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to accept negotiation", err)
	}

	s.analytics.Record(ctx, models.AnalyticsEvent{
		EventType:     models.EventOfferAccepted,
		UserID:        &actorID,
		ProductID:     &accepted.ProductID,
		NegotiationID: &accepted.ID,
	})
	s.publish(ctx, "events:deal", events.EventDealCreated, map[string]any{
		"deal_id":        deal.ID.String(),
		"negotiation_id": accepted.ID.String(),
		"agreed_price":   deal.AgreedPrice.StringFixed(2),
	})

	buyerContact, err := s.contactFor(ctx, accepted.BuyerID)
	if err != nil {
		return nil, err
	}
	sellerContact, err := s.contactFor(ctx, accepted.SellerID)
	if err != nil {
		return nil, err
	}

	det, err := s.detail(ctx, accepted)
	if err != nil {
		return nil, err
	}

	return &AcceptResult{
		Negotiation:   det,
		Deal:          deal,
		BuyerContact:  buyerContact,
		SellerContact: sellerContact,
	}, nil
}

// Reject closes an open negotiation. Either party may reject.
func (s *NegotiationService) Reject(ctx context.Context, negotiationID, actorID uuid.UUID) (*models.NegotiationDetail, error) {
	return s.close(ctx, negotiationID, actorID, models.NegotiationStatusRejected)
}

// Cancel withdraws an open negotiation. Either party may cancel; a
// negotiation already terminal stays unchanged and the call fails.
func (s *NegotiationService) Cancel(ctx context.Context, negotiationID, actorID uuid.UUID) (*models.NegotiationDetail, error) {
	return s.close(ctx, negotiationID, actorID, models.NegotiationStatusCanceled)
}

func (s *NegotiationService) close(ctx context.Context, negotiationID, actorID uuid.UUID, status string) (*models.NegotiationDetail, error) {
	n, err := s.getNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if !n.IsParty(actorID) {
		return nil, apperr.New(apperr.CodeNotAParty, "not a party to this negotiation")
	}
	if n.Status != models.NegotiationStatusOpen {
		return nil, apperr.New(apperr.CodeInvalidTransition, "negotiation is not open")
	}

	closed, err := s.store.CloseIfOpen(ctx, negotiationID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeInvalidTransition, "negotiation is not open")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to close negotiation", err)
	}

	s.publish(ctx, "events:negotiation", events.EventNegotiationClosed, map[string]any{
		"negotiation_id": closed.ID.String(),
		"status":         closed.Status,
	})
	return s.detail(ctx, closed)
}

// Get returns the full negotiation view for one of its parties. Outsiders
// get not-found rather than a hint the negotiation exists.
func (s *NegotiationService) Get(ctx context.Context, negotiationID, actorID uuid.UUID) (*models.NegotiationDetail, error) {
	n, err := s.getNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if !n.IsParty(actorID) {
		return nil, apperr.New(apperr.CodeNotFound, "negotiation not found")
	}
	return s.detail(ctx, n)
}

func (s *NegotiationService) List(ctx context.Context, f repositories.NegotiationFilter) ([]models.NegotiationWithParties, error) {
	return s.store.List(ctx, f)
}

func (s *NegotiationService) CountAsSeller(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.CountAsSeller(ctx, userID)
}

func (s *NegotiationService) CountAsBuyer(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.CountAsBuyer(ctx, userID)
}

// --- helpers ---

func (s *NegotiationService) getNegotiation(ctx context.Context, id uuid.UUID) (*models.Negotiation, error) {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "negotiation not found")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "negotiation lookup failed", err)
	}
	return n, nil
}

func (s *NegotiationService) detail(ctx context.Context, n *models.Negotiation) (*models.NegotiationDetail, error) {
	seller, err := s.users.GetByID(ctx, n.SellerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "seller lookup failed", err)
	}
	buyer, err := s.users.GetByID(ctx, n.BuyerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "buyer lookup failed", err)
	}
	rounds, err := s.store.ListRounds(ctx, n.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to load rounds", err)
	}

	return &models.NegotiationDetail{
		NegotiationWithParties: models.NegotiationWithParties{
			Negotiation:    *n,
			SellerUsername: seller.Username,
			BuyerUsername:  buyer.Username,
		},
		Rounds: rounds,
	}, nil
}

// contactFor assembles a party's disclosure: the full profile when one
// exists, otherwise display name and account email only.
func (s *NegotiationService) contactFor(ctx context.Context, userID uuid.UUID) (models.ContactPayload, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return models.ContactPayload{}, apperr.Wrap(apperr.CodeStorage, "profile lookup failed", err)
	}
	if profile != nil {
		return profile.Contact(), nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.ContactPayload{}, apperr.Wrap(apperr.CodeStorage, "user lookup failed", err)
	}
	return models.ContactPayload{
		FullName: user.Username,
		Email:    user.Email,
	}, nil
}
