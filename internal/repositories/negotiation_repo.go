package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peermarket/backend/internal/models"
)

type NegotiationRepo struct {
	pool *pgxpool.Pool
}

func NewNegotiationRepo(pool *pgxpool.Pool) *NegotiationRepo {
	return &NegotiationRepo{pool: pool}
}

const negotiationColumns = `id, product_id, seller_id, buyer_id, status, last_offer_price, created_at, updated_at`

func scanNegotiation(row pgx.Row) (*models.Negotiation, error) {
	var n models.Negotiation
	err := row.Scan(&n.ID, &n.ProductID, &n.SellerID, &n.BuyerID, &n.Status, &n.LastOfferPrice, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NegotiationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Negotiation, error) {
	return scanNegotiation(r.pool.QueryRow(ctx, `
		SELECT `+negotiationColumns+` FROM negotiations WHERE id = $1
	`, id))
}

// Start supersedes any prior open negotiation for the (product, seller,
// buyer) triple and creates the new negotiation plus its first round, all in
// one transaction. Partial application is impossible: either the old row is
// canceled AND the new pair of rows exists, or nothing changed.
func (r *NegotiationRepo) Start(ctx context.Context, n *models.Negotiation, round *models.OfferRound) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE negotiations SET status = $1, updated_at = now()
		WHERE product_id = $2 AND seller_id = $3 AND buyer_id = $4 AND status = $5
	`, models.NegotiationStatusCanceled, n.ProductID, n.SellerID, n.BuyerID, models.NegotiationStatusOpen)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO negotiations (product_id, seller_id, buyer_id, status, last_offer_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, n.ProductID, n.SellerID, n.BuyerID, models.NegotiationStatusOpen, n.LastOfferPrice,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return err
	}
	n.Status = models.NegotiationStatusOpen

	round.NegotiationID = n.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO offer_rounds (negotiation_id, offered_by, price, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, seq, created_at
	`, round.NegotiationID, round.OfferedByID, round.Price, round.Message,
	).Scan(&round.ID, &round.Seq, &round.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AppendRound inserts a round and refreshes the negotiation's denormalized
// last_offer_price in the same transaction, so the cache can never drift
// from the round history.
func (r *NegotiationRepo) AppendRound(ctx context.Context, round *models.OfferRound) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO offer_rounds (negotiation_id, offered_by, price, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, seq, created_at
	`, round.NegotiationID, round.OfferedByID, round.Price, round.Message,
	).Scan(&round.ID, &round.Seq, &round.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE negotiations SET last_offer_price = $1, updated_at = now() WHERE id = $2
	`, round.Price, round.NegotiationID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CloseIfOpen is a compare-and-set transition out of the open state.
// Returns pgx.ErrNoRows when the negotiation is missing or already terminal,
// so racing closers observe exactly one success.
func (r *NegotiationRepo) CloseIfOpen(ctx context.Context, id uuid.UUID, status string) (*models.Negotiation, error) {
	return scanNegotiation(r.pool.QueryRow(ctx, `
		UPDATE negotiations SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING `+negotiationColumns+`
	`, status, id, models.NegotiationStatusOpen))
}

// AcceptAndCreateDeal performs the accept transition and deal creation as
// one atomic unit: the negotiation flips to accepted via CAS and the deal is
// inserted in the same transaction. A second accept racing in sees
// pgx.ErrNoRows and no second deal can exist.
func (r *NegotiationRepo) AcceptAndCreateDeal(ctx context.Context, id uuid.UUID) (*models.Negotiation, *models.Deal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	n, err := scanNegotiation(tx.QueryRow(ctx, `
		UPDATE negotiations SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING `+negotiationColumns+`
	`, models.NegotiationStatusAccepted, id, models.NegotiationStatusOpen))
	if err != nil {
		return nil, nil, err
	}

	d := &models.Deal{
		ProductID:   n.ProductID,
		BuyerID:     n.BuyerID,
		SellerID:    n.SellerID,
		AgreedPrice: n.LastOfferPrice,
		Status:      models.DealStatusPending,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO deals (product_id, buyer_id, seller_id, agreed_price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, d.ProductID, d.BuyerID, d.SellerID, d.AgreedPrice, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return n, d, nil
}

// LatestRound returns the authoritative "current offer": newest created_at,
// seq breaking sub-timestamp ties.
func (r *NegotiationRepo) LatestRound(ctx context.Context, negotiationID uuid.UUID) (*models.OfferRound, error) {
	var o models.OfferRound
	err := r.pool.QueryRow(ctx, `
		SELECT id, seq, negotiation_id, offered_by, price, message, created_at
		FROM offer_rounds WHERE negotiation_id = $1
		ORDER BY created_at DESC, seq DESC LIMIT 1
	`, negotiationID).Scan(&o.ID, &o.Seq, &o.NegotiationID, &o.OfferedByID, &o.Price, &o.Message, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *NegotiationRepo) ListRounds(ctx context.Context, negotiationID uuid.UUID) ([]models.OfferRound, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.seq, o.negotiation_id, o.offered_by, u.username, o.price, o.message, o.created_at
		FROM offer_rounds o
		JOIN users u ON u.id = o.offered_by
		WHERE o.negotiation_id = $1
		ORDER BY o.created_at ASC, o.seq ASC
	`, negotiationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []models.OfferRound
	for rows.Next() {
		var o models.OfferRound
		if err := rows.Scan(&o.ID, &o.Seq, &o.NegotiationID, &o.OfferedByID, &o.OfferedByUsername, &o.Price, &o.Message, &o.CreatedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, o)
	}
	return rounds, rows.Err()
}

type NegotiationFilter struct {
	SellerID *uuid.UUID
	BuyerID  *uuid.UUID
	// PartyID matches either side.
	PartyID *uuid.UUID
	Limit   int
	Offset  int
}

// List returns negotiations open-first, then most recently updated.
func (r *NegotiationRepo) List(ctx context.Context, f NegotiationFilter) ([]models.NegotiationWithParties, error) {
	query := `
		SELECT n.id, n.product_id, n.seller_id, n.buyer_id, n.status, n.last_offer_price,
		       n.created_at, n.updated_at, su.username, bu.username, p.title
		FROM negotiations n
		JOIN users su ON su.id = n.seller_id
		JOIN users bu ON bu.id = n.buyer_id
		JOIN products p ON p.id = n.product_id
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.SellerID != nil {
		where = append(where, fmt.Sprintf("n.seller_id = $%d", argIdx))
		args = append(args, *f.SellerID)
		argIdx++
	}
	if f.BuyerID != nil {
		where = append(where, fmt.Sprintf("n.buyer_id = $%d", argIdx))
		args = append(args, *f.BuyerID)
		argIdx++
	}
	if f.PartyID != nil {
		where = append(where, fmt.Sprintf("(n.seller_id = $%d OR n.buyer_id = $%d)", argIdx, argIdx))
		args = append(args, *f.PartyID)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(`
		ORDER BY CASE WHEN n.status = 'open' THEN 0 ELSE 1 END, n.updated_at DESC
		LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var negs []models.NegotiationWithParties
	for rows.Next() {
		var n models.NegotiationWithParties
		if err := rows.Scan(&n.ID, &n.ProductID, &n.SellerID, &n.BuyerID, &n.Status, &n.LastOfferPrice,
			&n.CreatedAt, &n.UpdatedAt, &n.SellerUsername, &n.BuyerUsername, &n.ProductTitle); err != nil {
			return nil, err
		}
		negs = append(negs, n)
	}
	return negs, rows.Err()
}

// CountAsSeller and CountAsBuyer back the mirror counts on the selling and
// buying list responses.
func (r *NegotiationRepo) CountAsSeller(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM negotiations WHERE seller_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *NegotiationRepo) CountAsBuyer(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM negotiations WHERE buyer_id = $1`, userID).Scan(&n)
	return n, err
}
