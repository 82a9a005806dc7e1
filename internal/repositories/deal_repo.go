package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peermarket/backend/internal/models"
)

type DealRepo struct {
	pool *pgxpool.Pool
}

func NewDealRepo(pool *pgxpool.Pool) *DealRepo {
	return &DealRepo{pool: pool}
}

func (r *DealRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var d models.Deal
	err := r.pool.QueryRow(ctx, `
		SELECT id, product_id, buyer_id, seller_id, agreed_price, status, created_at, updated_at
		FROM deals WHERE id = $1
	`, id).Scan(&d.ID, &d.ProductID, &d.BuyerID, &d.SellerID, &d.AgreedPrice, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DealRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Deal, error) {
	var d models.Deal
	err := r.pool.QueryRow(ctx, `
		UPDATE deals SET status = $1, updated_at = now() WHERE id = $2
		RETURNING id, product_id, buyer_id, seller_id, agreed_price, status, created_at, updated_at
	`, status, id).Scan(&d.ID, &d.ProductID, &d.BuyerID, &d.SellerID, &d.AgreedPrice, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type DealFilter struct {
	SellerID *uuid.UUID
	BuyerID  *uuid.UUID
	// PartyID matches either side.
	PartyID *uuid.UUID
	Limit   int
	Offset  int
}

// List returns deals pending-first, then most recently updated.
func (r *DealRepo) List(ctx context.Context, f DealFilter) ([]models.DealWithParties, error) {
	query := `
		SELECT d.id, d.product_id, d.buyer_id, d.seller_id, d.agreed_price, d.status,
		       d.created_at, d.updated_at, bu.username, su.username, p.title
		FROM deals d
		JOIN users bu ON bu.id = d.buyer_id
		JOIN users su ON su.id = d.seller_id
		JOIN products p ON p.id = d.product_id
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.SellerID != nil {
		where = append(where, fmt.Sprintf("d.seller_id = $%d", argIdx))
		args = append(args, *f.SellerID)
		argIdx++
	}
	if f.BuyerID != nil {
		where = append(where, fmt.Sprintf("d.buyer_id = $%d", argIdx))
		args = append(args, *f.BuyerID)
		argIdx++
	}
	if f.PartyID != nil {
		where = append(where, fmt.Sprintf("(d.seller_id = $%d OR d.buyer_id = $%d)", argIdx, argIdx))
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
		ORDER BY CASE WHEN d.status = 'pending' THEN 0 ELSE 1 END, d.updated_at DESC
		LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []models.DealWithParties
	for rows.Next() {
		var d models.DealWithParties
		if err := rows.Scan(&d.ID, &d.ProductID, &d.BuyerID, &d.SellerID, &d.AgreedPrice, &d.Status,
			&d.CreatedAt, &d.UpdatedAt, &d.BuyerUsername, &d.SellerUsername, &d.ProductTitle); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (r *DealRepo) CountAsSeller(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM deals WHERE seller_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *DealRepo) CountAsBuyer(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM deals WHERE buyer_id = $1`, userID).Scan(&n)
	return n, err
}
