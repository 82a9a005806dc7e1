package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peermarket/backend/internal/models"
)

type WishlistRepo struct {
	pool *pgxpool.Pool
}

func NewWishlistRepo(pool *pgxpool.Pool) *WishlistRepo {
	return &WishlistRepo{pool: pool}
}

// Add is idempotent: re-adding an existing item returns the existing row.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	var w models.WishlistItem
	err := r.pool.QueryRow(ctx, `
		INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, product_id, created_at
	`, userID, productID).Scan(&w.ID, &w.UserID, &w.ProductID, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WishlistRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItemWithProduct, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.id, w.user_id, w.product_id, w.created_at,
		       p.id, p.seller_id, p.title, p.description, p.price, p.currency, p.condition, p.is_active,
		       p.min_offer_price, p.location_city, p.location_state, p.location_country, p.category_id,
		       p.created_at, p.updated_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.WishlistItemWithProduct
	for rows.Next() {
		var it models.WishlistItemWithProduct
		p := &it.Product
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.CreatedAt,
			&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Price, &p.Currency, &p.Condition, &p.IsActive,
			&p.MinOfferPrice, &p.LocationCity, &p.LocationState, &p.LocationCountry, &p.CategoryID,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, productID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
