package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peermarket/backend/internal/models"
)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, seller_id, title, description, price, currency, condition, is_active,
	min_offer_price, location_city, location_state, location_country, category_id, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Price, &p.Currency, &p.Condition,
		&p.IsActive, &p.MinOfferPrice, &p.LocationCity, &p.LocationState, &p.LocationCountry,
		&p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO products (seller_id, title, description, price, currency, condition, is_active,
		                      min_offer_price, location_city, location_state, location_country, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, p.SellerID, p.Title, p.Description, p.Price, p.Currency, p.Condition, p.IsActive,
		p.MinOfferPrice, p.LocationCity, p.LocationState, p.LocationCountry, p.CategoryID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id))
}

// GetActive backs the negotiation engine's product lookup: only active
// listings can be negotiated on.
func (r *ProductRepo) GetActive(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1 AND is_active
	`, id))
}

func (r *ProductRepo) Update(ctx context.Context, p *models.Product) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE products SET title = $1, description = $2, price = $3, currency = $4, condition = $5,
			is_active = $6, min_offer_price = $7, location_city = $8, location_state = $9,
			location_country = $10, category_id = $11, updated_at = now()
		WHERE id = $12
	`, p.Title, p.Description, p.Price, p.Currency, p.Condition, p.IsActive, p.MinOfferPrice,
		p.LocationCity, p.LocationState, p.LocationCountry, p.CategoryID, p.ID)
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

type ProductFilter struct {
	ExcludeSellerID *uuid.UUID
	CategoryID      *uuid.UUID
	Condition       *string
	Limit           int
	Offset          int
}

// ListActive returns active listings with view counts derived from the
// analytics event log (the product row itself carries no counters).
func (r *ProductRepo) ListActive(ctx context.Context, f ProductFilter) ([]models.ProductWithStats, error) {
	query := `
		SELECT p.id, p.seller_id, p.title, p.description, p.price, p.currency, p.condition, p.is_active,
		       p.min_offer_price, p.location_city, p.location_state, p.location_country, p.category_id,
		       p.created_at, p.updated_at, u.username,
		       COUNT(a.id) FILTER (WHERE a.event_type = 'product_view') AS view_count
		FROM products p
		JOIN users u ON u.id = p.seller_id
		LEFT JOIN analytics_events a ON a.product_id = p.id
		WHERE p.is_active
	`
	args := []any{}
	argIdx := 1

	if f.ExcludeSellerID != nil {
		query += fmt.Sprintf(" AND p.seller_id <> $%d", argIdx)
		args = append(args, *f.ExcludeSellerID)
		argIdx++
	}
	if f.CategoryID != nil {
		query += fmt.Sprintf(" AND p.category_id = $%d", argIdx)
		args = append(args, *f.CategoryID)
		argIdx++
	}
	if f.Condition != nil {
		query += fmt.Sprintf(" AND p.condition = $%d", argIdx)
		args = append(args, *f.Condition)
		argIdx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(`
		GROUP BY p.id, u.username
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	return r.queryStats(ctx, query, args...)
}

// ListMine returns the seller's own products with view, click and wishlist
// counts joined on.
func (r *ProductRepo) ListMine(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.ProductWithStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return r.queryStats(ctx, `
		SELECT p.id, p.seller_id, p.title, p.description, p.price, p.currency, p.condition, p.is_active,
		       p.min_offer_price, p.location_city, p.location_state, p.location_country, p.category_id,
		       p.created_at, p.updated_at, u.username,
		       COUNT(a.id) FILTER (WHERE a.event_type = 'product_view') AS view_count,
		       COUNT(a.id) FILTER (WHERE a.event_type = 'product_click') AS click_count,
		       COUNT(DISTINCT w.id) AS wishlist_count
		FROM products p
		JOIN users u ON u.id = p.seller_id
		LEFT JOIN analytics_events a ON a.product_id = p.id
		LEFT JOIN wishlist_items w ON w.product_id = p.id
		WHERE p.seller_id = $1
		GROUP BY p.id, u.username
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
}

func (r *ProductRepo) queryStats(ctx context.Context, query string, args ...any) ([]models.ProductWithStats, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	withClicks := len(fields) > 17

	var products []models.ProductWithStats
	for rows.Next() {
		var p models.ProductWithStats
		dest := []any{&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Price, &p.Currency, &p.Condition,
			&p.IsActive, &p.MinOfferPrice, &p.LocationCity, &p.LocationState, &p.LocationCountry,
			&p.CategoryID, &p.CreatedAt, &p.UpdatedAt, &p.SellerUsername, &p.ViewCount}
		if withClicks {
			dest = append(dest, &p.ClickCount, &p.WishlistCount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ---- Images ----

func (r *ProductRepo) CreateImage(ctx context.Context, img *models.ProductImage) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO product_images (product_id, url, alt_text, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, img.ProductID, img.URL, img.AltText, img.SortOrder).Scan(&img.ID, &img.CreatedAt)
}

func (r *ProductRepo) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, url, alt_text, sort_order, created_at
		FROM product_images WHERE product_id = $1 ORDER BY sort_order, created_at
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ProductImage
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.AltText, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes an image only when sellerID owns the parent product.
func (r *ProductRepo) DeleteImage(ctx context.Context, imageID, sellerID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM product_images pi
		USING products p
		WHERE pi.id = $1 AND p.id = pi.product_id AND p.seller_id = $2
	`, imageID, sellerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
