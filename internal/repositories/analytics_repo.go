package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peermarket/backend/internal/models"
)

type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepo(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

func (r *AnalyticsRepo) Insert(ctx context.Context, e *models.AnalyticsEvent) error {
	extra := e.Extra
	if extra == nil {
		extra = map[string]any{}
	}
	extraBytes, err := json.Marshal(extra)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO analytics_events (event_type, user_id, product_id, negotiation_id, ip, user_agent,
		                              referrer, country, region, city, extra)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`, e.EventType, e.UserID, e.ProductID, e.NegotiationID, e.IP, e.UserAgent,
		e.Referrer, e.Country, e.Region, e.City, extraBytes,
	).Scan(&e.ID, &e.CreatedAt)
}

// TopProducts aggregates event counts per product for one event type,
// descending, capped at limit.
func (r *AnalyticsRepo) TopProducts(ctx context.Context, eventType string, limit int) ([]models.TopProduct, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT a.product_id, COUNT(a.id) AS cnt, p.title
		FROM analytics_events a
		JOIN products p ON p.id = a.product_id
		WHERE a.event_type = $1 AND a.product_id IS NOT NULL
		GROUP BY a.product_id, p.title
		ORDER BY cnt DESC
		LIMIT $2
	`, eventType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []models.TopProduct
	for rows.Next() {
		var t models.TopProduct
		if err := rows.Scan(&t.ProductID, &t.Count, &t.Title); err != nil {
			return nil, err
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

func (r *AnalyticsRepo) CountByLocation(ctx context.Context, eventType string, limit int) ([]models.LocationCount, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT country, region, city, COUNT(id) AS cnt
		FROM analytics_events
		WHERE event_type = $1
		GROUP BY country, region, city
		ORDER BY cnt DESC
		LIMIT $2
	`, eventType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.LocationCount
	for rows.Next() {
		var c models.LocationCount
		if err := rows.Scan(&c.Country, &c.Region, &c.City, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// LastViewedProduct returns the product of the user's most recent
// product_view event, or (nil, nil) when there is none.
func (r *AnalyticsRepo) LastViewedProduct(ctx context.Context, userID uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `
		SELECT p.id, p.seller_id, p.title, p.description, p.price, p.currency, p.condition, p.is_active,
		       p.min_offer_price, p.location_city, p.location_state, p.location_country, p.category_id,
		       p.created_at, p.updated_at
		FROM analytics_events a
		JOIN products p ON p.id = a.product_id
		WHERE a.user_id = $1 AND a.event_type = $2
		ORDER BY a.created_at DESC
		LIMIT 1
	`, userID, models.EventProductView))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CategoriesSeen lists the distinct categories of products the user has
// viewed.
func (r *AnalyticsRepo) CategoriesSeen(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT c.id, c.name, c.parent_id, c.created_at
		FROM analytics_events a
		JOIN products p ON p.id = a.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE a.user_id = $1 AND a.event_type = $2
	`, userID, models.EventProductView)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
