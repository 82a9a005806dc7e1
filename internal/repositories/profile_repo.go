package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peermarket/backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, user_id, full_name, phone, email, address_line1, address_line2, city, state, country, pin_code, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.Email, &p.AddressLine1, &p.AddressLine2,
		&p.City, &p.State, &p.Country, &p.PinCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserID returns (nil, nil) when no profile exists; callers fall back
// to the minimal contact payload in that case.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1
	`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetOrCreate returns the profile, creating an empty one seeded with the
// account email on first read.
func (r *ProfileRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, email string) (*models.UserProfile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, email) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING `+profileColumns+`
	`, userID, email))
}

// Update applies a partial update: nil fields keep their current value.
func (r *ProfileRepo) Update(ctx context.Context, userID uuid.UUID, fields map[string]*string) (*models.UserProfile, error) {
	get := func(key string) *string { return fields[key] }
	return scanProfile(r.pool.QueryRow(ctx, `
		UPDATE user_profiles SET
			full_name     = COALESCE($2, full_name),
			phone         = COALESCE($3, phone),
			email         = COALESCE($4, email),
			address_line1 = COALESCE($5, address_line1),
			address_line2 = COALESCE($6, address_line2),
			city          = COALESCE($7, city),
			state         = COALESCE($8, state),
			country       = COALESCE($9, country),
			pin_code      = COALESCE($10, pin_code),
			updated_at    = now()
		WHERE user_id = $1
		RETURNING `+profileColumns+`
	`, userID, get("full_name"), get("phone"), get("email"), get("address_line1"), get("address_line2"),
		get("city"), get("state"), get("country"), get("pin_code")))
}
