package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peermarket/backend/internal/models"
)

type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

func (r *BlockRepo) Create(ctx context.Context, blockerID, blockedID uuid.UUID) (*models.Block, error) {
	var b models.Block
	err := r.pool.QueryRow(ctx, `
		INSERT INTO blocks (blocker_id, blocked_id) VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO UPDATE SET blocker_id = EXCLUDED.blocker_id
		RETURNING id, blocker_id, blocked_id, created_at
	`, blockerID, blockedID).Scan(&b.ID, &b.BlockerID, &b.BlockedID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BlockRepo) ListByBlocker(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, blocker_id, blocked_id, created_at
		FROM blocks WHERE blocker_id = $1 ORDER BY created_at DESC
	`, blockerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		var b models.Block
		if err := rows.Scan(&b.ID, &b.BlockerID, &b.BlockedID, &b.CreatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Delete removes a block owned by blockerID. Returns the number of rows
// removed so callers can distinguish not-found.
func (r *BlockRepo) Delete(ctx context.Context, id, blockerID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blocks WHERE id = $1 AND blocker_id = $2`, id, blockerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IsBlockedBetween reports whether a block exists in either direction. Order
// of the arguments does not matter.
func (r *BlockRepo) IsBlockedBetween(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`, a, b).Scan(&exists)
	return exists, err
}
