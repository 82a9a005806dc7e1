package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

type BlockService struct {
	blocks *repositories.BlockRepo
	users  *repositories.UserRepo
}

func NewBlockService(blocks *repositories.BlockRepo, users *repositories.UserRepo) *BlockService {
	return &BlockService{blocks: blocks, users: users}
}

func (s *BlockService) Block(ctx context.Context, blockerID, blockedID uuid.UUID) (*models.Block, error) {
	if blockerID == blockedID {
		return nil, apperr.New(apperr.CodeInvalidInput, "cannot block yourself")
	}
	if _, err := s.users.GetByID(ctx, blockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "user lookup failed", err)
	}

	b, err := s.blocks.Create(ctx, blockerID, blockedID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to create block", err)
	}
	return b, nil
}

func (s *BlockService) List(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	blocks, err := s.blocks.ListByBlocker(ctx, blockerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to list blocks", err)
	}
	return blocks, nil
}

func (s *BlockService) Unblock(ctx context.Context, blockID, blockerID uuid.UUID) error {
	n, err := s.blocks.Delete(ctx, blockID, blockerID)
	if err != nil {
		return apperr.Wrap(apperr.CodeStorage, "failed to delete block", err)
	}
	if n == 0 {
		return apperr.New(apperr.CodeNotFound, "block not found")
	}
	return nil
}
