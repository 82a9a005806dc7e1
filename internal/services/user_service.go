package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/apperr"
	"github.com/peermarket/backend/internal/auth"
	"github.com/peermarket/backend/internal/config"
	"github.com/peermarket/backend/internal/models"
	"github.com/peermarket/backend/internal/repositories"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

type UserService struct {
	users    *repositories.UserRepo
	profiles *repositories.ProfileRepo
	cfg      *config.Config
	log      *zap.Logger
}

func NewUserService(users *repositories.UserRepo, profiles *repositories.ProfileRepo, cfg *config.Config, log *zap.Logger) *UserService {
	return &UserService{users: users, profiles: profiles, cfg: cfg, log: log}
}

type AuthResult struct {
	Token string           `json:"token"`
	User  models.UserPublic `json:"user"`
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if !usernameRe.MatchString(username) {
		return nil, apperr.New(apperr.CodeInvalidInput, "username must be 3-32 characters of letters, digits or underscore")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.CodeInvalidInput, "a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperr.New(apperr.CodeInvalidInput, "password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to hash password", err)
	}

	u, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.New(apperr.CodeInvalidInput, "username or email already taken")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to create user", err)
	}

	if _, err := s.profiles.GetOrCreate(ctx, u.ID, u.Email); err != nil {
		s.log.Warn("profile bootstrap failed", zap.String("user_id", u.ID.String()), zap.Error(err))
	}

	return s.issueToken(u)
}

func (s *UserService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeUnauthorized, "invalid credentials")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "user lookup failed", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid credentials")
	}

	if err := s.users.UpdateLastActive(ctx, u.ID); err != nil {
		s.log.Warn("last active update failed", zap.Error(err))
	}

	return s.issueToken(u)
}

func (s *UserService) issueToken(u *models.User) (*AuthResult, error) {
	token, err := auth.GenerateJWT(s.cfg.JWTSecret, u.ID, u.Username, s.cfg.JWTExpiration)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "failed to sign token", err)
	}
	return &AuthResult{Token: token, User: u.Public()}, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.CodeStorage, "user lookup failed", err)
	}
	return u, nil
}

// Profile returns the caller's profile, creating an empty one on first read.
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetOrCreate(ctx, u.ID, u.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "profile lookup failed", err)
	}
	return p, nil
}

// UpdateProfile applies a partial update; nil fields are left untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, fields map[string]*string) (*models.UserProfile, error) {
	if len(fields) == 0 {
		return s.Profile(ctx, userID)
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	p, err := s.profiles.Update(ctx, userID, fields)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorage, "profile update failed", err)
	}
	return p, nil
}
