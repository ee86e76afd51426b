package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
)

// TokenService issues the access/refresh pair, rotates refresh tokens on use
// and revokes them on sign-out and password change. Refresh tokens are
// persisted as SHA-256 hashes; the raw token never reaches the database.
type TokenService struct {
	manager model.TokenManager
	store   model.RefreshTokenStore
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, store: store, logger: logger}
}

// refreshTTL mirrors the refresh claim lifetime in the token manager. The
// stored expiry drives persistence-side rejection and cleanup queries only;
// claim validity is checked cryptographically at parse time.
const refreshTTL = 30 * 24 * time.Hour

// Issue creates a fresh access/refresh pair for the user and persists the
// refresh record.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (accessToken string, refreshToken string, err error) {
	return s.mint(ctx, userID, nil)
}

// Refresh rotates a presented refresh token. The stored record is checked
// against revocation, expiry and the token hash, then revoked, and a new
// pair is minted carrying a rotation link back to the old JTI.
func (s *TokenService) Refresh(ctx context.Context, presented string) (newAccess string, newRefresh string, err error) {
	userID, jti, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		return "", "", err
	}

	stored, err := s.store.GetByJTI(ctx, jti)
	if err != nil {
		return "", "", err
	}

	if err := checkStored(stored, presented); err != nil {
		s.logger.Info("Token service: rejected refresh token", "jti", jti, "error", err.Error())
		return "", "", err
	}

	if err := s.store.RevokeByJTI(ctx, jti); err != nil {
		return "", "", fmt.Errorf("failed to revoke rotated token: %w", err)
	}

	s.logger.Debug("Token service: rotating refresh token", "user_id", userID, "jti", jti)

	return s.mint(ctx, userID, &jti)
}

func (s *TokenService) mint(ctx context.Context, userID uuid.UUID, rotatedFrom *string) (string, string, error) {
	access, err := s.manager.GenerateAccessToken(userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, jti, err := s.manager.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	record := model.RefreshToken{
		ID:             uuid.New(),
		JTI:            jti,
		UserID:         userID,
		TokenHash:      hashToken(refresh),
		IssuedAt:       now,
		ExpiresAt:      now.Add(refreshTTL),
		RotatedFromJTI: rotatedFrom,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return "", "", fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return access, refresh, nil
}

// RevokeByToken revokes the record behind one presented refresh token.
func (s *TokenService) RevokeByToken(ctx context.Context, presented string) error {
	_, jti, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		return err
	}
	return s.store.RevokeByJTI(ctx, jti)
}

// RevokeAllForUser revokes every live refresh token of the user, ending all
// of their sessions at once.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.store.RevokeAllByUser(ctx, userID)
}

// GetUserID resolves the user behind a presented access token.
func (s *TokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	return s.manager.ParseAccessToken(token)
}

func checkStored(stored model.RefreshToken, presented string) error {
	switch {
	case stored.RevokedAt != nil:
		return model.ErrTokenRevoked
	case time.Now().After(stored.ExpiresAt):
		return model.ErrTokenExpired
	case subtle.ConstantTimeCompare(stored.TokenHash, hashToken(presented)) != 1:
		return model.ErrTokenMismatch
	}
	return nil
}

func hashToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
