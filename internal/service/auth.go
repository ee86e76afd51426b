package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
)

// SessionTokens is the token pair handed out on successful authentication.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

// Auth implements sign-up, sign-in, sign-out and the password-recovery flow.
type Auth struct {
	userStore    model.UserStore
	tokenService *TokenService
	logger       *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	refreshTokenStore model.RefreshTokenStore,
	tokenManager model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenService: NewTokenService(tokenManager, refreshTokenStore, logger),
		logger:       logger,
	}
}

// TokenService exposes the composed token service for transport wiring.
func (a *Auth) TokenService() *TokenService {
	return a.tokenService
}

func (a *Auth) SignUp(ctx context.Context, email, name, password string) (model.User, SessionTokens, error) {
	a.logger.Debug("Auth service: starting sign-up", "email", email)

	if len(password) < model.MinPasswordLen {
		return model.User{}, SessionTokens{}, model.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, SessionTokens{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrEmailTaken) {
		a.logger.Info("Auth service: sign-up for taken email", "email", email)
		return model.User{}, SessionTokens{}, err
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, SessionTokens{}, fmt.Errorf("failed to create user: %w", err)
	}

	access, refresh, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return model.User{}, SessionTokens{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: sign-up completed", "user_id", user.ID)

	return user, SessionTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (model.User, SessionTokens, error) {
	a.logger.Debug("Auth service: starting sign-in", "email", email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, SessionTokens{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, SessionTokens{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		a.logger.Info("Auth service: password mismatch", "email", email)
		return model.User{}, SessionTokens{}, model.ErrInvalidCredentials
	}

	access, refresh, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return model.User{}, SessionTokens{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: sign-in completed", "user_id", user.ID)

	return user, SessionTokens{AccessToken: access, RefreshToken: refresh}, nil
}

// SignOut revokes the presented refresh token. The error is surfaced to the
// caller; session state must not be torn down locally when revocation fails.
func (a *Auth) SignOut(ctx context.Context, refreshToken string) error {
	if err := a.tokenService.RevokeByToken(ctx, refreshToken); err != nil {
		a.logger.Error("Auth service: failed to revoke refresh token", "error", err.Error())
		return fmt.Errorf("failed to sign out: %w", err)
	}

	a.logger.Info("Auth service: sign-out completed")
	return nil
}

// RequestRecovery issues a recovery token for the given email. Delivery of
// the recovery link is out of scope; the token is returned to the caller.
func (a *Auth) RequestRecovery(ctx context.Context, email string) (string, error) {
	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user by email: %w", err)
	}

	recovery, err := a.tokenService.manager.GenerateRecoveryToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue recovery token: %w", err)
	}

	a.logger.Info("Auth service: recovery token issued", "user_id", user.ID)

	return recovery, nil
}

// UpdatePassword sets a new password for the user identified by a valid
// recovery token. An invalid or expired token yields
// model.ErrRecoveryNotAuthorized; all refresh tokens for the user are revoked
// on success so stale sessions cannot outlive the password change.
func (a *Auth) UpdatePassword(ctx context.Context, recoveryToken, newPassword string) error {
	if len(newPassword) < model.MinPasswordLen {
		return model.ErrPasswordTooShort
	}

	userID, err := a.tokenService.manager.ParseRecoveryToken(recoveryToken)
	if err != nil {
		a.logger.Info("Auth service: rejected recovery token", "error", err.Error())
		return model.ErrRecoveryNotAuthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.userStore.UpdatePassword(ctx, userID, hash); err != nil {
		a.logger.Error("Auth service: failed to update password",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := a.tokenService.RevokeAllForUser(ctx, userID); err != nil {
		a.logger.Error("Auth service: failed to revoke sessions after password update",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	a.logger.Info("Auth service: password updated", "user_id", userID)

	return nil
}
