package model

import "github.com/google/uuid"

// TokenManager generates and validates access, refresh and recovery tokens.
// Recovery tokens establish restricted-mode sessions that are valid only for
// a password update.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (token string, jti string, err error)
	GenerateRecoveryToken(userID uuid.UUID) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
	ParseRefreshToken(token string) (userID uuid.UUID, jti string, err error)
	ParseRecoveryToken(token string) (uuid.UUID, error)
}
