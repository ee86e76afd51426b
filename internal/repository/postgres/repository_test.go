package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepositories(t *testing.T) {
	db := &Connection{}

	assert.NotNil(t, NewUserRepository(db))
	assert.NotNil(t, NewCourseRepository(db))
	assert.NotNil(t, NewEnrollmentRepository(db))
	assert.NotNil(t, NewRefreshTokenRepository(db))
}

func TestConnection_PingNilPool(t *testing.T) {
	db := &Connection{}
	require.Error(t, db.Ping(context.Background()))
}

func TestConnection_CloseNilPool(t *testing.T) {
	db := &Connection{}
	assert.NoError(t, db.Close())
}

func TestNewConnection_InvalidDSN(t *testing.T) {
	_, err := NewConnection(context.Background(), "not a dsn ://")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse postgres dsn")
}
