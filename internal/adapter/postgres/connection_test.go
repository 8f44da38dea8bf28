package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/floreria/internal/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5433, User: "floreria", Password: "p@ss word", Database: "floreria", MaxConns: 2}

	poolCfg, err := pgxpool.ParseConfig(DSN(cfg))
	require.NoError(t, err)

	conn := poolCfg.ConnConfig
	assert.Equal(t, "db", conn.Host)
	assert.Equal(t, uint16(5433), conn.Port)
	assert.Equal(t, "p@ss word", conn.Password)
	assert.Equal(t, "floreria", conn.Database)
	assert.Equal(t, "floreria", conn.RuntimeParams["application_name"])
}

func TestOpenAppliesSchema(t *testing.T) {
	db := &fakeDB{}

	opened, err := Open(context.Background(), db)
	require.NoError(t, err)

	assert.Same(t, db, opened)
	assert.True(t, db.committed)
	assert.False(t, db.closed)
	require.Len(t, db.queries, 2)
	assert.True(t, strings.HasPrefix(db.queries[0], "CREATE TABLE IF NOT EXISTS order_status_log"))
}

func TestOpenClosesOnPingFailure(t *testing.T) {
	db := &fakeDB{pingErr: errors.New("connection refused")}

	_, err := Open(context.Background(), db)
	assert.ErrorContains(t, err, "failed to ping database")
	assert.True(t, db.closed)
	assert.Empty(t, db.queries)
}

func TestOpenClosesOnSchemaFailure(t *testing.T) {
	db := &fakeDB{execErr: errors.New("permission denied")}

	_, err := Open(context.Background(), db)
	assert.ErrorContains(t, err, "failed to apply schema")
	assert.False(t, db.committed)
	assert.True(t, db.closed)
}
