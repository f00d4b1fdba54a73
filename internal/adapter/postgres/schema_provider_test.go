package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sqlward/sqlward/internal/adapter/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testSchema = `
	CREATE TABLE sales (
		id         SERIAL PRIMARY KEY,
		region     TEXT NOT NULL,
		amount     NUMERIC(10,2) NOT NULL DEFAULT 0,
		sold_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	_, err = pool.Exec(ctx, testSchema)
	require.NoError(t, err)

	return pool
}

func TestSchemaProvider_ReadsColumns(t *testing.T) {
	pool := setupTestDB(t)
	provider := postgres.NewSchemaProvider(pool, "", "sales")
	ctx := context.Background()

	schema, err := provider.Schema(ctx)
	require.NoError(t, err)

	assert.Equal(t, "sales", schema.TableName)
	require.Len(t, schema.Columns, 4)

	// ordinal_position ordering.
	assert.Equal(t, "id", schema.Columns[0].Name)
	assert.Equal(t, "integer", schema.Columns[0].Type)
	assert.Equal(t, "region", schema.Columns[1].Name)
	assert.Equal(t, "text", schema.Columns[1].Type)
	assert.Equal(t, "amount", schema.Columns[2].Name)
	assert.Equal(t, "numeric", schema.Columns[2].Type)
	assert.Equal(t, "sold_at", schema.Columns[3].Name)

	assert.True(t, schema.HasColumn("REGION"))
	assert.False(t, schema.HasColumn("customer"))
}

func TestSchemaProvider_UnknownTable(t *testing.T) {
	pool := setupTestDB(t)
	provider := postgres.NewSchemaProvider(pool, "", "orders")
	ctx := context.Background()

	_, err := provider.Schema(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table "orders" not found in schema "public"`)
}

func TestSchemaProvider_PicksUpNewColumns(t *testing.T) {
	pool := setupTestDB(t)
	provider := postgres.NewSchemaProvider(pool, "", "sales")
	ctx := context.Background()

	before, err := provider.Schema(ctx)
	require.NoError(t, err)
	require.Len(t, before.Columns, 4)

	_, err = pool.Exec(ctx, "ALTER TABLE sales ADD COLUMN discount NUMERIC")
	require.NoError(t, err)

	after, err := provider.Schema(ctx)
	require.NoError(t, err)
	assert.Len(t, after.Columns, 5)
	assert.True(t, after.HasColumn("discount"))
}

func TestNewPool_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := postgres.NewPool(context.Background(), "://not-a-url", postgres.PoolConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing database URL")
}

func TestNewPool_AppliesConfig(t *testing.T) {
	pool := setupTestDB(t)
	connStr := pool.Config().ConnString()

	tuned, err := postgres.NewPool(context.Background(), connStr, postgres.PoolConfig{
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(tuned.Close)

	assert.Equal(t, int32(4), tuned.Config().MaxConns)
	assert.Equal(t, int32(1), tuned.Config().MinConns)
	assert.Equal(t, time.Minute, tuned.Config().MaxConnLifetime)
}
