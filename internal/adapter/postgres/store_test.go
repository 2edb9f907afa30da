package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/guillermoBallester/flaskr/internal/adapter/postgres"
	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/guillermoBallester/flaskr/internal/core/service"
	"github.com/guillermoBallester/flaskr/internal/schema"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*postgres.DB, *pgxpool.Pool) {
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

	pool, err := postgres.NewPool(ctx, connStr, postgres.PoolSettings{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	db := postgres.NewDB(pool)
	initSchema(t, db)
	return db, pool
}

func scriptService() *service.ScriptService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewScriptService(domain.SplitLine, domain.CommitPerLine, nil, logger, nil, nil)
}

func initSchema(t *testing.T, db *postgres.DB) {
	t.Helper()
	ctx := context.Background()

	f, err := schema.Open(db.Dialect(), "")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sess, err := db.OpenScript(ctx)
	require.NoError(t, err)
	defer func() { require.NoError(t, sess.Close(ctx)) }()

	report, err := scriptService().Run(ctx, sess, f)
	require.NoError(t, err)
	require.False(t, report.Aborted, "schema script aborted: %v", report.Failed)
	require.Equal(t, 4, report.Executed)
}

func TestScript_FailureKeepsEarlierStatements(t *testing.T) {
	db, pool := setupTestDB(t)
	ctx := context.Background()

	script := "CREATE TABLE t1 (a INT);\n" +
		"INSERT INTO t1 (a)\n" +
		"VALUES (1);\n" +
		"INSERT INTO missing_table VALUES (2);\n" +
		"CREATE TABLE t2 (a INT);\n"

	sess, err := db.OpenScript(ctx)
	require.NoError(t, err)
	report, err := scriptService().Run(ctx, sess, strings.NewReader(script))
	require.NoError(t, err)
	require.NoError(t, sess.Close(ctx))

	require.True(t, report.Aborted)
	assert.Equal(t, 3, report.Failed.Index)
	assert.Contains(t, report.Failed.Error(), "missing_table")

	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM t1").Scan(&n))
	assert.Equal(t, 1, n)

	var exists bool
	require.NoError(t, pool.QueryRow(ctx, "SELECT to_regclass('t2') IS NOT NULL").Scan(&exists))
	assert.False(t, exists, "statements after the failure never run")
}

func TestScope_ReusedAndReleased(t *testing.T) {
	db, _ := setupTestDB(t)

	ctx, release := db.Scope(context.Background())
	scope := postgres.ScopeFromContext(ctx)
	require.NotNil(t, scope)
	assert.False(t, scope.Acquired(), "connection is acquired lazily")

	c1, err := scope.Conn(ctx)
	require.NoError(t, err)
	c2, err := scope.Conn(ctx)
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	_, err = db.ListPosts(ctx)
	require.NoError(t, err)

	release()
	assert.False(t, scope.Acquired())

	_, err = db.ListPosts(ctx)
	require.ErrorIs(t, err, domain.ErrConnClosed)
}

func TestStore_PostLifecycle(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	uid, err := db.CreateUser(ctx, "test", "hash")
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, "test", "hash")
	require.ErrorIs(t, err, domain.ErrUserExists)

	u, err := db.UserByUsername(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = db.UserByID(ctx, uid+100)
	require.ErrorIs(t, err, domain.ErrNotFound)

	first, err := db.CreatePost(ctx, uid, "first", "body one")
	require.NoError(t, err)
	second, err := db.CreatePost(ctx, uid, "second", "body two")
	require.NoError(t, err)

	posts, err := db.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second, posts[0].ID, "most recent first")
	assert.Equal(t, "test", posts[0].Username)

	require.NoError(t, db.UpdatePost(ctx, first, "updated", "new body"))
	p, err := db.GetPost(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "updated", p.Title)
	assert.Equal(t, uid, p.AuthorID)
	assert.False(t, p.Created.IsZero())

	require.NoError(t, db.DeletePost(ctx, first))
	_, err = db.GetPost(ctx, first)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, db.DeletePost(ctx, first), domain.ErrNotFound)
}
