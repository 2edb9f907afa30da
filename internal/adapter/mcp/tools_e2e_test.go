package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/guillermoBallester/flaskr/internal/adapter/postgres"
	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/guillermoBallester/flaskr/internal/core/service"
	"github.com/guillermoBallester/flaskr/internal/schema"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// setupE2E starts a Postgres testcontainer, runs the embedded schema through
// the script service, seeds two posts, and returns a fully wired MCP server.
func setupE2E(t *testing.T) *server.MCPServer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
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

	// Schema via the PostgreSQL-scanner split mode.
	f, err := schema.Open(db.Dialect(), "")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sess, err := db.OpenScript(ctx)
	require.NoError(t, err)
	scripts := service.NewScriptService(domain.SplitPG, domain.CommitPerStatement, nil, testLogger(), nil, nil)
	report, err := scripts.Run(ctx, sess, f)
	require.NoError(t, err)
	require.NoError(t, sess.Close(ctx))
	require.False(t, report.Aborted, "schema script aborted: %v", report.Failed)

	hash, err := bcrypt.GenerateFromPassword([]byte("test"), bcrypt.MinCost)
	require.NoError(t, err)
	authorID, err := db.CreateUser(ctx, "test", string(hash))
	require.NoError(t, err)

	blog := service.NewBlogService(db, nil, testLogger(), nil)
	_, err = blog.Create(ctx, authorID, "first", "a")
	require.NoError(t, err)
	_, err = blog.Create(ctx, authorID, "second", "b")
	require.NoError(t, err)

	return NewServer("0.0.1", blog, db, testLogger(), nil, nil)
}

func TestE2E_MCPTools(t *testing.T) {
	s := setupE2E(t)

	t.Run("list_posts", func(t *testing.T) {
		result := callTool(t, s, "list_posts", nil)
		require.False(t, result.IsError, toolText(result))

		var posts []domain.Post
		require.NoError(t, json.Unmarshal([]byte(toolText(result)), &posts))
		require.Len(t, posts, 2)
		for _, p := range posts {
			assert.Equal(t, "test", p.Username)
			assert.False(t, p.Created.IsZero())
		}
	})

	t.Run("get_post", func(t *testing.T) {
		result := callTool(t, s, "get_post", map[string]any{"id": 1})
		require.False(t, result.IsError, toolText(result))

		var post domain.Post
		require.NoError(t, json.Unmarshal([]byte(toolText(result)), &post))
		assert.Equal(t, int64(1), post.ID)
		assert.Equal(t, "first", post.Title)
	})

	t.Run("get_post missing", func(t *testing.T) {
		result := callTool(t, s, "get_post", map[string]any{"id": 999})
		assert.True(t, result.IsError)
		assert.Contains(t, toolText(result), "not found")
	})
}
