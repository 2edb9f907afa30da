package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/guillermoBallester/flaskr/internal/core/port"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server metadata
const serverName = "flaskr"

// Tool descriptions
const (
	descListPosts = "List all blog posts, most recent first. " +
		"Each post carries its id, title, body, creation time, author id and author username."

	descGetPost = "Fetch a single blog post by id, including the author's username."

	descGetPostParam = "Numeric id of the post"
)

// PostReader is the read side of the blog the tools expose.
type PostReader interface {
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, id, userID int64, checkAuthor bool) (*domain.Post, error)
}

// RegisterTools adds the blog tools to s. Each call runs inside its own
// connection scope.
func RegisterTools(s *server.MCPServer, posts PostReader, scoper port.ConnScoper, logger *slog.Logger) {
	s.AddTool(
		mcp.NewTool("list_posts",
			mcp.WithDescription(descListPosts),
		),
		scoped(scoper, listPostsHandler(posts, logger)),
	)

	s.AddTool(
		mcp.NewTool("get_post",
			mcp.WithDescription(descGetPost),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description(descGetPostParam),
			),
		),
		scoped(scoper, getPostHandler(posts, logger)),
	)
}

// scoped binds one database connection to the tool call.
func scoped(scoper port.ConnScoper, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	if scoper == nil {
		return next
	}
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, release := scoper.Scope(ctx)
		defer release()
		return next(ctx, request)
	}
}

func listPostsHandler(posts PostReader, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := posts.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, "list posts")), nil
		}
		if list == nil {
			list = []domain.Post{}
		}

		data, err := json.Marshal(list)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func getPostHandler(posts PostReader, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, ok := request.GetArguments()["id"].(float64)
		if !ok {
			return mcp.NewToolResultError("id is required"), nil
		}
		id := int64(raw)
		if float64(id) != raw || id <= 0 {
			return mcp.NewToolResultError("id must be a positive integer"), nil
		}

		post, err := posts.Get(ctx, id, 0, false)
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, "get post")), nil
		}

		data, err := json.Marshal(post)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

// sanitizeError turns a service error into a message safe to return to the
// client. Unexpected errors are logged and replaced by a generic message.
func sanitizeError(logger *slog.Logger, err error, op string) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return op + " timed out"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "57014" {
		return op + " timed out"
	}

	logger.Error("tool failed", slog.String("op", op), slog.String("error", err.Error()))
	return fmt.Sprintf("internal error while trying to %s (check server logs)", op)
}
