package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/guillermoBallester/flaskr/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// BlogService implements the post operations and their ownership rules.
type BlogService struct {
	posts   port.PostStore
	auditor port.Auditor
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewBlogService(posts port.PostStore, auditor port.Auditor, logger *slog.Logger, tracer trace.Tracer) *BlogService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if auditor == nil {
		auditor = port.NoopAuditor{}
	}
	return &BlogService{posts: posts, auditor: auditor, logger: logger, tracer: tracer}
}

// List returns all posts, most recent first.
func (s *BlogService) List(ctx context.Context) ([]domain.Post, error) {
	ctx, span := s.tracer.Start(ctx, "BlogService.List")
	defer span.End()

	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	span.SetAttributes(attribute.Int("flaskr.posts", len(posts)))
	return posts, nil
}

// Get fetches a post by id. When checkAuthor is set, the post must belong to userID.
func (s *BlogService) Get(ctx context.Context, id, userID int64, checkAuthor bool) (*domain.Post, error) {
	ctx, span := s.tracer.Start(ctx, "BlogService.Get",
		trace.WithAttributes(attribute.Int64("flaskr.post.id", id)),
	)
	defer span.End()

	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("post id %d: %w", id, err)
	}
	if checkAuthor && post.AuthorID != userID {
		return nil, fmt.Errorf("post id %d: %w", id, domain.ErrForbidden)
	}
	return post, nil
}

func (s *BlogService) Create(ctx context.Context, authorID int64, title, body string) (int64, error) {
	if err := domain.ValidatePost(title); err != nil {
		return 0, err
	}

	start := time.Now()
	id, err := s.posts.CreatePost(ctx, authorID, title, body)
	s.audit(ctx, "blog.create", authorID, id, start, err)
	if err != nil {
		return 0, fmt.Errorf("creating post: %w", err)
	}

	s.logger.InfoContext(ctx, "post created", slog.Int64("post.id", id), slog.Int64("user.id", authorID))
	return id, nil
}

func (s *BlogService) Update(ctx context.Context, id, userID int64, title, body string) error {
	if _, err := s.Get(ctx, id, userID, true); err != nil {
		return err
	}
	if err := domain.ValidatePost(title); err != nil {
		return err
	}

	start := time.Now()
	err := s.posts.UpdatePost(ctx, id, title, body)
	s.audit(ctx, "blog.update", userID, id, start, err)
	if err != nil {
		return fmt.Errorf("updating post %d: %w", id, err)
	}
	return nil
}

func (s *BlogService) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.Get(ctx, id, userID, true); err != nil {
		return err
	}

	start := time.Now()
	err := s.posts.DeletePost(ctx, id)
	s.audit(ctx, "blog.delete", userID, id, start, err)
	if err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "post deleted", slog.Int64("post.id", id), slog.Int64("user.id", userID))
	return nil
}

func (s *BlogService) audit(ctx context.Context, source string, userID, postID int64, start time.Time, err error) {
	s.auditor.Record(ctx, port.AuditEntry{
		Source:     source,
		UserID:     userID,
		PostID:     postID,
		DurationMS: time.Since(start).Milliseconds(),
		Err:        err,
	})
}
