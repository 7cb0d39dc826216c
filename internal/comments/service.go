package comments

import (
	"context"
	"strings"

	"beatsbook/internal/events"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"

	"github.com/google/uuid"
)

// Service handles business logic for comments.
type Service interface {
	Create(ctx context.Context, userID, eventID uuid.UUID, req *CreateCommentRequest) (*CommentResponse, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*CommentResponse, error)
	Delete(ctx context.Context, userID, commentID uuid.UUID) error
}

type service struct {
	repo  Repository
	clock clock.Clock
	log   *logger.Logger
}

// NewService creates a new comments service
func NewService(repo Repository, clk clock.Clock, log *logger.Logger) Service {
	return &service{repo: repo, clock: clk, log: log}
}

func (s *service) Create(ctx context.Context, userID, eventID uuid.UUID, req *CreateCommentRequest) (*CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	exists, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, events.ErrNotFound
	}

	comment := &Comment{
		EventID:   eventID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return &CommentResponse{
		ID:        comment.ID,
		EventID:   comment.EventID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}

func (s *service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*CommentResponse, error) {
	exists, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, events.ErrNotFound
	}
	return s.repo.ListByEvent(ctx, eventID)
}

// Delete removes the caller's own comment. Other users' comments read as
// missing.
func (s *service) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.repo.GetByIDOwned(ctx, commentID, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, comment.ID)
}
