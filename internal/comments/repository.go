package comments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles persistence for comments.
type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*CommentResponse, error)
	GetByIDOwned(ctx context.Context, id, userID uuid.UUID) (*Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	EventExists(ctx context.Context, eventID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new comments repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, comment *Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

type commentRow struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Content   string
	CreatedAt time.Time
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*CommentResponse, error) {
	var rows []commentRow
	err := r.db.WithContext(ctx).Table("comments").
		Select("comments.id, comments.event_id, comments.user_id, users.first_name, users.last_name, comments.content, comments.created_at").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.event_id = ?", eventID).
		Order("comments.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*CommentResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, &CommentResponse{
			ID:         row.ID,
			EventID:    row.EventID,
			UserID:     row.UserID,
			AuthorName: row.FirstName + " " + row.LastName,
			Content:    row.Content,
			CreatedAt:  row.CreatedAt,
		})
	}
	return result, nil
}

func (r *repository) GetByIDOwned(ctx context.Context, id, userID uuid.UUID) (*Comment, error) {
	var comment Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) EventExists(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("events").Where("id = ?", eventID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
