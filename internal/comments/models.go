package comments

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors returned by the comments service.
var (
	ErrNotFound     = errors.New("comment not found")
	ErrEmptyContent = errors.New("comment content must not be empty")
)

// Comment is a user's remark on an event page.
type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Comment model
func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate sets the ID if not already set
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateCommentRequest is the payload for posting a comment.
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=2000"`
}
