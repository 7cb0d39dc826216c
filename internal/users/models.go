package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access role assigned to a user account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a registered account. Every user may both browse and
// book events, and owns the events they create.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FirstName     string    `json:"first_name" gorm:"not null;size:100"`
	LastName      string    `json:"last_name" gorm:"not null;size:100"`
	Username      string    `json:"username" gorm:"uniqueIndex;not null;size:100"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password      string    `json:"-" gorm:"not null"`
	ContactNumber string    `json:"contact_number" gorm:"size:20"`
	StreetAddress string    `json:"street_address" gorm:"size:255"`
	Role          Role      `json:"role" gorm:"type:varchar(20);default:'USER'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate sets the ID if not already set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ToResponse converts the user to its API representation.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Username:      u.Username,
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
		StreetAddress: u.StreetAddress,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
	}
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contact_number,omitempty"`
	StreetAddress string    `json:"street_address,omitempty"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}
