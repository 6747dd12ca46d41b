package domain

import (
	"context"
	"io"
	"time"
)

// DateLayout is the wire format of calendar dates (birth dates).
const DateLayout = "2006-01-02"

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	BirthDate    time.Time `json:"birthDate"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(firstName, lastName, email string, birthDate, createdAt, updatedAt time.Time) *User {
	return &User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		BirthDate: birthDate,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// AgeAt returns the user's age in whole years on the given day.
func (u *User) AgeAt(now time.Time) int {
	y1, m1, d1 := u.BirthDate.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	age := y2 - y1
	if m2 < m1 || (m2 == m1 && d2 < d1) {
		age--
	}
	return age
}

// ImageUpload is a profile image received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateUserInput holds the fields accepted when creating a user.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	BirthDate time.Time
	Image     *ImageUpload
}

// UpdateUserInput holds a partial user update; nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	BirthDate *time.Time
	Image     *ImageUpload
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

// UserService defines the business logic for user accounts.
type UserService interface {
	Create(ctx context.Context, in *CreateUserInput) (*User, error)
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id, callerID string, in *UpdateUserInput) (*User, error)
	Delete(ctx context.Context, id, callerID string) error
}

// ObjectStorage stores binary objects (profile images) and returns their public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (url string, err error)
}
