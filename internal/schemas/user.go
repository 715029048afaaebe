package schemas

import (
	"time"

	"github.com/vaughan-dsouza/userposts/internal/models"
)

// UserCreate is the body (or query) of POST /users.
type UserCreate struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (u *UserCreate) normalize() {
	trim(&u.Name)
	trim(&u.Email)
}

// Model returns the row to insert. Backend-assigned columns stay zero.
func (u UserCreate) Model() models.User {
	return models.User{Name: u.Name, Email: u.Email}
}

// UserUpdate carries optional changes; nil fields are left unchanged.
type UserUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitnil,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitnil,email"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (u *UserUpdate) normalize() {
	trim(u.Name)
	trim(u.Email)
}

// Apply copies the set fields onto m.
func (u UserUpdate) Apply(m *models.User) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Email != nil {
		m.Email = *u.Email
	}
	if u.IsActive != nil {
		m.IsActive = *u.IsActive
	}
}

// UserResponse is how a user is returned to callers.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(m models.User) UserResponse {
	return UserResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

func NewUserResponses(ms []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewUserResponse(m))
	}
	return out
}
