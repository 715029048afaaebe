package schemas

import (
	"time"

	"github.com/vaughan-dsouza/userposts/internal/models"
)

// PostCreate is the body of POST /users/{user_id}/posts. The owner comes
// from the path, never from the body.
type PostCreate struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required,notblank"`
}

func (p *PostCreate) normalize() {
	trim(&p.Title)
}

func (p PostCreate) Model(ownerID int64) models.Post {
	return models.Post{Title: p.Title, Content: p.Content, OwnerID: ownerID}
}

// PostUpdate carries optional changes; nil fields are left unchanged.
type PostUpdate struct {
	Title   *string `json:"title,omitempty" validate:"omitnil,min=1"`
	Content *string `json:"content,omitempty" validate:"omitnil,notblank"`
}

func (p *PostUpdate) normalize() {
	trim(p.Title)
}

func (p PostUpdate) Apply(m *models.Post) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Content != nil {
		m.Content = *p.Content
	}
}

type PostResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPostResponse(m models.Post) PostResponse {
	return PostResponse{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
	}
}

func NewPostResponses(ms []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewPostResponse(m))
	}
	return out
}
