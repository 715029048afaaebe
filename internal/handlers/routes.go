package handlers

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/userposts/internal/middleware"
	"github.com/vaughan-dsouza/userposts/internal/store"
)

// NewRouter mounts every route. Routes that touch storage run inside a
// per-request store session.
func NewRouter(h *Handler, st *store.Store, log *logrus.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)

	r.Get("/", h.Root)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(st))

		r.Post("/users", h.Users.CreateUser)
		r.Get("/users", h.Users.GetUsers)
		r.Get("/users/{user_id}", h.Users.GetUserByID)

		r.Post("/users/{user_id}/posts", h.Posts.CreatePost)
		r.Get("/users/{user_id}/posts", h.Posts.GetUserPosts)

		r.Get("/posts", h.Posts.GetPosts)
		r.Get("/posts/{post_id}", h.Posts.GetPostByID)
	})

	return r
}
