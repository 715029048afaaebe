package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/userposts/internal/cache"
	"github.com/vaughan-dsouza/userposts/internal/utils"
)

type Handler struct {
	Users *UserHandler
	Posts *PostHandler
}

func NewHandler(c cache.Cache, log *logrus.Logger) *Handler {
	if c == nil {
		c = cache.Noop{}
	}
	return &Handler{
		Users: NewUserHandler(c, log),
		Posts: NewPostHandler(c, log),
	}
}

// Root reports that the service is up.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"message": "API is running!"})
}
