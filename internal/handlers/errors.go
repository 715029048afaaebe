package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/userposts/internal/schemas"
	"github.com/vaughan-dsouza/userposts/internal/store"
	"github.com/vaughan-dsouza/userposts/internal/utils"
)

var errNoSession = errors.New("handlers: no store session in request context")

// writeError maps err onto a status code. notFound is the message used for
// store.ErrNotFound.
func writeError(w http.ResponseWriter, r *http.Request, log *logrus.Logger, err error, notFound string) {
	var verr *schemas.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.JSONErrorDetails(w, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrConflict):
		utils.JSONError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, store.ErrReferential):
		utils.JSONError(w, http.StatusUnprocessableEntity, "owner does not exist")
	default:
		log.WithContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).
			Error("request failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func session(r *http.Request) (*store.Session, error) {
	sess, ok := store.SessionFrom(r.Context())
	if !ok {
		return nil, errNoSession
	}
	return sess, nil
}

// pathID parses an integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, &schemas.ValidationError{Fields: []schemas.FieldError{{Field: name, Rule: "int"}}}
	}
	return id, nil
}
