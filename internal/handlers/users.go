package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/userposts/internal/cache"
	"github.com/vaughan-dsouza/userposts/internal/schemas"
	"github.com/vaughan-dsouza/userposts/internal/utils"
)

type UserHandler struct {
	cache cache.Cache
	log   *logrus.Logger
}

func NewUserHandler(c cache.Cache, log *logrus.Logger) *UserHandler {
	return &UserHandler{cache: c, log: log}
}

// ---------------------- CREATE ----------------------

// CreateUser accepts name and email as a JSON body or, when there is no
// body, as query parameters.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in schemas.UserCreate
	if utils.HasBody(r) {
		if err := utils.DecodeJSON(w, r, &in); err != nil {
			return
		}
	} else {
		q := r.URL.Query()
		in.Name = q.Get("name")
		in.Email = q.Get("email")
	}

	if err := schemas.Validate(&in); err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	sess, err := session(r)
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	user := in.Model()
	if err := sess.AddUser(r.Context(), &user); err != nil {
		writeError(w, r, h.log, err, "")
		return
	}
	if err := sess.Commit(); err != nil {
		writeError(w, r, h.log, err, "")
		return
	}
	if err := sess.RefreshUser(r.Context(), &user); err != nil {
		writeError(w, r, h.log, err, "User not found")
		return
	}

	resp := schemas.NewUserResponse(user)
	h.remember(r, resp)

	h.log.WithContext(r.Context()).WithField("user_id", user.ID).Info("user created")
	utils.JSON(w, http.StatusCreated, resp)
}

// ---------------------- LIST ----------------------

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	users, err := sess.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	utils.JSON(w, http.StatusOK, schemas.NewUserResponses(users))
}

// ---------------------- GET ONE ----------------------

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	var resp schemas.UserResponse
	if hit, err := h.cache.Get(r.Context(), cache.UserKey(id), &resp); err != nil {
		h.log.WithContext(r.Context()).WithError(err).Warn("user cache read failed")
	} else if hit {
		utils.JSON(w, http.StatusOK, resp)
		return
	}

	sess, err := session(r)
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	user, err := sess.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err, "User not found")
		return
	}

	resp = schemas.NewUserResponse(user)
	h.remember(r, resp)
	utils.JSON(w, http.StatusOK, resp)
}

// remember caches resp; a cache failure never fails the request.
func (h *UserHandler) remember(r *http.Request, resp schemas.UserResponse) {
	if err := h.cache.Set(r.Context(), cache.UserKey(resp.ID), resp); err != nil {
		h.log.WithContext(r.Context()).WithError(err).Warn("user cache write failed")
	}
}
