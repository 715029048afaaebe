package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/userposts/internal/cache"
	"github.com/vaughan-dsouza/userposts/internal/schemas"
	"github.com/vaughan-dsouza/userposts/internal/utils"
)

type PostHandler struct {
	cache cache.Cache
	log   *logrus.Logger
}

func NewPostHandler(c cache.Cache, log *logrus.Logger) *PostHandler {
	return &PostHandler{cache: c, log: log}
}

// ---------------------- CREATE ----------------------

// CreatePost creates a post owned by the user in the path.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	var in schemas.PostCreate
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		return
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

	post := in.Model(ownerID)
	if err := sess.AddPost(r.Context(), &post); err != nil {
		writeError(w, r, h.log, err, "")
		return
	}
	if err := sess.Commit(); err != nil {
		writeError(w, r, h.log, err, "")
		return
	}
	if err := sess.RefreshPost(r.Context(), &post); err != nil {
		writeError(w, r, h.log, err, "Post not found")
		return
	}

	resp := schemas.NewPostResponse(post)
	h.remember(r, resp)

	h.log.WithContext(r.Context()).WithFields(logrus.Fields{
		"post_id":  post.ID,
		"owner_id": post.OwnerID,
	}).Info("post created")
	utils.JSON(w, http.StatusCreated, resp)
}

// ---------------------- LIST ----------------------

func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	posts, err := sess.ListPosts(r.Context())
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	utils.JSON(w, http.StatusOK, schemas.NewPostResponses(posts))
}

// GetUserPosts lists the posts owned by the user in the path.
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	sess, err := session(r)
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	if _, err := sess.GetUser(r.Context(), ownerID); err != nil {
		writeError(w, r, h.log, err, "User not found")
		return
	}

	posts, err := sess.ListPostsByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	utils.JSON(w, http.StatusOK, schemas.NewPostResponses(posts))
}

// ---------------------- GET ONE ----------------------

func (h *PostHandler) GetPostByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "post_id")
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	var resp schemas.PostResponse
	if hit, err := h.cache.Get(r.Context(), cache.PostKey(id), &resp); err != nil {
		h.log.WithContext(r.Context()).WithError(err).Warn("post cache read failed")
	} else if hit {
		utils.JSON(w, http.StatusOK, resp)
		return
	}

	sess, err := session(r)
	if err != nil {
		writeError(w, r, h.log, err, "")
		return
	}

	post, err := sess.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err, "Post not found")
		return
	}

	resp = schemas.NewPostResponse(post)
	h.remember(r, resp)
	utils.JSON(w, http.StatusOK, resp)
}

func (h *PostHandler) remember(r *http.Request, resp schemas.PostResponse) {
	if err := h.cache.Set(r.Context(), cache.PostKey(resp.ID), resp); err != nil {
		h.log.WithContext(r.Context()).WithError(err).Warn("post cache write failed")
	}
}
