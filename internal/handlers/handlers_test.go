package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/userposts/internal/cache"
	"github.com/vaughan-dsouza/userposts/internal/db"
	"github.com/vaughan-dsouza/userposts/internal/schemas"
	"github.com/vaughan-dsouza/userposts/internal/store"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

type testServer struct {
	t     *testing.T
	store *store.Store
	http  http.Handler
}

func newTestServer(t *testing.T, c cache.Cache) *testServer {
	t.Helper()

	conn, err := db.Connect(db.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), db.Pool{MaxOpen: 4})
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(context.Background(), conn))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	st := store.New(conn, logger)
	t.Cleanup(func() { _ = st.Close() })

	return &testServer{
		t:     t,
		store: st,
		http:  NewRouter(NewHandler(c, logger), st, logger),
	}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)
	return rec
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createUser(name, email string) schemas.UserResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/users/", `{"name":"`+name+`","email":"`+email+`"}`)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[schemas.UserResponse](s.t, rec)
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"API is running!"}`, rec.Body.String())
}

func TestCreateUserScenario(t *testing.T) {
	srv := newTestServer(t, nil)

	user := srv.createUser("John Doe", "john@email.com")
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, "john@email.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.CreatedAt.IsZero())

	rec := srv.do(http.MethodPost, "/users/", `{"name":"John Doe","email":"john@email.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"email already registered"}`, rec.Body.String())

	list := decode[[]schemas.UserResponse](t, srv.do(http.MethodGet, "/users/", ""))
	assert.Len(t, list, 1)
	assert.Equal(t, int64(0), srv.store.Active())
}

func TestCreateUserFromQuery(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/users/?name=Jane+Doe&email=jane%40email.com", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	user := decode[schemas.UserResponse](t, rec)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "jane@email.com", user.Email)
}

func TestCreateUserRejectsMalformedEmail(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/users/", `{"name":"John","email":"not-an-email"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t,
		`{"error":"validation failed","fields":[{"field":"email","rule":"email"}]}`,
		rec.Body.String())

	list := decode[[]schemas.UserResponse](t, srv.do(http.MethodGet, "/users/", ""))
	assert.Empty(t, list)
}

func TestCreateUserRejectsTrailingJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/users/", `{"name":"x","email":"k@e.com"} {"a":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, decode[[]schemas.UserResponse](t, srv.do(http.MethodGet, "/users", "")))
}

func TestCreateUserRejectsClientAssignedFields(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/users/", `{"id":5,"name":"John","email":"john@email.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUser(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodGet, "/users/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

	rec = srv.do(http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	created := srv.do(http.MethodPost, "/users/", `{"name":"John Doe","email":"john@email.com"}`)
	require.Equal(t, http.StatusCreated, created.Code)
	id := decode[schemas.UserResponse](t, created).ID

	got := srv.do(http.MethodGet, "/users/"+itoa(id), "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.JSONEq(t, created.Body.String(), got.Body.String())
}

func TestListUsers(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	want := map[int64]string{}
	for _, email := range []string{"a@email.com", "b@email.com", "c@email.com", "d@email.com"} {
		u := srv.createUser("user", email)
		want[u.ID] = email
	}

	list := decode[[]schemas.UserResponse](t, srv.do(http.MethodGet, "/users/", ""))
	require.Len(t, list, len(want))
	for _, u := range list {
		assert.Equal(t, want[u.ID], u.Email)
	}
}

func TestCreatePost(t *testing.T) {
	srv := newTestServer(t, nil)
	owner := srv.createUser("John Doe", "john@email.com")

	rec := srv.do(http.MethodPost, "/users/"+itoa(owner.ID)+"/posts/", `{"title":"Hello","content":"First post"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	post := decode[schemas.PostResponse](t, rec)
	assert.Positive(t, post.ID)
	assert.Equal(t, owner.ID, post.OwnerID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "First post", post.Content)
	assert.False(t, post.CreatedAt.IsZero())

	got := srv.do(http.MethodGet, "/posts/"+itoa(post.ID), "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.JSONEq(t, rec.Body.String(), got.Body.String())
}

func TestCreatePostMissingOwner(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodPost, "/users/42/posts", `{"title":"Hello","content":"orphan"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"owner does not exist"}`, rec.Body.String())

	list := decode[[]schemas.PostResponse](t, srv.do(http.MethodGet, "/posts/", ""))
	assert.Empty(t, list)
	assert.Equal(t, int64(0), srv.store.Active())
}

func TestCreatePostValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	owner := srv.createUser("John Doe", "john@email.com")

	rec := srv.do(http.MethodPost, "/users/"+itoa(owner.ID)+"/posts", `{"title":"","content":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = srv.do(http.MethodPost, "/users/"+itoa(owner.ID)+"/posts", `{"title":"t","content":"   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t,
		`{"error":"validation failed","fields":[{"field":"content","rule":"notblank"}]}`,
		rec.Body.String())
	assert.Empty(t, decode[[]schemas.PostResponse](t, srv.do(http.MethodGet, "/posts", "")))

	rec = srv.do(http.MethodPost, "/users/"+itoa(owner.ID)+"/posts", `{"title":"t","content":"x","owner_id":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodPost, "/users/"+itoa(owner.ID)+"/posts", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostListings(t *testing.T) {
	srv := newTestServer(t, nil)
	john := srv.createUser("John", "john@email.com")
	jane := srv.createUser("Jane", "jane@email.com")

	for _, target := range []string{
		"/users/" + itoa(john.ID) + "/posts",
		"/users/" + itoa(john.ID) + "/posts",
		"/users/" + itoa(jane.ID) + "/posts",
	} {
		rec := srv.do(http.MethodPost, target, `{"title":"t","content":"c"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	all := decode[[]schemas.PostResponse](t, srv.do(http.MethodGet, "/posts", ""))
	assert.Len(t, all, 3)

	johns := decode[[]schemas.PostResponse](t, srv.do(http.MethodGet, "/users/"+itoa(john.ID)+"/posts/", ""))
	require.Len(t, johns, 2)
	for _, p := range johns {
		assert.Equal(t, john.ID, p.OwnerID)
	}

	rec := srv.do(http.MethodGet, "/users/999/posts", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodGet, "/posts/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Post not found"}`, rec.Body.String())
}

func TestGetByIDUsesCache(t *testing.T) {
	c := newMemCache()
	srv := newTestServer(t, c)

	user := srv.createUser("John Doe", "john@email.com")
	_, cached := c.data[cache.UserKey(user.ID)]
	assert.True(t, cached, "create should warm the cache")

	// an entry the database does not have proves the read came from cache
	require.NoError(t, c.Set(context.Background(), cache.PostKey(77), schemas.PostResponse{ID: 77, Title: "cached"}))
	rec := srv.do(http.MethodGet, "/posts/77", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cached", decode[schemas.PostResponse](t, rec).Title)

	rec = srv.do(http.MethodGet, "/users/"+itoa(user.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, decode[schemas.UserResponse](t, rec))
}

func TestMissingSessionIsServerError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := NewHandler(nil, logger)

	rec := httptest.NewRecorder()
	h.Users.GetUsers(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
