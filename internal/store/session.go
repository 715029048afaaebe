package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/userposts/internal/models"
)

const (
	userColumns = `id, name, email, is_active, created_at`
	postColumns = `id, title, content, owner_id, created_at`
)

// Session is a per-request handle. Inserts are staged in a transaction that
// is opened on the first Add and made visible to other sessions by Commit.
// A Session must not be shared between goroutines.
type Session struct {
	store  *Store
	db     *sqlx.DB
	log    *logrus.Entry
	tx     *sqlx.Tx
	closed bool
}

// querier is either the pool or the open transaction.
func (s *Session) querier() sqlx.ExtContext {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Session) begin(ctx context.Context) (*sqlx.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	s.tx = tx
	return tx, nil
}

func (s *Session) rollback() {
	if s.tx == nil {
		return
	}
	if err := s.tx.Rollback(); err != nil {
		s.log.WithError(err).Warn("rollback failed")
	}
	s.tx = nil
}

// ---------------------- WRITES ----------------------

// AddUser stages an insert of u and sets u.ID. The remaining backend-assigned
// fields are only valid after Commit and RefreshUser.
func (s *Session) AddUser(ctx context.Context, u *models.User) error {
	if s.closed {
		return ErrSessionClosed
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	query := tx.Rebind(`INSERT INTO users (name, email) VALUES (?, ?) RETURNING id`)
	if err := tx.QueryRowxContext(ctx, query, u.Name, u.Email).Scan(&u.ID); err != nil {
		s.rollback()
		return translate("add user", err)
	}
	return nil
}

// AddPost stages an insert of p and sets p.ID.
func (s *Session) AddPost(ctx context.Context, p *models.Post) error {
	if s.closed {
		return ErrSessionClosed
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	query := tx.Rebind(`INSERT INTO posts (title, content, owner_id) VALUES (?, ?, ?) RETURNING id`)
	if err := tx.QueryRowxContext(ctx, query, p.Title, p.Content, p.OwnerID).Scan(&p.ID); err != nil {
		s.rollback()
		return translate("add post", err)
	}
	return nil
}

// Commit flushes everything staged since the last Commit. It is a no-op
// when nothing is staged.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return translate("commit", err)
	}
	s.log.Debug("session committed")
	return nil
}

// ---------------------- RELOAD ----------------------

// RefreshUser reloads every column of u from the backend.
func (s *Session) RefreshUser(ctx context.Context, u *models.User) error {
	if u.ID == 0 {
		return fmt.Errorf("refresh user: %w", ErrNotFound)
	}
	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = got
	return nil
}

// RefreshPost reloads every column of p from the backend.
func (s *Session) RefreshPost(ctx context.Context, p *models.Post) error {
	if p.ID == 0 {
		return fmt.Errorf("refresh post: %w", ErrNotFound)
	}
	got, err := s.GetPost(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = got
	return nil
}

// ---------------------- READS ----------------------

func (s *Session) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	if s.closed {
		return u, ErrSessionClosed
	}
	q := s.querier()
	err := sqlx.GetContext(ctx, q, &u, q.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return models.User{}, translate("get user", err)
	}
	return u, nil
}

func (s *Session) ListUsers(ctx context.Context) ([]models.User, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	users := []models.User{}
	if err := sqlx.SelectContext(ctx, s.querier(), &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

func (s *Session) GetPost(ctx context.Context, id int64) (models.Post, error) {
	var p models.Post
	if s.closed {
		return p, ErrSessionClosed
	}
	q := s.querier()
	err := sqlx.GetContext(ctx, q, &p, q.Rebind(`SELECT `+postColumns+` FROM posts WHERE id = ?`), id)
	if err != nil {
		return models.Post{}, translate("get post", err)
	}
	return p, nil
}

func (s *Session) ListPosts(ctx context.Context) ([]models.Post, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	posts := []models.Post{}
	if err := sqlx.SelectContext(ctx, s.querier(), &posts, `SELECT `+postColumns+` FROM posts ORDER BY id`); err != nil {
		return nil, translate("list posts", err)
	}
	return posts, nil
}

// ListPostsByOwner is the user -> posts back-reference.
func (s *Session) ListPostsByOwner(ctx context.Context, ownerID int64) ([]models.Post, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	q := s.querier()
	posts := []models.Post{}
	query := q.Rebind(`SELECT ` + postColumns + ` FROM posts WHERE owner_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, q, &posts, query, ownerID); err != nil {
		return nil, translate("list posts by owner", err)
	}
	return posts, nil
}

// ---------------------- RELEASE ----------------------

// Close releases the session, discarding anything not committed. Calls
// after the first are no-ops.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.rollback()
	s.store.active.Add(-1)
}
