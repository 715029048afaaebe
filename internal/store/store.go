// Package store is the access layer: a Store hands out one Session per
// request and every read or write goes through that session.
package store

import (
	"context"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Store owns the connection pool and opens sessions on it.
type Store struct {
	db     *sqlx.DB
	log    *logrus.Logger
	active atomic.Int64
}

func New(db *sqlx.DB, log *logrus.Logger) *Store {
	return &Store{db: db, log: log}
}

// Session acquires a handle for one request. The caller must Close it.
func (s *Store) Session(ctx context.Context) *Session {
	s.active.Add(1)
	return &Session{
		store: s,
		db:    s.db,
		log:   s.log.WithContext(ctx),
	}
}

// Active returns the number of sessions that have not been closed yet.
func (s *Store) Active() int64 {
	return s.active.Load()
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// SessionFrom returns the session stored in ctx by WithSession.
func SessionFrom(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	return sess, ok
}
