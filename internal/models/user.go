package models

import "time"

// User is a row of the users table. Posts are not stored on the user;
// load them with the owner_id query.
type User struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}
