package models

// User is a registered account as stored in the users table.
//
// Password holds the bcrypt hash, never the submitted plaintext. Rows are
// created once and never updated.
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Password string `db:"password"`
}
