// Package models holds the values the CLI exchanges with the server.
package models

// RegisterRequest is the body of POST /register/.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is a registered user as returned by the server.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
