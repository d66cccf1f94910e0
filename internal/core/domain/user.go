package domain

import "time"

// User models a registered account. Usernames are case-sensitive and
// immutable once assigned; within a Store, ID and Username form a bijection.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
