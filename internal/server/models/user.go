package models

import "time"

// User is a directory entry mirrored from the identity provider. Only the
// id and the (case-insensitively unique) email are known here.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
