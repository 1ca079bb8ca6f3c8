// internal/domain/models/user.go
package models

import "time"

// User is a local account backing the built-in identity provider.
//
// NOTE:
//   - ID is the only key used in group rosters and RSVP sets.
//   - Email is stored normalized (trimmed, lower-case) and is unique.
type User struct {
	ID           string    `bson:"-" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Department   string    `bson:"department" json:"department"`
	Semester     string    `bson:"semester" json:"semester"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
