// Package models holds the server-side persistence types.
package models

import "time"

type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}
