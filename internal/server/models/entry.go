package models

import (
	"time"

	"github.com/dmitrijs2005/daybook/internal/datekey"
)

// Entry is one user's text for one civil day. (UserID, Date) is unique.
type Entry struct {
	ID        string
	UserID    string
	Date      datekey.Key
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
