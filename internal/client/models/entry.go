// Package models defines client-side data models used by the Daybook CLI.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/datekey"
)

// EntryID is the opaque server-assigned identifier of an entry. It decodes
// from JSON strings and JSON numbers alike.
type EntryID string

// UnmarshalJSON accepts "abc" and 42.
func (id *EntryID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = EntryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	*id = EntryID(n.String())
	return nil
}

// Entry is the single diary record of one day.
type Entry struct {
	ID      EntryID
	Date    datekey.Key
	Content string
}

// Record is an entry as it travels over the wire; Date is not normalized yet.
type Record struct {
	ID      EntryID `json:"id"`
	Date    string  `json:"date"`
	Content string  `json:"content"`
}
