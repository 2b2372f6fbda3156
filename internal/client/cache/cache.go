// Package cache holds the client's date-keyed entry cache.
//
// The cache distinguishes three answers for a day: an entry is present, the
// day is known to have no entry, or the day has not been queried yet. It is
// owned by the sync controller and is not safe for concurrent use on its own.
package cache

import (
	"sort"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/datekey"
)

// Status is the cache's knowledge about one day.
type Status int

const (
	// Unknown means the day has not been queried.
	Unknown Status = iota
	// Absent means the day is known to have no entry.
	Absent
	// Present means the cache holds the day's entry.
	Present
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// Cache maps date keys to entries. A nil value marks a known-absent day.
type Cache struct {
	entries map[datekey.Key]*models.Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[datekey.Key]*models.Entry)}
}

// Get returns the entry for key and what the cache knows about it.
func (c *Cache) Get(key datekey.Key) (models.Entry, Status) {
	e, ok := c.entries[key]
	switch {
	case !ok:
		return models.Entry{}, Unknown
	case e == nil:
		return models.Entry{}, Absent
	default:
		return *e, Present
	}
}

// Has reports whether key has an entry. Calendar decoration uses it.
func (c *Cache) Has(key datekey.Key) bool {
	e, ok := c.entries[key]
	return ok && e != nil
}

// Put stores e under key.
func (c *Cache) Put(key datekey.Key, e models.Entry) {
	c.entries[key] = &e
}

// MarkAbsent records that key has no entry.
func (c *Cache) MarkAbsent(key datekey.Key) {
	c.entries[key] = nil
}

// Remove forgets key, returning it to Unknown.
func (c *Cache) Remove(key datekey.Key) {
	delete(c.entries, key)
}

// PutAll replaces the whole mapping with entries, keyed by each entry's Date.
func (c *Cache) PutAll(entries []models.Entry) {
	m := make(map[datekey.Key]*models.Entry, len(entries))
	for i := range entries {
		e := entries[i]
		m[e.Date] = &e
	}
	c.entries = m
}

// Len returns the number of present entries.
func (c *Cache) Len() int {
	n := 0
	for _, e := range c.entries {
		if e != nil {
			n++
		}
	}
	return n
}

// Entries returns the present entries, newest day first.
func (c *Cache) Entries() []models.Entry {
	out := make([]models.Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e != nil {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}
