// Package datekey is the single authority on "what day is this".
//
// A Key is the canonical YYYY-MM-DD form of a civil calendar day. Keys are
// derived from the wall-clock components a time.Time carries and are never
// routed through a UTC conversion, so a value built at local midnight and one
// built at local noon always land on the same key.
package datekey

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
)

// Layout is the canonical key layout.
const Layout = "2006-01-02"

// Key identifies a civil calendar day, e.g. "2024-03-10".
type Key string

// String returns the key text.
func (k Key) String() string {
	return string(k)
}

// IsZero reports whether k is the empty key (no date).
func (k Key) IsZero() bool {
	return k == ""
}

// AddDays returns the key n days after k (n may be negative).
func (k Key) AddDays(n int) (Key, error) {
	y, m, d, err := k.components()
	if err != nil {
		return "", err
	}
	// Noon keeps the arithmetic clear of DST transitions.
	t := time.Date(y, m, d+n, 12, 0, 0, 0, time.UTC)
	return format(t.Date())
}

// Month returns the year and month of k.
func (k Key) Month() (int, time.Month, error) {
	y, m, _, err := k.components()
	return y, m, err
}

func (k Key) components() (int, time.Month, int, error) {
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", common.ErrInvalidDate, string(k))
	}
	y, m, d := t.Date()
	return y, m, d, nil
}

// Codec converts date values to keys and back for one civil calendar,
// identified by its location. The location is used when a key becomes a
// time (DisplayDate) and when the current instant becomes a key (Today).
type Codec struct {
	loc *time.Location
}

// NewCodec returns a Codec for loc. A nil loc means time.Local.
func NewCodec(loc *time.Location) Codec {
	if loc == nil {
		loc = time.Local
	}
	return Codec{loc: loc}
}

// Location returns the codec's calendar location.
func (c Codec) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// ToKey returns the key of the day t denotes. The year, month and day are
// read from t in the zone t carries; neither UTC nor the codec location is
// applied. Callers pass values already in the calendar's zone, for instance
// from DisplayDate or Today, or convert with t.In(c.Location()) first.
func (c Codec) ToKey(t time.Time) (Key, error) {
	if t.IsZero() {
		return "", fmt.Errorf("%w: zero time", common.ErrInvalidDate)
	}
	return format(t.Date())
}

// DisplayDate returns midnight of the key's day in the codec location.
func (c Codec) DisplayDate(k Key) (time.Time, error) {
	y, m, d, err := k.components()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location()), nil
}

// Parse normalizes typed input or a stored record's date. It accepts
// YYYY-MM-DD and RFC 3339 timestamps; for the latter the date as written
// is kept, whatever the offset.
func (c Codec) Parse(s string) (Key, error) {
	if t, err := time.Parse(Layout, s); err == nil {
		return format(t.Date())
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return c.ToKey(t)
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidDate, s)
}

// Today returns the key of now in the codec location.
func (c Codec) Today(now time.Time) Key {
	k, err := c.ToKey(now.In(c.Location()))
	if err != nil {
		return ""
	}
	return k
}

func format(y int, m time.Month, d int) (Key, error) {
	if y < 1 || y > 9999 {
		return "", fmt.Errorf("%w: year %d out of range", common.ErrInvalidDate, y)
	}
	return Key(fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)), nil
}

// Of returns the key of the given calendar day. Out-of-range days and months
// normalize the way time.Date does.
func Of(year int, month time.Month, day int) (Key, error) {
	return format(time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Date())
}
