// Package selection tracks which day the user is looking at, the entry shown
// for it and whether an operation on it is in flight.
//
// Every Begin hands out a new sequence number. Resolve and Fail carry the
// number of the selection they answer and are ignored once a newer selection
// has started, so a late response can never overwrite the current view.
//
// Pending counts the operations outstanding for the current selection: a
// fetch and any saves or deletes of the selected day. The selection is
// pending until the last of them finishes.
package selection

import (
	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/datekey"
)

// Snapshot is a read-only copy of the selection for the view.
type Snapshot struct {
	Selected datekey.Key
	Entry    *models.Entry
	Pending  bool
}

// HasSelection reports whether a day is selected.
func (s Snapshot) HasSelection() bool {
	return !s.Selected.IsZero()
}

// State is owned by the sync controller; it is not safe for concurrent use.
type State struct {
	selected  datekey.Key
	displayed *models.Entry
	inflight  int
	seq       uint64
}

// New returns a State with nothing selected.
func New() *State {
	return &State{}
}

// Begin selects key, clears the displayed entry and returns the new
// selection's sequence number.
func (s *State) Begin(key datekey.Key) uint64 {
	s.seq++
	s.selected = key
	s.displayed = nil
	s.inflight = 0
	return s.seq
}

// Seq returns the current selection's sequence number.
func (s *State) Seq() uint64 {
	return s.seq
}

// Selected returns the selected key.
func (s *State) Selected() datekey.Key {
	return s.selected
}

// IsCurrent reports whether seq still names the current selection.
func (s *State) IsCurrent(seq uint64) bool {
	return seq == s.seq
}

// Resolve shows e (nil for "no entry") for selection seq and finishes one
// pending operation. It returns false and changes nothing when seq is stale.
func (s *State) Resolve(seq uint64, e *models.Entry) bool {
	if !s.IsCurrent(seq) {
		return false
	}
	s.show(e)
	s.SetPending(false)
	return true
}

// Fail clears the display for selection seq and finishes one pending
// operation. Stale sequence numbers are ignored.
func (s *State) Fail(seq uint64) bool {
	if !s.IsCurrent(seq) {
		return false
	}
	s.displayed = nil
	s.SetPending(false)
	return true
}

// SetPending starts (true) or finishes (false) one operation of the current
// selection.
func (s *State) SetPending(p bool) {
	switch {
	case p:
		s.inflight++
	case s.inflight > 0:
		s.inflight--
	}
}

// Pending reports whether an operation of the current selection is
// outstanding.
func (s *State) Pending() bool {
	return s.inflight > 0
}

// Show replaces the displayed entry if key is still selected.
func (s *State) Show(key datekey.Key, e *models.Entry) bool {
	if key != s.selected || key.IsZero() {
		return false
	}
	s.show(e)
	return true
}

// ClearIfShowing clears the display when it shows key.
func (s *State) ClearIfShowing(key datekey.Key) bool {
	if s.displayed == nil || s.displayed.Date != key {
		return false
	}
	s.displayed = nil
	return true
}

// Snapshot returns a copy safe to hand to the view.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{Selected: s.selected, Pending: s.Pending()}
	if s.displayed != nil {
		e := *s.displayed
		snap.Entry = &e
	}
	return snap
}

func (s *State) show(e *models.Entry) {
	if e == nil {
		s.displayed = nil
		return
	}
	cp := *e
	s.displayed = &cp
}
