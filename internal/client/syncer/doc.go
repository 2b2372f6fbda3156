// Package syncer keeps the client's entry cache and the current selection
// consistent with the remote entry store.
//
// A Controller owns an entry cache and a selection state. Selecting a day is
// served from the cache when the day is known and fetched otherwise. Saves
// and deletes go to the store first and are reflected locally only once the
// store confirms them, after which the whole cache is reloaded.
//
// The controller holds its lock everywhere except around store calls. A
// response that arrives after the user moved on is dropped for display, and
// a fetched entry is cached only if no save, delete or reload happened while
// the fetch was in flight.
package syncer
