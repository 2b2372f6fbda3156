package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/cache"
	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/client/selection"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/dmitrijs2005/daybook/internal/logging"
)

// EntryStore is the remote source of truth for entries.
type EntryStore interface {
	List(ctx context.Context) ([]models.Record, error)
	Get(ctx context.Context, key datekey.Key) (models.Record, error)
	Upsert(ctx context.Context, key datekey.Key, content string) (models.Record, error)
	Delete(ctx context.Context, key datekey.Key) error
}

// Controller orchestrates the cache, the selection and the store.
type Controller struct {
	store   EntryStore
	codec   datekey.Codec
	log     logging.Logger
	timeout time.Duration

	mu    sync.Mutex
	cache *cache.Cache
	sel   *selection.State
	// epoch changes whenever the cache is written by a mutation or a reload.
	epoch uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithRequestTimeout bounds every store call. Zero means no extra bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// New returns a Controller with an empty cache and nothing selected.
func New(store EntryStore, codec datekey.Codec, log logging.Logger, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		codec: codec,
		log:   log,
		cache: cache.New(),
		sel:   selection.New(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Codec returns the date codec the controller normalizes with.
func (c *Controller) Codec() datekey.Codec {
	return c.codec
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// toEntry normalizes a store record. The record's own date wins when it
// parses; fallback is used otherwise.
func (c *Controller) toEntry(ctx context.Context, rec models.Record, fallback datekey.Key) models.Entry {
	key, err := c.codec.Parse(rec.Date)
	if err != nil || (!fallback.IsZero() && key != fallback) {
		c.log.Warn(ctx, "store returned unexpected date", "want", fallback, "got", rec.Date)
		key = fallback
	}
	return models.Entry{ID: rec.ID, Date: key, Content: rec.Content}
}

// LoadAll replaces the cache with the store's full list. Records whose date
// cannot be parsed are skipped. On error the cache is left as it was.
func (c *Controller) LoadAll(ctx context.Context) error {
	return c.loadAll(ctx)
}

// loadAll is LoadAll that, under the same lock as the cache replacement,
// also marks each of absent as having no entry unless the list brought it
// back.
func (c *Controller) loadAll(ctx context.Context, absent ...datekey.Key) error {
	c.mu.Lock()
	start := c.epoch
	c.mu.Unlock()

	rctx, cancel := c.withTimeout(ctx)
	recs, err := c.store.List(rctx)
	cancel()
	if err != nil {
		c.markAbsent(absent)
		return err
	}

	entries := make([]models.Entry, 0, len(recs))
	for _, rec := range recs {
		key, err := c.codec.Parse(rec.Date)
		if err != nil {
			c.log.Warn(ctx, "skipping entry with bad date", "id", rec.ID, "date", rec.Date, "error", err)
			continue
		}
		entries = append(entries, models.Entry{ID: rec.ID, Date: key, Content: rec.Content})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != start {
		c.markAbsentLocked(absent)
		c.log.Debug(ctx, "dropping outdated entry list", "entries", len(entries))
		return nil
	}
	c.cache.PutAll(entries)
	c.markAbsentLocked(absent)
	c.epoch++
	c.refreshDisplayLocked()
	c.log.Debug(ctx, "entries loaded", "entries", len(entries))
	return nil
}

func (c *Controller) markAbsent(keys []datekey.Key) {
	if len(keys) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markAbsentLocked(keys)
}

// markAbsentLocked marks keys the cache does not know as empty. Callers hold
// c.mu.
func (c *Controller) markAbsentLocked(keys []datekey.Key) {
	for _, key := range keys {
		if _, st := c.cache.Get(key); st == cache.Unknown {
			c.cache.MarkAbsent(key)
		}
	}
}

// refreshDisplayLocked shows the cached state of the selected day unless an
// operation on it is still outstanding. Callers hold c.mu.
func (c *Controller) refreshDisplayLocked() {
	key := c.sel.Selected()
	if key.IsZero() || c.sel.Pending() {
		return
	}
	if e, st := c.cache.Get(key); st == cache.Present {
		c.sel.Show(key, &e)
		return
	}
	c.sel.Show(key, nil)
}

// Select makes the day of t the current selection. See SelectKey.
func (c *Controller) Select(ctx context.Context, t time.Time) (*models.Entry, error) {
	key, err := c.codec.ToKey(t)
	if err != nil {
		return nil, err
	}
	return c.SelectKey(ctx, key)
}

// SelectKey makes key the current selection and returns its entry, nil when
// the day has none. Known days are answered from the cache; unknown days are
// fetched from the store while the selection is pending.
func (c *Controller) SelectKey(ctx context.Context, key datekey.Key) (*models.Entry, error) {
	if _, _, err := key.Month(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	seq := c.sel.Begin(key)
	switch e, st := c.cache.Get(key); st {
	case cache.Present:
		c.sel.Resolve(seq, &e)
		c.mu.Unlock()
		c.log.Debug(ctx, "cache hit", "date", key)
		return &e, nil
	case cache.Absent:
		c.sel.Resolve(seq, nil)
		c.mu.Unlock()
		c.log.Debug(ctx, "cache hit, no entry", "date", key)
		return nil, nil
	}
	c.sel.SetPending(true)
	start := c.epoch
	c.mu.Unlock()

	rctx, cancel := c.withTimeout(ctx)
	rec, err := c.store.Get(rctx, key)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case errors.Is(err, common.ErrorNotFound):
		if c.epoch == start {
			c.cache.MarkAbsent(key)
		}
		shown := c.current(key, start, nil)
		if !c.sel.Resolve(seq, shown) {
			c.log.Debug(ctx, "ignoring response for stale selection", "date", key)
		}
		return shown, nil
	case err != nil:
		c.sel.Fail(seq)
		return nil, err
	}

	e := c.toEntry(ctx, rec, key)
	if c.epoch == start {
		c.cache.Put(key, e)
	}
	shown := c.current(key, start, &e)
	if !c.sel.Resolve(seq, shown) {
		c.log.Debug(ctx, "ignoring response for stale selection", "date", key)
	}
	return shown, nil
}

// current picks what to show for key after a fetch that started at epoch
// start. Once the cache has moved on, the fetched value may predate a
// mutation: the cache answers, and a day it does not know shows no entry.
// Callers hold c.mu.
func (c *Controller) current(key datekey.Key, start uint64, fetched *models.Entry) *models.Entry {
	if c.epoch == start {
		return fetched
	}
	if e, st := c.cache.Get(key); st == cache.Present {
		return &e
	}
	return nil
}

// mutation is a save or delete in flight. tracked is set when it counts
// toward the pending state of selection seq.
type mutation struct {
	seq     uint64
	tracked bool
}

// beginMutation counts a mutation of key as pending when key is the current
// selection.
func (c *Controller) beginMutation(key datekey.Key) mutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := mutation{seq: c.sel.Seq()}
	if !key.IsZero() && c.sel.Selected() == key {
		c.sel.SetPending(true)
		m.tracked = true
	}
	return m
}

// endMutation finishes what beginMutation started, unless the selection has
// changed since. Callers hold c.mu.
func (c *Controller) endMutation(m mutation) {
	if m.tracked && c.sel.IsCurrent(m.seq) {
		c.sel.SetPending(false)
	}
}

// Save stores content as the entry of the day of t. Nothing local changes
// until the store confirms the write; the confirmed record is then cached,
// shown if its day is selected, and the cache is reloaded.
func (c *Controller) Save(ctx context.Context, t time.Time, content string) (models.Entry, error) {
	key, err := c.codec.ToKey(t)
	if err != nil {
		return models.Entry{}, err
	}
	return c.SaveKey(ctx, key, content)
}

// SaveKey is Save for an already normalized key.
func (c *Controller) SaveKey(ctx context.Context, key datekey.Key, content string) (models.Entry, error) {
	if _, _, err := key.Month(); err != nil {
		return models.Entry{}, err
	}

	m := c.beginMutation(key)

	rctx, cancel := c.withTimeout(ctx)
	rec, err := c.store.Upsert(rctx, key, content)
	cancel()

	if err != nil {
		c.mu.Lock()
		c.endMutation(m)
		c.mu.Unlock()
		return models.Entry{}, err
	}

	e := c.toEntry(ctx, rec, key)

	c.mu.Lock()
	c.cache.Put(key, e)
	c.epoch++
	c.sel.Show(key, &e)
	c.endMutation(m)
	c.mu.Unlock()

	c.log.Info(ctx, "entry saved", "date", key, "id", e.ID)

	if err := c.LoadAll(ctx); err != nil {
		c.log.Warn(ctx, "reload after save failed", "error", err)
	}
	return e, nil
}

// Delete removes the entry of the day of t. A day that already has no entry
// on the store counts as deleted. Afterwards the cache is reloaded and the
// day is known to be empty.
func (c *Controller) Delete(ctx context.Context, t time.Time) error {
	key, err := c.codec.ToKey(t)
	if err != nil {
		return err
	}
	return c.DeleteKey(ctx, key)
}

// DeleteKey is Delete for an already normalized key.
func (c *Controller) DeleteKey(ctx context.Context, key datekey.Key) error {
	if _, _, err := key.Month(); err != nil {
		return err
	}

	m := c.beginMutation(key)

	rctx, cancel := c.withTimeout(ctx)
	err := c.store.Delete(rctx, key)
	cancel()

	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		c.mu.Lock()
		c.endMutation(m)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.cache.MarkAbsent(key)
	c.epoch++
	c.sel.ClearIfShowing(key)
	c.endMutation(m)
	c.mu.Unlock()

	c.log.Info(ctx, "entry deleted", "date", key)

	if err := c.loadAll(ctx, key); err != nil {
		c.log.Warn(ctx, "reload after delete failed", "error", err)
	}
	return nil
}

// Snapshot returns the current selection for display.
func (c *Controller) Snapshot() selection.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Snapshot()
}

// HasEntry reports whether the cache holds an entry for key.
func (c *Controller) HasEntry(key datekey.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Has(key)
}

// EntryFor returns the cached entry for key and what the cache knows.
func (c *Controller) EntryFor(key datekey.Key) (models.Entry, cache.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(key)
}

// Entries returns all cached entries, newest first.
func (c *Controller) Entries() []models.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Entries()
}
