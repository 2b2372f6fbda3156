package syncer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
)

// fakeStore is an in-memory EntryStore. Get calls for keys with a gate block
// until the gate is closed; started receives the key of every Get. With
// listGate set, List signals listStarted and blocks until listGate closes.
type fakeStore struct {
	mu      sync.Mutex
	records map[datekey.Key]models.Record
	nextID  int
	calls   map[string]int

	gates   map[datekey.Key]chan struct{}
	started chan datekey.Key

	listGate    chan struct{}
	listStarted chan struct{}

	listErr   error
	getErr    error
	upsertErr error
	deleteErr error
	// listExtra is appended to every List result.
	listExtra []models.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[datekey.Key]models.Record),
		calls:   make(map[string]int),
		gates:   make(map[datekey.Key]chan struct{}),
		started: make(chan datekey.Key, 16),
	}
}

func (f *fakeStore) seed(date, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.records[datekey.Key(date)] = models.Record{ID: models.EntryID(fmt.Sprint(f.nextID)), Date: date, Content: content}
}

func (f *fakeStore) gate(key datekey.Key) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeStore) gateList() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listGate = make(chan struct{})
	f.listStarted = make(chan struct{}, 4)
	return f.listGate
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) List(ctx context.Context) ([]models.Record, error) {
	f.mu.Lock()
	gate, started := f.listGate, f.listStarted
	f.mu.Unlock()

	if gate != nil {
		started <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Record, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return append(out, f.listExtra...), nil
}

func (f *fakeStore) Get(ctx context.Context, key datekey.Key) (models.Record, error) {
	f.mu.Lock()
	f.calls["get"]++
	gate := f.gates[key]
	f.mu.Unlock()

	f.started <- key
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.Record{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return models.Record{}, f.getErr
	}
	r, ok := f.records[key]
	if !ok {
		return models.Record{}, fmt.Errorf("get %s: %w", key, common.ErrorNotFound)
	}
	return r, nil
}

func (f *fakeStore) Upsert(ctx context.Context, key datekey.Key, content string) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["upsert"]++
	if f.upsertErr != nil {
		return models.Record{}, f.upsertErr
	}
	r, ok := f.records[key]
	if !ok {
		f.nextID++
		r = models.Record{ID: models.EntryID(fmt.Sprint(f.nextID)), Date: key.String()}
	}
	r.Content = content
	f.records[key] = r
	return r, nil
}

func (f *fakeStore) Delete(ctx context.Context, key datekey.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.records[key]; !ok {
		return fmt.Errorf("delete %s: %w", key, common.ErrorNotFound)
	}
	delete(f.records, key)
	return nil
}
