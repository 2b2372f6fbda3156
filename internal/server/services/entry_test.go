package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntryService(t *testing.T, rm *fakeRepoManager, limit int) *EntryService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewEntryService(db, rm, &config.Config{ListLimit: limit})
}

func TestEntryService_UpsertKeepsOneEntryPerDay(t *testing.T) {
	rm := newFakeRepoManager()
	s := newEntryService(t, rm, 10)
	ctx := context.Background()

	first, err := s.Upsert(ctx, "u1", "2024-03-10", "a")
	require.NoError(t, err)
	second, err := s.Upsert(ctx, "u1", "2024-03-10", "b")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	list, err := s.List(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Content)
}

func TestEntryService_Upsert_RejectsEmptyDate(t *testing.T) {
	s := newEntryService(t, newFakeRepoManager(), 10)
	_, err := s.Upsert(context.Background(), "u1", "", "x")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestEntryService_ListClampsAndValidates(t *testing.T) {
	rm := newFakeRepoManager()
	s := newEntryService(t, rm, 2)
	ctx := context.Background()

	for _, d := range []datekey.Key{"2024-03-01", "2024-03-02", "2024-03-03"} {
		_, err := s.Upsert(ctx, "u1", d, string(d))
		require.NoError(t, err)
	}

	page, err := s.List(ctx, "u1", 0, 500)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, datekey.Key("2024-03-03"), page[0].Date)

	page, err = s.List(ctx, "u1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, datekey.Key("2024-03-01"), page[0].Date)

	_, err = s.List(ctx, "u1", -1, 2)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestEntryService_AllPagesUntilShortPage(t *testing.T) {
	rm := newFakeRepoManager()
	s := newEntryService(t, rm, 2)
	ctx := context.Background()

	for _, d := range []datekey.Key{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04"} {
		_, err := s.Upsert(ctx, "u1", d, "x")
		require.NoError(t, err)
	}

	all, err := s.All(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	// two full pages and one empty page
	assert.Equal(t, 3, rm.entries.listCalls)
}

func TestEntryService_GetAndDelete(t *testing.T) {
	rm := newFakeRepoManager()
	s := newEntryService(t, rm, 10)
	ctx := context.Background()

	_, err := s.Upsert(ctx, "u1", "2024-03-10", "hello")
	require.NoError(t, err)

	e, err := s.Get(ctx, "u1", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, "hello", e.Content)

	_, err = s.Get(ctx, "u2", "2024-03-10")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, s.Delete(ctx, "u1", "2024-03-10"))
	assert.ErrorIs(t, s.Delete(ctx, "u1", "2024-03-10"), common.ErrorNotFound)
}

func TestEntryService_RepoError(t *testing.T) {
	rm := newFakeRepoManager()
	rm.entries.err = errors.New("down")
	s := newEntryService(t, rm, 10)

	_, err := s.Upsert(context.Background(), "u1", "2024-03-10", "x")
	assert.ErrorContains(t, err, "error saving entry")
	_, err = s.All(context.Background(), "u1")
	assert.Error(t, err)
}

func TestNewEntryService_DefaultLimit(t *testing.T) {
	s := newEntryService(t, newFakeRepoManager(), 0)
	assert.Equal(t, common.DefaultPageSize, s.listLimit)
}
