package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/entries"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeRepoManager hands out the same in-memory repositories whatever
// handle it is given.
type fakeRepoManager struct {
	users   *fakeUsersRepo
	entries *fakeEntriesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:   &fakeUsersRepo{byID: map[string]*models.User{}},
		entries: &fakeEntriesRepo{rows: map[string]map[datekey.Key]*models.Entry{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return m.users }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository { return m.entries }

type fakeUsersRepo struct {
	byID map[string]*models.User
	err  error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, v := range f.byID {
		if v.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) find(match func(*models.User) bool) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, v := range f.byID {
		if match(v) {
			cp := *v
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUserName(_ context.Context, name string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.UserName == name })
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

type fakeEntriesRepo struct {
	rows      map[string]map[datekey.Key]*models.Entry
	err       error
	listCalls int
}

func (f *fakeEntriesRepo) Upsert(_ context.Context, e *models.Entry) (*models.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	byDate := f.rows[e.UserID]
	if byDate == nil {
		byDate = map[datekey.Key]*models.Entry{}
		f.rows[e.UserID] = byDate
	}
	cp := *e
	if old, ok := byDate[e.Date]; ok {
		cp.ID = old.ID
	}
	byDate[e.Date] = &cp
	out := cp
	return &out, nil
}

func (f *fakeEntriesRepo) List(_ context.Context, userID string, skip, limit int) ([]*models.Entry, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	all := make([]*models.Entry, 0)
	for _, e := range f.rows[userID] {
		cp := *e
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date > all[j].Date })
	if skip >= len(all) {
		return []*models.Entry{}, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeEntriesRepo) GetByDate(_ context.Context, userID string, date datekey.Key) (*models.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.rows[userID][date]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntriesRepo) DeleteByDate(_ context.Context, userID string, date datekey.Key) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[userID][date]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows[userID], date)
	return nil
}
