package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, addr string) (*App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	return &App{
		config:  &config.Config{EndpointAddr: addr},
		logger:  logging.NewNopLogger(),
		db:      db,
		handler: http.NotFoundHandler(),
	}, mock
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, mock := newTestApp(t, "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunReturnsOnListenError(t *testing.T) {
	app, mock := newTestApp(t, "256.0.0.1:-1")

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after listen error")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
