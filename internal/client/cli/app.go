package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/api"
	"github.com/dmitrijs2005/daybook/internal/client/config"
	"github.com/dmitrijs2005/daybook/internal/client/services"
	"github.com/dmitrijs2005/daybook/internal/client/session"
	"github.com/dmitrijs2005/daybook/internal/client/storage"
	"github.com/dmitrijs2005/daybook/internal/client/syncer"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/datekey"
	"github.com/dmitrijs2005/daybook/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds one reachability probe.
const pingTimeout = 3 * time.Second

// remote is everything the App needs from the API client.
type remote interface {
	syncer.EntryStore
	services.AuthClient
	services.ExportClient
}

type App struct {
	config        *config.Config
	log           logging.Logger
	db            *sql.DB
	session       *session.Session
	store         syncer.EntryStore
	authService   services.AuthService
	exportService services.ExportService
	codec         datekey.Codec
	ctrl          *syncer.Controller

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	modeMu sync.RWMutex
	mode   Mode
}

// NewApp opens the local database, restores the session and connects the
// API client.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}

	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	sess, err := session.Load(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	apiClient, err := api.New(c.ServerURL, sess, api.WithTimeout(c.RequestTimeout))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, log, sess, apiClient, datekey.NewCodec(loc), bufio.NewReader(os.Stdin), os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, log logging.Logger, sess *session.Session, r remote, codec datekey.Codec, reader *bufio.Reader, out io.Writer) *App {
	a := &App{
		config:        c,
		log:           log,
		session:       sess,
		store:         r,
		authService:   services.NewAuthService(r, sess),
		exportService: services.NewExportService(r),
		codec:         codec,
		reader:        reader,
		out:           out,
		now:           time.Now,
	}
	a.resetController()
	return a
}

// resetController drops all cached entries and the selection.
func (a *App) resetController() {
	a.ctrl = syncer.New(a.store, a.codec, a.log, syncer.WithRequestTimeout(a.config.RequestTimeout))
}

// Close releases the local database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run greets the user, restores the previous session and starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to Daybook (type 'help' for commands)")

	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Logged in as %s\n", a.session.Username())
		a.startSession(ctx)
	} else {
		fmt.Fprintln(a.out, "Not logged in. Use 'login' or 'signup'.")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// startSession loads all entries and selects today.
func (a *App) startSession(ctx context.Context) {
	if err := a.ctrl.LoadAll(ctx); err != nil {
		a.handleError(ctx, err)
		if !a.isLoggedIn() {
			return
		}
	}
	if err := a.Today(ctx); err != nil {
		a.handleError(ctx, err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.IsAuthenticated()
}

// handleError reports err to the user. An expired session is cleared and a
// transport failure flips the client to offline.
func (a *App) handleError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		a.log.Warn(ctx, "request rejected", "error", err)
		if a.isLoggedIn() {
			if cerr := a.authService.Logout(ctx); cerr != nil {
				a.log.Error(ctx, "clearing session failed", "error", cerr)
			}
			a.resetController()
		}
		fmt.Fprintln(a.out, "Not authorized. Please login again.")
	case errors.Is(err, common.ErrTransport):
		a.log.Warn(ctx, "server request failed", "error", err)
		a.setMode(ctx, ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable:", err)
	case errors.Is(err, errInputClosed):
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(ctx, "switched mode", "mode", mode)
	}
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.authService.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		s = a.session.Username()
	}
	if m := a.Mode(); m != "" {
		if s != "" {
			s += " "
		}
		s += string(m)
	}
	if sel := a.ctrl.Snapshot().Selected; !sel.IsZero() {
		if s != "" {
			s += " "
		}
		s += sel.String()
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
