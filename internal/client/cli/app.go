package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/saveeat/saveeat-client/internal/client/client"
	"github.com/saveeat/saveeat-client/internal/client/config"
	"github.com/saveeat/saveeat-client/internal/client/services"
	"github.com/saveeat/saveeat-client/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	sessions  services.SessionStore
	domain    services.DomainStore
	documents services.DocumentService
	closeFn   func() error
	now       func() time.Time

	reader *bufio.Reader
	out    io.Writer

	modeMu sync.RWMutex
	mode   Mode
}

// NewApp opens local storage, builds the remote client and wires both stores
// together: every session change is pushed to the domain store.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "dsn", c.DatabaseDSN, "error", err)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(client.Options{
		BaseURL: c.ServerBaseURL,
		Timeout: c.RequestTimeout,
		Logger:  log,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	sessions := services.NewSessionStore(apiClient, db, []byte(c.StorageSecret), log)
	domain := services.NewDomainStore(apiClient, db, c.CO2PerListingKg, log)
	sessions.Subscribe(domain.OnSessionChange)

	return &App{
		config:    c,
		log:       log,
		sessions:  sessions,
		domain:    domain,
		documents: services.NewDocumentService(apiClient, log),
		closeFn: func() error {
			return errors.Join(apiClient.Close(), db.Close())
		},
		now:    time.Now,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		mode:   ModeOnline,
	}, nil
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
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

// Run restores the stored session, starts background refresh when
// configured and blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.sessions.Init(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	a.trackErr(ctx, a.domain.Err())

	watchCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if a.config.RefreshInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.StartRefreshWatcher(watchCtx, a.config.RefreshInterval)
		}()
	}

	runREPL(ctx, a, a.status, a.reader)
	cancel()
	wg.Wait()
	return nil
}

func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	err := a.closeFn()
	a.closeFn = nil
	return err
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Session().Authenticated()
}

func (a *App) status() string {
	sess := a.sessions.Session()
	if !sess.Authenticated() {
		return fmt.Sprintf("%s, guest", a.Mode())
	}
	role := string(sess.Role)
	if role == "" {
		role = "no role"
	}
	return fmt.Sprintf("%s, %s (%s)", a.Mode(), sess.User.Email, role)
}

// trackErr derives the connectivity mode from the outcome of a remote call.
func (a *App) trackErr(ctx context.Context, err error) {
	switch {
	case err == nil:
		a.setMode(ctx, ModeOnline)
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ctx, ModeOffline)
	}
}

// StartRefreshWatcher periodically reloads the domain cache while a user is
// signed in, switching between online and offline mode on the way.
func (a *App) StartRefreshWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if sess := a.sessions.Session(); !sess.Authenticated() || !sess.Role.Valid() {
				continue
			}
			rctx, cancel := a.requestCtx(ctx)
			err := a.domain.Refresh(rctx)
			cancel()
			a.trackErr(ctx, err)
			if err != nil {
				a.log.Debug(ctx, "background refresh failed", "error", err)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) requestCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
