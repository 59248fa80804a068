// Package services holds the client's state containers: SessionStore owns
// the authenticated identity, DomainStore the listings, reservations and
// directory cache, DocumentService the verification upload.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saveeat/saveeat-client/internal/client/client"
	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/saveeat/saveeat-client/internal/client/repositories/metadata"
	"github.com/saveeat/saveeat-client/internal/common"
	"github.com/saveeat/saveeat-client/internal/cryptox"
	"github.com/saveeat/saveeat-client/internal/logging"
)

// SessionListener observes every Session change. It is called synchronously
// after the change, outside the store lock, with a private copy.
type SessionListener func(ctx context.Context, s models.Session)

// AuthResult is the outcome of SignIn and SignUp. Failures are reported in
// the result, never as a panic or a bare transport error, so that callers
// can render Message inline.
type AuthResult struct {
	Success bool
	User    *models.User
	Message string
	Err     error
}

// SessionStore owns the authenticated identity of the running client.
//
// Contract:
//   - Init: cold start from durable storage; validates the token remotely.
//   - SignIn/SignUp: populate and persist the session.
//   - SignOut: idempotent; always clears local state.
//   - SetRole/UpdateProfile: apply and persist locally, then sync remotely
//     and report the outcome as a SyncStatus.
type SessionStore interface {
	Init(ctx context.Context) error
	SignIn(ctx context.Context, email, password string) AuthResult
	SignUp(ctx context.Context, draft models.SignUpDraft) AuthResult
	SignOut(ctx context.Context) error
	SetRole(ctx context.Context, role models.Role) (models.SyncStatus, error)
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.SyncStatus, error)
	Session() models.Session
	Subscribe(fn SessionListener)
}

type sessionStore struct {
	client client.Client
	db     *sql.DB
	secret []byte
	log    logging.Logger
	now    func() time.Time

	mu        sync.RWMutex
	session   models.Session
	sealer    cryptox.Sealer
	listeners []SessionListener
}

// NewSessionStore binds a SessionStore to the remote client and the local
// database. A non-empty secret seals the persisted token.
func NewSessionStore(c client.Client, db *sql.DB, secret []byte, log logging.Logger) SessionStore {
	if log == nil {
		log = logging.Nop()
	}
	return &sessionStore{
		client: c,
		db:     db,
		secret: secret,
		log:    log.With("component", "session"),
		now:    time.Now,
	}
}

func (s *sessionStore) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *sessionStore) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

func (s *sessionStore) Subscribe(fn SessionListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// set replaces the session and notifies listeners.
func (s *sessionStore) set(ctx context.Context, fn func(sess *models.Session)) models.Session {
	s.mu.Lock()
	fn(&s.session)
	snapshot := s.session.Clone()
	listeners := append([]SessionListener(nil), s.listeners...)
	s.mu.Unlock()

	s.log.Debug(ctx, "session changed", "state", snapshot.State(), "sync", snapshot.ProfileSync)
	for _, l := range listeners {
		l(ctx, snapshot.Clone())
	}
	return snapshot
}

// Init restores the session persisted by a previous run. A missing or
// expired token, or one the server rejects, leaves the session anonymous and
// wipes storage. When the server cannot be reached the persisted session is
// kept as is.
func (s *sessionStore) Init(ctx context.Context) error {
	s.set(ctx, func(sess *models.Session) {
		*sess = models.Session{Loading: true}
	})

	stored, err := s.load(ctx)
	if err != nil {
		s.finishAnonymous(ctx)
		return fmt.Errorf("load session: %w", err)
	}

	if stored.Token == "" || stored.User == nil {
		s.log.Debug(ctx, "no persisted session")
		s.finishAnonymous(ctx)
		return nil
	}

	if tokenExpired(stored.Token, s.now()) {
		s.log.Info(ctx, "persisted token expired, signing out")
		return s.forceSignOut(ctx)
	}

	s.client.SetToken(stored.Token)

	profile, err := s.client.GetProfile(ctx)
	switch {
	case err == nil:
		stored.User = &profile
		if !stored.Role.Valid() {
			stored.Role = profile.Role
		}
		stored.User.Role = stored.Role
		if err := s.persist(ctx, stored); err != nil {
			s.log.Error(ctx, "persist restored session", "error", err)
		}
	case errors.Is(err, client.ErrUnauthorized):
		s.log.Info(ctx, "persisted token rejected, signing out")
		return s.forceSignOut(ctx)
	default:
		s.log.Warn(ctx, "profile validation failed, restoring offline session", "error", err)
	}

	s.set(ctx, func(sess *models.Session) {
		*sess = stored
		sess.Initialized = true
		sess.Loading = false
	})
	return nil
}

func (s *sessionStore) finishAnonymous(ctx context.Context) {
	s.client.SetToken("")
	s.set(ctx, func(sess *models.Session) {
		*sess = models.Session{Initialized: true}
	})
}

func (s *sessionStore) forceSignOut(ctx context.Context) error {
	err := s.clear(ctx)
	s.finishAnonymous(ctx)
	return err
}

func (s *sessionStore) SignIn(ctx context.Context, email, password string) AuthResult {
	email = strings.TrimSpace(email)
	if email == "" {
		return failed(invalid("email", "must not be empty"))
	}
	if password == "" {
		return failed(invalid("password", "must not be empty"))
	}

	s.setLoading(ctx, true)
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.log.Warn(ctx, "sign in failed", "error", err)
		s.setLoading(ctx, false)
		return failed(err)
	}
	if res.Token == "" {
		s.setLoading(ctx, false)
		return failed(fmt.Errorf("login: %w: no token", client.ErrMalformedResponse))
	}

	return s.authenticate(ctx, res, models.RoleNone)
}

func (s *sessionStore) SignUp(ctx context.Context, draft models.SignUpDraft) AuthResult {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Email = strings.TrimSpace(draft.Email)
	if err := validateStruct(draft); err != nil {
		return failed(err)
	}

	s.setLoading(ctx, true)
	res, err := s.client.Register(ctx, draft)
	if err != nil {
		s.log.Warn(ctx, "sign up failed", "error", err)
		s.setLoading(ctx, false)
		return failed(err)
	}

	if res.Token == "" {
		s.setLoading(ctx, false)
		u := res.User
		return AuthResult{Success: true, User: &u, Message: "Account created. Sign in to continue."}
	}

	return s.authenticate(ctx, res, draft.Role)
}

// authenticate installs a freshly obtained credential. A role already held
// by the same user wins over whatever the server reports.
func (s *sessionStore) authenticate(ctx context.Context, res *client.AuthResponse, fallbackRole models.Role) AuthResult {
	current := s.Session()

	next := models.Session{Token: res.Token, Initialized: true}
	user := res.User
	next.User = &user

	sameUser := current.User != nil && current.User.ID == user.ID

	switch {
	case sameUser && current.Role.Valid():
		next.Role = current.Role
	case user.Role.Valid():
		next.Role = user.Role
	case fallbackRole.Valid():
		next.Role = fallbackRole
	}
	next.User.Role = next.Role

	s.client.SetToken(res.Token)
	if err := s.persist(ctx, next); err != nil {
		s.log.Error(ctx, "persist session", "error", err)
	}

	snapshot := s.set(ctx, func(sess *models.Session) { *sess = next })
	return AuthResult{Success: true, User: snapshot.User}
}

func (s *sessionStore) setLoading(ctx context.Context, loading bool) {
	s.set(ctx, func(sess *models.Session) { sess.Loading = loading })
}

func failed(err error) AuthResult {
	return AuthResult{Message: client.Message(err), Err: err}
}

// SignOut asks the server to invalidate the token and clears local state
// whatever the server answers.
func (s *sessionStore) SignOut(ctx context.Context) error {
	if s.Session().Token != "" {
		if err := s.client.Logout(ctx); err != nil {
			s.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	err := s.clear(ctx)
	s.finishAnonymous(ctx)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SetRole applies role locally, then pushes it to the profile. The local
// role stays in place when the push fails; the returned status tells.
func (s *sessionStore) SetRole(ctx context.Context, role models.Role) (models.SyncStatus, error) {
	if !role.Valid() {
		return models.SyncNone, invalid("role", "must be restaurant or association")
	}

	current := s.Session()
	if !current.Authenticated() {
		return models.SyncNone, common.ErrNotAuthenticated
	}

	current.Role = role
	current.User.Role = role
	current.ProfileSync = models.SyncPending
	if err := s.persist(ctx, current); err != nil {
		return models.SyncNone, fmt.Errorf("persist role: %w", err)
	}
	s.set(ctx, func(sess *models.Session) {
		sess.Role = role
		if sess.User != nil {
			sess.User.Role = role
		}
		sess.ProfileSync = models.SyncPending
	})

	_, err := s.client.UpdateProfile(ctx, client.ProfileUpdate{Role: role})
	return s.finishSync(ctx, "role", err, nil), nil
}

// UpdateProfile merges patch into the user, persists it and pushes it to the
// server. Like SetRole it never rolls the local change back.
func (s *sessionStore) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.SyncStatus, error) {
	if patch.Empty() {
		return models.SyncNone, invalid("profile", "nothing to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return models.SyncNone, invalid("name", "must not be empty")
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return models.SyncNone, invalid("email", "must not be empty")
	}
	if err := validateStruct(patch); err != nil {
		return models.SyncNone, err
	}

	current := s.Session()
	if !current.Authenticated() {
		return models.SyncNone, common.ErrNotAuthenticated
	}

	merged := patch.Apply(*current.User)
	current.User = &merged
	current.ProfileSync = models.SyncPending
	if err := s.persist(ctx, current); err != nil {
		return models.SyncNone, fmt.Errorf("persist profile: %w", err)
	}
	s.set(ctx, func(sess *models.Session) {
		if sess.User != nil {
			u := patch.Apply(*sess.User)
			sess.User = &u
		}
		sess.ProfileSync = models.SyncPending
	})

	echoed, err := s.client.UpdateProfile(ctx, client.ProfileUpdate{ProfilePatch: patch})
	var echo *models.User
	if err == nil && echoed.ID != "" {
		echo = &echoed
	}
	return s.finishSync(ctx, "profile", err, echo), nil
}

// finishSync records the outcome of the remote half of a two-phase update.
// A server echo refreshes the profile but never the role.
func (s *sessionStore) finishSync(ctx context.Context, what string, err error, echo *models.User) models.SyncStatus {
	status := models.SyncSynced
	if err != nil {
		status = models.SyncFailed
		s.log.Warn(ctx, "remote profile update failed", "field", what, "sync", status, "error", err)
	}

	snapshot := s.set(ctx, func(sess *models.Session) {
		sess.ProfileSync = status
		if echo != nil && sess.User != nil {
			u := *echo
			u.Role = sess.Role
			sess.User = &u
		}
	})

	if echo != nil {
		if err := s.persist(ctx, snapshot); err != nil {
			s.log.Error(ctx, "persist synced profile", "error", err)
		}
	}
	return status
}

// tokenExpired reads the exp claim without verifying the signature; the
// server remains the judge of validity. Opaque tokens never expire locally.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
