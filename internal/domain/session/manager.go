package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// State is the lifecycle state of the manager.
type State int

const (
	// StateLoggedOut means no session is active.
	StateLoggedOut State = iota
	// StateLoggedIn means a session is active and the default header is set.
	StateLoggedIn
)

// String returns the lowercase state name.
func (s State) String() string {
	if s == StateLoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// ErrMissingToken is returned by Login when the payload carries no token.
var ErrMissingToken = errors.New("login payload carries no token")

// Manager orchestrates the session lifecycle: it owns the in-memory session
// value and keeps the credential store, the facade's default Authorization
// header, and the expiry scheduler in lockstep.
//
// Invariant: a session is persisted if and only if the default Authorization
// header is set. Every transition maintains both sides before returning.
type Manager struct {
	store   CredentialStore
	headers AuthHeaderSetter
	sched   *Scheduler
	alerts  AlertSink
	nav     Navigator
	logger  *slog.Logger

	mu      sync.Mutex
	sess    *Session
	closers []func()
}

// Options configures a Manager. Store and Headers are required; everything
// else defaults to a no-op or system implementation.
type Options struct {
	Store     CredentialStore
	Headers   AuthHeaderSetter
	Clock     Clock
	Alerts    AlertSink
	Navigator Navigator
	Logger    *slog.Logger
}

// NewManager builds a Manager and reconstructs its state from the credential
// store: LoggedIn with the scheduler re-armed when a session is present,
// LoggedOut otherwise. A store that cannot be read is treated as empty, never
// as a startup failure. A stored token that is undecodable or already expired
// bounces straight back to LoggedOut with an alert, via the scheduler's
// fail-fast path.
func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("session: Options.Store is required")
	}
	if opts.Headers == nil {
		return nil, errors.New("session: Options.Headers is required")
	}
	if opts.Alerts == nil {
		opts.Alerts = NopAlertSink{}
	}
	if opts.Navigator == nil {
		opts.Navigator = NopNavigator{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := &Manager{
		store:   opts.Store,
		headers: opts.Headers,
		sched:   NewScheduler(opts.Clock, opts.Logger),
		alerts:  opts.Alerts,
		nav:     opts.Navigator,
		logger:  opts.Logger,
	}

	sess, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("credential store unreadable, starting logged out", "error", err)
		sess = nil
	}
	if sess == nil {
		m.headers.ClearDefaultAuthorization()
		return m, nil
	}

	m.mu.Lock()
	m.sess = sess
	m.headers.SetDefaultAuthorization(sess.Token)
	m.mu.Unlock()

	m.sched.Schedule(sess.Token, m.expire)
	return m, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess != nil {
		return StateLoggedIn
	}
	return StateLoggedOut
}

// Current returns a copy of the active session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Clone()
}

// Login installs a server-issued session: persist, set the default header,
// arm the expiry timer, then move the caller into the authenticated area.
// The store write and header update complete before Login returns, so the
// very next outbound request already carries the new credential.
//
// A token whose claims cannot be decoded is still accepted here; the
// scheduler's fail-fast path then drives an immediate invalidation, so the
// net observable effect is a bounce back to LoggedOut with an alert.
func (m *Manager) Login(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrMissingToken
	}
	sess = sess.Clone()

	m.mu.Lock()
	if err := m.store.Save(ctx, sess); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	m.headers.SetDefaultAuthorization(sess.Token)
	m.sess = sess
	m.mu.Unlock()

	m.logger.Info("logged in")
	m.sched.Schedule(sess.Token, m.expire)

	if m.State() == StateLoggedIn {
		m.nav.ToAuthenticated()
	}
	return nil
}

// Logout ends the session: cancel the expiry timer first so it can never
// fire against a session that is already gone, then clear the store and the
// default header, then navigate to the login surface. Idempotent: a no-op
// when already logged out.
func (m *Manager) Logout(ctx context.Context) error {
	m.sched.Cancel()

	m.mu.Lock()
	if m.sess == nil {
		m.mu.Unlock()
		return nil
	}
	m.clearLocked(ctx)
	m.mu.Unlock()

	m.logger.Info("logged out")
	m.nav.ToLogin()
	return nil
}

// HandleInvalidation is Logout plus a user-visible alert carrying the
// reason. Called by the expiry scheduler and the response interceptor.
// Idempotent: when already logged out it publishes no duplicate alert.
func (m *Manager) HandleInvalidation(ctx context.Context, reason Reason) {
	m.sched.Cancel()

	m.mu.Lock()
	if m.sess == nil {
		m.mu.Unlock()
		return
	}
	m.clearLocked(ctx)
	m.mu.Unlock()

	m.logger.Warn("session invalidated", "reason", reason.String())
	m.alerts.Publish(reason.String(), reason.Message())
	m.nav.ToLogin()
}

// clearLocked tears down session state. Caller holds m.mu. A store that
// cannot be cleared is logged and otherwise ignored: invalidation must
// never propagate as a failure.
func (m *Manager) clearLocked(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear credential store", "error", err)
	}
	m.headers.ClearDefaultAuthorization()
	m.sess = nil
}

// TimerArmed reports whether an expiry timer is currently pending.
func (m *Manager) TimerArmed() bool {
	return m.sched.Armed()
}

// OnClose registers a cleanup to run when the manager is closed, such as
// deregistering the facade's response hook. Cleanups run in reverse order.
func (m *Manager) OnClose(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, fn)
}

// Close cancels any pending expiry timer and runs registered cleanups. It
// does not log the user out: a closed manager leaves the persisted session
// for the next mount to rehydrate.
func (m *Manager) Close() {
	m.sched.Cancel()

	m.mu.Lock()
	closers := m.closers
	m.closers = nil
	m.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func (m *Manager) expire(r Reason) {
	m.HandleInvalidation(context.Background(), r)
}
