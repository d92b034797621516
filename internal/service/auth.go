package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bozoruz/internal/domain"
	"bozoruz/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLoginLatency emulates the round trip of a real identity provider
const DefaultLoginLatency = 500 * time.Millisecond

// MockAccounts is the fixed directory login looks emails up in
var MockAccounts = []domain.User{
	{
		ID:      "1",
		Name:    "Admin Adminov",
		Email:   "admin@bozoruz.com",
		Phone:   "+998901234567",
		IsAdmin: true,
	},
	{
		ID:    "2",
		Name:  "Foydalanuvchi",
		Email: "user@example.com",
		Phone: "+998907654321",
	},
}

// Auth holds the current session and performs the mock credential operations.
// Session changes are persisted through the SessionRepository under one key.
type Auth struct {
	mu          sync.Mutex
	session     domain.Session
	directory   []domain.User
	repo        repository.SessionRepository
	key         string
	latency     time.Duration
	newID       func() string
	logger      *zap.Logger
	subscribers map[int]func(domain.Session)
	nextSubID   int
}

// AuthOption configures an Auth
type AuthOption func(*Auth)

// WithLatency sets the simulated delay of Login and Register; zero disables it
func WithLatency(d time.Duration) AuthOption {
	return func(a *Auth) { a.latency = d }
}

// WithSessionKey sets the namespace the session is persisted under.
// An empty key keeps repository.DefaultSessionKey.
func WithSessionKey(key string) AuthOption {
	return func(a *Auth) {
		if key != "" {
			a.key = key
		}
	}
}

// WithDirectory replaces the accounts Login accepts
func WithDirectory(users []domain.User) AuthOption {
	return func(a *Auth) {
		a.directory = append([]domain.User(nil), users...)
	}
}

// WithAuthLogger sets the logger used for persistence warnings
func WithAuthLogger(logger *zap.Logger) AuthOption {
	return func(a *Auth) { a.logger = logger }
}

// WithIDGenerator replaces the id source used by Register
func WithIDGenerator(fn func() string) AuthOption {
	return func(a *Auth) { a.newID = fn }
}

// NewAuth creates an anonymous Auth. Call Restore to pick up a persisted session.
func NewAuth(repo repository.SessionRepository, opts ...AuthOption) *Auth {
	if repo == nil {
		repo = repository.NewMemorySessionRepository()
	}
	a := &Auth{
		session:     domain.AnonymousSession(),
		directory:   MockAccounts,
		repo:        repo,
		key:         repository.DefaultSessionKey,
		latency:     DefaultLoginLatency,
		newID:       uuid.NewString,
		logger:      zap.NewNop(),
		subscribers: make(map[int]func(domain.Session)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Restore loads the persisted session, if any
func (a *Auth) Restore(ctx context.Context) error {
	stored, err := a.repo.Load(ctx, a.key)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	a.mu.Lock()
	a.session = stored.Normalize()
	a.mu.Unlock()
	return nil
}

// Login looks email up in the directory. The password is accepted but never
// checked. A miss returns false and leaves the session unchanged. The only
// error is the context's, when it ends during the simulated latency.
func (a *Auth) Login(ctx context.Context, email, password string) (bool, error) {
	if err := a.wait(ctx); err != nil {
		return false, err
	}

	user, ok := a.lookup(email)
	if !ok {
		a.logger.Debug("Login rejected", zap.String("email", email))
		return false, nil
	}

	a.replace(ctx, domain.NewSession(user))
	a.logger.Info("User logged in", zap.String("user_id", user.ID))
	return true, nil
}

// Register always succeeds: it creates a non-admin user with a fresh id and
// makes it the session. Duplicate emails are allowed.
func (a *Auth) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	user := domain.User{
		ID:      a.newID(),
		Name:    name,
		Email:   email,
		IsAdmin: false,
	}
	a.replace(ctx, domain.NewSession(user))
	a.logger.Info("User registered", zap.String("user_id", user.ID))
	return &user, nil
}

// Logout clears the session
func (a *Auth) Logout(ctx context.Context) {
	a.replace(ctx, domain.AnonymousSession())
}

// UpdateProfile merges update into the current user. Without a session it is
// a no-op and reports false.
func (a *Auth) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, bool) {
	var updated domain.User
	ok := a.change(ctx, func(current domain.Session) (domain.Session, bool) {
		if current.User == nil {
			return current, false
		}
		updated = update.Apply(*current.User)
		return domain.NewSession(updated), true
	})
	if !ok {
		return nil, false
	}
	return &updated, true
}

// Session returns a copy of the current session
func (a *Auth) Session() domain.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Clone()
}

// CurrentUser returns the session user, if any
func (a *Auth) CurrentUser() (*domain.User, bool) {
	s := a.Session()
	return s.User, s.Authenticated
}

// IsAuthenticated reports whether a user is logged in
func (a *Auth) IsAuthenticated() bool {
	return a.Session().Authenticated
}

// Subscribe registers fn to receive the session after every change
func (a *Auth) Subscribe(fn func(domain.Session)) (cancel func()) {
	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

func (a *Auth) replace(ctx context.Context, next domain.Session) {
	a.change(ctx, func(domain.Session) (domain.Session, bool) {
		return next, true
	})
}

// change applies fn and persists the result under the lock so saves land in
// the same order as the transitions. Subscribers run after the lock is released.
func (a *Auth) change(ctx context.Context, fn func(domain.Session) (domain.Session, bool)) bool {
	a.mu.Lock()
	next, ok := fn(a.session.Clone())
	if !ok {
		a.mu.Unlock()
		return false
	}
	a.session = next.Normalize()
	snap := a.session.Clone()

	if err := a.repo.Save(context.WithoutCancel(ctx), a.key, &snap); err != nil {
		a.logger.Warn("Failed to persist session", zap.String("key", a.key), zap.Error(err))
	}

	subs := make([]func(domain.Session), 0, len(a.subscribers))
	for _, sub := range a.subscribers {
		subs = append(subs, sub)
	}
	a.mu.Unlock()

	for _, sub := range subs {
		sub(snap.Clone())
	}
	return true
}

// lookup matches the email exactly, without case folding or trimming
func (a *Auth) lookup(email string) (domain.User, bool) {
	for _, u := range a.directory {
		if u.Email == email {
			return u, true
		}
	}
	return domain.User{}, false
}

func (a *Auth) wait(ctx context.Context) error {
	if a.latency <= 0 {
		return nil
	}

	timer := time.NewTimer(a.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
