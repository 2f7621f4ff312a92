package state

import (
	"context"
	"sync"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/charmbracelet/log"
)

// AuthAPI is the session side of the network layer. [services.AuthService] implements it.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	Token(ctx context.Context) (string, error)
	PendingVendors(ctx context.Context) ([]models.User, error)
	ApprovedVendors(ctx context.Context) ([]models.User, error)
	UpdateUserStatus(ctx context.Context, userID string, approved bool) error
	RemoveVendor(ctx context.Context, userID string) error
}

// AuthStore tracks the signed-in user.
type AuthStore struct {
	api    AuthAPI
	logger *log.Logger

	mu      sync.RWMutex
	user    *models.User
	loading bool
	errMsg  string

	subs listeners
}

func NewAuthStore(api AuthAPI, logger *log.Logger) *AuthStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AuthStore{api: api, logger: logger, loading: true}
}

// CheckSession restores the user from the persisted snapshot.
func (a *AuthStore) CheckSession(ctx context.Context) error {
	user, err := a.api.CurrentUser(ctx)
	a.update(func() {
		a.user = user
		a.loading = false
		if err != nil {
			a.errMsg = err.Error()
		}
	})
	return err
}

// User returns a copy of the signed-in user, or nil.
func (a *AuthStore) User() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user.Clone()
}

func (a *AuthStore) IsLoading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

func (a *AuthStore) Err() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.errMsg
}

// IsAuthenticated reports whether a bearer token is persisted.
func (a *AuthStore) IsAuthenticated(ctx context.Context) bool {
	token, err := a.api.Token(ctx)
	if err != nil {
		a.logger.Warn("failed to read session token", "error", err)
		return false
	}
	return token != ""
}

func (a *AuthStore) Subscribe(fn func()) func() {
	return a.subs.add(fn)
}

func (a *AuthStore) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	user, err := a.api.Login(ctx, creds)
	if err != nil {
		return nil, a.fail(err)
	}
	a.update(func() {
		a.user = user.Clone()
		a.errMsg = ""
	})
	return user, nil
}

// Signup registers an account. It does not sign in.
func (a *AuthStore) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	user, err := a.api.Signup(ctx, req)
	if err != nil {
		return nil, a.fail(err)
	}
	a.update(func() { a.errMsg = "" })
	return user, nil
}

func (a *AuthStore) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.update(func() {
		a.user = nil
		if err != nil {
			a.errMsg = err.Error()
		} else {
			a.errMsg = ""
		}
	})
	return err
}

func (a *AuthStore) PendingVendors(ctx context.Context) ([]models.User, error) {
	users, err := a.api.PendingVendors(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	return users, nil
}

func (a *AuthStore) ApprovedVendors(ctx context.Context) ([]models.User, error) {
	users, err := a.api.ApprovedVendors(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	return users, nil
}

func (a *AuthStore) UpdateUserStatus(ctx context.Context, userID string, approved bool) error {
	if err := a.api.UpdateUserStatus(ctx, userID, approved); err != nil {
		return a.fail(err)
	}
	return nil
}

func (a *AuthStore) RemoveVendor(ctx context.Context, userID string) error {
	if err := a.api.RemoveVendor(ctx, userID); err != nil {
		return a.fail(err)
	}
	return nil
}

func (a *AuthStore) update(fn func()) {
	a.mu.Lock()
	fn()
	a.mu.Unlock()
	a.subs.notify()
}

func (a *AuthStore) fail(err error) error {
	a.update(func() { a.errMsg = err.Error() })
	return err
}
