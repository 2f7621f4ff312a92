package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/normalize"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/Sidd1721986/Elite-App/internal/storage"
	"github.com/charmbracelet/log"
)

// AuthService handles the session lifecycle and vendor administration.
//
// The session lives in the persisted store: the bearer token under
// [storage.KeyAuthToken] and a user snapshot under [storage.KeyCurrentUser].
type AuthService struct {
	api    API
	store  storage.Store
	logger *log.Logger
}

func NewAuthService(api API, store storage.Store, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AuthService{api: api, store: store, logger: logger}
}

// Login authenticates and persists the session.
//
// A response user without a role takes the role that was requested.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrInvalidInput)
	}

	raw, err := s.api.Post(ctx, "/auth/login", creds)
	if err != nil {
		return nil, err
	}
	v, err := decodePayload(raw, "/auth/login")
	if err != nil {
		return nil, err
	}

	token, user := normalize.Session(v)
	if token == "" {
		return nil, fmt.Errorf("%w: login response has no token", shared.ErrAuthFailed)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: login response has no user", shared.ErrAuthFailed)
	}
	if user.Role == "" {
		user.Role = creds.Role
	}

	snapshot, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSnapshotWrite, err)
	}
	if err := s.store.SetItem(ctx, storage.KeyAuthToken, token); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSnapshotWrite, err)
	}
	if err := s.store.SetItem(ctx, storage.KeyCurrentUser, string(snapshot)); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSnapshotWrite, err)
	}

	// Cached responses belong to the previous session.
	s.api.ClearCache()
	s.logger.Info("logged in", "email", user.Email, "role", user.Role)
	return user, nil
}

// Signup registers a new account. The returned user may be nil when the server replies without one.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", shared.ErrInvalidInput)
	}
	if req.Role != models.RoleOther {
		req.RoleOther = ""
	}

	raw, err := s.api.Post(ctx, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	v, err := decodePayload(raw, "/auth/register")
	if err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		for _, key := range []string{"user", "User"} {
			if nested, ok := m[key]; ok {
				return normalize.User(nested), nil
			}
		}
	}
	return normalize.User(v), nil
}

// Logout removes the persisted session and drops cached responses.
func (s *AuthService) Logout(ctx context.Context) error {
	s.api.ClearCache()
	return errors.Join(
		s.store.RemoveItem(ctx, storage.KeyAuthToken),
		s.store.RemoveItem(ctx, storage.KeyCurrentUser),
	)
}

// CurrentUser returns the persisted user snapshot, or nil when there is none.
//
// A corrupt snapshot is logged and treated as absent.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	data, ok, err := s.store.GetItem(ctx, storage.KeyCurrentUser)
	if err != nil {
		return nil, err
	}
	if !ok || data == "" {
		return nil, nil
	}

	v, err := normalize.Decode([]byte(data))
	if err != nil {
		s.logger.Warn("ignoring corrupt user snapshot", "error", fmt.Errorf("%w: %v", shared.ErrSnapshotCorrupt, err))
		return nil, nil
	}
	return normalize.User(v), nil
}

// Token returns the persisted bearer token, or "" when logged out.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	token, _, err := s.store.GetItem(ctx, storage.KeyAuthToken)
	return token, err
}

func (s *AuthService) PendingVendors(ctx context.Context) ([]models.User, error) {
	return s.users(ctx, "/users/vendors/pending")
}

func (s *AuthService) ApprovedVendors(ctx context.Context) ([]models.User, error) {
	return s.users(ctx, "/users/vendors/approved")
}

// UpdateUserStatus approves or rejects a vendor account.
func (s *AuthService) UpdateUserStatus(ctx context.Context, userID string, approved bool) error {
	_, err := s.api.Put(ctx, "/users/"+url.PathEscape(userID)+"/approval", map[string]bool{"isApproved": approved})
	return err
}

// RemoveVendor deletes a vendor account.
func (s *AuthService) RemoveVendor(ctx context.Context, userID string) error {
	_, err := s.api.Delete(ctx, "/users/"+url.PathEscape(userID))
	return err
}

func (s *AuthService) users(ctx context.Context, endpoint string) ([]models.User, error) {
	raw, err := s.api.Get(ctx, endpoint, false)
	if err != nil {
		return nil, err
	}
	v, err := decodePayload(raw, endpoint)
	if err != nil {
		return nil, err
	}
	return normalize.Users(v), nil
}
