package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mindweaver-server/internal/identity"
	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/model"
	"mindweaver-server/internal/repository"
	"mindweaver-server/internal/session"
	"mindweaver-server/pkg/util"
)

// AuthService handles Google sign-in and browser sessions.
type AuthService struct {
	accountRepo *repository.AccountRepository // account rows
	provider    identity.Provider             // Google
	sessions    *session.Manager              // cookie + server-side record
	log         *logger.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	accountRepo *repository.AccountRepository,
	provider identity.Provider,
	sessions *session.Manager,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		provider:    provider,
		sessions:    sessions,
		log:         log.With("service", "AuthService"),
	}
}

// LoginResult is what a completed login hands back to the handler.
type LoginResult struct {
	Token      string           // session cookie value
	ExpiresAt  time.Time        // cookie expiry
	Identity   session.Identity // snapshot stored with the session
	NewAccount bool             // true on first login
}

// StatusResponse is the body of GET /auth/status.
type StatusResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
}

// UserResponse is the session identity as the browser sees it.
type UserResponse struct {
	ID      int64   `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Picture *string `json:"picture"`
}

// NewStatusResponse builds the authenticated status body.
func NewStatusResponse(ident *session.Identity) *StatusResponse {
	return &StatusResponse{
		Authenticated: true,
		User: &UserResponse{
			ID:      ident.AccountID,
			Email:   ident.Email,
			Name:    ident.Name,
			Picture: util.StringPtr(ident.Picture),
		},
	}
}

// BeginLogin returns the URL that starts the provider's consent flow.
// Parameters:
//   - state: anti-forgery value echoed back on the callback
//
// Returns:
//   - string: absolute redirect URL
func (s *AuthService) BeginLogin(state string) string {
	return s.provider.AuthCodeURL(state)
}

// CompleteLogin finishes the authorization-code flow.
// Steps:
//  1. check the state the browser brought back against the one we issued
//  2. exchange the code and read the profile
//  3. find the account by Google id, creating it on first login
//  4. start a session holding a snapshot of the account
//
// Parameters:
//   - ctx: request context
//   - code: authorization code from the callback query
//   - state: state from the callback query
//   - expectedState: state issued by BeginLogin, empty to skip the check
//
// Returns:
//   - *LoginResult: cookie value and identity
//   - error: ErrExternalAuth or ErrPersistence
func (s *AuthService) CompleteLogin(ctx context.Context, code, state, expectedState string) (*LoginResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: authorization code not provided", ErrExternalAuth)
	}
	if expectedState != "" && state != expectedState {
		return nil, fmt.Errorf("%w: state mismatch", ErrExternalAuth)
	}

	profile, err := s.provider.Authenticate(ctx, code)
	if err != nil {
		s.log.Warn("identity provider rejected login", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExternalAuth, err)
	}

	account, created, err := s.accountRepo.CreateOrGet(ctx, &model.Account{
		GoogleID:   profile.ID,
		Email:      profile.Email,
		Name:       profile.Name,
		PictureURL: util.StringPtr(profile.Picture),
	})
	if err != nil {
		if errors.Is(err, repository.ErrAccountConflict) {
			s.log.Warn("email already bound to another google id", "google_id", profile.ID, "email", profile.Email)
			return nil, fmt.Errorf("%w: %v", ErrExternalAuth, err)
		}
		return nil, fmt.Errorf("%w: resolve account: %v", ErrPersistence, err)
	}

	ident := session.Identity{
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Picture:   util.StringValue(account.PictureURL),
	}
	token, rec, err := s.sessions.Create(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.Info("login completed", "account_id", account.ID, "new_account", created)
	return &LoginResult{
		Token:      token,
		ExpiresAt:  rec.ExpiresAt,
		Identity:   ident,
		NewAccount: created,
	}, nil
}

// CheckSession resolves a cookie value to the identity stored at login.
// Returns:
//   - *session.Identity: the snapshot, not re-read from the accounts table
//   - error: ErrAuthenticationRequired or ErrPersistence
func (s *AuthService) CheckSession(ctx context.Context, token string) (*session.Identity, error) {
	rec, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, ErrAuthenticationRequired
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &rec.Identity, nil
}

// EndSession revokes the session named by the cookie.
// Ending an unknown or already-ended session succeeds.
func (s *AuthService) EndSession(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
