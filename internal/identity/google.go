// Package identity talks to the external identity provider.
// Login is delegated to Google: the user approves access in the browser,
// the callback hands back a one-time code, and the code is exchanged for a
// token that can read the basic profile.
package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"mindweaver-server/internal/config"
)

// ErrIncompleteProfile means the provider answered without an id or e-mail.
var ErrIncompleteProfile = errors.New("identity provider returned an incomplete profile")

// Scopes requested at login
var Scopes = []string{"openid", googleoauth2.UserinfoEmailScope, googleoauth2.UserinfoProfileScope}

// Profile is what the provider tells us about the person.
type Profile struct {
	ID      string // stable subject id
	Email   string
	Name    string
	Picture string
}

// Provider is an OAuth2 authorization-code identity provider.
type Provider interface {
	// AuthCodeURL builds the consent page URL carrying state.
	AuthCodeURL(state string) string
	// Authenticate exchanges a callback code and fetches the profile.
	Authenticate(ctx context.Context, code string) (*Profile, error)
}

// GoogleProvider implements Provider against Google's endpoints.
type GoogleProvider struct {
	oauth            *oauth2.Config
	userinfoEndpoint string // empty means Google's default
}

// NewGoogleProvider creates a GoogleProvider.
// Parameters:
//   - cfg: client registration; AuthURL, TokenURL and UserinfoEndpoint override Google's endpoints when set
//
// Returns:
//   - *GoogleProvider: provider instance
func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
		userinfoEndpoint: cfg.UserinfoEndpoint,
	}
}

// AuthCodeURL returns the Google consent page URL.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Authenticate exchanges code for a token and reads the userinfo endpoint.
// Parameters:
//   - ctx: request context, cancels both outbound calls
//   - code: authorization code from the callback
//
// Returns:
//   - *Profile: the signed-in person
//   - error: exchange, transport or decode error, or ErrIncompleteProfile
func (p *GoogleProvider) Authenticate(ctx context.Context, code string) (*Profile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(p.oauth.Client(ctx, token))}
	if p.userinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(p.userinfoEndpoint))
	}
	svc, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Id == "" || info.Email == "" {
		return nil, ErrIncompleteProfile
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	return &Profile{
		ID:      info.Id,
		Email:   info.Email,
		Name:    name,
		Picture: info.Picture,
	}, nil
}
