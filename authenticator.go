package auth

import (
	"context"
	"reflect"
	"strings"

	"github.com/goliatone/go-errors"
)

// Auther verifies credentials and issues bearer tokens. It holds no state
// beyond its injected collaborators; every login is evaluated independently.
type Auther struct {
	provider     IdentityProvider
	logger       Logger
	tokenService TokenService
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService swaps the token service, e.g. for one with an
// injected clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed token plus the
// verified identity. Unknown users and wrong passwords produce the very
// same error value so the response cannot be used to enumerate accounts.
func (s *Auther) Login(ctx context.Context, email, password string) (string, Identity, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, errors.New("email and password are required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	identity, err := s.provider.VerifyIdentity(ctx, NormalizeEmail(email), password)
	if err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) || errors.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("Login verify identity error: %v", err)
		return "", nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error: %v", err)
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue token")
	}

	return token, identity, nil
}
