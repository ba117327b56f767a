// Package identity verifies bearer access tokens and checks resource ownership.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"blogapi/app/apierror"
	"blogapi/app/config"

	"github.com/golang-jwt/jwt/v5"
)

// Headers looks up request headers by name, ignoring case.
type Headers interface {
	Header(name string) string
}

// Verifier validates access tokens against one issuer and audience. It is
// built once and is safe for concurrent use.
type Verifier struct {
	issuer   string
	audience string
	tokenUse string
	methods  []string
	keys     keySource
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*options)

type options struct {
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// WithHTTPClient sets the client used to fetch the JWKS.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the time used for exp/nbf checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

var (
	rsaMethods   = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}
	ecMethods    = []string{"ES256", "ES384", "ES512"}
	hmacMethods  = []string{"HS256", "HS384", "HS512"}
	eddsaMethods = []string{"EdDSA"}
)

// NewVerifier builds a verifier from the identity settings. Key material is
// taken from the HMAC secret, the PEM public key file or the JWKS URL, in
// that order of precedence.
func NewVerifier(cfg config.Identity, opts ...Option) (*Verifier, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, config.ErrIdentityNotConfigured
	}

	v := &Verifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		tokenUse: cfg.TokenUse,
		logger:   o.logger,
		now:      o.now,
	}

	switch {
	case cfg.HMACSecret != "":
		v.keys = staticKey{key: []byte(cfg.HMACSecret)}
		v.methods = hmacMethods
	case cfg.PublicKeyFile != "":
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		key, methods, err := parsePublicKey(pem)
		if err != nil {
			return nil, err
		}
		v.keys = staticKey{key: key}
		v.methods = methods
	case cfg.JWKSURL != "":
		client := o.client
		if client == nil {
			client = loggingClient(o.logger)
		}
		v.keys = newJWKSSource(cfg.JWKSURL, client, o.logger)
		v.methods = append(append(append([]string{}, rsaMethods...), ecMethods...), eddsaMethods...)
	default:
		return nil, errors.New("identity: no key material configured")
	}
	return v, nil
}

func parsePublicKey(pem []byte) (any, []string, error) {
	if key, err := jwt.ParseRSAPublicKeyFromPEM(pem); err == nil {
		return key, rsaMethods, nil
	}
	if key, err := jwt.ParseECPublicKeyFromPEM(pem); err == nil {
		return key, ecMethods, nil
	}
	if key, err := jwt.ParseEdPublicKeyFromPEM(pem); err == nil {
		return key, eddsaMethods, nil
	}
	return nil, nil, errors.New("identity: unsupported public key")
}

// Close releases the background key refresh, if any.
func (v *Verifier) Close() {
	v.keys.Close()
}

// BearerToken strips the "Bearer " prefix from an Authorization header value.
func BearerToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Authenticate returns the subject of the bearer token in h.
func (v *Verifier) Authenticate(ctx context.Context, h Headers) (string, error) {
	token := BearerToken(h.Header("Authorization"))
	if token == "" {
		return "", apierror.Unauthorized(apierror.MsgNoToken)
	}
	return v.Verify(ctx, token)
}

// AuthenticateOptional is Authenticate for endpoints open to anonymous
// callers: it returns nil instead of failing when the token is missing or
// rejected.
func (v *Verifier) AuthenticateOptional(ctx context.Context, h Headers) *string {
	sub, err := v.Authenticate(ctx, h)
	if err != nil {
		if apierror.KindOf(err) == apierror.KindInternal {
			v.logger.Warn("optional authentication failed", "error", err)
		}
		return nil
	}
	return &sub
}

// Verify checks the signature and claims of a raw token and returns its subject.
func (v *Verifier) Verify(ctx context.Context, raw string) (string, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.now != nil {
		parserOpts = append(parserOpts, jwt.WithTimeFunc(v.now))
	}

	keyFunc, err := v.keys.Keyfunc(ctx)
	if err != nil {
		return "", apierror.Internal(err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, keyFunc, parserOpts...); err != nil {
		v.logger.Debug("token rejected", "error", err)
		return "", apierror.Unauthorized(apierror.MsgInvalidToken).WithCause(err)
	}

	if err := v.checkClaims(claims); err != nil {
		v.logger.Debug("token rejected", "error", err)
		return "", apierror.Unauthorized(apierror.MsgInvalidToken).WithCause(err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", apierror.Unauthorized(apierror.MsgInvalidToken)
	}
	return sub, nil
}

// checkClaims accepts the audience either in "aud" or, for access tokens
// that carry none, in "client_id".
func (v *Verifier) checkClaims(claims jwt.MapClaims) error {
	if v.tokenUse != "" {
		if use, _ := claims["token_use"].(string); use != v.tokenUse {
			return fmt.Errorf("token_use %q, want %q", use, v.tokenUse)
		}
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return err
	}
	for _, a := range aud {
		if a == v.audience {
			return nil
		}
	}
	if clientID, _ := claims["client_id"].(string); clientID == v.audience {
		return nil
	}
	return errors.New("audience mismatch")
}
