package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/motemen/go-loghttp"
	"golang.org/x/time/rate"
)

// ErrKeyProvider marks failures to obtain verification keys, as opposed to
// tokens that were rejected.
var ErrKeyProvider = errors.New("key provider unavailable")

const (
	jwksRefreshInterval = time.Hour
	unknownKIDRefresh   = 30 * time.Second
)

type keySource interface {
	Keyfunc(ctx context.Context) (jwt.Keyfunc, error)
	Close()
}

type staticKey struct {
	key any
}

func (s staticKey) Keyfunc(context.Context) (jwt.Keyfunc, error) {
	return func(*jwt.Token) (any, error) { return s.key, nil }, nil
}

func (staticKey) Close() {}

// jwksSource loads a remote JWK Set on first use and then serves keys from
// keyfunc, which refreshes the set hourly and on an unknown kid. The first
// load runs on the source's own context: callers wait for it on theirs, so
// one caller giving up does not fail the others. A failed load is retried by
// the next caller.
type jwksSource struct {
	url    string
	client *http.Client
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	keys    keyfunc.Keyfunc
	pending *jwksLoad
}

type jwksLoad struct {
	done chan struct{}
	keys keyfunc.Keyfunc
	err  error
}

func newJWKSSource(url string, client *http.Client, logger *slog.Logger) *jwksSource {
	ctx, cancel := context.WithCancel(context.Background())
	return &jwksSource{
		url:    url,
		client: client,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *jwksSource) Keyfunc(ctx context.Context) (jwt.Keyfunc, error) {
	s.mu.Lock()
	if s.keys != nil {
		keys := s.keys
		s.mu.Unlock()
		return keys.KeyfuncCtx(ctx), nil
	}
	load := s.pending
	if load == nil {
		load = &jwksLoad{done: make(chan struct{})}
		s.pending = load
		go s.load(load)
	}
	s.mu.Unlock()

	select {
	case <-load.done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrKeyProvider, ctx.Err())
	}
	if load.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyProvider, load.err)
	}
	return load.keys.KeyfuncCtx(ctx), nil
}

func (s *jwksSource) load(load *jwksLoad) {
	load.keys, load.err = s.fetch()

	s.mu.Lock()
	if load.err == nil {
		s.keys = load.keys
	}
	s.pending = nil
	s.mu.Unlock()
	close(load.done)
}

func (s *jwksSource) fetch() (keyfunc.Keyfunc, error) {
	u, err := url.ParseRequestURI(s.url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(s.ctx)
	remote, err := jwkset.NewStorageFromHTTP(u, jwkset.HTTPClientStorageOptions{
		Client:          s.client,
		Ctx:             ctx,
		RefreshInterval: jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			s.logger.Warn("jwks refresh failed", "url", s.url, "error", err)
		},
	})
	if err != nil {
		cancel()
		return nil, err
	}
	storage, err := jwkset.NewHTTPClient(jwkset.HTTPClientOptions{
		HTTPURLs:          map[string]jwkset.Storage{s.url: remote},
		RefreshUnknownKID: rate.NewLimiter(rate.Every(unknownKIDRefresh), 1),
		RateLimitWaitMax:  time.Second,
	})
	if err != nil {
		cancel()
		return nil, err
	}
	keys, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: storage})
	if err != nil {
		cancel()
		return nil, err
	}
	s.logger.Info("loaded jwks", "url", s.url)
	return keys, nil
}

// Close stops the background refresh.
func (s *jwksSource) Close() {
	s.cancel()
}

// loggingClient logs outbound requests to the identity provider.
func loggingClient(logger *slog.Logger) *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &loghttp.Transport{
			Transport: http.DefaultTransport,
			LogRequest: func(req *http.Request) {
				logger.Debug("identity provider request", "method", req.Method, "url", req.URL.String())
			},
			LogResponse: func(resp *http.Response) {
				logger.Debug("identity provider response", "url", resp.Request.URL.String(), "status", resp.StatusCode)
			},
		},
	}
}
