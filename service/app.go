package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogapi/app/config"
	"blogapi/app/controllers"
	"blogapi/app/identity"
	"blogapi/app/repositories"
	"blogapi/app/repositories/cache"
	"blogapi/app/repositories/mock"
	"blogapi/app/repositories/mongostore"
	"blogapi/app/routes"
	"blogapi/app/services"
)

// App is the wired application: stores, services, controllers and dispatcher.
type App struct {
	Dispatcher *routes.Dispatcher
	logger     *slog.Logger
	closers    []func() error
}

// Build wires the application for cfg. The caller must Close it.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	verifier, err := identity.NewVerifier(cfg.Identity, identity.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	app := &App{logger: logger}
	app.closers = append(app.closers, func() error {
		verifier.Close()
		return nil
	})
	var postRepo repositories.PostRepository
	var commentRepo repositories.CommentRepository

	switch cfg.Storage.Mode {
	case config.StorageMemory:
		postRepo = mock.NewPostRepository()
		commentRepo = mock.NewCommentRepository()
	case config.StorageMongo:
		store, err := mongostore.Connect(ctx, mongostore.Options{
			URL:                cfg.Storage.MongoURL,
			Database:           cfg.Storage.MongoDBName,
			PostsCollection:    cfg.Storage.PostsTable,
			CommentsCollection: cfg.Storage.CommentsTable,
		})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() error { return store.Close(context.Background()) })
		postRepo, commentRepo = store.Posts, store.Comments
	default:
		store, err := repositories.Open(repositories.Options{
			Path:          cfg.Storage.DBPath,
			PostsTable:    cfg.Storage.PostsTable,
			CommentsTable: cfg.Storage.CommentsTable,
		})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, store.Close)
		postRepo, commentRepo = store.Posts, store.Comments
	}

	if cfg.Storage.RedisURL != "" {
		client, err := cache.NewClient(cfg.Storage.RedisURL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		postRepo = cache.NewPostRepository(postRepo, client, cfg.Storage.PostsTable, cfg.Storage.CacheTTL, logger)
		logger.Info("post cache enabled", "ttl", cfg.Storage.CacheTTL)
	}

	postService := services.NewPostService(postRepo, commentRepo, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, logger)
	app.Dispatcher = routes.NewDispatcher(
		controllers.NewPostController(postService, verifier),
		controllers.NewCommentController(commentService, postService, verifier),
		logger,
	)
	logger.Info("application ready", "storage", cfg.Storage.Mode)
	return app, nil
}

// Handler returns the HTTP handler for the app.
func (a *App) Handler() http.Handler {
	return routes.NewRouter(a.Dispatcher, a.logger)
}

// Close releases the stores in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Serve runs the HTTP server on ln until ctx is done, then shuts it down.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunAppServer starts the blog API and blocks until SIGINT or SIGTERM.
func RunAppServer(args []string) int {
	cfg := loadConfig()
	if len(args) > 0 {
		cfg.Addr = args[0]
	}
	logger := newLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer app.Close()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Error("listen failed", "addr", cfg.Addr, "error", err)
		return 1
	}
	if err := Serve(ctx, ln, app.Handler(), logger); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}
