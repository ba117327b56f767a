package routes

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"blogapi/app/config"
	"blogapi/app/controllers"
	"blogapi/app/identity"
	"blogapi/app/repositories/mock"
	"blogapi/app/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://issuer.test"
	testAudience = "blog-client"
	testSecret   = "routes-secret"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type testApp struct {
	dispatcher  *Dispatcher
	postRepo    *mock.PostRepository
	commentRepo *mock.CommentRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	verifier, err := identity.NewVerifier(config.Identity{
		Issuer:     testIssuer,
		Audience:   testAudience,
		HMACSecret: testSecret,
	}, identity.WithLogger(discard))
	require.NoError(t, err)

	postRepo := mock.NewPostRepository()
	commentRepo := mock.NewCommentRepository()
	postService := services.NewPostService(postRepo, commentRepo, discard)
	commentService := services.NewCommentService(commentRepo, postRepo, discard)

	return &testApp{
		dispatcher: NewDispatcher(
			controllers.NewPostController(postService, verifier),
			controllers.NewCommentController(commentService, postService, verifier),
			discard,
		),
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

func tokenFor(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"iss": testIssuer,
		"aud": testAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}
