package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogapi/app/controllers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestRouterUsesMuxVars(t *testing.T) {
	var got *controllers.Request
	d := &Dispatcher{logger: discard, routes: []Route{
		newRoute("echo", http.MethodGet, "/things/{thing}/parts/{part}", func(_ context.Context, req *controllers.Request) (*controllers.Response, error) {
			got = req
			return controllers.JSON(http.StatusOK, req.PathParams)
		}),
	}}
	h := NewRouter(d, discard)

	rec := serve(h, http.MethodGet, "/things/abc/parts/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"thing":"abc","part":"7"}`, rec.Body.String())
	require.NotNil(t, got)
	assert.Equal(t, "abc", got.Param("thing"))

	rec = serve(h, http.MethodPost, "/things/abc/parts/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Endpoint not found"}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/things//parts/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterOversizedBodies(t *testing.T) {
	h := NewRouter(newTestApp(t).dispatcher, discard)
	big := strings.Repeat("a", MaxBodyBytes+1)

	rec := serve(h, http.MethodOptions, "/posts", big)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(h, http.MethodPost, "/nowhere", big)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Endpoint not found"}`, rec.Body.String())

	rec = serve(h, http.MethodPatch, "/posts/1", big)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, http.MethodPost, "/posts", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
}
