package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestLogger(t *testing.T) {
	logger, buf := bufferLogger()
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/test", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Contains(t, entry, "duration")
}

func TestLoggerDefaultStatus(t *testing.T) {
	logger, buf := bufferLogger()
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestRecoverer(t *testing.T) {
	logger, buf := bufferLogger()
	handler := StandardHeaders(Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})))

	req := httptest.NewRequest("GET", "/test", nil)
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusInternalServerError, rw.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rw.Body.String())
	assert.Equal(t, "application/json", rw.Header().Get("Content-Type"))
	assert.Equal(t, "*", rw.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, buf.String(), "test panic")
	assert.NotContains(t, rw.Body.String(), "test panic")
}

func TestStandardHeaders(t *testing.T) {
	handler := StandardHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, httptest.NewRequest("GET", "/nowhere", nil))

	assert.Equal(t, "application/json", rw.Header().Get("Content-Type"))
	assert.Equal(t, "*", rw.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type,Authorization", rw.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET,POST,PUT,DELETE,OPTIONS", rw.Header().Get("Access-Control-Allow-Methods"))
}
