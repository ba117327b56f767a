package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"blogapi/app/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHeader(t *testing.T) {
	req := &Request{Headers: map[string]string{"authorization": "Bearer x", "X-Other": "y"}}
	assert.Equal(t, "Bearer x", req.Header("Authorization"))
	assert.Equal(t, "y", req.Header("x-other"))
	assert.Equal(t, "", req.Header("Missing"))
	assert.Equal(t, "", (&Request{}).Header("Authorization"))
}

func TestStandardHeadersAreCopies(t *testing.T) {
	h := StandardHeaders()
	h["Content-Type"] = "text/plain"
	assert.Equal(t, "application/json", StandardHeaders()["Content-Type"])
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{apierror.Validation(apierror.MsgTitleRequired), http.StatusBadRequest, `{"error":"Title is required"}`},
		{apierror.Unauthorized(apierror.MsgNoToken), http.StatusForbidden, `{"error":"No token provided"}`},
		{apierror.NotFound("Comment"), http.StatusNotFound, `{"error":"Comment not found"}`},
		{fmt.Errorf("wrapped: %w", apierror.NotFound("Post")), http.StatusNotFound, `{"error":"Post not found"}`},
		{errors.New("disk on fire"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
		{apierror.Internal(errors.New("secret detail")), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp := ErrorResponse(tt.err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.body, string(resp.Body))
			assert.Equal(t, StandardHeaders(), resp.Headers)
		})
	}
}

func TestJSONAndEmptyResponses(t *testing.T) {
	resp, err := JSON(http.StatusOK, map[string]int{"n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(resp.Body))

	_, err = JSON(http.StatusOK, make(chan int))
	assert.Equal(t, apierror.KindInternal, apierror.KindOf(err))

	assert.Empty(t, NoContent().Body)
	assert.Equal(t, http.StatusOK, Preflight().StatusCode)
	assert.Empty(t, Preflight().Body)
	assert.JSONEq(t, `{"error":"Endpoint not found"}`, string(NotFoundResponse().Body))
}
