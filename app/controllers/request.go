// Package controllers holds the per-route handler pipelines. Handlers work on
// transport-neutral Request and Response values so the same code serves HTTP
// and gateway-style events.
package controllers

import (
	"context"
	"strings"

	"blogapi/app/identity"
)

// Request is an inbound API request after routing.
type Request struct {
	Method string
	Path   string
	// PathParams are filled by the dispatcher from the matched route.
	PathParams map[string]string
	Headers    map[string]string
	Body       []byte
}

// Header returns the first header whose name matches name, ignoring case.
func (r *Request) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Param returns a path parameter.
func (r *Request) Param(name string) string {
	return r.PathParams[name]
}

// Response is what a handler produces. A nil Body is sent as an empty body.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"-"`
}

// HandlerFunc handles one route. Returned errors are mapped by the dispatcher.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Authenticator resolves the caller's subject from request headers.
type Authenticator interface {
	Authenticate(ctx context.Context, h identity.Headers) (string, error)
}

var _ identity.Headers = (*Request)(nil)
