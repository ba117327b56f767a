// Package routes maps requests to handlers. The route table is matched by
// plain segment comparison and is shared by the HTTP server and the event
// invoker.
package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"blogapi/app/apierror"
	"blogapi/app/controllers"
)

// Route is one entry of the route table.
type Route struct {
	Name    string
	Method  string
	Pattern string
	Handler controllers.HandlerFunc

	segments []segment
}

type segment struct {
	literal string
	param   string
}

func newRoute(name, method, pattern string, h controllers.HandlerFunc) Route {
	r := Route{Name: name, Method: method, Pattern: pattern, Handler: h}
	for _, part := range splitPath(pattern) {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			r.segments = append(r.segments, segment{param: part[1 : len(part)-1]})
		} else {
			r.segments = append(r.segments, segment{literal: part})
		}
	}
	return r
}

func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// match reports whether the path fits the route and returns its parameters.
// Parameters must be non-empty.
func (r *Route) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(r.segments) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range r.segments {
		if seg.param == "" {
			if parts[i] != seg.literal {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		if params == nil {
			params = make(map[string]string, 1)
		}
		params[seg.param] = parts[i]
	}
	return params, true
}

// Dispatcher routes requests over the table and maps handler errors to
// responses.
type Dispatcher struct {
	routes []Route
	logger *slog.Logger
}

// NewDispatcher builds the API route table.
func NewDispatcher(posts *controllers.PostController, comments *controllers.CommentController, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger: logger,
		routes: []Route{
			newRoute("createPost", http.MethodPost, "/posts", posts.Create),
			newRoute("listPosts", http.MethodGet, "/posts", posts.List),
			newRoute("getPost", http.MethodGet, "/posts/{id}", posts.Show),
			newRoute("updatePost", http.MethodPut, "/posts/{id}", posts.Update),
			newRoute("deletePost", http.MethodDelete, "/posts/{id}", posts.Delete),
			newRoute("listComments", http.MethodGet, "/posts/{id}/comments", comments.List),
			newRoute("createComment", http.MethodPost, "/posts/{id}/comments", comments.Create),
			newRoute("deleteComment", http.MethodDelete, "/comments/{commentId}", comments.Delete),
		},
	}
}

// Routes returns the route table.
func (d *Dispatcher) Routes() []Route {
	return d.routes
}

// Match finds the route for method and path.
func (d *Dispatcher) Match(method, path string) (*Route, map[string]string, bool) {
	if !strings.HasPrefix(path, "/") {
		return nil, nil, false
	}
	parts := splitPath(path)
	for i := range d.routes {
		r := &d.routes[i]
		if r.Method != method {
			continue
		}
		if params, ok := r.match(parts); ok {
			return r, params, true
		}
	}
	return nil, nil, false
}

// Dispatch runs the request through its route and always returns a response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *controllers.Request) *controllers.Response {
	if req.Method == http.MethodOptions {
		return controllers.Preflight()
	}

	route, params, ok := d.Match(req.Method, req.Path)
	if !ok {
		return controllers.NotFoundResponse()
	}
	return d.Serve(ctx, route, params, req)
}

// Serve runs req through an already matched route. params replace any path
// parameters the request carries.
func (d *Dispatcher) Serve(ctx context.Context, route *Route, params map[string]string, req *controllers.Request) (resp *controllers.Response) {
	routed := *req
	routed.PathParams = params
	log := d.logger.With("route", route.Name, "method", req.Method, "path", req.Path)
	if len(params) > 0 {
		log = log.With("params", params)
	}

	defer func() {
		if rv := recover(); rv != nil {
			err := apierror.Internal(fmt.Errorf("panic: %v", rv))
			log.Error("handler panicked", "error", err)
			resp = controllers.ErrorResponse(err)
		}
	}()

	var err error
	resp, err = route.Handler(ctx, &routed)
	if err == nil && resp == nil {
		err = errors.New("handler returned no response")
	}
	if err != nil {
		kind := apierror.KindOf(err)
		if kind == apierror.KindInternal {
			log.Error("request failed", "kind", kind.String(), "error", err)
		} else {
			log.Info("request rejected", "kind", kind.String(), "error", err)
		}
		return controllers.ErrorResponse(err)
	}
	return resp
}
