package routes

import (
	"io"
	"log/slog"
	"net/http"

	"blogapi/app/apierror"
	"blogapi/app/controllers"
	"blogapi/app/middleware"

	"github.com/gorilla/mux"
)

// MaxBodyBytes bounds the request bodies the HTTP adapter reads.
const MaxBodyBytes = 1 << 20

// NewRouter registers the dispatcher's route table on a mux router and wraps
// it in the standard middleware. Paths are not cleaned, so "/posts/" and
// "//posts" do not match any route.
func NewRouter(d *Dispatcher, logger *slog.Logger) http.Handler {
	router := mux.NewRouter().SkipClean(true)

	router.Methods(http.MethodOptions).Name("preflight").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.Write(w, controllers.Preflight())
	})
	routes := d.Routes()
	for i := range routes {
		route := &routes[i]
		router.Path(route.Pattern).Methods(route.Method).Name(route.Name).Handler(d.routeHandler(route))
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.Write(w, controllers.NotFoundResponse())
	})
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = notFound

	var h http.Handler = router
	h = middleware.Recoverer(logger)(h)
	h = middleware.Logger(logger)(h)
	h = middleware.StandardHeaders(h)
	return h
}

// routeHandler serves one table entry. The body is only read once mux has
// matched the route, and path parameters come from mux.Vars.
func (d *Dispatcher) routeHandler(route *Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			middleware.Write(w, controllers.ErrorResponse(apierror.Validation(apierror.MsgInvalidBody).WithCause(err)))
			return
		}
		headers := make(map[string]string, len(r.Header))
		for name := range r.Header {
			headers[name] = r.Header.Get(name)
		}
		middleware.Write(w, d.Serve(r.Context(), route, mux.Vars(r), &controllers.Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: headers,
			Body:    body,
		}))
	})
}
