package providers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nltrack/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	Options(url string, handler http.Handler)
	GetRoutes() []structures.Route
	Handler() http.Handler
}

type RouterProvider struct {
	routes []structures.Route
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Method:  http.MethodGet,
		Url:     url,
		Handler: handler,
	})
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Method:  http.MethodPost,
		Url:     url,
		Handler: handler,
	})
}

// Options registers a CORS preflight handler for a path served cross-origin.
func (rp *RouterProvider) Options(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Method:  http.MethodOptions,
		Url:     url,
		Handler: handler,
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// Handler mounts the registered routes on a chi router; chi answers 405 for a known path
// requested with the wrong method.
func (rp *RouterProvider) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, route := range rp.routes {
		r.Method(route.Method, route.Url, route.Handler)
	}
	return r
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}
