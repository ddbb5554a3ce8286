package internal

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/klauspost/compress/gzhttp"

	"nltrack/internal/controllers"
	"nltrack/internal/providers"
	"nltrack/internal/structures"
)

func InitRoutes(trackingController *controllers.TrackingController, apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/track/open", http.HandlerFunc(trackingController.Open))
	routers.Get("/track/click", http.HandlerFunc(trackingController.Click))
	routers.Post("/track/event", http.HandlerFunc(trackingController.ReceiveEvent))

	// the preflight must reach the cors handler, not chi's method check
	statsCors := cors.Handler(cors.Options{
		AllowedOrigins: conf.Cors.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})
	stats := statsCors(gzhttp.GzipHandler(http.HandlerFunc(apiController.GetArticleStats)))
	routers.Get("/stats/articles", stats)
	routers.Options("/stats/articles", stats)

	return routers
}
