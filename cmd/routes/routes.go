package routes

import (
	"net/http"

	"github.com/zjoart/kenshicollection/internal/collection"
	"github.com/zjoart/kenshicollection/internal/config"

	"github.com/zjoart/kenshicollection/internal/middleware"

	"github.com/zjoart/kenshicollection/internal/docs"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gorilla/mux"
)

//	@title			Kenshi Collection API
//	@version		1.0
//	@description	Tracks owned Kenshi catalog items and renders the collection collage and progress card.

//	@license.name	MIT License
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:8080
//	@BasePath	/

// @schemes	http https
func SetUpRoutes(svc *collection.Service, cfg *config.Config) http.Handler {

	allowedOrigins := []string{
		"*",
	}

	// Create a new Gorilla Mux router
	router := mux.NewRouter()

	router.Use(middleware.RequestLogger)
	router.Use(middleware.CorsMiddleware(allowedOrigins))

	// Dynamically set Swagger host and schemes from config
	if cfg.Swagger.Host != "" {
		docs.SwaggerInfo.Host = cfg.Swagger.Host
	}
	if len(cfg.Swagger.Schemes) > 0 {
		docs.SwaggerInfo.Schemes = cfg.Swagger.Schemes
	}

	if cfg.AppEnv != "production" {
		// Serve Swagger UI only in non-production environments
		router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

		router.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
		})
	}

	//Handle health
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is up and running"))
	}).Methods("GET")

	// keep feature based routing in internal/collection
	collection.RegisterRoutes(router, svc)

	return router
}
