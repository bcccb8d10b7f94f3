package proxy

import (
	"net/http"

	"github.com/grafana/dskit/middleware"
	"github.com/rs/cors"
)

// CORS lets browser players on any origin use the API and read the
// download filename.
func CORS() middleware.Interface {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
		ExposedHeaders: []string{"Content-Disposition"},
	})

	return middleware.Func(c.Handler)
}
