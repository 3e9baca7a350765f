package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns the CORS settings for the help-desk front ends.
// A "*" origin switches credentials off, browsers reject the combination.
func DefaultCORSConfig(allowedOrigins []string) CORSConfig {
	cfg := CORSConfig{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           3600,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowCredentials = false
			break
		}
	}
	return cfg
}

// CORS returns a CORS middleware handler
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   config.AllowedMethods,
		AllowedHeaders:   config.AllowedHeaders,
		ExposedHeaders:   config.ExposedHeaders,
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	})
}
