package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/mkarpenko/url-shortener/internal/models"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL creates a shortened version of the provided original URL.
	// It returns the new record or an error if validation fails or the
	// code space is exhausted.
	ShortenURL(ctx context.Context, originalURL string) (*models.URL, error)

	// ResolveShortCode retrieves the original URL for a given short code
	// and counts the visit. It returns an error if the URL is not found.
	ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetURLStats retrieves the click statistics of the URL associated
	// with the short code without counting a visit.
	GetURLStats(ctx context.Context, shortCode string) (*models.URL, error)
}

// getValidate initializes a validator instance for incoming request payloads.
// Tag names are taken from JSON tags so validation details match the wire format.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and
// middleware configured. baseURL is used to assemble the public short URL
// in shorten responses.
func NewRouter(logger *httplog.Logger, urlSvc URLService, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.AllowContentType("application/json"))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", handleHealth)

	r.Route("/api", func(r chi.Router) {
		validate := getValidate()

		r.Get("/health", handleHealth)
		r.Post("/shorten", handleShortenURL(urlSvc, validate, baseURL))
		r.Get("/stats/{shortCode}", handleGetURLStats(urlSvc))
	})

	r.Get("/{shortCode}", handleRedirect(urlSvc))

	return r
}
