// Package http exposes the link shortener backend used by the website's form:
// slug availability checks and link creation.
package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/nexxeln/website/docs"
	"github.com/nexxeln/website/internal/models"
	"github.com/nexxeln/website/internal/slug"
	"github.com/nexxeln/website/pkg/middleware/recoverer"

	httpSwagger "github.com/swaggo/http-swagger"
)

// LinkService defines the link shortening operations exposed over HTTP.
type LinkService interface {
	// CheckSlug reports whether the slug is already assigned.
	CheckSlug(ctx context.Context, slug string) (bool, error)

	// CreateLink assigns the slug to url. An empty slug asks the service to generate one.
	CreateLink(ctx context.Context, slug, url string) (*models.Link, error)
}

// getValidate initializes a validator reporting fields by their JSON names
// and knowing the slug tag.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := slug.RegisterValidation(validate); err != nil {
		panic(err)
	}

	return validate
}

// NewRouter initializes the HTTP router. origin is the public origin short links are built on.
func NewRouter(logger *httplog.Logger, linkSvc LinkService, origin string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", handleDocs)

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)
		r.Get("/slugs/{slug}", handleCheckSlug(linkSvc))
		r.Post("/links", handleCreateLink(linkSvc, validate, origin))
	})

	return r
}

func handleDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(docs.Swagger)
}
