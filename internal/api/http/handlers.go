package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/nexxeln/website/internal/models"
	"github.com/nexxeln/website/internal/slug"
	"github.com/nexxeln/website/pkg/response"
)

func handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type checkSlugResponse struct {
	Slug string `json:"slug"`
	Used bool   `json:"used"`
}

// handleCheckSlug answers whether the slug in the path is already assigned.
func handleCheckSlug(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleCheckSlug"
	const successMsg = "The slug has been checked."

	return func(w http.ResponseWriter, r *http.Request) {
		value := slug.Normalize(chi.URLParam(r, "slug"))

		used, err := svc.CheckSlug(r.Context(), value)
		if err != nil {
			if errors.Is(err, slug.ErrInvalid) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.InvalidSlugResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, checkSlugResponse{
			Slug: value,
			Used: used,
		}))
	}
}

type createLinkRequest struct {
	Slug string `json:"slug" validate:"omitempty,max=20,slug"`
	URL  string `json:"url" validate:"required,max=3000,url"`
}

type linkResponse struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	URL       string    `json:"url"`
	ShortURL  string    `json:"short_url"`
	CreatedAt time.Time `json:"created_at"`
}

func toLinkResponse(link *models.Link, origin string) linkResponse {
	return linkResponse{
		ID:        link.ID,
		Slug:      link.Slug,
		URL:       link.URL,
		ShortURL:  slug.Link(origin, link.Slug),
		CreatedAt: link.CreatedAt,
	}
}

// handleCreateLink stores a new link.
//
// The slug is optional; when it is omitted the service generates one. A slug that is
// already assigned is answered with 409 Conflict, even if an earlier check said it was free.
func handleCreateLink(svc LinkService, validate *validator.Validate, origin string) http.HandlerFunc {
	const op = "api.http.handleCreateLink"
	const successMsg = "The link has been created successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		link, err := svc.CreateLink(r.Context(), req.Slug, req.URL)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrSlugTaken):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.SlugTakenResponse)
			case errors.Is(err, slug.ErrInvalid):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.InvalidSlugResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(link, origin)))
	}
}
