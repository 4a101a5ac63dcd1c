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
	"github.com/mkarpenko/url-shortener/internal/models"
	"github.com/mkarpenko/url-shortener/internal/service"
	"github.com/mkarpenko/url-shortener/internal/shortcode"
	"github.com/mkarpenko/url-shortener/internal/storage"
	"github.com/mkarpenko/url-shortener/pkg/response"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{
		"status":  "ok",
		"service": "url-shortener",
	})
}

type shortenRequest struct {
	URL string `json:"url" validate:"required"`
}

type shortenResponse struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ShortURL    string    `json:"short_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type statsResponse struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func toShortenResponse(url *models.URL, baseURL string) shortenResponse {
	return shortenResponse{
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		ShortURL:    fmt.Sprintf("%s/%s", baseURL, url.ShortCode),
		CreatedAt:   url.CreatedAt,
	}
}

func toStatsResponse(url *models.URL) statsResponse {
	return statsResponse{
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		ClickCount:  url.ClickCount,
		CreatedAt:   url.CreatedAt,
	}
}

func handleShortenURL(svc URLService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleShortenURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

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

		url, err := svc.ShortenURL(r.Context(), req.URL)
		if err != nil {
			if errors.Is(err, service.ErrInvalidURL) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ErrorResponse("Invalid URL format."))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toShortenResponse(url, baseURL)))
	}
}

func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "shortCode")

		// Malformed codes can't exist in the store, so skip the lookup.
		if !shortcode.Valid(code) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		url, err := svc.ResolveShortCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, storage.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.OriginalURL, http.StatusFound)
	}
}

func handleGetURLStats(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetURLStats"
	const successMsg = "The URL statistics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "shortCode")

		if !shortcode.Valid(code) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ErrorResponse("Invalid short code format."))
			return
		}

		url, err := svc.GetURLStats(r.Context(), code)
		if err != nil {
			if errors.Is(err, storage.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toStatsResponse(url)))
	}
}
