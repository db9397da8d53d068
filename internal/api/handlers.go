package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Response messages. They never carry the underlying cause.
const (
	msgInvalidPayload   = "invalid request payload"
	msgMovieNotFound    = "movie not found"
	msgTitleTaken       = "a movie with this title already exists"
	msgInvalidReference = "genre or language does not exist"
	msgListFailed       = "failed to list movies"
	msgCreateFailed     = "failed to create movie"
	msgUpdateFailed     = "failed to update movie"
	msgDeleteFailed     = "failed to delete movie"
	msgFilterFailed     = "failed to filter movies by genre"
	msgGenresFailed     = "failed to list genres"
	msgLanguagesFailed  = "failed to list languages"
	msgRouteNotFound    = "the requested resource could not be found"
	msgMethodNotAllowed = "method not allowed"
)

// MovieHandler holds the dependencies of the catalog HTTP handlers.
type MovieHandler struct {
	store        store.MovieStore
	logger       *slog.Logger
	validator    *validator.Validate
	queryTimeout time.Duration
}

// NewMovieHandler creates the catalog handlers.
func NewMovieHandler(s store.MovieStore, l *slog.Logger, v *validator.Validate, queryTimeout time.Duration) *MovieHandler {
	return &MovieHandler{
		store:        s,
		logger:       l,
		validator:    v,
		queryTimeout: queryTimeout,
	}
}

// --- helpers ---

func (h *MovieHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *MovieHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"message": message})
}

// respondStoreError maps store errors to a status. fallback is the message
// for failures that have no specific kind.
func (h *MovieHandler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrMovieNotFound):
		h.respondError(w, r, http.StatusNotFound, msgMovieNotFound)
	case errors.Is(err, store.ErrMovieAlreadyExists):
		h.respondError(w, r, http.StatusConflict, msgTitleTaken)
	case errors.Is(err, store.ErrInvalidReference):
		h.respondError(w, r, http.StatusUnprocessableEntity, msgInvalidReference)
	default:
		h.logger.ErrorContext(r.Context(), "Store call failed", slog.String("error", err.Error()), slog.String("method", r.Method), slog.String("path", r.URL.Path))
		h.respondError(w, r, http.StatusInternalServerError, fallback)
	}
}

// storeContext bounds a single store call.
func (h *MovieHandler) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.queryTimeout)
}

func readIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}

// decodeJSON reads exactly one JSON value. An empty body is an empty object.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// --- handlers ---

// ListMovies handles GET /movies.
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	movies, err := h.store.List(ctx)
	if err != nil {
		h.respondStoreError(w, r, err, msgListFailed)
		return
	}
	h.logger.DebugContext(ctx, "Movies listed", slog.Int("count", len(movies)))
	h.respondJSON(w, r, http.StatusOK, movies)
}

// CreateMovie handles POST /movies.
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode movie creation request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	if err := h.validator.StructCtx(r.Context(), req); err != nil {
		h.logger.WarnContext(r.Context(), "Movie creation request validation failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	existing, err := h.store.FindByTitle(ctx, req.Title)
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "Movie title already taken", slog.String("title", req.Title), slog.Int64("existingID", existing.ID))
		h.respondError(w, r, http.StatusConflict, msgTitleTaken)
		return
	case !errors.Is(err, store.ErrMovieNotFound):
		h.respondStoreError(w, r, err, msgCreateFailed)
		return
	}

	movie := req.NewMovie()
	if err := h.store.Create(ctx, movie); err != nil {
		h.respondStoreError(w, r, err, msgCreateFailed)
		return
	}

	h.logger.InfoContext(ctx, "Movie created", slog.Int64("movieID", movie.ID), slog.String("title", movie.Title))
	w.Header().Set("Location", fmt.Sprintf("/movies/%d", movie.ID))
	h.respondJSON(w, r, http.StatusCreated, nil)
}

// UpdateMovie handles PUT /movies/{id}.
func (h *MovieHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		h.respondError(w, r, http.StatusNotFound, msgMovieNotFound)
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	if _, err := h.store.GetByID(ctx, id); err != nil {
		h.respondStoreError(w, r, err, msgUpdateFailed)
		return
	}

	var req domain.UpdateMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode movie update request body", slog.Int64("movieID", id), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "Movie update request validation failed", slog.Int64("movieID", id), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	if err := h.store.Update(ctx, id, &req); err != nil {
		h.respondStoreError(w, r, err, msgUpdateFailed)
		return
	}

	h.logger.InfoContext(ctx, "Movie updated", slog.Int64("movieID", id))
	h.respondJSON(w, r, http.StatusOK, nil)
}

// DeleteMovie handles DELETE /movies/{id}.
func (h *MovieHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r)
	if err != nil {
		h.respondError(w, r, http.StatusNotFound, msgMovieNotFound)
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	if _, err := h.store.GetByID(ctx, id); err != nil {
		h.respondStoreError(w, r, err, msgDeleteFailed)
		return
	}
	if err := h.store.Delete(ctx, id); err != nil {
		h.respondStoreError(w, r, err, msgDeleteFailed)
		return
	}

	h.logger.InfoContext(ctx, "Movie deleted", slog.Int64("movieID", id))
	h.respondJSON(w, r, http.StatusOK, nil)
}

// ListMoviesByGenre handles GET /movies/{genreName}.
func (h *MovieHandler) ListMoviesByGenre(w http.ResponseWriter, r *http.Request) {
	genreName := mux.Vars(r)["genreName"]

	ctx, cancel := h.storeContext(r)
	defer cancel()

	movies, err := h.store.ListByGenreName(ctx, genreName)
	if err != nil {
		h.respondStoreError(w, r, err, msgFilterFailed)
		return
	}
	h.logger.DebugContext(ctx, "Movies filtered by genre", slog.String("genre", genreName), slog.Int("count", len(movies)))
	h.respondJSON(w, r, http.StatusOK, movies)
}

// ListGenres handles GET /genres.
func (h *MovieHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	genres, err := h.store.ListGenres(ctx)
	if err != nil {
		h.respondStoreError(w, r, err, msgGenresFailed)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genres)
}

// ListLanguages handles GET /languages.
func (h *MovieHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	languages, err := h.store.ListLanguages(ctx)
	if err != nil {
		h.respondStoreError(w, r, err, msgLanguagesFailed)
		return
	}
	h.respondJSON(w, r, http.StatusOK, languages)
}

// Health handles GET /healthz.
func (h *MovieHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "Health check failed", slog.String("error", err.Error()))
		h.respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "available"})
}
