package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the catalog routes. gorilla/mux tries routes in
// registration order, so the numeric id routes come before the
// catch-all genre route; they only overlap on path, never on method.
func NewRouter(handler *MovieHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(handler.RequestLogger, handler.RecoverPanic)
	router.NotFoundHandler = handler.RequestLogger(http.HandlerFunc(handler.routeNotFound))
	router.MethodNotAllowedHandler = handler.RequestLogger(http.HandlerFunc(handler.methodNotAllowed))

	router.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	router.HandleFunc("/genres", handler.ListGenres).Methods(http.MethodGet)
	router.HandleFunc("/languages", handler.ListLanguages).Methods(http.MethodGet)

	moviesRouter := router.PathPrefix("/movies").Subrouter()
	moviesRouter.HandleFunc("", handler.ListMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("", handler.CreateMovie).Methods(http.MethodPost)
	moviesRouter.HandleFunc("/{id:[0-9]+}", handler.UpdateMovie).Methods(http.MethodPut)
	moviesRouter.HandleFunc("/{id:[0-9]+}", handler.DeleteMovie).Methods(http.MethodDelete)
	moviesRouter.HandleFunc("/{genreName}", handler.ListMoviesByGenre).Methods(http.MethodGet)

	return router
}
