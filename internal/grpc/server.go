package grpc

import (
	"context"
	"errors"
	"log/slog"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server implements MovieCatalogServer on top of a MovieStore.
type Server struct {
	store  store.MovieStore
	logger *slog.Logger
}

// NewServer creates the gRPC catalog server.
func NewServer(movieStore store.MovieStore, logger *slog.Logger) *Server {
	return &Server{
		store:  movieStore,
		logger: logger,
	}
}

// movieInfo flattens a movie into a protobuf Struct.
func movieInfo(movie *domain.Movie) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":           movie.ID,
		"title":        movie.Title,
		"genre":        movie.Genre.Name,
		"language":     movie.Language.Name,
		"oscar_count":  movie.OscarCount,
		"release_date": movie.ReleaseDate.String(),
	})
}

// GetMovieInfo returns the movie summary or NotFound.
func (s *Server) GetMovieInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC GetMovieInfo called", slog.Int64("movie_id", id))

	if id < 1 {
		return nil, status.Errorf(codes.InvalidArgument, "movie id must be positive")
	}

	movie, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			s.logger.WarnContext(ctx, "Movie not found by ID for GetMovieInfo", slog.Int64("movie_id", id))
			return nil, status.Errorf(codes.NotFound, "movie not found with ID %d", id)
		}
		s.logger.ErrorContext(ctx, "Failed to get movie by ID from store for GetMovieInfo", slog.Int64("movie_id", id), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to retrieve movie details")
	}

	info, err := movieInfo(movie)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode movie details: %v", err)
	}
	return info, nil
}

// CheckMovieExists answers false for a missing movie instead of NotFound.
func (s *Server) CheckMovieExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	id := req.GetValue()
	s.logger.InfoContext(ctx, "gRPC CheckMovieExists called", slog.Int64("movie_id", id))

	if id < 1 {
		return nil, status.Errorf(codes.InvalidArgument, "movie id must be positive")
	}

	if _, err := s.store.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			return wrapperspb.Bool(false), nil
		}
		s.logger.ErrorContext(ctx, "Failed to check movie existence from store", slog.Int64("movie_id", id), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to check movie existence")
	}
	return wrapperspb.Bool(true), nil
}
