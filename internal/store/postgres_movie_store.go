package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"movie-catalog/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

const selectMovies = `SELECT m.id, m.title, m.genre_id, m.language_id, m.oscar_count, m.release_date,
       g.id AS "genre.id", g.name AS "genre.name",
       l.id AS "language.id", l.name AS "language.name"
FROM movies m
JOIN genres g ON g.id = m.genre_id
JOIN languages l ON l.id = m.language_id`

const orderByTitle = ` ORDER BY m.title ASC, m.id ASC`

// PostgresMovieStore implements MovieStore on PostgreSQL.
type PostgresMovieStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresMovieStore creates a store on top of an open pool.
func NewPostgresMovieStore(db *sqlx.DB, logger *slog.Logger) (*PostgresMovieStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresMovieStore{db: db, logger: logger}, nil
}

// Migrate applies the embedded schema. It is idempotent.
func (s *PostgresMovieStore) Migrate(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Applying catalog schema")
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// constraintError translates PostgreSQL constraint violations into store
// errors. It returns nil for anything else.
func constraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		return ErrMovieAlreadyExists
	case "23503": // foreign_key_violation
		return ErrInvalidReference
	}
	return nil
}

// List returns every movie with its genre and language, ordered by title.
func (s *PostgresMovieStore) List(ctx context.Context) ([]*domain.Movie, error) {
	movies := []*domain.Movie{}
	s.logger.DebugContext(ctx, "Executing List movies query")
	if err := s.db.SelectContext(ctx, &movies, selectMovies+orderByTitle); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

// ListByGenreName returns the movies whose genre name matches, ignoring case.
func (s *PostgresMovieStore) ListByGenreName(ctx context.Context, genreName string) ([]*domain.Movie, error) {
	movies := []*domain.Movie{}
	query := selectMovies + ` WHERE lower(g.name) = lower($1)` + orderByTitle

	s.logger.DebugContext(ctx, "Executing ListByGenreName query", slog.String("genre", genreName))
	if err := s.db.SelectContext(ctx, &movies, query, genreName); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies by genre from DB", slog.String("genre", genreName), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list movies by genre: %w", err)
	}
	return movies, nil
}

func (s *PostgresMovieStore) getOne(ctx context.Context, query string, arg any) (*domain.Movie, error) {
	var movie domain.Movie
	if err := s.db.GetContext(ctx, &movie, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &movie, nil
}

// GetByID finds a movie by its ID.
func (s *PostgresMovieStore) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	s.logger.DebugContext(ctx, "Executing GetMovieByID query", slog.Int64("movieID", id))
	movie, err := s.getOne(ctx, selectMovies+` WHERE m.id = $1`, id)
	if err != nil && !errors.Is(err, ErrMovieNotFound) {
		s.logger.ErrorContext(ctx, "Failed to get movie by ID from DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movie by ID: %w", err)
	}
	return movie, err
}

// FindByTitle finds a movie by title, ignoring case.
func (s *PostgresMovieStore) FindByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	s.logger.DebugContext(ctx, "Executing FindByTitle query", slog.String("title", title))
	movie, err := s.getOne(ctx, selectMovies+` WHERE lower(m.title) = lower($1) LIMIT 1`, title)
	if err != nil && !errors.Is(err, ErrMovieNotFound) {
		s.logger.ErrorContext(ctx, "Failed to find movie by title in DB", slog.String("title", title), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to find movie by title: %w", err)
	}
	return movie, err
}

// Create inserts the movie unless the case-insensitive title index already
// holds it. The check and the insert are one statement.
func (s *PostgresMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	query := `INSERT INTO movies (title, genre_id, language_id, oscar_count, release_date)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT ((lower(title))) DO NOTHING
RETURNING id`

	s.logger.DebugContext(ctx, "Executing Create movie query", slog.String("title", movie.Title))
	err := s.db.QueryRowxContext(ctx, query,
		movie.Title, movie.GenreID, movie.LanguageID, movie.OscarCount, movie.ReleaseDate,
	).Scan(&movie.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Movie already exists (title conflict in DB)", slog.String("title", movie.Title))
			return ErrMovieAlreadyExists
		}
		if mapped := constraintError(err); mapped != nil {
			s.logger.WarnContext(ctx, "Movie create rejected by constraint", slog.String("title", movie.Title), slog.String("error", err.Error()))
			return mapped
		}
		s.logger.ErrorContext(ctx, "Failed to create movie in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create movie: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie created successfully in DB", slog.Int64("movieID", movie.ID))
	return nil
}

// Update changes only the fields present in req.
func (s *PostgresMovieStore) Update(ctx context.Context, id int64, req *domain.UpdateMovieRequest) error {
	if req.IsEmpty() {
		_, err := s.GetByID(ctx, id)
		return err
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.GenreID != nil {
		set("genre_id", *req.GenreID)
	}
	if req.LanguageID != nil {
		set("language_id", *req.LanguageID)
	}
	if req.OscarCount != nil {
		set("oscar_count", *req.OscarCount)
	}
	if req.ReleaseDate != nil {
		set("release_date", *req.ReleaseDate)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE movies SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	s.logger.DebugContext(ctx, "Executing Update movie query", slog.Int64("movieID", id), slog.String("query", query))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := constraintError(err); mapped != nil {
			s.logger.WarnContext(ctx, "Movie update rejected by constraint", slog.Int64("movieID", id), slog.String("error", err.Error()))
			return mapped
		}
		s.logger.ErrorContext(ctx, "Failed to update movie in DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update movie: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check movie update result: %w", err)
	}
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No movie found to update in DB", slog.Int64("movieID", id))
		return ErrMovieNotFound
	}
	s.logger.InfoContext(ctx, "Movie updated successfully in DB", slog.Int64("movieID", id))
	return nil
}

// Delete removes a movie by its ID.
func (s *PostgresMovieStore) Delete(ctx context.Context, id int64) error {
	s.logger.DebugContext(ctx, "Executing Delete movie query", slog.Int64("movieID", id))
	result, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete movie in DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check movie delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrMovieNotFound
	}
	s.logger.InfoContext(ctx, "Movie deleted successfully in DB", slog.Int64("movieID", id))
	return nil
}

// ListGenres returns the genres ordered by name.
func (s *PostgresMovieStore) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	genres := []domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, `SELECT id, name FROM genres ORDER BY name ASC`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list genres from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

// ListLanguages returns the languages ordered by name.
func (s *PostgresMovieStore) ListLanguages(ctx context.Context) ([]domain.Language, error) {
	languages := []domain.Language{}
	if err := s.db.SelectContext(ctx, &languages, `SELECT id, name FROM languages ORDER BY name ASC`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list languages from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	return languages, nil
}

// Ping checks the database connection.
func (s *PostgresMovieStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
