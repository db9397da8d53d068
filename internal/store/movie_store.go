package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"movie-catalog/internal/domain"
)

var (
	ErrMovieNotFound      = errors.New("movie not found")
	ErrMovieAlreadyExists = errors.New("movie with this title already exists")
	ErrInvalidReference   = errors.New("genre or language does not exist")
)

// MovieStore is the data access layer used by the HTTP and gRPC APIs.
type MovieStore interface {
	List(ctx context.Context) ([]*domain.Movie, error)
	ListByGenreName(ctx context.Context, genreName string) ([]*domain.Movie, error)
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	// FindByTitle matches the title case-insensitively.
	FindByTitle(ctx context.Context, title string) (*domain.Movie, error)
	// Create assigns movie.ID. It returns ErrMovieAlreadyExists when a
	// movie with the same title (ignoring case) is already stored.
	Create(ctx context.Context, movie *domain.Movie) error
	Update(ctx context.Context, id int64, req *domain.UpdateMovieRequest) error
	Delete(ctx context.Context, id int64) error
	ListGenres(ctx context.Context) ([]domain.Genre, error)
	ListLanguages(ctx context.Context) ([]domain.Language, error)
	Ping(ctx context.Context) error
}

// MemoryMovieStore keeps the catalog in process memory.
type MemoryMovieStore struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	nextID    int64
	movies    map[int64]*domain.Movie
	genres    map[int64]domain.Genre
	languages map[int64]domain.Language
}

// NewMemoryMovieStore returns an empty store seeded with the given reference data.
func NewMemoryMovieStore(logger *slog.Logger, genres []domain.Genre, languages []domain.Language) *MemoryMovieStore {
	s := &MemoryMovieStore{
		logger:    logger,
		movies:    make(map[int64]*domain.Movie),
		genres:    make(map[int64]domain.Genre, len(genres)),
		languages: make(map[int64]domain.Language, len(languages)),
	}
	for _, g := range genres {
		s.genres[g.ID] = g
	}
	for _, l := range languages {
		s.languages[l.ID] = l
	}
	return s
}

// DefaultGenres and DefaultLanguages seed the memory store for local runs.
var (
	DefaultGenres = []domain.Genre{
		{ID: 1, Name: "Action"}, {ID: 2, Name: "Comedy"}, {ID: 3, Name: "Drama"},
		{ID: 4, Name: "Science Fiction"}, {ID: 5, Name: "Horror"}, {ID: 6, Name: "Animation"},
	}
	DefaultLanguages = []domain.Language{
		{ID: 1, Name: "English"}, {ID: 2, Name: "Portuguese"}, {ID: 3, Name: "Spanish"},
		{ID: 4, Name: "French"}, {ID: 5, Name: "Japanese"},
	}
)

// withRelations returns a copy of m with genre and language filled in.
// Callers must hold s.mu.
func (s *MemoryMovieStore) withRelations(m *domain.Movie) *domain.Movie {
	movieCopy := *m
	movieCopy.Genre = s.genres[m.GenreID]
	movieCopy.Language = s.languages[m.LanguageID]
	return &movieCopy
}

func (s *MemoryMovieStore) checkReferences(genreID, languageID int64) error {
	if _, ok := s.genres[genreID]; !ok {
		return ErrInvalidReference
	}
	if _, ok := s.languages[languageID]; !ok {
		return ErrInvalidReference
	}
	return nil
}

// titleTakenLocked reports whether another movie already uses title.
func (s *MemoryMovieStore) titleTakenLocked(title string, exceptID int64) bool {
	for id, m := range s.movies {
		if id != exceptID && strings.EqualFold(m.Title, title) {
			return true
		}
	}
	return false
}

func (s *MemoryMovieStore) collect(keep func(*domain.Movie) bool) []*domain.Movie {
	result := make([]*domain.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		if keep(m) {
			result = append(result, s.withRelations(m))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Title == result[j].Title {
			return result[i].ID < result[j].ID
		}
		return result[i].Title < result[j].Title
	})
	return result
}

// List returns every movie ordered by title.
func (s *MemoryMovieStore) List(ctx context.Context) ([]*domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.logger.DebugContext(ctx, "Listing movies from memory", slog.Int("count", len(s.movies)))
	return s.collect(func(*domain.Movie) bool { return true }), nil
}

// ListByGenreName returns the movies whose genre name matches, ignoring case.
func (s *MemoryMovieStore) ListByGenreName(ctx context.Context, genreName string) ([]*domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.logger.DebugContext(ctx, "Listing movies by genre from memory", slog.String("genre", genreName))
	return s.collect(func(m *domain.Movie) bool {
		g, ok := s.genres[m.GenreID]
		return ok && strings.EqualFold(g.Name, genreName)
	}), nil
}

// GetByID finds a movie by its ID.
func (s *MemoryMovieStore) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return s.withRelations(m), nil
}

// FindByTitle finds a movie by title, ignoring case.
func (s *MemoryMovieStore) FindByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.movies {
		if strings.EqualFold(m.Title, title) {
			return s.withRelations(m), nil
		}
	}
	return nil, ErrMovieNotFound
}

// Create checks the title and references and inserts the movie under one lock.
func (s *MemoryMovieStore) Create(ctx context.Context, movie *domain.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.titleTakenLocked(movie.Title, 0) {
		s.logger.WarnContext(ctx, "Movie title already taken", slog.String("title", movie.Title))
		return ErrMovieAlreadyExists
	}
	if err := s.checkReferences(movie.GenreID, movie.LanguageID); err != nil {
		return err
	}

	s.nextID++
	movie.ID = s.nextID
	stored := *movie
	stored.Genre, stored.Language = domain.Genre{}, domain.Language{}
	s.movies[movie.ID] = &stored
	movie.Genre = s.genres[movie.GenreID]
	movie.Language = s.languages[movie.LanguageID]

	s.logger.InfoContext(ctx, "Movie created in memory", slog.Int64("movieID", movie.ID))
	return nil
}

// Update applies the present fields of req to the movie.
func (s *MemoryMovieStore) Update(ctx context.Context, id int64, req *domain.UpdateMovieRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	updated := *current
	req.Apply(&updated)
	if req.Title != nil && s.titleTakenLocked(updated.Title, id) {
		return ErrMovieAlreadyExists
	}
	if err := s.checkReferences(updated.GenreID, updated.LanguageID); err != nil {
		return err
	}
	s.movies[id] = &updated
	return nil
}

// Delete removes a movie by its ID.
func (s *MemoryMovieStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[id]; !ok {
		return ErrMovieNotFound
	}
	delete(s.movies, id)
	return nil
}

// ListGenres returns the genres ordered by name.
func (s *MemoryMovieStore) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	genres := make([]domain.Genre, 0, len(s.genres))
	for _, g := range s.genres {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].Name < genres[j].Name })
	return genres, nil
}

// ListLanguages returns the languages ordered by name.
func (s *MemoryMovieStore) ListLanguages(ctx context.Context) ([]domain.Language, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	languages := make([]domain.Language, 0, len(s.languages))
	for _, l := range s.languages {
		languages = append(languages, l)
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i].Name < languages[j].Name })
	return languages, nil
}

// Ping reports whether ctx is still live.
func (s *MemoryMovieStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
