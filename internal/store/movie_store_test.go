package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"movie-catalog/internal/domain"
)

func newTestMemoryStore() *MemoryMovieStore {
	return NewMemoryMovieStore(slog.New(slog.NewTextHandler(io.Discard, nil)), DefaultGenres, DefaultLanguages)
}

func mustCreate(t *testing.T, s MovieStore, title string, genreID int64) *domain.Movie {
	t.Helper()
	m := &domain.Movie{Title: title, GenreID: genreID, LanguageID: 1, OscarCount: 1, ReleaseDate: domain.NewDate(2000, 1, 1)}
	if err := s.Create(context.Background(), m); err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return m
}

func TestMemoryListSortedByTitle(t *testing.T) {
	s := newTestMemoryStore()
	mustCreate(t, s, "Zodiac", 3)
	mustCreate(t, s, "Alien", 4)
	mustCreate(t, s, "Memento", 3)

	movies, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Alien", "Memento", "Zodiac"}
	if len(movies) != len(want) {
		t.Fatalf("got %d movies, want %d", len(movies), len(want))
	}
	for i, m := range movies {
		if m.Title != want[i] {
			t.Errorf("movies[%d] = %q, want %q", i, m.Title, want[i])
		}
		if m.Genre.ID != m.GenreID || m.Language.Name != "English" {
			t.Errorf("relations not embedded: %+v", m)
		}
	}
}

func TestMemoryCreateDuplicateTitle(t *testing.T) {
	s := newTestMemoryStore()
	mustCreate(t, s, "Inception", 4)

	dup := &domain.Movie{Title: "INCEPTION", GenreID: 4, LanguageID: 1}
	if err := s.Create(context.Background(), dup); !errors.Is(err, ErrMovieAlreadyExists) {
		t.Fatalf("err = %v, want ErrMovieAlreadyExists", err)
	}
	found, err := s.FindByTitle(context.Background(), "inception")
	if err != nil || found.Title != "Inception" {
		t.Fatalf("FindByTitle = %+v, %v", found, err)
	}
	movies, _ := s.List(context.Background())
	if len(movies) != 1 {
		t.Errorf("persisted %d movies, want 1", len(movies))
	}
}

func TestMemoryCreateConcurrentDuplicates(t *testing.T) {
	s := newTestMemoryStore()
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := &domain.Movie{Title: "Heat", GenreID: 1, LanguageID: 1}
			if err := s.Create(context.Background(), m); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrMovieAlreadyExists) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("%d creates succeeded, want 1", succeeded)
	}
}

func TestMemoryCreateInvalidReference(t *testing.T) {
	s := newTestMemoryStore()
	m := &domain.Movie{Title: "Ghost", GenreID: 99, LanguageID: 1}
	if err := s.Create(context.Background(), m); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("err = %v, want ErrInvalidReference", err)
	}
	m = &domain.Movie{Title: "Ghost", GenreID: 1, LanguageID: 99}
	if err := s.Create(context.Background(), m); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("err = %v, want ErrInvalidReference", err)
	}
}

func TestMemoryListByGenreName(t *testing.T) {
	s := newTestMemoryStore()
	mustCreate(t, s, "Mad Max", 1)
	mustCreate(t, s, "Die Hard", 1)
	mustCreate(t, s, "Amelie", 2)

	for _, name := range []string{"Action", "action", "ACTION"} {
		movies, err := s.ListByGenreName(context.Background(), name)
		if err != nil {
			t.Fatal(err)
		}
		if len(movies) != 2 || movies[0].Title != "Die Hard" || movies[1].Title != "Mad Max" {
			t.Errorf("ListByGenreName(%q) = %+v", name, movies)
		}
	}
	movies, _ := s.ListByGenreName(context.Background(), "Western")
	if movies == nil || len(movies) != 0 {
		t.Errorf("unknown genre should give empty non-nil slice, got %#v", movies)
	}
}

func TestMemoryUpdate(t *testing.T) {
	s := newTestMemoryStore()
	m := mustCreate(t, s, "Arrival", 4)
	mustCreate(t, s, "Sicario", 3)

	date := domain.NewDate(2016, 11, 11)
	oscars := 1
	if err := s.Update(context.Background(), m.ID, &domain.UpdateMovieRequest{OscarCount: &oscars, ReleaseDate: &date}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.GetByID(context.Background(), m.ID)
	if got.OscarCount != 1 || got.ReleaseDate.String() != "2016-11-11" || got.Title != "Arrival" {
		t.Errorf("unexpected movie after update: %+v", got)
	}

	taken := "sicario"
	if err := s.Update(context.Background(), m.ID, &domain.UpdateMovieRequest{Title: &taken}); !errors.Is(err, ErrMovieAlreadyExists) {
		t.Errorf("rename onto existing title: err = %v", err)
	}
	own := "ARRIVAL"
	if err := s.Update(context.Background(), m.ID, &domain.UpdateMovieRequest{Title: &own}); err != nil {
		t.Errorf("recasing own title: %v", err)
	}
	if err := s.Update(context.Background(), 999, &domain.UpdateMovieRequest{Title: &own}); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("missing movie: err = %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	s := newTestMemoryStore()
	m := mustCreate(t, s, "Jaws", 5)

	if err := s.Delete(context.Background(), m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetByID(context.Background(), m.ID); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("GetByID after delete: %v", err)
	}
	if err := s.Delete(context.Background(), m.ID); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestMemoryReferenceData(t *testing.T) {
	s := newTestMemoryStore()
	genres, _ := s.ListGenres(context.Background())
	if len(genres) != len(DefaultGenres) || genres[0].Name != "Action" {
		t.Errorf("genres = %+v", genres)
	}
	languages, _ := s.ListLanguages(context.Background())
	if len(languages) != len(DefaultLanguages) || languages[0].Name != "English" {
		t.Errorf("languages = %+v", languages)
	}
}
