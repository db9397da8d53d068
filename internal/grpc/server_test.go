package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// startServer serves s over an in-memory listener and returns a client.
func startServer(t *testing.T, s store.MovieStore) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpclib.NewServer()
	RegisterMovieCatalogServer(srv, NewServer(s, testLogger))
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet", testLogger,
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func seededStore(t *testing.T) *store.MemoryMovieStore {
	t.Helper()
	s := store.NewMemoryMovieStore(testLogger, store.DefaultGenres, store.DefaultLanguages)
	m := &domain.Movie{Title: "Central Station", GenreID: 3, LanguageID: 2, OscarCount: 0, ReleaseDate: domain.NewDate(1998, 4, 3)}
	if err := s.Create(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCheckMovieExists(t *testing.T) {
	client := startServer(t, seededStore(t))

	exists, err := client.CheckMovieExists(context.Background(), 1)
	if err != nil || !exists {
		t.Fatalf("CheckMovieExists(1) = %v, %v", exists, err)
	}
	exists, err = client.CheckMovieExists(context.Background(), 2)
	if err != nil || exists {
		t.Fatalf("CheckMovieExists(2) = %v, %v", exists, err)
	}

	_, err = client.CheckMovieExists(context.Background(), 0)
	if status.Code(errors.Unwrap(err)) != codes.InvalidArgument {
		t.Fatalf("CheckMovieExists(0) err = %v, want InvalidArgument", err)
	}
}

func TestGetMovieInfo(t *testing.T) {
	client := startServer(t, seededStore(t))

	info, err := client.GetMovieInfo(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetMovieInfo: %v", err)
	}
	want := MovieInfo{ID: 1, Title: "Central Station", Genre: "Drama", Language: "Portuguese", OscarCount: 0, ReleaseDate: "1998-04-03"}
	if *info != want {
		t.Errorf("info = %+v, want %+v", *info, want)
	}

	_, err = client.GetMovieInfo(context.Background(), 404)
	if status.Code(errors.Unwrap(err)) != codes.NotFound {
		t.Fatalf("GetMovieInfo(404) err = %v, want NotFound", err)
	}
}

type failingStore struct {
	store.MovieStore
}

func (failingStore) GetByID(context.Context, int64) (*domain.Movie, error) {
	return nil, errors.New("database is down")
}

func TestServerStoreFailure(t *testing.T) {
	srv := NewServer(failingStore{}, testLogger)

	_, err := srv.CheckMovieExists(context.Background(), nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("nil request err = %v, want InvalidArgument", err)
	}

	client := startServer(t, failingStore{})
	_, err = client.GetMovieInfo(context.Background(), 1)
	if status.Code(errors.Unwrap(err)) != codes.Internal {
		t.Errorf("GetMovieInfo err = %v, want Internal", err)
	}
	_, err = client.CheckMovieExists(context.Background(), 1)
	if status.Code(errors.Unwrap(err)) != codes.Internal {
		t.Errorf("CheckMovieExists err = %v, want Internal", err)
	}
}
