package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const callTimeout = 3 * time.Second

// MovieInfo is the summary returned by GetMovieInfo.
type MovieInfo struct {
	ID          int64
	Title       string
	Genre       string
	Language    string
	OscarCount  int
	ReleaseDate string
}

// Client calls catalog.MovieCatalog on behalf of other services.
type Client struct {
	conn   grpclib.ClientConnInterface
	closer func() error
	logger *slog.Logger
}

// Dial connects to the catalog gRPC server at addr. Extra options are
// appended after the default insecure transport credentials.
func Dial(addr string, logger *slog.Logger, opts ...grpclib.DialOption) (*Client, error) {
	opts = append([]grpclib.DialOption{grpclib.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpclib.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client for %s: %w", addr, err)
	}
	c := NewClient(conn, logger)
	c.closer = conn.Close
	return c, nil
}

// NewClient wraps an existing connection. Close is a no-op for it.
func NewClient(conn grpclib.ClientConnInterface, logger *slog.Logger) *Client {
	return &Client{conn: conn, logger: logger}
}

// CheckMovieExists asks the catalog whether movieID exists.
func (c *Client) CheckMovieExists(ctx context.Context, movieID int64) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(callCtx, checkMovieExistsMethod, wrapperspb.Int64(movieID), out); err != nil {
		st, _ := status.FromError(err)
		c.logger.ErrorContext(ctx, "MovieCatalog.CheckMovieExists gRPC call failed",
			slog.Int64("movie_id", movieID),
			slog.String("code", st.Code().String()),
			slog.String("message", st.Message()))
		return false, fmt.Errorf("grpc CheckMovieExists failed for movie %d: %w", movieID, err)
	}
	return out.GetValue(), nil
}

// GetMovieInfo fetches the summary of a single movie.
func (c *Client) GetMovieInfo(ctx context.Context, movieID int64) (*MovieInfo, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, getMovieInfoMethod, wrapperspb.Int64(movieID), out); err != nil {
		st, _ := status.FromError(err)
		c.logger.ErrorContext(ctx, "MovieCatalog.GetMovieInfo gRPC call failed",
			slog.Int64("movie_id", movieID),
			slog.String("code", st.Code().String()),
			slog.String("message", st.Message()))
		return nil, fmt.Errorf("grpc GetMovieInfo failed for movie %d: %w", movieID, err)
	}

	f := out.GetFields()
	return &MovieInfo{
		ID:          int64(f["id"].GetNumberValue()),
		Title:       f["title"].GetStringValue(),
		Genre:       f["genre"].GetStringValue(),
		Language:    f["language"].GetStringValue(),
		OscarCount:  int(f["oscar_count"].GetNumberValue()),
		ReleaseDate: f["release_date"].GetStringValue(),
	}, nil
}

// Close releases the connection opened by Dial.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	c.logger.Info("Closing gRPC connection to MovieCatalog")
	return c.closer()
}
