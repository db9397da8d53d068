package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are protobuf well-known types, so no generated code is needed.
const ServiceName = "catalog.MovieCatalog"

const (
	checkMovieExistsMethod = "/" + ServiceName + "/CheckMovieExists"
	getMovieInfoMethod     = "/" + ServiceName + "/GetMovieInfo"
)

// MovieCatalogServer is the server side of catalog.MovieCatalog.
type MovieCatalogServer interface {
	CheckMovieExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	GetMovieInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
}

// RegisterMovieCatalogServer registers srv on s.
func RegisterMovieCatalogServer(s grpclib.ServiceRegistrar, srv MovieCatalogServer) {
	s.RegisterService(&movieCatalogServiceDesc, srv)
}

var movieCatalogServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MovieCatalogServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "CheckMovieExists", Handler: checkMovieExistsHandler},
		{MethodName: "GetMovieInfo", Handler: getMovieInfoHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "catalog.proto",
}

func checkMovieExistsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MovieCatalogServer).CheckMovieExists(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: checkMovieExistsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MovieCatalogServer).CheckMovieExists(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getMovieInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MovieCatalogServer).GetMovieInfo(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: getMovieInfoMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MovieCatalogServer).GetMovieInfo(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}
