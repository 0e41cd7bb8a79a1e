package facade

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net"

	"github.com/cuemby/catalogd/pkg/log"
	"github.com/cuemby/catalogd/pkg/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ServiceName is the gRPC service path every Invoke call is routed
// under: one service exposing a single collapsed method, rather than
// one RPC per operation, since no protoc-generated bindings back this
// build.
const ServiceName = "catalogd.Facade"

// Server exposes a Facade over gRPC, secured with an mTLS
// certificate-authority pattern (pkg/security.CertAuthority-issued
// server certificate). Client certificates are requested
// (tls.RequestClientCert) but not required or verified: a handshake
// without one succeeds.
type Server struct {
	facade *Facade
	grpc   *grpc.Server
	logger zerolog.Logger
}

// NewServer builds a Server backed by facade, loading the server
// certificate and CA pool from certDir (see pkg/security.GetCertDir).
func NewServer(f *Facade, certDir string) (*Server, error) {
	cert, err := security.LoadCertFromFile(certDir)
	if err != nil {
		return nil, fmt.Errorf("load facade server certificate: %w", err)
	}
	caCert, err := security.LoadCACertFromFile(certDir)
	if err != nil {
		return nil, fmt.Errorf("load facade CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	tlsConfig := &tls.Config{
		ClientAuth:   tls.RequestClientCert,
		Certificates: []tls.Certificate{*cert},
		ClientCAs:    pool,
		MinVersion:   tls.VersionTLS13,
	}

	grpcServer := grpc.NewServer(grpc.Creds(credentials.NewTLS(tlsConfig)), grpc.ForceServerCodec(jsonCodec{}))
	s := &Server{facade: f, grpc: grpcServer, logger: log.WithComponent("facade-server")}
	grpcServer.RegisterService(&serviceDesc, s)
	return s, nil
}

// Start listens on addr and serves until Stop is called.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("facade: listen on %s: %w", addr, err)
	}
	s.logger.Info().Str("addr", addr).Msg("facade gRPC server listening")
	return s.grpc.Serve(lis)
}

// Stop gracefully drains in-flight RPCs before returning.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*invokeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Invoke", Handler: invokeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pkg/facade/server.go",
}

type invokeServer interface {
	Invoke(ctx context.Context, env *Envelope) (*Envelope, error)
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Envelope)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(invokeServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Invoke"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(invokeServer).Invoke(ctx, req.(*Envelope))
	}
	return interceptor(ctx, in, info, handler)
}

// Invoke is the sole gRPC method; it dispatches on env.Operation to the
// matching Facade method, unmarshalling env.Payload into that
// operation's params type and marshalling the result back. Every
// request is assigned a correlation ID here, independent of whatever
// SessionID a ClientRequest payload carries, so every log line Invoke
// writes for this call can be tied together. The dispatched Facade
// method is not given the ID, so its own log lines do not carry it.
func (s *Server) Invoke(ctx context.Context, env *Envelope) (*Envelope, error) {
	requestID := uuid.New().String()
	issuedAt := timestamppb.Now()
	reqLogger := s.logger.With().Str("request_id", requestID).Str("operation", env.Operation).Logger()

	result, err := s.dispatch(ctx, env.Operation, env.Payload)
	if err != nil {
		if catalogErr, ok := asCatalogError(err); ok {
			reqLogger.Debug().Msg("facade operation rejected")
			return &Envelope{Operation: env.Operation, Error: catalogErr, RequestID: requestID, IssuedAt: issuedAt}, nil
		}
		reqLogger.Error().Err(err).Msg("facade operation failed")
		return nil, status.Errorf(codes.Internal, "%v", err)
	}
	payload, err := encodePayload(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode %s result: %v", env.Operation, err)
	}
	return &Envelope{Operation: env.Operation, Payload: payload, RequestID: requestID, IssuedAt: issuedAt}, nil
}

func (s *Server) dispatch(_ context.Context, op string, payload json.RawMessage) (any, error) {
	switch op {
	case "get_db_names":
		return decodeAndCall(payload, s.facade.GetDbNames)
	case "get_table_names":
		return decodeAndCall(payload, s.facade.GetTableNames)
	case "describe_table":
		return decodeAndCall(payload, s.facade.DescribeTable)
	case "catalog_update":
		return decodeAndCall(payload, s.facade.ApplyCatalogUpdate)
	case "exec_metadata_op":
		return decodeAndCall(payload, s.facade.ExecMetadataOp)
	case "alter_table":
		return nil, decodeAndRun(payload, s.facade.AlterTable)
	case "create_database":
		return nil, decodeAndRun(payload, s.facade.CreateDatabase)
	case "create_table":
		return nil, decodeAndRun(payload, s.facade.CreateTable)
	case "create_table_like":
		return nil, decodeAndRun(payload, s.facade.CreateTableLike)
	case "drop_database":
		return nil, decodeAndRun(payload, s.facade.DropDatabase)
	case "drop_table":
		return nil, decodeAndRun(payload, s.facade.DropTable)
	case "update_metastore":
		return nil, decodeAndRun(payload, s.facade.UpdateMetastore)
	case "reset_catalog":
		return nil, s.facade.ResetCatalog()
	default:
		return nil, status.Errorf(codes.Unimplemented, "unknown facade operation %q", op)
	}
}

func decodeAndRun[P any](payload json.RawMessage, fn func(P) error) error {
	var params P
	if err := json.Unmarshal(payload, &params); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return fn(params)
}

func decodeAndCall[P, R any](payload json.RawMessage, fn func(P) (R, error)) (R, error) {
	var params P
	if err := json.Unmarshal(payload, &params); err != nil {
		var zero R
		return zero, fmt.Errorf("decode params: %w", err)
	}
	return fn(params)
}
