// Package rpc exposes the reply selector over gRPC and provides a client
// that plugs a remote selector into the chat service.
//
// Messages are google.protobuf.Struct values so the service needs no
// generated code:
//
//	request:  {"utterance": string, "language": string}
//	response: {"rule_id": string, "language": string, "text": string,
//	           "fallback": bool, "language_fallback": bool}
package rpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/navyasetu/varunnetra/internal/respond"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "varunnetra.chat.v1.Responder"

const respondMethod = "/" + ServiceName + "/Respond"

// maxUtteranceLength matches the HTTP selection endpoint.
const maxUtteranceLength = 8000

// ResponderServer is the server API of the Responder service.
type ResponderServer interface {
	Respond(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Selector picks a reply for an utterance. *respond.Table implements it.
type Selector interface {
	Match(utterance, lang string) respond.Match
}

// Observer is told about every selection served. It may be nil.
type Observer interface {
	ObserveSelection(rule, language string, languageFallback bool)
}

var responderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ResponderServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Respond",
			Handler:    respondHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "varunnetra/chat/v1/responder.proto",
}

func respondHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ResponderServer).Respond(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: respondMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ResponderServer).Respond(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server serves selections from a Selector.
type Server struct {
	selector Selector
	observer Observer
}

// NewServer creates a Responder server. A nil selector means the built-in table.
func NewServer(selector Selector, observer Observer) *Server {
	if selector == nil {
		selector = respond.Default()
	}
	return &Server{selector: selector, observer: observer}
}

// Respond implements ResponderServer.
func (s *Server) Respond(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	utterance := fields["utterance"].GetStringValue()
	lang := fields["language"].GetStringValue()
	if len([]rune(utterance)) > maxUtteranceLength {
		return nil, status.Errorf(codes.InvalidArgument, "utterance longer than %d characters", maxUtteranceLength)
	}

	match := s.selector.Match(utterance, lang)
	if s.observer != nil {
		s.observer.ObserveSelection(match.RuleID, string(match.Language), match.LanguageFallback)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"rule_id":           match.RuleID,
		"language":          string(match.Language),
		"text":              match.Text,
		"fallback":          match.Fallback,
		"language_fallback": match.LanguageFallback,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

// Register installs the Responder and the standard health service on gs.
// The returned health server reports SERVING for both the whole server and
// the Responder service.
func Register(gs *grpc.Server, srv ResponderServer) *health.Server {
	gs.RegisterService(&responderServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

// LoggingInterceptor logs each unary call with its duration and status code.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		level := slog.LevelDebug
		if code != codes.OK {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "gRPC request",
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
