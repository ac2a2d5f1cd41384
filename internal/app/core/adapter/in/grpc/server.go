package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/JoeShih716/go-point-wallet/internal/app/core/domain"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/usecase"
	"github.com/JoeShih716/go-point-wallet/internal/metrics"
	pb "github.com/JoeShih716/go-point-wallet/proto"
)

type GrpcServer struct {
	pb.UnimplementedPointServiceServer
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

func (s *GrpcServer) Charge(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, amount, err := pb.ParseAmountRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	p, err := s.core.Charge(ctx, userID, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return toUserPoint(p).ToStruct(), nil
}

func (s *GrpcServer) Use(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, amount, err := pb.ParseAmountRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	p, err := s.core.Use(ctx, userID, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return toUserPoint(p).ToStruct(), nil
}

func (s *GrpcServer) Search(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	p, err := s.core.Search(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toUserPoint(p).ToStruct(), nil
}

func (s *GrpcServer) History(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	records, err := s.core.History(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	out := make([]pb.PointHistory, 0, len(records))
	for _, r := range records {
		out = append(out, pb.PointHistory{
			ID:           r.ID,
			UserID:       r.UserID,
			Amount:       r.Amount,
			Type:         r.Type.String(),
			UpdateMillis: r.UpdateMillis,
		})
	}
	return pb.NewHistoryList(out), nil
}

// LoggingInterceptor 記錄每個請求的方法、狀態碼與耗時，並累計 metrics
func LoggingInterceptor(logger log.Logger) grpc.UnaryServerInterceptor {
	helper := log.NewHelper(log.With(logger, "module", "adapter/grpc"))
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		metrics.RecordGRPCRequest(info.FullMethod, code.String())
		helper.WithContext(ctx).Infow(
			"method", info.FullMethod,
			"code", code.String(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// Shutdown 先嘗試 GracefulStop，ctx 到期仍有請求未完成時改用 Stop 強制關閉
//
// 回傳:
//
//	error: 強制關閉時回傳 ctx.Err()
func Shutdown(ctx context.Context, s *grpc.Server) error {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.Stop()
		<-done
		return ctx.Err()
	}
}

// toStatus 業務錯誤轉換為 gRPC 狀態碼，業務錯誤屬於呼叫端錯誤，不應自動重試
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrPointOverflow):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func toUserPoint(p *domain.UserPoint) pb.UserPoint {
	return pb.UserPoint{
		ID:           p.ID,
		Point:        p.Point,
		UpdateMillis: p.UpdateMillis,
	}
}

var _ pb.PointServiceServer = (*GrpcServer)(nil)
