// Package proto 定義 point.v1.PointService 的 gRPC 服務描述。
//
// 訊息一律使用 protobuf well-known types (structpb / wrapperspb)，
// 欄位與 HTTP JSON 相同，不需要額外的 .proto 編譯步驟。
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "point.v1.PointService"

	PointService_Charge_FullMethodName  = "/point.v1.PointService/Charge"
	PointService_Use_FullMethodName     = "/point.v1.PointService/Use"
	PointService_Search_FullMethodName  = "/point.v1.PointService/Search"
	PointService_History_FullMethodName = "/point.v1.PointService/History"
)

// PointServiceClient 是 PointService 的客戶端介面
type PointServiceClient interface {
	// Charge request: {userId, amount}，回傳 UserPoint
	Charge(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Use request: {userId, amount}，回傳 UserPoint
	Use(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// Search request: userId
	Search(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	// History request: userId，回傳由新到舊的紀錄
	History(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type pointServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPointServiceClient(cc grpc.ClientConnInterface) PointServiceClient {
	return &pointServiceClient{cc}
}

func (c *pointServiceClient) Charge(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PointService_Charge_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pointServiceClient) Use(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PointService_Use_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pointServiceClient) Search(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PointService_Search_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pointServiceClient) History(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, PointService_History_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PointServiceServer 是 PointService 的服務端介面
type PointServiceServer interface {
	Charge(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Use(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Search(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	History(context.Context, *wrapperspb.Int64Value) (*structpb.ListValue, error)
}

// UnimplementedPointServiceServer 嵌入後未實作的方法回傳 Unimplemented
type UnimplementedPointServiceServer struct{}

func (UnimplementedPointServiceServer) Charge(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Charge not implemented")
}

func (UnimplementedPointServiceServer) Use(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Use not implemented")
}

func (UnimplementedPointServiceServer) Search(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Search not implemented")
}

func (UnimplementedPointServiceServer) History(context.Context, *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	return nil, status.Error(codes.Unimplemented, "method History not implemented")
}

// RegisterPointServiceServer 註冊服務
func RegisterPointServiceServer(s grpc.ServiceRegistrar, srv PointServiceServer) {
	s.RegisterService(&PointService_ServiceDesc, srv)
}

func chargeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PointServiceServer).Charge(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PointService_Charge_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PointServiceServer).Charge(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func useHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PointServiceServer).Use(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PointService_Use_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PointServiceServer).Use(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func searchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PointServiceServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PointService_Search_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PointServiceServer).Search(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func historyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PointServiceServer).History(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PointService_History_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PointServiceServer).History(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// PointService_ServiceDesc 是 PointService 的 grpc.ServiceDesc
var PointService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PointServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Charge", Handler: chargeHandler},
		{MethodName: "Use", Handler: useHandler},
		{MethodName: "Search", Handler: searchHandler},
		{MethodName: "History", Handler: historyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "point/v1/point.proto",
}
