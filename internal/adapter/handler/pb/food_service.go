// Package pb describes the food.v1.FoodService gRPC API. Messages travel as
// JSON through the codec registered in this package.
package pb

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
)

const (
	ServiceName = "food.v1.FoodService"

	FoodService_List_FullMethodName   = "/food.v1.FoodService/List"
	FoodService_Add_FullMethodName    = "/food.v1.FoodService/Add"
	FoodService_Remove_FullMethodName = "/food.v1.FoodService/Remove"
)

type ListRequest struct {
	Type       string `json:"type"`
	NameFilter string `json:"name_filter,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

type FoodItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Type     string  `json:"type"`
}

type ListResponse struct {
	Items []FoodItem `json:"items"`
}

// AddItem is the client-side shape of one batch item; nil fields are omitted.
type AddItem struct {
	Name     *string  `json:"name,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
	Type     *string  `json:"type,omitempty"`
}

// AddRequest carries the batch as a raw JSON array so the server decodes it
// with the same strict item parser as the HTTP API.
type AddRequest struct {
	Items json.RawMessage `json:"items"`
}

func NewAddRequest(items ...AddItem) (*AddRequest, error) {
	if items == nil {
		items = []AddItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return &AddRequest{Items: data}, nil
}

type Violation struct {
	Property string `json:"property"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

type AddResponse struct {
	Status string              `json:"status"`
	Errors map[int][]Violation `json:"errors,omitempty"`
}

type RemoveRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type RemoveResponse struct {
	Removed bool `json:"removed"`
}

type FoodServiceServer interface {
	List(context.Context, *ListRequest) (*ListResponse, error)
	Add(context.Context, *AddRequest) (*AddResponse, error)
	Remove(context.Context, *RemoveRequest) (*RemoveResponse, error)
}

func RegisterFoodServiceServer(s grpc.ServiceRegistrar, srv FoodServiceServer) {
	s.RegisterService(&FoodService_ServiceDesc, srv)
}

var FoodService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FoodServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "List",
			Handler:    unaryHandler(FoodService_List_FullMethodName, FoodServiceServer.List),
		},
		{
			MethodName: "Add",
			Handler:    unaryHandler(FoodService_Add_FullMethodName, FoodServiceServer.Add),
		},
		{
			MethodName: "Remove",
			Handler:    unaryHandler(FoodService_Remove_FullMethodName, FoodServiceServer.Remove),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "food/v1/food_service",
}

func unaryHandler[Req, Resp any](fullMethod string, call func(FoodServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FoodServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FoodServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type FoodServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFoodServiceClient(cc grpc.ClientConnInterface) *FoodServiceClient {
	return &FoodServiceClient{cc: cc}
}

func (c *FoodServiceClient) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	out := new(ListResponse)
	if err := c.cc.Invoke(ctx, FoodService_List_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FoodServiceClient) Add(ctx context.Context, in *AddRequest, opts ...grpc.CallOption) (*AddResponse, error) {
	out := new(AddResponse)
	if err := c.cc.Invoke(ctx, FoodService_Add_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FoodServiceClient) Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error) {
	out := new(RemoveResponse)
	if err := c.cc.Invoke(ctx, FoodService_Remove_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
