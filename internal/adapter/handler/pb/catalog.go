// Package pb defines the storefront.v1.Catalog gRPC service. Messages are
// plain Go structs carried by a JSON codec registered under the "json"
// content subtype; clients built with NewCatalogClient select it.
package pb

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	JSONCodecName = "json"

	CatalogServiceName          = "storefront.v1.Catalog"
	CatalogListProductsMethod   = "/storefront.v1.Catalog/ListProducts"
	CatalogListCategoriesMethod = "/storefront.v1.Catalog/ListCategories"
	CatalogGetProductMethod     = "/storefront.v1.Catalog/GetProduct"
	CatalogWatchPricesMethod    = "/storefront.v1.Catalog/WatchPrices"
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type ListProductsRequest struct {
	Category string `json:"category"`
	Query    string `json:"query"`
}

type ListProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

type GetProductRequest struct {
	ID string `json:"id"`
}

type GetProductResponse struct {
	Product       domain.Product `json:"product"`
	SelectedColor string         `json:"selected_color"`
}

type WatchPricesRequest struct {
	IntervalMs int64 `json:"interval_ms"`
}

type CatalogServer interface {
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*GetProductResponse, error)
	WatchPrices(*WatchPricesRequest, grpc.ServerStreamingServer[domain.DisplayPrices]) error
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(CatalogServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchPricesHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchPricesRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(CatalogServer).WatchPrices(in, &grpc.GenericServerStream[WatchPricesRequest, domain.DisplayPrices]{ServerStream: stream})
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListProducts",
			Handler: unaryHandler(CatalogListProductsMethod, func(s CatalogServer, ctx context.Context, in *ListProductsRequest) (any, error) {
				return s.ListProducts(ctx, in)
			}),
		},
		{
			MethodName: "ListCategories",
			Handler: unaryHandler(CatalogListCategoriesMethod, func(s CatalogServer, ctx context.Context, in *ListCategoriesRequest) (any, error) {
				return s.ListCategories(ctx, in)
			}),
		},
		{
			MethodName: "GetProduct",
			Handler: unaryHandler(CatalogGetProductMethod, func(s CatalogServer, ctx context.Context, in *GetProductRequest) (any, error) {
				return s.GetProduct(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchPrices",
			Handler:       watchPricesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "storefront/v1/catalog",
}

// CatalogClient calls the Catalog service with the JSON codec.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
}

func (c *CatalogClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	out := new(ListProductsResponse)
	if err := c.cc.Invoke(ctx, CatalogListProductsMethod, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	out := new(ListCategoriesResponse)
	if err := c.cc.Invoke(ctx, CatalogListCategoriesMethod, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*GetProductResponse, error) {
	out := new(GetProductResponse)
	if err := c.cc.Invoke(ctx, CatalogGetProductMethod, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) WatchPrices(ctx context.Context, in *WatchPricesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[domain.DisplayPrices], error) {
	stream, err := c.cc.NewStream(ctx, &CatalogServiceDesc.Streams[0], CatalogWatchPricesMethod, withJSON(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchPricesRequest, domain.DisplayPrices]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
