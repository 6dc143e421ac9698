package handler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/storefront/internal/adapter/handler/pb"
	"github.com/rl1809/storefront/internal/core/catalog"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const minWatchInterval = 10 * time.Millisecond

type GRPCHandler struct {
	catalog  *service.CatalogService
	sessions *service.SessionService
	logger   zerolog.Logger
}

func NewGRPCHandler(catalogService *service.CatalogService, sessions *service.SessionService, logger zerolog.Logger) *GRPCHandler {
	return &GRPCHandler{
		catalog:  catalogService,
		sessions: sessions,
		logger:   logger.With().Str("component", "grpc").Logger(),
	}
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *pb.ListProductsRequest) (*pb.ListProductsResponse, error) {
	products := h.catalog.List(domain.FilterState{Category: req.Category, Query: req.Query})
	return &pb.ListProductsResponse{Products: products}, nil
}

func (h *GRPCHandler) ListCategories(ctx context.Context, req *pb.ListCategoriesRequest) (*pb.ListCategoriesResponse, error) {
	return &pb.ListCategoriesResponse{Categories: h.catalog.Categories()}, nil
}

func (h *GRPCHandler) GetProduct(ctx context.Context, req *pb.GetProductRequest) (*pb.GetProductResponse, error) {
	view, err := h.catalog.Detail(req.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, status.Error(codes.NotFound, "product not found")
		}
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &pb.GetProductResponse{Product: view.Product, SelectedColor: view.SelectedColor}, nil
}

// WatchPrices streams display prices from a simulator that lives exactly as
// long as the stream.
func (h *GRPCHandler) WatchPrices(req *pb.WatchPricesRequest, stream grpc.ServerStreamingServer[domain.DisplayPrices]) error {
	interval := time.Duration(req.IntervalMs) * time.Millisecond
	if interval > 0 && interval < minWatchInterval {
		interval = minWatchInterval
	}

	h.logger.Debug().Dur("interval", interval).Msg("watch_started")
	err := h.sessions.WatchPrices(stream.Context(), interval, func(prices domain.DisplayPrices) error {
		return stream.Send(&prices)
	})
	h.logger.Debug().Err(err).Msg("watch_ended")
	return err
}

// UnaryLogger logs every unary call with its status code.
func UnaryLogger(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info().
			Str("method", info.FullMethod).
			Str("code", status.Code(err).String()).
			Dur("latency", time.Since(start)).
			Msg("grpc_request")
		return resp, err
	}
}

// NewGRPCServer builds a server with the Catalog service registered.
func NewGRPCServer(h *GRPCHandler, logger zerolog.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLogger(logger)))
	pb.RegisterCatalogServer(srv, h)
	return srv
}
