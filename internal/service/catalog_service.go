package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/storefront/internal/models"
	"github.com/mmynk/storefront/internal/storage"
)

// CatalogServiceName is the fully-qualified name of the CatalogService.
const CatalogServiceName = "storefront.v1.CatalogService"

// Procedure paths served under CatalogServiceName.
const (
	CatalogServiceListItemsProcedure      = "/storefront.v1.CatalogService/ListItems"
	CatalogServiceGetItemProcedure        = "/storefront.v1.CatalogService/GetItem"
	CatalogServiceListCategoriesProcedure = "/storefront.v1.CatalogService/ListCategories"
)

// DefaultPageSize is used when ListItemsRequest.PageSize is zero.
const DefaultPageSize = 50

type ListItemsRequest struct {
	Category string `json:"category,omitempty"`
	PageSize int    `json:"pageSize,omitempty" validate:"gte=0,lte=100"`
	Offset   int    `json:"offset,omitempty" validate:"gte=0"`
}

type ListItemsResponse struct {
	Items []*models.Item `json:"items"`
	Total int            `json:"total"`
}

type GetItemRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type GetItemResponse struct {
	Item *models.Item `json:"item"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

// CatalogService serves read-only access to imported catalog items.
type CatalogService struct {
	store  storage.ItemStore
	logger *slog.Logger
}

func NewCatalogService(store storage.ItemStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{store: store, logger: logger}
}

// ListItems returns one page of items, optionally narrowed to a category.
func (s *CatalogService) ListItems(ctx context.Context, req *connect.Request[ListItemsRequest]) (*connect.Response[ListItemsResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	pageSize := req.Msg.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	items, err := s.store.ListItems(ctx, storage.ItemFilter{
		Category: req.Msg.Category,
		Limit:    pageSize,
		Offset:   req.Msg.Offset,
	})
	if err != nil {
		s.logger.Error("Failed to list items", "category", req.Msg.Category, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	total, err := s.store.CountItems(ctx, req.Msg.Category)
	if err != nil {
		s.logger.Error("Failed to count items", "category", req.Msg.Category, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if items == nil {
		items = []*models.Item{}
	}
	return connect.NewResponse(&ListItemsResponse{Items: items, Total: total}), nil
}

// GetItem returns a single item by its catalog id.
func (s *CatalogService) GetItem(ctx context.Context, req *connect.Request[GetItemRequest]) (*connect.Response[GetItemResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	item, err := s.store.GetItem(ctx, req.Msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		s.logger.Error("Failed to get item", "item_id", req.Msg.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&GetItemResponse{Item: item}), nil
}

// ListCategories returns the distinct categories present in the catalog.
func (s *CatalogService) ListCategories(ctx context.Context, req *connect.Request[ListCategoriesRequest]) (*connect.Response[ListCategoriesResponse], error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if categories == nil {
		categories = []string{}
	}
	return connect.NewResponse(&ListCategoriesResponse{Categories: categories}), nil
}

// NewCatalogServiceHandler builds an HTTP handler for svc. It returns the path
// on which to mount the handler and the handler itself.
func NewCatalogServiceHandler(svc *CatalogService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	listItems := connect.NewUnaryHandler(CatalogServiceListItemsProcedure, svc.ListItems, opts...)
	getItem := connect.NewUnaryHandler(CatalogServiceGetItemProcedure, svc.GetItem, opts...)
	listCategories := connect.NewUnaryHandler(CatalogServiceListCategoriesProcedure, svc.ListCategories, opts...)

	return "/" + CatalogServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CatalogServiceListItemsProcedure:
			listItems.ServeHTTP(w, r)
		case CatalogServiceGetItemProcedure:
			getItem.ServeHTTP(w, r)
		case CatalogServiceListCategoriesProcedure:
			listCategories.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// CatalogServiceClient calls a CatalogService over Connect.
type CatalogServiceClient struct {
	listItems      *connect.Client[ListItemsRequest, ListItemsResponse]
	getItem        *connect.Client[GetItemRequest, GetItemResponse]
	listCategories *connect.Client[ListCategoriesRequest, ListCategoriesResponse]
}

// NewCatalogServiceClient constructs a client for the CatalogService at baseURL
// (for example, http://localhost:8080).
func NewCatalogServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CatalogServiceClient {
	opts = clientOptions(opts)
	return &CatalogServiceClient{
		listItems:      connect.NewClient[ListItemsRequest, ListItemsResponse](httpClient, baseURL+CatalogServiceListItemsProcedure, opts...),
		getItem:        connect.NewClient[GetItemRequest, GetItemResponse](httpClient, baseURL+CatalogServiceGetItemProcedure, opts...),
		listCategories: connect.NewClient[ListCategoriesRequest, ListCategoriesResponse](httpClient, baseURL+CatalogServiceListCategoriesProcedure, opts...),
	}
}

func (c *CatalogServiceClient) ListItems(ctx context.Context, req *connect.Request[ListItemsRequest]) (*connect.Response[ListItemsResponse], error) {
	return c.listItems.CallUnary(ctx, req)
}

func (c *CatalogServiceClient) GetItem(ctx context.Context, req *connect.Request[GetItemRequest]) (*connect.Response[GetItemResponse], error) {
	return c.getItem.CallUnary(ctx, req)
}

func (c *CatalogServiceClient) ListCategories(ctx context.Context, req *connect.Request[ListCategoriesRequest]) (*connect.Response[ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}
