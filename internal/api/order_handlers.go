package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/domain"
)

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMyOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List my orders",
		Description: "Returns the caller's orders, newest first",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}",
		Summary:     "Get order",
		Description: "Returns one of the caller's orders",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyOrder)
}

// === DTOs ===

// OrderItemResponse is one order line with its price at purchase time.
type OrderItemResponse struct {
	BookID         string `json:"book_id" doc:"Book ID"`
	Title          string `json:"title" doc:"Title at purchase time"`
	Quantity       int    `json:"quantity" doc:"Copies ordered"`
	UnitPriceCents int64  `json:"unit_price_cents" doc:"Unit price at purchase time"`
	LineTotalCents int64  `json:"line_total_cents" doc:"Quantity times unit price"`
}

// OrderResponse is an order in API responses.
type OrderResponse struct {
	ID         string              `json:"id" doc:"Order ID"`
	UserID     string              `json:"user_id" doc:"Customer ID"`
	Status     domain.OrderStatus  `json:"status" enum:"PLACED,PAID,SHIPPED,CANCELED" doc:"Order status"`
	Items      []OrderItemResponse `json:"items" doc:"Order lines"`
	TotalCents int64               `json:"total_cents" doc:"Order total in cents"`
	CreatedAt  time.Time           `json:"created_at" doc:"Placement time"`
	UpdatedAt  time.Time           `json:"updated_at" doc:"Last status change"`
}

// OrderOutput wraps an order for Huma.
type OrderOutput struct {
	Body OrderResponse
}

// ListOrdersResponse contains a list of orders.
type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders" doc:"Orders"`
}

// ListOrdersOutput wraps the order list for Huma.
type ListOrdersOutput struct {
	Body ListOrdersResponse
}

// OrderIDInput identifies an order by path.
type OrderIDInput struct {
	ID string `path:"id" doc:"Order ID"`
}

// === Handlers ===

func (s *Server) handleListMyOrders(ctx context.Context, _ *struct{}) (*ListOrdersOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.services.Order.ListMine(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListOrdersOutput{Body: ListOrdersResponse{Orders: mapOrders(orders)}}, nil
}

func (s *Server) handleGetMyOrder(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: mapOrder(order)}, nil
}

// === Helpers ===

func mapOrder(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			BookID:         it.BookID,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents(),
		})
	}
	return OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Items:      items,
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func mapOrders(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, mapOrder(o))
	}
	return out
}
