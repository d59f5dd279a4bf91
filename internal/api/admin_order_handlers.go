package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

func (s *Server) registerAdminOrderRoutes() {
	security := []map[string][]string{{"bearer": {}}}
	tags := []string{"Admin", "Orders"}

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/orders",
		Summary:     "List orders",
		Description: "Returns all orders, newest first, optionally filtered by status or customer",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminListOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/orders/{id}",
		Summary:     "Get order",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminGetOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateOrder",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/orders/{id}",
		Summary:     "Update order status",
		Description: "Moves an order along PLACED, PAID, SHIPPED. PLACED and PAID orders can be canceled.",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminUpdateOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteOrder",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/orders/{id}",
		Summary:     "Delete order",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminDeleteOrder)
}

// === DTOs ===

// AdminListOrdersInput filters and pages the admin order listing.
type AdminListOrdersInput struct {
	PageInput
	Status string `query:"status" enum:"PLACED,PAID,SHIPPED,CANCELED" doc:"Only orders in this status"`
	UserID string `query:"user_id" doc:"Only orders by this customer"`
}

// AdminListOrdersResponse contains one page of orders.
type AdminListOrdersResponse struct {
	Orders []OrderResponse `json:"orders" doc:"Orders"`
	PageInfo
}

// AdminListOrdersOutput wraps the order page for Huma.
type AdminListOrdersOutput struct {
	Body AdminListOrdersResponse
}

// UpdateOrderStatusRequest is the request body for a status change.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" enum:"PAID,SHIPPED,CANCELED" doc:"Target status"`
}

// UpdateOrderStatusInput wraps the status change for Huma.
type UpdateOrderStatusInput struct {
	ID   string `path:"id" doc:"Order ID"`
	Body UpdateOrderStatusRequest
}

// === Handlers ===

func (s *Server) handleAdminListOrders(ctx context.Context, input *AdminListOrdersInput) (*AdminListOrdersOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	page, err := s.services.Order.List(ctx, store.OrderFilter{
		Status: domain.OrderStatus(input.Status),
		UserID: input.UserID,
	}, input.params())
	if err != nil {
		return nil, err
	}

	return &AdminListOrdersOutput{Body: AdminListOrdersResponse{
		Orders:   mapOrders(page.Items),
		PageInfo: pageInfo(page),
	}}, nil
}

func (s *Server) handleAdminGetOrder(ctx context.Context, input *OrderIDInput) (*OrderOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	order, err := s.services.Order.AdminGet(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: mapOrder(order)}, nil
}

func (s *Server) handleAdminUpdateOrder(ctx context.Context, input *UpdateOrderStatusInput) (*OrderOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	order, err := s.services.Order.UpdateStatus(ctx, input.ID, input.Body.Status)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: mapOrder(order)}, nil
}

func (s *Server) handleAdminDeleteOrder(ctx context.Context, input *OrderIDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Order.AdminDelete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Order deleted"}}, nil
}
