package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/store"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/dashboard",
		Summary:     "Dashboard",
		Description: "Returns store-wide counts (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "List users",
		Description: "Returns registered users, newest first (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Get user",
		Description: "Returns a user with request and order counts (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes a user and their sessions. Admins cannot delete themselves.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteUser)
}

// === DTOs ===

// PageInput holds keyset pagination parameters shared by admin listings.
type PageInput struct {
	Cursor string `query:"cursor" doc:"Pagination cursor"`
	Limit  int    `query:"limit" minimum:"0" maximum:"200" doc:"Items per page (default 50)"`
}

func (p PageInput) params() store.PageParams {
	return store.PageParams{Cursor: p.Cursor, Limit: p.Limit}
}

// PageInfo describes where the next page starts.
type PageInfo struct {
	NextCursor string `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool   `json:"has_more" doc:"Whether more items follow"`
}

// DashboardResponse contains store-wide counts.
type DashboardResponse struct {
	Users           int `json:"users" doc:"Registered users"`
	Books           int `json:"books" doc:"Books in the catalog"`
	Categories      int `json:"categories" doc:"Categories"`
	Requests        int `json:"requests" doc:"All book requests"`
	PendingRequests int `json:"pending_requests" doc:"Requests awaiting a decision"`
	Orders          int `json:"orders" doc:"Orders placed"`
}

// DashboardOutput wraps the dashboard for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

// AdminUserResponse is a user as seen by an admin.
type AdminUserResponse struct {
	UserResponse
	RequestCount *int `json:"request_count,omitempty" doc:"Book requests made"`
	OrderCount   *int `json:"order_count,omitempty" doc:"Orders placed"`
}

// AdminUserOutput wraps a user for Huma.
type AdminUserOutput struct {
	Body AdminUserResponse
}

// ListUsersResponse contains one page of users.
type ListUsersResponse struct {
	Users []AdminUserResponse `json:"users" doc:"Users"`
	PageInfo
}

// ListUsersOutput wraps the user page for Huma.
type ListUsersOutput struct {
	Body ListUsersResponse
}

// UserIDInput identifies a user by path.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// === Handlers ===

func (s *Server) handleAdminDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	counts, err := s.services.Admin.Dashboard(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardOutput{Body: DashboardResponse{
		Users:           counts.Users,
		Books:           counts.Books,
		Categories:      counts.Categories,
		Requests:        counts.Requests,
		PendingRequests: counts.PendingRequests,
		Orders:          counts.Orders,
	}}, nil
}

func (s *Server) handleAdminListUsers(ctx context.Context, input *PageInput) (*ListUsersOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	page, err := s.services.Admin.ListUsers(ctx, input.params())
	if err != nil {
		return nil, err
	}

	users := make([]AdminUserResponse, 0, len(page.Items))
	for _, u := range page.Items {
		users = append(users, AdminUserResponse{UserResponse: mapUser(u)})
	}
	return &ListUsersOutput{Body: ListUsersResponse{
		Users:    users,
		PageInfo: pageInfo(page),
	}}, nil
}

func (s *Server) handleAdminGetUser(ctx context.Context, input *UserIDInput) (*AdminUserOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	detail, err := s.services.Admin.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &AdminUserOutput{Body: AdminUserResponse{
		UserResponse: mapUser(detail.User),
		RequestCount: &detail.RequestCount,
		OrderCount:   &detail.OrderCount,
	}}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *UserIDInput) (*MessageOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteUser(ctx, adminID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "User deleted"}}, nil
}

// === Helpers ===

func pageInfo[T any](page *store.Page[T]) PageInfo {
	return PageInfo{NextCursor: page.NextCursor, HasMore: page.HasMore}
}
