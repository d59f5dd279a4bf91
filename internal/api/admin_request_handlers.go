package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/service"
	"github.com/bookreview/bookreview-server/internal/store"
)

func (s *Server) registerAdminRequestRoutes() {
	security := []map[string][]string{{"bearer": {}}}
	tags := []string{"Admin", "Requests"}

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListRequests",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/requests",
		Summary:     "List book requests",
		Description: "Returns all book requests, newest first, optionally filtered by status or owner",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminListRequests)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetRequest",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/requests/{id}",
		Summary:     "Get book request",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminGetRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateRequest",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/requests/{id}",
		Summary:     "Update book request",
		Description: "Edits a request and, when status is set, approves or disapproves it. Only PENDING requests can be decided.",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminUpdateRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteRequest",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/requests/{id}",
		Summary:     "Delete book request",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminDeleteRequest)
}

// === DTOs ===

// AdminListRequestsInput filters and pages the admin request listing.
type AdminListRequestsInput struct {
	PageInput
	Status  string `query:"status" enum:"PENDING,APPROVED,DISAPPROVED,CANCELED" doc:"Only requests in this status"`
	OwnerID string `query:"owner_id" doc:"Only requests by this customer"`
}

// AdminListRequestsResponse contains one page of requests.
type AdminListRequestsResponse struct {
	Requests []RequestResponse `json:"requests" doc:"Book requests"`
	PageInfo
}

// AdminListRequestsOutput wraps the request page for Huma.
type AdminListRequestsOutput struct {
	Body AdminListRequestsResponse
}

// AdminUpdateRequestRequest is an admin edit of a request.
type AdminUpdateRequestRequest struct {
	UpdateRequestRequest
	Status *domain.RequestStatus `json:"status,omitempty" enum:"APPROVED,DISAPPROVED" doc:"Decision"`
}

// AdminUpdateRequestHTTPInput wraps the admin edit for Huma.
type AdminUpdateRequestHTTPInput struct {
	ID   string `path:"id" doc:"Request ID"`
	Body AdminUpdateRequestRequest
}

// === Handlers ===

func (s *Server) handleAdminListRequests(ctx context.Context, input *AdminListRequestsInput) (*AdminListRequestsOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	page, err := s.services.Request.List(ctx, store.RequestFilter{
		Status:  domain.RequestStatus(input.Status),
		OwnerID: input.OwnerID,
	}, input.params())
	if err != nil {
		return nil, err
	}

	return &AdminListRequestsOutput{Body: AdminListRequestsResponse{
		Requests: mapRequests(page.Items),
		PageInfo: pageInfo(page),
	}}, nil
}

func (s *Server) handleAdminGetRequest(ctx context.Context, input *RequestIDInput) (*RequestOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	req, err := s.services.Request.AdminGet(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RequestOutput{Body: mapRequest(req)}, nil
}

func (s *Server) handleAdminUpdateRequest(ctx context.Context, input *AdminUpdateRequestHTTPInput) (*RequestOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	req, err := s.services.Request.AdminUpdate(ctx, input.ID, service.AdminUpdateRequestInput{
		UpdateRequestInput: updateRequestInput(input.Body.UpdateRequestRequest),
		Status:             input.Body.Status,
	})
	if err != nil {
		return nil, err
	}
	return &RequestOutput{Body: mapRequest(req)}, nil
}

func (s *Server) handleAdminDeleteRequest(ctx context.Context, input *RequestIDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Request.AdminDelete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Request deleted"}}, nil
}
