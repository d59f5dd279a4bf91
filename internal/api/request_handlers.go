package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerRequestRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMyRequests",
		Method:      http.MethodGet,
		Path:        "/api/v1/requests",
		Summary:     "List my book requests",
		Description: "Returns the caller's book requests, newest first",
		Tags:        []string{"Requests"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyRequests)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRequest",
		Method:        http.MethodPost,
		Path:          "/api/v1/requests",
		Summary:       "Request a book",
		Description:   "Asks the store to stock a new title. New requests start PENDING.",
		Tags:          []string{"Requests"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRequest",
		Method:      http.MethodGet,
		Path:        "/api/v1/requests/{id}",
		Summary:     "Get book request",
		Description: "Returns one of the caller's book requests",
		Tags:        []string{"Requests"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRequest",
		Method:      http.MethodPatch,
		Path:        "/api/v1/requests/{id}",
		Summary:     "Update book request",
		Description: "Edits the title, description or categories of a PENDING request",
		Tags:        []string{"Requests"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/requests/{id}/cancel",
		Summary:     "Cancel book request",
		Description: "Withdraws a PENDING request. Canceling twice is not an error.",
		Tags:        []string{"Requests"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCancelRequest)
}

// === DTOs ===

// RequestResponse is a requested book in API responses.
type RequestResponse struct {
	ID          string               `json:"id" doc:"Request ID"`
	OwnerID     string               `json:"owner_id" doc:"Requesting customer"`
	Title       string               `json:"title" doc:"Requested title"`
	Description string               `json:"description,omitempty" doc:"Free-form description"`
	Status      domain.RequestStatus `json:"status" enum:"PENDING,APPROVED,DISAPPROVED,CANCELED" doc:"Lifecycle status"`
	CategoryIDs []string             `json:"category_ids" doc:"Category IDs"`
	RequestedAt time.Time            `json:"requested_at" doc:"Creation time"`
	UpdatedAt   time.Time            `json:"updated_at" doc:"Last change"`
}

// RequestOutput wraps a request for Huma.
type RequestOutput struct {
	Body RequestResponse
}

// ListRequestsResponse contains a list of requests.
type ListRequestsResponse struct {
	Requests []RequestResponse `json:"requests" doc:"Book requests"`
}

// ListRequestsOutput wraps the request list for Huma.
type ListRequestsOutput struct {
	Body ListRequestsResponse
}

// CreateRequestRequest is the request body for a new book request.
type CreateRequestRequest struct {
	Title       string   `json:"title" minLength:"1" maxLength:"255" doc:"Requested title"`
	Description string   `json:"description,omitempty" maxLength:"20000" doc:"Why the store should stock it"`
	CategoryIDs []string `json:"category_ids,omitempty" maxItems:"20" doc:"Suggested categories"`
}

// CreateRequestInput wraps the create request for Huma.
type CreateRequestInput struct {
	Body CreateRequestRequest
}

// UpdateRequestRequest is a partial edit. Omitted fields are unchanged; an
// empty category_ids array clears the categories.
type UpdateRequestRequest struct {
	Title       *string  `json:"title,omitempty" minLength:"1" maxLength:"255" doc:"New title"`
	Description *string  `json:"description,omitempty" maxLength:"20000" doc:"New description"`
	CategoryIDs []string `json:"category_ids,omitempty" maxItems:"20" doc:"New categories"`
}

// UpdateRequestHTTPInput wraps the update request for Huma.
type UpdateRequestHTTPInput struct {
	ID   string `path:"id" doc:"Request ID"`
	Body UpdateRequestRequest
}

// RequestIDInput identifies a request by path.
type RequestIDInput struct {
	ID string `path:"id" doc:"Request ID"`
}

// === Handlers ===

func (s *Server) handleListMyRequests(ctx context.Context, _ *struct{}) (*ListRequestsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reqs, err := s.services.Request.ListMine(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListRequestsOutput{Body: ListRequestsResponse{Requests: mapRequests(reqs)}}, nil
}

func (s *Server) handleCreateRequest(ctx context.Context, input *CreateRequestInput) (*RequestOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.services.Request.Create(ctx, user.ID, service.CreateRequestInput{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		CategoryIDs: input.Body.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}
	return &RequestOutput{Body: mapRequest(req)}, nil
}

func (s *Server) handleGetRequest(ctx context.Context, input *RequestIDInput) (*RequestOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.services.Request.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &RequestOutput{Body: mapRequest(req)}, nil
}

func (s *Server) handleUpdateRequest(ctx context.Context, input *UpdateRequestHTTPInput) (*RequestOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.services.Request.Update(ctx, userID, input.ID, updateRequestInput(input.Body))
	if err != nil {
		return nil, err
	}
	return &RequestOutput{Body: mapRequest(req)}, nil
}

func (s *Server) handleCancelRequest(ctx context.Context, input *RequestIDInput) (*RequestOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.services.Request.Cancel(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &RequestOutput{Body: mapRequest(req)}, nil
}

// === Helpers ===

func updateRequestInput(body UpdateRequestRequest) service.UpdateRequestInput {
	return service.UpdateRequestInput{
		Title:       body.Title,
		Description: body.Description,
		CategoryIDs: body.CategoryIDs,
	}
}

func mapRequest(r *domain.RequestedBook) RequestResponse {
	categoryIDs := r.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []string{}
	}
	return RequestResponse{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		CategoryIDs: categoryIDs,
		RequestedAt: r.RequestedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func mapRequests(reqs []*domain.RequestedBook) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, mapRequest(r))
	}
	return out
}
