package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/id"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/store"
	"github.com/bookreview/bookreview-server/internal/util"
	"github.com/bookreview/bookreview-server/internal/validation"
)

// RequestService runs the requested-book lifecycle: customers create,
// edit and cancel their own requests; admins approve or disapprove them.
type RequestService struct {
	store     store.Store
	metrics   *metrics.Metrics
	validator *validation.Validator
	logger    *slog.Logger
	now       clock
}

// NewRequestService creates a new requested-book service.
func NewRequestService(st store.Store, m *metrics.Metrics, logger *slog.Logger) *RequestService {
	return &RequestService{
		store:     st,
		metrics:   m,
		validator: validation.New(),
		logger:    logger,
		now:       utcNow,
	}
}

// CreateRequestInput contains the fields of a new request.
type CreateRequestInput struct {
	Title       string   `json:"title" validate:"max=255"`
	Description string   `json:"description" validate:"max=20000"`
	CategoryIDs []string `json:"category_ids" validate:"max=20,dive,max=64"`
}

// UpdateRequestInput is a partial update. Nil fields are left unchanged.
type UpdateRequestInput struct {
	Title       *string  `json:"title" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=20000"`
	CategoryIDs []string `json:"category_ids" validate:"omitempty,max=20,dive,max=64"`
}

// AdminUpdateRequestInput is an admin edit. Status, when set, must be
// APPROVED or DISAPPROVED.
type AdminUpdateRequestInput struct {
	UpdateRequestInput
	Status *domain.RequestStatus `json:"status"`
}

func (in UpdateRequestInput) changes() domain.RequestChanges {
	ch := domain.RequestChanges{Title: in.Title, CategoryIDs: in.CategoryIDs}
	if in.Description != nil {
		md := util.DescriptionToMarkdown(*in.Description)
		ch.Description = &md
	}
	return ch
}

func (in UpdateRequestInput) isEmpty() bool {
	return in.Title == nil && in.Description == nil && in.CategoryIDs == nil
}

// Create files a new PENDING request owned by ownerID.
func (s *RequestService) Create(ctx context.Context, ownerID string, in CreateRequestInput) (*domain.RequestedBook, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	requestID, err := id.Generate(id.PrefixRequest)
	if err != nil {
		return nil, fmt.Errorf("generate request ID: %w", err)
	}

	req, err := domain.NewRequestedBook(requestID, ownerID, in.Title,
		util.DescriptionToMarkdown(in.Description), in.CategoryIDs, s.now())
	if err != nil {
		return nil, err
	}
	if err := checkCategories(ctx, s.store, req.CategoryIDs); err != nil {
		return nil, err
	}

	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.metrics.RecordRequestTransition(string(domain.RequestPending))
	s.logger.InfoContext(ctx, "requested book created", "request_id", req.ID, "owner_id", ownerID)
	return req, nil
}

// Get returns a request owned by actorID.
func (s *RequestService) Get(ctx context.Context, actorID, requestID string) (*domain.RequestedBook, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsOwnedBy(actorID) {
		return nil, domainerrors.Forbidden("you do not own this request")
	}
	return req, nil
}

// ListMine returns the owner's requests, newest first.
func (s *RequestService) ListMine(ctx context.Context, ownerID string) ([]*domain.RequestedBook, error) {
	return s.store.ListRequestsByOwner(ctx, ownerID)
}

// Cancel withdraws a request. Only the owner may cancel, and only while the
// request is undecided. Cancelling an already canceled request succeeds
// without writing anything.
func (s *RequestService) Cancel(ctx context.Context, actorID, requestID string) (*domain.RequestedBook, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	expected := req.Status
	changed, err := req.Cancel(actorID, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return req, nil
	}

	if err := s.store.UpdateRequest(ctx, req, expected); err != nil {
		return nil, statusConflict(err, "request")
	}

	s.metrics.RecordRequestTransition(string(domain.RequestCanceled))
	s.logger.InfoContext(ctx, "requested book canceled", "request_id", req.ID, "owner_id", actorID)
	return req, nil
}

// Update edits a PENDING request on behalf of its owner.
// Ownership is checked before the input is validated.
func (s *RequestService) Update(ctx context.Context, actorID, requestID string, in UpdateRequestInput) (*domain.RequestedBook, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsOwnedBy(actorID) {
		return nil, domainerrors.Forbidden("you do not own this request")
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	expected := req.Status
	if err := req.Update(actorID, in.changes(), s.now()); err != nil {
		return nil, err
	}
	if in.CategoryIDs != nil {
		if err := checkCategories(ctx, s.store, req.CategoryIDs); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateRequest(ctx, req, expected); err != nil {
		return nil, statusConflict(err, "request")
	}

	s.logger.InfoContext(ctx, "requested book updated", "request_id", req.ID)
	return req, nil
}

// List returns all requests for the admin back-office.
func (s *RequestService) List(ctx context.Context, filter store.RequestFilter, params store.PageParams) (*store.Page[*domain.RequestedBook], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domainerrors.Validationf("unknown status %q", filter.Status)
	}
	return s.store.ListRequests(ctx, filter, params)
}

// AdminGet returns any request.
func (s *RequestService) AdminGet(ctx context.Context, requestID string) (*domain.RequestedBook, error) {
	return s.store.GetRequest(ctx, requestID)
}

// AdminUpdate applies an admin edit and, when Status is set, decides the
// request. Decisions need no ownership but the request must be PENDING.
func (s *RequestService) AdminUpdate(ctx context.Context, requestID string, in AdminUpdateRequestInput) (*domain.RequestedBook, error) {
	if err := s.validator.Validate(in.UpdateRequestInput); err != nil {
		return nil, err
	}
	if in.UpdateRequestInput.isEmpty() && in.Status == nil {
		return nil, domainerrors.Validation("nothing to update")
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	expected := req.Status
	now := s.now()

	if !in.UpdateRequestInput.isEmpty() {
		if err := req.AdminEdit(in.changes(), now); err != nil {
			return nil, err
		}
		if in.CategoryIDs != nil {
			if err := checkCategories(ctx, s.store, req.CategoryIDs); err != nil {
				return nil, err
			}
		}
	}

	if in.Status != nil {
		if err := req.Decide(*in.Status, now); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateRequest(ctx, req, expected); err != nil {
		return nil, statusConflict(err, "request")
	}

	if req.Status != expected {
		s.metrics.RecordRequestTransition(string(req.Status))
		s.logger.InfoContext(ctx, "requested book decided", "request_id", req.ID, "status", req.Status)
	}
	return req, nil
}

// Decide approves or disapproves a PENDING request.
func (s *RequestService) Decide(ctx context.Context, requestID string, status domain.RequestStatus) (*domain.RequestedBook, error) {
	return s.AdminUpdate(ctx, requestID, AdminUpdateRequestInput{Status: &status})
}

// AdminDelete removes a request.
func (s *RequestService) AdminDelete(ctx context.Context, requestID string) error {
	if err := s.store.DeleteRequest(ctx, requestID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "requested book deleted", "request_id", requestID)
	return nil
}
