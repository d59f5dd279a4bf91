package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/store"
)

// AdminService handles admin-only user management and reporting.
type AdminService struct {
	store  store.Store
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(st store.Store, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  st,
		logger: logger,
	}
}

// UserDetail is a user plus their activity counts.
type UserDetail struct {
	*domain.User
	RequestCount int `json:"request_count"`
	OrderCount   int `json:"order_count"`
}

// Dashboard returns store-wide counts.
func (s *AdminService) Dashboard(ctx context.Context) (*store.Counts, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	return counts, nil
}

// ListUsers returns one page of users.
func (s *AdminService) ListUsers(ctx context.Context, params store.PageParams) (*store.Page[*domain.User], error) {
	page, err := s.store.ListUsers(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

// GetUser returns a user with request and order counts.
func (s *AdminService) GetUser(ctx context.Context, userID string) (*UserDetail, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	requests, orders, err := s.store.CountUserActivity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count user activity: %w", err)
	}

	return &UserDetail{User: user, RequestCount: requests, OrderCount: orders}, nil
}

// DeleteUser removes a user together with their sessions, requests and orders.
// Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, adminUserID, targetUserID string) error {
	if adminUserID == targetUserID {
		return domainerrors.Forbidden("cannot delete your own account")
	}

	user, err := s.store.GetUser(ctx, targetUserID)
	if err != nil {
		if isNotFound(err) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	if err := s.store.DeleteAllUserSessions(ctx, targetUserID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	if err := s.store.DeleteUser(ctx, targetUserID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted by admin",
		"admin_id", adminUserID,
		"user_id", targetUserID,
		"email", user.Email,
	)
	return nil
}
