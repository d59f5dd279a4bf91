// Package store defines the persistence interface for the bookstore server.
package store

import (
	"context"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
)

// Store defines the interface for all relational persistence operations.
// Cart sessions live in the session package, not here.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, params PageParams) (*Page[*domain.User], error)
	CountUsers(ctx context.Context) (int, error)

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Categories
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	GetCategoriesByIDs(ctx context.Context, ids []string) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, filter BookFilter) ([]*domain.Book, error)

	// Requested books
	CreateRequest(ctx context.Context, req *domain.RequestedBook) error
	GetRequest(ctx context.Context, id string) (*domain.RequestedBook, error)
	// UpdateRequest writes req only if the stored status still equals
	// expected. Otherwise it returns ErrStatusChanged.
	UpdateRequest(ctx context.Context, req *domain.RequestedBook, expected domain.RequestStatus) error
	DeleteRequest(ctx context.Context, id string) error
	ListRequestsByOwner(ctx context.Context, ownerID string) ([]*domain.RequestedBook, error)
	ListRequests(ctx context.Context, filter RequestFilter, params PageParams) (*Page[*domain.RequestedBook], error)

	// Orders
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	// UpdateOrderStatus is a compare-and-set on the order status.
	UpdateOrderStatus(ctx context.Context, id string, expected, next domain.OrderStatus, now time.Time) error
	DeleteOrder(ctx context.Context, id string) error
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter, params PageParams) (*Page[*domain.Order], error)

	// Reporting
	Counts(ctx context.Context) (*Counts, error)
	CountUserActivity(ctx context.Context, userID string) (requests, orders int, err error)
}

// BookFilter narrows a book listing.
type BookFilter struct {
	CategoryID string
}

// RequestFilter narrows the admin request listing.
type RequestFilter struct {
	Status  domain.RequestStatus
	OwnerID string
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status domain.OrderStatus
	UserID string
}

// Counts summarizes the store for the admin dashboard.
type Counts struct {
	Users           int `json:"users"`
	Books           int `json:"books"`
	Categories      int `json:"categories"`
	PendingRequests int `json:"pending_requests"`
	Requests        int `json:"requests"`
	Orders          int `json:"orders"`
}
