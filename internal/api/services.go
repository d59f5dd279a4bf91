package api

import (
	"github.com/bookreview/bookreview-server/internal/service"
)

// Services groups the business services used by the API server.
type Services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Cart    *service.CartService
	Order   *service.OrderService
	Request *service.RequestService
	Admin   *service.AdminService
}
