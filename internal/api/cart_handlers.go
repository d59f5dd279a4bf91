package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerCartRoutes() {
	cartMiddleware := huma.Middlewares{s.withCartSession}

	huma.Register(s.api, huma.Operation{
		OperationID: "getCart",
		Method:      http.MethodGet,
		Path:        "/api/v1/cart",
		Summary:     "Get cart",
		Description: "Returns the session cart joined with current catalog prices",
		Tags:        []string{"Cart"},
		Middlewares: cartMiddleware,
	}, s.handleGetCart)

	huma.Register(s.api, huma.Operation{
		OperationID: "addCartItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/cart/items",
		Summary:     "Add to cart",
		Description: "Adds copies of a book to the cart. Adding a book already in the cart increases its quantity.",
		Tags:        []string{"Cart"},
		Middlewares: cartMiddleware,
	}, s.handleAddCartItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCartItemQuantity",
		Method:      http.MethodPatch,
		Path:        "/api/v1/cart/items/{bookId}",
		Summary:     "Set quantity",
		Description: "Replaces the quantity of a book already in the cart",
		Tags:        []string{"Cart"},
		Middlewares: cartMiddleware,
	}, s.handleSetCartItemQuantity)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCartItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart/items/{bookId}",
		Summary:     "Remove from cart",
		Description: "Removes a book from the cart",
		Tags:        []string{"Cart"},
		Middlewares: cartMiddleware,
	}, s.handleRemoveCartItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearCart",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cart",
		Summary:     "Clear cart",
		Description: "Empties the cart",
		Tags:        []string{"Cart"},
		Middlewares: cartMiddleware,
	}, s.handleClearCart)

	huma.Register(s.api, huma.Operation{
		OperationID:   "checkout",
		Method:        http.MethodPost,
		Path:          "/api/v1/cart/checkout",
		Summary:       "Checkout",
		Description:   "Turns the cart into an order at current prices and empties the cart",
		Tags:          []string{"Cart", "Orders"},
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   cartMiddleware,
		DefaultStatus: http.StatusCreated,
	}, s.handleCheckout)
}

// === DTOs ===

// CartLineResponse is one cart entry with its current price.
type CartLineResponse struct {
	Book           BookResponse `json:"book" doc:"Book"`
	Quantity       int          `json:"quantity" doc:"Copies in the cart"`
	LineTotalCents int64        `json:"line_total_cents" doc:"Quantity times current price"`
}

// CartResponse is the resolved cart.
type CartResponse struct {
	Items         []CartLineResponse `json:"items" doc:"Cart entries ordered by title"`
	TotalQuantity int                `json:"total_quantity" doc:"Total copies"`
	TotalCents    int64              `json:"total_cents" doc:"Cart total in cents"`
}

// CartOutput wraps the cart for Huma.
type CartOutput struct {
	Body CartResponse
}

// AddCartItemRequest is the request body for adding to the cart.
type AddCartItemRequest struct {
	BookID   string `json:"book_id" minLength:"1" maxLength:"64" doc:"Book ID"`
	Quantity int    `json:"quantity,omitempty" minimum:"1" maximum:"999" doc:"Copies to add (default 1)"`
}

// AddCartItemInput wraps the add request for Huma.
type AddCartItemInput struct {
	Body AddCartItemRequest
}

// SetQuantityRequest is the request body for changing a quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" minimum:"1" maximum:"999" doc:"New quantity"`
}

// SetQuantityInput wraps the quantity request for Huma.
type SetQuantityInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
	Body   SetQuantityRequest
}

// CartItemInput identifies a cart entry by book.
type CartItemInput struct {
	BookID string `path:"bookId" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleGetCart(ctx context.Context, _ *struct{}) (*CartOutput, error) {
	sess, err := cartSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.cartOutput(ctx, s.services.Cart.GetOrCreate(sess))
}

func (s *Server) handleAddCartItem(ctx context.Context, input *AddCartItemInput) (*CartOutput, error) {
	sess, err := cartSession(ctx)
	if err != nil {
		return nil, err
	}

	quantity := input.Body.Quantity
	if quantity == 0 {
		quantity = 1
	}

	cart, err := s.services.Cart.AddItem(ctx, sess, input.Body.BookID, quantity)
	if err != nil {
		return nil, err
	}
	return s.cartOutput(ctx, cart)
}

func (s *Server) handleSetCartItemQuantity(ctx context.Context, input *SetQuantityInput) (*CartOutput, error) {
	sess, err := cartSession(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := s.services.Cart.SetQuantity(ctx, sess, input.BookID, input.Body.Quantity)
	if err != nil {
		return nil, err
	}
	return s.cartOutput(ctx, cart)
}

func (s *Server) handleRemoveCartItem(ctx context.Context, input *CartItemInput) (*CartOutput, error) {
	sess, err := cartSession(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := s.services.Cart.RemoveItem(ctx, sess, input.BookID)
	if err != nil {
		return nil, err
	}
	return s.cartOutput(ctx, cart)
}

func (s *Server) handleClearCart(ctx context.Context, _ *struct{}) (*CartOutput, error) {
	sess, err := cartSession(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Cart.Clear(ctx, sess); err != nil {
		return nil, err
	}
	return s.cartOutput(ctx, domain.NewCart())
}

func (s *Server) handleCheckout(ctx context.Context, _ *struct{}) (*OrderOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := cartSession(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.Checkout(ctx, user.ID, sess)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: mapOrder(order)}, nil
}

// === Helpers ===

func (s *Server) cartOutput(ctx context.Context, cart *domain.Cart) (*CartOutput, error) {
	summary, err := s.services.Cart.Summary(ctx, cart)
	if err != nil {
		return nil, err
	}
	return &CartOutput{Body: mapCartSummary(summary)}, nil
}

func mapCartSummary(summary *service.CartSummary) CartResponse {
	resp := CartResponse{
		Items:         make([]CartLineResponse, 0, len(summary.Lines)),
		TotalQuantity: summary.TotalQuantity,
		TotalCents:    summary.TotalCents,
	}
	for _, line := range summary.Lines {
		resp.Items = append(resp.Items, CartLineResponse{
			Book:           mapBook(line.Book),
			Quantity:       line.Quantity,
			LineTotalCents: line.LineTotalCents,
		})
	}
	return resp
}
