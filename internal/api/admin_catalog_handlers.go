package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerAdminCatalogRoutes() {
	security := []map[string][]string{{"bearer": {}}}
	tags := []string{"Admin", "Catalog"}

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/categories",
		Summary:     "List categories",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/categories/{id}",
		Summary:     "Get category",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateCategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/categories",
		Summary:       "Create category",
		Description:   "Creates a category. Names are unique ignoring case.",
		Tags:          tags,
		Security:      security,
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/categories/{id}",
		Summary:     "Update category",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes a category. Books and requests keep their other categories.",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminDeleteCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/books",
		Summary:     "List books",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/books/{id}",
		Summary:     "Get book",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/books",
		Summary:       "Create book",
		Description:   "Adds a book to the catalog. HTML descriptions are converted to Markdown.",
		Tags:          tags,
		Security:      security,
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/books/{id}",
		Summary:     "Update book",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/books/{id}",
		Summary:     "Delete book",
		Tags:        tags,
		Security:    security,
	}, s.handleAdminDeleteBook)
}

// === DTOs ===

// CategoryOutput wraps a category for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

// CategoryIDInput identifies a category by path.
type CategoryIDInput struct {
	ID string `path:"id" doc:"Category ID"`
}

// CreateCategoryRequest is the request body for a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" minLength:"1" maxLength:"100" doc:"Display name"`
	Description string `json:"description,omitempty" maxLength:"2000" doc:"Description"`
}

// CreateCategoryInput wraps the create request for Huma.
type CreateCategoryInput struct {
	Body CreateCategoryRequest
}

// UpdateCategoryRequest is a partial category edit.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" minLength:"1" maxLength:"100" doc:"Display name"`
	Description *string `json:"description,omitempty" maxLength:"2000" doc:"Description"`
}

// UpdateCategoryInput wraps the update request for Huma.
type UpdateCategoryInput struct {
	ID   string `path:"id" doc:"Category ID"`
	Body UpdateCategoryRequest
}

// CreateBookRequest is the request body for a new book.
type CreateBookRequest struct {
	Title         string   `json:"title" minLength:"1" maxLength:"255" doc:"Title"`
	Author        string   `json:"author" minLength:"1" maxLength:"255" doc:"Author"`
	Description   string   `json:"description,omitempty" maxLength:"20000" doc:"Description, HTML or Markdown"`
	PriceCents    int64    `json:"price_cents" minimum:"0" doc:"Price in cents"`
	PublishedYear int      `json:"published_year,omitempty" minimum:"0" maximum:"3000" doc:"Year of publication"`
	CategoryIDs   []string `json:"category_ids,omitempty" maxItems:"20" doc:"Category IDs"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// UpdateBookRequest is a partial book edit.
type UpdateBookRequest struct {
	Title         *string  `json:"title,omitempty" minLength:"1" maxLength:"255" doc:"Title"`
	Author        *string  `json:"author,omitempty" minLength:"1" maxLength:"255" doc:"Author"`
	Description   *string  `json:"description,omitempty" maxLength:"20000" doc:"Description, HTML or Markdown"`
	PriceCents    *int64   `json:"price_cents,omitempty" minimum:"0" doc:"Price in cents"`
	PublishedYear *int     `json:"published_year,omitempty" minimum:"0" maximum:"3000" doc:"Year of publication"`
	CategoryIDs   []string `json:"category_ids,omitempty" maxItems:"20" doc:"Category IDs; an empty array clears them"`
}

// UpdateBookInput wraps the update request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// === Handlers ===

func (s *Server) handleAdminListCategories(ctx context.Context, input *struct{}) (*ListCategoriesOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.handleListCategories(ctx, input)
}

func (s *Server) handleAdminGetCategory(ctx context.Context, input *CategoryIDInput) (*CategoryOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	category, err := s.services.Catalog.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleAdminCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	category, err := s.services.Catalog.CreateCategory(ctx, service.CategoryInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleAdminUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	category, err := s.services.Catalog.UpdateCategory(ctx, input.ID, service.UpdateCategoryInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleAdminDeleteCategory(ctx context.Context, input *CategoryIDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteCategory(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Category deleted"}}, nil
}

func (s *Server) handleAdminListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.handleListBooks(ctx, input)
}

func (s *Server) handleAdminGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.handleGetBook(ctx, input)
}

func (s *Server) handleAdminCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.CreateBook(ctx, service.BookInput{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		Description:   input.Body.Description,
		PriceCents:    input.Body.PriceCents,
		PublishedYear: input.Body.PublishedYear,
		CategoryIDs:   input.Body.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleAdminUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.UpdateBook(ctx, input.ID, service.UpdateBookInput{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		Description:   input.Body.Description,
		PriceCents:    input.Body.PriceCents,
		PublishedYear: input.Body.PublishedYear,
		CategoryIDs:   input.Body.CategoryIDs,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleAdminDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}
