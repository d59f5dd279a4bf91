package store

import domainerrors "github.com/bookreview/bookreview-server/internal/errors"

// Sentinel errors returned by Store implementations. They carry domain error
// codes so the HTTP layer maps them without translation.
var (
	ErrNotFound      = &domainerrors.Error{Code: domainerrors.CodeNotFound, Message: "resource not found"}
	ErrAlreadyExists = &domainerrors.Error{Code: domainerrors.CodeAlreadyExists, Message: "resource already exists"}
	ErrInvalidInput  = &domainerrors.Error{Code: domainerrors.CodeValidation, Message: "invalid input"}

	// ErrStatusChanged is returned when a compare-and-set status write finds
	// the row no longer in the expected status.
	ErrStatusChanged = &domainerrors.Error{Code: domainerrors.CodeInvalidState, Message: "status changed concurrently"}
)
