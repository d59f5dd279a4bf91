package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

// RequestStatus is the lifecycle state of a book request.
//
//	PENDING -> CANCELED     (owner)
//	PENDING -> APPROVED     (admin)
//	PENDING -> DISAPPROVED  (admin)
//
// Every state other than PENDING is terminal.
type RequestStatus string

const (
	RequestPending     RequestStatus = "PENDING"
	RequestApproved    RequestStatus = "APPROVED"
	RequestDisapproved RequestStatus = "DISAPPROVED"
	RequestCanceled    RequestStatus = "CANCELED"
)

// RequestStatuses lists every status in display order.
var RequestStatuses = []RequestStatus{RequestPending, RequestApproved, RequestDisapproved, RequestCanceled}

// IsValid reports whether s belongs to the closed status set.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestDisapproved, RequestCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s RequestStatus) IsTerminal() bool {
	return s != RequestPending
}

// IsDecided reports whether an admin has approved or disapproved the request.
// Decided requests are immutable.
func (s RequestStatus) IsDecided() bool {
	return s == RequestApproved || s == RequestDisapproved
}

// MaxRequestTitleLength bounds the title of a requested book.
const MaxRequestTitleLength = 255

// RequestedBook is a customer's request for the store to stock a new title.
type RequestedBook struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      RequestStatus `json:"status"`
	CategoryIDs []string      `json:"category_ids"`
	RequestedAt time.Time     `json:"requested_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// RequestChanges holds the owner-editable fields. Nil fields are left unchanged.
type RequestChanges struct {
	Title       *string
	Description *string
	CategoryIDs []string // nil leaves categories unchanged; empty clears them
}

// ValidateRequestTitle checks a title after trimming surrounding whitespace.
func ValidateRequestTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domainerrors.Validation("title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxRequestTitleLength {
		return "", domainerrors.Validationf("title must not exceed %d characters", MaxRequestTitleLength)
	}
	return title, nil
}

// NewRequestedBook builds a PENDING request owned by ownerID.
func NewRequestedBook(id, ownerID, title, description string, categoryIDs []string, now time.Time) (*RequestedBook, error) {
	title, err := ValidateRequestTitle(title)
	if err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, domainerrors.Validation("owner is required")
	}
	if categoryIDs == nil {
		categoryIDs = []string{}
	}

	return &RequestedBook{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      RequestPending,
		CategoryIDs: dedupe(categoryIDs),
		RequestedAt: now,
		UpdatedAt:   now,
	}, nil
}

// IsOwnedBy reports whether actorID owns the request.
func (r *RequestedBook) IsOwnedBy(actorID string) bool {
	return actorID != "" && r.OwnerID == actorID
}

// checkOwnerMutation applies the guard shared by Cancel and Update:
// ownership first, then the decided-status check.
func (r *RequestedBook) checkOwnerMutation(actorID string) error {
	if !r.IsOwnedBy(actorID) {
		return domainerrors.Forbidden("you do not own this request")
	}
	if r.Status.IsDecided() {
		return domainerrors.InvalidStatef("request is already %s", strings.ToLower(string(r.Status)))
	}
	return nil
}

// Cancel moves a PENDING request to CANCELED on behalf of its owner.
// Canceling an already CANCELED request succeeds without change; changed
// reports whether the status moved.
func (r *RequestedBook) Cancel(actorID string, now time.Time) (changed bool, err error) {
	if err := r.checkOwnerMutation(actorID); err != nil {
		return false, err
	}
	if r.Status == RequestCanceled {
		return false, nil
	}
	r.Status = RequestCanceled
	r.UpdatedAt = now
	return true, nil
}

// Update applies owner edits. Only PENDING requests can be edited.
func (r *RequestedBook) Update(actorID string, changes RequestChanges, now time.Time) error {
	if err := r.checkOwnerMutation(actorID); err != nil {
		return err
	}
	if r.Status != RequestPending {
		return domainerrors.InvalidStatef("request is already %s", strings.ToLower(string(r.Status)))
	}
	return r.apply(changes, now)
}

// apply validates every field before mutating any of them.
func (r *RequestedBook) apply(changes RequestChanges, now time.Time) error {
	title := r.Title
	if changes.Title != nil {
		t, err := ValidateRequestTitle(*changes.Title)
		if err != nil {
			return err
		}
		title = t
	}

	r.Title = title
	if changes.Description != nil {
		r.Description = strings.TrimSpace(*changes.Description)
	}
	if changes.CategoryIDs != nil {
		r.CategoryIDs = dedupe(changes.CategoryIDs)
	}
	r.UpdatedAt = now
	return nil
}

// Decide records an administrative decision. The request must still be
// PENDING and status must be APPROVED or DISAPPROVED.
func (r *RequestedBook) Decide(status RequestStatus, now time.Time) error {
	if !status.IsDecided() {
		return domainerrors.Validationf("status must be %s or %s", RequestApproved, RequestDisapproved)
	}
	if r.Status != RequestPending {
		return domainerrors.InvalidStatef("request is already %s", strings.ToLower(string(r.Status)))
	}
	r.Status = status
	r.UpdatedAt = now
	return nil
}

// AdminEdit lets staff correct the content of a PENDING request.
// Ownership is not checked.
func (r *RequestedBook) AdminEdit(changes RequestChanges, now time.Time) error {
	if r.Status != RequestPending {
		return domainerrors.InvalidStatef("request is already %s", strings.ToLower(string(r.Status)))
	}
	return r.apply(changes, now)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
