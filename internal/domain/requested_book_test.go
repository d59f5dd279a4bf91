package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

func newPending(t *testing.T) *RequestedBook {
	t.Helper()
	req, err := NewRequestedBook("req-1", "usr-owner", "Dune", "desert planet", []string{"cat-a"}, time.Now())
	require.NoError(t, err)
	return req
}

func strPtr(s string) *string { return &s }

func TestNewRequestedBook_ForcesPending(t *testing.T) {
	now := time.Now()
	req, err := NewRequestedBook("req-1", "usr-owner", "  Title  ", "desc", []string{"cat-a", "cat-b", "cat-a"}, now)
	require.NoError(t, err)

	assert.Equal(t, RequestPending, req.Status)
	assert.Equal(t, "usr-owner", req.OwnerID)
	assert.Equal(t, "Title", req.Title)
	assert.Equal(t, []string{"cat-a", "cat-b"}, req.CategoryIDs)
	assert.Equal(t, now, req.RequestedAt)
}

func TestNewRequestedBook_EmptyTitle(t *testing.T) {
	for _, title := range []string{"", "   "} {
		_, err := NewRequestedBook("req-1", "usr-owner", title, "desc", nil, time.Now())
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	}
}

func TestValidateRequestTitle_CountsCharacters(t *testing.T) {
	multiByte := strings.Repeat("書", MaxRequestTitleLength)
	title, err := ValidateRequestTitle("  " + multiByte + "  ")
	require.NoError(t, err)
	assert.Equal(t, multiByte, title)

	_, err = ValidateRequestTitle(multiByte + "書")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = ValidateRequestTitle(strings.Repeat("a", MaxRequestTitleLength+1))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestRequestedBook_Cancel_Pending(t *testing.T) {
	req := newPending(t)

	changed, err := req.Cancel("usr-owner", time.Now())
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, RequestCanceled, req.Status)
}

func TestRequestedBook_Cancel_AlreadyCanceledIsNoop(t *testing.T) {
	req := newPending(t)
	_, err := req.Cancel("usr-owner", time.Now())
	require.NoError(t, err)
	stamp := req.UpdatedAt

	changed, err := req.Cancel("usr-owner", stamp.Add(time.Minute))
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Equal(t, RequestCanceled, req.Status)
	assert.Equal(t, stamp, req.UpdatedAt)
}

func TestRequestedBook_Cancel_NotOwner(t *testing.T) {
	for _, status := range RequestStatuses {
		t.Run(string(status), func(t *testing.T) {
			req := newPending(t)
			req.Status = status

			_, err := req.Cancel("usr-intruder", time.Now())

			assert.ErrorIs(t, err, domainerrors.ErrForbidden)
			assert.Equal(t, status, req.Status)
		})
	}
}

func TestRequestedBook_Cancel_Decided(t *testing.T) {
	for _, status := range []RequestStatus{RequestApproved, RequestDisapproved} {
		t.Run(string(status), func(t *testing.T) {
			req := newPending(t)
			req.Status = status
			before := *req

			_, err := req.Cancel("usr-owner", time.Now())

			assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
			assert.Equal(t, before.Status, req.Status)
			assert.Equal(t, before.UpdatedAt, req.UpdatedAt)
		})
	}
}

func TestRequestedBook_Update_Pending(t *testing.T) {
	req := newPending(t)

	err := req.Update("usr-owner", RequestChanges{
		Title:       strPtr("Dune Messiah"),
		CategoryIDs: []string{"cat-b"},
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Dune Messiah", req.Title)
	assert.Equal(t, "desert planet", req.Description)
	assert.Equal(t, []string{"cat-b"}, req.CategoryIDs)
	assert.Equal(t, RequestPending, req.Status)
}

func TestRequestedBook_Update_EmptyTitleLeavesRecordUnchanged(t *testing.T) {
	req := newPending(t)

	err := req.Update("usr-owner", RequestChanges{
		Title:       strPtr(" "),
		Description: strPtr("changed"),
	}, time.Now())

	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, "Dune", req.Title)
	assert.Equal(t, "desert planet", req.Description)
}

func TestRequestedBook_Update_NotOwner(t *testing.T) {
	req := newPending(t)
	req.Status = RequestApproved

	err := req.Update("usr-intruder", RequestChanges{Title: strPtr("x")}, time.Now())

	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestRequestedBook_Update_TerminalStates(t *testing.T) {
	for _, status := range []RequestStatus{RequestApproved, RequestDisapproved, RequestCanceled} {
		t.Run(string(status), func(t *testing.T) {
			req := newPending(t)
			req.Status = status

			err := req.Update("usr-owner", RequestChanges{Title: strPtr("New")}, time.Now())

			assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
			assert.Equal(t, "Dune", req.Title)
		})
	}
}

func TestRequestedBook_Decide(t *testing.T) {
	req := newPending(t)

	require.NoError(t, req.Decide(RequestApproved, time.Now()))
	assert.Equal(t, RequestApproved, req.Status)

	err := req.Decide(RequestDisapproved, time.Now())
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
	assert.Equal(t, RequestApproved, req.Status)
}

func TestRequestedBook_Decide_RejectsNonDecisionStatus(t *testing.T) {
	req := newPending(t)

	for _, status := range []RequestStatus{RequestPending, RequestCanceled, RequestStatus("LOST")} {
		err := req.Decide(status, time.Now())
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	}
	assert.Equal(t, RequestPending, req.Status)
}

func TestRequestedBook_Decide_CanceledIsTerminal(t *testing.T) {
	req := newPending(t)
	_, err := req.Cancel("usr-owner", time.Now())
	require.NoError(t, err)

	err = req.Decide(RequestApproved, time.Now())
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
}

func TestRequestedBook_AdminEdit(t *testing.T) {
	req := newPending(t)

	require.NoError(t, req.AdminEdit(RequestChanges{Description: strPtr("fixed typo")}, time.Now()))
	assert.Equal(t, "fixed typo", req.Description)

	for _, status := range []RequestStatus{RequestCanceled, RequestApproved, RequestDisapproved} {
		t.Run(string(status), func(t *testing.T) {
			req.Status = status
			err := req.AdminEdit(RequestChanges{Title: strPtr("Changed"), Description: strPtr("again")}, time.Now())
			assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
			assert.Equal(t, "Dune", req.Title)
			assert.Equal(t, "fixed typo", req.Description)
		})
	}
}

func TestRequestStatus_Predicates(t *testing.T) {
	assert.False(t, RequestPending.IsTerminal())
	assert.True(t, RequestCanceled.IsTerminal())
	assert.True(t, RequestApproved.IsDecided())
	assert.False(t, RequestCanceled.IsDecided())
	assert.False(t, RequestStatus("pending").IsValid())
}
