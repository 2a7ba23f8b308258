// Package convert maps domain entities to their outward projections and
// parses external record formats into domain create intents.
package convert

import (
	"fmt"

	u "github.com/gofrs/uuid/v5"

	"github.com/and161185/passvault/internal/errs"
	model "github.com/and161185/passvault/internal/model"
)

// ToAccountResponse drops the password hash.
func ToAccountResponse(a *model.Account) model.AccountResponse {
	if a == nil {
		return model.AccountResponse{}
	}
	return model.AccountResponse{ID: a.ID, Username: a.Username, CreatedAt: a.CreatedAt}
}

// ToEntryResponse drops the secret value.
func ToEntryResponse(e *model.Entry) model.EntryResponse {
	if e == nil {
		return model.EntryResponse{}
	}
	return model.EntryResponse{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Key:       e.Key,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ToEntryResponses converts a slice; the result is never nil.
func ToEntryResponses(in []model.Entry) []model.EntryResponse {
	out := make([]model.EntryResponse, 0, len(in))
	for i := range in {
		out = append(out, ToEntryResponse(&in[i]))
	}
	return out
}

// ParseID parses a textual entry id.
func ParseID(s string) (u.UUID, error) {
	var id u.UUID
	if err := id.UnmarshalText([]byte(s)); err != nil {
		return u.Nil, fmt.Errorf("%w: invalid id", errs.ErrInvalidArgument)
	}
	return id, nil
}

// OptionalNotes maps an empty string to absent notes.
func OptionalNotes(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
