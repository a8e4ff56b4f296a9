package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// UpdateProfileMessage carries a display name change for the subject of a
// verified token.
type UpdateProfileMessage struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`

	OnResponse func(*User) `json:"-"`
}

func (e UpdateProfileMessage) Type() string { return "user.update_profile" }

type UpdateProfileHandler struct {
	users Users
}

// NewUpdateProfileHandler creates the handler backed by the given repository
func NewUpdateProfileHandler(users Users) *UpdateProfileHandler {
	return &UpdateProfileHandler{users: users}
}

func (h *UpdateProfileHandler) Execute(ctx context.Context, event UpdateProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateProfileHandler) execute(ctx context.Context, event UpdateProfileMessage) error {
	name := strings.TrimSpace(event.Name)
	if name == "" {
		return goerrors.New("name is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	id, err := uuid.Parse(event.UserID)
	if err != nil {
		return goerrors.New("invalid user identifier in claims", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	updated, err := h.users.UpdateName(ctx, id, name)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return goerrors.New("user not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	if event.OnResponse != nil {
		event.OnResponse(updated)
	}

	return nil
}
