package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// RegisterUserMessage carries the registration request payload.
type RegisterUserMessage struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`

	OnResponse func(*User) `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler executes the registration flow: normalize, check for
// an existing record, hash, persist.
type RegisterUserHandler struct {
	users    Users
	hashCost int
}

// NewRegisterUserHandler creates the handler backed by the given repository
func NewRegisterUserHandler(users Users) *RegisterUserHandler {
	return &RegisterUserHandler{users: users}
}

// WithHashCost overrides the bcrypt work factor used for new passwords
func (h *RegisterUserHandler) WithHashCost(cost int) *RegisterUserHandler {
	h.hashCost = cost
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	email := NormalizeEmail(event.Email)
	name := strings.TrimSpace(event.Name)

	if email == "" || event.Password == "" || name == "" {
		return goerrors.New("email, password, and name are required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	// The existence check gives duplicate registrations a friendly error;
	// the unique index on email is what guarantees a single winner when
	// two registrations race.
	if _, err := h.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
	}

	hash, err := HashPasswordWithCost(event.Password, h.hashCost)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(email); err == nil {
			user.ID = id
		}
	}

	created, err := h.users.Create(ctx, user)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	if event.OnResponse != nil {
		event.OnResponse(created)
	}

	return nil
}
