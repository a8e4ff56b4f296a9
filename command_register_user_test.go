package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserHandler(t *testing.T) {
	t.Run("registers a new user with a hashed password", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByEmail", mock.Anything, "ann@example.com").
			Return(nil, newUserNotFound(nil))
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
			return u.Email == "ann@example.com" &&
				u.Name == "Ann" &&
				u.PasswordHash != "" &&
				u.PasswordHash != "secret"
		})).Return(&User{
			ID:    uuid.New(),
			Email: "ann@example.com",
			Name:  "Ann",
		}, nil)

		var created *User
		handler := NewRegisterUserHandler(users).WithHashCost(4)

		err := handler.Execute(context.Background(), RegisterUserMessage{
			Email:    "Ann@Example.com",
			Name:     "Ann",
			Password: "secret",
			OnResponse: func(u *User) {
				created = u
			},
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "ann@example.com", created.Email)
		users.AssertExpectations(t)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByEmail", mock.Anything, "ann@example.com").
			Return(&User{ID: uuid.New(), Email: "ann@example.com"}, nil)

		handler := NewRegisterUserHandler(users).WithHashCost(4)

		err := handler.Execute(context.Background(), RegisterUserMessage{
			Email:    "ann@example.com",
			Name:     "Ann Again",
			Password: "other",
		})

		assert.ErrorIs(t, err, ErrEmailTaken)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate detection is case insensitive", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByEmail", mock.Anything, "ann@example.com").
			Return(&User{ID: uuid.New(), Email: "ann@example.com"}, nil)

		handler := NewRegisterUserHandler(users).WithHashCost(4)

		err := handler.Execute(context.Background(), RegisterUserMessage{
			Email:    "ANN@EXAMPLE.COM",
			Name:     "Shouty Ann",
			Password: "other",
		})

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("requires email, password, and name", func(t *testing.T) {
		users := &MockUsers{}
		handler := NewRegisterUserHandler(users).WithHashCost(4)

		for _, msg := range []RegisterUserMessage{
			{Name: "Ann", Password: "secret"},
			{Email: "ann@example.com", Password: "secret"},
			{Email: "ann@example.com", Name: "Ann"},
		} {
			err := handler.Execute(context.Background(), msg)
			assert.Error(t, err)
		}

		users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("cancelled context aborts before any work", func(t *testing.T) {
		users := &MockUsers{}
		handler := NewRegisterUserHandler(users).WithHashCost(4)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := handler.Execute(ctx, RegisterUserMessage{
			Email:    "ann@example.com",
			Name:     "Ann",
			Password: "secret",
		})

		assert.Error(t, err)
		users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})
}
