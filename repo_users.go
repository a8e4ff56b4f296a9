package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the persistence boundary for credential records
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)

	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)

	UpdateName(ctx context.Context, id uuid.UUID, name string) (*User, error)

	Ping(ctx context.Context) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	normalized := NormalizeEmail(email)

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalized).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, newUserNotFound(map[string]any{
				"email": normalized,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, goerrors.New("invalid user identifier", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	record := &User{}
	err = a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", uid).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, newUserNotFound(map[string]any{
				"id": id,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, goerrors.Wrap(err, ErrEmailTaken.Category, ErrEmailTaken.Message).
				WithTextCode(ErrEmailTaken.TextCode).
				WithCode(ErrEmailTaken.Code)
		}
		return nil, err
	}

	return created, nil
}

func (a *users) UpdateName(ctx context.Context, id uuid.UUID, name string) (*User, error) {
	record, err := a.GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record.Name = name
	record.UpdatedAt = &now

	updated, err := a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(id.String()))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, newUserNotFound(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return updated, nil
}

func (a *users) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// newUserNotFound translates the repository library's not-found into this
// package's taxonomy so callers can rely on goerrors.IsNotFound.
func newUserNotFound(metadata map[string]any) *goerrors.Error {
	return goerrors.New("user not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(metadata)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
}
