package auth

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// a pool of one keeps every query on the same in-memory database
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, Migrate(context.Background(), db))

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestUsersRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	users := NewUsersRepository(db)
	ctx := context.Background()

	created, err := users.Create(ctx, &User{
		Email:        "Ann@Example.com",
		Name:         "Ann",
		PasswordHash: "$2a$04$fakehashfortesting0000000000000000000000000000000000",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "ann@example.com", created.Email, "stored email should be normalized")
	require.NotNil(t, created.CreatedAt)
	require.NotNil(t, created.UpdatedAt)

	byEmail, err := users.GetByEmail(ctx, "ANN@example.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := users.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", byID.Email)
}

func TestUsersRepositoryDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	users := NewUsersRepository(db)
	ctx := context.Background()

	_, err := users.Create(ctx, &User{
		Email:        "ann@example.com",
		Name:         "Ann",
		PasswordHash: "hash-one",
	})
	require.NoError(t, err)

	// same address with different casing hits the unique index
	_, err = users.Create(ctx, &User{
		Email:        "ANN@example.com",
		Name:         "Impostor",
		PasswordHash: "hash-two",
	})
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, TextCodeEmailTaken, rich.TextCode)
	assert.Equal(t, 400, HTTPStatus(err))
}

func TestUsersRepositoryConcurrentDuplicateCreate(t *testing.T) {
	db := newTestDB(t)
	users := NewUsersRepository(db)
	ctx := context.Background()

	const attempts = 8
	errs := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := users.Create(ctx, &User{
				Email:        "race@example.com",
				Name:         "Racer",
				PasswordHash: "hash",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	winners := 0
	rejected := 0
	for err := range errs {
		if err == nil {
			winners++
			continue
		}
		var rich *goerrors.Error
		require.True(t, goerrors.As(err, &rich), "unexpected error shape: %v", err)
		assert.Equal(t, TextCodeEmailTaken, rich.TextCode)
		rejected++
	}

	assert.Equal(t, 1, winners, "the unique index admits exactly one record")
	assert.Equal(t, attempts-1, rejected)

	stored, err := users.GetByEmail(ctx, "race@example.com")
	require.NoError(t, err)
	assert.Equal(t, "race@example.com", stored.Email)
}

func TestUsersRepositoryGetMisses(t *testing.T) {
	db := newTestDB(t)
	users := NewUsersRepository(db)
	ctx := context.Background()

	_, err := users.GetByEmail(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))

	_, err = users.GetByID(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))

	_, err = users.GetByID(ctx, "not-a-uuid")
	assert.Error(t, err)
}

func TestUsersRepositoryUpdateName(t *testing.T) {
	db := newTestDB(t)
	users := NewUsersRepository(db)
	ctx := context.Background()

	created, err := users.Create(ctx, &User{
		Email:        "ann@example.com",
		Name:         "Ann",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	updated, err := users.UpdateName(ctx, created.ID, "Ann Prime")
	require.NoError(t, err)
	assert.Equal(t, "Ann Prime", updated.Name)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.After(*created.UpdatedAt))

	reloaded, err := users.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Ann Prime", reloaded.Name)
	assert.Equal(t, "ann@example.com", reloaded.Email, "email survives a name change")
	assert.Equal(t, "hash", reloaded.PasswordHash, "password hash survives a name change")

	_, err = users.UpdateName(ctx, uuid.New(), "Ghost")
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))
}

func TestUsersRepositoryPing(t *testing.T) {
	db := newTestDB(t)
	users := NewUsersRepository(db)

	assert.NoError(t, users.Ping(context.Background()))
}
