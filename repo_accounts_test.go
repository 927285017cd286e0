package contacts_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	contacts "github.com/contactio/go-contacts"
)

const sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT NOT NULL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    confirmed BOOLEAN NOT NULL DEFAULT FALSE,
    refresh_token TEXT,
    avatar_url TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

func setupAccountsRepo(t *testing.T) contacts.Accounts {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateAccounts)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return contacts.NewAccountsRepository(bunDB)
}

func TestAccountsRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := setupAccountsRepo(t)

	created, err := repo.Insert(ctx, &contacts.Account{
		Username:     "tony",
		Email:        "Tony@Sparrow.com",
		PasswordHash: "hashed",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	t.Run("email is normalized on insert", func(t *testing.T) {
		assert.Equal(t, "tony@sparrow.com", created.Email)
	})

	t.Run("default avatar is applied", func(t *testing.T) {
		assert.Equal(t, contacts.DefaultAvatarURL, created.AvatarURL)
	})

	t.Run("find by email is case insensitive on input", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "TONY@sparrow.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("find by username", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "tony")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("missing email is a not found error", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@sparrow.com")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("missing username is a not found error", func(t *testing.T) {
		_, err := repo.FindByUsername(ctx, "nobody")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("same email derives the same id", func(t *testing.T) {
		other := setupAccountsRepo(t)
		twin, err := other.Insert(ctx, &contacts.Account{
			Username:     "tony",
			Email:        "tony@sparrow.com",
			PasswordHash: "hashed",
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, twin.ID)
	})
}

func TestAccountsRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := setupAccountsRepo(t)

	created, err := repo.Insert(ctx, &contacts.Account{
		Username:     "tony",
		Email:        "tony@sparrow.com",
		PasswordHash: "hashed",
	})
	require.NoError(t, err)

	next := created.BeginSession("refresh-token")
	next, _ = next.ConfirmEmail()

	_, err = repo.Save(ctx, &next)
	require.NoError(t, err)

	found, err := repo.FindByEmail(ctx, "tony@sparrow.com")
	require.NoError(t, err)
	assert.True(t, found.Confirmed)
	assert.Equal(t, "refresh-token", found.RefreshToken)

	t.Run("clearing the session persists", func(t *testing.T) {
		ended := found.EndSession()
		_, err := repo.Save(ctx, &ended)
		require.NoError(t, err)

		reloaded, err := repo.FindByEmail(ctx, "tony@sparrow.com")
		require.NoError(t, err)
		assert.False(t, reloaded.HasActiveSession())
	})
}
