package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/medilens/internal/domain/model"
	"github.com/ericfisherdev/medilens/internal/domain/port/driven"
)

func TestTokenRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	err := repo.Set(ctx, &model.Credential{Token: "abc", Subject: "a@b.com"})
	require.NoError(t, err)

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.Credential{Token: "abc", Subject: "a@b.com"}, cred)
}

func TestTokenRepo_SetNilClears(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &model.Credential{Token: "abc", Subject: "a@b.com"}))
	require.NoError(t, repo.Set(ctx, nil))

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	var count int
	require.NoError(t, db.Reader.QueryRow(`SELECT COUNT(*) FROM local_storage`).Scan(&count))
	assert.Equal(t, 0, count, "both keys should be removed")
}

func TestTokenRepo_GetEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)

	cred, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestTokenRepo_PartialStateReadsAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	_, err := db.Writer.Exec(`INSERT INTO local_storage (key, value) VALUES ('token', 'orphan')`)
	require.NoError(t, err)

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestTokenRepo_IncompleteCredentialClears(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &model.Credential{Token: "abc", Subject: "a@b.com"}))
	require.NoError(t, repo.Set(ctx, &model.Credential{Token: "only-token"}))

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestTokenRepo_LastWriterWins(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &model.Credential{Token: "old", Subject: "a@b.com"}))
	require.NoError(t, repo.Set(ctx, &model.Credential{Token: "new", Subject: "c@d.com"}))

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", cred.Token)
	assert.Equal(t, "c@d.com", cred.Subject)
}

func TestTokenRepo_EncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &model.Credential{Token: "secret-token", Subject: "a@b.com"}))

	var stored string
	var encrypted bool
	require.NoError(t, db.Reader.QueryRow(`SELECT value, encrypted FROM local_storage WHERE key = 'token'`).Scan(&stored, &encrypted))
	assert.True(t, encrypted)
	assert.NotContains(t, stored, "secret-token")

	cred, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cred.Token)
}

func TestTokenRepo_EncryptedWithoutKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewTokenRepo(db, testKey()).Set(ctx, &model.Credential{Token: "secret", Subject: "a@b.com"}))

	cred, err := NewTokenRepo(db, nil).Get(ctx)
	assert.Nil(t, cred)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestTokenRepo_UserStoredAsIdentityJSON(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)

	require.NoError(t, repo.Set(context.Background(), &model.Credential{Token: "abc", Subject: "a@b.com"}))

	var user string
	require.NoError(t, db.Reader.QueryRow(`SELECT value FROM local_storage WHERE key = 'user'`).Scan(&user))
	assert.JSONEq(t, `{"email":"a@b.com"}`, user)
}
