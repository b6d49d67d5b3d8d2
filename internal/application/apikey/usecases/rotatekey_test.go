package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meterly-io/meterly/internal/domain/apikey"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

type fakeKeyRepo struct {
	byUser    map[string]*apikey.APIKey
	failOn    string
	nextID    uint
	createErr error
}

func newFakeKeyRepo() *fakeKeyRepo {
	return &fakeKeyRepo{byUser: make(map[string]*apikey.APIKey)}
}

func (r *fakeKeyRepo) Create(ctx context.Context, key *apikey.APIKey) error {
	if r.failOn == "create" {
		return r.createErr
	}
	if _, ok := r.byUser[key.UserID()]; ok {
		return apperrors.NewConflictError("API key already exists for user", key.UserID())
	}
	r.nextID++
	key.SetID(r.nextID)
	r.byUser[key.UserID()] = key
	return nil
}

func (r *fakeKeyRepo) GetByUserID(ctx context.Context, userID string) (*apikey.APIKey, error) {
	return r.byUser[userID], nil
}

func (r *fakeKeyRepo) GetByHashedKey(ctx context.Context, hashedKey string) (*apikey.APIKey, error) {
	for _, key := range r.byUser {
		if key.HashedKey() == hashedKey {
			return key, nil
		}
	}
	return nil, nil
}

func (r *fakeKeyRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if r.failOn == "delete" {
		return fmt.Errorf("store unavailable")
	}
	delete(r.byUser, userID)
	return nil
}

type fakeGenerator struct {
	counter int
}

func (g *fakeGenerator) Generate() (string, error) {
	g.counter++
	return fmt.Sprintf("pk_generated_%d", g.counter), nil
}

func (g *fakeGenerator) Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

type fakeCipher struct{}

func (fakeCipher) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

func (fakeCipher) Decrypt(ciphertext string) (string, error) {
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", fmt.Errorf("ciphertext cannot be decrypted")
	}
	return ciphertext[4:], nil
}

func silentLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRotateKey_ReplacesExistingKey(t *testing.T) {
	repo := newFakeKeyRepo()
	gen := &fakeGenerator{}
	ctx := context.Background()

	provision := NewProvisionKeyUseCase(repo, gen, fakeCipher{}, silentLogger())
	require.NoError(t, provision.Execute(ctx, "user_1"))
	first := repo.byUser["user_1"]
	require.NotNil(t, first)

	rotate := NewRotateKeyUseCase(repo, gen, fakeCipher{}, silentLogger())
	result, err := rotate.Execute(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "pk_generated_2", result.APIKey)

	second := repo.byUser["user_1"]
	require.NotNil(t, second)
	assert.NotEqual(t, first.HashedKey(), second.HashedKey())
	assert.Equal(t, gen.Hash(result.APIKey), second.HashedKey())
}

func TestRotateKey_WorksWithoutExistingKey(t *testing.T) {
	repo := newFakeKeyRepo()
	rotate := NewRotateKeyUseCase(repo, &fakeGenerator{}, fakeCipher{}, silentLogger())

	result, err := rotate.Execute(context.Background(), "user_fresh")
	require.NoError(t, err)
	assert.NotEmpty(t, result.APIKey)
	assert.NotNil(t, repo.byUser["user_fresh"])
}

func TestRotateKey_InsertFailureLeavesUserKeyless(t *testing.T) {
	repo := newFakeKeyRepo()
	gen := &fakeGenerator{}
	ctx := context.Background()

	provision := NewProvisionKeyUseCase(repo, gen, fakeCipher{}, silentLogger())
	require.NoError(t, provision.Execute(ctx, "user_1"))

	repo.failOn = "create"
	repo.createErr = fmt.Errorf("store unavailable")

	rotate := NewRotateKeyUseCase(repo, gen, fakeCipher{}, silentLogger())
	_, err := rotate.Execute(ctx, "user_1")
	assert.Error(t, err)
	assert.Nil(t, repo.byUser["user_1"])
}

func TestProvisionKey_ExistingKeyIsNoOp(t *testing.T) {
	repo := newFakeKeyRepo()
	gen := &fakeGenerator{}
	ctx := context.Background()

	provision := NewProvisionKeyUseCase(repo, gen, fakeCipher{}, silentLogger())
	require.NoError(t, provision.Execute(ctx, "user_1"))
	original := repo.byUser["user_1"].HashedKey()

	require.NoError(t, provision.Execute(ctx, "user_1"))
	assert.Equal(t, original, repo.byUser["user_1"].HashedKey())
}

func TestGetKey_DecryptsStoredKey(t *testing.T) {
	repo := newFakeKeyRepo()
	gen := &fakeGenerator{}
	ctx := context.Background()

	rotate := NewRotateKeyUseCase(repo, gen, fakeCipher{}, silentLogger())
	rotated, err := rotate.Execute(ctx, "user_1")
	require.NoError(t, err)

	get := NewGetKeyUseCase(repo, fakeCipher{}, silentLogger())
	result, err := get.Execute(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, rotated.APIKey, result.APIKey)
}

func TestGetKey_DegradesWhenUndecryptable(t *testing.T) {
	repo := newFakeKeyRepo()
	ctx := context.Background()

	key, err := apikey.NewAPIKey("user_1", "some_hash", "sealed-under-old-secret")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, key))

	get := NewGetKeyUseCase(repo, fakeCipher{}, silentLogger())
	result, err := get.Execute(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Empty(t, result.APIKey)
}

func TestGetKey_NoKey(t *testing.T) {
	get := NewGetKeyUseCase(newFakeKeyRepo(), fakeCipher{}, silentLogger())
	result, err := get.Execute(context.Background(), "user_absent")
	require.NoError(t, err)
	assert.False(t, result.Available)
}

func TestVerifyKey(t *testing.T) {
	repo := newFakeKeyRepo()
	gen := &fakeGenerator{}
	ctx := context.Background()

	rotate := NewRotateKeyUseCase(repo, gen, fakeCipher{}, silentLogger())
	rotated, err := rotate.Execute(ctx, "user_1")
	require.NoError(t, err)

	verify := NewVerifyKeyUseCase(repo, gen)

	t.Run("valid key resolves owner", func(t *testing.T) {
		userID, err := verify.Execute(ctx, rotated.APIKey)
		require.NoError(t, err)
		assert.Equal(t, "user_1", userID)
	})

	t.Run("unknown key is unauthorized", func(t *testing.T) {
		_, err := verify.Execute(ctx, "pk_unknown")
		assert.Error(t, err)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrorTypeUnauthorized, appErr.Type)
	})

	t.Run("empty key is unauthorized", func(t *testing.T) {
		_, err := verify.Execute(ctx, "")
		assert.Error(t, err)
	})
}
