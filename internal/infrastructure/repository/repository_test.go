package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/meterly-io/meterly/internal/domain/apikey"
	"github.com/meterly-io/meterly/internal/domain/billing"
	"github.com/meterly-io/meterly/internal/domain/ledger"
	"github.com/meterly-io/meterly/internal/domain/user"
	apperrors "github.com/meterly-io/meterly/internal/shared/errors"
	"github.com/meterly-io/meterly/internal/infrastructure/persistence/models"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.UserModel{},
		&models.TokenLedgerModel{},
		&models.APIKeyModel{},
		&models.PurchaseEventModel{},
	)
	require.NoError(t, err)

	return db
}

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func createTestUser(t *testing.T, userID, email string) *user.User {
	u, err := user.NewUser(userID, email)
	require.NoError(t, err)
	return u
}

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	t.Run("create new user successfully", func(t *testing.T) {
		u := createTestUser(t, "user_create_1", "create1@example.com")
		err := repo.Create(ctx, u)
		assert.NoError(t, err)

		found, err := repo.GetByID(ctx, "user_create_1")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "create1@example.com", found.Email())
		assert.Equal(t, user.BillingModelPayPerToken, found.BillingModel())
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		u1 := createTestUser(t, "user_dup_1", "dup@example.com")
		require.NoError(t, repo.Create(ctx, u1))

		u2 := createTestUser(t, "user_dup_2", "dup@example.com")
		err := repo.Create(ctx, u2)
		assert.Error(t, err)
		assert.True(t, apperrors.IsConflictError(err))
	})
}

func TestUserRepository_Lookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, "user_lookup_1", "lookup@example.com")
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.SetStripeCustomerID(ctx, "user_lookup_1", "cus_123"))

	t.Run("get by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "lookup@example.com")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "user_lookup_1", found.ID())
	})

	t.Run("get by stripe customer ID", func(t *testing.T) {
		found, err := repo.GetByStripeCustomerID(ctx, "cus_123")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "user_lookup_1", found.ID())
	})

	t.Run("missing user yields nil without error", func(t *testing.T) {
		found, err := repo.GetByID(ctx, "user_absent")
		assert.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.GetByEmail(ctx, "absent@example.com")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestUserRepository_ReassignID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, "user_old_id", "reassign@example.com")
	require.NoError(t, repo.Create(ctx, u))

	err := repo.ReassignID(ctx, "user_old_id", "user_new_id")
	assert.NoError(t, err)

	old, err := repo.GetByID(ctx, "user_old_id")
	assert.NoError(t, err)
	assert.Nil(t, old)

	moved, err := repo.GetByID(ctx, "user_new_id")
	assert.NoError(t, err)
	require.NotNil(t, moved)
	assert.Equal(t, "reassign@example.com", moved.Email())

	t.Run("reassigning a missing ID is not found", func(t *testing.T) {
		err := repo.ReassignID(ctx, "user_gone", "user_whatever")
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestUserRepository_ReassignIDMovesDependents(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db, testLogger())
	ledgers := NewTokenLedgerRepository(db, testLogger())
	keys := NewAPIKeyRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, "user_adopt_old", "adopt@example.com")
	require.NoError(t, users.Create(ctx, u))

	l, err := ledger.NewTokenLedger("user_adopt_old")
	require.NoError(t, err)
	require.NoError(t, ledgers.Create(ctx, l))
	require.NoError(t, ledgers.Credit(ctx, "user_adopt_old", 2500))

	k, err := apikey.NewAPIKey("user_adopt_old", "hash_adopt", "enc_adopt")
	require.NoError(t, err)
	require.NoError(t, keys.Create(ctx, k))

	require.NoError(t, users.ReassignID(ctx, "user_adopt_old", "user_adopt_new"))

	movedLedger, err := ledgers.GetByUserID(ctx, "user_adopt_new")
	require.NoError(t, err)
	require.NotNil(t, movedLedger, "adopted user must keep their ledger")
	assert.Equal(t, int64(ledger.SeedTokens+2500), movedLedger.Available())

	movedKey, err := keys.GetByUserID(ctx, "user_adopt_new")
	require.NoError(t, err)
	require.NotNil(t, movedKey, "adopted user must keep their key")
	assert.Equal(t, "hash_adopt", movedKey.HashedKey())

	orphanLedger, err := ledgers.GetByUserID(ctx, "user_adopt_old")
	require.NoError(t, err)
	assert.Nil(t, orphanLedger)
	orphanKey, err := keys.GetByUserID(ctx, "user_adopt_old")
	require.NoError(t, err)
	assert.Nil(t, orphanKey)
}

func TestUserRepository_SetBillingModel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db, testLogger())
	ctx := context.Background()

	u := createTestUser(t, "user_billing_1", "billing@example.com")
	require.NoError(t, repo.Create(ctx, u))

	err := repo.SetBillingModel(ctx, "user_billing_1", user.BillingModelPro)
	assert.NoError(t, err)

	found, err := repo.GetByID(ctx, "user_billing_1")
	assert.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.BillingModelPro, found.BillingModel())
}

func TestTokenLedgerRepository_Credit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenLedgerRepository(db, testLogger())
	ctx := context.Background()

	t.Run("credit on existing row increments", func(t *testing.T) {
		l, err := ledger.NewTokenLedger("user_credit_1")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, l))

		err = repo.Credit(ctx, "user_credit_1", 2500)
		assert.NoError(t, err)

		found, err := repo.GetByUserID(ctx, "user_credit_1")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, int64(ledger.SeedTokens+2500), found.Available())
		assert.Equal(t, int64(0), found.Used())
	})

	t.Run("credit with no row inserts it", func(t *testing.T) {
		err := repo.Credit(ctx, "user_credit_orphan", 500)
		assert.NoError(t, err)

		found, err := repo.GetByUserID(ctx, "user_credit_orphan")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, int64(500), found.Available())
	})

	t.Run("successive credits accumulate", func(t *testing.T) {
		require.NoError(t, repo.Credit(ctx, "user_credit_acc", 1000))
		require.NoError(t, repo.Credit(ctx, "user_credit_acc", 7500))

		found, err := repo.GetByUserID(ctx, "user_credit_acc")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, int64(8500), found.Available())
	})
}

func TestTokenLedgerRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenLedgerRepository(db, testLogger())
	ctx := context.Background()

	l, err := ledger.NewTokenLedger("user_seed_1")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, l))

	t.Run("seed grant is persisted", func(t *testing.T) {
		found, err := repo.GetByUserID(ctx, "user_seed_1")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, int64(ledger.SeedTokens), found.Available())
	})

	t.Run("double seed returns conflict", func(t *testing.T) {
		l2, err := ledger.NewTokenLedger("user_seed_1")
		require.NoError(t, err)
		err = repo.Create(ctx, l2)
		assert.True(t, apperrors.IsConflictError(err))
	})

	t.Run("missing ledger yields nil without error", func(t *testing.T) {
		found, err := repo.GetByUserID(ctx, "user_seed_absent")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestAPIKeyRepository_Rotation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db, testLogger())
	ctx := context.Background()

	t.Run("create assigns an ID", func(t *testing.T) {
		k, err := apikey.NewAPIKey("user_key_1", "hash_one", "cipher_one")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, k))
		assert.NotZero(t, k.ID())
	})

	t.Run("lookup by hash", func(t *testing.T) {
		found, err := repo.GetByHashedKey(ctx, "hash_one")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "user_key_1", found.UserID())
	})

	t.Run("unknown hash yields nil without error", func(t *testing.T) {
		found, err := repo.GetByHashedKey(ctx, "hash_unknown")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("delete then create replaces the key", func(t *testing.T) {
		require.NoError(t, repo.DeleteByUserID(ctx, "user_key_1"))

		k, err := apikey.NewAPIKey("user_key_1", "hash_two", "cipher_two")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, k))

		found, err := repo.GetByUserID(ctx, "user_key_1")
		assert.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "hash_two", found.HashedKey())

		stale, err := repo.GetByHashedKey(ctx, "hash_one")
		assert.NoError(t, err)
		assert.Nil(t, stale)
	})

	t.Run("delete of missing key is silent", func(t *testing.T) {
		err := repo.DeleteByUserID(ctx, "user_key_absent")
		assert.NoError(t, err)
	})
}

func TestPurchaseEventRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPurchaseEventRepository(db, testLogger())
	ctx := context.Background()

	t.Run("create and check session dedupe", func(t *testing.T) {
		evt, err := billing.NewPurchaseEvent("user_pe_1", "checkout.session.completed",
			billing.PlanValuePack, 2000, 2500, "cs_abc", "pi_abc", billing.PurchaseStatusCompleted)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, evt))

		exists, err := repo.ExistsBySessionID(ctx, "cs_abc")
		assert.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySessionID(ctx, "cs_unseen")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate session ID returns conflict", func(t *testing.T) {
		evt, err := billing.NewPurchaseEvent("user_pe_1", "checkout.session.completed",
			billing.PlanValuePack, 2000, 2500, "cs_abc", "pi_other", billing.PurchaseStatusCompleted)
		require.NoError(t, err)
		err = repo.Create(ctx, evt)
		assert.True(t, apperrors.IsConflictError(err))
	})

	t.Run("renewal without session is accepted repeatedly", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			evt, err := billing.NewPurchaseEvent("user_pe_2", "invoice.paid",
				billing.PlanPro, 1900, 2500, "", "", billing.PurchaseStatusCompleted)
			require.NoError(t, err)
			assert.NoError(t, repo.Create(ctx, evt))
		}

		events, err := repo.ListByUserID(ctx, "user_pe_2", 10)
		assert.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("list is bounded by limit", func(t *testing.T) {
		events, err := repo.ListByUserID(ctx, "user_pe_2", 1)
		assert.NoError(t, err)
		assert.Len(t, events, 1)
	})
}
