package repositories

import (
	"testing"
	"time"

	"mockbank/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_RecentEntriesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewLedgerRepository(db)
	owner := createUser(t, db)
	createAccount(t, db, owner, "ACC1001", "1000.00", models.AccountStatusActive)

	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Create(&models.LedgerEntry{
			AccountID: "ACC1001",
			Direction: models.DirectionDebit,
			Amount:    decimal.NewFromInt(int64(i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.GetRecentByAccountID("ACC1001", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, entries[2].Amount.Equal(decimal.NewFromInt(3)))

	none, err := repo.GetRecentByAccountID("ACC2001", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLedgerRepository_RejectsInvalidEntries(t *testing.T) {
	db := newTestDB(t)
	repo := NewLedgerRepository(db)

	assert.Error(t, repo.Create(nil))
	assert.ErrorIs(t, repo.Create(&models.LedgerEntry{
		AccountID: "ACC1001",
		Direction: "SIDEWAYS",
		Amount:    decimal.NewFromInt(1),
	}), models.ErrInvalidDirection)

	entries, err := repo.GetByTransferID(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
