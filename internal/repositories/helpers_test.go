package repositories

import (
	"testing"

	"mockbank/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database. A single connection keeps every
// query on the same sqlite memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.LedgerEntry{},
		&models.Transfer{},
		&models.TransferQueueItem{},
		&models.AuditLog{},
		&models.BlacklistedToken{},
		&models.IdempotencyRecord{},
	))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Username:     gofakeit.Username() + gofakeit.DigitN(4),
		PasswordHash: "hashed_password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createAccount(t *testing.T, db *gorm.DB, owner *models.User, id, balance, status string) *models.Account {
	t.Helper()
	account := &models.Account{
		ID:      id,
		OwnerID: owner.ID,
		Balance: decimal.RequireFromString(balance),
		Status:  status,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}
