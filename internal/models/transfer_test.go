package models

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TransferTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (s *TransferTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.AutoMigrate(&Transfer{}, &LedgerEntry{}))
	s.db = db
}

func (s *TransferTestSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func TestTransferTestSuite(t *testing.T) {
	suite.Run(t, new(TransferTestSuite))
}

func (s *TransferTestSuite) newTransfer() *Transfer {
	return &Transfer{
		FromAccountID:  "ACC" + gofakeit.DigitN(4),
		ToAccountID:    "ACC" + gofakeit.DigitN(5),
		Amount:         decimal.NewFromFloat(gofakeit.Float64Range(1, 500)).Round(2),
		IdempotencyKey: uuid.NewString(),
	}
}

func (s *TransferTestSuite) TestBeforeCreate_Defaults() {
	transfer := s.newTransfer()

	s.Require().NoError(s.db.Create(transfer).Error)

	s.NotEqual(uuid.Nil, transfer.ID)
	s.Equal(TransferStatusProcessing, transfer.Status)
	s.Equal(TransferModeSync, transfer.Mode)
	s.True(transfer.IsProcessing())
	s.False(transfer.IsFinal())
}

func (s *TransferTestSuite) TestBeforeCreate_Validation() {
	same := s.newTransfer()
	same.ToAccountID = same.FromAccountID
	s.ErrorIs(s.db.Create(same).Error, ErrSameAccountTransfer)

	zero := s.newTransfer()
	zero.Amount = decimal.Zero
	s.ErrorIs(s.db.Create(zero).Error, ErrInvalidTransferAmount)

	noKey := s.newTransfer()
	noKey.IdempotencyKey = ""
	s.Error(s.db.Create(noKey).Error)
}

func (s *TransferTestSuite) TestUniqueIdempotencyTuple() {
	first := s.newTransfer()
	s.Require().NoError(s.db.Create(first).Error)

	dup := &Transfer{
		FromAccountID:  first.FromAccountID,
		ToAccountID:    first.ToAccountID,
		Amount:         first.Amount,
		IdempotencyKey: first.IdempotencyKey,
	}
	s.Error(s.db.Create(dup).Error)

	other := &Transfer{
		FromAccountID:  first.FromAccountID,
		ToAccountID:    first.ToAccountID,
		Amount:         first.Amount.Add(decimal.NewFromInt(1)),
		IdempotencyKey: first.IdempotencyKey,
	}
	s.NoError(s.db.Create(other).Error)
}

func (s *TransferTestSuite) TestSucceedAndFail() {
	transfer := s.newTransfer()
	transfer.Status = TransferStatusProcessing

	s.True(transfer.CanTransitionTo(TransferStatusSuccess))
	transfer.Succeed()
	s.Equal(TransferStatusSuccess, transfer.Status)
	s.NotNil(transfer.CompletedAt)
	s.False(transfer.CanTransitionTo(TransferStatusFailed))

	failed := s.newTransfer()
	failed.Status = TransferStatusProcessing
	failed.Fail("Insufficient funds")
	s.Equal(TransferStatusFailed, failed.Status)
	s.Require().NotNil(failed.FailureReason)
	s.Equal("Insufficient funds", *failed.FailureReason)
	s.True(failed.IsFinal())
}

func (s *TransferTestSuite) TestNewTransferEntries() {
	transfer := s.newTransfer()
	transfer.ID = uuid.New()

	debit, credit := NewTransferEntries(transfer)

	s.Equal(DirectionDebit, debit.Direction)
	s.Equal(transfer.FromAccountID, debit.AccountID)
	s.Equal(DirectionCredit, credit.Direction)
	s.Equal(transfer.ToAccountID, credit.AccountID)
	s.Equal(transfer.ID, *debit.RefTransferID)
	s.True(debit.Amount.Equal(transfer.Amount))

	s.Require().NoError(s.db.Create(debit).Error)
	s.Require().NoError(s.db.Create(credit).Error)

	bad := &LedgerEntry{AccountID: "ACC1", Direction: "SIDEWAYS", Amount: decimal.NewFromInt(1)}
	s.ErrorIs(s.db.Create(bad).Error, ErrInvalidDirection)
}

func TestIsValidTransferMode(t *testing.T) {
	require.True(t, IsValidTransferMode(TransferModeSync))
	require.True(t, IsValidTransferMode(TransferModeAsync))
	require.False(t, IsValidTransferMode("batch"))
}
