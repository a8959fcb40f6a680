package repositories

import (
	"testing"
	"time"

	"mockbank/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// TransferRepositoryTestSuite is the test suite for Transfer repository
type TransferRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	repo  TransferRepositoryInterface
	owner *models.User
}

func (s *TransferRepositoryTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.repo = NewTransferRepository(s.db)
	s.owner = createUser(s.T(), s.db)
	createAccount(s.T(), s.db, s.owner, "ACC1001", "1000.00", models.AccountStatusActive)
	createAccount(s.T(), s.db, s.owner, "ACC2001", "250.00", models.AccountStatusActive)
}

func TestTransferRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TransferRepositoryTestSuite))
}

func (s *TransferRepositoryTestSuite) createTestTransfer(from, to string) *models.Transfer {
	return &models.Transfer{
		FromAccountID:  from,
		ToAccountID:    to,
		Amount:         decimal.NewFromFloat(gofakeit.Float64Range(10, 1000)).Round(2),
		IdempotencyKey: uuid.New().String(),
		Mode:           models.TransferModeSync,
	}
}

func (s *TransferRepositoryTestSuite) TestCreate_ValidTransfer() {
	transfer := s.createTestTransfer("ACC1001", "ACC2001")

	err := s.repo.Create(transfer)
	require.NoError(s.T(), err)
	assert.NotEqual(s.T(), uuid.Nil, transfer.ID)
	assert.Equal(s.T(), models.TransferStatusProcessing, transfer.Status)
}

func (s *TransferRepositoryTestSuite) TestCreate_NilTransfer() {
	err := s.repo.Create(nil)
	require.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "transfer cannot be nil")
}

func (s *TransferRepositoryTestSuite) TestCreate_DuplicateIdempotencyTuple() {
	transfer := s.createTestTransfer("ACC1001", "ACC2001")
	require.NoError(s.T(), s.repo.Create(transfer))

	dup := &models.Transfer{
		FromAccountID:  transfer.FromAccountID,
		ToAccountID:    transfer.ToAccountID,
		Amount:         transfer.Amount,
		IdempotencyKey: transfer.IdempotencyKey,
	}
	assert.ErrorIs(s.T(), s.repo.Create(dup), ErrTransferIdempotencyKeyExists)
}

func (s *TransferRepositoryTestSuite) TestFindByIdempotency() {
	transfer := s.createTestTransfer("ACC1001", "ACC2001")
	require.NoError(s.T(), s.repo.Create(transfer))

	found, err := s.repo.FindByIdempotency("ACC1001", "ACC2001", transfer.Amount, transfer.IdempotencyKey)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), transfer.ID, found.ID)

	_, err = s.repo.FindByIdempotency("ACC1001", "ACC2001", transfer.Amount.Add(decimal.NewFromInt(1)), transfer.IdempotencyKey)
	assert.ErrorIs(s.T(), err, ErrTransferNotFound)
}

func (s *TransferRepositoryTestSuite) TestFindByID_NotFound() {
	_, err := s.repo.FindByID(uuid.New())
	assert.ErrorIs(s.T(), err, ErrTransferNotFound)
}

func (s *TransferRepositoryTestSuite) TestFindByOwner_OnlyOutgoingNewestFirst() {
	stranger := createUser(s.T(), s.db)
	createAccount(s.T(), s.db, stranger, "ACC9001", "500.00", models.AccountStatusActive)

	older := s.createTestTransfer("ACC1001", "ACC2001")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(s.T(), s.repo.Create(older))

	newer := s.createTestTransfer("ACC2001", "ACC9001")
	require.NoError(s.T(), s.repo.Create(newer))

	incoming := s.createTestTransfer("ACC9001", "ACC1001")
	require.NoError(s.T(), s.repo.Create(incoming))

	transfers, err := s.repo.FindByOwner(s.owner.ID, 50)
	require.NoError(s.T(), err)
	require.Len(s.T(), transfers, 2)
	assert.Equal(s.T(), newer.ID, transfers[0].ID)
	assert.Equal(s.T(), older.ID, transfers[1].ID)

	limited, err := s.repo.FindByOwner(s.owner.ID, 1)
	require.NoError(s.T(), err)
	assert.Len(s.T(), limited, 1)

	theirs, err := s.repo.FindByOwner(stranger.ID, 50)
	require.NoError(s.T(), err)
	require.Len(s.T(), theirs, 1)
	assert.Equal(s.T(), incoming.ID, theirs[0].ID)
}

func (s *TransferRepositoryTestSuite) TestMarkFailed_OnlyFromProcessing() {
	transfer := s.createTestTransfer("ACC1001", "ACC2001")
	require.NoError(s.T(), s.repo.Create(transfer))

	failed, err := s.repo.MarkFailed(transfer.ID, "Insufficient funds")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.TransferStatusFailed, failed.Status)
	require.NotNil(s.T(), failed.FailureReason)
	assert.Equal(s.T(), "Insufficient funds", *failed.FailureReason)

	again, err := s.repo.MarkFailed(transfer.ID, "something else")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Insufficient funds", *again.FailureReason)
}
