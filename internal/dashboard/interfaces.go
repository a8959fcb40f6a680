package dashboard

import (
	"context"

	"mockbank/internal/bankclient"
	"mockbank/internal/dto"
)

// BankAPI is the subset of the banking API the pages call. *bankclient.Client implements it.
type BankAPI interface {
	Login(ctx context.Context, username, password string) (*dto.TokenResponse, error)
	Logout(ctx context.Context) error
	ListAccounts(ctx context.Context) ([]dto.AccountSummary, error)
	GetBalance(ctx context.Context, accountID string) (*dto.BalanceResponse, error)
	ListTransactions(ctx context.Context, accountID string, limit int) ([]dto.LedgerEntryResponse, error)
	UpdateAccountStatus(ctx context.Context, accountID, status string) (*dto.UpdateAccountStatusResponse, error)
	CreateTransfer(ctx context.Context, transfer dto.TransferRequest, idempotencyKey string) (*bankclient.TransferResult, error)
	GetTransfer(ctx context.Context, transferID string) (*dto.TransferResponse, error)
	ListTransfers(ctx context.Context, limit int) ([]dto.TransferResponse, error)
}

// APIFactory returns a BankAPI authenticated with token. An empty token yields an anonymous client.
type APIFactory func(token string) BankAPI

// NewAPIFactory adapts a bankclient.Client to an APIFactory
func NewAPIFactory(client *bankclient.Client) APIFactory {
	return func(token string) BankAPI {
		return client.WithToken(token)
	}
}
