package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/api/request"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/repository"
)

// TransactionService handles transaction-related business logic operations.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
	}
}

// GetTransactions retrieves the transaction window between startDate and
// endDate inclusive, in insertion order within each date.
func (s *TransactionService) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactionsByDateRange(ctx, startDate, endDate)
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	return s.transactionRepo.GetTransaction(ctx, transactionID)
}

// CreateTransaction stores a new transaction from a validated request.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	transactionDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, err
	}

	transaction := &model.Transaction{
		ID:              uuid.New().String(),
		Date:            transactionDate.UTC(),
		Category:        model.Category(req.Category),
		Amount:          req.Amount,
		Currency:        model.NormalizeCurrency(req.Currency),
		PSP:             req.PSP,
		Channel:         model.Channel(req.Channel),
		ExchangeRate:    req.ExchangeRate,
		ConvertedAmount: req.ConvertedAmount,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.transactionRepo.InsertTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return transaction, nil
}

// UpdateTransaction applies the provided fields of a validated update
// request to an existing transaction and persists the result. Daily groups
// are always re-derived from the stored set, so no aggregate state needs
// patching here.
func (s *TransactionService) UpdateTransaction(ctx context.Context, transactionID string, req request.UpdateTransactionRequest) (*model.Transaction, error) {
	transaction, err := s.transactionRepo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, err
		}
		transaction.Date = date.UTC()
	}
	if req.Category != nil {
		transaction.Category = model.Category(*req.Category)
	}
	if req.Amount != nil {
		transaction.Amount = *req.Amount
	}
	if req.Currency != nil {
		transaction.Currency = model.NormalizeCurrency(*req.Currency)
	}
	if req.PSP != nil {
		transaction.PSP = *req.PSP
	}
	if req.Channel != nil {
		transaction.Channel = model.Channel(*req.Channel)
	}
	if req.ExchangeRate != nil {
		transaction.ExchangeRate = *req.ExchangeRate
	}
	if req.ConvertedAmount != nil {
		transaction.ConvertedAmount = *req.ConvertedAmount
	}

	if err := s.transactionRepo.UpdateTransaction(ctx, &transaction); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &transaction, nil
}
