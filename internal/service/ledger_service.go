package service

import (
	"context"
	"fmt"
	"time"

	"posledger/internal/logger"
	"posledger/internal/metrics"
	"posledger/internal/model"
	"posledger/internal/repository"
	"posledger/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentResult describes how a payment was split between open debt and
// stored credit.
type PaymentResult struct {
	AppliedToDebt decimal.Decimal `json:"appliedToDebt"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
}

type BalanceInfo struct {
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	TotalDebt       decimal.Decimal `json:"totalDebt"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	AvailableCredit decimal.Decimal `json:"availableCredit"`
}

// LedgerPosting is the payload of ledger.posted notifications.
type LedgerPosting struct {
	CustomerID     int64           `json:"customerId"`
	Kind           string          `json:"kind"`
	Amount         decimal.Decimal `json:"amount"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}

type PostAmountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// LedgerService is the only way customer balances change. The balance is
// always TotalDebt - TotalPaid.
type LedgerService interface {
	AddDebt(ctx context.Context, customerID int64, amount decimal.Decimal, description string) (BalanceInfo, error)
	AddPayment(ctx context.Context, customerID int64, amount decimal.Decimal, description string) (PaymentResult, error)
	SettleBalance(ctx context.Context, customerID int64, amount decimal.Decimal) (PaymentResult, error)
	GetBalance(ctx context.Context, customerID int64) (BalanceInfo, error)
	ReverseDebt(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error
	ReversePayment(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error
	RecordSpend(ctx context.Context, customerID int64, amount decimal.Decimal) error
	Statement(ctx context.Context, customerID int64) ([]model.LedgerTransaction, error)
}

type ledgerService struct {
	customers repository.CustomerRepository
	txManager storage.TransactionManager
	notifier  Notifier
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewLedgerService(
	customers repository.CustomerRepository,
	txManager storage.TransactionManager,
	notifier Notifier,
	m *metrics.Metrics,
) LedgerService {
	return &ledgerService{
		customers: customers,
		txManager: txManager,
		notifier:  notifierOrNop(notifier),
		metrics:   m,
		now:       time.Now,
	}
}

func (s *ledgerService) AddDebt(ctx context.Context, customerID int64, amount decimal.Decimal, description string) (BalanceInfo, error) {
	if err := requirePositive(amount); err != nil {
		return BalanceInfo{}, err
	}
	c, err := s.post(ctx, customerID, model.LedgerKindDebt, func(c *model.Customer) (decimal.Decimal, error) {
		c.TotalDebt = c.TotalDebt.Add(amount)
		return amount, nil
	}, description)
	if err != nil {
		return BalanceInfo{}, err
	}
	return balanceOf(c), nil
}

// AddPayment never rejects an overpayment: whatever exceeds the open balance
// becomes credit and the balance goes negative.
func (s *ledgerService) AddPayment(ctx context.Context, customerID int64, amount decimal.Decimal, description string) (PaymentResult, error) {
	if err := requirePositive(amount); err != nil {
		return PaymentResult{}, err
	}

	var result PaymentResult
	_, err := s.post(ctx, customerID, model.LedgerKindPayment, func(c *model.Customer) (decimal.Decimal, error) {
		oldBalance := c.CurrentBalance()
		applied := decimal.Min(amount, decimal.Max(oldBalance, decimal.Zero))
		c.TotalPaid = c.TotalPaid.Add(amount)
		result = PaymentResult{
			AppliedToDebt: applied,
			NewBalance:    c.CurrentBalance(),
			CreditAmount:  amount.Sub(applied),
		}
		return amount, nil
	}, description)
	if err != nil {
		return PaymentResult{}, err
	}
	return result, nil
}

// SettleBalance is the "record payment" flow: it refuses to take more than
// is owed and then posts through AddPayment.
func (s *ledgerService) SettleBalance(ctx context.Context, customerID int64, amount decimal.Decimal) (PaymentResult, error) {
	if err := requirePositive(amount); err != nil {
		return PaymentResult{}, err
	}

	var result PaymentResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.customers.FindByID(txCtx, customerID)
		if err != nil {
			return fmt.Errorf("customer %d: %w", customerID, err)
		}
		if amount.GreaterThan(c.CurrentBalance()) {
			return newValidationError("amount", "Payment amount cannot exceed current balance")
		}
		result, err = s.AddPayment(txCtx, customerID, amount, "Balance payment")
		return err
	})
	return result, err
}

func (s *ledgerService) GetBalance(ctx context.Context, customerID int64) (BalanceInfo, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return BalanceInfo{}, fmt.Errorf("customer %d: %w", customerID, err)
	}
	return balanceOf(c), nil
}

// ReverseDebt undoes an earlier debt posting. TotalDebt never goes below zero.
func (s *ledgerService) ReverseDebt(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error {
	if !amount.IsPositive() {
		return nil
	}
	_, err := s.post(ctx, customerID, model.LedgerKindDebtReversal, func(c *model.Customer) (decimal.Decimal, error) {
		taken := decimal.Min(amount, c.TotalDebt)
		c.TotalDebt = c.TotalDebt.Sub(taken)
		return taken, nil
	}, description)
	return err
}

// ReversePayment undoes an earlier payment posting. TotalPaid never goes below zero.
func (s *ledgerService) ReversePayment(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error {
	if !amount.IsPositive() {
		return nil
	}
	_, err := s.post(ctx, customerID, model.LedgerKindPaymentReversal, func(c *model.Customer) (decimal.Decimal, error) {
		taken := decimal.Min(amount, c.TotalPaid)
		c.TotalPaid = c.TotalPaid.Sub(taken)
		return taken, nil
	}, description)
	return err
}

// RecordSpend adjusts the informational TotalSpent. A negative amount undoes
// an earlier spend; the total is floored at zero. No audit row is written.
func (s *ledgerService) RecordSpend(ctx context.Context, customerID int64, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := s.customers.Post(txCtx, customerID, func(c *model.Customer) (*model.LedgerTransaction, error) {
			c.TotalSpent = decimal.Max(c.TotalSpent.Add(amount), decimal.Zero)
			return nil, nil
		})
		if err != nil {
			return fmt.Errorf("customer %d: %w", customerID, err)
		}
		return nil
	})
}

func (s *ledgerService) Statement(ctx context.Context, customerID int64) ([]model.LedgerTransaction, error) {
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("customer %d: %w", customerID, err)
	}
	return s.customers.Transactions(ctx, customerID), nil
}

// post applies mutate to the customer and records the audit row for the
// amount it returns.
func (s *ledgerService) post(
	ctx context.Context,
	customerID int64,
	kind string,
	mutate func(c *model.Customer) (decimal.Decimal, error),
	description string,
) (*model.Customer, error) {
	var c *model.Customer
	var posted decimal.Decimal
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		c, err = s.customers.Post(txCtx, customerID, func(c *model.Customer) (*model.LedgerTransaction, error) {
			amount, err := mutate(c)
			if err != nil {
				return nil, err
			}
			posted = amount
			return &model.LedgerTransaction{
				ID:          uuid.NewString(),
				Kind:        kind,
				Amount:      amount,
				Description: description,
				Timestamp:   s.now(),
			}, nil
		})
		if err != nil {
			return fmt.Errorf("customer %d: %w", customerID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx).Int64("customer_id", customerID).Str("kind", kind).Str("balance", c.CurrentBalance().String()).Msg("ledger posting")
	s.metrics.LedgerPosted(kind)
	s.notifier.Notify(EventLedgerPosted, LedgerPosting{
		CustomerID:     customerID,
		Kind:           kind,
		Amount:         posted,
		CurrentBalance: c.CurrentBalance(),
	})
	return c, nil
}

func balanceOf(c *model.Customer) BalanceInfo {
	balance := c.CurrentBalance()
	return BalanceInfo{
		CurrentBalance:  balance,
		TotalDebt:       c.TotalDebt,
		TotalPaid:       c.TotalPaid,
		CreditLimit:     c.CreditLimit,
		AvailableCredit: c.CreditLimit.Sub(balance),
	}
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return newValidationError("amount", "Amount must be greater than zero")
	}
	return nil
}
