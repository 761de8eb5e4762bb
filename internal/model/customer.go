package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind enum constants
const (
	LedgerKindDebt            = "debt"
	LedgerKindPayment         = "payment"
	LedgerKindDebtReversal    = "debt-reversal"
	LedgerKindPaymentReversal = "payment-reversal"
)

// Customer carries the cumulative ledger totals. The current balance is
// always derived as TotalDebt - TotalPaid and is never stored.
type Customer struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Location     string          `json:"location"`
	CreditLimit  decimal.Decimal `json:"creditLimit"`
	PaymentTerms string          `json:"paymentTerms"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	TotalDebt    decimal.Decimal `json:"totalDebt"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	// LegacyBalance is a directly stored balance found in older records.
	// Reconcile folds it into the totals; it is never written back.
	LegacyBalance *decimal.Decimal `json:"currentBalance,omitempty"`
}

// CurrentBalance is the net amount owed. Negative means the customer holds credit.
func (c Customer) CurrentBalance() decimal.Decimal {
	return c.TotalDebt.Sub(c.TotalPaid)
}

// Reconcile folds a legacy stored balance into TotalDebt/TotalPaid so that
// CurrentBalance reproduces it. Returns true when the record changed.
func (c *Customer) Reconcile() bool {
	if c.LegacyBalance == nil {
		return false
	}
	stored := *c.LegacyBalance
	c.LegacyBalance = nil

	diff := stored.Sub(c.CurrentBalance())
	if diff.IsPositive() {
		c.TotalDebt = c.TotalDebt.Add(diff)
	} else if diff.IsNegative() {
		c.TotalPaid = c.TotalPaid.Add(diff.Neg())
	}
	return true
}

// LedgerTransaction is the audit row written for every balance mutation.
type LedgerTransaction struct {
	ID           string          `json:"id"`
	CustomerID   int64           `json:"customerId"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ShopData is the single persisted object holding catalog and ledger state.
type ShopData struct {
	Items        map[int64]*Item     `json:"items"`
	Customers    map[int64]*Customer `json:"customers"`
	Transactions []LedgerTransaction `json:"transactions"`
	Settings     ShopSettings        `json:"settings"`
}

// ShopSettings holds the id sequences for ShopData.
type ShopSettings struct {
	NextItemID     int64 `json:"nextItemId"`
	NextCustomerID int64 `json:"nextCustomerId"`
}

// Normalize fills nil maps and repairs sequences that fell behind the
// highest stored id (e.g. after a hand-edited import).
func (d *ShopData) Normalize() {
	if d.Items == nil {
		d.Items = make(map[int64]*Item)
	}
	if d.Customers == nil {
		d.Customers = make(map[int64]*Customer)
	}
	for id := range d.Items {
		if id >= d.Settings.NextItemID {
			d.Settings.NextItemID = id + 1
		}
	}
	for id := range d.Customers {
		if id >= d.Settings.NextCustomerID {
			d.Settings.NextCustomerID = id + 1
		}
	}
	if d.Settings.NextItemID < 1 {
		d.Settings.NextItemID = 1
	}
	if d.Settings.NextCustomerID < 1 {
		d.Settings.NextCustomerID = 1
	}
}
