package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActivityType enum constants
const (
	ActivitySale       = "sale"
	ActivityReturn     = "return"
	ActivityAdjustment = "adjustment"
	ActivityTransfer   = "transfer"
	ActivityInitial    = "initial"
	ActivityService    = "service"
)

// ActivityRecord is an append-only entry of the inventory activity log.
type ActivityRecord struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	ItemName  string          `json:"itemName"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
	Details   ActivityDetails `json:"details"`
}

// ActivityDetails is free-form context for reporting.
type ActivityDetails struct {
	CustomerName   string `json:"customerName,omitempty"`
	DocumentNumber string `json:"documentNumber,omitempty"`
	PaymentMethod  string `json:"paymentMethod,omitempty"`
	FromStore      string `json:"fromStore,omitempty"`
	ToStore        string `json:"toStore,omitempty"`
	Note           string `json:"note,omitempty"`
}

// ActivitySummary aggregates activity records of one type.
type ActivitySummary struct {
	Type          string          `json:"type"`
	Count         int             `json:"count"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}
