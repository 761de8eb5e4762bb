package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind identifies one of the three numbered document types.
type DocumentKind string

const (
	KindInvoice  DocumentKind = "invoice"
	KindReturn   DocumentKind = "return"
	KindTransfer DocumentKind = "transfer"
)

// PaymentMethod enum constants
const (
	PaymentOnAccount    = "on-account"
	PaymentCash         = "cash"
	PaymentPartial      = "partial"
	PaymentCard         = "card"
	PaymentBankTransfer = "bank-transfer"
)

// DiscountType enum constants
const (
	DiscountAmount     = "amount"
	DiscountPercentage = "percentage"
)

// MaxDocumentRows caps the number of line items on a single document.
const MaxDocumentRows = 100

// Prefix returns the document number prefix for the kind.
func (k DocumentKind) Prefix() string {
	switch k {
	case KindReturn:
		return "RET"
	case KindTransfer:
		return "TRF"
	default:
		return "INV"
	}
}

// IsValid reports whether k is a known document kind.
func (k DocumentKind) IsValid() bool {
	return k == KindInvoice || k == KindReturn || k == KindTransfer
}

// FormatDocumentNumber renders PREFIX-NNNN, zero padded to four digits.
func FormatDocumentNumber(kind DocumentKind, seq int64) string {
	return fmt.Sprintf("%s-%04d", kind.Prefix(), seq)
}

// ParseDocumentNumber extracts the sequence from a PREFIX-NNNN number.
func ParseDocumentNumber(kind DocumentKind, number string) (int64, bool) {
	var seq int64
	if _, err := fmt.Sscanf(number, kind.Prefix()+"-%d", &seq); err != nil {
		return 0, false
	}
	return seq, true
}

// IsValidPaymentMethod reports whether m is a known payment method.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentOnAccount, PaymentCash, PaymentPartial, PaymentCard, PaymentBankTransfer:
		return true
	}
	return false
}

// SettlesImmediately reports whether the method collects the money at the
// counter, as opposed to on-account and partial sales.
func SettlesImmediately(m string) bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentBankTransfer
}

// LineItem is one row of a document.
type LineItem struct {
	Barcode   string          `json:"barcode"`
	ItemName  string          `json:"itemName"`
	ItemType  string          `json:"itemType,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Note      string          `json:"note,omitempty"`
}

// IsBlank reports whether the row was never filled in.
func (l LineItem) IsBlank() bool {
	return l.ItemName == "" && l.Barcode == ""
}

// Document is an invoice, a return or an inter-store transfer.
type Document struct {
	DocumentNumber string          `json:"documentNumber"`
	Kind           DocumentKind    `json:"kind"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	Currency       string          `json:"currency"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	CustomerID     *int64          `json:"customerId,omitempty"`
	CustomerName   string          `json:"customerName,omitempty"`
	FromStore      string          `json:"fromStore,omitempty"`
	ToStore        string          `json:"toStore,omitempty"`
	PaymentMethod  string          `json:"paymentMethod"`
	DiscountType   string          `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	Items          []LineItem      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	Total          decimal.Decimal `json:"total"`
	Notes          string          `json:"notes,omitempty"`
	SavedAt        *time.Time      `json:"savedAt,omitempty"`
}

// NewDocument returns an empty draft with the default header values.
func NewDocument(kind DocumentKind, number string, now time.Time) Document {
	return Document{
		DocumentNumber: number,
		Kind:           kind,
		Date:           now.Format("2006-01-02"),
		Time:           now.Format("15:04"),
		Currency:       CurrencyUSD,
		PaymentMethod:  PaymentOnAccount,
		DiscountType:   DiscountAmount,
		Items:          []LineItem{},
	}
}

// Recalculate recomputes every line total and the aggregate totals.
func (d *Document) Recalculate() {
	subtotal := decimal.Zero
	for i := range d.Items {
		row := &d.Items[i]
		row.LineTotal = Round2(decimal.NewFromInt(int64(row.Quantity)).Mul(row.UnitPrice))
		subtotal = subtotal.Add(row.LineTotal)
	}
	d.Subtotal = subtotal

	switch d.DiscountType {
	case DiscountPercentage:
		pct := decimal.Min(decimal.Max(d.DiscountValue, decimal.Zero), hundred)
		d.Discount = Round2(subtotal.Mul(pct).Div(hundred))
	default:
		d.Discount = Round2(decimal.Max(d.DiscountValue, decimal.Zero))
	}

	total := subtotal.Sub(d.Discount)
	if d.PaymentMethod == PaymentPartial {
		total = total.Sub(d.PaidAmount)
	}
	d.Total = Round2(decimal.Max(total, decimal.Zero))
}

// NetAmount is the subtotal after discount, before any partial payment.
func (d Document) NetAmount() decimal.Decimal {
	return decimal.Max(d.Subtotal.Sub(d.Discount), decimal.Zero)
}

// Clone returns a deep copy whose rows can be edited independently.
func (d Document) Clone() Document {
	out := d
	out.Items = append([]LineItem(nil), d.Items...)
	if out.Items == nil {
		out.Items = []LineItem{}
	}
	if d.CustomerID != nil {
		id := *d.CustomerID
		out.CustomerID = &id
	}
	return out
}
