package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"posledger/internal/model"

	"github.com/shopspring/decimal"
)

// HeaderPatch edits the draft header. Nil fields are left alone.
type HeaderPatch struct {
	Date          *string          `json:"date"`
	Time          *string          `json:"time"`
	CustomerID    *int64           `json:"customerId"`
	ClearCustomer bool             `json:"clearCustomer"`
	FromStore     *string          `json:"fromStore"`
	ToStore       *string          `json:"toStore"`
	PaymentMethod *string          `json:"paymentMethod" binding:"omitempty,oneof=on-account cash partial card bank-transfer"`
	DiscountType  *string          `json:"discountType" binding:"omitempty,oneof=amount percentage"`
	DiscountValue *decimal.Decimal `json:"discountValue"`
	PaidAmount    *decimal.Decimal `json:"paidAmount"`
	Notes         *string          `json:"notes"`
}

// RowInput is a new line item.
type RowInput struct {
	Barcode   string          `json:"barcode"`
	ItemName  string          `json:"itemName"`
	ItemType  string          `json:"itemType" binding:"omitempty,oneof=product service"`
	Quantity  int             `json:"quantity" binding:"gte=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Note      string          `json:"note"`
}

// RowPatch edits a line item. Nil fields are left alone.
type RowPatch struct {
	Barcode   *string          `json:"barcode"`
	ItemName  *string          `json:"itemName"`
	Quantity  *int             `json:"quantity" binding:"omitempty,gte=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	Note      *string          `json:"note"`
}

// Editor is one open document session of a single kind. It owns the draft,
// the cursor over saved documents and the unsaved new draft parked while
// browsing, so the number it consumed is not taken twice.
type Editor struct {
	mu         sync.Mutex
	svc        DocumentService
	kind       model.DocumentKind
	draft      model.Document
	index      int
	pending    *model.Document
	navigating atomic.Bool
	now        func() time.Time
}

func NewEditor(svc DocumentService, kind model.DocumentKind) *Editor {
	return &Editor{svc: svc, kind: kind, index: -1, now: time.Now}
}

func (e *Editor) Kind() model.DocumentKind {
	return e.kind
}

// CurrentIndex is the saved index being edited, or -1 for a new draft.
func (e *Editor) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// Draft returns a copy of the document being edited, creating a numbered
// new draft on first use.
func (e *Editor) Draft(ctx context.Context) (model.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureDraft(ctx); err != nil {
		return model.Document{}, err
	}
	return e.draft.Clone(), nil
}

// NewDraft leaves the current document and starts a new numbered draft. An
// untouched new draft is reused rather than consuming another number.
func (e *Editor) NewDraft(ctx context.Context) (model.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index < 0 && e.draft.DocumentNumber != "" && len(e.draft.Items) == 0 {
		return e.draft.Clone(), nil
	}
	if e.pending != nil && len(e.pending.Items) == 0 {
		e.draft = *e.pending
		e.pending = nil
		e.index = -1
		return e.draft.Clone(), nil
	}
	e.pending = nil
	if err := e.startDraft(ctx); err != nil {
		return model.Document{}, err
	}
	return e.draft.Clone(), nil
}

func (e *Editor) SetHeader(ctx context.Context, patch HeaderPatch) (model.Document, error) {
	if err := validateStruct(patch); err != nil {
		return model.Document{}, err
	}
	if patch.DiscountValue != nil && patch.DiscountValue.IsNegative() {
		return model.Document{}, newValidationError("discountValue", "Discount cannot be negative")
	}
	if patch.PaidAmount != nil && patch.PaidAmount.IsNegative() {
		return model.Document{}, newValidationError("paidAmount", "Paid amount cannot be negative")
	}

	return e.edit(ctx, func(d *model.Document) error {
		if patch.Date != nil {
			d.Date = *patch.Date
		}
		if patch.Time != nil {
			d.Time = *patch.Time
		}
		if patch.ClearCustomer {
			d.CustomerID, d.CustomerName = nil, ""
		}
		if patch.CustomerID != nil {
			id := *patch.CustomerID
			d.CustomerID = &id
		}
		if patch.FromStore != nil {
			d.FromStore = strings.TrimSpace(*patch.FromStore)
		}
		if patch.ToStore != nil {
			d.ToStore = strings.TrimSpace(*patch.ToStore)
		}
		if patch.PaymentMethod != nil {
			d.PaymentMethod = *patch.PaymentMethod
		}
		if patch.DiscountType != nil {
			d.DiscountType = *patch.DiscountType
		}
		if patch.DiscountValue != nil {
			d.DiscountValue = *patch.DiscountValue
		}
		if patch.PaidAmount != nil {
			d.PaidAmount = *patch.PaidAmount
		}
		if patch.Notes != nil {
			d.Notes = *patch.Notes
		}
		return nil
	})
}

func (e *Editor) AddRow(ctx context.Context, row RowInput) (model.Document, error) {
	if err := validateStruct(row); err != nil {
		return model.Document{}, err
	}
	if row.UnitPrice.IsNegative() {
		return model.Document{}, newValidationError("unitPrice", "Price cannot be negative")
	}
	return e.edit(ctx, func(d *model.Document) error {
		if len(d.Items) >= model.MaxDocumentRows {
			return ErrRowLimit
		}
		d.Items = append(d.Items, model.LineItem{
			Barcode:   strings.TrimSpace(row.Barcode),
			ItemName:  strings.TrimSpace(row.ItemName),
			ItemType:  row.ItemType,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Note:      row.Note,
		})
		return nil
	})
}

func (e *Editor) UpdateRow(ctx context.Context, i int, patch RowPatch) (model.Document, error) {
	if err := validateStruct(patch); err != nil {
		return model.Document{}, err
	}
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return model.Document{}, newValidationError("unitPrice", "Price cannot be negative")
	}
	return e.edit(ctx, func(d *model.Document) error {
		if i < 0 || i >= len(d.Items) {
			return fmt.Errorf("row %d: %w", i, ErrNotFound)
		}
		row := &d.Items[i]
		if patch.Barcode != nil {
			row.Barcode = strings.TrimSpace(*patch.Barcode)
		}
		if patch.ItemName != nil {
			row.ItemName = strings.TrimSpace(*patch.ItemName)
			row.ItemType = ""
		}
		if patch.Quantity != nil {
			row.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			row.UnitPrice = *patch.UnitPrice
		}
		if patch.Note != nil {
			row.Note = *patch.Note
		}
		return nil
	})
}

func (e *Editor) RemoveRow(ctx context.Context, i int) (model.Document, error) {
	return e.edit(ctx, func(d *model.Document) error {
		if i < 0 || i >= len(d.Items) {
			return fmt.Errorf("row %d: %w", i, ErrNotFound)
		}
		d.Items = append(d.Items[:i:i], d.Items[i+1:]...)
		return nil
	})
}

// ResolveRow fills row i from the catalog entry matching query. The catalog
// price is in USD and is converted to the draft currency at the draft rate,
// which follows the current setting until the first amount is entered.
func (e *Editor) ResolveRow(ctx context.Context, i int, query string) (model.Document, error) {
	item, err := e.svc.ResolveItem(ctx, query)
	if err != nil {
		return model.Document{}, err
	}
	rate := e.svc.ExchangeRate(ctx)
	return e.edit(ctx, func(d *model.Document) error {
		if i < 0 || i >= len(d.Items) {
			return fmt.Errorf("row %d: %w", i, ErrNotFound)
		}
		refreshRate(d, rate)
		row := &d.Items[i]
		row.Barcode = item.Barcode
		row.ItemName = item.Name
		row.ItemType = item.ItemType
		row.UnitPrice = ConvertBetween(item.RetailPrice, model.CurrencyUSD, d.Currency, d.ExchangeRate)
		if row.Quantity == 0 {
			row.Quantity = 1
		}
		return nil
	})
}

// SwitchCurrency converts every price, an amount discount and the paid
// amount into currency by the same factor. A percentage discount is kept.
// Once the draft holds an amount its rate is fixed, so a later change of the
// exchange rate setting does not reprice it.
func (e *Editor) SwitchCurrency(ctx context.Context, currency string) (model.Document, error) {
	if !model.IsValidCurrency(currency) {
		return model.Document{}, newValidationError("currency", "Currency must be USD or IQD")
	}
	rate := e.svc.ExchangeRate(ctx)
	return e.edit(ctx, func(d *model.Document) error {
		refreshRate(d, rate)
		if d.Currency == currency {
			return nil
		}
		for i := range d.Items {
			d.Items[i].UnitPrice = ConvertBetween(d.Items[i].UnitPrice, d.Currency, currency, d.ExchangeRate)
		}
		if d.DiscountType == model.DiscountAmount {
			d.DiscountValue = ConvertBetween(d.DiscountValue, d.Currency, currency, d.ExchangeRate)
		}
		d.PaidAmount = ConvertBetween(d.PaidAmount, d.Currency, currency, d.ExchangeRate)
		d.Currency = currency
		return nil
	})
}

// Save persists the draft. The editor then points at the saved index.
func (e *Editor) Save(ctx context.Context) (SaveResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureDraft(ctx); err != nil {
		return SaveResult{}, err
	}
	res, err := e.svc.Save(ctx, e.draft, e.index)
	if err != nil {
		return SaveResult{}, err
	}
	e.draft = res.Document.Clone()
	e.index = res.Index
	e.pending = nil
	return res, nil
}

func (e *Editor) Next(ctx context.Context) (model.Document, error) {
	return e.navigate(ctx, func(current, n int) int { return stepIndex(e.kind, current, 1, n) })
}

func (e *Editor) Previous(ctx context.Context) (model.Document, error) {
	return e.navigate(ctx, func(current, n int) int { return stepIndex(e.kind, current, -1, n) })
}

// Open jumps to a saved index, or to the new draft when index is -1.
func (e *Editor) Open(ctx context.Context, index int) (model.Document, error) {
	return e.navigate(ctx, func(int, int) int { return index })
}

// Reload drops the session state after the stored data was replaced.
func (e *Editor) Reload(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.draft = model.Document{}
	e.index = -1
	e.pending = nil
}

// navigate moves the cursor. A call that arrives while another navigation
// is running is dropped with ErrNavigationBusy.
func (e *Editor) navigate(ctx context.Context, target func(current, n int) int) (model.Document, error) {
	if !e.navigating.CompareAndSwap(false, true) {
		return model.Document{}, ErrNavigationBusy
	}
	defer e.navigating.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.svc.Count(ctx, e.kind)
	if n == 0 {
		if err := e.ensureDraft(ctx); err != nil {
			return model.Document{}, err
		}
		return e.draft.Clone(), nil
	}

	to := target(e.index, n)
	if to < -1 || to >= n {
		return model.Document{}, fmt.Errorf("%s at index %d: %w", e.kind, to, ErrNotFound)
	}
	if to == e.index && e.draft.DocumentNumber != "" {
		return e.draft.Clone(), nil
	}

	if to == -1 {
		if e.pending != nil {
			e.draft = *e.pending
			e.pending = nil
			e.index = -1
			return e.draft.Clone(), nil
		}
		if err := e.startDraft(ctx); err != nil {
			return model.Document{}, err
		}
		return e.draft.Clone(), nil
	}

	doc, err := e.svc.Open(ctx, e.kind, to)
	if err != nil {
		return model.Document{}, err
	}
	if e.index < 0 && e.draft.DocumentNumber != "" {
		parked := e.draft.Clone()
		e.pending = &parked
	}
	e.draft = doc
	e.index = to
	return e.draft.Clone(), nil
}

// stepIndex moves one step through the saved documents. Invoices and
// returns treat the new draft (-1) as a slot of the ring; transfers wrap
// from the last document straight back to the first.
func stepIndex(kind model.DocumentKind, current, step, n int) int {
	if kind == model.KindTransfer {
		if current < 0 {
			if step > 0 {
				return 0
			}
			return n - 1
		}
		return ((current+step)%n + n) % n
	}
	slots := n + 1
	slot := ((current+1+step)%slots + slots) % slots
	return slot - 1
}

// refreshRate adopts rate while nothing on d has been priced yet.
func refreshRate(d *model.Document, rate decimal.Decimal) {
	if d.ExchangeRate.IsPositive() && hasAmounts(d) {
		return
	}
	d.ExchangeRate = rate
}

func hasAmounts(d *model.Document) bool {
	for _, row := range d.Items {
		if !row.UnitPrice.IsZero() {
			return true
		}
	}
	return (d.DiscountType == model.DiscountAmount && !d.DiscountValue.IsZero()) || !d.PaidAmount.IsZero()
}

// edit applies fn to the draft and recalculates the totals.
func (e *Editor) edit(ctx context.Context, fn func(d *model.Document) error) (model.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureDraft(ctx); err != nil {
		return model.Document{}, err
	}
	work := e.draft.Clone()
	if err := fn(&work); err != nil {
		return model.Document{}, err
	}
	work.Recalculate()
	e.draft = work
	return e.draft.Clone(), nil
}

func (e *Editor) ensureDraft(ctx context.Context) error {
	if e.draft.DocumentNumber != "" {
		return nil
	}
	if e.pending != nil {
		e.draft = *e.pending
		e.pending = nil
		e.index = -1
		return nil
	}
	return e.startDraft(ctx)
}

func (e *Editor) startDraft(ctx context.Context) error {
	number, err := e.svc.NextNumber(ctx, e.kind)
	if err != nil {
		return err
	}
	d := model.NewDocument(e.kind, number, e.now())
	d.ExchangeRate = e.svc.ExchangeRate(ctx)
	e.draft = d
	e.index = -1
	return nil
}
