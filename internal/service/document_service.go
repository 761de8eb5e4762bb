package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"posledger/internal/logger"
	"posledger/internal/metrics"
	"posledger/internal/model"
	"posledger/internal/repository"
	"posledger/internal/storage"

	"github.com/shopspring/decimal"
)

// Oversell policies.
const (
	OversellFloor  = "floor"
	OversellReject = "reject"
)

// Shortfall is a sold quantity that exceeded the stock on hand.
type Shortfall struct {
	ItemName  string `json:"itemName"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// SaveResult is returned by a successful save.
type SaveResult struct {
	Document model.Document `json:"document"`
	Index    int            `json:"index"`
	Oversold []Shortfall    `json:"oversold,omitempty"`
	Created  bool           `json:"created"`
}

// DocumentSaved is the payload of document.saved notifications.
type DocumentSaved struct {
	Kind           model.DocumentKind `json:"kind"`
	DocumentNumber string             `json:"documentNumber"`
	Index          int                `json:"index"`
	Total          decimal.Decimal    `json:"total"`
}

type DocumentService interface {
	// Save persists doc at index, or appends it when index is negative.
	Save(ctx context.Context, doc model.Document, index int) (SaveResult, error)
	List(ctx context.Context, kind model.DocumentKind) ([]model.Document, error)
	Get(ctx context.Context, kind model.DocumentKind, number string) (model.Document, error)
	Open(ctx context.Context, kind model.DocumentKind, index int) (model.Document, error)
	Count(ctx context.Context, kind model.DocumentKind) int
	NextNumber(ctx context.Context, kind model.DocumentKind) (string, error)
	ResolveItem(ctx context.Context, query string) (*model.Item, error)
	ExchangeRate(ctx context.Context) decimal.Decimal
}

// DocumentServiceDeps groups the collaborators of the document engine.
type DocumentServiceDeps struct {
	Repositories   []repository.DocumentRepository
	Catalog        CatalogService
	Customers      repository.CustomerRepository
	Ledger         LedgerService
	Inventory      InventoryService
	Activity       ActivityService
	Settings       SettingsService
	TxManager      storage.TransactionManager
	Notifier       Notifier
	Metrics        *metrics.Metrics
	OversellPolicy string
}

type documentService struct {
	repos     map[model.DocumentKind]repository.DocumentRepository
	catalog   CatalogService
	customers repository.CustomerRepository
	ledger    LedgerService
	inventory InventoryService
	activity  ActivityService
	settings  SettingsService
	txManager storage.TransactionManager
	notifier  Notifier
	metrics   *metrics.Metrics
	policy    string
	now       func() time.Time
}

func NewDocumentService(deps DocumentServiceDeps) DocumentService {
	repos := make(map[model.DocumentKind]repository.DocumentRepository, len(deps.Repositories))
	for _, r := range deps.Repositories {
		repos[r.Kind()] = r
	}
	policy := deps.OversellPolicy
	if policy != OversellReject {
		policy = OversellFloor
	}
	return &documentService{
		repos:     repos,
		catalog:   deps.Catalog,
		customers: deps.Customers,
		ledger:    deps.Ledger,
		inventory: deps.Inventory,
		activity:  deps.Activity,
		settings:  deps.Settings,
		txManager: deps.TxManager,
		notifier:  notifierOrNop(deps.Notifier),
		metrics:   deps.Metrics,
		policy:    policy,
		now:       time.Now,
	}
}

func (s *documentService) repo(kind model.DocumentKind) (repository.DocumentRepository, error) {
	r, ok := s.repos[kind]
	if !ok {
		return nil, newValidationError("kind", fmt.Sprintf("Unknown document kind %q", kind))
	}
	return r, nil
}

// Save validates doc, undoes the stored version's effects when overwriting,
// applies the new effects and persists the document, all in one transaction.
// Nothing is written when validation fails.
func (s *documentService) Save(ctx context.Context, doc model.Document, index int) (SaveResult, error) {
	repo, err := s.repo(doc.Kind)
	if err != nil {
		return SaveResult{}, err
	}
	doc = doc.Clone()
	doc.Items = compactRows(doc.Items)
	if !doc.ExchangeRate.IsPositive() {
		doc.ExchangeRate = s.settings.ExchangeRate(ctx)
	}
	doc.Recalculate()

	var result SaveResult
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.validate(txCtx, &doc); err != nil {
			return err
		}

		var previous *model.Document
		if index >= 0 {
			prev, err := repo.Get(txCtx, index)
			if err != nil {
				return fmt.Errorf("%s at index %d: %w", doc.Kind, index, err)
			}
			previous = &prev
			doc.DocumentNumber = prev.DocumentNumber
		} else {
			if doc.DocumentNumber == "" {
				doc.DocumentNumber = repo.NextNumber(txCtx)
			} else if _, _, err := repo.FindByNumber(txCtx, doc.DocumentNumber); err == nil {
				return newValidationError("documentNumber", "Document "+doc.DocumentNumber+" is already saved")
			}
		}

		if doc.Kind != model.KindTransfer && s.policy == OversellReject {
			if short := s.planShortfalls(txCtx, doc, previous); len(short) > 0 {
				return newValidationError("items", fmt.Sprintf("Not enough stock for %s: %d requested, %d available",
					short[0].ItemName, short[0].Requested, short[0].Available))
			}
		}

		if previous != nil {
			s.reverse(txCtx, *previous)
		}
		oversold, err := s.apply(txCtx, doc)
		if err != nil {
			return err
		}

		savedAt := s.now()
		doc.SavedAt = &savedAt
		if previous != nil {
			if err := repo.Replace(txCtx, index, doc); err != nil {
				return err
			}
		} else {
			index = repo.Append(txCtx, doc)
		}

		result = SaveResult{
			Document: doc,
			Index:    index,
			Oversold: oversold,
			Created:  previous == nil,
		}
		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}

	logger.Info(ctx).
		Str("kind", string(doc.Kind)).
		Str("number", doc.DocumentNumber).
		Int("index", result.Index).
		Str("total", doc.Total.StringFixed(2)).
		Bool("created", result.Created).
		Msg("document saved")
	s.metrics.DocumentSaved(string(doc.Kind))
	s.notifier.Notify(EventDocumentSaved, DocumentSaved{
		Kind:           doc.Kind,
		DocumentNumber: doc.DocumentNumber,
		Index:          result.Index,
		Total:          doc.Total,
	})
	return result, nil
}

func (s *documentService) validate(ctx context.Context, doc *model.Document) error {
	if !model.IsValidCurrency(doc.Currency) {
		return newValidationError("currency", "Currency must be USD or IQD")
	}
	for i, row := range doc.Items {
		if row.Quantity < 0 {
			return newValidationError("items", fmt.Sprintf("Row %d: quantity cannot be negative", i+1))
		}
		if row.UnitPrice.IsNegative() {
			return newValidationError("items", fmt.Sprintf("Row %d: price cannot be negative", i+1))
		}
		if strings.TrimSpace(row.ItemName) == "" {
			return newValidationError("items", fmt.Sprintf("Row %d: item name is required", i+1))
		}
	}

	if doc.Kind == model.KindTransfer {
		from, to := strings.TrimSpace(doc.FromStore), strings.TrimSpace(doc.ToStore)
		switch {
		case from == "" || to == "":
			return newValidationError("stores", "Select both the source and the destination store")
		case strings.EqualFold(from, to):
			return newValidationError("stores", "Source and destination store must be different")
		case len(doc.Items) == 0:
			return newValidationError("items", "Add at least one item to the transfer")
		}
		doc.FromStore, doc.ToStore = from, to
		doc.CustomerID, doc.CustomerName = nil, ""
		return nil
	}

	if !hasQuantity(doc.Items) {
		return newValidationError("items", "Add at least one item with a quantity")
	}
	if !model.IsValidPaymentMethod(doc.PaymentMethod) {
		return newValidationError("paymentMethod", "Unknown payment method")
	}
	if doc.DiscountType != model.DiscountAmount && doc.DiscountType != model.DiscountPercentage {
		return newValidationError("discountType", "Discount type must be amount or percentage")
	}
	if doc.DiscountValue.IsNegative() {
		return newValidationError("discountValue", "Discount cannot be negative")
	}
	if doc.PaymentMethod == model.PaymentPartial && doc.PaidAmount.IsNegative() {
		return newValidationError("paidAmount", "Paid amount cannot be negative")
	}

	if doc.CustomerID != nil {
		c, err := s.customers.FindByID(ctx, *doc.CustomerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newValidationError("customerId", "Customer not found")
			}
			return err
		}
		doc.CustomerName = c.Name
	}
	return nil
}

// planShortfalls predicts the oversell of an invoice, counting the stock
// that reversing previous would put back.
func (s *documentService) planShortfalls(ctx context.Context, doc model.Document, previous *model.Document) []Shortfall {
	if doc.Kind != model.KindInvoice {
		return nil
	}
	requested := s.stockQuantities(ctx, doc)
	restored := map[string]int{}
	if previous != nil && previous.Kind == model.KindInvoice {
		restored = s.stockQuantities(ctx, *previous)
	}

	var out []Shortfall
	for _, row := range doc.Items {
		key := strings.ToLower(row.ItemName)
		qty, ok := requested[key]
		if !ok {
			continue
		}
		delete(requested, key)

		rec, err := s.inventory.Get(ctx, row.ItemName)
		if err != nil {
			continue
		}
		available := rec.CurrentStock + restored[key]
		if qty > available {
			out = append(out, Shortfall{ItemName: rec.Name, Requested: qty, Available: available})
		}
	}
	return out
}

// stockQuantities sums the stocked quantity per lower-cased item name.
func (s *documentService) stockQuantities(ctx context.Context, doc model.Document) map[string]int {
	out := make(map[string]int)
	for _, row := range doc.Items {
		if row.Quantity <= 0 || s.isService(ctx, row) {
			continue
		}
		out[strings.ToLower(row.ItemName)] += row.Quantity
	}
	return out
}

// apply records the activity, stock and ledger effects of doc.
func (s *documentService) apply(ctx context.Context, doc model.Document) ([]Shortfall, error) {
	if doc.Kind == model.KindTransfer {
		s.activity.Append(ctx, s.activityRecords(ctx, doc, 1, "")...)
		return nil, nil
	}

	var oversold []Shortfall
	sign := -1
	if doc.Kind == model.KindReturn {
		sign = 1
	}
	for _, row := range doc.Items {
		if row.Quantity <= 0 || s.isService(ctx, row) {
			continue
		}
		before, _ := s.inventory.Get(ctx, row.ItemName)
		rec, short, err := s.inventory.AdjustStock(ctx, row.ItemName, sign*row.Quantity)
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn(ctx).Str("item", row.ItemName).Str("number", doc.DocumentNumber).Msg("no inventory record for sold item")
			continue
		}
		if err != nil {
			return nil, err
		}
		if short > 0 {
			oversold = append(oversold, Shortfall{ItemName: rec.Name, Requested: row.Quantity, Available: before.CurrentStock})
		}
	}
	s.activity.Append(ctx, s.activityRecords(ctx, doc, 1, "")...)

	if doc.CustomerID == nil {
		return oversold, nil
	}
	id := *doc.CustomerID
	total := toPrimary(doc.Total, doc.Currency, doc.ExchangeRate)

	switch doc.Kind {
	case model.KindInvoice:
		if total.IsPositive() {
			if _, err := s.ledger.AddDebt(ctx, id, total, "Invoice "+doc.DocumentNumber); err != nil {
				return nil, err
			}
			if model.SettlesImmediately(doc.PaymentMethod) {
				if _, err := s.ledger.AddPayment(ctx, id, total, "Payment for "+doc.DocumentNumber); err != nil {
					return nil, err
				}
			}
		}
		net := toPrimary(doc.NetAmount(), doc.Currency, doc.ExchangeRate)
		if err := s.ledger.RecordSpend(ctx, id, net); err != nil {
			return nil, err
		}
	case model.KindReturn:
		if total.IsPositive() {
			if _, err := s.ledger.AddPayment(ctx, id, total, "Return "+doc.DocumentNumber); err != nil {
				return nil, err
			}
			// Refunded at the till: cancel the credit it would leave.
			if model.SettlesImmediately(doc.PaymentMethod) {
				if _, err := s.ledger.AddDebt(ctx, id, total, "Refund for "+doc.DocumentNumber); err != nil {
					return nil, err
				}
			}
		}
	}
	return oversold, nil
}

// reverse undoes the stock and ledger effects of a stored document and
// records the undo as adjustment activity. A customer deleted since is skipped.
func (s *documentService) reverse(ctx context.Context, prev model.Document) {
	note := "Reversal of " + prev.DocumentNumber

	if prev.Kind != model.KindTransfer {
		sign := 1
		if prev.Kind == model.KindReturn {
			sign = -1
		}
		for _, row := range prev.Items {
			if row.Quantity <= 0 || s.isService(ctx, row) {
				continue
			}
			if _, _, err := s.inventory.AdjustStock(ctx, row.ItemName, sign*row.Quantity); err != nil {
				logger.Warn(ctx).Err(err).Str("item", row.ItemName).Msg("could not restore stock while reversing document")
			}
		}
	}
	s.activity.Append(ctx, s.activityRecords(ctx, prev, -1, note)...)

	if prev.CustomerID == nil {
		return
	}
	id := *prev.CustomerID
	total := toPrimary(prev.Total, prev.Currency, prev.ExchangeRate)

	var err error
	switch prev.Kind {
	case model.KindInvoice:
		err = s.ledger.ReverseDebt(ctx, id, total, note)
		if err == nil && model.SettlesImmediately(prev.PaymentMethod) {
			err = s.ledger.ReversePayment(ctx, id, total, note)
		}
		if err == nil {
			err = s.ledger.RecordSpend(ctx, id, toPrimary(prev.NetAmount(), prev.Currency, prev.ExchangeRate).Neg())
		}
	case model.KindReturn:
		err = s.ledger.ReversePayment(ctx, id, total, note)
		if err == nil && model.SettlesImmediately(prev.PaymentMethod) {
			err = s.ledger.ReverseDebt(ctx, id, total, note)
		}
	}
	if err != nil {
		logger.Warn(ctx).Err(err).Int64("customer_id", id).Str("number", prev.DocumentNumber).Msg("could not reverse ledger posting")
	}
}

// activityRecords builds one record per row with a quantity. Direction -1
// builds the adjustment records that cancel an earlier save.
func (s *documentService) activityRecords(ctx context.Context, doc model.Document, direction int, note string) []model.ActivityRecord {
	records := make([]model.ActivityRecord, 0, len(doc.Items))
	for _, row := range doc.Items {
		if row.Quantity <= 0 {
			continue
		}
		qty := row.Quantity
		actType := activityTypeFor(doc.Kind, s.isService(ctx, row))
		if direction < 0 {
			actType = model.ActivityAdjustment
			qty = -qty
		}
		rowNote := row.Note
		if note != "" {
			rowNote = note
		}
		records = append(records, model.ActivityRecord{
			Type:     actType,
			ItemName: row.ItemName,
			Quantity: qty,
			Price:    toPrimary(row.UnitPrice, doc.Currency, doc.ExchangeRate),
			Total:    toPrimary(row.LineTotal, doc.Currency, doc.ExchangeRate),
			Details: model.ActivityDetails{
				CustomerName:   doc.CustomerName,
				DocumentNumber: doc.DocumentNumber,
				PaymentMethod:  paymentMethodFor(doc),
				FromStore:      doc.FromStore,
				ToStore:        doc.ToStore,
				Note:           rowNote,
			},
		})
	}
	return records
}

func (s *documentService) isService(ctx context.Context, row model.LineItem) bool {
	if row.ItemType != "" {
		return row.ItemType == model.ItemTypeService
	}
	query := row.Barcode
	if query == "" {
		query = row.ItemName
	}
	item, err := s.catalog.ResolveItem(ctx, query)
	if err != nil && row.Barcode != "" {
		item, err = s.catalog.ResolveItem(ctx, row.ItemName)
	}
	return err == nil && item.IsService()
}

func (s *documentService) List(ctx context.Context, kind model.DocumentKind) ([]model.Document, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx), nil
}

func (s *documentService) Get(ctx context.Context, kind model.DocumentKind, number string) (model.Document, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return model.Document{}, err
	}
	doc, _, err := repo.FindByNumber(ctx, number)
	if err != nil {
		return model.Document{}, fmt.Errorf("%s %s: %w", kind, number, err)
	}
	return doc, nil
}

func (s *documentService) Open(ctx context.Context, kind model.DocumentKind, index int) (model.Document, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return model.Document{}, err
	}
	doc, err := repo.Get(ctx, index)
	if err != nil {
		return model.Document{}, fmt.Errorf("%s at index %d: %w", kind, index, err)
	}
	return doc, nil
}

func (s *documentService) Count(ctx context.Context, kind model.DocumentKind) int {
	repo, err := s.repo(kind)
	if err != nil {
		return 0
	}
	return repo.Len(ctx)
}

// NextNumber consumes the next number of kind for a new draft.
func (s *documentService) NextNumber(ctx context.Context, kind model.DocumentKind) (string, error) {
	repo, err := s.repo(kind)
	if err != nil {
		return "", err
	}
	var number string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number = repo.NextNumber(txCtx)
		return nil
	})
	return number, err
}

func (s *documentService) ResolveItem(ctx context.Context, query string) (*model.Item, error) {
	return s.catalog.ResolveItem(ctx, query)
}

func (s *documentService) ExchangeRate(ctx context.Context) decimal.Decimal {
	return s.settings.ExchangeRate(ctx)
}

// compactRows drops rows that were added but never filled in.
func compactRows(rows []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(rows))
	for _, r := range rows {
		if r.IsBlank() && r.Quantity == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

func hasQuantity(rows []model.LineItem) bool {
	for _, r := range rows {
		if r.Quantity > 0 {
			return true
		}
	}
	return false
}

func activityTypeFor(kind model.DocumentKind, service bool) string {
	switch {
	case kind == model.KindTransfer:
		return model.ActivityTransfer
	case service:
		return model.ActivityService
	case kind == model.KindReturn:
		return model.ActivityReturn
	default:
		return model.ActivitySale
	}
}

func paymentMethodFor(doc model.Document) string {
	if doc.Kind == model.KindTransfer {
		return ""
	}
	return doc.PaymentMethod
}
