package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"posledger/internal/metrics"
	"posledger/internal/model"
	"posledger/internal/repository"
	"posledger/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recordingNotifier keeps every event it was handed.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

// shop is the full service graph over one store.
type shop struct {
	store     storage.Store
	tx        storage.TransactionManager
	notifier  *recordingNotifier
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	shopData  *repository.ShopDataStore
	docRepos  []repository.DocumentRepository
	reloaders []repository.Reloader

	activity  ActivityService
	inventory InventoryService
	catalog   CatalogService
	ledger    LedgerService
	customers CustomerService
	settings  SettingsService
	stores    StoreService
	documents DocumentService
	reports   ReportService
}

type shopOption func(*DocumentServiceDeps)

func withOversellPolicy(policy string) shopOption {
	return func(d *DocumentServiceDeps) { d.OversellPolicy = policy }
}

func newShop(t *testing.T, opts ...shopOption) *shop {
	t.Helper()
	return openShop(t, storage.NewMemoryStore(), opts...)
}

// openShop builds the graph over an existing store, the way a restart would.
func openShop(t *testing.T, store storage.Store, opts ...shopOption) *shop {
	t.Helper()
	ctx := context.Background()

	s := &shop{
		store:    store,
		tx:       storage.NewLocalTransactionManager(),
		notifier: &recordingNotifier{},
		registry: prometheus.NewRegistry(),
	}
	s.metrics = metrics.New(s.registry)
	s.shopData = repository.NewShopDataStore(ctx, store, nil)
	items := repository.NewItemRepository(s.shopData)
	customerRepo := repository.NewCustomerRepository(s.shopData)
	inventoryRepo := repository.NewInventoryRepository(ctx, store, nil)
	activityRepo := repository.NewActivityRepository(ctx, store, nil)
	storeRepo := repository.NewStoreRepository(ctx, store, nil)
	for _, kind := range []model.DocumentKind{model.KindInvoice, model.KindReturn, model.KindTransfer} {
		s.docRepos = append(s.docRepos, repository.NewDocumentRepository(ctx, kind, store, nil))
	}

	s.activity = NewActivityService(activityRepo)
	s.inventory = NewInventoryService(inventoryRepo, items, s.activity, s.tx, s.notifier, s.metrics)
	s.catalog = NewCatalogService(items, s.inventory, s.activity, s.tx)
	s.ledger = NewLedgerService(customerRepo, s.tx, s.notifier, s.metrics)
	s.customers = NewCustomerService(customerRepo, s.tx, "IQ")
	s.settings = NewSettingsService(repository.NewSettingsRepository(store, nil), DefaultExchangeRate)
	s.stores = NewStoreService(storeRepo)
	s.reports = NewReportService(s.inventory, s.activity, s.ledger)

	deps := DocumentServiceDeps{
		Repositories: s.docRepos,
		Catalog:      s.catalog,
		Customers:    customerRepo,
		Ledger:       s.ledger,
		Inventory:    s.inventory,
		Activity:     s.activity,
		Settings:     s.settings,
		TxManager:    s.tx,
		Notifier:     s.notifier,
		Metrics:      s.metrics,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	s.documents = NewDocumentService(deps)

	s.reloaders = []repository.Reloader{s.shopData, inventoryRepo, activityRepo, storeRepo}
	for _, r := range s.docRepos {
		s.reloaders = append(s.reloaders, r)
	}
	return s
}

func (s *shop) backup(extra ...repository.Reloader) BackupService {
	return NewBackupService(s.store, s.tx, nil, append(append([]repository.Reloader{}, s.reloaders...), extra...)...)
}

func (s *shop) addProduct(t *testing.T, name string, price string, stock int) *model.Item {
	t.Helper()
	item, err := s.catalog.CreateItem(context.Background(), CreateItemRequest{
		Name:          name,
		RetailPrice:   decimal.RequireFromString(price),
		PurchasePrice: decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		StockQuantity: stock,
		MinStockLevel: 1,
	})
	require.NoError(t, err)
	return item
}

func (s *shop) addCustomer(t *testing.T, name string) int64 {
	t.Helper()
	c, err := s.customers.CreateCustomer(context.Background(), CreateCustomerRequest{Name: name})
	require.NoError(t, err)
	return c.ID
}

func (s *shop) stock(t *testing.T, name string) int {
	t.Helper()
	rec, err := s.inventory.Get(context.Background(), name)
	require.NoError(t, err)
	return rec.CurrentStock
}

func (s *shop) balance(t *testing.T, customerID int64) decimal.Decimal {
	t.Helper()
	b, err := s.ledger.GetBalance(context.Background(), customerID)
	require.NoError(t, err)
	return b.CurrentBalance
}

// assertShortfallUnits checks the oversell counter exported by the registry.
func (s *shop) assertShortfallUnits(t *testing.T, units int) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP pos_stock_shortfall_units_total Units sold beyond available stock and floored at zero
# TYPE pos_stock_shortfall_units_total counter
pos_stock_shortfall_units_total %d
`, units)
	require.NoError(t, testutil.GatherAndCompare(s.registry, strings.NewReader(expected), "pos_stock_shortfall_units_total"))
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func ptr[T any](v T) *T {
	return &v
}
