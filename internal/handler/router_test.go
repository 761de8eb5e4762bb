package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"posledger/internal/model"
	"posledger/internal/repository"
	"posledger/internal/service"
	"posledger/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// envelope mirrors response.Response with the data left raw.
type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

type paged[T any] struct {
	Items      []T `json:"items"`
	Pagination struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
	} `json:"pagination"`
}

// newTestRouter wires every handler over an in-memory store.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := storage.NewMemoryStore()
	tx := storage.NewLocalTransactionManager()
	shopData := repository.NewShopDataStore(ctx, store, nil)
	items := repository.NewItemRepository(shopData)
	customerRepo := repository.NewCustomerRepository(shopData)
	inventoryRepo := repository.NewInventoryRepository(ctx, store, nil)
	activityRepo := repository.NewActivityRepository(ctx, store, nil)
	storeRepo := repository.NewStoreRepository(ctx, store, nil)
	var docRepos []repository.DocumentRepository
	for _, kind := range []model.DocumentKind{model.KindInvoice, model.KindReturn, model.KindTransfer} {
		docRepos = append(docRepos, repository.NewDocumentRepository(ctx, kind, store, nil))
	}

	activity := service.NewActivityService(activityRepo)
	inventory := service.NewInventoryService(inventoryRepo, items, activity, tx, nil, nil)
	catalog := service.NewCatalogService(items, inventory, activity, tx)
	ledger := service.NewLedgerService(customerRepo, tx, nil, nil)
	customers := service.NewCustomerService(customerRepo, tx, "IQ")
	settings := service.NewSettingsService(repository.NewSettingsRepository(store, nil), service.DefaultExchangeRate)
	stores := service.NewStoreService(storeRepo)
	documents := service.NewDocumentService(service.DocumentServiceDeps{
		Repositories: docRepos,
		Catalog:      catalog,
		Customers:    customerRepo,
		Ledger:       ledger,
		Inventory:    inventory,
		Activity:     activity,
		Settings:     settings,
		TxManager:    tx,
	})

	reloaders := []repository.Reloader{shopData, inventoryRepo, activityRepo, storeRepo}
	for _, r := range docRepos {
		reloaders = append(reloaders, r)
	}

	router := gin.New()
	api := router.Group("")
	for _, kind := range []model.DocumentKind{model.KindInvoice, model.KindReturn, model.KindTransfer} {
		editor := service.NewEditor(documents, kind)
		reloaders = append(reloaders, editor)
		NewDocumentHandler(documents, editor).RegisterRoutes(api)
	}
	NewItemHandler(catalog).RegisterRoutes(api)
	NewCustomerHandler(customers, ledger).RegisterRoutes(api)
	NewInventoryHandler(inventory).RegisterRoutes(api)
	NewActivityHandler(activity).RegisterRoutes(api)
	NewSettingsHandler(settings, stores).RegisterRoutes(api)
	NewBackupHandler(service.NewBackupService(store, tx, nil, reloaders...)).RegisterRoutes(api)
	NewReportHandler(service.NewReportService(inventory, activity, ledger)).RegisterRoutes(api)
	return router
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decode checks the status code and unmarshals the envelope data into T.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var out T
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &out))
	}
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder, status int) string {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, "error", env.Status)
	return env.Error
}
