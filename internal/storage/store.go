package storage

import (
	"context"
	"errors"

	"posledger/internal/logger"
)

// ErrKeyNotFound is returned by Store.Get for keys that were never written.
var ErrKeyNotFound = errors.New("storage: key not found")

// Persisted state layout. Every key is an independent top-level collection.
const (
	KeyShopData        = "shop_data"
	KeyInvoices        = "invoices"
	KeyReturns         = "returns"
	KeyTransfers       = "transfers"
	KeyInvoiceCounter  = "invoice_counter"
	KeyReturnCounter   = "return_counter"
	KeyTransferCounter = "transfer_counter"
	KeyInventory       = "inventory_data"
	KeyActivity        = "activity_data"
	KeyServices        = "services"
	KeyStores          = "stores"
	KeyExchangeRate    = "iqd_per_usd"
)

// AllKeys lists every key the application owns, used by backup and clear.
var AllKeys = []string{
	KeyShopData,
	KeyInvoices,
	KeyReturns,
	KeyTransfers,
	KeyInvoiceCounter,
	KeyReturnCounter,
	KeyTransferCounter,
	KeyInventory,
	KeyActivity,
	KeyServices,
	KeyStores,
	KeyExchangeRate,
}

// IsKnownKey reports whether key belongs to the persisted layout.
func IsKnownKey(key string) bool {
	for _, k := range AllKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Store is a whole-value key-value store. There are no partial updates and
// no transactions across keys unless the backend's TransactionManager adds them.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// WriteErrorHandler receives persistence failures. The in-memory state stays
// authoritative for the rest of the process when it is called.
type WriteErrorHandler func(ctx context.Context, key string, err error)

// LogWriteError is the default WriteErrorHandler.
func LogWriteError(ctx context.Context, key string, err error) {
	logger.Error(ctx).Err(err).Str("key", key).Msg("failed to persist collection")
}
