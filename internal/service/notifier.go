package service

// Events published to connected UI clients.
const (
	EventDocumentSaved = "document.saved"
	EventStockChanged  = "stock.changed"
	EventLedgerPosted  = "ledger.posted"
	EventStorageError  = "storage.error"
)

// Notifier is the user-facing notification sink. Implementations must not block.
type Notifier interface {
	Notify(event string, data any)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(string, any) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}
