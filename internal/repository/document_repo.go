package repository

import (
	"context"
	"sync"

	"posledger/internal/model"
	"posledger/internal/storage"
)

type DocumentRepository interface {
	Kind() model.DocumentKind
	List(ctx context.Context) []model.Document
	Get(ctx context.Context, index int) (model.Document, error)
	FindByNumber(ctx context.Context, number string) (model.Document, int, error)
	Append(ctx context.Context, doc model.Document) int
	Replace(ctx context.Context, index int, doc model.Document) error
	Len(ctx context.Context) int
	NextNumber(ctx context.Context) string
	Reload(ctx context.Context)
}

type documentRepository struct {
	mu      sync.RWMutex
	kind    model.DocumentKind
	docs    *storage.Collection[[]model.Document]
	counter *storage.Collection[int64]
	cache   []model.Document
}

// DocumentKeys returns the array key and the counter key for kind.
func DocumentKeys(kind model.DocumentKind) (docsKey, counterKey string) {
	switch kind {
	case model.KindReturn:
		return storage.KeyReturns, storage.KeyReturnCounter
	case model.KindTransfer:
		return storage.KeyTransfers, storage.KeyTransferCounter
	default:
		return storage.KeyInvoices, storage.KeyInvoiceCounter
	}
}

func NewDocumentRepository(ctx context.Context, kind model.DocumentKind, store storage.Store, onErr storage.WriteErrorHandler) DocumentRepository {
	docsKey, counterKey := DocumentKeys(kind)
	r := &documentRepository{
		kind:    kind,
		docs:    storage.NewCollection[[]model.Document](store, docsKey, onErr),
		counter: storage.NewCollection[int64](store, counterKey, onErr),
	}
	r.Reload(ctx)
	return r
}

func (r *documentRepository) Kind() model.DocumentKind {
	return r.kind
}

func (r *documentRepository) Reload(ctx context.Context) {
	docs := r.docs.Load(ctx)
	if docs == nil {
		docs = []model.Document{}
	}
	for i := range docs {
		if docs[i].Kind == "" {
			docs[i].Kind = r.kind
		}
	}

	r.mu.Lock()
	r.cache = docs
	r.mu.Unlock()
}

func (r *documentRepository) List(ctx context.Context) []model.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Document, len(r.cache))
	for i, d := range r.cache {
		out[i] = d.Clone()
	}
	return out
}

func (r *documentRepository) Get(ctx context.Context, index int) (model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.cache) {
		return model.Document{}, ErrNotFound
	}
	return r.cache[index].Clone(), nil
}

func (r *documentRepository) FindByNumber(ctx context.Context, number string) (model.Document, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, d := range r.cache {
		if d.DocumentNumber == number {
			return d.Clone(), i, nil
		}
	}
	return model.Document{}, -1, ErrNotFound
}

// Append adds doc to the end of the array and returns its index.
func (r *documentRepository) Append(ctx context.Context, doc model.Document) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = append(r.cache, doc.Clone())
	r.docs.Save(ctx, r.cache)
	return len(r.cache) - 1
}

func (r *documentRepository) Replace(ctx context.Context, index int, doc model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.cache) {
		return ErrNotFound
	}
	r.cache[index] = doc.Clone()
	r.docs.Save(ctx, r.cache)
	return nil
}

func (r *documentRepository) Len(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// NextNumber consumes the persisted counter and returns the formatted
// number. The counter never falls behind the highest saved sequence, so a
// lost counter key cannot cause a number to be reused.
func (r *documentRepository) NextNumber(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.counter.Load(ctx)
	if next < 1 {
		next = 1
	}
	for _, d := range r.cache {
		if seq, ok := model.ParseDocumentNumber(r.kind, d.DocumentNumber); ok && seq >= next {
			next = seq + 1
		}
	}

	r.counter.Save(ctx, next+1)
	return model.FormatDocumentNumber(r.kind, next)
}
