package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"posledger/internal/logger"
	"posledger/internal/repository"
	"posledger/internal/storage"
)

// BundleVersion is written into every exported bundle.
const BundleVersion = 1

// Bundle is a full export of the persisted state, one raw JSON value per key.
type Bundle struct {
	Version    int                        `json:"version"`
	ExportedAt time.Time                  `json:"exportedAt"`
	Data       map[string]json.RawMessage `json:"data"`
}

type ImportResult struct {
	Imported []string `json:"imported"`
	Ignored  []string `json:"ignored,omitempty"`
}

type BackupService interface {
	Export(ctx context.Context) (Bundle, error)
	Import(ctx context.Context, bundle Bundle) (ImportResult, error)
	ClearAll(ctx context.Context) error
}

type backupService struct {
	store     storage.Store
	txManager storage.TransactionManager
	reloaders []repository.Reloader
	onErr     storage.WriteErrorHandler
	now       func() time.Time
}

// NewBackupService reloads every reloader after an import or a clear so
// in-memory caches follow the replaced data.
func NewBackupService(
	store storage.Store,
	txManager storage.TransactionManager,
	onErr storage.WriteErrorHandler,
	reloaders ...repository.Reloader,
) BackupService {
	if onErr == nil {
		onErr = storage.LogWriteError
	}
	return &backupService{
		store:     store,
		txManager: txManager,
		reloaders: reloaders,
		onErr:     onErr,
		now:       time.Now,
	}
}

func (s *backupService) Export(ctx context.Context) (Bundle, error) {
	bundle := Bundle{
		Version:    BundleVersion,
		ExportedAt: s.now().UTC(),
		Data:       make(map[string]json.RawMessage),
	}
	for _, key := range storage.AllKeys {
		raw, err := s.store.Get(ctx, key)
		if errors.Is(err, storage.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return Bundle{}, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if !json.Valid(raw) {
			logger.Warn(ctx).Str("key", key).Msg("skipping malformed value in export")
			continue
		}
		bundle.Data[key] = json.RawMessage(raw)
	}
	return bundle, nil
}

// Import replaces every known key present in the bundle. Keys the bundle
// does not carry are left untouched; unknown keys are ignored.
func (s *backupService) Import(ctx context.Context, bundle Bundle) (ImportResult, error) {
	if len(bundle.Data) == 0 {
		return ImportResult{}, newValidationError("data", "Backup file contains no data")
	}

	result := ImportResult{Imported: []string{}}
	for key, raw := range bundle.Data {
		if !storage.IsKnownKey(key) {
			result.Ignored = append(result.Ignored, key)
			continue
		}
		if !json.Valid(raw) {
			return ImportResult{}, newValidationError("data", fmt.Sprintf("Backup entry %s is not valid JSON", key))
		}
	}
	sort.Strings(result.Ignored)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, key := range storage.AllKeys {
			raw, ok := bundle.Data[key]
			if !ok {
				continue
			}
			if err := s.store.Set(txCtx, key, raw); err != nil {
				s.onErr(txCtx, key, err)
				continue
			}
			result.Imported = append(result.Imported, key)
		}
		s.reload(txCtx)
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	logger.Info(ctx).Strs("keys", result.Imported).Strs("ignored", result.Ignored).Msg("backup imported")
	return result, nil
}

// ClearAll deletes every known key and resets the caches.
func (s *backupService) ClearAll(ctx context.Context) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, key := range storage.AllKeys {
			if err := s.store.Delete(txCtx, key); err != nil {
				s.onErr(txCtx, key, err)
			}
		}
		s.reload(txCtx)
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info(ctx).Msg("all data cleared")
	return nil
}

func (s *backupService) reload(ctx context.Context) {
	for _, r := range s.reloaders {
		r.Reload(ctx)
	}
}
