package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxxcyber/shopsmart/internal/models"
)

var ErrExportDisabled = errors.New("list export is not configured")

const exportPrefix = "shopping-lists/"

// ObjectStore is the part of StorageService the exporter uses
type ObjectStore interface {
	PutSnapshot(ctx context.Context, key string, data []byte, itemCount int) (*Snapshot, error)
	SnapshotURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteKeys(ctx context.Context, keys []string) error
}

// ListViewer produces the list as presented
type ListViewer interface {
	ListView(ctx context.Context, query models.ListQuery) (*models.ShoppingListView, error)
}

// ExportResult points at an uploaded snapshot of the list
type ExportResult struct {
	Key       string    `json:"key"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	ItemCount int       `json:"item_count"`
	Total     float64   `json:"total"`
}

type exportDocument struct {
	ExportedAt time.Time                `json:"exported_at"`
	List       *models.ShoppingListView `json:"list"`
}

// ExportService writes snapshots of the priced list to object storage
type ExportService struct {
	list      ListViewer
	store     ObjectStore
	expiry    time.Duration
	retention int
	logger    *slog.Logger
	now       func() time.Time
}

// NewExportService creates an export service. A nil store disables exports;
// retention is how many snapshots to keep, zero keeps all.
func NewExportService(list ListViewer, store ObjectStore, expiry time.Duration, retention int, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		list:      list,
		store:     store,
		expiry:    expiry,
		retention: retention,
		logger:    logger.With("component", "export"),
		now:       time.Now,
	}
}

// Export uploads the current list in default order and returns a
// time-limited download link
func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportDisabled
	}

	view, err := s.list.ListView(ctx, models.ListQuery{Sort: models.SortDefault})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	data, err := json.MarshalIndent(exportDocument{ExportedAt: now, List: view}, "", "  ")
	if err != nil {
		return nil, err
	}

	key := exportPrefix + now.Format("20060102T150405.000000000Z") + ".json"
	snapshot, err := s.store.PutSnapshot(ctx, key, data, view.ItemCount)
	if err != nil {
		return nil, err
	}

	url, err := s.store.SnapshotURL(ctx, key, s.expiry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("shopping list exported", "key", key, "items", view.ItemCount, "bytes", snapshot.Size)

	if err := s.prune(ctx); err != nil {
		s.logger.Warn("failed to prune old exports", "error", err)
	}

	return &ExportResult{
		Key:       key,
		Filename:  SnapshotFilename(key),
		URL:       url,
		ExpiresAt: now.Add(s.expiry),
		ItemCount: view.ItemCount,
		Total:     view.TotalRounded,
	}, nil
}

// prune deletes all but the newest retention snapshots
func (s *ExportService) prune(ctx context.Context) error {
	if s.retention <= 0 {
		return nil
	}

	keys, err := s.store.ListKeys(ctx, exportPrefix)
	if err != nil {
		return err
	}
	if len(keys) <= s.retention {
		return nil
	}

	stale := keys[:len(keys)-s.retention]
	if err := s.store.DeleteKeys(ctx, stale); err != nil {
		return fmt.Errorf("deleting %d exports: %w", len(stale), err)
	}

	s.logger.Debug("pruned old exports", "deleted", len(stale))
	return nil
}
