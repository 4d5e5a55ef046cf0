package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"pbrlib/internal/fileutil"
	"pbrlib/internal/library"
)

// LoadCatalog reads the persisted catalog. A missing file yields nil and no
// error; an unreadable or malformed file is an error so that a run never
// replaces a catalog it could not understand.
func LoadCatalog(path string) (*library.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var catalog library.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	catalog.Normalize()
	return &catalog, nil
}

// SaveCatalog atomically rewrites the catalog document.
func SaveCatalog(path string, catalog library.Catalog) error {
	catalog.Normalize()
	if err := fileutil.WriteJSONAtomic(path, catalog); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// LoadSnapshot reads the read-snapshot document.
func LoadSnapshot(path string) (library.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return library.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot library.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return library.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snapshot.Shows == nil {
		snapshot.Shows = []library.SnapshotShow{}
	}
	return snapshot, nil
}

// SaveSnapshot atomically rewrites the read-snapshot document.
func SaveSnapshot(path string, snapshot library.Snapshot) error {
	if snapshot.Shows == nil {
		snapshot.Shows = []library.SnapshotShow{}
	}
	if err := fileutil.WriteJSONAtomic(path, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
