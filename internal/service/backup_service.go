package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SaveStore is the slice of the save repository the backup service needs
type SaveStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Keys() ([]string, error)
}

// Backup is the on-disk backup file format: every save record keyed by its
// store key, with the export time for bookkeeping
type Backup struct {
	ExportedAt string            `json:"exportedAt"`
	Records    map[string]string `json:"records"`
}

// BackupService exports and imports the persisted save records as JSON
type BackupService struct {
	store SaveStore
}

// NewBackupService creates a new backup service
func NewBackupService(store SaveStore) *BackupService {
	return &BackupService{store: store}
}

// Export writes every stored save record to a JSON file
func (s *BackupService) Export(outputPath string) error {
	keys, err := s.store.Keys()
	if err != nil {
		return fmt.Errorf("failed to list save keys: %w", err)
	}

	backup := Backup{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Records:    make(map[string]string, len(keys)),
	}
	for _, key := range keys {
		value, ok, err := s.store.Get(key)
		if err != nil {
			return fmt.Errorf("failed to read save record %q: %w", key, err)
		}
		if ok {
			backup.Records[key] = value
		}
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize backup: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// Import loads a backup file and writes its records into the store,
// overwriting records stored under the same keys
func (s *BackupService) Import(inputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("failed to parse backup file: %w", err)
	}

	for key, value := range backup.Records {
		if err := s.store.Set(key, value); err != nil {
			return fmt.Errorf("failed to restore save record %q: %w", key, err)
		}
	}
	return nil
}
