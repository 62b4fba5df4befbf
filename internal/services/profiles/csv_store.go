package profiles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/utils"
)

// CSVStore keeps profile records in one CSV file.
type CSVStore struct {
	mu     sync.Mutex
	path   string
	codec  *utils.ProfileCSVCodec
	logger *zap.Logger
}

// NewCSVStore returns a store backed by path. The file is created on first save.
func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{path: path, codec: utils.NewProfileCSVCodec(), logger: logger}
}

// Load returns the record for userID or nil.
func (s *CSVStore) Load(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.UserID == userID {
			return rec, nil
		}
	}
	return nil, nil
}

// Save upserts the record fields of profile.
func (s *CSVStore) Save(ctx context.Context, profile *models.UserProfile) error {
	if profile == nil {
		return ErrNilProfile
	}
	record := profile.RecordFields()
	if err := models.ValidateProfile(&record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}

	replaced := false
	for i, rec := range records {
		if rec.UserID == record.UserID {
			records[i] = &record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, &record)
	}

	data, err := s.codec.EncodeProfiles(records)
	if err != nil {
		return err
	}
	return s.writeFile(data)
}

// All returns every stored record in file order.
func (s *CSVStore) All(ctx context.Context) ([]*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *CSVStore) readAll() ([]*models.UserProfile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	records, errs := s.codec.ParseProfiles(string(data))
	for _, e := range errs {
		switch {
		case errors.Is(e, utils.ErrEmptyCSV):
			return nil, nil
		case errors.Is(e, utils.ErrMissingColumns):
			return nil, fmt.Errorf("profiles file %s: %w", s.path, e)
		case errors.Is(e, utils.ErrNoDataRows):
			continue
		default:
			s.logger.Warn("Skipping profile row", zap.String("file", s.path), zap.Error(e))
		}
	}
	return records, nil
}

// writeFile replaces the file through a temp file so readers never see a partial write.
func (s *CSVStore) writeFile(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".profiles-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace profiles file: %w", err)
	}
	return nil
}
