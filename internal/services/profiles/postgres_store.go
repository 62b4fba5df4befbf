package profiles

import (
	"context"

	"vehicle-match-engine/internal/models"
)

// ProfileRecords is implemented by database.ProfileRepository.
type ProfileRecords interface {
	Upsert(ctx context.Context, p *models.UserProfile) error
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
}

// PostgresStore is a RecordStore over the profiles table.
type PostgresStore struct {
	records ProfileRecords
}

// NewPostgresStore wraps a profile record repository.
func NewPostgresStore(records ProfileRecords) *PostgresStore {
	return &PostgresStore{records: records}
}

func (s *PostgresStore) Load(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.records.GetByUserID(ctx, userID)
}

func (s *PostgresStore) Save(ctx context.Context, profile *models.UserProfile) error {
	if profile == nil {
		return ErrNilProfile
	}
	record := profile.RecordFields()
	if err := models.ValidateProfile(&record); err != nil {
		return err
	}
	return s.records.Upsert(ctx, &record)
}
