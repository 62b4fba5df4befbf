// Package profiles persists shopper profiles.
//
// Personal and financial fields go to a record store (CSV file or PostgreSQL);
// the full profile, lifestyle answers included, goes to a preference store
// (Redis or memory). SplitRepository hides the split behind Load and Save.
package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/metrics"
)

// ErrNilProfile is returned when Save is called without a profile.
var ErrNilProfile = errors.New("profile is nil")

// Repository loads and saves profiles. Load returns nil, nil for unknown users.
type Repository interface {
	Load(ctx context.Context, userID string) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) error
}

// RecordStore persists only the record fields of a profile.
type RecordStore interface {
	Repository
}

// PreferenceStore persists complete profiles.
type PreferenceStore interface {
	Repository
}

// NewUserID returns a new opaque user id.
func NewUserID() string {
	return "user_" + uuid.NewString()
}

// SplitRepository composes a record store and a preference store.
type SplitRepository struct {
	records RecordStore
	prefs   PreferenceStore
	logger  *zap.Logger
}

// NewSplitRepository creates a repository over both stores. records may be nil.
func NewSplitRepository(records RecordStore, prefs PreferenceStore, logger *zap.Logger) *SplitRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SplitRepository{records: records, prefs: prefs, logger: logger}
}

// Save validates profile, writes its record fields to the record store and the whole
// profile to the preference store. A record store failure is logged and does not stop
// the preference write.
func (r *SplitRepository) Save(ctx context.Context, profile *models.UserProfile) (err error) {
	defer func() { metrics.ObserveProfileOp("save", err) }()

	if profile == nil {
		return ErrNilProfile
	}
	p := *profile
	models.NormalizeProfile(&p)
	if err := models.ValidateProfile(&p); err != nil {
		return err
	}

	if r.records != nil {
		record := p.RecordFields()
		if recErr := r.records.Save(ctx, &record); recErr != nil {
			r.logger.Warn("Record store save failed, keeping preferences only",
				zap.String("user_id", p.UserID),
				zap.Error(recErr),
			)
		}
	}

	if err := r.prefs.Save(ctx, &p); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	r.logger.Debug("Saved profile", zap.String("user_id", p.UserID))
	return nil
}

// Load merges the stored record with the stored preferences, preferences winning.
// It returns nil when nothing beyond the user id is known.
func (r *SplitRepository) Load(ctx context.Context, userID string) (profile *models.UserProfile, err error) {
	defer func() { metrics.ObserveProfileOp("load", err) }()

	if userID == "" {
		return nil, models.ErrEmptyUserID
	}

	var record *models.UserProfile
	if r.records != nil {
		rec, recErr := r.records.Load(ctx, userID)
		if recErr != nil {
			r.logger.Warn("Record store load failed, using preferences only",
				zap.String("user_id", userID),
				zap.Error(recErr),
			)
		} else {
			record = rec
		}
	}

	prefs, prefErr := r.prefs.Load(ctx, userID)
	if prefErr != nil {
		if record == nil {
			return nil, fmt.Errorf("failed to load preferences: %w", prefErr)
		}
		r.logger.Warn("Preference store load failed, using record only",
			zap.String("user_id", userID),
			zap.Error(prefErr),
		)
	}

	base := models.UserProfile{UserID: userID}
	merged := base.Merge(record)
	merged = merged.Merge(prefs)
	merged.UserID = userID
	if merged.IsEmpty() {
		return nil, nil
	}
	return &merged, nil
}
