package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"vehicle-match-engine/internal/models"
)

// ProfileRepository reads and writes profile records.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, name, email, phone, ssn_placeholder, employment_status,
		annual_income, down_payment, loan_term_preference`

// Upsert inserts the record fields of p, replacing an existing row with the same user id.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			ssn_placeholder = EXCLUDED.ssn_placeholder,
			employment_status = EXCLUDED.employment_status,
			annual_income = EXCLUDED.annual_income,
			down_payment = EXCLUDED.down_payment,
			loan_term_preference = EXCLUDED.loan_term_preference,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.pool.Exec(ctx, query, upsertArgs(p, time.Now().UTC())...)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// BulkUpsert writes many records in one transaction. Failed rows are reported per user
// and do not stop the batch.
func (r *ProfileRepository) BulkUpsert(ctx context.Context, profiles []*models.UserProfile) (int, []error, error) {
	var (
		inserted int
		rowErrs  []error
	)
	now := time.Now().UTC()

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, p := range profiles {
			_, err := tx.Exec(ctx, `
				INSERT INTO profiles (`+profileColumns+`, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (user_id) DO UPDATE SET
					name = EXCLUDED.name,
					email = EXCLUDED.email,
					phone = EXCLUDED.phone,
					ssn_placeholder = EXCLUDED.ssn_placeholder,
					employment_status = EXCLUDED.employment_status,
					annual_income = EXCLUDED.annual_income,
					down_payment = EXCLUDED.down_payment,
					loan_term_preference = EXCLUDED.loan_term_preference,
					updated_at = EXCLUDED.updated_at`,
				upsertArgs(p, now)...,
			)
			if err != nil {
				rowErrs = append(rowErrs, fmt.Errorf("user %s: %w", p.UserID, err))
				continue
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return inserted, rowErrs, fmt.Errorf("bulk upsert failed: %w", err)
	}
	return inserted, rowErrs, nil
}

// GetByUserID returns the record for userID, or nil when there is none.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	var p models.UserProfile
	err := r.db.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.SSNPlaceholder,
		&p.EmploymentStatus,
		&p.AnnualIncome,
		&p.DownPayment,
		&p.LoanTermPreference,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// Delete removes the record for userID.
func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (r *ProfileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

func upsertArgs(p *models.UserProfile, now time.Time) []interface{} {
	return []interface{}{
		p.UserID,
		p.Name,
		p.Email,
		p.Phone,
		p.SSNPlaceholder,
		p.EmploymentStatus,
		p.AnnualIncome,
		p.DownPayment,
		p.LoanTermPreference,
		now,
	}
}
