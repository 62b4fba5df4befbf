package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrEmptyUserID     = errors.New("user_id cannot be empty")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidLoanTerm = errors.New("loan_term_preference must be one of 36, 48, 60, 72")
	ErrInvalidIncome   = errors.New("unknown annual_income band")
)

// NormalizeProfile trims whitespace and lower-cases the enumerated profile fields.
func NormalizeProfile(p *UserProfile) {
	p.UserID = strings.TrimSpace(p.UserID)
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.LoanTermPreference = strings.TrimSpace(p.LoanTermPreference)
	p.DownPayment = strings.TrimSpace(p.DownPayment)

	for _, field := range []*string{
		&p.AnnualIncome, &p.EmploymentStatus, &p.DriveEnvironment, &p.Weather,
		&p.DailyDrive, &p.Priority, &p.BudgetRange, &p.FuelPreference, &p.BodyTypePreference,
	} {
		*field = strings.ToLower(strings.TrimSpace(*field))
	}
}

// ValidateProfile validates a profile before it is persisted.
// Scoring never validates; it tolerates any content.
func ValidateProfile(p *UserProfile) error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrEmptyUserID
	}

	if p.Email != "" && !isValidEmail(p.Email) {
		return ErrInvalidEmail
	}

	if p.LoanTermPreference != "" {
		valid := false
		for _, term := range ValidLoanTerms {
			if p.LoanTermPreference == term {
				valid = true
				break
			}
		}
		if !valid {
			return ErrInvalidLoanTerm
		}
	}

	if p.AnnualIncome != "" {
		if _, ok := IncomeMidpoints[p.AnnualIncome]; !ok {
			return ErrInvalidIncome
		}
	}

	return nil
}

// isValidEmail performs basic email validation.
func isValidEmail(email string) bool {
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	// Must have a dot after @
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex <= atIndex+1 || dotIndex == len(email)-1 {
		return false
	}

	return true
}
