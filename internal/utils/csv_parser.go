package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vehicle-match-engine/internal/models"
)

// Profile CSV errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// ProfileColumns is the header written by EncodeProfiles, in order.
var ProfileColumns = []string{
	"user_id",
	"name",
	"email",
	"phone",
	"ssn_placeholder",
	"annual_income",
	"employment_status",
	"down_payment",
	"loan_term_preference",
}

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{"user_id"}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// user_id aliases
	"userid":      "user_id",
	"user id":     "user_id",
	"id":          "user_id",
	"customer_id": "user_id",
	"customerid":  "user_id",

	// name aliases
	"full_name": "name",
	"fullname":  "name",
	"full name": "name",

	// email aliases
	"emailaddress":  "email",
	"email_address": "email",
	"mail":          "email",

	// phone aliases
	"phone_number": "phone",
	"phonenumber":  "phone",
	"mobile":       "phone",

	// financial aliases
	"ssn":                "ssn_placeholder",
	"income":             "annual_income",
	"annualincome":       "annual_income",
	"annual income":      "annual_income",
	"income_band":        "annual_income",
	"employment":         "employment_status",
	"employmentstatus":   "employment_status",
	"employment status":  "employment_status",
	"downpayment":        "down_payment",
	"down payment":       "down_payment",
	"loan_term":          "loan_term_preference",
	"loanterm":           "loan_term_preference",
	"loan term":          "loan_term_preference",
	"term":               "loan_term_preference",
	"loan_term_months":   "loan_term_preference",
	"loantermpreference": "loan_term_preference",
}

// ProfileCSVCodec reads and writes the personal/financial profile record file.
type ProfileCSVCodec struct {
	columnMapping map[string]int
}

// NewProfileCSVCodec creates a new codec instance.
func NewProfileCSVCodec() *ProfileCSVCodec {
	return &ProfileCSVCodec{columnMapping: make(map[string]int)}
}

// ParseProfiles parses CSV content into profile records.
// Rows that fail are reported by line and skipped.
func (c *ProfileCSVCodec) ParseProfiles(content string) ([]*models.UserProfile, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := c.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var profiles []*models.UserProfile
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		profile := c.parseRow(record)
		if err := models.ValidateProfile(profile); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		profiles = append(profiles, profile)
	}

	if len(profiles) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return profiles, parseErrors
}

// EncodeProfiles writes the record fields of profiles as CSV with the ProfileColumns header.
func (c *ProfileCSVCodec) EncodeProfiles(profiles []*models.UserProfile) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ProfileColumns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range profiles {
		row := []string{
			p.UserID, p.Name, p.Email, p.Phone, p.SSNPlaceholder,
			p.AnnualIncome, p.EmploymentStatus, p.DownPayment, p.LoanTermPreference,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write profile %s: %w", p.UserID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (c *ProfileCSVCodec) buildColumnMapping(header []string) error {
	c.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := canonicalColumn(col)
		if _, dup := c.columnMapping[normalized]; !dup {
			c.columnMapping[normalized] = i
		}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := c.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single CSV row. Missing or short columns read as empty.
func (c *ProfileCSVCodec) parseRow(record []string) *models.UserProfile {
	get := func(column string) string {
		idx, ok := c.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	profile := &models.UserProfile{
		UserID:             get("user_id"),
		Name:               get("name"),
		Email:              get("email"),
		Phone:              get("phone"),
		SSNPlaceholder:     get("ssn_placeholder"),
		AnnualIncome:       get("annual_income"),
		EmploymentStatus:   get("employment_status"),
		DownPayment:        get("down_payment"),
		LoanTermPreference: get("loan_term_preference"),
	}

	// "60 months" and "60.0" both mean 60
	if term := profile.LoanTermPreference; term != "" {
		if n, ok := LeadingInt(term); ok {
			profile.LoanTermPreference = strconv.Itoa(n)
		} else if n, err := parseInt(term); err == nil {
			profile.LoanTermPreference = strconv.Itoa(n)
		}
	}

	models.NormalizeProfile(profile)

	// Raw amounts are accepted in place of a band
	if _, known := models.IncomeMidpoints[profile.AnnualIncome]; !known && profile.AnnualIncome != "" {
		if amount, ok := ParseAmount(profile.AnnualIncome); ok {
			profile.AnnualIncome = models.IncomeBand(amount)
		}
	}
	return profile
}

func canonicalColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	normalized = strings.TrimPrefix(normalized, "\ufeff")
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalizedColumns[canonicalColumn(col)] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
