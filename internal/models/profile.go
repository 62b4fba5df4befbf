package models

import "strings"

// Priority is the shopper's single top priority.
type Priority string

const (
	PriorityFuelEfficiency Priority = "fuel_efficiency"
	PriorityCargoSpace     Priority = "cargo_space"
	PriorityTechnology     Priority = "technology"
	PriorityComfort        Priority = "comfort"
	PriorityPower          Priority = "power"
	PriorityPerformance    Priority = "performance"
	PrioritySafety         Priority = "safety"
)

// IncomeMidpoints maps annual income bands to the annual income used for affordability.
var IncomeMidpoints = map[string]float64{
	"under_30k": 30000,
	"30k_50k":   40000,
	"50k_75k":   62500,
	"75k_100k":  87500,
	"100k_150k": 125000,
	"over_150k": 175000,
}

// DefaultAnnualIncome is assumed for an income band that is not recognized.
const DefaultAnnualIncome = 50000.0

// PriceBand is an inclusive budget range in USD.
type PriceBand struct {
	Min float64
	Max float64
}

// BudgetBands maps budget_range values to price bands.
var BudgetBands = map[string]PriceBand{
	"under_25k": {Min: 0, Max: 25000},
	"25k_35k":   {Min: 25000, Max: 35000},
	"35k_45k":   {Min: 35000, Max: 45000},
	"45k_60k":   {Min: 45000, Max: 60000},
	"over_60k":  {Min: 60000, Max: 100000},
}

// FuelPreferences maps fuel_preference values to catalog fuel types.
var FuelPreferences = map[string]FuelType{
	"gas":            FuelTypeGas,
	"hybrid":         FuelTypeHybrid,
	"plug_in_hybrid": FuelTypePlugInHybrid,
	"ev":             FuelTypeEV,
}

// BodyPreferences maps body_type_preference values to catalog body types.
var BodyPreferences = map[string]BodyType{
	"sedan":     BodyTypeSedan,
	"suv":       BodyTypeSUV,
	"truck":     BodyTypeTruck,
	"van":       BodyTypeMinivan,
	"minivan":   BodyTypeMinivan,
	"coupe":     BodyTypeCoupe,
	"hatchback": BodyTypeHatchback,
}

// ValidLoanTerms are the loan terms, in months, a profile may state.
var ValidLoanTerms = []string{"36", "48", "60", "72"}

// UserProfile is everything known about one shopper. Every field except UserID may be empty.
type UserProfile struct {
	UserID string `json:"user_id" db:"user_id"`

	// Personal
	Name             string `json:"name,omitempty" db:"name"`
	Email            string `json:"email,omitempty" db:"email"`
	Phone            string `json:"phone,omitempty" db:"phone"`
	SSNPlaceholder   string `json:"ssn_placeholder,omitempty" db:"ssn_placeholder"`
	EmploymentStatus string `json:"employment_status,omitempty" db:"employment_status"`

	// Financial
	AnnualIncome       string `json:"annual_income,omitempty" db:"annual_income"`
	DownPayment        string `json:"down_payment,omitempty" db:"down_payment"`
	LoanTermPreference string `json:"loan_term_preference,omitempty" db:"loan_term_preference"`

	// Lifestyle
	DriveEnvironment string `json:"drive_environment,omitempty"`
	Weather          string `json:"weather,omitempty"`
	DailyDrive       string `json:"daily_drive,omitempty"`
	Priority         string `json:"priority,omitempty"`
	Passengers       string `json:"passengers,omitempty"`

	// Refinements
	BudgetRange        string   `json:"budget_range,omitempty"`
	FuelPreference     string   `json:"fuel_preference,omitempty"`
	BodyTypePreference string   `json:"body_type_preference,omitempty"`
	SelectedFeatures   []string `json:"selectedFeatures,omitempty"`
	MustHaveFeatures   []string `json:"mustHaveFeatures,omitempty"`
}

// RecordFields returns the personal and financial subset that record stores persist.
func (p *UserProfile) RecordFields() UserProfile {
	return UserProfile{
		UserID:             p.UserID,
		Name:               p.Name,
		Email:              p.Email,
		Phone:              p.Phone,
		SSNPlaceholder:     p.SSNPlaceholder,
		EmploymentStatus:   p.EmploymentStatus,
		AnnualIncome:       p.AnnualIncome,
		DownPayment:        p.DownPayment,
		LoanTermPreference: p.LoanTermPreference,
	}
}

// Merge returns a copy of p where every non-empty field of overlay wins.
func (p *UserProfile) Merge(overlay *UserProfile) UserProfile {
	out := *p
	if overlay == nil {
		return out
	}
	pick := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	pick(&out.UserID, overlay.UserID)
	pick(&out.Name, overlay.Name)
	pick(&out.Email, overlay.Email)
	pick(&out.Phone, overlay.Phone)
	pick(&out.SSNPlaceholder, overlay.SSNPlaceholder)
	pick(&out.EmploymentStatus, overlay.EmploymentStatus)
	pick(&out.AnnualIncome, overlay.AnnualIncome)
	pick(&out.DownPayment, overlay.DownPayment)
	pick(&out.LoanTermPreference, overlay.LoanTermPreference)
	pick(&out.DriveEnvironment, overlay.DriveEnvironment)
	pick(&out.Weather, overlay.Weather)
	pick(&out.DailyDrive, overlay.DailyDrive)
	pick(&out.Priority, overlay.Priority)
	pick(&out.Passengers, overlay.Passengers)
	pick(&out.BudgetRange, overlay.BudgetRange)
	pick(&out.FuelPreference, overlay.FuelPreference)
	pick(&out.BodyTypePreference, overlay.BodyTypePreference)
	if len(overlay.SelectedFeatures) > 0 {
		out.SelectedFeatures = append([]string(nil), overlay.SelectedFeatures...)
	}
	if len(overlay.MustHaveFeatures) > 0 {
		out.MustHaveFeatures = append([]string(nil), overlay.MustHaveFeatures...)
	}
	return out
}

// IsEmpty reports whether nothing beyond the user id is known.
func (p *UserProfile) IsEmpty() bool {
	for _, v := range []string{
		p.Name, p.Email, p.Phone, p.SSNPlaceholder, p.EmploymentStatus,
		p.AnnualIncome, p.DownPayment, p.LoanTermPreference,
		p.DriveEnvironment, p.Weather, p.DailyDrive, p.Priority, p.Passengers,
		p.BudgetRange, p.FuelPreference, p.BodyTypePreference,
	} {
		if v != "" {
			return false
		}
	}
	return len(p.SelectedFeatures) == 0 && len(p.MustHaveFeatures) == 0
}

// DesiredFeatures returns selected and must-have features, de-duplicated in order.
func (p *UserProfile) DesiredFeatures() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{p.SelectedFeatures, p.MustHaveFeatures} {
		for _, f := range list {
			key := strings.ToLower(strings.TrimSpace(f))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, f)
		}
	}
	return out
}

// IncomeBand returns the annual income band containing amount.
func IncomeBand(amount float64) string {
	switch {
	case amount < 30000:
		return "under_30k"
	case amount < 50000:
		return "30k_50k"
	case amount < 75000:
		return "50k_75k"
	case amount < 100000:
		return "75k_100k"
	case amount < 150000:
		return "100k_150k"
	}
	return "over_150k"
}
