// Package financing provides loan payment math and the mock credit tiers used to price offers.
package financing

import (
	"math"

	"vehicle-match-engine/internal/utils"
)

// Defaults used when a profile does not state otherwise.
const (
	DefaultAPR        = 0.045
	DefaultTermMonths = 60
	MaxTermMonths     = 96
	DebtToIncomeRatio = 0.12
	MinCreditScore    = 300
	MaxCreditScore    = 850
)

// CreditTier is a named credit score band with its APR.
type CreditTier struct {
	Name     string  `json:"name"`
	MinScore int     `json:"min_score"`
	APR      float64 `json:"apr"`
}

// CreditTiers are ordered from best to worst.
var CreditTiers = []CreditTier{
	{Name: "Excellent", MinScore: 750, APR: 0.029},
	{Name: "Good", MinScore: 700, APR: 0.039},
	{Name: "Fair", MinScore: 650, APR: 0.049},
	{Name: "Poor", MinScore: 600, APR: 0.069},
	{Name: "Very Poor", MinScore: 0, APR: 0.099},
}

// TierForScore returns the credit tier containing score.
func TierForScore(score int) CreditTier {
	for _, tier := range CreditTiers {
		if score >= tier.MinScore {
			return tier
		}
	}
	return CreditTiers[len(CreditTiers)-1]
}

// APRForCreditScore returns the APR offered for a credit score.
func APRForCreditScore(score int) float64 {
	return TierForScore(score).APR
}

// MockCreditScore derives a stable 300-850 score from an SSN placeholder.
// There is no bureau lookup; the same placeholder always yields the same score.
func MockCreditScore(ssnPlaceholder string) int {
	span := int64(MaxCreditScore - MinCreditScore + 1)
	return MinCreditScore + int(utils.Hash31(ssnPlaceholder)%span)
}

// MonthlyPayment is the fixed-rate amortized payment:
// EMI = P * r * (1+r)^n / ((1+r)^n - 1)
func MonthlyPayment(principal, apr float64, months int) float64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	r := apr / 12
	n := float64(months)
	if r <= 0 {
		return principal / n
	}
	growth := math.Pow(1+r, n)
	if math.IsInf(growth, 0) {
		return principal * r
	}
	return principal * r * growth / (growth - 1)
}

// PresentValue inverts MonthlyPayment: the principal a payment can service.
func PresentValue(payment, apr float64, months int) float64 {
	if payment <= 0 || months <= 0 {
		return 0
	}
	r := apr / 12
	n := float64(months)
	if r <= 0 {
		return payment * n
	}
	growth := math.Pow(1+r, n)
	if math.IsInf(growth, 0) {
		return payment / r
	}
	return payment * (growth - 1) / (r * growth)
}

// MaxAffordablePrice is the most expensive vehicle a monthly budget plus down payment can buy.
func MaxAffordablePrice(monthlyBudget, apr float64, months int, downPayment float64) float64 {
	if downPayment < 0 {
		downPayment = 0
	}
	return PresentValue(monthlyBudget, apr, months) + downPayment
}

// MonthlyBudget is the payment ceiling for an annual income under DebtToIncomeRatio.
func MonthlyBudget(annualIncome float64) float64 {
	if annualIncome <= 0 {
		return 0
	}
	return annualIncome / 12 * DebtToIncomeRatio
}

// Estimate is the financing picture for one vehicle price.
type Estimate struct {
	Price          int     `json:"price"`
	DownPayment    float64 `json:"down_payment"`
	Principal      float64 `json:"principal"`
	APR            float64 `json:"apr"`
	TermMonths     int     `json:"term_months"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

// EstimateFor computes the monthly payment after the down payment is applied.
func EstimateFor(price int, downPayment, apr float64, months int) Estimate {
	if months <= 0 {
		months = DefaultTermMonths
	}
	principal := math.Max(float64(price)-math.Max(downPayment, 0), 0)
	payment := MonthlyPayment(principal, apr, months)
	return Estimate{
		Price:          price,
		DownPayment:    math.Max(downPayment, 0),
		Principal:      principal,
		APR:            apr,
		TermMonths:     months,
		MonthlyPayment: math.Round(payment*100) / 100,
	}
}
