package scoring

import (
	"math"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/financing"
	"vehicle-match-engine/internal/utils"
)

// Affordability bands over price / max affordable price.
const (
	comfortablyUnderRatio = 0.85
	withinBudgetRatio     = 0.95
	atLimitRatio          = 1.0
	slightlyOverRatio     = 1.1
	overRatio             = 1.2
	wellOverRatio         = 1.3
)

// affordability compares price to what income, down payment and term can finance.
// Requires both annual_income and down_payment.
func affordability(in *inputs, v *models.Vehicle) Contribution {
	var c Contribution
	if in.annualIncome == "" || in.downPayment == "" {
		return c
	}

	maxPrice := maxAffordablePrice(in)
	if math.IsNaN(maxPrice) || math.IsInf(maxPrice, 0) || maxPrice <= 0 {
		return c
	}

	ratio := float64(v.Price) / maxPrice
	switch {
	case ratio <= comfortablyUnderRatio:
		c.add(20+(1-ratio)*3, "Affordable within your budget")
	case ratio <= withinBudgetRatio:
		c.add(17+(1-ratio)*3, "Within your budget")
	case ratio <= atLimitRatio:
		c.add(14+(1-ratio)*3, "At your budget limit")
	case ratio <= slightlyOverRatio:
		c.add(16-(ratio-1)*20, "Slightly above ideal budget")
	case ratio <= overRatio:
		c.add(10-(ratio-slightlyOverRatio)*20, "Above comfortable budget")
	case ratio <= wellOverRatio:
		c.add(3-(ratio-overRatio)*15, "May exceed comfortable budget")
	default:
		c.add(-(5 + (ratio-wellOverRatio)*10), "Significantly exceeds budget")
	}
	return c
}

// maxAffordablePrice inverts the amortization formula at a fixed APR.
func maxAffordablePrice(in *inputs) float64 {
	income, ok := models.IncomeMidpoints[in.annualIncome]
	if !ok {
		income = models.DefaultAnnualIncome
	}

	down, ok := utils.ParseAmount(in.downPayment)
	if !ok {
		down = 0
	}

	return financing.MaxAffordablePrice(
		financing.MonthlyBudget(income),
		financing.DefaultAPR,
		financing.TermMonths(in.loanTerm),
		down,
	)
}
