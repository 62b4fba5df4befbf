package financing

import (
	"strconv"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/utils"
)

// TermMonths reads a loan term such as "60" or "72 months". Terms that are missing,
// unparsable or outside 1..MaxTermMonths read as DefaultTermMonths.
func TermMonths(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		var ok bool
		if n, ok = utils.LeadingInt(raw); !ok {
			return DefaultTermMonths
		}
	}
	if n <= 0 || n > MaxTermMonths {
		return DefaultTermMonths
	}
	return n
}

// APRForProfile prices by the mock credit score when an SSN placeholder is on file.
func APRForProfile(p *models.UserProfile) float64 {
	if p == nil || p.SSNPlaceholder == "" {
		return DefaultAPR
	}
	return APRForCreditScore(MockCreditScore(p.SSNPlaceholder))
}

// ForProfile estimates the monthly payment on price with the profile's down payment,
// term and credit tier. A nil profile gets the defaults and no down payment.
func ForProfile(price int, p *models.UserProfile) Estimate {
	if p == nil {
		return EstimateFor(price, 0, DefaultAPR, DefaultTermMonths)
	}
	down, _ := utils.ParseAmount(p.DownPayment)
	return EstimateFor(price, down, APRForProfile(p), TermMonths(p.LoanTermPreference))
}
