package financing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"vehicle-match-engine/internal/models"
	"vehicle-match-engine/internal/services/financing"
)

func TestMonthlyPayment(t *testing.T) {
	t.Run("standard amortization", func(t *testing.T) {
		// 20,000 at 6% for 60 months
		payment := financing.MonthlyPayment(20000, 0.06, 60)
		assert.InDelta(t, 386.66, payment, 0.01)
	})

	t.Run("zero rate divides evenly", func(t *testing.T) {
		assert.InDelta(t, 500.0, financing.MonthlyPayment(30000, 0, 60), 1e-9)
	})

	t.Run("non-positive inputs yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, financing.MonthlyPayment(0, 0.05, 60))
		assert.Equal(t, 0.0, financing.MonthlyPayment(10000, 0.05, 0))
	})
}

func TestPresentValueInvertsMonthlyPayment(t *testing.T) {
	for _, principal := range []float64{5000, 27500, 61000} {
		for _, months := range []int{36, 48, 60, 72} {
			payment := financing.MonthlyPayment(principal, financing.DefaultAPR, months)
			assert.InDelta(t, principal, financing.PresentValue(payment, financing.DefaultAPR, months), 1e-6)
		}
	}
}

func TestMaxAffordablePrice(t *testing.T) {
	// 62,500 income -> 625/month ceiling
	budget := financing.MonthlyBudget(62500)
	assert.InDelta(t, 625.0, budget, 1e-9)

	price := financing.MaxAffordablePrice(budget, financing.DefaultAPR, 60, 5000)
	assert.InDelta(t, 38524.6, price, 0.1)

	assert.InDelta(t, 5000, financing.MaxAffordablePrice(0, financing.DefaultAPR, 60, 5000), 1e-9)
	assert.Equal(t, 0.0, financing.MaxAffordablePrice(0, financing.DefaultAPR, 60, -100))
}

func TestCreditTiers(t *testing.T) {
	tests := []struct {
		score int
		name  string
		apr   float64
	}{
		{820, "Excellent", 0.029},
		{750, "Excellent", 0.029},
		{749, "Good", 0.039},
		{700, "Good", 0.039},
		{650, "Fair", 0.049},
		{600, "Poor", 0.069},
		{599, "Very Poor", 0.099},
		{300, "Very Poor", 0.099},
	}

	for _, tt := range tests {
		tier := financing.TierForScore(tt.score)
		assert.Equal(t, tt.name, tier.Name, "score %d", tt.score)
		assert.Equal(t, tt.apr, financing.APRForCreditScore(tt.score), "score %d", tt.score)
	}
}

func TestMockCreditScore(t *testing.T) {
	for _, ssn := range []string{"", "XXX-XX-1234", "placeholder-42", "999-99-9999"} {
		score := financing.MockCreditScore(ssn)
		assert.GreaterOrEqual(t, score, financing.MinCreditScore)
		assert.LessOrEqual(t, score, financing.MaxCreditScore)
		assert.Equal(t, score, financing.MockCreditScore(ssn), "must be stable")
	}
	assert.Equal(t, financing.MinCreditScore, financing.MockCreditScore(""))
}

func TestEstimateFor(t *testing.T) {
	est := financing.EstimateFor(25000, 5000, 0.06, 60)
	assert.Equal(t, 20000.0, est.Principal)
	assert.InDelta(t, 386.66, est.MonthlyPayment, 0.01)

	est = financing.EstimateFor(3000, 5000, 0.06, 0)
	assert.Equal(t, 0.0, est.Principal)
	assert.Equal(t, 0.0, est.MonthlyPayment)
	assert.Equal(t, financing.DefaultTermMonths, est.TermMonths)
}

func TestTermMonths(t *testing.T) {
	assert.Equal(t, 72, financing.TermMonths("72"))
	assert.Equal(t, 48, financing.TermMonths("48 months"))
	assert.Equal(t, financing.DefaultTermMonths, financing.TermMonths(""))
	assert.Equal(t, financing.DefaultTermMonths, financing.TermMonths("soon"))
	assert.Equal(t, financing.MaxTermMonths, financing.TermMonths("96"))
	assert.Equal(t, financing.DefaultTermMonths, financing.TermMonths("97"))
	assert.Equal(t, financing.DefaultTermMonths, financing.TermMonths("200000"))
	assert.Equal(t, financing.DefaultTermMonths, financing.TermMonths("-12"))
}

func TestPaymentMathStaysFiniteForHugeTerms(t *testing.T) {
	pv := financing.PresentValue(500, financing.DefaultAPR, 200000)
	assert.False(t, math.IsNaN(pv) || math.IsInf(pv, 0))
	assert.InDelta(t, 500/(financing.DefaultAPR/12), pv, 1e-6)

	emi := financing.MonthlyPayment(20000, financing.DefaultAPR, 200000)
	assert.False(t, math.IsNaN(emi) || math.IsInf(emi, 0))
	assert.InDelta(t, 20000*financing.DefaultAPR/12, emi, 1e-6)
}

func TestForProfile(t *testing.T) {
	t.Run("defaults without a profile", func(t *testing.T) {
		est := financing.ForProfile(20000, nil)
		assert.Equal(t, financing.DefaultAPR, est.APR)
		assert.Equal(t, 60, est.TermMonths)
		assert.Equal(t, 20000.0, est.Principal)
	})

	t.Run("uses down payment, term and credit tier", func(t *testing.T) {
		p := &models.UserProfile{SSNPlaceholder: "123-45-6789", DownPayment: "$5,000", LoanTermPreference: "48"}
		est := financing.ForProfile(25000, p)

		assert.Equal(t, 20000.0, est.Principal)
		assert.Equal(t, 48, est.TermMonths)
		assert.Equal(t, financing.APRForCreditScore(financing.MockCreditScore("123-45-6789")), est.APR)
		assert.Greater(t, est.MonthlyPayment, 20000.0/48)
	})
}
