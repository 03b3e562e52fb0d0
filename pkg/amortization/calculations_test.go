package amortization

import (
	"math"
	"testing"
)

func TestLevelPayment(t *testing.T) {
	tests := []struct {
		name          string
		principal     float64
		annualRate    float64
		termMonths    int
		expectedRange []float64 // [min, max] expected monthly payment
	}{
		{
			name:          "Standard 25-year mortgage",
			principal:     400000,
			annualRate:    5.0,
			termMonths:    300,
			expectedRange: []float64{2330, 2345}, // Around $2338
		},
		{
			name:          "30-year mortgage",
			principal:     300000,
			annualRate:    6.0,
			termMonths:    360,
			expectedRange: []float64{1795, 1805}, // Around $1799
		},
		{
			name:          "Zero interest loan",
			principal:     12000,
			annualRate:    0.0,
			termMonths:    60,
			expectedRange: []float64{200, 200}, // Exactly $200
		},
		{
			name:          "Zero principal",
			principal:     0,
			annualRate:    5.0,
			termMonths:    60,
			expectedRange: []float64{0, 0},
		},
		{
			name:          "Zero term",
			principal:     10000,
			annualRate:    5.0,
			termMonths:    0,
			expectedRange: []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LevelPayment(tt.principal, tt.annualRate, tt.termMonths)

			if result.MonthlyPayment < tt.expectedRange[0] || result.MonthlyPayment > tt.expectedRange[1] {
				t.Errorf("LevelPayment() = %.2f, expected range [%.2f, %.2f]",
					result.MonthlyPayment, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestLevelPaymentZeroRate(t *testing.T) {
	result := LevelPayment(12000, 0, 60)

	if math.Abs(result.MonthlyPayment-200) > 0.001 {
		t.Errorf("MonthlyPayment = %v, expected principal/term = 200", result.MonthlyPayment)
	}
	if result.TotalInterest != 0 {
		t.Errorf("TotalInterest = %v, expected 0", result.TotalInterest)
	}
	if math.Abs(result.TotalPaid-12000) > 0.001 {
		t.Errorf("TotalPaid = %v, expected 12000", result.TotalPaid)
	}
}

func TestPaymentSplit(t *testing.T) {
	tests := []struct {
		name              string
		balance           float64
		annualRate        float64
		monthlyPayment    float64
		expectedInterest  float64
		expectedPrincipal float64
	}{
		{
			name:              "First month of a mortgage",
			balance:           200000,
			annualRate:        6.0,
			monthlyPayment:    1500,
			expectedInterest:  1000, // 200000 * 0.06 / 12
			expectedPrincipal: 500,
		},
		{
			name:              "Zero rate",
			balance:           10000,
			annualRate:        0,
			monthlyPayment:    500,
			expectedInterest:  0,
			expectedPrincipal: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := PaymentSplit(tt.balance, tt.annualRate, tt.monthlyPayment)

			if math.Abs(split.Interest-tt.expectedInterest) > 0.01 {
				t.Errorf("Interest = %.2f, expected %.2f", split.Interest, tt.expectedInterest)
			}
			if math.Abs(split.Principal-tt.expectedPrincipal) > 0.01 {
				t.Errorf("Principal = %.2f, expected %.2f", split.Principal, tt.expectedPrincipal)
			}
		})
	}
}

func TestScheduleConservation(t *testing.T) {
	tests := []struct {
		name       string
		principal  float64
		annualRate float64
		termMonths int
	}{
		{name: "Standard mortgage", principal: 450000, annualRate: 5.25, termMonths: 300},
		{name: "Short personal loan", principal: 15000, annualRate: 8.0, termMonths: 36},
		{name: "Zero interest", principal: 10000, annualRate: 0, termMonths: 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := Schedule(tt.principal, tt.annualRate, tt.termMonths, 0)
			if len(schedule) == 0 {
				t.Fatal("expected a non-empty schedule")
			}

			totalPrincipal := 0.0
			for _, entry := range schedule {
				totalPrincipal += entry.Principal
			}
			if math.Abs(totalPrincipal-tt.principal) > 0.01 {
				t.Errorf("principal portions sum to %.4f, expected %.2f", totalPrincipal, tt.principal)
			}

			final := schedule[len(schedule)-1]
			if final.RemainingBalance != 0 {
				t.Errorf("final balance = %v, expected exactly 0", final.RemainingBalance)
			}
		})
	}
}

func TestScheduleHorizonCap(t *testing.T) {
	schedule := Schedule(300000, 6.0, 360, 120)
	if len(schedule) != 120 {
		t.Errorf("expected 120 entries, got %d", len(schedule))
	}
	if schedule[len(schedule)-1].RemainingBalance <= 0 {
		t.Error("expected a positive balance at the horizon")
	}
}

func TestScheduleDegenerateInputs(t *testing.T) {
	if got := Schedule(0, 5, 60, 0); got != nil {
		t.Errorf("expected nil schedule for zero principal, got %d entries", len(got))
	}
	if got := Schedule(1000, 5, 0, 0); got != nil {
		t.Errorf("expected nil schedule for zero term, got %d entries", len(got))
	}
}

func TestAggregateSchedules(t *testing.T) {
	loans := []Loan{
		{Name: "Mortgage", Principal: 400000, AnnualRate: 5.0, TermMonths: 300},
		{Name: "Parents loan", Principal: 20000, AnnualRate: 2.0, TermMonths: 60},
	}

	aggregated := AggregateSchedules(loans, 360)

	if aggregated.Months != 360 {
		t.Fatalf("Months = %d, expected 360", aggregated.Months)
	}
	if len(aggregated.Interest) != 360 {
		t.Fatalf("interest series has %d entries", len(aggregated.Interest))
	}
	if len(aggregated.Loans) != 2 {
		t.Fatalf("expected 2 loan series, got %d", len(aggregated.Loans))
	}

	// Month 1 combined interest is the sum of each loan's first-month interest.
	expected := InterestPayment(400000, 5.0) + InterestPayment(20000, 2.0)
	if math.Abs(aggregated.Interest[0]-expected) > 0.01 {
		t.Errorf("first-month interest = %.2f, expected %.2f", aggregated.Interest[0], expected)
	}

	// Second loan contributes nothing past its term.
	if aggregated.Loans[1].Principal[61] != 0 {
		t.Errorf("expected zero principal after maturity, got %v", aggregated.Loans[1].Principal[61])
	}

	// Per-loan principal series each conserve their principal.
	for i, loan := range loans {
		sum := 0.0
		for _, p := range aggregated.Loans[i].Principal {
			sum += p
		}
		if math.Abs(sum-loan.Principal) > 0.01 {
			t.Errorf("loan %s principal series sums to %.4f, expected %.2f", loan.Name, sum, loan.Principal)
		}
	}
}

func TestRemainingBalanceAt(t *testing.T) {
	principal := 300000.0
	rate := 5.5
	term := 300

	schedule := Schedule(principal, rate, term, 0)
	for _, months := range []int{1, 12, 60, 150, 299} {
		expected := schedule[months-1].RemainingBalance
		got := RemainingBalanceAt(principal, rate, term, months)
		if math.Abs(got-expected) > 0.05 {
			t.Errorf("RemainingBalanceAt(%d) = %.4f, schedule says %.4f", months, got, expected)
		}
	}

	if got := RemainingBalanceAt(principal, rate, term, term); got != 0 {
		t.Errorf("balance at maturity = %v, expected 0", got)
	}
	if got := RemainingBalanceAt(principal, rate, term, 0); got != principal {
		t.Errorf("balance before any payment = %v, expected %v", got, principal)
	}
	if got := RemainingBalanceAt(10000, 0, 100, 25); math.Abs(got-7500) > 0.01 {
		t.Errorf("zero-rate balance = %v, expected 7500", got)
	}
}
