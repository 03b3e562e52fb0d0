// Package amortization provides fixed-rate level-payment loan calculations.
package amortization

import (
	"math"

	"github.com/mlachapelle/maisonqc/pkg/constants"
	"github.com/mlachapelle/maisonqc/pkg/mathutil"
)

// Payment summarizes a level-payment loan.
type Payment struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPaid      float64 `json:"totalPaid"`
	TotalInterest  float64 `json:"totalInterest"`
}

// Split is the interest/principal decomposition of one payment.
type Split struct {
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
}

// Entry is one month of an amortization schedule.
type Entry struct {
	Month            int     `json:"month"`
	Interest         float64 `json:"interest"`
	Principal        float64 `json:"principal"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Loan describes one amortizing loan for multi-loan aggregation.
type Loan struct {
	Name       string
	Principal  float64
	AnnualRate float64
	TermMonths int
}

// LoanSeries is one loan's per-month principal contribution.
type LoanSeries struct {
	Name      string    `json:"name"`
	Principal []float64 `json:"principal"`
}

// Aggregated sums concurrently active loans into a combined interest series
// while keeping each loan's principal series separate for charting.
type Aggregated struct {
	Months   int          `json:"months"`
	Interest []float64    `json:"interest"`
	Loans    []LoanSeries `json:"loans"`
}

// LevelPayment calculates the monthly payment for a loan using the standard
// amortization formula. A non-positive principal or term yields a zero
// result, and a zero rate divides the principal evenly over the term.
func LevelPayment(principal, annualRate float64, termMonths int) Payment {
	var payment Payment
	if principal <= 0 || termMonths <= 0 {
		return payment
	}

	if annualRate == 0 {
		payment.MonthlyPayment = principal / float64(termMonths)
		payment.TotalPaid = principal
		return payment
	}

	periodicRate := annualRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.00+periodicRate, float64(termMonths))
	discountFactor := (power - 1.00) / power

	payment.MonthlyPayment = principal * periodicRate / discountFactor
	payment.TotalPaid = payment.MonthlyPayment * float64(termMonths)
	payment.TotalInterest = payment.TotalPaid - principal
	return payment
}

// InterestPayment calculates the interest portion of a payment.
func InterestPayment(remainingBalance, annualRate float64) float64 {
	return remainingBalance * annualRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// PaymentSplit decomposes one payment against the current balance. The caller
// supplies the balance (the original principal for month 1).
func PaymentSplit(balance, annualRate, monthlyPayment float64) Split {
	interest := InterestPayment(balance, annualRate)
	return Split{
		Interest:  interest,
		Principal: monthlyPayment - interest,
	}
}

// Schedule projects a loan month by month up to min(termMonths,
// horizonMonths). The principal portion is capped at the remaining balance so
// the final payment may be smaller, and the final balance lands on exactly
// zero rather than machine noise.
func Schedule(principal, annualRate float64, termMonths, horizonMonths int) []Entry {
	if principal <= 0 || termMonths <= 0 {
		return nil
	}

	months := termMonths
	if horizonMonths > 0 && horizonMonths < months {
		months = horizonMonths
	}

	monthlyPayment := LevelPayment(principal, annualRate, termMonths).MonthlyPayment
	schedule := make([]Entry, 0, months)
	balance := principal

	for month := 1; month <= months; month++ {
		split := PaymentSplit(balance, annualRate, monthlyPayment)
		if split.Principal > balance {
			split.Principal = balance
		}
		balance -= split.Principal
		if mathutil.Round(balance) == 0 {
			// We will get machine error otherwise so just set to 0.
			balance = 0
		}

		schedule = append(schedule, Entry{
			Month:            month,
			Interest:         split.Interest,
			Principal:        split.Principal,
			RemainingBalance: balance,
		})

		if balance == 0 {
			break
		}
	}

	return schedule
}

// AggregateSchedules projects every loan over the horizon, summing interest
// per month and keeping per-loan principal series.
func AggregateSchedules(loans []Loan, horizonMonths int) Aggregated {
	aggregated := Aggregated{
		Months:   horizonMonths,
		Interest: make([]float64, horizonMonths),
	}

	for _, loan := range loans {
		series := LoanSeries{
			Name:      loan.Name,
			Principal: make([]float64, horizonMonths),
		}
		for _, entry := range Schedule(loan.Principal, loan.AnnualRate, loan.TermMonths, horizonMonths) {
			aggregated.Interest[entry.Month-1] += entry.Interest
			series.Principal[entry.Month-1] = entry.Principal
		}
		aggregated.Loans = append(aggregated.Loans, series)
	}

	return aggregated
}

// RemainingBalanceAt returns the balance of a loan after the given number of
// months, without materializing the full schedule.
func RemainingBalanceAt(principal, annualRate float64, termMonths, afterMonths int) float64 {
	if principal <= 0 || termMonths <= 0 || afterMonths <= 0 {
		return mathutil.Max(0, principal)
	}
	if afterMonths >= termMonths {
		return 0
	}

	if annualRate == 0 {
		return principal * float64(termMonths-afterMonths) / float64(termMonths)
	}

	periodicRate := annualRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.00+periodicRate, float64(afterMonths))
	monthlyPayment := LevelPayment(principal, annualRate, termMonths).MonthlyPayment
	balance := principal*power - monthlyPayment*(power-1.00)/periodicRate
	return mathutil.Max(0, balance)
}
