// Package engine runs the full affordability calculation: one pure function
// from an input snapshot to a computed snapshot. Callers own all mutable
// state and re-run the pipeline in its entirety on every input change.
package engine

import (
	"go.uber.org/zap"

	"github.com/mlachapelle/maisonqc/internal/affordability"
	"github.com/mlachapelle/maisonqc/internal/financing"
	"github.com/mlachapelle/maisonqc/pkg/amortization"
	"github.com/mlachapelle/maisonqc/pkg/constants"
	"github.com/mlachapelle/maisonqc/pkg/insurance"
)

// RecurringCosts are the flat monthly property costs.
type RecurringCosts struct {
	Insurance float64 `json:"insurance" yaml:"insurance"`
	Utility   float64 `json:"utility" yaml:"utility"`
	Upkeep    float64 `json:"upkeep" yaml:"upkeep"`
}

// OneTimeCosts are the cash costs due around closing.
type OneTimeCosts struct {
	NotaryFees    float64 `json:"notaryFees" yaml:"notaryFees"`
	MovingBase    float64 `json:"movingBase" yaml:"movingBase"`
	PaintPerSqft  float64 `json:"paintPerSqft" yaml:"paintPerSqft"`
	SquareFootage float64 `json:"squareFootage" yaml:"squareFootage"`
}

// RenovationItem is one planned renovation expense.
type RenovationItem struct {
	Description string  `json:"description" yaml:"description"`
	Amount      float64 `json:"amount" yaml:"amount"`
}

// Input is the flat record of everything the engine consumes.
type Input struct {
	PurchasePrice        float64                `json:"purchasePrice"`
	DownPayment          float64                `json:"downPayment"`
	ExtendedAmortization bool                   `json:"extendedAmortization"`
	AnnualPropertyTax    float64                `json:"annualPropertyTax"`
	Recurring            RecurringCosts         `json:"recurringCosts"`
	OneTime              OneTimeCosts           `json:"oneTimeCosts"`
	Sources              []*financing.Source    `json:"financingSources"`
	Members              []affordability.Member `json:"householdMembers"`
	Renovations          []RenovationItem       `json:"renovationItems"`
}

// OneTimeTotals breaks down cash needed around closing.
type OneTimeTotals struct {
	NotaryFees   float64 `json:"notaryFees"`
	Moving       float64 `json:"moving"`
	Paint        float64 `json:"paint"`
	Renovations  float64 `json:"renovations"`
	TransferTax  float64 `json:"transferTax"`
	Total        float64 `json:"total"`
	CashToClose  float64 `json:"cashToClose"`
}

// PaymentSeries is the month-indexed payment breakdown for charting: a
// combined interest line, per-loan principal lines, and the flat recurring
// cost per month.
type PaymentSeries struct {
	Months           int                        `json:"months"`
	Interest         []float64                  `json:"interest"`
	Loans            []amortization.LoanSeries  `json:"loans"`
	RecurringMonthly float64                    `json:"recurringMonthly"`
}

// EquityPoint is one year of the equity projection. Property value is held
// constant; only the aggregate debt declines.
type EquityPoint struct {
	Year          int     `json:"year"`
	PropertyValue float64 `json:"propertyValue"`
	RemainingDebt float64 `json:"remainingDebt"`
	Equity        float64 `json:"equity"`
}

// Snapshot is the full set of computed outputs for one calculation pass.
type Snapshot struct {
	Insurance          insurance.Result       `json:"insurance"`
	TransferTax        insurance.TransferTax  `json:"transferTax"`
	Financing          financing.Resolution   `json:"financing"`
	MonthlyHousingCost float64                `json:"monthlyHousingCost"`
	MonthlyRecurring   float64                `json:"monthlyRecurring"`
	TotalMonthlyCost   float64                `json:"totalMonthlyCost"`
	OneTime            OneTimeTotals          `json:"oneTime"`
	Affordability      affordability.Analysis `json:"affordability"`
	Warnings           []financing.Advisory   `json:"warnings,omitempty"`
	PaymentSeries      PaymentSeries          `json:"paymentSeries"`
	EquitySeries       []EquityPoint          `json:"equitySeries"`
}

// Compute runs the whole pipeline: insurance and transfer tax, source
// allocation, cost aggregation, affordability analysis, and the chart
// series. It never mutates its input.
func Compute(logger *zap.Logger, input Input) Snapshot {
	if logger == nil {
		logger = zap.NewNop()
	}

	var snapshot Snapshot

	snapshot.Insurance = insurance.Calculate(input.PurchasePrice, input.DownPayment, input.ExtendedAmortization)
	snapshot.TransferTax = insurance.LandTransferTax(input.PurchasePrice)

	snapshot.Financing = financing.Resolve(logger, input.Sources,
		snapshot.Insurance.TotalFinanced, input.DownPayment)
	snapshot.Warnings = append(snapshot.Warnings, snapshot.Financing.Advisories...)
	if snapshot.Insurance.RateClamped {
		snapshot.Warnings = append(snapshot.Warnings, financing.Advisory{
			Severity: financing.SeverityWarning,
			Source:   "Mortgage insurance",
			Message:  "loan-to-value exceeds the highest premium bracket; rate clamped to the top bracket",
		})
	}

	monthlyPropertyTax := input.AnnualPropertyTax / constants.MonthsPerYear
	snapshot.MonthlyRecurring = input.Recurring.Insurance + input.Recurring.Utility +
		input.Recurring.Upkeep + monthlyPropertyTax
	// Housing-only cost for GDS: loan payments, property tax, and the
	// utility proxy.
	snapshot.MonthlyHousingCost = snapshot.Financing.TotalMonthlyLoanPayment +
		monthlyPropertyTax + input.Recurring.Utility
	snapshot.TotalMonthlyCost = snapshot.Financing.TotalMonthlyLoanPayment + snapshot.MonthlyRecurring

	snapshot.OneTime = oneTimeTotals(input, snapshot.TransferTax.Total)

	snapshot.Affordability = affordability.Analyze(input.Members,
		snapshot.MonthlyHousingCost,
		snapshot.Financing.TotalDeferredMonthly,
		snapshot.TotalMonthlyCost)

	loans := snapshot.Financing.LoansOf()
	snapshot.PaymentSeries = paymentSeries(loans, snapshot.MonthlyRecurring)
	snapshot.EquitySeries = equitySeries(input.PurchasePrice, loans)

	logger.Debug("calculation pass complete",
		zap.String("op", "engine.Compute"),
		zap.Float64("totalFinanced", snapshot.Insurance.TotalFinanced),
		zap.Float64("totalMonthlyCost", snapshot.TotalMonthlyCost),
		zap.Int("warnings", len(snapshot.Warnings)),
	)

	return snapshot
}

func oneTimeTotals(input Input, transferTax float64) OneTimeTotals {
	totals := OneTimeTotals{
		NotaryFees:  input.OneTime.NotaryFees,
		Moving:      input.OneTime.MovingBase,
		Paint:       input.OneTime.PaintPerSqft * input.OneTime.SquareFootage,
		TransferTax: transferTax,
	}
	for _, item := range input.Renovations {
		totals.Renovations += item.Amount
	}
	totals.Total = totals.NotaryFees + totals.Moving + totals.Paint +
		totals.Renovations + totals.TransferTax
	totals.CashToClose = input.DownPayment + totals.Total
	return totals
}

func paymentSeries(loans []amortization.Loan, recurringMonthly float64) PaymentSeries {
	aggregated := amortization.AggregateSchedules(loans, constants.PaymentSeriesMonths)
	return PaymentSeries{
		Months:           aggregated.Months,
		Interest:         aggregated.Interest,
		Loans:            aggregated.Loans,
		RecurringMonthly: recurringMonthly,
	}
}

func equitySeries(propertyValue float64, loans []amortization.Loan) []EquityPoint {
	series := make([]EquityPoint, 0, constants.EquitySeriesYears+1)
	for year := 0; year <= constants.EquitySeriesYears; year++ {
		debt := 0.0
		for _, loan := range loans {
			debt += amortization.RemainingBalanceAt(loan.Principal, loan.AnnualRate,
				loan.TermMonths, year*constants.MonthsPerYear)
		}
		series = append(series, EquityPoint{
			Year:          year,
			PropertyValue: propertyValue,
			RemainingDebt: debt,
			Equity:        propertyValue - debt,
		})
	}
	return series
}
