// Package insurance computes mortgage loan insurance premiums and the Quebec
// land transfer duty for a home purchase.
package insurance

import (
	"github.com/mlachapelle/maisonqc/pkg/constants"
	"github.com/mlachapelle/maisonqc/pkg/mathutil"
)

// Result holds the values derived from one purchase price / down payment pair.
type Result struct {
	MortgageAmount     float64 `json:"mortgageAmount"`
	LoanToValue        float64 `json:"loanToValue"`
	DownPaymentPercent float64 `json:"downPaymentPercent"`
	InsuranceRequired  bool    `json:"insuranceRequired"`
	PremiumRate        float64 `json:"premiumRate"`
	Premium            float64 `json:"premium"`
	ProvincialTax      float64 `json:"provincialTax"`
	TotalInsuranceCost float64 `json:"totalInsuranceCost"`
	TotalFinanced      float64 `json:"totalFinanced"`
	RateClamped        bool    `json:"rateClamped,omitempty"`
}

// TransferTaxLine is one marginal bracket's contribution to the transfer duty.
type TransferTaxLine struct {
	From        float64 `json:"from"`
	To          float64 `json:"to"`
	Rate        float64 `json:"rate"`
	AmountTaxed float64 `json:"amountTaxed"`
	TaxOwed     float64 `json:"taxOwed"`
}

// TransferTax holds the total land transfer duty and its bracket breakdown.
type TransferTax struct {
	Total     float64           `json:"total"`
	Breakdown []TransferTaxLine `json:"breakdown"`
}

// LoanToValue returns the loan-to-value ratio for a purchase. A non-positive
// price or a down payment covering the full price yields zero.
func LoanToValue(price, downPayment float64) float64 {
	if price <= 0 {
		return 0
	}
	ltv := (price - downPayment) / price
	if ltv < 0 {
		return 0
	}
	return ltv
}

// PremiumRate returns the insurance premium rate (percent of the loan) for a
// loan-to-value ratio by scanning the bracket table in ascending order. A
// ratio above the highest bracket ceiling is clamped to the top bracket's
// rate and reported via the second return value; the insurer would decline
// such a loan, but the engine never blocks a calculation. The extended
// 30-year amortization surcharge is added when requested.
func PremiumRate(ltv float64, extendedAmortization bool) (float64, bool) {
	rate := 0.0
	clamped := false

	found := false
	for _, bracket := range constants.PremiumBrackets {
		if ltv <= bracket.MaxLoanToValue {
			rate = bracket.Rate
			found = true
			break
		}
	}
	if !found {
		rate = constants.PremiumBrackets[len(constants.PremiumBrackets)-1].Rate
		clamped = true
	}

	if extendedAmortization {
		rate += constants.ExtendedAmortizationSurcharge
	}
	return rate, clamped
}

// Calculate derives the full insurance picture for a purchase. Insurance is
// required only when the loan-to-value ratio exceeds 80%; below that the
// premium and tax are zero but the ratio and mortgage amount are still
// reported. The premium and the provincial tax on it are capitalized into
// the financed amount rather than paid in cash.
func Calculate(price, downPayment float64, extendedAmortization bool) Result {
	var result Result
	if price <= 0 {
		return result
	}

	result.MortgageAmount = mathutil.Max(0, price-downPayment)
	result.LoanToValue = LoanToValue(price, downPayment)
	result.DownPaymentPercent = mathutil.CalculatePercentage(downPayment, price)
	result.TotalFinanced = result.MortgageAmount

	if result.LoanToValue <= constants.InsuranceRequiredLTV {
		return result
	}

	result.InsuranceRequired = true
	result.PremiumRate, result.RateClamped = PremiumRate(result.LoanToValue, extendedAmortization)
	result.Premium = mathutil.ApplyPercentage(result.MortgageAmount, result.PremiumRate)
	result.ProvincialTax = mathutil.ApplyPercentage(result.Premium, constants.PremiumTaxRate)
	result.TotalInsuranceCost = result.Premium + result.ProvincialTax
	result.TotalFinanced = result.MortgageAmount + result.TotalInsuranceCost

	return result
}

// LandTransferTax walks the cumulative marginal brackets of the Quebec
// transfer duty, taxing the slice of the price falling inside each bracket
// at that bracket's rate. The breakdown lines sum exactly to the price.
func LandTransferTax(price float64) TransferTax {
	var result TransferTax
	if price <= 0 {
		return result
	}

	lower := 0.0
	for _, bracket := range constants.TransferTaxBrackets {
		upper := bracket.UpperThreshold
		if upper == 0 || upper > price {
			upper = price
		}
		portion := upper - lower
		if portion <= 0 {
			break
		}

		owed := mathutil.ApplyPercentage(portion, bracket.Rate)
		result.Breakdown = append(result.Breakdown, TransferTaxLine{
			From:        lower,
			To:          upper,
			Rate:        bracket.Rate,
			AmountTaxed: portion,
			TaxOwed:     owed,
		})
		result.Total += owed

		if upper == price {
			break
		}
		lower = upper
	}

	return result
}
