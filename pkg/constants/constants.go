// Package constants provides shared constants and jurisdiction rate data for
// the maisonqc affordability engine.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Mortgage insurance constants
const (
	// InsuranceRequiredLTV is the loan-to-value ratio above which mortgage
	// insurance is mandatory.
	InsuranceRequiredLTV = 0.80

	// ExtendedAmortizationSurcharge is the premium-rate surcharge (in
	// percentage points) applied when the loan amortizes over 30 years.
	ExtendedAmortizationSurcharge = 0.20

	// PremiumTaxRate is the Quebec tax on insurance premiums (9%).
	PremiumTaxRate = 9.0
)

// PremiumBracket maps a loan-to-value ceiling to an insurance premium rate
// expressed as a percentage of the loan amount.
type PremiumBracket struct {
	MaxLoanToValue float64
	Rate           float64
}

// PremiumBrackets holds the insurer's premium schedule in ascending
// loan-to-value order. Lookups take the first bracket whose ceiling is at or
// above the current ratio.
var PremiumBrackets = []PremiumBracket{
	{MaxLoanToValue: 0.65, Rate: 0.60},
	{MaxLoanToValue: 0.75, Rate: 1.70},
	{MaxLoanToValue: 0.80, Rate: 2.40},
	{MaxLoanToValue: 0.85, Rate: 2.80},
	{MaxLoanToValue: 0.90, Rate: 3.10},
	{MaxLoanToValue: 0.95, Rate: 4.00},
}

// TransferTaxBracket is one cumulative marginal bracket of the Quebec land
// transfer duty ("droits de mutation").
type TransferTaxBracket struct {
	UpperThreshold float64 // 0 marks the open-ended top bracket
	Rate           float64 // percentage
}

// TransferTaxBrackets holds the provincial base scale in ascending order.
var TransferTaxBrackets = []TransferTaxBracket{
	{UpperThreshold: 55200, Rate: 0.5},
	{UpperThreshold: 276200, Rate: 1.0},
	{UpperThreshold: 0, Rate: 1.5},
}

// Debt-service classification thresholds, expressed as ratios.
const (
	// HouseholdAffordableMax is the upper bound of the Affordable band.
	HouseholdAffordableMax = 0.30

	// HouseholdCautionMax is the upper bound of the Caution band.
	HouseholdCautionMax = 0.40

	// GDSExcellentMax and GDSAcceptableMax bound the gross-debt-service bands.
	GDSExcellentMax  = 0.32
	GDSAcceptableMax = 0.39

	// TDSExcellentMax and TDSAcceptableMax bound the total-debt-service bands.
	TDSExcellentMax  = 0.40
	TDSAcceptableMax = 0.44
)

// First-time-buyer program limits.
const (
	// CELIAPPMaxContribution is the lifetime FHSA contribution ceiling.
	CELIAPPMaxContribution = 40000.0

	// RRSPMaxWithdrawal is the HBP (RAP) withdrawal ceiling per buyer.
	RRSPMaxWithdrawal = 60000.0

	// HBPRepaymentYears is the duration of the HBP repayment obligation.
	HBPRepaymentYears = 15

	// HBPRepaymentGraceYears is the delay before HBP repayment starts.
	HBPRepaymentGraceYears = 2
)

// Projection horizons for the UI time series.
const (
	// PaymentSeriesMonths is the horizon of the payment-breakdown series.
	PaymentSeriesMonths = 360

	// EquitySeriesYears is the horizon of the equity projection.
	EquitySeriesYears = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable snapshot format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "scenario.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)

// StateVersion tags exported state snapshots so the load path can reject
// layouts it does not understand.
const StateVersion = 1
