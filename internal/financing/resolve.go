package financing

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mlachapelle/maisonqc/pkg/amortization"
	"github.com/mlachapelle/maisonqc/pkg/constants"
	"github.com/mlachapelle/maisonqc/pkg/mathutil"
)

// SourceDetail is one resolved source with its monthly obligation.
type SourceDetail struct {
	ID                  string  `json:"id,omitempty"`
	Name                string  `json:"name"`
	Kind                Kind    `json:"kind"`
	Amount              float64 `json:"amount"`
	Rate                float64 `json:"rate,omitempty"`
	TermMonths          int     `json:"termMonths,omitempty"`
	MonthlyPayment      float64 `json:"monthlyPayment,omitempty"`
	FirstMonthInterest  float64 `json:"firstMonthInterest,omitempty"`
	FirstMonthPrincipal float64 `json:"firstMonthPrincipal,omitempty"`
	DeferredMonthly     float64 `json:"deferredMonthly,omitempty"`
	DeferredStartMonth  int     `json:"deferredStartMonth,omitempty"`
	DeferredEndMonth    int     `json:"deferredEndMonth,omitempty"`
}

// Resolution is the output of one allocation pass over the source list.
type Resolution struct {
	Sources                 []SourceDetail `json:"sources"`
	TotalDownPaymentSavings float64        `json:"totalDownPaymentSavings"`
	GapAmount               float64        `json:"gapAmount"`
	TotalMonthlyLoanPayment float64        `json:"totalMonthlyLoanPayment"`
	TotalInterestFirstMonth float64        `json:"totalInterestFirstMonth"`
	TotalPrincipalFirstMonth float64       `json:"totalPrincipalFirstMonth"`
	TotalDeferredMonthly    float64        `json:"totalDeferredMonthly"`
	Advisories              []Advisory     `json:"advisories,omitempty"`
}

// isGapSlot reports whether a source is the auto-calculated gap loan.
func isGapSlot(source *Source) bool {
	return source.AutoCalculated && source.Kind == KindParentsLoan
}

// Resolve runs the two-pass allocation over a sparse source list.
//
// Pass 1 (collect): the auto-fill mortgage slot takes the total financed
// amount from the insurance calculation, every other non-gap source keeps its
// caller-held amount, and down-payment-eligible amounts accumulate. Ceiling
// advisories are emitted here. The gap slot's amount cannot be known until
// the sum over every other source exists, so it resolves between the passes:
// gap = max(0, requiredDownPayment - accumulated savings).
//
// Pass 2 (obligations): with final amounts in hand, loan kinds run through
// the amortization engine for their monthly payment and first-month split,
// deferred-repayment kinds take a flat amount/years/12 obligation starting
// after the configured grace period, and pure savings carry no obligation.
func Resolve(logger *zap.Logger, sources []*Source, totalFinanced, requiredDownPayment float64) Resolution {
	if logger == nil {
		logger = zap.NewNop()
	}

	resolution := Resolution{
		Advisories: CeilingAdvisories(sources),
	}

	// Pass 1: final amounts for everything except the gap slot.
	amounts := make(map[int]float64, len(sources))
	var gapSlot *Source
	gapPosition := -1
	for position, source := range sources {
		if source == nil {
			continue
		}
		if isGapSlot(source) {
			gapSlot = source
			gapPosition = position
			continue
		}

		amount := source.Amount
		if source.AutoFillMortgage {
			amount = totalFinanced
		}
		amounts[position] = amount

		capabilities, ok := Lookup(source.Kind)
		if ok && capabilities.CountsTowardDownPayment {
			resolution.TotalDownPaymentSavings += amount
		}
	}

	resolution.GapAmount = mathutil.Max(0, requiredDownPayment-resolution.TotalDownPaymentSavings)
	if gapSlot != nil {
		amounts[gapPosition] = resolution.GapAmount
		logger.Debug(fmt.Sprintf("resolved down-payment gap of %.2f for %s", resolution.GapAmount, gapSlot.Name),
			zap.String("op", "financing.Resolve"),
		)
	}

	// Pass 2: monthly obligations from final amounts.
	for position, source := range sources {
		if source == nil {
			continue
		}
		amount := amounts[position]
		detail := SourceDetail{
			ID:         source.ID,
			Name:       source.Name,
			Kind:       source.Kind,
			Amount:     amount,
			Rate:       source.Rate,
			TermMonths: source.TermMonths,
		}

		capabilities, _ := Lookup(source.Kind)
		switch {
		case capabilities.IsLoan && amount > 0:
			payment := amortization.LevelPayment(amount, source.Rate, source.TermMonths)
			split := amortization.PaymentSplit(amount, source.Rate, payment.MonthlyPayment)
			detail.MonthlyPayment = payment.MonthlyPayment
			detail.FirstMonthInterest = split.Interest
			detail.FirstMonthPrincipal = split.Principal
			resolution.TotalMonthlyLoanPayment += payment.MonthlyPayment
			resolution.TotalInterestFirstMonth += split.Interest
			resolution.TotalPrincipalFirstMonth += split.Principal
		case capabilities.RequiresRepayment && amount > 0 && capabilities.RepaymentYears > 0:
			// Program repayment is interest-free and does not start until
			// the grace period has elapsed.
			detail.DeferredMonthly = amount / float64(capabilities.RepaymentYears) / constants.MonthsPerYear
			detail.DeferredStartMonth = capabilities.RepaymentGraceYears*constants.MonthsPerYear + 1
			detail.DeferredEndMonth = detail.DeferredStartMonth + capabilities.RepaymentYears*constants.MonthsPerYear - 1
			resolution.TotalDeferredMonthly += detail.DeferredMonthly
		}

		resolution.Sources = append(resolution.Sources, detail)
	}

	return resolution
}

// LoansOf extracts the amortizing loans from a resolution for schedule
// aggregation.
func (r Resolution) LoansOf() []amortization.Loan {
	var loans []amortization.Loan
	for _, detail := range r.Sources {
		capabilities, _ := Lookup(detail.Kind)
		if capabilities.IsLoan && detail.Amount > 0 {
			name := detail.Name
			if name == "" {
				name = capabilities.Label
			}
			loans = append(loans, amortization.Loan{
				Name:       name,
				Principal:  detail.Amount,
				AnnualRate: detail.Rate,
				TermMonths: detail.TermMonths,
			})
		}
	}
	return loans
}
