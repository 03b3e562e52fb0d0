// Package affordability computes household and per-person debt-service
// ratios with proportional income-based cost allocation.
package affordability

import (
	"github.com/mlachapelle/maisonqc/pkg/constants"
)

// Classification labels for debt-service ratios.
const (
	StatusAffordable    = "Affordable"
	StatusCaution       = "Caution"
	StatusHighRisk      = "High Risk"
	StatusExcellent     = "Excellent"
	StatusAcceptable    = "Acceptable"
	StatusMayNotQualify = "May Not Qualify"

	// StatusNeutral is reported when the relevant income is zero and no
	// ratio can be formed.
	StatusNeutral = "N/A"
)

// Member is one income-earning co-applicant with their recurring debt
// payments.
type Member struct {
	Name          string  `json:"name"`
	MonthlyIncome float64 `json:"monthlyIncome"`
	CarLoan       float64 `json:"carLoan,omitempty"`
	StudentLoan   float64 `json:"studentLoan,omitempty"`
	PersonalLoan  float64 `json:"personalLoan,omitempty"`
	CreditCardMin float64 `json:"creditCardMin,omitempty"`
}

// DebtPayments sums the member's monthly debt obligations.
func (m Member) DebtPayments() float64 {
	return m.CarLoan + m.StudentLoan + m.PersonalLoan + m.CreditCardMin
}

// PersonResult holds one member's allocated costs and ratios.
type PersonResult struct {
	Name          string  `json:"name"`
	MonthlyIncome float64 `json:"monthlyIncome"`
	IncomeShare   float64 `json:"incomeShare"`
	HousingShare  float64 `json:"housingShare"`
	DeferredShare float64 `json:"deferredShare"`
	DebtPayments  float64 `json:"debtPayments"`
	GDSRatio      float64 `json:"gdsRatio"`
	GDSStatus     string  `json:"gdsStatus"`
	TDSRatio      float64 `json:"tdsRatio"`
	TDSStatus     string  `json:"tdsStatus"`
}

// Analysis is the household-level affordability picture.
type Analysis struct {
	TotalMonthlyIncome float64        `json:"totalMonthlyIncome"`
	TotalMonthlyCosts  float64        `json:"totalMonthlyCosts"`
	HouseholdRatio     float64        `json:"householdRatio"`
	HouseholdStatus    string         `json:"householdStatus"`
	Persons            []PersonResult `json:"persons"`
}

// ClassifyHousehold labels a household cost-to-income ratio. The boundary
// values belong to the lower band.
func ClassifyHousehold(ratio float64) string {
	switch {
	case ratio <= constants.HouseholdAffordableMax:
		return StatusAffordable
	case ratio <= constants.HouseholdCautionMax:
		return StatusCaution
	default:
		return StatusHighRisk
	}
}

// ClassifyGDS labels a gross (housing-only) debt-service ratio.
func ClassifyGDS(ratio float64) string {
	switch {
	case ratio <= constants.GDSExcellentMax:
		return StatusExcellent
	case ratio <= constants.GDSAcceptableMax:
		return StatusAcceptable
	default:
		return StatusMayNotQualify
	}
}

// ClassifyTDS labels a total debt-service ratio.
func ClassifyTDS(ratio float64) string {
	switch {
	case ratio <= constants.TDSExcellentMax:
		return StatusExcellent
	case ratio <= constants.TDSAcceptableMax:
		return StatusAcceptable
	default:
		return StatusMayNotQualify
	}
}

// Analyze allocates the housing cost across members in proportion to income
// and computes per-person GDS/TDS ratios. The deferred program repayment is
// split evenly across members regardless of income share. Zero household
// income, or an empty member list, yields neutral ratios rather than an
// error.
//
// housingMonthly covers loan payments plus recurring property costs;
// totalMonthly is the full household monthly outflow used for the household
// ratio.
func Analyze(members []Member, housingMonthly, deferredMonthly, totalMonthly float64) Analysis {
	analysis := Analysis{
		TotalMonthlyCosts: totalMonthly,
		HouseholdStatus:   StatusNeutral,
	}

	for _, member := range members {
		analysis.TotalMonthlyIncome += member.MonthlyIncome
	}

	if analysis.TotalMonthlyIncome > 0 {
		analysis.HouseholdRatio = totalMonthly / analysis.TotalMonthlyIncome
		analysis.HouseholdStatus = ClassifyHousehold(analysis.HouseholdRatio)
	}

	if len(members) == 0 {
		return analysis
	}

	deferredShare := deferredMonthly / float64(len(members))
	for _, member := range members {
		person := PersonResult{
			Name:          member.Name,
			MonthlyIncome: member.MonthlyIncome,
			DeferredShare: deferredShare,
			DebtPayments:  member.DebtPayments(),
			GDSStatus:     StatusNeutral,
			TDSStatus:     StatusNeutral,
		}

		if analysis.TotalMonthlyIncome > 0 {
			person.IncomeShare = member.MonthlyIncome / analysis.TotalMonthlyIncome
			person.HousingShare = housingMonthly * person.IncomeShare
		}

		if member.MonthlyIncome > 0 {
			person.GDSRatio = person.HousingShare / member.MonthlyIncome
			person.GDSStatus = ClassifyGDS(person.GDSRatio)
			person.TDSRatio = (person.HousingShare + person.DebtPayments + person.DeferredShare) / member.MonthlyIncome
			person.TDSStatus = ClassifyTDS(person.TDSRatio)
		}

		analysis.Persons = append(analysis.Persons, person)
	}

	return analysis
}
