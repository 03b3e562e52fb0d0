// Package output provides utilities for formatting and displaying
// calculation snapshots.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mlachapelle/maisonqc/internal/engine"
	"github.com/mlachapelle/maisonqc/pkg/format"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(snapshot engine.Snapshot) {
	p := message.NewPrinter(language.English)

	fmt.Printf("--- Purchase ---\n")
	_, _ = p.Printf("Mortgage amount:       %s\n", format.Currency(snapshot.Insurance.MortgageAmount))
	_, _ = p.Printf("Loan-to-value:         %s\n", format.Percent(snapshot.Insurance.LoanToValue))
	_, _ = p.Printf("Down payment:          %.2f%%\n", snapshot.Insurance.DownPaymentPercent)
	if snapshot.Insurance.InsuranceRequired {
		_, _ = p.Printf("Insurance premium:     %s (rate %.2f%%)\n",
			format.Currency(snapshot.Insurance.Premium), snapshot.Insurance.PremiumRate)
		_, _ = p.Printf("Tax on premium:        %s\n", format.Currency(snapshot.Insurance.ProvincialTax))
	} else {
		fmt.Printf("Insurance premium:     not required\n")
	}
	_, _ = p.Printf("Total financed:        %s\n", format.Currency(snapshot.Insurance.TotalFinanced))

	fmt.Printf("\n--- Land transfer duty ---\n")
	fmt.Printf("From          | To            | Rate   | Tax\n")
	fmt.Printf("____          | __            | ____   | ___\n")
	for _, line := range snapshot.TransferTax.Breakdown {
		_, _ = p.Printf("%-13s | %-13s | %.2f%% | %s\n",
			format.Currency(line.From), format.Currency(line.To), line.Rate, format.Currency(line.TaxOwed))
	}
	_, _ = p.Printf("Total: %s\n", format.Currency(snapshot.TransferTax.Total))

	fmt.Printf("\n--- Financing sources ---\n")
	for _, source := range snapshot.Financing.Sources {
		line := fmt.Sprintf("%-24s %s", source.Name, format.Currency(source.Amount))
		if source.MonthlyPayment > 0 {
			line += fmt.Sprintf("  (%s/month)", format.Currency(source.MonthlyPayment))
		}
		if source.DeferredMonthly > 0 {
			line += fmt.Sprintf("  (%s/month from month %d)",
				format.Currency(source.DeferredMonthly), source.DeferredStartMonth)
		}
		fmt.Println(line)
	}
	_, _ = p.Printf("Down-payment savings:  %s\n", format.Currency(snapshot.Financing.TotalDownPaymentSavings))
	if snapshot.Financing.GapAmount > 0 {
		_, _ = p.Printf("Down-payment gap:      %s\n", format.Currency(snapshot.Financing.GapAmount))
	}

	fmt.Printf("\n--- Monthly costs ---\n")
	_, _ = p.Printf("Loan payments:         %s\n", format.Currency(snapshot.Financing.TotalMonthlyLoanPayment))
	_, _ = p.Printf("Recurring costs:       %s\n", format.Currency(snapshot.MonthlyRecurring))
	_, _ = p.Printf("Total:                 %s\n", format.Currency(snapshot.TotalMonthlyCost))
	_, _ = p.Printf("Cash to close:         %s\n", format.Currency(snapshot.OneTime.CashToClose))

	fmt.Printf("\n--- Affordability ---\n")
	_, _ = p.Printf("Household ratio:       %s (%s)\n",
		format.Percent(snapshot.Affordability.HouseholdRatio), snapshot.Affordability.HouseholdStatus)
	for _, person := range snapshot.Affordability.Persons {
		_, _ = p.Printf("%-24s GDS %s (%s), TDS %s (%s)\n", person.Name,
			format.Percent(person.GDSRatio), person.GDSStatus,
			format.Percent(person.TDSRatio), person.TDSStatus)
	}

	if len(snapshot.Warnings) > 0 {
		fmt.Printf("\n--- Warnings ---\n")
		for _, warning := range snapshot.Warnings {
			fmt.Printf("[%s] %s: %s\n", warning.Severity, warning.Source, warning.Message)
		}
	}
}

// CsvFormat outputs the payment-breakdown series in comma-separated value
// format.
func CsvFormat(snapshot engine.Snapshot) {
	fmt.Print(CsvString(snapshot))
}

// CsvString renders the payment-breakdown series as CSV.
func CsvString(snapshot engine.Snapshot) string {
	var builder strings.Builder

	builder.WriteString(`"month","interest"`)
	for _, loan := range snapshot.PaymentSeries.Loans {
		builder.WriteString(fmt.Sprintf(`,"principal (%s)"`, loan.Name))
	}
	builder.WriteString(`,"recurring"` + "\n")

	for month := 0; month < snapshot.PaymentSeries.Months; month++ {
		builder.WriteString(fmt.Sprintf(`"%d","%.2f"`, month+1, snapshot.PaymentSeries.Interest[month]))
		for _, loan := range snapshot.PaymentSeries.Loans {
			builder.WriteString(fmt.Sprintf(`,"%.2f"`, loan.Principal[month]))
		}
		builder.WriteString(fmt.Sprintf(`,"%.2f"`+"\n", snapshot.PaymentSeries.RecurringMonthly))
	}

	return builder.String()
}

// JSONFormat outputs the full snapshot as indented JSON.
func JSONFormat(snapshot engine.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
