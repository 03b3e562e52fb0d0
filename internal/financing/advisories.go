package financing

import (
	"fmt"

	"github.com/mlachapelle/maisonqc/pkg/format"
)

// Severity grades an advisory.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Advisory is an informational message about a source; it never blocks a
// calculation.
type Advisory struct {
	Severity Severity `json:"severity"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
}

// CeilingAdvisories scans the sparse source list for amounts exceeding a
// program contribution or withdrawal ceiling.
func CeilingAdvisories(sources []*Source) []Advisory {
	var advisories []Advisory

	for _, source := range sources {
		if source == nil {
			continue
		}
		capabilities, ok := Lookup(source.Kind)
		if !ok {
			continue
		}

		label := source.Name
		if label == "" {
			label = capabilities.Label
		}

		if capabilities.MaxContribution > 0 && source.Amount > capabilities.MaxContribution {
			advisories = append(advisories, Advisory{
				Severity: SeverityWarning,
				Source:   label,
				Message: fmt.Sprintf("%s exceeds the %s contribution limit of %s",
					format.Currency(source.Amount), capabilities.Label, format.Currency(capabilities.MaxContribution)),
			})
		}
		if capabilities.MaxWithdrawal > 0 && source.Amount > capabilities.MaxWithdrawal {
			advisories = append(advisories, Advisory{
				Severity: SeverityWarning,
				Source:   label,
				Message: fmt.Sprintf("%s exceeds the %s withdrawal limit of %s",
					format.Currency(source.Amount), capabilities.Label, format.Currency(capabilities.MaxWithdrawal)),
			})
		}
	}

	return advisories
}
