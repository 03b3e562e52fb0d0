package config

import (
	"strings"
	"testing"

	"github.com/mlachapelle/maisonqc/internal/financing"
)

const sampleYAML = `
purchasePrice: 500000
downPaymentAmount: 50000
useExtendedAmortization: false
annualPropertyTax: 4800
recurringMonthlyCosts:
  insurance: 100
  utility: 250
  upkeep: 150
oneTimeCosts:
  notaryFees: 1800
  movingBase: 1200
  paintPerSqft: 2
  squareFootage: 1000
financingSources:
  - name: Mortgage
    kind: mortgage
    rate: 5.0
    termMonths: 300
    autoFillMortgage: true
  - name: CELIAPP
    kind: celiapp
    amount: 25000
  - name: Parents
    kind: parents_loan
    rate: 2.0
    termMonths: 120
    autoCalculated: true
householdMembers:
  - name: Camille
    monthlyIncome: 6500
    carLoan: 300
  - name: Marc
    monthlyIncome: 5500
renovationItems:
  - description: Kitchen
    amount: 12000
logging:
  level: debug
  format: console
output:
  format: csv
`

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error: %v", err)
	}

	if conf.PurchasePrice != 500000 {
		t.Errorf("PurchasePrice = %v, expected 500000", conf.PurchasePrice)
	}
	if conf.RecurringMonthlyCosts.Utility != 250 {
		t.Errorf("Utility = %v, expected 250", conf.RecurringMonthlyCosts.Utility)
	}
	if len(conf.FinancingSources) != 3 {
		t.Fatalf("expected 3 financing sources, got %d", len(conf.FinancingSources))
	}
	if conf.FinancingSources[0].Kind != financing.KindMortgage {
		t.Errorf("first source kind = %s, expected mortgage", conf.FinancingSources[0].Kind)
	}
	if !conf.FinancingSources[0].AutoFillMortgage {
		t.Error("expected mortgage slot to be auto-filled")
	}
	if len(conf.HouseholdMembers) != 2 {
		t.Fatalf("expected 2 household members, got %d", len(conf.HouseholdMembers))
	}
	if conf.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, expected debug", conf.Logging.Level)
	}
	if conf.DefaultOutputFormat() != "csv" {
		t.Errorf("DefaultOutputFormat() = %s, expected csv", conf.DefaultOutputFormat())
	}
}

func TestLoadConfigurationFromReaderMalformed(t *testing.T) {
	_, err := LoadConfigurationFromReader(strings.NewReader("purchasePrice: [not a number"))
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestEngineInputMintsIDs(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error: %v", err)
	}

	input := conf.EngineInput()
	if len(input.Sources) != 3 {
		t.Fatalf("expected 3 source slots, got %d", len(input.Sources))
	}
	for i, source := range input.Sources {
		if source == nil {
			t.Fatalf("slot %d unexpectedly nil", i)
		}
		if source.ID == "" {
			t.Errorf("slot %d has no ID", i)
		}
	}
	if input.DownPayment != 50000 {
		t.Errorf("DownPayment = %v, expected 50000", input.DownPayment)
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Configuration)
		expected int
	}{
		{
			name:     "Valid configuration",
			mutate:   func(c *Configuration) {},
			expected: 0,
		},
		{
			name: "Non-positive price",
			mutate: func(c *Configuration) {
				c.PurchasePrice = 0
			},
			expected: 1,
		},
		{
			name: "Down payment above price",
			mutate: func(c *Configuration) {
				c.DownPaymentAmount = 600000
			},
			expected: 1,
		},
		{
			name: "No household members",
			mutate: func(c *Configuration) {
				c.HouseholdMembers = nil
			},
			expected: 1,
		},
		{
			name: "Unknown source kind",
			mutate: func(c *Configuration) {
				c.FinancingSources[1].Kind = financing.Kind("bitcoin")
			},
			expected: 1,
		},
		{
			name: "Loan without a term",
			mutate: func(c *Configuration) {
				c.FinancingSources = append(c.FinancingSources, financing.Source{
					Name: "Line of credit", Kind: financing.KindOtherLoan, Amount: 5000,
				})
			},
			expected: 1,
		},
		{
			name: "Duplicate auto-fill slots",
			mutate: func(c *Configuration) {
				c.FinancingSources = append(c.FinancingSources, financing.Source{
					Name: "Second mortgage", Kind: financing.KindMortgage, TermMonths: 300, AutoFillMortgage: true,
				})
			},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := LoadConfigurationFromReader(strings.NewReader(sampleYAML))
			if err != nil {
				t.Fatalf("LoadConfigurationFromReader() error: %v", err)
			}
			tt.mutate(conf)

			warnings := conf.ValidateConfiguration()
			if len(warnings) != tt.expected {
				t.Errorf("got %d warnings, expected %d: %v", len(warnings), tt.expected, warnings)
			}
		})
	}
}
