// Package config defines the data structures related to configuration and
// includes functions for loading, validating, and converting the scenario
// input into an engine input snapshot.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/mlachapelle/maisonqc/internal/affordability"
	"github.com/mlachapelle/maisonqc/internal/engine"
	"github.com/mlachapelle/maisonqc/internal/financing"
	"github.com/mlachapelle/maisonqc/pkg/constants"
	"github.com/mlachapelle/maisonqc/pkg/format"
)

// Configuration holds one full affordability scenario plus runtime options.
type Configuration struct {
	PurchasePrice           float64                  `json:"purchasePrice"`
	DownPaymentAmount       float64                  `json:"downPaymentAmount"`
	UseExtendedAmortization bool                     `json:"useExtendedAmortization"`
	AnnualPropertyTax       float64                  `json:"annualPropertyTax"`
	RecurringMonthlyCosts   engine.RecurringCosts    `json:"recurringMonthlyCosts"`
	OneTimeCosts            engine.OneTimeCosts      `json:"oneTimeCosts"`
	FinancingSources        []financing.Source       `json:"financingSources"`
	HouseholdMembers        []affordability.Member   `json:"householdMembers"`
	RenovationItems         []engine.RenovationItem  `json:"renovationItems"`
	Logging                 LoggingConfig            `json:"logging,omitempty" yaml:"logging,omitempty"`
	Output                  OutputConfig             `json:"output,omitempty" yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `json:"level,omitempty" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `json:"format,omitempty" yaml:"format,omitempty"`         // json, console
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory reader, e.g. an uploaded file.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// EngineInput converts the configuration into an engine input snapshot. IDs
// are minted for sources that lack one so results can be traced back to
// their slot.
func (c *Configuration) EngineInput() engine.Input {
	arena := financing.NewArena()
	for _, source := range c.FinancingSources {
		arena.Add(source)
	}

	return engine.Input{
		PurchasePrice:        c.PurchasePrice,
		DownPayment:          c.DownPaymentAmount,
		ExtendedAmortization: c.UseExtendedAmortization,
		AnnualPropertyTax:    c.AnnualPropertyTax,
		Recurring:            c.RecurringMonthlyCosts,
		OneTime:              c.OneTimeCosts,
		Sources:              arena.Slots(),
		Members:              c.HouseholdMembers,
		Renovations:          c.RenovationItems,
	}
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Warnings never block a calculation.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.PurchasePrice <= 0 {
		warnings = append(warnings, "purchase price is not positive; all derived figures will be zero")
	}
	if c.DownPaymentAmount < 0 {
		warnings = append(warnings, "down payment is negative and will be treated as zero savings")
	}
	if c.PurchasePrice > 0 && c.DownPaymentAmount > c.PurchasePrice {
		warnings = append(warnings, fmt.Sprintf("down payment %s exceeds purchase price %s",
			format.Currency(c.DownPaymentAmount), format.Currency(c.PurchasePrice)))
	}

	if len(c.HouseholdMembers) == 0 {
		warnings = append(warnings, "no household members declared; debt-service ratios will be neutral")
	}

	autoFill := 0
	autoCalculated := 0
	for _, source := range c.FinancingSources {
		if _, ok := financing.Lookup(source.Kind); !ok {
			warnings = append(warnings, fmt.Sprintf("financing source '%s' has unknown kind '%s'",
				source.Name, source.Kind))
		}
		if source.AutoFillMortgage {
			autoFill++
		}
		if source.AutoCalculated && source.Kind == financing.KindParentsLoan {
			autoCalculated++
		}
		capabilities, _ := financing.Lookup(source.Kind)
		if capabilities.IsLoan && !source.AutoCalculated && source.TermMonths <= 0 && source.Amount > 0 {
			warnings = append(warnings, fmt.Sprintf("loan source '%s' has no term; its monthly payment will be zero",
				source.Name))
		}
	}
	if autoFill > 1 {
		warnings = append(warnings, "more than one auto-filled mortgage slot declared; all will take the financed amount")
	}
	if autoCalculated > 1 {
		warnings = append(warnings, "more than one auto-calculated gap slot declared; all will take the full gap amount")
	}

	return warnings
}

// DefaultOutputFormat resolves the configured output format, falling back to
// pretty.
func (c *Configuration) DefaultOutputFormat() string {
	if c.Output.Format == "" {
		return constants.OutputFormatPretty
	}
	return c.Output.Format
}
