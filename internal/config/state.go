package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mlachapelle/maisonqc/internal/affordability"
	"github.com/mlachapelle/maisonqc/internal/engine"
	"github.com/mlachapelle/maisonqc/internal/financing"
	"github.com/mlachapelle/maisonqc/pkg/constants"
)

// State is the persisted/transferable layout: a flat record mirroring the
// scenario inputs plus a version tag and export timestamp. Removed source
// slots are omitted on export; only relative order and field values survive
// a round trip, not slot indices.
type State struct {
	Version                 int                     `json:"version"`
	ExportedAt              time.Time               `json:"exportedAt"`
	PurchasePrice           float64                 `json:"purchasePrice"`
	DownPaymentAmount       float64                 `json:"downPaymentAmount"`
	UseExtendedAmortization bool                    `json:"useExtendedAmortization"`
	AnnualPropertyTax       float64                 `json:"annualPropertyTax"`
	RecurringMonthlyCosts   engine.RecurringCosts   `json:"recurringMonthlyCosts"`
	OneTimeCosts            engine.OneTimeCosts     `json:"oneTimeCosts"`
	FinancingSources        []financing.Source      `json:"financingSources"`
	HouseholdMembers        []affordability.Member  `json:"householdMembers"`
	RenovationItems         []engine.RenovationItem `json:"renovationItems"`
}

// ExportState captures the configuration's scenario inputs as a versioned
// state record.
func (c *Configuration) ExportState(now time.Time) State {
	return State{
		Version:                 constants.StateVersion,
		ExportedAt:              now.UTC(),
		PurchasePrice:           c.PurchasePrice,
		DownPaymentAmount:       c.DownPaymentAmount,
		UseExtendedAmortization: c.UseExtendedAmortization,
		AnnualPropertyTax:       c.AnnualPropertyTax,
		RecurringMonthlyCosts:   c.RecurringMonthlyCosts,
		OneTimeCosts:            c.OneTimeCosts,
		FinancingSources:        append([]financing.Source(nil), c.FinancingSources...),
		HouseholdMembers:        append([]affordability.Member(nil), c.HouseholdMembers...),
		RenovationItems:         append([]engine.RenovationItem(nil), c.RenovationItems...),
	}
}

// ExportJSON serializes the scenario as versioned JSON.
func (c *Configuration) ExportJSON(now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(c.ExportState(now), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return data, nil
}

// ImportState parses a versioned JSON state record into a fresh
// configuration. On any failure it returns an error and no configuration,
// leaving whatever the caller currently holds untouched.
func ImportState(data []byte) (*Configuration, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	if state.Version != constants.StateVersion {
		return nil, fmt.Errorf("unsupported state version %d (expected %d)",
			state.Version, constants.StateVersion)
	}

	return &Configuration{
		PurchasePrice:           state.PurchasePrice,
		DownPaymentAmount:       state.DownPaymentAmount,
		UseExtendedAmortization: state.UseExtendedAmortization,
		AnnualPropertyTax:       state.AnnualPropertyTax,
		RecurringMonthlyCosts:   state.RecurringMonthlyCosts,
		OneTimeCosts:            state.OneTimeCosts,
		FinancingSources:        state.FinancingSources,
		HouseholdMembers:        state.HouseholdMembers,
		RenovationItems:         state.RenovationItems,
	}, nil
}
