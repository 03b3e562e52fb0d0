// Package financing models the funding instruments contributing to a home
// purchase and resolves them into per-source amounts and monthly obligations.
package financing

import (
	"github.com/google/uuid"

	"github.com/mlachapelle/maisonqc/pkg/constants"
)

// Kind is the closed set of financing source variants.
type Kind string

const (
	KindMortgage     Kind = "mortgage"
	KindCELIAPP      Kind = "celiapp"
	KindRRSP         Kind = "rrsp"
	KindTFSA         Kind = "tfsa"
	KindJointAccount Kind = "joint_account"
	KindParentsLoan  Kind = "parents_loan"
	KindOtherLoan    Kind = "other_loan"
	KindOtherSavings Kind = "other_savings"
)

// Capabilities is the fixed behavior record for a source kind. Components
// branch on these flags rather than on the kind itself.
type Capabilities struct {
	Label                   string
	IsLoan                  bool
	RequiresRepayment       bool
	CountsTowardDownPayment bool
	MaxContribution         float64 // 0 = no ceiling
	MaxWithdrawal           float64 // 0 = no ceiling
	RepaymentYears          int
	RepaymentGraceYears     int
}

// capabilityTable resolves each kind once; nothing re-derives these flags.
var capabilityTable = map[Kind]Capabilities{
	KindMortgage: {
		Label:  "Mortgage",
		IsLoan: true,
	},
	KindCELIAPP: {
		Label:                   "CELIAPP",
		CountsTowardDownPayment: true,
		MaxContribution:         constants.CELIAPPMaxContribution,
	},
	KindRRSP: {
		Label:                   "RRSP (HBP)",
		CountsTowardDownPayment: true,
		RequiresRepayment:       true,
		MaxWithdrawal:           constants.RRSPMaxWithdrawal,
		RepaymentYears:          constants.HBPRepaymentYears,
		RepaymentGraceYears:     constants.HBPRepaymentGraceYears,
	},
	KindTFSA: {
		Label:                   "TFSA",
		CountsTowardDownPayment: true,
	},
	KindJointAccount: {
		Label:                   "Joint account",
		CountsTowardDownPayment: true,
	},
	KindParentsLoan: {
		Label:                   "Parents loan",
		IsLoan:                  true,
		CountsTowardDownPayment: true,
	},
	KindOtherLoan: {
		Label:                   "Other loan",
		IsLoan:                  true,
		CountsTowardDownPayment: true,
	},
	KindOtherSavings: {
		Label:                   "Other savings",
		CountsTowardDownPayment: true,
	},
}

// Lookup returns the capability record for a kind. Unknown kinds report
// false and behave as inert savings with no down-payment contribution.
func Lookup(kind Kind) (Capabilities, bool) {
	capabilities, ok := capabilityTable[kind]
	return capabilities, ok
}

// Kinds returns every valid kind, useful for input validation.
func Kinds() []Kind {
	return []Kind{
		KindMortgage, KindCELIAPP, KindRRSP, KindTFSA,
		KindJointAccount, KindParentsLoan, KindOtherLoan, KindOtherSavings,
	}
}

// Source is one funding instrument. Rate and TermMonths are meaningful only
// for loan kinds. AutoFillMortgage marks the slot whose amount is overwritten
// from the insurance calculation; AutoCalculated marks the gap slot whose
// amount is derived from every other down-payment-eligible source.
type Source struct {
	ID               string  `json:"id,omitempty"`
	Name             string  `json:"name"`
	Kind             Kind    `json:"kind"`
	Amount           float64 `json:"amount"`
	Rate             float64 `json:"rate,omitempty"`
	TermMonths       int     `json:"termMonths,omitempty"`
	AutoFillMortgage bool    `json:"autoFillMortgage,omitempty"`
	AutoCalculated   bool    `json:"autoCalculated,omitempty"`
}

// Arena holds sources in append-only slots addressed by stable IDs. Removal
// marks the slot rather than shifting indices, so iteration must tolerate
// empty slots.
type Arena struct {
	slots []*Source
	index map[string]int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{index: make(map[string]int)}
}

// Add appends a source and returns its ID, minting one when absent.
func (a *Arena) Add(source Source) string {
	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	a.index[source.ID] = len(a.slots)
	a.slots = append(a.slots, &source)
	return source.ID
}

// Remove nulls the slot for the given ID. It reports whether a source was
// present.
func (a *Arena) Remove(id string) bool {
	position, ok := a.index[id]
	if !ok || a.slots[position] == nil {
		return false
	}
	a.slots[position] = nil
	delete(a.index, id)
	return true
}

// Get returns the source with the given ID.
func (a *Arena) Get(id string) (*Source, bool) {
	position, ok := a.index[id]
	if !ok || a.slots[position] == nil {
		return nil, false
	}
	return a.slots[position], true
}

// Slots exposes the raw sparse slot list; removed entries are nil.
func (a *Arena) Slots() []*Source {
	return a.slots
}

// Present returns copies of the non-removed sources in insertion order.
func (a *Arena) Present() []Source {
	present := make([]Source, 0, len(a.slots))
	for _, source := range a.slots {
		if source != nil {
			present = append(present, *source)
		}
	}
	return present
}

// Len reports the number of present sources.
func (a *Arena) Len() int {
	n := 0
	for _, source := range a.slots {
		if source != nil {
			n++
		}
	}
	return n
}
