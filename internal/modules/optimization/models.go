// Package optimization proposes target allocations from a risk profile.
// The allocation is a heuristic (archetype mix plus an inverse-volatility
// equity sleeve), not a mean-variance solve.
package optimization

// RiskTolerance selects one of the fixed archetype mixes.
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// Objective selects the candidate universe the sleeves draw from.
type Objective string

const (
	ObjectiveGrowth   Objective = "growth"
	ObjectiveIncome   Objective = "income"
	ObjectiveBalanced Objective = "balanced"
)

// RiskProfile is the caller-supplied input configuration.
type RiskProfile struct {
	Capital      float64       `json:"capital"`
	Objective    Objective     `json:"objective"`
	HorizonYears int           `json:"horizon_years"`
	Risk         RiskTolerance `json:"risk_tolerance"`
}

// Universe lists the eligible candidates by asset class.
type Universe struct {
	Equities []string
	Bonds    []string
}

// DefaultUniverse returns the candidate set for an objective.
func DefaultUniverse(objective Objective) Universe {
	switch objective {
	case ObjectiveGrowth:
		return Universe{Equities: []string{"VTI", "QQQ", "VXUS", "VNQ", "ARKK"}, Bonds: []string{"BND"}}
	case ObjectiveIncome:
		return Universe{Equities: []string{"VYM", "VNQ", "VTI"}, Bonds: []string{"BND"}}
	default:
		return Universe{Equities: []string{"VTI", "VXUS", "QQQ", "VNQ"}, Bonds: []string{"BND", "GLD"}}
	}
}

// AssetPlan is the per-candidate snapshot attached to a proposal.
type AssetPlan struct {
	Ticker     string   `json:"ticker"`
	Weight     float64  `json:"weight"`
	Amount     float64  `json:"amount"`
	Price      *float64 `json:"price,omitempty"`
	Shares     *int     `json:"shares,omitempty"`
	Volatility *float64 `json:"volatility,omitempty"`
	Momentum   *float64 `json:"momentum_90d,omitempty"`
}

// Proposal is a target allocation. Weights include the CASH sleeve and
// sum to 1 within tolerance.
type Proposal struct {
	Profile       RiskProfile        `json:"profile"`
	Weights       map[string]float64 `json:"weights"`
	Amounts       map[string]float64 `json:"amounts"`
	Assets        []AssetPlan        `json:"assets"`
	TotalInvested float64            `json:"total_invested"`
	Note          string             `json:"note"`
}
