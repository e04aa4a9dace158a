// Package rule builds commission distribution rules for teams and agents.
//
// A TeamRule is a transient value object recomputed on every calculation —
// it is never cached or persisted. The rule combines team membership with the
// role rate table and decides which distribution strategy applies: when the
// members' requested percentages fit under the team rate cap they are
// rescaled proportionally (percentage strategy); when they exceed it, agents
// are served in ranking order until the rate budget runs out (barrier
// strategy).
package rule

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Strategy selects how a team's rate budget is split among its agents.
type Strategy string

const (
	// StrategyPercentage rescales requested percentages proportionally so
	// they sum exactly to the team rate.
	StrategyPercentage Strategy = "PERCENTAGE"

	// StrategyBarrier serves agents in ranking order, each up to its
	// requested percentage, until the team rate budget is exhausted.
	StrategyBarrier Strategy = "BARRIER"
)

// AgentShare is one agent's requested slice of the team rate.
// Immutable value; unique by AgentID within a rule.
type AgentShare struct {
	AgentID    string          `json:"agent_id"`
	Percentage decimal.Decimal `json:"percentage"` // fractional, e.g. 0.03 for 3%
	Ranking    int             `json:"ranking"`    // lower = served first under barrier
}

// TeamRule is the resolved distribution rule for one calculation.
// TeamID is empty for synthetic single-agent rules.
type TeamRule struct {
	TeamID   string          `json:"team_id,omitempty"`
	Rate     decimal.Decimal `json:"rate"` // clamped to [MinTeamRate, MaxTeamRate]
	Strategy Strategy        `json:"strategy"`
	Shares   []AgentShare    `json:"shares"`
}

// HasAgent reports whether the rule already carries a share for agentID.
func (r *TeamRule) HasAgent(agentID string) bool {
	for _, s := range r.Shares {
		if s.AgentID == agentID {
			return true
		}
	}
	return false
}

// SortShares orders shares by (ranking ascending, agentID ascending).
// This is the tie-break contract shared by the allocation engine and the
// ledger update path; equal-ranking agents must always resolve in the same
// order regardless of input order.
func SortShares(shares []AgentShare) []AgentShare {
	sorted := make([]AgentShare, len(shares))
	copy(sorted, shares)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Ranking != sorted[j].Ranking {
			return sorted[i].Ranking < sorted[j].Ranking
		}
		return sorted[i].AgentID < sorted[j].AgentID
	})
	return sorted
}
