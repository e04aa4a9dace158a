// Package allocation turns a monetary amount and a distribution rule into
// per-agent allocations.
//
// Allocation is a pure function: no state, no side effects, deterministic
// output for identical inputs. Shares are processed in (ranking, agentID)
// order, which is the tie-break contract — callers iterating the result
// alongside the rule must use the same ordering.
//
// All monetary values use shopspring/decimal — never float64 for money.
// Internal rate arithmetic runs at decimal's division precision (16 digits)
// so rounding error cannot compound before the caller's final 2-decimal
// rounding step.
package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/agentdesk/commission-engine/internal/rule"
)

// Allocate computes each agent's monetary allocation of amount under r.
//
// A nil amount, nil rule, or rule without shares yields an empty map —
// absent inputs are not an error.
//
// Barrier strategy: agents are served in (ranking, agentID) order, each
// receiving amount × min(share percentage, remaining rate budget); the
// budget starts at the team rate and later agents can receive nothing.
//
// Percentage strategy: requested percentages are rescaled proportionally so
// they sum exactly to the team rate; a zero percentage total yields all-zero
// allocations rather than dividing by zero.
func Allocate(amount *decimal.Decimal, r *rule.TeamRule) map[string]decimal.Decimal {
	allocations := make(map[string]decimal.Decimal)
	if amount == nil || r == nil || len(r.Shares) == 0 {
		return allocations
	}

	shares := rule.SortShares(r.Shares)

	switch r.Strategy {
	case rule.StrategyBarrier:
		remaining := r.Rate
		for _, s := range shares {
			allocated := s.Percentage
			if allocated.GreaterThan(remaining) {
				allocated = remaining
			}
			if allocated.IsNegative() {
				allocated = decimal.Zero
			}
			allocations[s.AgentID] = amount.Mul(allocated)
			remaining = remaining.Sub(allocated)
		}

	default: // percentage
		totalShare := decimal.Zero
		for _, s := range shares {
			totalShare = totalShare.Add(s.Percentage)
		}
		if totalShare.IsZero() {
			for _, s := range shares {
				allocations[s.AgentID] = decimal.Zero
			}
			return allocations
		}
		scaling := r.Rate.Div(totalShare)
		for _, s := range shares {
			allocations[s.AgentID] = amount.Mul(s.Percentage.Mul(scaling))
		}
	}

	return allocations
}
