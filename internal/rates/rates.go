// Package rates maps free-text agent roles to commission percentages and
// allocation rankings.
//
// Role matching is a case-insensitive substring check against an ordered rule
// table — first match wins. Roles are arbitrary strings entered by admins
// ("Senior Sales Agent", "stagiaire commercial", ...), so the table keys off
// fragments rather than a closed enumeration. An unknown or empty role falls
// through to the default rate; there is no error path.
//
// All rates use shopspring/decimal — never float64 for money.
package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// MinTeamRate is the floor for a team's collective commission rate.
	// Applied whenever the summed member percentages fall short, and used
	// as the standalone rate for agents without team data.
	MinTeamRate = decimal.RequireFromString("0.10")

	// MaxTeamRate caps a team's collective commission rate. When the summed
	// member percentages exceed it, allocation switches to the barrier
	// strategy and the excess is truncated by ranking order.
	MaxTeamRate = decimal.RequireFromString("0.12")

	// DefaultRate is the per-agent rate for roles matching no rule.
	DefaultRate = decimal.RequireFromString("0.01")
)

// DefaultRanking is the allocation priority for roles matching no rule.
// Lower ranking = served first under the barrier strategy.
const DefaultRanking = 3

// roleRule associates a role fragment with a rate and ranking.
type roleRule struct {
	fragment string
	rate     decimal.Decimal
	ranking  int
}

// Ordered: first match wins. "stag" covers stagiaire/intern role spellings.
var roleRules = []roleRule{
	{"senior", decimal.RequireFromString("0.03"), 0},
	{"junior", decimal.RequireFromString("0.02"), 1},
	{"stag", decimal.RequireFromString("0.015"), 2},
}

// PercentageForRole returns the fractional commission rate for a role
// (e.g. 0.03 for 3%). Total function: any input yields a valid rate.
func PercentageForRole(role string) decimal.Decimal {
	if r, ok := match(role); ok {
		return r.rate
	}
	return DefaultRate
}

// RankingForRole returns the allocation priority for a role.
// Lower = higher priority under the barrier strategy.
func RankingForRole(role string) int {
	if r, ok := match(role); ok {
		return r.ranking
	}
	return DefaultRanking
}

func match(role string) (roleRule, bool) {
	lowered := strings.ToLower(role)
	for _, r := range roleRules {
		if strings.Contains(lowered, r.fragment) {
			return r, true
		}
	}
	return roleRule{}, false
}
