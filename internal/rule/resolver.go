package rule

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/agentdesk/commission-engine/internal/model"
	"github.com/agentdesk/commission-engine/internal/rates"
)

// Directory provides the read-only lookups the resolver needs.
// Satisfied by store.Store.
type Directory interface {
	GetAgent(ctx context.Context, id string) (*model.Agent, error)
	GetAgentByUser(ctx context.Context, userID string) (*model.Agent, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsersByTeam(ctx context.Context, teamID string) ([]model.User, error)
}

// Resolver builds TeamRules from team membership and the role rate table.
//
// Resolution never fails: missing agents, missing teams, and lookup errors
// all degrade to conservative defaults (floor rate, single-agent rule) so an
// incomplete directory can never block a payment workflow.
type Resolver struct {
	dir Directory
}

// NewResolver creates a resolver backed by the given directory.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// ResolveForTeam builds the distribution rule for a team.
//
// An empty teamID yields the floor rule: rate MinTeamRate, percentage
// strategy, no shares. Otherwise every team member with an agent record
// contributes one share from the role rate table. The team rate is the
// members' summed percentages clamped to [MinTeamRate, MaxTeamRate]; the
// barrier strategy applies only when the raw sum exceeds the cap.
func (r *Resolver) ResolveForTeam(ctx context.Context, teamID string) *TeamRule {
	if teamID == "" {
		return &TeamRule{
			Rate:     rates.MinTeamRate,
			Strategy: StrategyPercentage,
			Shares:   []AgentShare{},
		}
	}

	users, err := r.dir.ListUsersByTeam(ctx, teamID)
	if err != nil {
		users = nil
	}

	var shares []AgentShare
	sum := decimal.Zero
	for _, u := range users {
		agent, err := r.dir.GetAgentByUser(ctx, u.ID)
		if err != nil {
			continue // user without an agent record earns no commission
		}
		share := AgentShare{
			AgentID:    agent.ID,
			Percentage: rates.PercentageForRole(agent.TeamRole),
			Ranking:    rates.RankingForRole(agent.TeamRole),
		}
		shares = append(shares, share)
		sum = sum.Add(share.Percentage)
	}

	rate := sum
	if rate.LessThan(rates.MinTeamRate) {
		rate = rates.MinTeamRate
	}
	if rate.GreaterThan(rates.MaxTeamRate) {
		rate = rates.MaxTeamRate
	}

	strategy := StrategyPercentage
	if sum.GreaterThan(rate) {
		strategy = StrategyBarrier
	}

	if shares == nil {
		shares = []AgentShare{}
	}
	return &TeamRule{
		TeamID:   teamID,
		Rate:     rate,
		Strategy: strategy,
		Shares:   shares,
	}
}

// ResolveForAgent builds the rule that applies to a single agent.
//
// If the agent, its user, or a team assignment cannot be found, the result is
// a synthetic single-agent rule granting the floor rate as that agent's full
// and only share. Otherwise the team rule applies; if the agent is missing
// from the team's shares (e.g. a brand-new agent not yet in the membership
// snapshot) a share is appended from the role rate table, leaving the rule's
// team, rate, and strategy unchanged.
func (r *Resolver) ResolveForAgent(ctx context.Context, agentID string) *TeamRule {
	agent, err := r.dir.GetAgent(ctx, agentID)
	if err != nil {
		return r.singleAgentRule(agentID)
	}

	user, err := r.dir.GetUser(ctx, agent.UserID)
	if err != nil || user.TeamID == "" {
		return r.singleAgentRule(agentID)
	}

	teamRule := r.ResolveForTeam(ctx, user.TeamID)
	if !teamRule.HasAgent(agentID) {
		teamRule.Shares = append(teamRule.Shares, AgentShare{
			AgentID:    agentID,
			Percentage: rates.PercentageForRole(agent.TeamRole),
			Ranking:    rates.RankingForRole(agent.TeamRole),
		})
	}
	return teamRule
}

// singleAgentRule is the degraded fallback: the agent receives the floor
// rate in full.
func (r *Resolver) singleAgentRule(agentID string) *TeamRule {
	return &TeamRule{
		Rate:     rates.MinTeamRate,
		Strategy: StrategyPercentage,
		Shares: []AgentShare{{
			AgentID:    agentID,
			Percentage: rates.MinTeamRate,
			Ranking:    rates.DefaultRanking,
		}},
	}
}
