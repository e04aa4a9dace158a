// Package commission provides the HTTP handlers and business logic for
// calculating, distributing, and ledgering sales-agent commissions.
//
// All monetary values use shopspring/decimal — never float64 for money.
package commission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agentdesk/commission-engine/internal/allocation"
	"github.com/agentdesk/commission-engine/internal/metrics"
	"github.com/agentdesk/commission-engine/internal/model"
	"github.com/agentdesk/commission-engine/internal/rates"
	"github.com/agentdesk/commission-engine/internal/rule"
	"github.com/agentdesk/commission-engine/internal/store"
)

// moneyScale is the rounding scale for all monetary results returned or
// persisted by the facade. Internal rate arithmetic runs at full decimal
// precision; only final amounts are rounded.
const moneyScale = 2

// Service orchestrates rule resolution, allocation, and ledger updates.
// A mutex serializes payment application (single-instance). For horizontal
// scaling, replace with row-level locking or database-level optimistic
// concurrency around the ledger read-modify-write.
type Service struct {
	store    store.Store
	resolver *rule.Resolver
	mu       sync.Mutex
	wsHub    *WSHub // optional WebSocket hub for ledger-update broadcasts
}

// NewService creates a new commission service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, hub *WSHub) *Service {
	return &Service{
		store:    st,
		resolver: rule.NewResolver(st),
		wsHub:    hub,
	}
}

// UpdateAfterPayment distributes an invoice payment across the responsible
// agent's team and accumulates the result onto the commission ledger.
//
// An empty or unknown contractID is a no-op returning an empty list — a
// payment workflow is never blocked by missing commission metadata. The
// invoice amount and the paid amount are allocated in two independent passes
// over the same rule, then merged additively onto each agent's ledger row in
// (ranking, agentID) order.
//
// The update is additive, NOT idempotent: re-invoking with the same payment
// event accumulates duplicate commission. Callers must invoke exactly once
// per real-world payment.
func (s *Service) UpdateAfterPayment(ctx context.Context, contractID string, invoiceAmount, amountPaid *decimal.Decimal) ([]model.Commission, error) {
	if contractID == "" {
		return []model.Commission{}, nil
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return []model.Commission{}, nil
	}

	r := s.resolveAgentRule(ctx, contract.AgentID)

	totalAllocations := allocation.Allocate(invoiceAmount, r)
	paidAllocations := allocation.Allocate(amountPaid, r)
	metrics.AllocationsTotal.WithLabelValues(string(r.Strategy)).Add(2)

	// Serialize the ledger read-modify-write.
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	saved := make([]model.Commission, 0, len(r.Shares))

	for _, share := range rule.SortShares(r.Shares) {
		row, err := s.store.GetCommission(ctx, share.AgentID, contractID)
		if errors.Is(err, store.ErrNotFound) {
			row = &model.Commission{
				ID:                uuid.New().String(),
				AgentID:           share.AgentID,
				ContractID:        contractID,
				TotalCommission:   decimal.Zero,
				PaidCommission:    decimal.Zero,
				PendingCommission: decimal.Zero,
			}
		} else if err != nil {
			return nil, fmt.Errorf("load ledger row %s/%s: %w", share.AgentID, contractID, err)
		}

		row.TotalCommission = row.TotalCommission.Add(totalAllocations[share.AgentID].Round(moneyScale))
		row.PaidCommission = row.PaidCommission.Add(paidAllocations[share.AgentID].Round(moneyScale))
		row.PendingCommission = row.TotalCommission.Sub(row.PaidCommission)
		if row.PendingCommission.IsNegative() {
			row.PendingCommission = decimal.Zero
		}
		row.LastUpdated = now

		if err := s.store.SaveCommission(ctx, row); err != nil {
			return nil, fmt.Errorf("save ledger row %s/%s: %w", share.AgentID, contractID, err)
		}
		metrics.LedgerUpserts.Inc()
		saved = append(saved, *row)
	}

	metrics.PaymentsApplied.Inc()

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:       "ledger_updated",
			ContractID: contractID,
			Strategy:   string(r.Strategy),
			TeamRate:   r.Rate.String(),
			Agents:     len(saved),
		})
	}

	return saved, nil
}

// ContractAgentCommission returns the share of amount earned by the
// contract's own responsible agent under that agent's rule, rounded to
// 2 decimals. An unknown contract yields 0.00, not an error.
func (s *Service) ContractAgentCommission(ctx context.Context, contractID string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if contractID == "" {
		return decimal.Zero.Round(moneyScale), nil
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return decimal.Zero.Round(moneyScale), nil
	}

	r := s.resolveAgentRule(ctx, contract.AgentID)
	allocations := allocation.Allocate(amount, r)
	metrics.AllocationsTotal.WithLabelValues(string(r.Strategy)).Inc()
	return allocations[contract.AgentID].Round(moneyScale), nil
}

// CalculateAgentCommission returns one agent's share of amount under the
// team rule (team-scoped: no single-agent escalation), rounded to 2 decimals.
// An empty agentID yields 0.00 immediately.
func (s *Service) CalculateAgentCommission(ctx context.Context, teamID, agentID string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if agentID == "" {
		return decimal.Zero.Round(moneyScale), nil
	}

	r := s.resolver.ResolveForTeam(ctx, teamID)
	allocations := allocation.Allocate(amount, r)
	metrics.AllocationsTotal.WithLabelValues(string(r.Strategy)).Inc()
	return allocations[agentID].Round(moneyScale), nil
}

// CalculateTeamCommission returns the team's collective commission on
// amount (amount × team rate), rounded to 2 decimals. A nil amount yields
// 0.00.
func (s *Service) CalculateTeamCommission(ctx context.Context, teamID string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero.Round(moneyScale), nil
	}

	r := s.resolver.ResolveForTeam(ctx, teamID)
	return amount.Mul(r.Rate).Round(moneyScale), nil
}

// DefaultCommission is the stateless shortcut used by statistics
// aggregation: amount × the floor rate, rounded to 2 decimals.
func (s *Service) DefaultCommission(amount *decimal.Decimal) decimal.Decimal {
	if amount == nil {
		return decimal.Zero.Round(moneyScale)
	}
	return amount.Mul(rates.MinTeamRate).Round(moneyScale)
}

// resolveAgentRule resolves the rule for an agent and records degraded
// resolutions (synthetic single-agent fallbacks carry no team).
func (s *Service) resolveAgentRule(ctx context.Context, agentID string) *rule.TeamRule {
	r := s.resolver.ResolveForAgent(ctx, agentID)
	if r.TeamID == "" {
		metrics.DegradedResolutions.Inc()
	}
	return r
}
