package commission_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/agentdesk/commission-engine/internal/commission"
	"github.com/agentdesk/commission-engine/internal/model"
	"github.com/agentdesk/commission-engine/internal/store"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

// newTestService creates a Service with an in-memory store seeded with one
// contract (c1, responsible agent a1) and a two-agent team t1:
// a1 senior (0.03, rank 0) and a2 junior (0.02, rank 1). Summed percentages
// 0.05 clamp to the 0.10 floor, so the percentage strategy doubles each
// requested rate: a1 effectively 6%, a2 effectively 4%.
func newTestService(t *testing.T) (*commission.Service, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()

	ms.PutUser(model.User{ID: "u1", TeamID: "t1", Name: "senior seller"})
	ms.PutUser(model.User{ID: "u2", TeamID: "t1", Name: "junior seller"})
	ms.PutAgent(model.Agent{ID: "a1", UserID: "u1", TeamRole: "Senior Sales"})
	ms.PutAgent(model.Agent{ID: "a2", UserID: "u2", TeamRole: "junior agent"})
	ms.PutContract(model.Contract{ID: "c1", AgentID: "a1", CustomerID: "cust1", Value: d("50000"), Status: "active"})

	return commission.NewService(ms, nil), ms
}

// --- UpdateAfterPayment ---

func TestUpdateAfterPayment_DistributesAcrossTeam(t *testing.T) {
	svc, _ := newTestService(t)

	rows, err := svc.UpdateAfterPayment(context.Background(), "c1", dp("1000.00"), dp("500.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(rows))
	}

	// Share order: a1 (rank 0) before a2 (rank 1).
	if rows[0].AgentID != "a1" || rows[1].AgentID != "a2" {
		t.Fatalf("unexpected row order: %s, %s", rows[0].AgentID, rows[1].AgentID)
	}

	if !rows[0].TotalCommission.Equal(d("60")) {
		t.Errorf("a1 total = %s, want 60.00", rows[0].TotalCommission)
	}
	if !rows[0].PaidCommission.Equal(d("30")) {
		t.Errorf("a1 paid = %s, want 30.00", rows[0].PaidCommission)
	}
	if !rows[0].PendingCommission.Equal(d("30")) {
		t.Errorf("a1 pending = %s, want 30.00", rows[0].PendingCommission)
	}

	if !rows[1].TotalCommission.Equal(d("40")) {
		t.Errorf("a2 total = %s, want 40.00", rows[1].TotalCommission)
	}
	if !rows[1].PaidCommission.Equal(d("20")) {
		t.Errorf("a2 paid = %s, want 20.00", rows[1].PaidCommission)
	}
	if rows[0].LastUpdated.IsZero() {
		t.Error("expected LastUpdated to be stamped")
	}
}

func TestUpdateAfterPayment_AdditiveOnRepeat(t *testing.T) {
	// Re-applying the same payment event accumulates duplicate commission.
	// This is the documented contract: the engine carries no idempotency key,
	// callers invoke exactly once per real payment. Do not "fix" this by
	// deduplicating here.
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.UpdateAfterPayment(ctx, "c1", dp("1000"), dp("500")); err != nil {
		t.Fatalf("first application failed: %v", err)
	}
	rows, err := svc.UpdateAfterPayment(ctx, "c1", dp("1000"), dp("500"))
	if err != nil {
		t.Fatalf("second application failed: %v", err)
	}

	if !rows[0].TotalCommission.Equal(d("120")) {
		t.Errorf("a1 total after double apply = %s, want 120.00", rows[0].TotalCommission)
	}
	if !rows[0].PaidCommission.Equal(d("60")) {
		t.Errorf("a1 paid after double apply = %s, want 60.00", rows[0].PaidCommission)
	}
}

func TestUpdateAfterPayment_ReusesLedgerRow(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	first, _ := svc.UpdateAfterPayment(ctx, "c1", dp("1000"), nil)
	second, _ := svc.UpdateAfterPayment(ctx, "c1", dp("1000"), nil)

	if first[0].ID != second[0].ID {
		t.Error("expected the same ledger row across payments for one (agent, contract) pair")
	}

	row, err := ms.GetCommission(ctx, "a1", "c1")
	if err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if !row.TotalCommission.Equal(d("120")) {
		t.Errorf("persisted total = %s, want 120.00", row.TotalCommission)
	}
}

func TestUpdateAfterPayment_PendingClampedAtZero(t *testing.T) {
	// A payment with no invoice amount: paid grows, total stays zero, and
	// pending must clamp to zero rather than going negative.
	svc, _ := newTestService(t)

	rows, err := svc.UpdateAfterPayment(context.Background(), "c1", nil, dp("500"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, row := range rows {
		if row.PendingCommission.IsNegative() {
			t.Errorf("%s pending is negative: %s", row.AgentID, row.PendingCommission)
		}
		if !row.PendingCommission.IsZero() {
			t.Errorf("%s pending = %s, want 0", row.AgentID, row.PendingCommission)
		}
	}
}

func TestUpdateAfterPayment_UnknownContractIsNoOp(t *testing.T) {
	svc, ms := newTestService(t)

	rows, err := svc.UpdateAfterPayment(context.Background(), "ghost", dp("1000"), dp("500"))
	if err != nil {
		t.Fatalf("unknown contract must not error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no ledger rows, got %d", len(rows))
	}

	if saved, _ := ms.ListCommissionsByContract(context.Background(), "ghost"); len(saved) != 0 {
		t.Error("no-op payment must not touch the ledger")
	}
}

func TestUpdateAfterPayment_EmptyContractID(t *testing.T) {
	svc, _ := newTestService(t)

	rows, err := svc.UpdateAfterPayment(context.Background(), "", dp("1000"), dp("500"))
	if err != nil {
		t.Fatalf("empty contract ID must not error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no ledger rows, got %d", len(rows))
	}
}

func TestUpdateAfterPayment_SoloAgentGetsFloorRate(t *testing.T) {
	// Agent with no team degrades to a synthetic single-agent rule at the
	// floor rate: 10% of the invoice in full.
	ms := store.NewMemoryStore()
	ms.PutUser(model.User{ID: "u9", Name: "solo"})
	ms.PutAgent(model.Agent{ID: "a9", UserID: "u9", TeamRole: "senior"})
	ms.PutContract(model.Contract{ID: "c9", AgentID: "a9", Status: "active"})
	svc := commission.NewService(ms, nil)

	rows, err := svc.UpdateAfterPayment(context.Background(), "c9", dp("1000"), dp("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(rows))
	}
	if !rows[0].TotalCommission.Equal(d("100")) {
		t.Errorf("solo agent total = %s, want 100.00", rows[0].TotalCommission)
	}
	if !rows[0].PendingCommission.IsZero() {
		t.Errorf("fully paid commission must have zero pending, got %s", rows[0].PendingCommission)
	}
}

// --- Query operations ---

func TestContractAgentCommission(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.ContractAgentCommission(context.Background(), "c1", dp("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("60")) {
		t.Errorf("contract agent commission = %s, want 60.00", got)
	}
}

func TestContractAgentCommission_UnknownContract(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.ContractAgentCommission(context.Background(), "ghost", dp("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected 0.00 for unknown contract, got %s", got)
	}
}

func TestCalculateAgentCommission_TeamScoped(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.CalculateAgentCommission(context.Background(), "t1", "a2", dp("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("40")) {
		t.Errorf("a2 team commission = %s, want 40.00", got)
	}
}

func TestCalculateAgentCommission_EmptyAgentID(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.CalculateAgentCommission(context.Background(), "t1", "", dp("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected 0.00 for empty agent ID, got %s", got)
	}
}

func TestCalculateTeamCommission(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.CalculateTeamCommission(context.Background(), "t1", dp("1000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Team rate clamps to the 0.10 floor.
	if !got.Equal(d("100")) {
		t.Errorf("team commission = %s, want 100.00", got)
	}
}

func TestCalculateTeamCommission_NilAmount(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.CalculateTeamCommission(context.Background(), "t1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected 0.00 for nil amount, got %s", got)
	}
}

func TestCalculateTeamCommission_EmptyTeamUsesFloor(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.CalculateTeamCommission(context.Background(), "no-such-team", dp("250"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("25")) {
		t.Errorf("memberless team commission = %s, want 25.00 (floor rate)", got)
	}
}

func TestDefaultCommission(t *testing.T) {
	svc, _ := newTestService(t)

	if got := svc.DefaultCommission(dp("250")); !got.Equal(d("25")) {
		t.Errorf("default commission = %s, want 25.00", got)
	}
	if got := svc.DefaultCommission(nil); !got.IsZero() {
		t.Errorf("default commission for nil amount = %s, want 0.00", got)
	}
}
