// Package model defines the core domain types shared across the commission engine.
// All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission is the running ledger of earned/paid/pending commission for one
// agent on one contract. At most one row exists per (agent, contract) pair;
// balances are updated additively on every payment event.
// Invariant: PendingCommission = max(0, TotalCommission - PaidCommission).
type Commission struct {
	ID                string          `json:"id" db:"id"`
	AgentID           string          `json:"agent_id" db:"agent_id"`
	ContractID        string          `json:"contract_id" db:"contract_id"`
	TotalCommission   decimal.Decimal `json:"total_commission" db:"total_commission"`
	PaidCommission    decimal.Decimal `json:"paid_commission" db:"paid_commission"`
	PendingCommission decimal.Decimal `json:"pending_commission" db:"pending_commission"`
	LastUpdated       time.Time       `json:"last_updated" db:"last_updated"`
}

// Contract is a read-only view of a sales contract. The commission engine
// only needs the responsible agent; everything else belongs to the contract
// service that owns these records.
type Contract struct {
	ID         string          `json:"id" db:"id"`
	CustomerID string          `json:"customer_id" db:"customer_id"`
	AgentID    string          `json:"agent_id" db:"agent_id"`
	Value      decimal.Decimal `json:"value" db:"value"`
	Status     string          `json:"status" db:"status"` // "active", "closed"
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Agent is a read-only view of a sales agent. TeamRole is free text
// ("Senior Sales", "junior agent", "Stagiaire", ...) and drives the
// commission rate lookup by substring match.
type Agent struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	TeamRole  string    `json:"team_role" db:"team_role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// User is a read-only view of a user account. TeamID is empty for users
// without a team assignment.
type User struct {
	ID     string `json:"id" db:"id"`
	TeamID string `json:"team_id" db:"team_id"`
	Name   string `json:"name" db:"name"`
	Email  string `json:"email" db:"email"`
}

// Team is a read-only view of a sales team.
type Team struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
