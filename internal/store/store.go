// Package store defines the persistence interface for the commission engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
//
// Directory records (contracts, agents, users) are owned by other services;
// this engine only reads them. The commission ledger is the one table the
// engine writes.
package store

import (
	"context"
	"errors"

	"github.com/agentdesk/commission-engine/internal/model"
)

// ErrNotFound is returned when a record does not exist. The rule resolver
// and the facade rely on it to degrade to defaults instead of failing.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Directory lookups (read-only) ---

	// GetContract retrieves a contract by its ID.
	GetContract(ctx context.Context, id string) (*model.Contract, error)

	// GetAgent retrieves an agent by its ID.
	GetAgent(ctx context.Context, id string) (*model.Agent, error)

	// GetAgentByUser retrieves the agent record backing a user.
	GetAgentByUser(ctx context.Context, userID string) (*model.Agent, error)

	// GetUser retrieves a user by its ID.
	GetUser(ctx context.Context, id string) (*model.User, error)

	// ListUsersByTeam returns every user assigned to a team.
	ListUsersByTeam(ctx context.Context, teamID string) ([]model.User, error)

	// --- Commission ledger ---

	// GetCommission retrieves the ledger row for one (agent, contract) pair.
	GetCommission(ctx context.Context, agentID, contractID string) (*model.Commission, error)

	// GetCommissionByID retrieves a ledger row by its row ID.
	GetCommissionByID(ctx context.Context, id string) (*model.Commission, error)

	// ListCommissionsByAgent returns an agent's ledger rows across contracts.
	ListCommissionsByAgent(ctx context.Context, agentID string) ([]model.Commission, error)

	// ListCommissionsByContract returns a contract's ledger rows across agents.
	ListCommissionsByContract(ctx context.Context, contractID string) ([]model.Commission, error)

	// SaveCommission upserts a ledger row by ID.
	SaveCommission(ctx context.Context, c *model.Commission) error

	// DeleteCommission removes a ledger row by ID.
	DeleteCommission(ctx context.Context, id string) error
}
