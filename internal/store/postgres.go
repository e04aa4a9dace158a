package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/agentdesk/commission-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// --- Directory lookups ---

func (s *PostgresStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var c model.Contract
	var value string

	err := s.pool.QueryRow(ctx,
		`SELECT id, customer_id, agent_id, value::TEXT, status, created_at
		 FROM contracts WHERE id = $1`, id).
		Scan(&c.ID, &c.CustomerID, &c.AgentID, &value, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get contract %s: %w", id, notFound(err))
	}

	c.Value, _ = decimal.NewFromString(value)
	return &c, nil
}

func (s *PostgresStore) GetAgent(ctx context.Context, id string) (*model.Agent, error) {
	var a model.Agent

	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, team_role, created_at
		 FROM agents WHERE id = $1`, id).
		Scan(&a.ID, &a.UserID, &a.TeamRole, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", id, notFound(err))
	}
	return &a, nil
}

func (s *PostgresStore) GetAgentByUser(ctx context.Context, userID string) (*model.Agent, error) {
	var a model.Agent

	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, team_role, created_at
		 FROM agents WHERE user_id = $1`, userID).
		Scan(&a.ID, &a.UserID, &a.TeamRole, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get agent by user %s: %w", userID, notFound(err))
	}
	return &a, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(team_id, ''), name, email
		 FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.TeamID, &u.Name, &u.Email)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, notFound(err))
	}
	return &u, nil
}

func (s *PostgresStore) ListUsersByTeam(ctx context.Context, teamID string) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(team_id, ''), name, email
		 FROM users WHERE team_id = $1 ORDER BY id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.TeamID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- Commission ledger ---

func (s *PostgresStore) GetCommission(ctx context.Context, agentID, contractID string) (*model.Commission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, agent_id, contract_id,
		        total_commission::TEXT, paid_commission::TEXT, pending_commission::TEXT,
		        last_updated
		 FROM commissions WHERE agent_id = $1 AND contract_id = $2`, agentID, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	commissions, err := scanCommissions(rows)
	if err != nil {
		return nil, err
	}
	if len(commissions) == 0 {
		return nil, fmt.Errorf("get commission %s/%s: %w", agentID, contractID, ErrNotFound)
	}
	return &commissions[0], nil
}

func (s *PostgresStore) GetCommissionByID(ctx context.Context, id string) (*model.Commission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, agent_id, contract_id,
		        total_commission::TEXT, paid_commission::TEXT, pending_commission::TEXT,
		        last_updated
		 FROM commissions WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	commissions, err := scanCommissions(rows)
	if err != nil {
		return nil, err
	}
	if len(commissions) == 0 {
		return nil, fmt.Errorf("get commission %s: %w", id, ErrNotFound)
	}
	return &commissions[0], nil
}

func (s *PostgresStore) ListCommissionsByAgent(ctx context.Context, agentID string) ([]model.Commission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, agent_id, contract_id,
		        total_commission::TEXT, paid_commission::TEXT, pending_commission::TEXT,
		        last_updated
		 FROM commissions WHERE agent_id = $1 ORDER BY last_updated DESC`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCommissions(rows)
}

func (s *PostgresStore) ListCommissionsByContract(ctx context.Context, contractID string) ([]model.Commission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, agent_id, contract_id,
		        total_commission::TEXT, paid_commission::TEXT, pending_commission::TEXT,
		        last_updated
		 FROM commissions WHERE contract_id = $1 ORDER BY agent_id`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCommissions(rows)
}

func (s *PostgresStore) SaveCommission(ctx context.Context, c *model.Commission) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO commissions (id, agent_id, contract_id, total_commission, paid_commission, pending_commission, last_updated)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   total_commission = EXCLUDED.total_commission,
		   paid_commission = EXCLUDED.paid_commission,
		   pending_commission = EXCLUDED.pending_commission,
		   last_updated = EXCLUDED.last_updated`,
		c.ID, c.AgentID, c.ContractID,
		c.TotalCommission.String(), c.PaidCommission.String(), c.PendingCommission.String(),
		c.LastUpdated,
	)
	return err
}

func (s *PostgresStore) DeleteCommission(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM commissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete commission %s: %w", id, ErrNotFound)
	}
	return nil
}

// scanCommissions reads pgx rows into Commission slices.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanCommissions(rows pgxRows) ([]model.Commission, error) {
	var commissions []model.Commission
	for rows.Next() {
		var c model.Commission
		var totalS, paidS, pendingS string

		if err := rows.Scan(&c.ID, &c.AgentID, &c.ContractID,
			&totalS, &paidS, &pendingS, &c.LastUpdated); err != nil {
			return nil, err
		}

		c.TotalCommission, _ = decimal.NewFromString(totalS)
		c.PaidCommission, _ = decimal.NewFromString(paidS)
		c.PendingCommission, _ = decimal.NewFromString(pendingS)

		commissions = append(commissions, c)
	}
	return commissions, rows.Err()
}
