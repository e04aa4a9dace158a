package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentdesk/commission-engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Ledger writes go to the primary store and invalidate the cache;
// reads check Redis first then fall back to the primary. Directory records
// change rarely, so they are cached with the same TTL.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Directory lookups (read-through) ---

func (s *CachedStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var c model.Contract
	if s.readCached(ctx, contractKey(id), &c) {
		return &c, nil
	}

	contract, err := s.primary.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, contractKey(id), contract)
	return contract, nil
}

func (s *CachedStore) GetAgent(ctx context.Context, id string) (*model.Agent, error) {
	var a model.Agent
	if s.readCached(ctx, agentKey(id), &a) {
		return &a, nil
	}

	agent, err := s.primary.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, agentKey(id), agent)
	return agent, nil
}

func (s *CachedStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if s.readCached(ctx, userKey(id), &u) {
		return &u, nil
	}

	user, err := s.primary.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, userKey(id), user)
	return user, nil
}

// --- Passthrough (not cached) ---

// GetAgentByUser bypasses the cache: the user→agent mapping is only read
// during rule resolution, which already runs a team-wide query.
func (s *CachedStore) GetAgentByUser(ctx context.Context, userID string) (*model.Agent, error) {
	return s.primary.GetAgentByUser(ctx, userID)
}

func (s *CachedStore) ListUsersByTeam(ctx context.Context, teamID string) ([]model.User, error) {
	return s.primary.ListUsersByTeam(ctx, teamID)
}

func (s *CachedStore) ListCommissionsByAgent(ctx context.Context, agentID string) ([]model.Commission, error) {
	return s.primary.ListCommissionsByAgent(ctx, agentID)
}

func (s *CachedStore) ListCommissionsByContract(ctx context.Context, contractID string) ([]model.Commission, error) {
	return s.primary.ListCommissionsByContract(ctx, contractID)
}

// --- Ledger (write to primary, invalidate cache) ---

func (s *CachedStore) GetCommission(ctx context.Context, agentID, contractID string) (*model.Commission, error) {
	var c model.Commission
	if s.readCached(ctx, commissionKey(agentID, contractID), &c) {
		return &c, nil
	}

	commission, err := s.primary.GetCommission(ctx, agentID, contractID)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, commissionKey(agentID, contractID), commission)
	return commission, nil
}

func (s *CachedStore) SaveCommission(ctx context.Context, c *model.Commission) error {
	if err := s.primary.SaveCommission(ctx, c); err != nil {
		return err
	}
	// Invalidate; next read re-populates with the stored row.
	s.rdb.Del(ctx, commissionKey(c.AgentID, c.ContractID))
	return nil
}

func (s *CachedStore) GetCommissionByID(ctx context.Context, id string) (*model.Commission, error) {
	return s.primary.GetCommissionByID(ctx, id)
}

func (s *CachedStore) DeleteCommission(ctx context.Context, id string) error {
	// Look the row up first so the (agent, contract) cache entry can be
	// invalidated alongside the delete.
	c, lookupErr := s.primary.GetCommissionByID(ctx, id)

	if err := s.primary.DeleteCommission(ctx, id); err != nil {
		return err
	}
	if lookupErr == nil {
		s.rdb.Del(ctx, commissionKey(c.AgentID, c.ContractID))
	}
	return nil
}

// --- Cache helpers ---

func (s *CachedStore) readCached(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (s *CachedStore) writeCached(ctx context.Context, key string, value interface{}) {
	if data, err := json.Marshal(value); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

func contractKey(id string) string  { return fmt.Sprintf("contract:%s", id) }
func agentKey(id string) string     { return fmt.Sprintf("agent:%s", id) }
func userKey(id string) string      { return fmt.Sprintf("user:%s", id) }
func commissionKey(agentID, contractID string) string {
	return fmt.Sprintf("commission:%s:%s", agentID, contractID)
}
