package store

import (
	"context"
	"sync"

	"github.com/agentdesk/commission-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu          sync.RWMutex
	contracts   map[string]*model.Contract
	agents      map[string]*model.Agent
	users       map[string]*model.User
	commissions map[string]*model.Commission // keyed by row ID
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contracts:   make(map[string]*model.Contract),
		agents:      make(map[string]*model.Agent),
		users:       make(map[string]*model.User),
		commissions: make(map[string]*model.Commission),
	}
}

// --- Seeding helpers (directory records are read-only through Store) ---

// PutContract seeds a contract record.
func (s *MemoryStore) PutContract(c model.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[c.ID] = &c
}

// PutAgent seeds an agent record.
func (s *MemoryStore) PutAgent(a model.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.ID] = &a
}

// PutUser seeds a user record.
func (s *MemoryStore) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

// --- Directory lookups ---

func (s *MemoryStore) GetContract(_ context.Context, id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (s *MemoryStore) GetAgent(_ context.Context, id string) (*model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.agents[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (s *MemoryStore) GetAgentByUser(_ context.Context, userID string) (*model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.agents {
		if a.UserID == userID {
			copy := *a
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (s *MemoryStore) ListUsersByTeam(_ context.Context, teamID string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []model.User
	for _, u := range s.users {
		if u.TeamID == teamID {
			users = append(users, *u)
		}
	}
	return users, nil
}

// --- Commission ledger ---

func (s *MemoryStore) GetCommission(_ context.Context, agentID, contractID string) (*model.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.commissions {
		if c.AgentID == agentID && c.ContractID == contractID {
			copy := *c
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetCommissionByID(_ context.Context, id string) (*model.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.commissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (s *MemoryStore) ListCommissionsByAgent(_ context.Context, agentID string) ([]model.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Commission
	for _, c := range s.commissions {
		if c.AgentID == agentID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (s *MemoryStore) ListCommissionsByContract(_ context.Context, contractID string) ([]model.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Commission
	for _, c := range s.commissions {
		if c.ContractID == contractID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (s *MemoryStore) SaveCommission(_ context.Context, c *model.Commission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *c
	s.commissions[c.ID] = &copy
	return nil
}

func (s *MemoryStore) DeleteCommission(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.commissions[id]; !ok {
		return ErrNotFound
	}
	delete(s.commissions, id)
	return nil
}
