package commission

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agentdesk/commission-engine/internal/model"
	"github.com/agentdesk/commission-engine/internal/store"
)

// --- Request/Response types ---

// PaymentRequest is the JSON body for POST /api/v1/payments.
// Amounts are optional: a payment event with no amounts still touches the
// ledger rows for the contract's team (with zero deltas).
type PaymentRequest struct {
	ContractID    string           `json:"contract_id"`
	InvoiceAmount *decimal.Decimal `json:"invoice_amount"`
	AmountPaid    *decimal.Decimal `json:"amount_paid"`
}

// AmountResponse is the JSON body for single-amount query results.
type AmountResponse struct {
	Commission decimal.Decimal `json:"commission"`
}

// --- HTTP Handlers ---

// ApplyPayment handles POST /api/v1/payments
// Distributes a payment event across the contract's team and returns the
// updated ledger rows.
func (s *Service) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContractID == "" {
		writeError(w, "contract_id is required", http.StatusBadRequest)
		return
	}

	rows, err := s.UpdateAfterPayment(r.Context(), req.ContractID, req.InvoiceAmount, req.AmountPaid)
	if err != nil {
		writeError(w, "failed to apply payment", http.StatusInternalServerError)
		return
	}

	slog.Info("payment applied",
		"contract", req.ContractID,
		"rows", len(rows),
	)

	writeJSON(w, http.StatusOK, rows)
}

// GetContractCommission handles GET /api/v1/contracts/{contractID}/commission?amount=
// Returns the responsible agent's share of the given amount.
func (s *Service) GetContractCommission(w http.ResponseWriter, r *http.Request) {
	amount, ok := amountQuery(w, r)
	if !ok {
		return
	}

	commission, err := s.ContractAgentCommission(r.Context(), chi.URLParam(r, "contractID"), amount)
	if err != nil {
		writeError(w, "failed to calculate commission", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Commission: commission})
}

// GetTeamCommission handles GET /api/v1/teams/{teamID}/commission?amount=
func (s *Service) GetTeamCommission(w http.ResponseWriter, r *http.Request) {
	amount, ok := amountQuery(w, r)
	if !ok {
		return
	}

	commission, err := s.CalculateTeamCommission(r.Context(), chi.URLParam(r, "teamID"), amount)
	if err != nil {
		writeError(w, "failed to calculate commission", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Commission: commission})
}

// GetAgentTeamCommission handles
// GET /api/v1/teams/{teamID}/agents/{agentID}/commission?amount=
// Returns one agent's share under the team rule.
func (s *Service) GetAgentTeamCommission(w http.ResponseWriter, r *http.Request) {
	amount, ok := amountQuery(w, r)
	if !ok {
		return
	}

	commission, err := s.CalculateAgentCommission(r.Context(),
		chi.URLParam(r, "teamID"), chi.URLParam(r, "agentID"), amount)
	if err != nil {
		writeError(w, "failed to calculate commission", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Commission: commission})
}

// GetDefaultCommission handles GET /api/v1/commissions/default?amount=
// Returns amount × the floor rate, for aggregations that need no per-agent
// detail.
func (s *Service) GetDefaultCommission(w http.ResponseWriter, r *http.Request) {
	amount, ok := amountQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AmountResponse{Commission: s.DefaultCommission(amount)})
}

// ListAgentCommissions handles GET /api/v1/agents/{agentID}/commissions
func (s *Service) ListAgentCommissions(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListCommissionsByAgent(r.Context(), chi.URLParam(r, "agentID"))
	if err != nil {
		writeError(w, "failed to list commissions", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []model.Commission{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// ListContractCommissions handles GET /api/v1/contracts/{contractID}/commissions
func (s *Service) ListContractCommissions(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListCommissionsByContract(r.Context(), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, "failed to list commissions", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []model.Commission{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// DeleteCommission handles DELETE /api/v1/commissions/{commissionID}
// Explicit ledger CRUD; the engine itself never deletes rows.
func (s *Service) DeleteCommission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "commissionID")

	if err := s.store.DeleteCommission(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, "commission not found", http.StatusNotFound)
			return
		}
		writeError(w, "failed to delete commission", http.StatusInternalServerError)
		return
	}

	slog.Info("commission deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// amountQuery parses the optional ?amount= query parameter. A missing
// parameter is a nil amount (degrades to the documented zero results);
// a malformed one is a 400.
func amountQuery(w http.ResponseWriter, r *http.Request) (*decimal.Decimal, bool) {
	raw := r.URL.Query().Get("amount")
	if raw == "" {
		return nil, true
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(w, "invalid amount: "+raw, http.StatusBadRequest)
		return nil, false
	}
	return &amount, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
