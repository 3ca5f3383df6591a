package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/adapter/http/dto"
	"github.com/iho/goeconomy/internal/domain"
)

// HoldingsService defines the behavior needed by BalanceHandler.
type HoldingsService interface {
	Get(account *domain.Account, region, currency string, handler domain.HoldingsHandler) (decimal.Decimal, error)
	Set(account *domain.Account, entry domain.HoldingsEntry) (bool, error)
}

// BalanceHandler handles holdings-related HTTP requests.
type BalanceHandler struct {
	accounts  AccountService
	holdings  HoldingsService
	formatter BalanceFormatter
}

// BalanceFormatter renders a holdings entry through the display template
// pipeline. Optional; without one the display field stays empty.
type BalanceFormatter interface {
	Format(account *domain.Account, entry domain.HoldingsEntry, format string) string
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(accounts AccountService, holdings HoldingsService, formatter BalanceFormatter) *BalanceHandler {
	return &BalanceHandler{
		accounts:  accounts,
		holdings:  holdings,
		formatter: formatter,
	}
}

const defaultDisplayTemplate = "<symbol><major.amount>.<minor.amount>"

// Get reads one balance for an account.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accounts.FindAccount(r.Context(), chi.URLParam(r, "identifier"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found", "")
		return
	}

	region := r.URL.Query().Get("region")
	currency := r.URL.Query().Get("currency")
	handler := domain.HoldingsHandler(r.URL.Query().Get("handler"))

	if handler == "" {
		handler = domain.HandlerNormal
	}

	amount, err := h.holdings.Get(account, region, currency, handler)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read balance", err.Error())
		return
	}

	entry := domain.HoldingsEntry{Region: region, Currency: currency, Handler: handler, Amount: amount}
	resp := dto.BalanceFromEntry(entry)

	if h.formatter != nil {
		resp.Display = h.formatter.Format(account, entry, defaultDisplayTemplate)
	}

	writeJSON(w, http.StatusOK, resp)
}

// List returns every holdings entry in an account's wallet.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accounts.FindAccount(r.Context(), chi.URLParam(r, "identifier"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found", "")
		return
	}

	entries := account.Wallet.Entries()

	balances := make([]dto.BalanceResponse, len(entries))
	for i, entry := range entries {
		balances[i] = dto.BalanceFromEntry(entry)
	}

	writeJSON(w, http.StatusOK, balances)
}

// Set overwrites one balance for an account.
func (h *BalanceHandler) Set(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accounts.FindAccount(r.Context(), chi.URLParam(r, "identifier"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found", "")
		return
	}

	var req dto.SetBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	handler := domain.HoldingsHandler(req.Handler)
	if handler == "" {
		handler = domain.HandlerNormal
	}

	entry := domain.HoldingsEntry{
		Region:   req.Region,
		Currency: req.Currency,
		Handler:  handler,
		Amount:   req.Amount,
	}

	applied, err := h.holdings.Set(account, entry)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set balance", err.Error())
		return
	}

	if !applied {
		writeError(w, http.StatusUnprocessableEntity, "balance not applied", "backing store rejected the amount")
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromEntry(entry))
}
