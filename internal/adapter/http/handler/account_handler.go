package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goeconomy/internal/adapter/http/dto"
	"github.com/iho/goeconomy/internal/domain"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, identifier, name string) domain.AccountResponse
	FindAccount(ctx context.Context, identifier string) (*domain.Account, bool)
	DeleteAccount(ctx context.Context, identifier string) error
	Accounts() []*domain.Account
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Identifier == "" {
		req.Identifier = req.Name
	}

	result := h.accounts.CreateAccount(r.Context(), req.Identifier, req.Name)

	resp := dto.CreateAccountResponse{Result: result.String()}

	switch result {
	case domain.AccountCreated:
		if account, ok := h.accounts.FindAccount(r.Context(), req.Identifier); ok {
			resp.Account = dto.AccountFromDomain(account)
		}

		writeJSON(w, http.StatusCreated, resp)
	case domain.AccountAlreadyExists:
		writeJSON(w, http.StatusConflict, resp)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	}
}

// Get retrieves an account by identifier.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "missing account identifier", "")
		return
	}

	account, ok := h.accounts.FindAccount(r.Context(), identifier)
	if !ok {
		writeError(w, http.StatusNotFound, "account not found", identifier)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists every known account.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts := h.accounts.Accounts()

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Delete removes an account.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "missing account identifier", "")
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), identifier); err != nil {
		writeError(w, mapDomainError(err), "failed to delete account", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
