package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/adapter/http/dto"
	"github.com/iho/goeconomy/internal/domain"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Process(ctx context.Context, transaction *domain.Transaction) (*domain.Result, error)
	BuildTransfer(from, to *domain.Account, region, currency string, amount decimal.Decimal, typeName, source string) (*domain.Transaction, error)
	GetReceipt(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	ListReceiptsByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Receipt, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	accounts     AccountService
	transactions TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(accounts AccountService, transactions TransactionService) *TransactionHandler {
	return &TransactionHandler{
		accounts:     accounts,
		transactions: transactions,
	}
}

// Create builds a transfer from the request and runs it through the
// pipeline. A rejected transaction is a 422 carrying the failed check's
// message, not an error.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var from, to *domain.Account

	if req.From != "" {
		account, ok := h.accounts.FindAccount(r.Context(), req.From)
		if !ok {
			writeError(w, http.StatusNotFound, "sender not found", req.From)
			return
		}
		from = account
	}

	if req.To != "" {
		account, ok := h.accounts.FindAccount(r.Context(), req.To)
		if !ok {
			writeError(w, http.StatusNotFound, "recipient not found", req.To)
			return
		}
		to = account
	}

	transaction, err := h.transactions.BuildTransfer(from, to, req.Region, req.Currency, req.Amount, req.Type, req.Source)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build transaction", err.Error())
		return
	}

	result, err := h.transactions.Process(r.Context(), transaction)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to process transaction", err.Error())
		return
	}

	resp := dto.TransactionResultResponse{
		Committed: result.Committed,
		Message:   result.Message,
	}

	if result.Receipt != nil {
		resp.Receipt = dto.ReceiptFromDomain(result.Receipt)
	}

	if !result.Committed {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetReceipt retrieves a receipt by id.
func (h *TransactionHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid receipt id", err.Error())
		return
	}

	receipt, err := h.transactions.GetReceipt(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get receipt", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptFromDomain(receipt))
}

// ListByAccount lists receipts referencing an account.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accounts.FindAccount(r.Context(), chi.URLParam(r, "identifier"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	receipts, err := h.transactions.ListReceiptsByAccount(r.Context(), account.ID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list receipts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptsFromDomain(receipts))
}
