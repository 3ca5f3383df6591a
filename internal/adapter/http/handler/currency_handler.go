package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goeconomy/internal/adapter/http/dto"
	"github.com/iho/goeconomy/internal/domain"
)

// CurrencyService defines the behavior needed by CurrencyHandler.
type CurrencyService interface {
	Register(ctx context.Context, currency *domain.Currency) error
	Find(identifier string) (*domain.Currency, bool)
	Currencies() []*domain.Currency
	CurrenciesFor(region string) []*domain.Currency
}

// CurrencyHandler handles currency-related HTTP requests.
type CurrencyHandler struct {
	currencies CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencies CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencies: currencies}
}

// Create registers a currency.
func (h *CurrencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Identifier == "" {
		writeError(w, http.StatusBadRequest, "missing currency identifier", "")
		return
	}

	currency := domain.NewCurrency(req.Identifier, req.Display, req.DisplayPlural, req.Scale)
	currency.DisplayMinor = req.DisplayMinor
	currency.DisplayMinorPlural = req.DisplayMinorPlural
	currency.Symbol = req.Symbol
	currency.Starting = req.Starting
	currency.GlobalDefault = req.GlobalDefault

	if req.Type != "" {
		currency.Type = req.Type
	}

	for region, setting := range req.Regions {
		currency.Regions[region] = domain.RegionSetting{Enabled: setting.Enabled, Default: setting.Default}
	}

	if err := h.currencies.Register(r.Context(), currency); err != nil {
		writeError(w, mapDomainError(err), "failed to register currency", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CurrencyFromDomain(currency))
}

// Get retrieves a currency by identifier.
func (h *CurrencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, ok := h.currencies.Find(chi.URLParam(r, "identifier"))
	if !ok {
		writeError(w, http.StatusNotFound, "currency not found", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyFromDomain(currency))
}

// List lists currencies, optionally filtered to one region.
func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	var currencies []*domain.Currency
	if region != "" {
		currencies = h.currencies.CurrenciesFor(region)
	} else {
		currencies = h.currencies.Currencies()
	}

	writeJSON(w, http.StatusOK, dto.CurrenciesFromDomain(currencies))
}
