package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/infrastructure/metrics"
)

// CurrencyUseCase is the currency registry. It holds currency definitions
// and currency-type strategies, and resolves defaults per region.
type CurrencyUseCase struct {
	mu          sync.RWMutex
	currencies  map[uuid.UUID]*domain.Currency
	identifiers map[string]uuid.UUID
	order       []uuid.UUID
	types       map[string]CurrencyType

	repo    CurrencyRepository
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewCurrencyUseCase creates a registry with the built-in currency types
// registered. repo may be nil when persistence is not wired.
func NewCurrencyUseCase(repo CurrencyRepository, items ItemProvider, experience ExperienceProvider, logger zerolog.Logger) *CurrencyUseCase {
	uc := &CurrencyUseCase{
		currencies:  make(map[uuid.UUID]*domain.Currency),
		identifiers: make(map[string]uuid.UUID),
		types:       make(map[string]CurrencyType),
		repo:        repo,
		logger:      logger,
	}

	uc.RegisterType(VirtualType{})
	uc.RegisterType(ItemType{Items: items})
	uc.RegisterType(ExperienceType{Experience: experience})
	uc.RegisterType(MixedType{Items: items})

	return uc
}

// WithMetrics attaches registry counters.
func (uc *CurrencyUseCase) WithMetrics(m *metrics.Metrics) *CurrencyUseCase {
	uc.metrics = m

	return uc
}

// Register inserts a currency by uid and by short identifier. Identifier
// collisions overwrite the identifier mapping; callers must keep identifiers
// unique in practice.
func (uc *CurrencyUseCase) Register(ctx context.Context, currency *domain.Currency) error {
	if err := domain.ValidateCurrencyIdentifier(currency.Identifier); err != nil {
		return err
	}

	uc.mu.Lock()
	if _, exists := uc.currencies[currency.UID]; !exists {
		uc.order = append(uc.order, currency.UID)
	}

	uc.currencies[currency.UID] = currency
	uc.identifiers[currency.Identifier] = currency.UID
	uc.mu.Unlock()

	if uc.repo != nil {
		if err := uc.repo.Save(ctx, currency); err != nil {
			uc.logger.Error().Err(err).Str("currency", currency.Identifier).Msg("failed to persist currency")
		}
	}

	if uc.metrics != nil {
		uc.metrics.CurrenciesRegistered.Inc()
	}

	return nil
}

// FindByUID returns the registered currency for uid.
func (uc *CurrencyUseCase) FindByUID(uid uuid.UUID) (*domain.Currency, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	currency, ok := uc.currencies[uid]

	return currency, ok
}

// Find resolves a currency by uid string or short identifier.
func (uc *CurrencyUseCase) Find(identifier string) (*domain.Currency, bool) {
	if uid, err := uuid.Parse(identifier); err == nil {
		return uc.FindByUID(uid)
	}

	uc.mu.RLock()
	defer uc.mu.RUnlock()

	uid, ok := uc.identifiers[identifier]
	if !ok {
		return nil, false
	}

	currency, ok := uc.currencies[uid]

	return currency, ok
}

// DefaultCurrency returns the global default. Ties between multiple flagged
// currencies break on registration order, which is stable; with nothing
// flagged the first registered currency wins.
func (uc *CurrencyUseCase) DefaultCurrency() (*domain.Currency, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	for _, uid := range uc.order {
		if uc.currencies[uid].GlobalDefault {
			return uc.currencies[uid], true
		}
	}

	if len(uc.order) == 0 {
		return nil, false
	}

	return uc.currencies[uc.order[0]], true
}

// DefaultCurrencyFor returns the currency flagged default for region,
// falling back to the global default.
func (uc *CurrencyUseCase) DefaultCurrencyFor(region string) (*domain.Currency, bool) {
	uc.mu.RLock()
	for _, uid := range uc.order {
		if uc.currencies[uid].IsRegionDefault(region) {
			currency := uc.currencies[uid]
			uc.mu.RUnlock()

			return currency, true
		}
	}
	uc.mu.RUnlock()

	return uc.DefaultCurrency()
}

// CurrenciesFor returns every currency enabled in region, in registration
// order.
func (uc *CurrencyUseCase) CurrenciesFor(region string) []*domain.Currency {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	var currencies []*domain.Currency
	for _, uid := range uc.order {
		if uc.currencies[uid].RegionEnabled(region) {
			currencies = append(currencies, uc.currencies[uid])
		}
	}

	return currencies
}

// Currencies returns every registered currency in registration order.
func (uc *CurrencyUseCase) Currencies() []*domain.Currency {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	currencies := make([]*domain.Currency, 0, len(uc.order))
	for _, uid := range uc.order {
		currencies = append(currencies, uc.currencies[uid])
	}

	return currencies
}

// FindByItem returns the first item-backed currency with a denomination
// matching the item's material.
func (uc *CurrencyUseCase) FindByItem(item Item) (*domain.Currency, bool) {
	return uc.FindByMaterial(item.Material())
}

// FindByMaterial returns the first item-backed currency with a denomination
// matching material. Linear over currencies and denominations.
func (uc *CurrencyUseCase) FindByMaterial(material string) (*domain.Currency, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	for _, uid := range uc.order {
		currency := uc.currencies[uid]
		if !currency.IsItemBacked() {
			continue
		}

		if _, ok := currency.DenominationByMaterial(material); ok {
			return currency, true
		}
	}

	return nil, false
}

// FindOrDefault returns the registered currency for uid, or a transient
// currency object for the caller's immediate use. Transient currencies are
// never registered or persisted.
func (uc *CurrencyUseCase) FindOrDefault(uid uuid.UUID, item bool) *domain.Currency {
	if currency, ok := uc.FindByUID(uid); ok {
		return currency
	}

	transient := domain.NewCurrency("", "Dollar", "Dollars", 2)
	transient.Transient = true
	if item {
		transient.Type = domain.CurrencyTypeItem
	}

	return transient
}

// RegisterType adds a currency-type strategy.
func (uc *CurrencyUseCase) RegisterType(t CurrencyType) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.types[t.Name()] = t
}

// FindType returns the currency-type strategy for name.
func (uc *CurrencyUseCase) FindType(name string) (CurrencyType, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	t, ok := uc.types[name]

	return t, ok
}

// Delete removes a currency from the registry and storage.
func (uc *CurrencyUseCase) Delete(ctx context.Context, uid uuid.UUID) {
	uc.mu.Lock()
	currency, ok := uc.currencies[uid]
	if ok {
		delete(uc.currencies, uid)
		delete(uc.identifiers, currency.Identifier)

		for i, id := range uc.order {
			if id == uid {
				uc.order = append(uc.order[:i], uc.order[i+1:]...)
				break
			}
		}
	}
	uc.mu.Unlock()

	if ok && uc.repo != nil {
		if err := uc.repo.Delete(ctx, uid); err != nil {
			uc.logger.Error().Err(err).Str("uid", uid.String()).Msg("failed to delete currency")
		}
	}
}

// LoadAll replaces the registry contents with persisted currencies.
func (uc *CurrencyUseCase) LoadAll(ctx context.Context) error {
	if uc.repo == nil {
		return nil
	}

	currencies, err := uc.repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.currencies = make(map[uuid.UUID]*domain.Currency, len(currencies))
	uc.identifiers = make(map[string]uuid.UUID, len(currencies))
	uc.order = uc.order[:0]

	for _, currency := range currencies {
		uc.currencies[currency.UID] = currency
		uc.identifiers[currency.Identifier] = currency.UID
		uc.order = append(uc.order, currency.UID)
	}

	return nil
}
