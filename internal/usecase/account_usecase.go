package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iho/goeconomy/internal/domain"
	"github.com/iho/goeconomy/internal/infrastructure/metrics"
)

// AccountType is one (kind, predicate, constructor) registration in the
// directory's ordered classification list. The first predicate accepting a
// name decides the account kind; first match wins.
type AccountType struct {
	Kind      string
	Check     func(name string) bool
	Construct func(name string) (*domain.Account, error)
}

// AccountUseCase is the account directory. It resolves external identifiers
// to accounts and classifies new non-player accounts through the ordered
// predicate list.
type AccountUseCase struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	byID     map[uuid.UUID]*domain.Account
	types    []AccountType

	identity IdentityService
	repo     AccountRepository
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewAccountUseCase creates a directory with the catch-all non-player type
// registered: anything that is not a valid external-id form constructs a
// plain shared account, so non-id-shaped names always classify.
func NewAccountUseCase(identity IdentityService, repo AccountRepository, logger zerolog.Logger) *AccountUseCase {
	uc := &AccountUseCase{
		accounts: make(map[string]*domain.Account),
		byID:     make(map[uuid.UUID]*domain.Account),
		identity: identity,
		repo:     repo,
		logger:   logger,
	}

	uc.types = append(uc.types, AccountType{
		Kind:  domain.AccountKindNonPlayer,
		Check: func(name string) bool { return !domain.ValidExternalID(name) },
		Construct: func(name string) (*domain.Account, error) {
			return domain.NewNonPlayerAccount(domain.AccountKindNonPlayer, name), nil
		},
	})

	return uc
}

// AddAccountType registers a third-party account type. New registrations go
// in front of the catch-all so it stays the final fallback.
func (uc *AccountUseCase) AddAccountType(t AccountType) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	last := len(uc.types) - 1
	uc.types = append(uc.types[:last], t, uc.types[last])
}

// FindAccountByID resolves an account by its stable id. Exact match only;
// never creates as a side effect.
func (uc *AccountUseCase) FindAccountByID(id uuid.UUID) (*domain.Account, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	account, ok := uc.byID[id]

	return account, ok
}

// FindAccount resolves an account by identifier: first an exact directory
// match, which covers non-player accounts keyed by name, then the identity
// service, retrying the result as an id lookup.
func (uc *AccountUseCase) FindAccount(ctx context.Context, identifier string) (*domain.Account, bool) {
	uc.mu.RLock()
	account, ok := uc.accounts[identifier]
	uc.mu.RUnlock()

	if ok {
		return account, true
	}

	if uc.identity == nil {
		return nil, false
	}

	id, ok, err := uc.identity.Resolve(ctx, identifier)
	if err != nil || !ok {
		return nil, false
	}

	return uc.FindAccountByID(id)
}

// CreateAccount creates a new account for identifier and name. A valid
// external-id identifier with a well-formed name creates a player account
// and registers the id/name pair; everything else walks the ordered type
// list. Nothing is registered on failure.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, identifier, name string) domain.AccountResponse {
	uc.mu.RLock()
	_, exists := uc.accounts[identifier]
	uc.mu.RUnlock()

	if exists {
		return domain.AccountAlreadyExists
	}

	var account *domain.Account

	if domain.ValidExternalID(identifier) && domain.ValidateAccountName(name) == nil {
		id, err := uuid.Parse(identifier)
		if err != nil {
			return domain.AccountCreationFailed
		}

		account = domain.NewPlayerAccount(id, name)

		if uc.identity != nil {
			if err := uc.identity.Store(ctx, id, name); err != nil {
				uc.logger.Error().Err(err).Str("name", name).Msg("failed to store identity pair")
				return domain.AccountCreationFailed
			}
		}
	} else {
		created, err := uc.createNonPlayerAccount(name)
		if err != nil {
			uc.logger.Error().Err(err).Str("name", name).Msg("failed to create non-player account")
			return domain.AccountCreationFailed
		}

		account = created
	}

	// The early read-lock check is only a fast path; a concurrent create for
	// the same identifier may have won while this one was constructing the
	// account, so insertion re-checks under the write lock.
	uc.mu.Lock()
	if _, exists := uc.accounts[account.Identifier()]; exists {
		uc.mu.Unlock()
		return domain.AccountAlreadyExists
	}
	uc.accounts[account.Identifier()] = account
	uc.byID[account.ID] = account
	uc.mu.Unlock()

	uc.persist(ctx, account)

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
		uc.metrics.AccountOperations.WithLabelValues("create").Inc()
	}

	return domain.AccountCreated
}

// WithMetrics attaches directory counters.
func (uc *AccountUseCase) WithMetrics(m *metrics.Metrics) *AccountUseCase {
	uc.metrics = m

	return uc
}

// createNonPlayerAccount walks the ordered type list and constructs the
// first type whose predicate accepts name.
func (uc *AccountUseCase) createNonPlayerAccount(name string) (*domain.Account, error) {
	uc.mu.RLock()
	types := make([]AccountType, len(uc.types))
	copy(types, uc.types)
	uc.mu.RUnlock()

	for _, t := range types {
		if !t.Check(name) {
			continue
		}

		account, err := t.Construct(name)
		if err != nil {
			return nil, err
		}

		return account, nil
	}

	return nil, domain.ErrNoAccountType
}

// DeleteAccount removes an account explicitly. Accounts are never deleted as
// a side effect of anything else.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, identifier string) error {
	uc.mu.Lock()
	account, ok := uc.accounts[identifier]
	if ok {
		delete(uc.accounts, identifier)
		delete(uc.byID, account.ID)
	}
	uc.mu.Unlock()

	if !ok {
		return domain.ErrAccountNotFound
	}

	if uc.repo != nil {
		if err := uc.repo.Delete(ctx, account.ID); err != nil {
			uc.logger.Error().Err(err).Str("account", account.ID.String()).Msg("failed to delete account")
		}
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("delete").Inc()
	}

	return nil
}

// Accounts returns a snapshot of every account in the directory.
func (uc *AccountUseCase) Accounts() []*domain.Account {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(uc.accounts))
	for _, account := range uc.accounts {
		accounts = append(accounts, account)
	}

	return accounts
}

// LoadAll replaces the directory contents with persisted accounts.
func (uc *AccountUseCase) LoadAll(ctx context.Context) error {
	if uc.repo == nil {
		return nil
	}

	accounts, err := uc.repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.accounts = make(map[string]*domain.Account, len(accounts))
	uc.byID = make(map[uuid.UUID]*domain.Account, len(accounts))

	for _, account := range accounts {
		uc.accounts[account.Identifier()] = account
		uc.byID[account.ID] = account
	}

	return nil
}

func (uc *AccountUseCase) persist(ctx context.Context, account *domain.Account) {
	if uc.repo == nil {
		return
	}

	if err := uc.repo.Save(ctx, account); err != nil {
		uc.logger.Error().Err(err).Str("account", account.ID.String()).Msg("failed to persist account")
	}
}
