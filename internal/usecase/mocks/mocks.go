package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/goeconomy/internal/domain"
)

// MockIdentityService is a mock implementation of IdentityService.
type MockIdentityService struct {
	mu    sync.RWMutex
	pairs map[string]uuid.UUID

	ResolveFunc func(ctx context.Context, name string) (uuid.UUID, bool, error)
	StoreFunc   func(ctx context.Context, id uuid.UUID, name string) error
}

func NewMockIdentityService() *MockIdentityService {
	return &MockIdentityService{pairs: make(map[string]uuid.UUID)}
}

func (m *MockIdentityService) Resolve(ctx context.Context, name string) (uuid.UUID, bool, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.pairs[name]
	return id, ok, nil
}

func (m *MockIdentityService) Store(ctx context.Context, id uuid.UUID, name string) error {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, id, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[name] = id
	return nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account

	SaveFunc         func(ctx context.Context, account *domain.Account) error
	SaveHoldingsFunc func(ctx context.Context, accountID uuid.UUID, entry domain.HoldingsEntry) error
	LoadAllFunc      func(ctx context.Context) ([]*domain.Account, error)
	DeleteFunc       func(ctx context.Context, id uuid.UUID) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (m *MockAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) SaveHoldings(ctx context.Context, accountID uuid.UUID, entry domain.HoldingsEntry) error {
	if m.SaveHoldingsFunc != nil {
		return m.SaveHoldingsFunc(ctx, accountID, entry)
	}
	return nil
}

func (m *MockAccountRepository) LoadAll(ctx context.Context) ([]*domain.Account, error) {
	if m.LoadAllFunc != nil {
		return m.LoadAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	return nil
}

// MockCurrencyRepository is a mock implementation of CurrencyRepository.
type MockCurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[uuid.UUID]*domain.Currency

	SaveFunc    func(ctx context.Context, currency *domain.Currency) error
	LoadAllFunc func(ctx context.Context) ([]*domain.Currency, error)
	DeleteFunc  func(ctx context.Context, uid uuid.UUID) error
}

func NewMockCurrencyRepository() *MockCurrencyRepository {
	return &MockCurrencyRepository{currencies: make(map[uuid.UUID]*domain.Currency)}
}

func (m *MockCurrencyRepository) Save(ctx context.Context, currency *domain.Currency) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currencies[currency.UID] = currency
	return nil
}

func (m *MockCurrencyRepository) LoadAll(ctx context.Context) ([]*domain.Currency, error) {
	if m.LoadAllFunc != nil {
		return m.LoadAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	currencies := make([]*domain.Currency, 0, len(m.currencies))
	for _, currency := range m.currencies {
		currencies = append(currencies, currency)
	}
	return currencies, nil
}

func (m *MockCurrencyRepository) Delete(ctx context.Context, uid uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, uid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.currencies, uid)
	return nil
}

// MockReceiptRepository is a mock implementation of ReceiptRepository.
type MockReceiptRepository struct {
	mu       sync.RWMutex
	receipts map[uuid.UUID]*domain.Receipt

	SaveFunc          func(ctx context.Context, receipt *domain.Receipt) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	ListByAccountFunc func(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Receipt, error)
}

func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{receipts: make(map[uuid.UUID]*domain.Receipt)}
}

func (m *MockReceiptRepository) Save(ctx context.Context, receipt *domain.Receipt) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, receipt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[receipt.ID] = receipt
	return nil
}

func (m *MockReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if receipt, ok := m.receipts[id]; ok {
		return receipt, nil
	}
	return nil, domain.ErrReceiptNotFound
}

func (m *MockReceiptRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Receipt, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var receipts []*domain.Receipt
	for _, receipt := range m.receipts {
		for _, p := range []*domain.Participant{receipt.Transaction.From, receipt.Transaction.To} {
			if p != nil && p.ID == accountID {
				receipts = append(receipts, receipt)
				break
			}
		}
	}
	return receipts, nil
}

// Saved returns how many receipts the mock holds.
func (m *MockReceiptRepository) Saved() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.receipts)
}

// MockDeliveryChannel is a mock implementation of DeliveryChannel. Nodes
// marked offline or failing reject sends; everything delivered is recorded
// per node in order.
type MockDeliveryChannel struct {
	mu        sync.Mutex
	nodes     []string
	offline   map[string]bool
	failing   map[string]bool
	failAfter map[string]int
	Delivered map[string][][]byte

	NodesFunc  func(ctx context.Context) ([]string, error)
	OnlineFunc func(ctx context.Context, node string) (bool, error)
	SendFunc   func(ctx context.Context, node string, payload []byte) error
}

func NewMockDeliveryChannel(nodes ...string) *MockDeliveryChannel {
	return &MockDeliveryChannel{
		nodes:     nodes,
		offline:   make(map[string]bool),
		failing:   make(map[string]bool),
		failAfter: make(map[string]int),
		Delivered: make(map[string][][]byte),
	}
}

func (m *MockDeliveryChannel) SetOffline(node string, offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline[node] = offline
}

func (m *MockDeliveryChannel) SetFailing(node string, failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[node] = failing
}

// FailAfter makes sends to node fail once n more sends have succeeded.
func (m *MockDeliveryChannel) FailAfter(node string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter[node] = n
	m.failing[node] = false
}

func (m *MockDeliveryChannel) Nodes(ctx context.Context) ([]string, error) {
	if m.NodesFunc != nil {
		return m.NodesFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.nodes...), nil
}

func (m *MockDeliveryChannel) Online(ctx context.Context, node string) (bool, error) {
	if m.OnlineFunc != nil {
		return m.OnlineFunc(ctx, node)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.offline[node], nil
}

func (m *MockDeliveryChannel) Send(ctx context.Context, node string, payload []byte) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, node, payload)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline[node] || m.failing[node] {
		return domain.ErrNodeOffline
	}

	if n, ok := m.failAfter[node]; ok {
		if n <= 0 {
			return domain.ErrNodeOffline
		}
		m.failAfter[node] = n - 1
	}

	m.Delivered[node] = append(m.Delivered[node], payload)
	return nil
}

// MockItemProvider is a mock implementation of ItemProvider backed by a
// plain count table.
type MockItemProvider struct {
	mu     sync.RWMutex
	counts map[string]decimal.Decimal

	// Full simulates containers without space: every SetCount fails.
	Full bool
}

func NewMockItemProvider() *MockItemProvider {
	return &MockItemProvider{counts: make(map[string]decimal.Decimal)}
}

func (m *MockItemProvider) key(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler) string {
	return account.ID.String() + "|" + region + "|" + currency.Identifier + "|" + string(handler)
}

func (m *MockItemProvider) Count(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler) (decimal.Decimal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	amount, ok := m.counts[m.key(account, region, currency, handler)]
	return amount, ok
}

func (m *MockItemProvider) SetCount(account *domain.Account, region string, currency *domain.Currency, handler domain.HoldingsHandler, amount decimal.Decimal) bool {
	if m.Full {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[m.key(account, region, currency, handler)] = amount
	return true
}

// MockExperienceProvider is a mock implementation of ExperienceProvider.
type MockExperienceProvider struct {
	mu       sync.RWMutex
	balances map[uuid.UUID]decimal.Decimal
}

func NewMockExperienceProvider() *MockExperienceProvider {
	return &MockExperienceProvider{balances: make(map[uuid.UUID]decimal.Decimal)}
}

func (m *MockExperienceProvider) Balance(account *domain.Account) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[account.ID]
}

func (m *MockExperienceProvider) SetBalance(account *domain.Account, amount decimal.Decimal) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account.ID] = amount
	return true
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "id-" + string(rune('0'+m.counter%10))
}
