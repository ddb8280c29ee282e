package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
)

// MockItemRepository is an in-memory implementation of ItemRepository.
type MockItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, item *domain.Item) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Item, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Item, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.ItemStatus, updatedAt time.Time) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
	ListFunc             func(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error)
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[string]*domain.Item),
	}
}

// Put stores item directly, bypassing CreateFunc.
func (m *MockItemRepository) Put(item *domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	m.items[item.ID] = &cp
}

func (m *MockItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.Item) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, item)
	}
	m.Put(item)
	return nil
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, domain.ErrItemNotFound
}

func (m *MockItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Item, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockItemRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ItemStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	item.Status = status
	item.UpdatedAt = updatedAt
	return nil
}

func (m *MockItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockItemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.Item
	for _, item := range m.items {
		if filter.ClientID != "" && item.ClientID != filter.ClientID {
			continue
		}
		if filter.AccountID != "" && item.AccountID != filter.AccountID {
			continue
		}
		if filter.Role != "" && item.Role != filter.Role {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		cp := *item
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return nil, nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

// MockScheduleLineRepository is an in-memory implementation of ScheduleLineRepository.
type MockScheduleLineRepository struct {
	mu    sync.RWMutex
	lines map[string][]domain.ScheduleLine

	InsertFunc       func(ctx context.Context, tx usecase.Transaction, itemID string, lines []domain.ScheduleLine) error
	ReplaceFunc      func(ctx context.Context, tx usecase.Transaction, itemID string, lines []domain.ScheduleLine) error
	ListByItemFunc   func(ctx context.Context, itemID string) ([]domain.ScheduleLine, error)
	ListByItemsFunc  func(ctx context.Context, itemIDs []string) (map[string][]domain.ScheduleLine, error)
	ReplaceCallCount int
}

func NewMockScheduleLineRepository() *MockScheduleLineRepository {
	return &MockScheduleLineRepository{
		lines: make(map[string][]domain.ScheduleLine),
	}
}

func (m *MockScheduleLineRepository) Insert(ctx context.Context, tx usecase.Transaction, itemID string, lines []domain.ScheduleLine) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, itemID, lines)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lines[itemID]; ok {
		return fmt.Errorf("schedule for %s already exists", itemID)
	}
	m.lines[itemID] = domain.CloneLines(lines)
	return nil
}

func (m *MockScheduleLineRepository) Replace(ctx context.Context, tx usecase.Transaction, itemID string, lines []domain.ScheduleLine) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, tx, itemID, lines)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCallCount++
	m.lines[itemID] = domain.CloneLines(lines)
	return nil
}

func (m *MockScheduleLineRepository) ListByItem(ctx context.Context, itemID string) ([]domain.ScheduleLine, error) {
	if m.ListByItemFunc != nil {
		return m.ListByItemFunc(ctx, itemID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.CloneLines(m.lines[itemID]), nil
}

func (m *MockScheduleLineRepository) ListByItemTx(ctx context.Context, tx usecase.Transaction, itemID string) ([]domain.ScheduleLine, error) {
	return m.ListByItem(ctx, itemID)
}

func (m *MockScheduleLineRepository) ListByItems(ctx context.Context, itemIDs []string) (map[string][]domain.ScheduleLine, error) {
	if m.ListByItemsFunc != nil {
		return m.ListByItemsFunc(ctx, itemIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]domain.ScheduleLine, len(itemIDs))
	for _, id := range itemIDs {
		if lines, ok := m.lines[id]; ok {
			out[id] = domain.CloneLines(lines)
		}
	}
	return out, nil
}

// MockLedgerBalanceRepository is an in-memory implementation of LedgerBalanceRepository.
type MockLedgerBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]*domain.LedgerBalance

	UpsertFunc func(ctx context.Context, balance *domain.LedgerBalance) error
}

func NewMockLedgerBalanceRepository() *MockLedgerBalanceRepository {
	return &MockLedgerBalanceRepository{
		balances: make(map[string]*domain.LedgerBalance),
	}
}

func ledgerKey(clientID, accountID string, periodEnd time.Time) string {
	return clientID + "|" + accountID + "|" + periodEnd.Format(domain.DateLayout)
}

func (m *MockLedgerBalanceRepository) Upsert(ctx context.Context, balance *domain.LedgerBalance) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *balance
	m.balances[ledgerKey(balance.ClientID, balance.AccountID, balance.PeriodEnd)] = &cp
	return nil
}

func (m *MockLedgerBalanceRepository) Get(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.LedgerBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.balances[ledgerKey(clientID, accountID, periodEnd)]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrLedgerBalanceNotFound
}

func (m *MockLedgerBalanceRepository) ListFrom(ctx context.Context, clientID, accountID string, from time.Time) ([]*domain.LedgerBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerBalance
	for _, b := range m.balances {
		if b.ClientID == clientID && b.AccountID == accountID && !b.PeriodEnd.Before(from) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd.Before(out[j].PeriodEnd) })
	return out, nil
}

// MockAuditRepository is an in-memory implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
			continue
		}
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return m.List(ctx, domain.AuditFilter{ResourceType: resourceType, ResourceID: resourceID})
}

// Logs returns every recorded audit log.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
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
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockCache is an in-memory implementation of Cache. TTLs are ignored.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc          func(ctx context.Context, key string) ([]byte, error)
	DeletePrefixFunc func(ctx context.Context, prefix string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, usecase.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCache) DeletePrefix(ctx context.Context, prefix string) error {
	if m.DeletePrefixFunc != nil {
		return m.DeletePrefixFunc(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// Keys returns the cached keys in sorted order.
func (m *MockCache) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MockRetrier runs the operation up to Attempts times while it fails.
type MockRetrier struct {
	mu       sync.Mutex
	Attempts int
	Calls    int
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	attempts := m.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		m.mu.Lock()
		m.Calls++
		m.mu.Unlock()
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
