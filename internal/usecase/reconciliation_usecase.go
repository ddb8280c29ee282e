package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/amortisation"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/infrastructure/metrics"
)

// ReconciliationUseCase compares schedules and sub-ledger totals with
// recorded ledger balances.
type ReconciliationUseCase struct {
	itemRepo   ItemRepository
	lineRepo   ScheduleLineRepository
	ledgerRepo LedgerBalanceRepository
	cache      Cache
	gridTTL    time.Duration
	metrics    *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case. cache and
// metrics may be nil; a zero gridTTL uses DefaultGridCacheTTL.
func NewReconciliationUseCase(
	itemRepo ItemRepository,
	lineRepo ScheduleLineRepository,
	ledgerRepo LedgerBalanceRepository,
	cache Cache,
	gridTTL time.Duration,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	if gridTTL <= 0 {
		gridTTL = DefaultGridCacheTTL
	}
	return &ReconciliationUseCase{
		itemRepo:   itemRepo,
		lineRepo:   lineRepo,
		ledgerRepo: ledgerRepo,
		cache:      cache,
		gridTTL:    gridTTL,
		metrics:    metrics,
	}
}

// GridReport is the amortisation grid of one account with, for every
// column that has a recorded ledger balance, the variance against it.
type GridReport struct {
	ClientID  string
	AccountID string
	Items     []*domain.Item
	Grid      amortisation.Grid
	// Variances is aligned with Grid.Columns; nil where no balance is recorded.
	Variances   []*domain.VarianceResult
	GeneratedAt time.Time
}

// BuildGrid projects every schedule of the account onto month-end columns
// starting at viewing.
func (uc *ReconciliationUseCase) BuildGrid(ctx context.Context, clientID, accountID string, viewing time.Time) (*GridReport, error) {
	if err := validateAccountKey(clientID, accountID); err != nil {
		return nil, err
	}

	viewing = domain.MonthEndOf(viewing)
	key := gridKey(clientID, accountID, viewing)

	if report, ok := uc.cachedGrid(ctx, key); ok {
		uc.observeGrid("hit")
		return report, nil
	}
	uc.observeGrid("miss")

	start := time.Now()

	schedules, err := uc.loadSchedules(ctx, clientID, accountID)
	if err != nil {
		return nil, err
	}

	grid := amortisation.Project(schedules, viewing)

	balances, err := uc.ledgerRepo.ListFrom(ctx, clientID, accountID, viewing)
	if err != nil {
		return nil, err
	}

	byPeriod := make(map[time.Time]decimal.Decimal, len(balances))
	for _, b := range balances {
		byPeriod[domain.MonthEndOf(b.PeriodEnd)] = b.Balance
	}

	variances := make([]*domain.VarianceResult, len(grid.Columns))
	for i, col := range grid.Columns {
		balance, ok := byPeriod[col.MonthEnd]
		if !ok {
			continue
		}
		result, err := uc.variance(balance, col.ClosingBalance, domain.ToleranceScheduleVariance)
		if err != nil {
			return nil, err
		}
		variances[i] = &result
	}

	report := &GridReport{
		ClientID:    clientID,
		AccountID:   accountID,
		Items:       itemsOf(schedules, grid),
		Grid:        grid,
		Variances:   variances,
		GeneratedAt: time.Now().UTC(),
	}

	if uc.metrics != nil {
		uc.metrics.GridDuration.Observe(time.Since(start).Seconds())
	}

	uc.storeGrid(ctx, key, report)

	return report, nil
}

// CheckScheduleVariance compares the combined closing balance of the
// account's schedules at periodEnd with the recorded ledger balance.
func (uc *ReconciliationUseCase) CheckScheduleVariance(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.VarianceResult, error) {
	if err := validateAccountKey(clientID, accountID); err != nil {
		return nil, err
	}

	periodEnd = domain.MonthEndOf(periodEnd)

	ledger, err := uc.ledgerRepo.Get(ctx, clientID, accountID, periodEnd)
	if err != nil {
		return nil, err
	}

	schedules, err := uc.loadSchedules(ctx, clientID, accountID)
	if err != nil {
		return nil, err
	}

	result, err := uc.variance(ledger.Balance, amortisation.ClosingBalanceAt(schedules, periodEnd), domain.ToleranceScheduleVariance)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CompareTotalInput compares an externally computed total, such as the sum
// of ticked bank reconciling items or an aged-receivables total, with a
// ledger balance. When LedgerBalance is nil the recorded balance for the
// period is used.
type CompareTotalInput struct {
	ClientID        string
	AccountID       string
	PeriodEnd       time.Time
	LedgerBalance   *decimal.Decimal
	ComparisonTotal decimal.Decimal
	Tolerance       domain.ToleranceClass
}

// CompareTotal runs the variance calculation with the caller's tolerance.
func (uc *ReconciliationUseCase) CompareTotal(ctx context.Context, input CompareTotalInput) (*domain.VarianceResult, error) {
	if _, err := input.Tolerance.Threshold(); err != nil {
		return nil, err
	}

	ledgerBalance := decimal.Zero
	if input.LedgerBalance != nil {
		ledgerBalance = *input.LedgerBalance
	} else {
		if err := validateAccountKey(input.ClientID, input.AccountID); err != nil {
			return nil, err
		}
		ledger, err := uc.ledgerRepo.Get(ctx, input.ClientID, input.AccountID, domain.MonthEndOf(input.PeriodEnd))
		if err != nil {
			return nil, err
		}
		ledgerBalance = ledger.Balance
	}

	result, err := uc.variance(ledgerBalance, input.ComparisonTotal, input.Tolerance)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordLedgerBalanceInput represents a balance reported by the ledger.
type RecordLedgerBalanceInput struct {
	ClientID  string
	AccountID string
	PeriodEnd time.Time
	Balance   decimal.Decimal
	Source    string
}

// RecordLedgerBalance stores or replaces the ledger balance for a period.
func (uc *ReconciliationUseCase) RecordLedgerBalance(ctx context.Context, input RecordLedgerBalanceInput) (*domain.LedgerBalance, error) {
	if err := validateAccountKey(input.ClientID, input.AccountID); err != nil {
		return nil, err
	}
	if err := domain.ValidateText("source", input.Source, domain.MaxIdentifierLength); err != nil {
		return nil, err
	}
	if !input.Balance.Equal(domain.Round2(input.Balance)) {
		return nil, domain.ErrAmountPrecision
	}

	balance := &domain.LedgerBalance{
		ClientID:   input.ClientID,
		AccountID:  input.AccountID,
		PeriodEnd:  domain.MonthEndOf(input.PeriodEnd),
		Balance:    input.Balance,
		Source:     input.Source,
		RecordedAt: time.Now().UTC(),
	}

	if err := uc.ledgerRepo.Upsert(ctx, balance); err != nil {
		return nil, err
	}

	invalidateGrid(ctx, uc.cache, input.ClientID, input.AccountID)

	return balance, nil
}

// GetLedgerBalance returns the recorded balance for a period.
func (uc *ReconciliationUseCase) GetLedgerBalance(ctx context.Context, clientID, accountID string, periodEnd time.Time) (*domain.LedgerBalance, error) {
	return uc.ledgerRepo.Get(ctx, clientID, accountID, domain.MonthEndOf(periodEnd))
}

func (uc *ReconciliationUseCase) variance(ledger, comparison decimal.Decimal, tolerance domain.ToleranceClass) (domain.VarianceResult, error) {
	result, err := domain.Variance(ledger, comparison, tolerance)
	if err != nil {
		return result, err
	}
	if uc.metrics != nil {
		uc.metrics.VarianceChecks.WithLabelValues(string(tolerance), strconv.FormatBool(result.IsReconciled)).Inc()
	}
	return result, nil
}

func (uc *ReconciliationUseCase) loadSchedules(ctx context.Context, clientID, accountID string) ([]domain.ItemSchedule, error) {
	items, err := listAllItems(ctx, uc.itemRepo, domain.ItemFilter{
		ClientID:  clientID,
		AccountID: accountID,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Status != domain.ItemStatusCancelled {
			ids = append(ids, item.ID)
		}
	}

	linesByItem := map[string][]domain.ScheduleLine{}
	if len(ids) > 0 {
		linesByItem, err = uc.lineRepo.ListByItems(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	schedules := make([]domain.ItemSchedule, 0, len(ids))
	for _, item := range items {
		if item.Status == domain.ItemStatusCancelled {
			continue
		}
		schedules = append(schedules, domain.ItemSchedule{Item: item, Lines: linesByItem[item.ID]})
	}
	return schedules, nil
}

func (uc *ReconciliationUseCase) cachedGrid(ctx context.Context, key string) (*GridReport, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("grid cache read failed")
		}
		return nil, false
	}

	var report GridReport
	if err := json.Unmarshal(data, &report); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("discarding unreadable cached grid")
		return nil, false
	}
	return &report, true
}

func (uc *ReconciliationUseCase) storeGrid(ctx context.Context, key string, report *GridReport) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("grid not cacheable")
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.gridTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("grid cache write failed")
	}
}

func (uc *ReconciliationUseCase) observeGrid(outcome string) {
	if uc.metrics != nil {
		uc.metrics.GridBuilds.WithLabelValues(outcome).Inc()
	}
}

func itemsOf(schedules []domain.ItemSchedule, grid amortisation.Grid) []*domain.Item {
	byID := make(map[string]*domain.Item, len(schedules))
	for _, s := range schedules {
		byID[s.Item.ID] = s.Item
	}

	items := make([]*domain.Item, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		items = append(items, byID[row.ItemID])
	}
	return items
}

// listAllItems pages through every item matching filter. Limit and Offset
// on filter are ignored.
func listAllItems(ctx context.Context, repo ItemRepository, filter domain.ItemFilter) ([]*domain.Item, error) {
	var all []*domain.Item
	filter.Limit = ItemPageSize
	for filter.Offset = 0; ; filter.Offset += ItemPageSize {
		page, err := repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < ItemPageSize {
			return all, nil
		}
	}
}

func validateAccountKey(clientID, accountID string) error {
	if err := domain.ValidateIdentifier("client_id", clientID); err != nil {
		return err
	}
	return domain.ValidateIdentifier("account_id", accountID)
}

// gridKeyPrefix length-prefixes each part so identifiers containing the
// separator cannot collide, and no account's prefix is a prefix of another's.
func gridKeyPrefix(clientID, accountID string) string {
	return fmt.Sprintf("grid:%d:%s:%d:%s:", len(clientID), clientID, len(accountID), accountID)
}

func gridKey(clientID, accountID string, viewing time.Time) string {
	return gridKeyPrefix(clientID, accountID) + viewing.Format(domain.DateLayout)
}

// invalidateGrid drops every cached grid of the account. Failures only
// leave a stale grid until its TTL expires, so they are logged.
func invalidateGrid(ctx context.Context, cache Cache, clientID, accountID string) {
	if cache == nil {
		return
	}
	if err := cache.DeletePrefix(ctx, gridKeyPrefix(clientID, accountID)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("client_id", clientID).
			Str("account_id", accountID).
			Msg("grid cache invalidation failed")
	}
}
