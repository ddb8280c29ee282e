package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/amortisation"
	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/infrastructure/metrics"
)

// ScheduleUseCase handles item and schedule business logic.
type ScheduleUseCase struct {
	txManager TransactionManager
	itemRepo  ItemRepository
	lineRepo  ScheduleLineRepository
	auditRepo AuditRepository
	idGen     IDGenerator
	generator *amortisation.Generator
	cache     Cache
	retrier   Retrier
	metrics   *metrics.Metrics
}

// NewScheduleUseCase creates a new ScheduleUseCase. cache, retrier and
// metrics may be nil.
func NewScheduleUseCase(
	txManager TransactionManager,
	itemRepo ItemRepository,
	lineRepo ScheduleLineRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	generator *amortisation.Generator,
	cache Cache,
	retrier Retrier,
	metrics *metrics.Metrics,
) *ScheduleUseCase {
	if generator == nil {
		generator = amortisation.NewGenerator()
	}
	return &ScheduleUseCase{
		txManager: txManager,
		itemRepo:  itemRepo,
		lineRepo:  lineRepo,
		auditRepo: auditRepo,
		idGen:     idGen,
		generator: generator,
		cache:     cache,
		retrier:   retrier,
		metrics:   metrics,
	}
}

// CreateItemInput represents input for creating an item and its schedule.
type CreateItemInput struct {
	ClientID     string
	AccountID    string
	Role         domain.Role
	Description  string
	Counterparty string
	Reference    string
	StartDate    time.Time
	EndDate      time.Time
	TotalAmount  decimal.Decimal
	SpreadMethod domain.SpreadMethod
}

func (in CreateItemInput) validate() error {
	if err := domain.ValidateIdentifier("client_id", in.ClientID); err != nil {
		return err
	}
	if err := domain.ValidateIdentifier("account_id", in.AccountID); err != nil {
		return err
	}
	if !in.Role.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownRole, string(in.Role))
	}
	if err := domain.ValidateText("description", in.Description, domain.MaxDescriptionLength); err != nil {
		return err
	}
	if err := domain.ValidateText("counterparty", in.Counterparty, domain.MaxDescriptionLength); err != nil {
		return err
	}
	return domain.ValidateText("reference", in.Reference, domain.MaxIdentifierLength)
}

// Preview generates a schedule without storing anything.
func (uc *ScheduleUseCase) Preview(start, end time.Time, total decimal.Decimal, method domain.SpreadMethod) ([]domain.ScheduleLine, error) {
	return uc.generator.Generate(start, end, total, method)
}

// CreateItem validates the item, generates its schedule and stores both in
// one transaction.
func (uc *ScheduleUseCase) CreateItem(ctx context.Context, input CreateItemInput) (*domain.ItemSchedule, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	lines, err := uc.generator.Generate(input.StartDate, input.EndDate, input.TotalAmount, input.SpreadMethod)
	if err != nil {
		uc.recordInvariantViolation(ctx, "generate", err)
		return nil, err
	}

	now := time.Now().UTC()
	item := &domain.Item{
		ID:           uc.idGen.Generate(),
		ClientID:     input.ClientID,
		AccountID:    input.AccountID,
		Role:         input.Role,
		Description:  input.Description,
		Counterparty: input.Counterparty,
		Reference:    input.Reference,
		StartDate:    domain.DateOf(input.StartDate),
		EndDate:      domain.DateOf(input.EndDate),
		TotalAmount:  input.TotalAmount,
		SpreadMethod: input.SpreadMethod,
		Status:       domain.ItemStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.itemRepo.Create(txCtx, tx, item); err != nil {
		return nil, err
	}

	if err := uc.lineRepo.Insert(txCtx, tx, item.ID, lines); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, domain.AuditActionItemCreate, domain.AuditResourceItem, item.ID, nil, item, ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateGrid(ctx, item.ClientID, item.AccountID)

	if uc.metrics != nil {
		uc.metrics.SchedulesGenerated.WithLabelValues(string(item.SpreadMethod)).Inc()
		uc.metrics.ScheduleLines.Observe(float64(len(lines)))
	}

	zerolog.Ctx(ctx).Info().
		Str("item_id", item.ID).
		Str("method", string(item.SpreadMethod)).
		Int("lines", len(lines)).
		Msg("schedule created")

	return &domain.ItemSchedule{Item: item, Lines: lines}, nil
}

// GetSchedule returns an item with its current lines.
func (uc *ScheduleUseCase) GetSchedule(ctx context.Context, itemID string) (*domain.ItemSchedule, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	lines, err := uc.lineRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return &domain.ItemSchedule{Item: item, Lines: lines}, nil
}

// ListItems lists items matching filter.
func (uc *ScheduleUseCase) ListItems(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	limit, offset, err := domain.ValidatePagination(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset

	return uc.itemRepo.List(ctx, filter)
}

// OverrideLineInput represents a manual change to one month of a schedule.
type OverrideLineInput struct {
	ItemID   string
	MonthEnd time.Time
	Amount   decimal.Decimal
	Note     string
}

// OverrideLine sets one month's amount and re-spreads the rest of the
// schedule. The item row is locked for the whole read-modify-write so two
// overrides on the same item never interleave.
func (uc *ScheduleUseCase) OverrideLine(ctx context.Context, input OverrideLineInput) (*domain.ItemSchedule, error) {
	if err := domain.ValidateOverrideAmount(input.Amount); err != nil {
		return nil, err
	}

	var result *domain.ItemSchedule
	err := uc.withRetry(ctx, func() error {
		var err error
		result, err = uc.overrideLine(ctx, input)
		return err
	})
	if err != nil {
		uc.recordInvariantViolation(ctx, "override", err)
		return nil, err
	}

	uc.invalidateGrid(ctx, result.Item.ClientID, result.Item.AccountID)

	if uc.metrics != nil {
		uc.metrics.OverridesApplied.Inc()
	}

	zerolog.Ctx(ctx).Info().
		Str("item_id", input.ItemID).
		Str("month_end", domain.MonthEndOf(input.MonthEnd).Format(domain.DateLayout)).
		Str("amount", input.Amount.StringFixed(2)).
		Msg("schedule line overridden")

	return result, nil
}

func (uc *ScheduleUseCase) overrideLine(ctx context.Context, input OverrideLineInput) (*domain.ItemSchedule, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	item, err := uc.itemRepo.GetByIDForUpdate(txCtx, tx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if !item.IsActive() {
		return nil, domain.ErrItemNotActive
	}

	lines, err := uc.lineRepo.ListByItemTx(txCtx, tx, item.ID)
	if err != nil {
		return nil, err
	}

	idx, err := amortisation.IndexOfMonth(lines, input.MonthEnd)
	if err != nil {
		return nil, err
	}

	updated, err := amortisation.Override(item.TotalAmount, lines, amortisation.OverrideInput{
		LineIndex: idx,
		Amount:    input.Amount,
		Note:      input.Note,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.lineRepo.Replace(txCtx, tx, item.ID, updated); err != nil {
		return nil, err
	}

	before := map[string]any{"line": lines[idx], "monthly_amounts": monthlyAmounts(lines)}
	after := map[string]any{"line": updated[idx], "monthly_amounts": monthlyAmounts(updated)}
	if err := uc.audit(txCtx, tx, domain.AuditActionScheduleOverride, domain.AuditResourceSchedule, item.ID, before, after, input.Note); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &domain.ItemSchedule{Item: item, Lines: updated}, nil
}

// CancelItem soft-deletes an item. Its lines are kept but it drops out of
// every grid and variance.
func (uc *ScheduleUseCase) CancelItem(ctx context.Context, itemID string) (*domain.Item, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	item, err := uc.itemRepo.GetByIDForUpdate(txCtx, tx, itemID)
	if err != nil {
		return nil, err
	}

	before := *item
	if err := item.Cancel(time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.itemRepo.UpdateStatus(txCtx, tx, item.ID, item.Status, item.UpdatedAt); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, domain.AuditActionItemCancel, domain.AuditResourceItem, item.ID, &before, item, ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateGrid(ctx, item.ClientID, item.AccountID)

	if uc.metrics != nil {
		uc.metrics.ItemsCancelled.Inc()
	}

	return item, nil
}

// DeleteItem removes an item and, by cascade, its schedule lines.
func (uc *ScheduleUseCase) DeleteItem(ctx context.Context, itemID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	item, err := uc.itemRepo.GetByIDForUpdate(txCtx, tx, itemID)
	if err != nil {
		return err
	}

	if err := uc.itemRepo.Delete(txCtx, tx, item.ID); err != nil {
		return err
	}

	if err := uc.audit(txCtx, tx, domain.AuditActionItemDelete, domain.AuditResourceItem, item.ID, item, nil, ""); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	uc.invalidateGrid(ctx, item.ClientID, item.AccountID)

	if uc.metrics != nil {
		uc.metrics.ItemsDeleted.Inc()
	}

	return nil
}

// MarkFullyRecognised moves every active item of the account whose
// schedule has ended by periodEnd to FullyRecognised.
func (uc *ScheduleUseCase) MarkFullyRecognised(ctx context.Context, clientID, accountID string, periodEnd time.Time) ([]*domain.Item, error) {
	periodEnd = domain.MonthEndOf(periodEnd)

	candidates, err := listAllItems(ctx, uc.itemRepo, domain.ItemFilter{
		ClientID:  clientID,
		AccountID: accountID,
		Status:    domain.ItemStatusActive,
	})
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	var recognised []*domain.Item
	for _, c := range candidates {
		if c.LastMonthEnd().After(periodEnd) {
			continue
		}

		item, err := uc.itemRepo.GetByIDForUpdate(txCtx, tx, c.ID)
		if err != nil {
			return nil, err
		}

		if !item.MarkFullyRecognised(periodEnd, now) {
			continue
		}

		if err := uc.itemRepo.UpdateStatus(txCtx, tx, item.ID, item.Status, item.UpdatedAt); err != nil {
			return nil, err
		}

		if err := uc.audit(txCtx, tx, domain.AuditActionItemRecognise, domain.AuditResourceItem, item.ID, nil, item, ""); err != nil {
			return nil, err
		}

		recognised = append(recognised, item)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if len(recognised) > 0 {
		uc.invalidateGrid(ctx, clientID, accountID)
		if uc.metrics != nil {
			uc.metrics.ItemsRecognised.Add(float64(len(recognised)))
		}
	}

	return recognised, nil
}

// History returns the audit trail of an item and its schedule.
func (uc *ScheduleUseCase) History(ctx context.Context, itemID string, limit, offset int) ([]*domain.AuditLog, error) {
	if _, err := uc.itemRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}

	return uc.auditRepo.List(ctx, domain.AuditFilter{ResourceID: itemID, Limit: limit, Offset: offset})
}

func (uc *ScheduleUseCase) audit(ctx context.Context, tx Transaction, action domain.AuditAction, resourceType, resourceID string, before, after any, note string) error {
	if uc.auditRepo == nil {
		return nil
	}

	userID := SystemUserID
	if id, ok := domain.PreparerFromContext(ctx); ok {
		userID = id
	}

	log := &domain.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    domain.RequestIDFromContext(ctx),
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Note:         note,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(string(action)).Inc()
	}
	return nil
}

func (uc *ScheduleUseCase) withRetry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

func (uc *ScheduleUseCase) invalidateGrid(ctx context.Context, clientID, accountID string) {
	invalidateGrid(ctx, uc.cache, clientID, accountID)
}

func (uc *ScheduleUseCase) recordInvariantViolation(ctx context.Context, operation string, err error) {
	if !errors.Is(err, domain.ErrInvariantViolation) {
		return
	}

	zerolog.Ctx(ctx).Error().Err(err).Str("operation", operation).Msg("schedule invariant violated")

	if uc.metrics != nil {
		uc.metrics.InvariantViolations.WithLabelValues(operation).Inc()
	}
}

func monthlyAmounts(lines []domain.ScheduleLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.MonthlyAmount.StringFixed(2)
	}
	return out
}
