package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/infrastructure/postgres/generated"
	"github.com/iho/balancesheet/internal/usecase"
)

// ItemRepository implements usecase.ItemRepository.
type ItemRepository struct {
	queries *generated.Queries
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return newItemRepository(pool)
}

func newItemRepository(db generated.DBTX) *ItemRepository {
	return &ItemRepository{queries: generated.New(db)}
}

// Create inserts a new item.
func (r *ItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.Item) error {
	return queriesFor(tx).CreateItem(ctx, generated.CreateItemParams{
		ID:           item.ID,
		ClientID:     item.ClientID,
		AccountID:    item.AccountID,
		Role:         string(item.Role),
		Description:  item.Description,
		Counterparty: item.Counterparty,
		Reference:    item.Reference,
		StartDate:    timeToPgDate(item.StartDate),
		EndDate:      timeToPgDate(item.EndDate),
		TotalAmount:  decimalToNumeric(item.TotalAmount),
		SpreadMethod: string(item.SpreadMethod),
		Status:       string(item.Status),
		CreatedAt:    timeToPgTimestamptz(item.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(item.UpdatedAt),
	})
}

// GetByID retrieves an item by ID.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	row, err := r.queries.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}

		return nil, err
	}

	return rowToItem(row), nil
}

// GetByIDForUpdate retrieves an item by ID with a FOR UPDATE lock.
func (r *ItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Item, error) {
	row, err := queriesFor(tx).GetItemByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}

		return nil, err
	}

	return rowToItem(row), nil
}

// UpdateStatus sets the lifecycle status of an item.
func (r *ItemRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ItemStatus, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateItemStatus(ctx, generated.UpdateItemStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// Delete removes an item. Its schedule lines go with it through the
// foreign key cascade.
func (r *ItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	n, err := queriesFor(tx).DeleteItem(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}

	return nil
}

// List retrieves items matching filter, ordered by start date.
func (r *ItemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]*domain.Item, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.queries.ListItems(ctx, generated.ListItemsParams{
		ClientID:  textOrNull(filter.ClientID),
		AccountID: textOrNull(filter.AccountID),
		Role:      textOrNull(string(filter.Role)),
		Status:    textOrNull(string(filter.Status)),
		Limit:     int32(limit),
		Offset:    int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	items := make([]*domain.Item, len(rows))
	for i, row := range rows {
		items[i] = rowToItem(row)
	}

	return items, nil
}

func rowToItem(row generated.Item) *domain.Item {
	return &domain.Item{
		ID:           row.ID,
		ClientID:     row.ClientID,
		AccountID:    row.AccountID,
		Role:         domain.Role(row.Role),
		Description:  row.Description,
		Counterparty: row.Counterparty,
		Reference:    row.Reference,
		StartDate:    pgDateToTime(row.StartDate),
		EndDate:      pgDateToTime(row.EndDate),
		TotalAmount:  numericToDecimal(row.TotalAmount),
		SpreadMethod: domain.SpreadMethod(row.SpreadMethod),
		Status:       domain.ItemStatus(row.Status),
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}
