package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/infrastructure/postgres/generated"
	"github.com/iho/balancesheet/internal/usecase"
)

// ErrOverridesUnsupported is returned when an overridden schedule is written
// to a schema without the override columns.
var ErrOverridesUnsupported = errors.New("schema does not support schedule line overrides")

// ScheduleLineRepository implements usecase.ScheduleLineRepository.
type ScheduleLineRepository struct {
	queries *generated.Queries
	caps    SchemaCapabilities
}

// NewScheduleLineRepository creates a new ScheduleLineRepository for a
// schema with the given capabilities.
func NewScheduleLineRepository(pool *pgxpool.Pool, caps SchemaCapabilities) *ScheduleLineRepository {
	return newScheduleLineRepository(pool, caps)
}

func newScheduleLineRepository(db generated.DBTX, caps SchemaCapabilities) *ScheduleLineRepository {
	return &ScheduleLineRepository{queries: generated.New(db), caps: caps}
}

// Insert stores the lines of a new schedule.
func (r *ScheduleLineRepository) Insert(ctx context.Context, tx usecase.Transaction, itemID string, lines []domain.ScheduleLine) error {
	return r.write(ctx, queriesFor(tx), itemID, lines)
}

// Replace overwrites every line of the item's schedule.
func (r *ScheduleLineRepository) Replace(ctx context.Context, tx usecase.Transaction, itemID string, lines []domain.ScheduleLine) error {
	q := queriesFor(tx)

	if err := q.DeleteScheduleLinesByItem(ctx, itemID); err != nil {
		return err
	}

	return r.write(ctx, q, itemID, lines)
}

// ListByItem returns the item's lines ordered by month.
func (r *ScheduleLineRepository) ListByItem(ctx context.Context, itemID string) ([]domain.ScheduleLine, error) {
	return r.list(ctx, r.queries, itemID)
}

// ListByItemTx returns the item's lines inside tx.
func (r *ScheduleLineRepository) ListByItemTx(ctx context.Context, tx usecase.Transaction, itemID string) ([]domain.ScheduleLine, error) {
	return r.list(ctx, queriesFor(tx), itemID)
}

// ListByItems returns the lines of several items keyed by item ID.
func (r *ScheduleLineRepository) ListByItems(ctx context.Context, itemIDs []string) (map[string][]domain.ScheduleLine, error) {
	out := make(map[string][]domain.ScheduleLine, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	if !r.caps.LineOverrides {
		rows, err := r.queries.ListScheduleLinesByItemsBase(ctx, itemIDs)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			out[row.ItemID] = append(out[row.ItemID], baseRowToLine(generated.ListScheduleLinesByItemBaseRow(row)))
		}
		return out, nil
	}

	rows, err := r.queries.ListScheduleLinesByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ItemID] = append(out[row.ItemID], rowToLine(row))
	}
	return out, nil
}

func (r *ScheduleLineRepository) list(ctx context.Context, q *generated.Queries, itemID string) ([]domain.ScheduleLine, error) {
	if !r.caps.LineOverrides {
		rows, err := q.ListScheduleLinesByItemBase(ctx, itemID)
		if err != nil {
			return nil, err
		}
		lines := make([]domain.ScheduleLine, len(rows))
		for i, row := range rows {
			lines[i] = baseRowToLine(row)
		}
		return lines, nil
	}

	rows, err := q.ListScheduleLinesByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.ScheduleLine, len(rows))
	for i, row := range rows {
		lines[i] = rowToLine(row)
	}
	return lines, nil
}

func (r *ScheduleLineRepository) write(ctx context.Context, q *generated.Queries, itemID string, lines []domain.ScheduleLine) error {
	var (
		n   int64
		err error
	)

	if r.caps.LineOverrides {
		params := make([]generated.InsertScheduleLinesParams, len(lines))
		for i, l := range lines {
			params[i] = generated.InsertScheduleLinesParams{
				ItemID:         itemID,
				MonthEndDate:   timeToPgDate(l.MonthEndDate),
				OpeningBalance: decimalToNumeric(l.OpeningBalance),
				MonthlyAmount:  decimalToNumeric(l.MonthlyAmount),
				ClosingBalance: decimalToNumeric(l.ClosingBalance),
				OriginalAmount: decimalToNumeric(l.OriginalAmount),
				OverrideAmount: decimalPtrToNumeric(l.OverrideAmount),
				IsOverridden:   l.IsOverridden,
				AuditNote:      stringPtrToText(l.AuditNote),
			}
		}
		n, err = q.InsertScheduleLines(ctx, params)
	} else {
		params := make([]generated.InsertScheduleLinesBaseParams, len(lines))
		for i, l := range lines {
			if l.IsOverridden {
				return fmt.Errorf("%w: schema version %d, need %d", ErrOverridesUnsupported, r.caps.Version, lineOverridesVersion)
			}
			params[i] = generated.InsertScheduleLinesBaseParams{
				ItemID:         itemID,
				MonthEndDate:   timeToPgDate(l.MonthEndDate),
				OpeningBalance: decimalToNumeric(l.OpeningBalance),
				MonthlyAmount:  decimalToNumeric(l.MonthlyAmount),
				ClosingBalance: decimalToNumeric(l.ClosingBalance),
				OriginalAmount: decimalToNumeric(l.OriginalAmount),
			}
		}
		n, err = q.InsertScheduleLinesBase(ctx, params)
	}
	if err != nil {
		return err
	}

	if n != int64(len(lines)) {
		return fmt.Errorf("wrote %d of %d schedule lines for item %s", n, len(lines), itemID)
	}

	return nil
}

func rowToLine(row generated.ScheduleLine) domain.ScheduleLine {
	return domain.ScheduleLine{
		MonthEndDate:   pgDateToTime(row.MonthEndDate),
		OpeningBalance: numericToDecimal(row.OpeningBalance),
		MonthlyAmount:  numericToDecimal(row.MonthlyAmount),
		ClosingBalance: numericToDecimal(row.ClosingBalance),
		OriginalAmount: numericToDecimal(row.OriginalAmount),
		OverrideAmount: numericToDecimalPtr(row.OverrideAmount),
		IsOverridden:   row.IsOverridden,
		AuditNote:      textToStringPtr(row.AuditNote),
	}
}

func baseRowToLine(row generated.ListScheduleLinesByItemBaseRow) domain.ScheduleLine {
	return domain.ScheduleLine{
		MonthEndDate:   pgDateToTime(row.MonthEndDate),
		OpeningBalance: numericToDecimal(row.OpeningBalance),
		MonthlyAmount:  numericToDecimal(row.MonthlyAmount),
		ClosingBalance: numericToDecimal(row.ClosingBalance),
		OriginalAmount: numericToDecimal(row.OriginalAmount),
	}
}
