package generated

import (
	"context"
)

// iteratorForInsertScheduleLines implements pgx.CopyFromSource.
type iteratorForInsertScheduleLines struct {
	rows                 []InsertScheduleLinesParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertScheduleLines) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertScheduleLines) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].ItemID,
		r.rows[0].MonthEndDate,
		r.rows[0].OpeningBalance,
		r.rows[0].MonthlyAmount,
		r.rows[0].ClosingBalance,
		r.rows[0].OriginalAmount,
		r.rows[0].OverrideAmount,
		r.rows[0].IsOverridden,
		r.rows[0].AuditNote,
	}, nil
}

func (r iteratorForInsertScheduleLines) Err() error {
	return nil
}

func (q *Queries) InsertScheduleLines(ctx context.Context, arg []InsertScheduleLinesParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"schedule_lines"}, []string{"item_id", "month_end_date", "opening_balance", "monthly_amount", "closing_balance", "original_amount", "override_amount", "is_overridden", "audit_note"}, &iteratorForInsertScheduleLines{rows: arg})
}

// iteratorForInsertScheduleLinesBase implements pgx.CopyFromSource.
type iteratorForInsertScheduleLinesBase struct {
	rows                 []InsertScheduleLinesBaseParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertScheduleLinesBase) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertScheduleLinesBase) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].ItemID,
		r.rows[0].MonthEndDate,
		r.rows[0].OpeningBalance,
		r.rows[0].MonthlyAmount,
		r.rows[0].ClosingBalance,
		r.rows[0].OriginalAmount,
	}, nil
}

func (r iteratorForInsertScheduleLinesBase) Err() error {
	return nil
}

func (q *Queries) InsertScheduleLinesBase(ctx context.Context, arg []InsertScheduleLinesBaseParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"schedule_lines"}, []string{"item_id", "month_end_date", "opening_balance", "monthly_amount", "closing_balance", "original_amount"}, &iteratorForInsertScheduleLinesBase{rows: arg})
}
