package amortisation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancesheet/internal/domain"
)

// Grid is a set of schedules projected onto shared month-end columns.
type Grid struct {
	ViewingPeriod time.Time
	Columns       []Column
	Rows          []Row
}

// Column aggregates every item's position at one month-end.
type Column struct {
	MonthEnd        time.Time
	TotalRecognised decimal.Decimal
	ClosingBalance  decimal.Decimal
}

// Row is one item's position in every column.
type Row struct {
	ItemID string
	Cells  []Cell
}

// Cell is one item's amount and closing balance at one month-end.
// InSchedule is false when the column falls outside the item's schedule.
type Cell struct {
	MonthlyAmount  decimal.Decimal
	ClosingBalance decimal.Decimal
	InSchedule     bool
}

// Project lays the active schedules out on the columns from viewing onwards.
// The columns are every month-end at or after viewing that appears in any
// schedule, plus viewing itself. An item contributes its full total before
// its first line and zero after its last.
func Project(schedules []domain.ItemSchedule, viewing time.Time) Grid {
	viewing = domain.MonthEndOf(viewing)

	active := make([]domain.ItemSchedule, 0, len(schedules))
	for _, s := range schedules {
		if s.Item != nil && s.Item.Status != domain.ItemStatusCancelled {
			active = append(active, s)
		}
	}

	columns := monthColumns(active, viewing)

	grid := Grid{
		ViewingPeriod: viewing,
		Columns:       make([]Column, len(columns)),
		Rows:          make([]Row, 0, len(active)),
	}
	for i, c := range columns {
		grid.Columns[i] = Column{MonthEnd: c, TotalRecognised: decimal.Zero, ClosingBalance: decimal.Zero}
	}

	for _, s := range active {
		byMonth := make(map[time.Time]domain.ScheduleLine, len(s.Lines))
		for _, l := range s.Lines {
			byMonth[l.MonthEndDate] = l
		}

		row := Row{ItemID: s.Item.ID, Cells: make([]Cell, len(columns))}
		for i, c := range columns {
			cell := cellAt(s, byMonth, c)
			row.Cells[i] = cell
			grid.Columns[i].TotalRecognised = grid.Columns[i].TotalRecognised.Add(cell.MonthlyAmount)
			grid.Columns[i].ClosingBalance = grid.Columns[i].ClosingBalance.Add(cell.ClosingBalance)
		}
		grid.Rows = append(grid.Rows, row)
	}

	return grid
}

// ClosingBalanceAt returns the combined closing balance of the active
// schedules at monthEnd.
func ClosingBalanceAt(schedules []domain.ItemSchedule, monthEnd time.Time) decimal.Decimal {
	grid := Project(schedules, monthEnd)
	return grid.Columns[0].ClosingBalance
}

func cellAt(s domain.ItemSchedule, byMonth map[time.Time]domain.ScheduleLine, column time.Time) Cell {
	if l, ok := byMonth[column]; ok {
		return Cell{MonthlyAmount: l.MonthlyAmount, ClosingBalance: l.ClosingBalance, InSchedule: true}
	}

	if len(s.Lines) == 0 || column.Before(s.Lines[0].MonthEndDate) {
		return Cell{MonthlyAmount: decimal.Zero, ClosingBalance: s.Item.TotalAmount}
	}

	return Cell{MonthlyAmount: decimal.Zero, ClosingBalance: decimal.Zero}
}

func monthColumns(schedules []domain.ItemSchedule, viewing time.Time) []time.Time {
	seen := map[time.Time]struct{}{viewing: {}}
	columns := []time.Time{viewing}

	for _, s := range schedules {
		for _, l := range s.Lines {
			if l.MonthEndDate.Before(viewing) {
				continue
			}
			if _, ok := seen[l.MonthEndDate]; ok {
				continue
			}
			seen[l.MonthEndDate] = struct{}{}
			columns = append(columns, l.MonthEndDate)
		}
	}

	sort.Slice(columns, func(i, j int) bool { return columns[i].Before(columns[j]) })
	return columns
}
