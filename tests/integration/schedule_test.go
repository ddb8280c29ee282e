package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/balancesheet/internal/domain"
	"github.com/iho/balancesheet/internal/usecase"
	"github.com/iho/balancesheet/tests/testutil"
)

func setupSchedules(t *testing.T) (context.Context, *testutil.Services) {
	t.Helper()

	ctx := domain.WithPreparer(context.Background(), "integration")

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	return ctx, testDB.NewServices(ctx)
}

func createItem(t *testing.T, ctx context.Context, svc *testutil.Services, start, end time.Time, total string, method domain.SpreadMethod) *domain.ItemSchedule {
	t.Helper()

	created, err := svc.Schedules.CreateItem(ctx, usecase.CreateItemInput{
		ClientID:     "acme",
		AccountID:    "1400",
		Role:         domain.RolePrepayment,
		Description:  "Software licence",
		Counterparty: "Vendor Ltd",
		Reference:    "INV-" + testutil.GenerateID(),
		StartDate:    start,
		EndDate:      end,
		TotalAmount:  decimal.RequireFromString(total),
		SpreadMethod: method,
	})
	require.NoError(t, err)
	return created
}

func TestScheduleRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx, svc := setupSchedules(t)

	methods := []domain.SpreadMethod{domain.SpreadEqual, domain.SpreadDailyProration, domain.SpreadHalfMonth}
	for _, method := range methods {
		t.Run(string(method), func(t *testing.T) {
			created := createItem(t, ctx, svc, testutil.Date(2026, time.January, 20), testutil.Date(2026, time.June, 19), "1000.00", method)

			loaded, err := svc.Schedules.GetSchedule(ctx, created.Item.ID)
			require.NoError(t, err)

			assert.Equal(t, method, loaded.Item.SpreadMethod)
			require.Len(t, loaded.Lines, len(created.Lines))
			for i := range created.Lines {
				assert.True(t, created.Lines[i].MonthEndDate.Equal(loaded.Lines[i].MonthEndDate), "month %d", i)
				assert.True(t, created.Lines[i].MonthlyAmount.Equal(loaded.Lines[i].MonthlyAmount), "amount %d", i)
				assert.True(t, created.Lines[i].ClosingBalance.Equal(loaded.Lines[i].ClosingBalance), "closing %d", i)
			}
			assert.NoError(t, domain.CheckInvariants(loaded.Item.TotalAmount, loaded.Lines))
		})
	}
}

func TestOverrideIsPersistedAndAudited(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx, svc := setupSchedules(t)

	created := createItem(t, ctx, svc, testutil.Date(2026, time.January, 1), testutil.Date(2026, time.April, 30), "1000.00", domain.SpreadEqual)

	_, err := svc.Schedules.OverrideLine(ctx, usecase.OverrideLineInput{
		ItemID:   created.Item.ID,
		MonthEnd: testutil.Date(2026, time.February, 28),
		Amount:   decimal.RequireFromString("400.00"),
		Note:     "invoice received early",
	})
	require.NoError(t, err)

	loaded, err := svc.Schedules.GetSchedule(ctx, created.Item.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 4)

	feb := loaded.Lines[1]
	assert.True(t, feb.IsOverridden)
	require.NotNil(t, feb.OverrideAmount)
	assert.Equal(t, "400.00", feb.OverrideAmount.StringFixed(2))
	assert.Equal(t, "250.00", feb.OriginalAmount.StringFixed(2))
	require.NotNil(t, feb.AuditNote)
	assert.Equal(t, "invoice received early", *feb.AuditNote)

	assert.Equal(t, "175.00", loaded.Lines[2].MonthlyAmount.StringFixed(2))
	assert.Equal(t, "175.00", loaded.Lines[3].MonthlyAmount.StringFixed(2))
	assert.NoError(t, domain.CheckInvariants(loaded.Item.TotalAmount, loaded.Lines))

	history, err := svc.Schedules.History(ctx, created.Item.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	actions := []domain.AuditAction{history[0].Action, history[1].Action}
	assert.ElementsMatch(t, []domain.AuditAction{domain.AuditActionItemCreate, domain.AuditActionScheduleOverride}, actions)
	for _, entry := range history {
		assert.Equal(t, "integration", entry.UserID)
	}
}

func TestOverrideLastLineMustCloseSchedule(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx, svc := setupSchedules(t)

	created := createItem(t, ctx, svc, testutil.Date(2026, time.January, 1), testutil.Date(2026, time.March, 31), "300.00", domain.SpreadEqual)

	_, err := svc.Schedules.OverrideLine(ctx, usecase.OverrideLineInput{
		ItemID:   created.Item.ID,
		MonthEnd: testutil.Date(2026, time.March, 31),
		Amount:   decimal.RequireFromString("150.00"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)

	loaded, err := svc.Schedules.GetSchedule(ctx, created.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", loaded.Lines[2].MonthlyAmount.StringFixed(2))
	assert.False(t, loaded.Lines[2].IsOverridden)
}

func TestCancelAndDeleteItem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx, svc := setupSchedules(t)

	created := createItem(t, ctx, svc, testutil.Date(2026, time.January, 1), testutil.Date(2026, time.June, 30), "600.00", domain.SpreadEqual)

	cancelled, err := svc.Schedules.CancelItem(ctx, created.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusCancelled, cancelled.Status)

	_, err = svc.Schedules.OverrideLine(ctx, usecase.OverrideLineInput{
		ItemID:   created.Item.ID,
		MonthEnd: testutil.Date(2026, time.February, 28),
		Amount:   decimal.RequireFromString("10.00"),
	})
	assert.True(t, errors.Is(err, domain.ErrItemNotActive), "expected ErrItemNotActive, got %v", err)

	kept, err := svc.Schedules.GetSchedule(ctx, created.Item.ID)
	require.NoError(t, err)
	assert.Len(t, kept.Lines, 6)

	require.NoError(t, svc.Schedules.DeleteItem(ctx, created.Item.ID))

	_, err = svc.Schedules.GetSchedule(ctx, created.Item.ID)
	assert.True(t, errors.Is(err, domain.ErrItemNotFound), "expected ErrItemNotFound, got %v", err)
}

func TestMarkFullyRecognised(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx, svc := setupSchedules(t)

	ended := createItem(t, ctx, svc, testutil.Date(2026, time.January, 1), testutil.Date(2026, time.March, 31), "300.00", domain.SpreadEqual)
	running := createItem(t, ctx, svc, testutil.Date(2026, time.January, 1), testutil.Date(2026, time.December, 31), "1200.00", domain.SpreadEqual)

	recognised, err := svc.Schedules.MarkFullyRecognised(ctx, "acme", "1400", testutil.Date(2026, time.March, 31))
	require.NoError(t, err)
	require.Len(t, recognised, 1)
	assert.Equal(t, ended.Item.ID, recognised[0].ID)

	loaded, err := svc.Schedules.GetSchedule(ctx, running.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusActive, loaded.Item.Status)

	loaded, err = svc.Schedules.GetSchedule(ctx, ended.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusFullyRecognised, loaded.Item.Status)
}
