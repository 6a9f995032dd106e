package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsangpocruise/booking-backend/internal/models"
)

func TestDashboardBucketsInBusinessTimezone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	db, mock := newMockDB(t)
	repo := NewDashboardRepository(db, kolkata)

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, kolkata)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(`EXTRACT\(DAY FROM created_at AT TIME ZONE \$3\)`).
		WithArgs(from, to, "Asia/Kolkata").
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).AddRow(1, 2))

	since := from.AddDate(0, 0, -30)
	mock.ExpectQuery(`TO_CHAR\(created_at AT TIME ZONE \$2, 'YYYY-MM-DD'\)`).
		WithArgs(since, "Asia/Kolkata").
		WillReturnRows(sqlmock.NewRows([]string{"date", "count", "revenue"}).AddRow("2026-10-01", 2, 6396.0))

	days, err := repo.MonthlyCounts(from, to)
	require.NoError(t, err)
	assert.Equal(t, []models.DayCount{{Day: 1, Count: 2}}, days)

	trend, err := repo.DailyTrend(since)
	require.NoError(t, err)
	assert.Equal(t, []models.DailyTrend{{Date: "2026-10-01", Count: 2, Revenue: 6396}}, trend)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDashboardRepository_DefaultsToUTC(t *testing.T) {
	db, _ := newMockDB(t)

	assert.Equal(t, "UTC", NewDashboardRepository(db, nil).timezone)
	assert.Equal(t, "UTC", NewDashboardRepository(db, time.Local).timezone)
	assert.Equal(t, "UTC", NewDashboardRepository(db, time.UTC).timezone)
}
