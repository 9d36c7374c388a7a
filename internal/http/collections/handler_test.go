package collections_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	collectionshttp "github.com/MrJamesThe3rd/prestamos/internal/http/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// portfolio as of 2024-01-20: one loan 5 days overdue, one due in 2 days.
func portfolio() []*loan.Loan {
	overdueStart, overdueEnd := day(2024, 1, 1), day(2024, 1, 15)
	dueSoonStart := day(2024, 1, 1)

	return []*loan.Loan{
		{
			ID:                 uuid.MustParse("7d2c9a10-5e44-4b1f-8f0a-6c9e2b7d4f02"),
			ClientName:         "Pedro",
			Currency:           loan.CurrencyUSD,
			Frequency:          loan.FrequencyWeekly,
			OutstandingBalance: decimal.NewFromInt(100),
			StartDate:          &dueSoonStart,
			Status:             loan.StatusActive,
		},
		{
			ID:                 uuid.MustParse("0b6f3b7e-8c53-4d8e-9a52-3f4f1c1e2a01"),
			ClientName:         "María",
			Currency:           loan.CurrencyVES,
			Frequency:          loan.FrequencyWeekly,
			OutstandingBalance: decimal.NewFromInt(250),
			StartDate:          &overdueStart,
			EndDate:            &overdueEnd,
			Status:             loan.StatusActive,
		},
	}
}

func serve(t *testing.T, loans []*loan.Loan, listErr error, path string) *httptest.ResponseRecorder {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := loan.NewMockRepository(ctrl)
	repo.EXPECT().ListLoans(gomock.Any(), gomock.Any()).Return(loans, listErr).AnyTimes()

	svc := collections.NewService(loan.NewService(repo), fixedClock(day(2024, 1, 20).Add(15*time.Hour)))

	r := chi.NewRouter()
	r.Route("/collections", collectionshttp.NewHandler(svc).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHandler_Portfolio(t *testing.T) {
	rec := serve(t, portfolio(), nil, "/collections/portfolio")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		ClientName  string `json:"client_name"`
		State       string `json:"state"`
		DaysOverdue int    `json:"days_overdue"`
		NextDueDate string `json:"next_due_date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "María", got[0].ClientName)
	assert.Equal(t, "overdue", got[0].State)
	assert.Equal(t, 5, got[0].DaysOverdue)
	assert.Equal(t, "due_soon", got[1].State)
	assert.Equal(t, "2024-01-22", got[1].NextDueDate)
}

func TestHandler_AsOf(t *testing.T) {
	t.Run("Explicit", func(t *testing.T) {
		rec := serve(t, portfolio(), nil, "/collections/alerts?as_of=2024-01-13")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []struct {
			Message     string `json:"message"`
			GeneratedAt string `json:"generated_at"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

		// Both loans fall due on 01-15, two days later.
		require.Len(t, got, 2)

		for _, a := range got {
			assert.Equal(t, "2024-01-13", a.GeneratedAt)
			assert.Contains(t, a.Message, "vence en 2 día(s)")
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		rec := serve(t, portfolio(), nil, "/collections/metrics?as_of=20-01-2024")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid date")
	})
}

func TestHandler_Snapshot(t *testing.T) {
	rec := serve(t, portfolio(), nil, "/collections/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		AsOf    string `json:"as_of"`
		Alerts  []any  `json:"alerts"`
		Metrics struct {
			Total      int `json:"total"`
			Overdue    int `json:"overdue"`
			ByCurrency map[string]struct {
				Overdue string `json:"overdue"`
			} `json:"by_currency"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "2024-01-20", got.AsOf)
	assert.Len(t, got.Alerts, 2)
	assert.Equal(t, 2, got.Metrics.Total)
	assert.Equal(t, 1, got.Metrics.Overdue)
	assert.Equal(t, "250", got.Metrics.ByCurrency["VES"].Overdue)
}

func TestHandler_ListError(t *testing.T) {
	rec := serve(t, nil, errors.New("db down"), "/collections/alerts")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
