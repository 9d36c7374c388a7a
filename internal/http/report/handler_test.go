package report_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	reporthttp "github.com/MrJamesThe3rd/prestamos/internal/http/report"
	"github.com/MrJamesThe3rd/prestamos/internal/report"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type fakeSource struct {
	asOf time.Time
	err  error
}

func (f *fakeSource) Snapshot(_ context.Context, asOf time.Time) (*collections.Snapshot, error) {
	f.asOf = asOf
	if f.err != nil {
		return nil, f.err
	}

	return &collections.Snapshot{AsOf: asOf}, nil
}

func serve(src *fakeSource, path string) *httptest.ResponseRecorder {
	now := time.Date(2024, 1, 20, 18, 30, 0, 0, time.UTC)

	r := chi.NewRouter()
	r.Route("/reports", reporthttp.NewHandler(report.NewService(src), fixedClock(now)).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHandler_Collections(t *testing.T) {
	t.Run("DefaultsToToday", func(t *testing.T) {
		src := &fakeSource{}
		rec := serve(src, "/reports/collections.xlsx")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), src.asOf)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "cobranza_20240120.xlsx")

		f, err := excelize.OpenReader(rec.Body)
		require.NoError(t, err)

		defer f.Close()

		assert.Equal(t, []string{report.SheetPortfolio, report.SheetAlerts, report.SheetSummary}, f.GetSheetList())
	})

	t.Run("AsOf", func(t *testing.T) {
		src := &fakeSource{}
		rec := serve(src, "/reports/collections.xlsx?as_of=2023-12-31")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), src.asOf)
	})

	t.Run("MalformedAsOf", func(t *testing.T) {
		rec := serve(&fakeSource{}, "/reports/collections.xlsx?as_of=ayer")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("SourceError", func(t *testing.T) {
		rec := serve(&fakeSource{err: errors.New("db down")}, "/reports/collections.xlsx")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})
}
