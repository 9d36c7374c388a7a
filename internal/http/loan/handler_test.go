package loan_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	loanhttp "github.com/MrJamesThe3rd/prestamos/internal/http/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

func TestHandler(t *testing.T) {
	id := uuid.MustParse("0b6f3b7e-8c53-4d8e-9a52-3f4f1c1e2a01")
	clientID := uuid.MustParse("2f1d7c9e-3a3b-4f5e-8d6c-1b2a3c4d5e6f")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	existing := func() *loan.Loan {
		return &loan.Loan{
			ID:                 id,
			ClientID:           clientID,
			Principal:          decimal.NewFromInt(100),
			TotalPayable:       decimal.NewFromInt(120),
			OutstandingBalance: decimal.NewFromInt(120),
			Currency:           loan.CurrencyUSD,
			Frequency:          loan.FrequencyWeekly,
			StartDate:          &start,
			Status:             loan.StatusActive,
		}
	}

	type testCase struct {
		name       string
		method     string
		path       string
		body       string
		setupMock  func(m *loan.MockRepository)
		wantStatus int
		wantBody   []string
	}

	tests := []testCase{
		{
			name:   "Create",
			method: http.MethodPost,
			path:   "/loans",
			body: `{"client_id":"` + clientID.String() + `","principal":"1000","interest_rate":20,` +
				`"currency":"USD","frequency":"weekly","start_date":"2024-01-01","end_date":"2024-03-25"}`,
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().CreateLoan(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *loan.Loan) error {
						l.ID = id
						return nil
					})
			},
			wantStatus: http.StatusCreated,
			wantBody:   []string{`"total_payable":"1200"`, `"installment_amount":"100"`, `"start_date":"2024-01-01"`, `"status":"active"`},
		},
		{
			name:       "CreateMalformedDate",
			method:     http.MethodPost,
			path:       "/loans",
			body:       `{"client_id":"` + clientID.String() + `","principal":"1000","currency":"USD","frequency":"weekly","start_date":"01/01/2024"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{"invalid date"},
		},
		{
			name:       "CreateMissingClient",
			method:     http.MethodPost,
			path:       "/loans",
			body:       `{"principal":"1000","currency":"USD","frequency":"weekly"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "CreateZeroPrincipal",
			method:     http.MethodPost,
			path:       "/loans",
			body:       `{"client_id":"` + clientID.String() + `","principal":"0","currency":"USD","frequency":"weekly"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{"principal must be greater than zero"},
		},
		{
			name:   "ListFilters",
			method: http.MethodGet,
			path:   "/loans?status=active&currency=VES&client_id=" + clientID.String(),
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().ListLoans(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f loan.ListFilter) ([]*loan.Loan, error) {
						assert.Equal(t, loan.StatusActive, *f.Status)
						assert.Equal(t, loan.CurrencyVES, *f.Currency)
						assert.Equal(t, clientID, *f.ClientID)
						return nil, nil
					})
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{"[]"},
		},
		{
			name:       "ListBadClientID",
			method:     http.MethodGet,
			path:       "/loans?client_id=x",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "Get",
			method: http.MethodGet,
			path:   "/loans/" + id.String(),
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().GetLoan(gomock.Any(), id).Return(existing(), nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"outstanding_balance":"120"`},
		},
		{
			name:   "GetNotFound",
			method: http.MethodGet,
			path:   "/loans/" + id.String(),
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().GetLoan(gomock.Any(), id).Return(nil, loan.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "UpdateSchedule",
			method: http.MethodPatch,
			path:   "/loans/" + id.String(),
			body:   `{"end_date":"2024-01-29"}`,
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().GetLoan(gomock.Any(), id).Return(existing(), nil)
				m.EXPECT().UpdateLoan(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *loan.Loan) error {
						assert.True(t, decimal.NewFromInt(30).Equal(l.InstallmentAmount))
						return nil
					})
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"end_date":"2024-01-29"`},
		},
		{
			name:   "UpdateEndBeforeStart",
			method: http.MethodPatch,
			path:   "/loans/" + id.String(),
			body:   `{"end_date":"2023-12-01"}`,
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().GetLoan(gomock.Any(), id).Return(existing(), nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "UpdateStatus",
			method: http.MethodPatch,
			path:   "/loans/" + id.String() + "/status",
			body:   `{"status":"uncollectible"}`,
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().UpdateStatus(gomock.Any(), id, loan.StatusUncollectible).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "UpdateStatusUnknown",
			method:     http.MethodPatch,
			path:       "/loans/" + id.String() + "/status",
			body:       `{"status":"frozen"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "Delete",
			method: http.MethodDelete,
			path:   "/loans/" + id.String(),
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().DeleteLoan(gomock.Any(), id).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := loan.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			r := chi.NewRouter()
			r.Route("/loans", loanhttp.NewHandler(loan.NewService(repo)).Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}
