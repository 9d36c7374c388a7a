package loan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestService_Create(t *testing.T) {
	type args struct {
		params loan.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *loan.MockRepository)
		verify    func(t *testing.T, l *loan.Loan)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: loan.CreateParams{
					ClientID:     uuid.New(),
					Principal:    decimal.NewFromInt(1000),
					InterestRate: decimal.NewFromInt(20),
					Currency:     loan.CurrencyUSD,
					Frequency:    loan.FrequencyWeekly,
					StartDate:    date(2024, 1, 1),
					EndDate:      date(2024, 2, 26),
				},
			},
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().
					CreateLoan(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, l *loan.Loan) error {
						l.ID = uuid.New()
						l.CreatedAt = time.Now()
						return nil
					})
			},
			verify: func(t *testing.T, l *loan.Loan) {
				assert.NotEmpty(t, l.ID)
				assert.Equal(t, loan.StatusActive, l.Status)
				assert.True(t, decimal.NewFromInt(1200).Equal(l.TotalPayable))
				assert.True(t, l.TotalPayable.Equal(l.OutstandingBalance))
				// 56 days / 7 = 8 installments of 150.
				assert.True(t, decimal.NewFromInt(150).Equal(l.InstallmentAmount), l.InstallmentAmount.String())
			},
		},
		{
			name: "NoDatesIsSingleInstallment",
			args: args{
				params: loan.CreateParams{
					Principal:    decimal.NewFromInt(300),
					InterestRate: decimal.NewFromInt(10),
					Currency:     loan.CurrencyVES,
					Frequency:    loan.FrequencyMonthly,
				},
			},
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().CreateLoan(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, l *loan.Loan) {
				assert.True(t, decimal.NewFromInt(330).Equal(l.InstallmentAmount))
				assert.Nil(t, l.StartDate)
			},
		},
		{
			name: "ZeroPrincipal",
			args: args{
				params: loan.CreateParams{
					Principal: decimal.Zero,
					Currency:  loan.CurrencyUSD,
					Frequency: loan.FrequencyWeekly,
				},
			},
			wantErr: loan.ErrInvalidPrincipal,
		},
		{
			name: "NegativeRate",
			args: args{
				params: loan.CreateParams{
					Principal:    decimal.NewFromInt(10),
					InterestRate: decimal.NewFromInt(-1),
					Currency:     loan.CurrencyUSD,
					Frequency:    loan.FrequencyWeekly,
				},
			},
			wantErr: loan.ErrInvalidRate,
		},
		{
			name: "UnknownCurrency",
			args: args{
				params: loan.CreateParams{
					Principal: decimal.NewFromInt(10),
					Currency:  loan.Currency("EUR"),
					Frequency: loan.FrequencyWeekly,
				},
			},
			wantErr: loan.ErrInvalidCurrency,
		},
		{
			name: "UnknownFrequency",
			args: args{
				params: loan.CreateParams{
					Principal: decimal.NewFromInt(10),
					Currency:  loan.CurrencyUSD,
					Frequency: loan.Frequency("daily"),
				},
			},
			wantErr: loan.ErrInvalidFrequency,
		},
		{
			name: "EndBeforeStart",
			args: args{
				params: loan.CreateParams{
					Principal: decimal.NewFromInt(10),
					Currency:  loan.CurrencyUSD,
					Frequency: loan.FrequencyWeekly,
					StartDate: date(2024, 3, 1),
					EndDate:   date(2024, 2, 1),
				},
			},
			wantErr: loan.ErrInvalidDates,
		},
		{
			name: "RepoError",
			args: args{
				params: loan.CreateParams{
					Principal: decimal.NewFromInt(10),
					Currency:  loan.CurrencyUSD,
					Frequency: loan.FrequencyWeekly,
				},
			},
			setupMock: func(m *loan.MockRepository) {
				m.EXPECT().CreateLoan(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
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

			svc := loan.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := loan.NewMockRepository(ctrl)
	repo.EXPECT().UpdateStatus(gomock.Any(), id, loan.StatusUncollectible).Return(nil)

	svc := loan.NewService(repo)
	require.NoError(t, svc.UpdateStatus(context.Background(), id, loan.StatusUncollectible))

	err := svc.UpdateStatus(context.Background(), id, loan.Status("archived"))
	assert.ErrorIs(t, err, loan.ErrInvalidStatus)
}

func TestService_UpdateRecomputesInstallment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := loan.NewMockRepository(ctrl)
	repo.EXPECT().UpdateLoan(gomock.Any(), gomock.Any()).Return(nil)

	l := &loan.Loan{
		ID:           uuid.New(),
		TotalPayable: decimal.NewFromInt(600),
		Frequency:    loan.FrequencyMonthly,
		StartDate:    date(2024, 1, 1),
		EndDate:      date(2024, 3, 31),
	}

	svc := loan.NewService(repo)
	require.NoError(t, svc.Update(context.Background(), l))
	// 90 days / 30 = 3 installments.
	assert.True(t, decimal.NewFromInt(200).Equal(l.InstallmentAmount))
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	status := loan.StatusActive
	filter := loan.ListFilter{Status: &status}

	repo := loan.NewMockRepository(ctrl)
	repo.EXPECT().
		ListLoans(gomock.Any(), filter).
		Return([]*loan.Loan{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := loan.NewService(repo).List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		freq       loan.Frequency
		periodDays int
		perMonth   int
	}{
		{loan.FrequencyWeekly, 7, 4},
		{loan.FrequencyBiweekly, 15, 2},
		{loan.FrequencyMonthly, 30, 1},
		{loan.Frequency("fortnightly"), 7, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			assert.Equal(t, tt.periodDays, tt.freq.PeriodDays())
			assert.Equal(t, tt.perMonth, tt.freq.InstallmentsPerMonth())
		})
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	b := time.Date(2024, 1, 10, 0, 15, 0, 0, time.UTC)

	assert.Equal(t, 9, loan.DaysBetween(a, b))
	assert.Equal(t, -9, loan.DaysBetween(b, a))
	// 2024 is a leap year.
	assert.Equal(t, 2, loan.DaysBetween(*date(2024, 2, 28), *date(2024, 3, 1)))
}
