package payment_test

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
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rate(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func openLoan(cur loan.Currency, outstanding string) *loan.Loan {
	return &loan.Loan{
		ID:                 uuid.New(),
		ClientName:         "Luisa Pérez",
		TotalPayable:       dec(outstanding),
		OutstandingBalance: dec(outstanding),
		Currency:           cur,
		Frequency:          loan.FrequencyWeekly,
		Status:             loan.StatusActive,
	}
}

var paidOn = time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)

func TestService_Register(t *testing.T) {
	dbErr := errors.New("db error")

	type args struct {
		loan   *loan.Loan
		params func(l *loan.Loan) payment.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(repo *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan)
		wantApply string
		wantErr   error
	}

	found := func(loans *payment.MockLoanGetter, l *loan.Loan) {
		loans.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
	}

	stored := func(repo *payment.MockRepository) {
		repo.EXPECT().
			CreatePayment(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *payment.Payment) error {
				p.ID = uuid.New()
				p.CreatedAt = time.Now()
				return nil
			})
	}

	tests := []testCase{
		{
			name: "SameCurrency",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "500"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("150"), Currency: loan.CurrencyUSD, PaymentDate: paidOn}
				},
			},
			setupMock: func(repo *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
				stored(repo)
			},
			wantApply: "150",
		},
		{
			name: "DollarsToBolivares",
			args: args{
				loan: openLoan(loan.CurrencyVES, "10000"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("50"), Currency: loan.CurrencyUSD, ExchangeRate: rate("36.5"), PaymentDate: paidOn}
				},
			},
			setupMock: func(repo *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
				stored(repo)
			},
			wantApply: "1825",
		},
		{
			name: "BolivaresToDollars",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "500"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("730"), Currency: loan.CurrencyVES, ExchangeRate: rate("36.5"), PaymentDate: paidOn}
				},
			},
			setupMock: func(repo *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
				stored(repo)
			},
			wantApply: "20",
		},
		{
			name: "CappedAtOutstanding",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "100"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("150"), Currency: loan.CurrencyUSD, PaymentDate: paidOn}
				},
			},
			setupMock: func(repo *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
				stored(repo)
			},
			wantApply: "100",
		},
		{
			name: "MissingRate",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "500"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("730"), Currency: loan.CurrencyVES, PaymentDate: paidOn}
				},
			},
			setupMock: func(_ *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
			},
			wantErr: payment.ErrMissingRate,
		},
		{
			name: "ZeroRate",
			args: args{
				loan: openLoan(loan.CurrencyVES, "500"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("5"), Currency: loan.CurrencyUSD, ExchangeRate: rate("0"), PaymentDate: paidOn}
				},
			},
			setupMock: func(_ *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
			},
			wantErr: payment.ErrMissingRate,
		},
		{
			name: "PaidLoan",
			args: args{
				loan: func() *loan.Loan {
					l := openLoan(loan.CurrencyUSD, "0")
					l.Status = loan.StatusPaid
					return l
				}(),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("10"), Currency: loan.CurrencyUSD, PaymentDate: paidOn}
				},
			},
			setupMock: func(_ *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
			},
			wantErr: payment.ErrLoanClosed,
		},
		{
			name: "UncollectibleLoan",
			args: args{
				loan: func() *loan.Loan {
					l := openLoan(loan.CurrencyUSD, "300")
					l.Status = loan.StatusUncollectible
					return l
				}(),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("10"), Currency: loan.CurrencyUSD, PaymentDate: paidOn}
				},
			},
			setupMock: func(_ *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
			},
			wantErr: payment.ErrLoanClosed,
		},
		{
			name: "ZeroAmount",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "300"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: decimal.Zero, Currency: loan.CurrencyUSD, PaymentDate: paidOn}
				},
			},
			wantErr: payment.ErrInvalidAmount,
		},
		{
			name: "UnknownCurrency",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "300"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("10"), Currency: loan.Currency("COP"), PaymentDate: paidOn}
				},
			},
			wantErr: payment.ErrInvalidCurrency,
		},
		{
			name: "MissingDate",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "300"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("10"), Currency: loan.CurrencyUSD}
				},
			},
			wantErr: payment.ErrMissingDate,
		},
		{
			name: "LoanNotFound",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "300"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("10"), Currency: loan.CurrencyUSD, PaymentDate: paidOn}
				},
			},
			setupMock: func(_ *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				loans.EXPECT().Get(gomock.Any(), l.ID).Return(nil, loan.ErrNotFound)
			},
			wantErr: loan.ErrNotFound,
		},
		{
			name: "RepoError",
			args: args{
				loan: openLoan(loan.CurrencyUSD, "300"),
				params: func(l *loan.Loan) payment.CreateParams {
					return payment.CreateParams{LoanID: l.ID, Amount: dec("10"), Currency: loan.CurrencyUSD, PaymentDate: paidOn}
				},
			},
			setupMock: func(repo *payment.MockRepository, loans *payment.MockLoanGetter, l *loan.Loan) {
				found(loans, l)
				repo.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(dbErr)
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := payment.NewMockRepository(ctrl)
			loans := payment.NewMockLoanGetter(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, loans, tt.args.loan)
			}

			svc := payment.NewService(repo, loans)
			params := tt.args.params(tt.args.loan)

			got, err := svc.Register(context.Background(), params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			assert.NotEmpty(t, got.ID)
			assert.Equal(t, tt.args.loan.ID, got.LoanID)
			assert.Equal(t, "Luisa Pérez", got.ClientName)
			assert.True(t, params.Amount.Equal(got.Amount))
			assert.True(t, dec(tt.wantApply).Equal(got.AppliedAmount), got.AppliedAmount.String())
			assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), got.PaymentDate)
		})
	}
}

func TestService_RegisterBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	usd := openLoan(loan.CurrencyUSD, "100")
	ves := openLoan(loan.CurrencyVES, "5000")

	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	params := []payment.CreateParams{
		{LoanID: usd.ID, Amount: dec("60"), Currency: loan.CurrencyUSD, PaymentDate: day(1), Reference: "A1"},
		{LoanID: ves.ID, Amount: dec("10"), Currency: loan.CurrencyUSD, ExchangeRate: rate("36"), PaymentDate: day(2)},
		{LoanID: usd.ID, Amount: dec("60"), Currency: loan.CurrencyUSD, PaymentDate: day(5), Reference: "A2"},
		{LoanID: ves.ID, Amount: dec("200"), Currency: loan.CurrencyVES, PaymentDate: day(3), Reference: "dup"},
	}

	repo := payment.NewMockRepository(ctrl)
	loans := payment.NewMockLoanGetter(ctrl)
	itx := payment.NewMockImportTx(ctrl)

	repo.EXPECT().BeginImport(gomock.Any(), day(1), day(5)).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*payment.Payment{
		{LoanID: ves.ID, Amount: dec("200.00"), Currency: loan.CurrencyVES, PaymentDate: day(3), Reference: "dup"},
	}, nil)
	loans.EXPECT().Get(gomock.Any(), usd.ID).Return(usd, nil).Times(1)
	loans.EXPECT().Get(gomock.Any(), ves.ID).Return(ves, nil).Times(1)

	var created []*payment.Payment

	itx.EXPECT().
		CreatePayments(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ps []*payment.Payment) error {
			created = ps
			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil).AnyTimes()

	svc := payment.NewService(repo, loans)

	res, err := svc.RegisterBatch(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, res.Imported, 3)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, "dup", res.Duplicates[0].Reference)
	assert.Equal(t, res.Imported, created)

	assert.True(t, dec("60").Equal(res.Imported[0].AppliedAmount))
	assert.True(t, dec("360").Equal(res.Imported[1].AppliedAmount))
	assert.True(t, dec("40").Equal(res.Imported[2].AppliedAmount), "second payment only covers what is left")
}

func TestService_RegisterBatch_PaymentAfterLoanClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := openLoan(loan.CurrencyUSD, "50")

	params := []payment.CreateParams{
		{LoanID: l.ID, Amount: dec("50"), Currency: loan.CurrencyUSD, PaymentDate: paidOn, Reference: "1"},
		{LoanID: l.ID, Amount: dec("5"), Currency: loan.CurrencyUSD, PaymentDate: paidOn, Reference: "2"},
	}

	repo := payment.NewMockRepository(ctrl)
	loans := payment.NewMockLoanGetter(ctrl)
	itx := payment.NewMockImportTx(ctrl)

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
	itx.EXPECT().Rollback().Return(nil)
	loans.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)

	svc := payment.NewService(repo, loans)

	_, err := svc.RegisterBatch(context.Background(), params)
	require.ErrorIs(t, err, payment.ErrLoanClosed)
	assert.Contains(t, err.Error(), "payment 2")
}

func TestService_RegisterBatch_InvalidRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := payment.NewService(payment.NewMockRepository(ctrl), payment.NewMockLoanGetter(ctrl))

	_, err := svc.RegisterBatch(context.Background(), []payment.CreateParams{
		{LoanID: uuid.New(), Amount: dec("5"), Currency: loan.CurrencyUSD, PaymentDate: paidOn},
		{LoanID: uuid.New(), Amount: dec("-5"), Currency: loan.CurrencyUSD, PaymentDate: paidOn},
	})

	require.ErrorIs(t, err, payment.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "payment 2")
}

func TestService_RegisterBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := payment.NewService(payment.NewMockRepository(ctrl), payment.NewMockLoanGetter(ctrl))

	res, err := svc.RegisterBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Imported)
	assert.Empty(t, res.Duplicates)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := payment.NewMockRepository(ctrl)
	repo.EXPECT().DeletePayment(gomock.Any(), id).Return(payment.ErrNotFound)

	svc := payment.NewService(repo, payment.NewMockLoanGetter(ctrl))
	assert.ErrorIs(t, svc.Delete(context.Background(), id), payment.ErrNotFound)
}

func TestConvert(t *testing.T) {
	type testCase struct {
		name     string
		amount   string
		from, to loan.Currency
		rate     *decimal.Decimal
		want     string
		wantErr  error
	}

	tests := []testCase{
		{name: "Same", amount: "12.5", from: loan.CurrencyUSD, to: loan.CurrencyUSD, want: "12.5"},
		{name: "SameIgnoresRate", amount: "100", from: loan.CurrencyVES, to: loan.CurrencyVES, rate: rate("0"), want: "100"},
		{name: "USDToVES", amount: "10", from: loan.CurrencyUSD, to: loan.CurrencyVES, rate: rate("36.55"), want: "365.5"},
		{name: "VESToUSDRounds", amount: "100", from: loan.CurrencyVES, to: loan.CurrencyUSD, rate: rate("3"), want: "33.33"},
		{name: "NilRate", amount: "1", from: loan.CurrencyVES, to: loan.CurrencyUSD, wantErr: payment.ErrMissingRate},
		{name: "NegativeRate", amount: "1", from: loan.CurrencyUSD, to: loan.CurrencyVES, rate: rate("-1"), wantErr: payment.ErrMissingRate},
		{name: "Unknown", amount: "1", from: loan.Currency("EUR"), to: loan.CurrencyUSD, rate: rate("1"), wantErr: payment.ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := payment.Convert(dec(tt.amount), tt.from, tt.to, tt.rate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), got.String())
		})
	}
}

func TestPayment_Settle(t *testing.T) {
	type args struct {
		payment *payment.Payment
		cur     loan.Currency
		status  loan.Status
		balance string
	}

	type testCase struct {
		name        string
		args        args
		wantApplied string
		wantErr     error
	}

	usd := func(amount string) *payment.Payment {
		return &payment.Payment{Amount: dec(amount), Currency: loan.CurrencyUSD}
	}

	tests := []testCase{
		{
			name:        "UnderBalance",
			args:        args{payment: usd("80"), cur: loan.CurrencyUSD, status: loan.StatusActive, balance: "100"},
			wantApplied: "80",
		},
		{
			name:        "CappedAtBalance",
			args:        args{payment: usd("80"), cur: loan.CurrencyUSD, status: loan.StatusActive, balance: "20"},
			wantApplied: "20",
		},
		{
			name: "ConvertedThenCapped",
			args: args{
				payment: &payment.Payment{Amount: dec("50"), Currency: loan.CurrencyUSD, ExchangeRateAtPayment: rate("36.5")},
				cur:     loan.CurrencyVES, status: loan.StatusOverdue, balance: "1000",
			},
			wantApplied: "1000",
		},
		{
			name:    "NothingLeft",
			args:    args{payment: usd("80"), cur: loan.CurrencyUSD, status: loan.StatusActive, balance: "0"},
			wantErr: payment.ErrLoanClosed,
		},
		{
			name:    "Paid",
			args:    args{payment: usd("80"), cur: loan.CurrencyUSD, status: loan.StatusPaid, balance: "100"},
			wantErr: payment.ErrLoanClosed,
		},
		{
			name:    "Uncollectible",
			args:    args{payment: usd("80"), cur: loan.CurrencyUSD, status: loan.StatusUncollectible, balance: "100"},
			wantErr: payment.ErrLoanClosed,
		},
		{
			name:    "MissingRate",
			args:    args{payment: usd("80"), cur: loan.CurrencyVES, status: loan.StatusActive, balance: "100"},
			wantErr: payment.ErrMissingRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.args.payment.Settle(tt.args.cur, tt.args.status, dec(tt.args.balance))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, dec(tt.wantApplied).Equal(tt.args.payment.AppliedAmount), tt.args.payment.AppliedAmount.String())
		})
	}
}

// Two payments prepared against the same stale balance: settling each one
// against the balance left by the other keeps the total within the debt.
func TestPayment_Settle_SequentialAgainstLockedBalance(t *testing.T) {
	balance := dec("100")

	first := &payment.Payment{Amount: dec("80"), Currency: loan.CurrencyUSD, AppliedAmount: dec("80")}
	second := &payment.Payment{Amount: dec("80"), Currency: loan.CurrencyUSD, AppliedAmount: dec("80")}

	require.NoError(t, first.Settle(loan.CurrencyUSD, loan.StatusActive, balance))
	balance = balance.Sub(first.AppliedAmount)

	require.NoError(t, second.Settle(loan.CurrencyUSD, loan.StatusActive, balance))
	balance = balance.Sub(second.AppliedAmount)

	assert.True(t, dec("80").Equal(first.AppliedAmount))
	assert.True(t, dec("20").Equal(second.AppliedAmount))
	assert.True(t, balance.IsZero())

	third := &payment.Payment{Amount: dec("5"), Currency: loan.CurrencyUSD}
	assert.ErrorIs(t, third.Settle(loan.CurrencyUSD, loan.StatusPaid, balance), payment.ErrLoanClosed)
}

func TestService_RegisterBatch_RepeatedRowInBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := openLoan(loan.CurrencyUSD, "100")

	row := payment.CreateParams{LoanID: l.ID, Amount: dec("10"), Currency: loan.CurrencyUSD, PaymentDate: paidOn, Reference: "Zelle 77"}
	other := payment.CreateParams{LoanID: l.ID, Amount: dec("10"), Currency: loan.CurrencyUSD, PaymentDate: paidOn, Reference: "Zelle 78"}
	params := []payment.CreateParams{row, other, row}

	repo := payment.NewMockRepository(ctrl)
	loans := payment.NewMockLoanGetter(ctrl)
	itx := payment.NewMockImportTx(ctrl)

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	loans.EXPECT().Get(gomock.Any(), l.ID).Return(l, nil)
	itx.EXPECT().CreatePayments(gomock.Any(), gomock.Len(2)).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil).AnyTimes()

	svc := payment.NewService(repo, loans)

	res, err := svc.RegisterBatch(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, res.Imported, 2)
	assert.Equal(t, "Zelle 77", res.Imported[0].Reference)
	assert.Equal(t, "Zelle 78", res.Imported[1].Reference)
	assert.Equal(t, []payment.CreateParams{row}, res.Duplicates)
}
