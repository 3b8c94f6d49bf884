package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shg-service/internal/models"
	"shg-service/pkg/apperror"
)

func TestLoanCreate_RefreshesBalanceCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(date(2024, time.March, 5))
	group, members := f.seedGroup(100, 12, "meena")

	for _, amount := range []float64{1000, 500.555} {
		_, err := f.svc.Loan.Create(ctx, group.ID, &models.LoanCreate{
			MemberID:       members[0].ID,
			LoanType:       models.LoanTypePersonal,
			OriginalAmount: amount,
			InterestRate:   12,
		})
		require.NoError(t, err)
	}

	member, err := f.store.repos().Member.GetByID(ctx, members[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1500.56, member.LoanBalanceCache)

	loans, err := f.svc.Loan.GetByGroupID(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, models.LoanStatusActive, loans[0].Status)
	assert.Equal(t, date(2024, time.March, 5), loans[0].DateIssued)
}

func TestLoanCreate_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(date(2024, time.March, 5))
	group, _ := f.seedGroup(100, 12, "meena")
	_, outsiders := f.seedGroup(100, 12, "ravi")

	_, err := f.svc.Loan.Create(ctx, group.ID, &models.LoanCreate{
		MemberID:       outsiders[0].ID,
		LoanType:       models.LoanTypePersonal,
		OriginalAmount: 100,
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.svc.Loan.Create(ctx, group.ID, &models.LoanCreate{
		MemberID:       outsiders[0].ID,
		LoanType:       "CAR",
		OriginalAmount: 0,
	})
	require.True(t, apperror.Is(err, apperror.KindValidation))

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "loanType")
	assert.Contains(t, details, "originalAmount")
}

func TestLoanRepay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(date(2024, time.March, 5))
	group, members := f.seedGroup(100, 12, "meena")

	loan, err := f.svc.Loan.Create(ctx, group.ID, &models.LoanCreate{
		MemberID:       members[0].ID,
		LoanType:       models.LoanTypePersonal,
		OriginalAmount: 1000,
	})
	require.NoError(t, err)

	t.Run("by member", func(t *testing.T) {
		result, err := f.svc.Loan.Repay(ctx, group.ID, &models.LoanRepayment{MemberID: members[0].ID, Amount: 400})
		require.NoError(t, err)
		assert.Equal(t, loan.ID, result.Loan.ID)
		assert.Equal(t, 1000.0, result.PreviousBalance)
		assert.Equal(t, 400.0, result.RepaymentAmount)
		assert.Equal(t, 600.0, result.Loan.CurrentBalance)
	})

	t.Run("more than owed", func(t *testing.T) {
		_, err := f.svc.Loan.Repay(ctx, group.ID, &models.LoanRepayment{LoanID: loan.ID, Amount: 600.01})
		require.True(t, apperror.Is(err, apperror.KindValidation))
		appErr, _ := apperror.As(err)
		assert.Equal(t, map[string]float64{"currentBalance": 600}, appErr.Details)
	})

	t.Run("no identifier", func(t *testing.T) {
		_, err := f.svc.Loan.Repay(ctx, group.ID, &models.LoanRepayment{Amount: 10})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})

	t.Run("pays off", func(t *testing.T) {
		result, err := f.svc.Loan.Repay(ctx, group.ID, &models.LoanRepayment{LoanID: loan.ID, Amount: 600})
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusPaid, result.Loan.Status)
		assert.Equal(t, 0.0, result.Loan.CurrentBalance)

		member, err := f.store.repos().Member.GetByID(ctx, members[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, member.LoanBalanceCache)
	})

	t.Run("no active loan", func(t *testing.T) {
		_, err := f.svc.Loan.Repay(ctx, group.ID, &models.LoanRepayment{MemberID: members[0].ID, Amount: 1})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))

		_, err = f.svc.Loan.Repay(ctx, group.ID, &models.LoanRepayment{LoanID: loan.ID, Amount: 1})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})
}
