package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shg-service/internal/finance"
	"shg-service/internal/models"
	"shg-service/pkg/apperror"
)

func TestGroupCreateAndAuthorize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(date(2024, time.March, 5))

	group, err := f.svc.Group.Create(ctx, 7, &models.GroupCreate{
		Name:                "Pragati",
		CollectionFrequency: finance.Weekly,
		CollectionDayOfWeek: finance.Friday,
		MonthlyContribution: 50.255,
		InterestRate:        18,
		CashInHand:          1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, group.LeaderID)
	assert.Equal(t, 50.26, group.MonthlyContribution)

	_, err = f.svc.Group.Authorize(ctx, group.ID, 7)
	assert.NoError(t, err)

	_, err = f.svc.Group.Authorize(ctx, group.ID, 8)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.svc.Group.Authorize(ctx, 9999, 7)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	led, err := f.svc.Group.GetByLeaderID(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, led, 1)
}

func TestGroupCreate_Validation(t *testing.T) {
	f := newFixture(date(2024, time.March, 5))

	_, err := f.svc.Group.Create(context.Background(), 7, &models.GroupCreate{
		Name:                "X",
		CollectionFrequency: "DAILY",
		InterestRate:        120,
	})
	require.True(t, apperror.Is(err, apperror.KindValidation))

	appErr, _ := apperror.As(err)
	details := appErr.Details.(map[string]string)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "collectionFrequency")
	assert.Equal(t, "must be at most 100", details["interestRate"])
}

func TestGroupUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(date(2024, time.March, 5))
	group, _ := f.seedGroup(100, 12)

	updated, err := f.svc.Group.Update(ctx, group.ID, &models.GroupUpdate{
		MonthlyContribution:  ptr(150.0),
		CollectionDayOfMonth: ptr(15),
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.MonthlyContribution)
	assert.Equal(t, 15, updated.CollectionDayOfMonth)
	assert.Equal(t, group.Name, updated.Name)
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(date(2024, time.March, 5))
	group, _ := f.seedGroup(100, 12)

	member, err := f.svc.Group.AddMember(ctx, group.ID, &models.MemberCreate{Name: "lata", Email: "lata@example.com"})
	require.NoError(t, err)
	assert.True(t, member.IsActive)

	_, err = f.svc.Group.AddMember(ctx, group.ID, &models.MemberCreate{Name: "lata", Email: "not-an-email"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.Group.AddMember(ctx, 9999, &models.MemberCreate{Name: "lata"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	members, err := f.svc.Group.GetMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestSetLateFineRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(date(2024, time.March, 5))
	group, _ := f.seedGroup(100, 12)

	_, err := f.svc.Group.GetLateFineRule(ctx, group.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.svc.Group.SetLateFineRule(ctx, group.ID, &models.LateFineRuleInput{RuleType: finance.RuleDailyFixed})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.Group.SetLateFineRule(ctx, group.ID, &models.LateFineRuleInput{
		RuleType: finance.RuleTierBased,
		Tiers:    []*models.LateFineTierInput{{StartDay: 5, EndDay: 2, Amount: 10}},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	rule, err := f.svc.Group.SetLateFineRule(ctx, group.ID, &models.LateFineRuleInput{
		RuleType:        finance.RuleTierBased,
		UseDefaultTiers: true,
	})
	require.NoError(t, err)
	assert.True(t, rule.IsEnabled)
	assert.Len(t, rule.Tiers, len(finance.DefaultTiers()))

	disabled, err := f.svc.Group.SetLateFineRule(ctx, group.ID, &models.LateFineRuleInput{
		RuleType:    finance.RuleDailyFixed,
		IsEnabled:   ptr(false),
		DailyAmount: ptr(5.0),
	})
	require.NoError(t, err)
	assert.Equal(t, rule.ID, disabled.ID)
	assert.Nil(t, disabled.Policy())
}
