package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"shg-service/configs"
	"shg-service/internal/finance"
	"shg-service/internal/metrics"
	"shg-service/internal/models"
	"shg-service/internal/repository"
	"shg-service/pkg/apperror"
)

// memStore is an in-memory stand-in for the postgres repositories. Reads and
// writes copy rows so callers cannot alias stored state.
type memStore struct {
	mu sync.Mutex

	nextID        int
	users         map[int]*models.User
	groups        map[int]*models.Group
	members       map[int]*models.Member
	loans         map[int]*models.Loan
	rules         map[int]*models.LateFineRule // by group
	periods       map[int]*models.Period
	contributions map[int]*models.Contribution
	tick          time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[int]*models.User{},
		groups:        map[int]*models.Group{},
		members:       map[int]*models.Member{},
		loans:         map[int]*models.Loan{},
		rules:         map[int]*models.LateFineRule{},
		periods:       map[int]*models.Period{},
		contributions: map[int]*models.Contribution{},
		tick:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

// stamp returns a strictly increasing time so updated_at ordering is stable
func (m *memStore) stamp() time.Time {
	m.tick = m.tick.Add(time.Second)
	return m.tick
}

func (m *memStore) repos() *repository.Repository {
	return &repository.Repository{
		User:         &memUsers{m},
		Group:        &memGroups{m},
		Member:       &memMembers{m},
		Loan:         &memLoans{m},
		LateFineRule: &memRules{m},
		Period:       &memPeriods{m},
		Contribution: &memContributions{m},
	}
}

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u *models.User) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return 0, apperror.Conflict("user already exists")
		}
	}
	cp := *u
	cp.ID = r.s.id()
	r.s.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.NotFound("user %d not found", id)
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

type memGroups struct{ s *memStore }

func (r *memGroups) Create(_ context.Context, g *models.Group) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *g
	cp.ID = r.s.id()
	r.s.groups[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memGroups) GetByID(_ context.Context, id int) (*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[id]
	if !ok {
		return nil, apperror.NotFound("group %d not found", id)
	}
	cp := *g
	return &cp, nil
}

func (r *memGroups) GetByIDForUpdate(ctx context.Context, id int) (*models.Group, error) {
	return r.GetByID(ctx, id)
}

func (r *memGroups) GetByLeaderID(_ context.Context, leaderID int) ([]*models.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Group
	for _, g := range r.s.groups {
		if g.LeaderID == leaderID {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memGroups) Update(_ context.Context, g *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[g.ID]; !ok {
		return apperror.NotFound("group %d not found", g.ID)
	}
	cp := *g
	r.s.groups[g.ID] = &cp
	return nil
}

func (r *memGroups) UpdateBalances(_ context.Context, id int, cashInHand, cashInBank float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[id]
	if !ok {
		return apperror.NotFound("group %d not found", id)
	}
	g.CashInHand = cashInHand
	g.CashInBank = cashInBank
	return nil
}

type memMembers struct{ s *memStore }

func (r *memMembers) Create(_ context.Context, m *models.Member) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	cp.ID = r.s.id()
	r.s.members[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memMembers) GetByID(_ context.Context, id int) (*models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[id]
	if !ok {
		return nil, apperror.NotFound("member %d not found", id)
	}
	cp := *m
	return &cp, nil
}

func (r *memMembers) list(groupID int, activeOnly bool) []*models.Member {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Member
	for _, m := range r.s.members {
		if m.GroupID == groupID && (!activeOnly || m.IsActive) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memMembers) GetByGroupID(_ context.Context, groupID int) ([]*models.Member, error) {
	return r.list(groupID, false), nil
}

func (r *memMembers) GetActiveByGroupID(_ context.Context, groupID int) ([]*models.Member, error) {
	return r.list(groupID, true), nil
}

func (r *memMembers) UpdateLoanBalanceCache(_ context.Context, memberID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[memberID]
	if !ok {
		return apperror.NotFound("member %d not found", memberID)
	}
	m.LoanBalanceCache = r.s.activeBalance(memberID)
	return nil
}

func (r *memMembers) RefreshGroupLoanBalanceCaches(_ context.Context, groupID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.GroupID == groupID {
			m.LoanBalanceCache = r.s.activeBalance(m.ID)
		}
	}
	return nil
}

// activeBalance must be called with mu held
func (m *memStore) activeBalance(memberID int) float64 {
	var amounts []float64
	for _, l := range m.loans {
		if l.MemberID == memberID && l.Status == models.LoanStatusActive {
			amounts = append(amounts, l.CurrentBalance)
		}
	}
	return finance.Sum2(amounts...)
}

type memLoans struct{ s *memStore }

func (r *memLoans) Create(_ context.Context, l *models.Loan) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *l
	cp.ID = r.s.id()
	r.s.loans[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memLoans) GetByIDForUpdate(_ context.Context, id int) (*models.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return nil, apperror.NotFound("loan %d not found", id)
	}
	cp := *l
	return &cp, nil
}

func (r *memLoans) GetLatestActiveByMemberForUpdate(_ context.Context, memberID int) (*models.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *models.Loan
	for _, l := range r.s.loans {
		if l.MemberID != memberID || l.Status != models.LoanStatusActive {
			continue
		}
		if latest == nil || l.DateIssued.After(latest.DateIssued) ||
			(l.DateIssued.Equal(latest.DateIssued) && l.ID > latest.ID) {
			latest = l
		}
	}
	if latest == nil {
		return nil, apperror.NotFound("loan not found")
	}
	cp := *latest
	return &cp, nil
}

func (r *memLoans) GetByGroupID(_ context.Context, groupID int) ([]*models.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Loan
	for _, l := range r.s.loans {
		if l.GroupID == groupID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLoans) UpdateBalance(_ context.Context, l *models.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.loans[l.ID]
	if !ok {
		return apperror.NotFound("loan %d not found", l.ID)
	}
	stored.CurrentBalance = l.CurrentBalance
	stored.Status = l.Status
	return nil
}

func (r *memLoans) SumActiveByMember(_ context.Context, memberID int) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.activeBalance(memberID), nil
}

func (r *memLoans) ActiveBalancesByGroup(_ context.Context, groupID int) (map[int]float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[int]float64{}
	for _, l := range r.s.loans {
		if l.GroupID == groupID && l.Status == models.LoanStatusActive {
			out[l.MemberID] = finance.Sum2(out[l.MemberID], l.CurrentBalance)
		}
	}
	return out, nil
}

type memRules struct{ s *memStore }

func (r *memRules) GetByGroupID(_ context.Context, groupID int) (*models.LateFineRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule, ok := r.s.rules[groupID]
	if !ok {
		return nil, apperror.NotFound("late fine rule for group %d not found", groupID)
	}
	cp := *rule
	return &cp, nil
}

func (r *memRules) Replace(_ context.Context, rule *models.LateFineRule) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rule
	if existing, ok := r.s.rules[rule.GroupID]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = r.s.id()
	}
	for _, t := range cp.Tiers {
		t.RuleID = cp.ID
	}
	r.s.rules[rule.GroupID] = &cp
	return cp.ID, nil
}

type memPeriods struct{ s *memStore }

func (r *memPeriods) Create(_ context.Context, p *models.Period) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.periods {
		if existing.GroupID == p.GroupID && existing.SequenceNumber == p.SequenceNumber {
			return 0, apperror.Conflict("period already exists")
		}
	}
	cp := *p
	cp.ID = r.s.id()
	r.s.periods[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memPeriods) GetByID(_ context.Context, id int) (*models.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return nil, apperror.NotFound("period %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memPeriods) GetByIDForUpdate(ctx context.Context, id int) (*models.Period, error) {
	return r.GetByID(ctx, id)
}

// sorted returns the group's periods by ascending sequence
func (r *memPeriods) sorted(groupID int) []*models.Period {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Period
	for _, p := range r.s.periods {
		if p.GroupID == groupID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNumber < out[j].SequenceNumber })
	return out
}

func (r *memPeriods) GetCurrentOpen(_ context.Context, groupID int) (*models.Period, error) {
	for _, p := range r.sorted(groupID) {
		if p.IsOpen() {
			return p, nil
		}
	}
	return nil, apperror.NotFound("open period not found")
}

func (r *memPeriods) GetBySequence(_ context.Context, groupID, sequence int) (*models.Period, error) {
	for _, p := range r.sorted(groupID) {
		if p.SequenceNumber == sequence {
			return p, nil
		}
	}
	return nil, apperror.NotFound("period not found")
}

func (r *memPeriods) GetLatest(_ context.Context, groupID int) (*models.Period, error) {
	periods := r.sorted(groupID)
	if len(periods) == 0 {
		return nil, apperror.NotFound("period not found")
	}
	return periods[len(periods)-1], nil
}

func (r *memPeriods) GetByGroupID(_ context.Context, groupID int) ([]*models.Period, error) {
	periods := r.sorted(groupID)
	for i, j := 0, len(periods)-1; i < j; i, j = i+1, j-1 {
		periods[i], periods[j] = periods[j], periods[i]
	}
	return periods, nil
}

func (r *memPeriods) GetClosed(ctx context.Context, groupID, limit int) ([]*models.Period, error) {
	all, _ := r.GetByGroupID(ctx, groupID)
	var out []*models.Period
	for _, p := range all {
		if !p.IsOpen() && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPeriods) Update(_ context.Context, p *models.Period) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.periods[p.ID]; !ok {
		return apperror.NotFound("period %d not found", p.ID)
	}
	cp := *p
	r.s.periods[p.ID] = &cp
	return nil
}

type memContributions struct{ s *memStore }

// load must be called with mu held
func (r *memContributions) load(c *models.Contribution) *models.Contribution {
	cp := *c
	if m, ok := r.s.members[c.MemberID]; ok {
		cp.MemberName = m.Name
	}
	if c.CashAllocation != nil {
		alloc := *c.CashAllocation
		cp.CashAllocation = &alloc
	}
	return &cp
}

func (r *memContributions) GetByID(_ context.Context, id int) (*models.Contribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contributions[id]
	if !ok {
		return nil, apperror.NotFound("contribution %d not found", id)
	}
	return r.load(c), nil
}

func (r *memContributions) GetByIDForUpdate(ctx context.Context, id int) (*models.Contribution, error) {
	return r.GetByID(ctx, id)
}

func (r *memContributions) GetByPeriodAndMember(_ context.Context, periodID, memberID int) (*models.Contribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contributions {
		if c.PeriodID == periodID && c.MemberID == memberID {
			return r.load(c), nil
		}
	}
	return nil, apperror.NotFound("contribution not found")
}

func (r *memContributions) GetByPeriodID(_ context.Context, periodID int) ([]*models.Contribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Contribution
	for _, c := range r.s.contributions {
		if c.PeriodID == periodID {
			out = append(out, r.load(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

func (r *memContributions) GetByPeriodAndMemberForUpdate(ctx context.Context, periodID, memberID int) (*models.Contribution, error) {
	return r.GetByPeriodAndMember(ctx, periodID, memberID)
}

func (r *memContributions) Upsert(_ context.Context, c *models.Contribution) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, stored := range r.s.contributions {
		if stored.PeriodID != c.PeriodID || stored.MemberID != c.MemberID {
			continue
		}
		if stored.TotalPaid != c.TotalPaid {
			return 0, apperror.Conflict("contribution for member %d changed while its dues were updated; retry", c.MemberID)
		}
		stored.CompulsoryContributionDue = c.CompulsoryContributionDue
		stored.LoanInterestDue = c.LoanInterestDue
		stored.LateFineAmount = c.LateFineAmount
		stored.CarryForwardAmount = c.CarryForwardAmount
		stored.MinimumDueAmount = c.MinimumDueAmount
		stored.RemainingAmount = c.RemainingAmount
		stored.CreditBalance = c.CreditBalance
		stored.DueDate = c.DueDate
		stored.Status = c.Status
		stored.PaidDate = c.PaidDate
		stored.UpdatedAt = r.s.stamp()
		return stored.ID, nil
	}
	cp := *c
	cp.ID = r.s.id()
	cp.CreatedAt = r.s.stamp()
	cp.UpdatedAt = cp.CreatedAt
	r.s.contributions[cp.ID] = &cp
	return cp.ID, nil
}

func (r *memContributions) Update(_ context.Context, c *models.Contribution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contributions[c.ID]; !ok {
		return apperror.NotFound("contribution %d not found", c.ID)
	}
	cp := *c
	cp.MemberName = ""
	cp.UpdatedAt = r.s.stamp()
	r.s.contributions[c.ID] = &cp
	return nil
}

func (r *memContributions) CreateBatch(_ context.Context, rows []*models.Contribution) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inserted := 0
next:
	for _, c := range rows {
		for _, stored := range r.s.contributions {
			if stored.PeriodID == c.PeriodID && stored.MemberID == c.MemberID {
				continue next
			}
		}
		cp := *c
		cp.ID = r.s.id()
		cp.CreatedAt = r.s.stamp()
		cp.UpdatedAt = cp.CreatedAt
		r.s.contributions[cp.ID] = &cp
		inserted++
	}
	return inserted, nil
}

func (r *memContributions) LatestCashAllocation(_ context.Context, periodID int) (*models.CashAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *models.Contribution
	for _, c := range r.s.contributions {
		if c.PeriodID != periodID || c.CashAllocation == nil {
			continue
		}
		if latest == nil || c.UpdatedAt.After(latest.UpdatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	alloc := *latest.CashAllocation
	return &alloc, nil
}

// fakeSender records messages instead of dialing SMTP
type fakeSender struct {
	mu   sync.Mutex
	sent []*gomail.Message
	done chan struct{}
}

func newFakeSender() *fakeSender {
	return &fakeSender{done: make(chan struct{}, 8)}
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, m...)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fixture wires a service stack to a memStore with a fixed clock
type fixture struct {
	store *memStore
	svc   *Service
	now   time.Time
	cfg   *configs.Config
}

func testConfig() *configs.Config {
	return &configs.Config{
		JWT:     configs.JWTConfig{Secret: "test-secret", TTL: 1},
		Email:   configs.EmailConfig{SenderEmail: "no-reply@example.com"},
		Finance: configs.FinanceConfig{DefaultBankPercent: 70, Currency: "INR"},
	}
}

func newFixture(now time.Time, mutate ...func(*Dependencies)) *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{store: newMemStore(), now: now, cfg: testConfig()}
	deps := Dependencies{
		Repos:   f.store.repos(),
		Logger:  logger,
		Config:  f.cfg,
		Metrics: metrics.New(),
		Clock:   func() time.Time { return f.now },
	}
	for _, fn := range mutate {
		fn(&deps)
	}
	f.svc = NewService(deps)
	return f
}

// seedGroup stores a MONTHLY group collected on the 10th with members
func (f *fixture) seedGroup(monthly, rate float64, names ...string) (*models.Group, []*models.Member) {
	ctx := context.Background()
	leaderID, _ := f.store.repos().User.Create(ctx, &models.User{
		Username: "leader", Email: "leader@example.com", FirstName: "Asha",
	})

	group := &models.Group{
		Name:                 "Sakhi Mandal",
		LeaderID:             leaderID,
		CollectionFrequency:  finance.Monthly,
		CollectionDayOfMonth: 10,
		MonthlyContribution:  monthly,
		InterestRate:         rate,
	}
	group.ID, _ = f.store.repos().Group.Create(ctx, group)

	var members []*models.Member
	for _, name := range names {
		m := &models.Member{GroupID: group.ID, Name: name, Email: name + "@example.com", IsActive: true}
		m.ID, _ = f.store.repos().Member.Create(ctx, m)
		members = append(members, m)
	}
	return group, members
}

func ptr[T any](v T) *T {
	return &v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
