package funds

import (
	"context"
	"errors"
	"sync"
	"testing"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/pkg/pagination"
	"canoe-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.DuplicateFundDetected
	err    error
}

func (n *recordingNotifier) Publish(_ context.Context, evt domain.DuplicateFundDetected) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
	return n.err
}

func setupService(t *testing.T) (*Service, *recordingNotifier, *gorm.DB) {
	db := testutil.DB(t)
	n := &recordingNotifier{}
	return NewService(db, n), n, db
}

func ptr[T any](v T) *T { return &v }

func TestCreate_PersistsAliasesAndCompanies(t *testing.T) {
	svc, notifier, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	c1 := testutil.Company(t, db, "Apple")
	c2 := testutil.Company(t, db, "Tesla")

	fund, err := svc.Create(context.Background(), CreateFundInput{
		Name:          "Growth Fund",
		StartYear:     2020,
		FundManagerID: m.ID,
		Aliases:       []string{"GF1", "Growth One"},
		CompanyIDs:    []uint{c2.ID, c1.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, fund.Manager)
	assert.Equal(t, "M", fund.Manager.Name)
	assert.Equal(t, []string{"GF1", "Growth One"}, fund.AliasNames())
	require.Len(t, fund.Companies, 2)
	assert.Equal(t, c1.ID, fund.Companies[0].ID)
	assert.Empty(t, notifier.events)

	var link domain.CompanyFund
	require.NoError(t, db.Where("fund_id = ? AND company_id = ?", fund.ID, c1.ID).First(&link).Error)
	assert.False(t, link.CreatedAt.IsZero())
}

func TestCreate_DuplicateNameRaisesOneNotification(t *testing.T) {
	svc, notifier, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	existing := testutil.Fund(t, db, m.ID, "Growth Fund", 2015)
	testutil.Fund(t, db, m.ID, "Other", 2016, "growth fund II")

	fund, err := svc.Create(context.Background(), CreateFundInput{Name: "GROWTH FUND", StartYear: 2020, FundManagerID: m.ID})
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, domain.DuplicateFundDetected{
		FundID:          fund.ID,
		DuplicateFundID: existing.ID,
		MatchedName:     "growth fund",
		FundManagerID:   m.ID,
	}, notifier.events[0])
}

func TestCreate_FirstMatchIsLowestSiblingID(t *testing.T) {
	svc, notifier, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	first := testutil.Fund(t, db, m.ID, "Alpha", 2015, "GF1")
	testutil.Fund(t, db, m.ID, "gf1", 2016)

	_, err := svc.Create(context.Background(), CreateFundInput{Name: "Beta", StartYear: 2020, FundManagerID: m.ID, Aliases: []string{"Gf1"}})
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, first.ID, notifier.events[0].DuplicateFundID)
	assert.Equal(t, "gf1", notifier.events[0].MatchedName)
}

func TestCreate_OtherManagerNoNotification(t *testing.T) {
	svc, notifier, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	n := testutil.Manager(t, db, "N")
	testutil.Fund(t, db, m.ID, "Growth Fund", 2015)

	_, err := svc.Create(context.Background(), CreateFundInput{Name: "Growth Fund", StartYear: 2020, FundManagerID: n.ID})
	require.NoError(t, err)
	assert.Empty(t, notifier.events)
}

func TestCreate_NotifierFailureDoesNotFailWrite(t *testing.T) {
	svc, notifier, db := setupService(t)
	notifier.err = errors.New("broker down")
	m := testutil.Manager(t, db, "M")
	testutil.Fund(t, db, m.ID, "Growth Fund", 2015)

	fund, err := svc.Create(context.Background(), CreateFundInput{Name: "Growth Fund", StartYear: 2020, FundManagerID: m.ID})
	require.NoError(t, err)
	assert.NotZero(t, fund.ID)
	assert.Len(t, notifier.events, 1)
}

func TestCreate_AliasConflictRollsBack(t *testing.T) {
	svc, notifier, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	testutil.Fund(t, db, m.ID, "Existing", 2015, "TAKEN")

	_, err := svc.Create(context.Background(), CreateFundInput{Name: "New", StartYear: 2020, FundManagerID: m.ID, Aliases: []string{"TAKEN"}})
	require.Error(t, err)

	var count int64
	db.Model(&domain.Fund{}).Where("name = ?", "New").Count(&count)
	assert.Equal(t, int64(0), count)
	assert.Empty(t, notifier.events)
}

func TestUpdate_AliasesOmittedVersusCleared(t *testing.T) {
	svc, notifier, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	f := testutil.Fund(t, db, m.ID, "Fund", 2015, "A", "B")
	testutil.Fund(t, db, m.ID, "Renamed", 2016)
	ctx := context.Background()

	updated, err := svc.Update(ctx, f.ID, UpdateFundInput{Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, []string{"A", "B"}, updated.AliasNames())
	assert.Empty(t, notifier.events, "update never runs detection")

	updated, err = svc.Update(ctx, f.ID, UpdateFundInput{Aliases: []string{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Aliases)

	updated, err = svc.Update(ctx, f.ID, UpdateFundInput{Aliases: []string{"C"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, updated.AliasNames())
}

func TestUpdate_SyncCompanies(t *testing.T) {
	svc, _, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	c1 := testutil.Company(t, db, "One")
	c2 := testutil.Company(t, db, "Two")
	c3 := testutil.Company(t, db, "Three")
	f := testutil.Fund(t, db, m.ID, "Fund", 2015)
	testutil.Link(t, db, f.ID, c1.ID, c2.ID)
	ctx := context.Background()

	var before domain.CompanyFund
	require.NoError(t, db.Where("fund_id = ? AND company_id = ?", f.ID, c2.ID).First(&before).Error)

	updated, err := svc.Update(ctx, f.ID, UpdateFundInput{CompanyIDs: []uint{c2.ID, c3.ID}})
	require.NoError(t, err)
	require.Len(t, updated.Companies, 2)
	assert.Equal(t, c2.ID, updated.Companies[0].ID)
	assert.Equal(t, c3.ID, updated.Companies[1].ID)

	var after domain.CompanyFund
	require.NoError(t, db.Where("fund_id = ? AND company_id = ?", f.ID, c2.ID).First(&after).Error)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt), "kept link is untouched")

	updated, err = svc.Update(ctx, f.ID, UpdateFundInput{StartYear: ptr(2001)})
	require.NoError(t, err)
	assert.Len(t, updated.Companies, 2)
	assert.Equal(t, 2001, updated.StartYear)

	updated, err = svc.Update(ctx, f.ID, UpdateFundInput{CompanyIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Companies)

	var companies int64
	db.Model(&domain.Company{}).Count(&companies)
	assert.Equal(t, int64(3), companies)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := setupService(t)
	_, err := svc.Update(context.Background(), 404, UpdateFundInput{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrFundNotFound)
}

func TestList_Filters(t *testing.T) {
	svc, _, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	n := testutil.Manager(t, db, "N")
	apple := testutil.Company(t, db, "Apple")
	a := testutil.Fund(t, db, m.ID, "Global Growth", 2015)
	b := testutil.Fund(t, db, n.ID, "Income", 2015)
	c := testutil.Fund(t, db, m.ID, "Tech GROWTH", 2018)
	testutil.Link(t, db, b.ID, apple.ID)
	ctx := context.Background()
	p := pagination.Params{Page: 1, PerPage: 15}

	page, err := svc.List(ctx, ListFilter{Name: "growth"}, p)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, a.ID, page.Items[0].ID)
	assert.Equal(t, c.ID, page.Items[1].ID)
	require.NotNil(t, page.Items[0].Manager)

	page, err = svc.List(ctx, ListFilter{FundManagerID: ptr(n.ID)}, p)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].ID)

	page, err = svc.List(ctx, ListFilter{Year: ptr(2015)}, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Meta.Total)

	page, err = svc.List(ctx, ListFilter{CompanyID: ptr(apple.ID)}, p)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].ID)
	require.Len(t, page.Items[0].Companies, 1)
}

func TestDelete_SoftDeletes(t *testing.T) {
	svc, _, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	f := testutil.Fund(t, db, m.ID, "Fund", 2015)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, f.ID))
	_, err := svc.Get(ctx, f.ID)
	assert.ErrorIs(t, err, ErrFundNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, f.ID), ErrFundNotFound)

	var raw int64
	db.Unscoped().Model(&domain.Fund{}).Where("id = ?", f.ID).Count(&raw)
	assert.Equal(t, int64(1), raw)
}

func TestLookups(t *testing.T) {
	svc, _, db := setupService(t)
	m := testutil.Manager(t, db, "M")
	c := testutil.Company(t, db, "C")
	own := testutil.Fund(t, db, m.ID, "Own", 2015, "Mine")
	testutil.Fund(t, db, m.ID, "Theirs", 2015, "Shared")
	ctx := context.Background()

	ok, err := svc.ManagerExists(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.ManagerExists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	missing, err := svc.MissingCompanyIDs(ctx, []uint{c.ID, 77})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{77: true}, missing)

	taken, err := svc.TakenAliasNames(ctx, []string{"Mine", "Shared", "Theirs", "shared", "Free"}, own.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Shared": true, "Theirs": true}, taken)

	taken, err = svc.TakenAliasNames(ctx, []string{"Mine"}, 0)
	require.NoError(t, err)
	assert.True(t, taken["Mine"])
}
