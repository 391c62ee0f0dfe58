package warnings

import (
	"context"
	"testing"
	"time"

	"canoe-backend/internal/application/funds"
	"canoe-backend/internal/domain"
	"canoe-backend/internal/infrastructure/queue"
	"canoe-backend/internal/pkg/pagination"
	"canoe-backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstPage = pagination.Params{Page: 1, PerPage: 15}

func TestSyncNotifier_CreateFlowRecordsWarning(t *testing.T) {
	db := testutil.DB(t)
	listener := &Listener{DB: db}
	svc := funds.NewService(db, &SyncNotifier{Listener: listener})
	m := testutil.Manager(t, db, "M")
	existing := testutil.Fund(t, db, m.ID, "Growth Fund", 2015)
	ctx := context.Background()

	fund, err := svc.Create(ctx, funds.CreateFundInput{Name: "Growth Fund", StartYear: 2020, FundManagerID: m.ID})
	require.NoError(t, err)

	var w domain.DuplicateWarning
	require.NoError(t, db.First(&w).Error)
	assert.Equal(t, fund.ID, w.FundID)
	assert.Equal(t, existing.ID, w.DuplicateFundID)
	assert.Equal(t, "growth fund", w.MatchedName)
	assert.Equal(t, m.ID, w.FundManagerID)
	assert.False(t, w.IsResolved)
}

func TestSyncNotifier_OtherManagerRecordsNothing(t *testing.T) {
	db := testutil.DB(t)
	svc := funds.NewService(db, &SyncNotifier{Listener: &Listener{DB: db}})
	m := testutil.Manager(t, db, "M")
	n := testutil.Manager(t, db, "N")
	testutil.Fund(t, db, m.ID, "Growth Fund", 2015)

	_, err := svc.Create(context.Background(), funds.CreateFundInput{Name: "Growth Fund", StartYear: 2020, FundManagerID: n.ID})
	require.NoError(t, err)

	var count int64
	db.Model(&domain.DuplicateWarning{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestListener_IdempotentPerPair(t *testing.T) {
	db := testutil.DB(t)
	m := testutil.Manager(t, db, "M")
	a := testutil.Fund(t, db, m.ID, "A", 2015)
	b := testutil.Fund(t, db, m.ID, "a", 2016)
	l := &Listener{DB: db}
	evt := domain.DuplicateFundDetected{FundID: b.ID, DuplicateFundID: a.ID, MatchedName: "a", FundManagerID: m.ID}
	ctx := context.Background()

	require.NoError(t, l.Handle(ctx, evt))
	require.NoError(t, l.Handle(ctx, evt))

	var count int64
	db.Model(&domain.DuplicateWarning{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestQueueNotifier_WorkerPersistsWarning(t *testing.T) {
	db := testutil.DB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	q := &queue.RedisQueue{Rdb: rdb, Name: "notifications", Visibility: time.Minute}
	listener := &Listener{DB: db}
	svc := funds.NewService(db, &QueueNotifier{Queue: q})
	m := testutil.Manager(t, db, "M")
	existing := testutil.Fund(t, db, m.ID, "Alpha", 2015, "GF1")
	ctx := context.Background()

	fund, err := svc.Create(ctx, funds.CreateFundInput{Name: "gf1", StartYear: 2020, FundManagerID: m.ID})
	require.NoError(t, err)

	var count int64
	db.Model(&domain.DuplicateWarning{}).Count(&count)
	assert.Equal(t, int64(0), count, "nothing persisted until the worker runs")

	w := &queue.Worker{Queue: q, Handlers: listener.Handlers(), MaxAttempts: 3, Log: zerolog.Nop()}
	handled, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	require.True(t, handled)

	var warning domain.DuplicateWarning
	require.NoError(t, db.First(&warning).Error)
	assert.Equal(t, fund.ID, warning.FundID)
	assert.Equal(t, existing.ID, warning.DuplicateFundID)
	assert.Equal(t, "gf1", warning.MatchedName)
}

func seedWarning(t *testing.T, svcDB *Service, fundID, dupID, managerID uint, created time.Time, resolved bool) domain.DuplicateWarning {
	t.Helper()
	w := domain.DuplicateWarning{FundID: fundID, DuplicateFundID: dupID, MatchedName: "x", FundManagerID: managerID, IsResolved: resolved, CreatedAt: created}
	require.NoError(t, svcDB.DB.Create(&w).Error)
	if resolved {
		require.NoError(t, svcDB.DB.Model(&w).Update("is_resolved", true).Error)
	}
	return w
}

func TestListUnresolved_NewestFirstWithRelations(t *testing.T) {
	db := testutil.DB(t)
	svc := &Service{DB: db}
	m := testutil.Manager(t, db, "M")
	a := testutil.Fund(t, db, m.ID, "A", 2015, "A1")
	b := testutil.Fund(t, db, m.ID, "B", 2016, "B1")
	c := testutil.Fund(t, db, m.ID, "C", 2017)
	now := time.Now()
	older := seedWarning(t, svc, b.ID, a.ID, m.ID, now.Add(-time.Hour), false)
	newer := seedWarning(t, svc, c.ID, a.ID, m.ID, now, false)
	seedWarning(t, svc, c.ID, b.ID, m.ID, now, true)

	page, err := svc.ListUnresolved(context.Background(), firstPage)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, newer.ID, page.Items[0].ID)
	assert.Equal(t, older.ID, page.Items[1].ID)
	assert.Equal(t, int64(2), page.Meta.Total)

	first := page.Items[1]
	require.NotNil(t, first.Fund)
	require.NotNil(t, first.Fund.Manager)
	assert.Equal(t, []string{"B1"}, first.Fund.AliasNames())
	require.NotNil(t, first.DuplicateFund)
	assert.Equal(t, []string{"A1"}, first.DuplicateFund.AliasNames())
	require.NotNil(t, first.FundManager)
	assert.Equal(t, "M", first.FundManager.Name)
}

func TestResolve_TwiceStaysResolved(t *testing.T) {
	db := testutil.DB(t)
	svc := &Service{DB: db}
	m := testutil.Manager(t, db, "M")
	a := testutil.Fund(t, db, m.ID, "A", 2015)
	b := testutil.Fund(t, db, m.ID, "a", 2016)
	w := seedWarning(t, svc, b.ID, a.ID, m.ID, time.Now(), false)
	ctx := context.Background()

	out, err := svc.Resolve(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, out.IsResolved)
	require.NotNil(t, out.Fund)
	require.NotNil(t, out.DuplicateFund)
	require.NotNil(t, out.FundManager)

	out, err = svc.Resolve(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, out.IsResolved)

	page, err := svc.ListUnresolved(ctx, firstPage)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestResolve_NotFound(t *testing.T) {
	svc := &Service{DB: testutil.DB(t)}
	_, err := svc.Resolve(context.Background(), 42)
	assert.ErrorIs(t, err, ErrWarningNotFound)
}
