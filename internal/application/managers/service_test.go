package managers

import (
	"context"
	"testing"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/pkg/pagination"
	"canoe-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndGet_FundsCount(t *testing.T) {
	db := testutil.DB(t)
	svc := &Service{DB: db}
	m := testutil.Manager(t, db, "M")
	testutil.Manager(t, db, "Empty")
	testutil.Fund(t, db, m.ID, "A", 2015)
	gone := testutil.Fund(t, db, m.ID, "B", 2016)
	require.NoError(t, db.Delete(&gone).Error)
	ctx := context.Background()

	page, err := svc.List(ctx, pagination.Params{Page: 1, PerPage: 15})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotNil(t, page.Items[0].FundsCount)
	assert.Equal(t, int64(1), *page.Items[0].FundsCount)
	require.NotNil(t, page.Items[1].FundsCount)
	assert.Equal(t, int64(0), *page.Items[1].FundsCount)
	assert.Equal(t, int64(2), page.Meta.Total)

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FundsCount)
	assert.Equal(t, int64(1), *got.FundsCount)
}

func TestCreateUpdate(t *testing.T) {
	svc := &Service{DB: testutil.DB(t)}
	ctx := context.Background()

	m, err := svc.Create(ctx, "BlackRock")
	require.NoError(t, err)
	assert.Nil(t, m.FundsCount)

	name := "BlackRock Inc."
	m, err = svc.Update(ctx, m.ID, &name)
	require.NoError(t, err)
	assert.Equal(t, name, m.Name)

	_, err = svc.Update(ctx, 999, &name)
	assert.ErrorIs(t, err, ErrManagerNotFound)
}

func TestDelete_ConflictWhenFundsExist(t *testing.T) {
	db := testutil.DB(t)
	svc := &Service{DB: db}
	m := testutil.Manager(t, db, "M")
	testutil.Fund(t, db, m.ID, "A", 2015)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, m.ID), ErrManagerHasFunds)

	var still domain.FundManager
	require.NoError(t, db.First(&still, m.ID).Error)
	assert.Equal(t, "M", still.Name)
}

func TestDelete_SoftDeletesEmptyManager(t *testing.T) {
	db := testutil.DB(t)
	svc := &Service{DB: db}
	m := testutil.Manager(t, db, "M")
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, m.ID))
	_, err := svc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ErrManagerNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, m.ID), ErrManagerNotFound)
}
