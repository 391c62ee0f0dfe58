package duplicates

import (
	"context"
	"testing"

	"canoe-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_ScopesToManagerAndSkipsDeleted(t *testing.T) {
	db := testutil.DB(t)
	m := testutil.Manager(t, db, "M")
	n := testutil.Manager(t, db, "N")
	existing := testutil.Fund(t, db, m.ID, "Growth Fund", 2015)
	testutil.Fund(t, db, n.ID, "Growth Fund", 2016)
	deleted := testutil.Fund(t, db, m.ID, "growth fund", 2017)
	require.NoError(t, db.Delete(&deleted).Error)
	candidate := testutil.Fund(t, db, m.ID, "GROWTH FUND", 2020)

	d := &Detector{DB: db}
	matches, err := d.Detect(context.Background(), candidate)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, existing.ID, matches[0].Fund.ID)
	assert.Equal(t, "growth fund", matches[0].MatchedName)
}

func TestDetector_LoadsSiblingAliases(t *testing.T) {
	db := testutil.DB(t)
	m := testutil.Manager(t, db, "M")
	first := testutil.Fund(t, db, m.ID, "Alpha", 2015, "GF1")
	candidate := testutil.Fund(t, db, m.ID, "gf1", 2020)

	d := &Detector{DB: db}
	siblings, err := d.Siblings(context.Background(), m.ID, candidate.ID)
	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, []string{"GF1"}, siblings[0].AliasNames())

	matches, err := d.Detect(context.Background(), candidate)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, first.ID, matches[0].Fund.ID)
	assert.Equal(t, "gf1", matches[0].MatchedName)
}
