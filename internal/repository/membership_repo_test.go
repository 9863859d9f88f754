package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestMembershipRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMembershipRepository(db)
	cheap := testutil.TestMembership(t, db, testutil.WithPrice(50000))
	hidden := testutil.TestMembership(t, db, testutil.WithPrice(10000))
	hidden.IsActive = false
	require.NoError(t, repo.Update(hidden))

	active, err := repo.List(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, cheap.ID, active[0].ID)
	assert.Len(t, active[0].Features, 2)

	all, err := repo.List(false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, hidden.ID, all[0].ID)
}
