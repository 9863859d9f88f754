package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestProgressLogRepository_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewProgressLogRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, repo.Upsert(&model.ProgressLog{UserID: user.ID, Date: "2024-03-01", CigarettesPerDay: 5, Mood: "normal"}))
	require.NoError(t, repo.Upsert(&model.ProgressLog{UserID: user.ID, Date: "2024-03-01", CigarettesPerDay: 2, Mood: "good"}))

	log, err := repo.GetByDate(user.ID, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2, log.CigarettesPerDay)
	assert.Equal(t, "good", log.Mood)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProgressLogRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewProgressLogRepository(db)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	testutil.TestProgressLog(t, db, user.ID, "2024-03-01", 5, "")
	testutil.TestProgressLog(t, db, user.ID, "2024-03-02", 3, "")
	testutil.TestProgressLog(t, db, user.ID, "2024-03-04", 0, "good")
	testutil.TestProgressLog(t, db, other.ID, "2024-03-04", 9, "")

	logs, total, err := repo.ListByUser(user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-03-04", logs[0].Date)

	since, err := repo.ListSince(user.ID, "2024-03-02")
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, "2024-03-02", since[0].Date)

	all, err := repo.ListSince(user.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
