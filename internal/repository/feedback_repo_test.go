package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestFeedbackRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewFeedbackRepository(db)
	user := testutil.TestUser(t, db)

	fb := &model.Feedback{UserID: user.ID, Content: "Ứng dụng rất hữu ích", Status: model.FeedbackPending}
	require.NoError(t, repo.CreateFeedback(fb))

	ok, err := repo.UpdateFeedbackStatus(fb.ID, model.FeedbackResolved)
	require.NoError(t, err)
	assert.True(t, ok)

	resolved, total, err := repo.ListFeedback(model.FeedbackResolved, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.NotNil(t, resolved[0].User)

	ok, err = repo.DeleteFeedback(fb.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateFeedbackStatus(fb.ID, model.FeedbackReviewed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFeedbackRepository_Ratings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewFeedbackRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, repo.CreateRating(&model.Rating{UserID: user.ID, Score: 5}))
	require.NoError(t, repo.CreateRating(&model.Rating{UserID: user.ID, Score: 4}))

	avg, err := repo.AverageRating()
	require.NoError(t, err)
	assert.InDelta(t, 4.5, avg, 0.001)

	list, total, err := repo.ListRatings(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	ok, err := repo.DeleteRating(list[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
