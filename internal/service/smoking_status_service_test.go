package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/repository"
	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestSmokingStatusService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	service := NewSmokingStatusService(repository.NewSmokingStatusRepository(db))
	user := testutil.TestUser(t, db)

	_, err := service.Get(user.ID)
	assert.ErrorIs(t, err, ErrSmokingStatusNotFound)

	baseline, err := service.Baseline(user.ID)
	require.NoError(t, err)
	assert.False(t, baseline.Declared())

	info, err := service.Upsert(user.ID, &dto.SmokingStatusRequest{CigarettesPerDay: 10, PricePerCigarette: 2000})
	require.NoError(t, err)
	assert.True(t, info.Declared)
	assert.Equal(t, float64(20000), info.DailyCost)
	assert.Equal(t, float64(600000), info.MonthlyCost)
	assert.Equal(t, float64(7300000), info.YearlyCost)

	// 覆盖而不是新增
	info, err = service.Upsert(user.ID, &dto.SmokingStatusRequest{CigarettesPerDay: 5, PricePerCigarette: 2000, Notes: "giảm dần"})
	require.NoError(t, err)
	assert.Equal(t, float64(5), info.CigarettesPerDay)
	assert.Equal(t, "giảm dần", info.Notes)

	var count int64
	db.Table("smoking_statuses").Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	require.NoError(t, service.Delete(user.ID))
	assert.ErrorIs(t, service.Delete(user.ID), ErrSmokingStatusNotFound)
}
