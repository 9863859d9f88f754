package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	_ = NewUserRepository(db)

	email := "test@example.com"
	user := testutil.TestUser(t, db, testutil.WithEmail(email))

	assert.NotZero(t, user.ID)
	assert.Equal(t, email, *user.Email)
}

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	// 创建测试用户
	created := testutil.TestUser(t, db)

	// 查询用户
	found, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Username, found.Username)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	_, err := repo.GetByID(99999)
	assert.Error(t, err)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	email := "unique@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	found, err := repo.GetByEmail(email)
	require.NoError(t, err)
	assert.Equal(t, email, *found.Email)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	email := "exists@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	exists, err := repo.ExistsByEmail(email)
	require.NoError(t, err)
	assert.True(t, exists)

	notExists, err := repo.ExistsByEmail("notexists@example.com")
	require.NoError(t, err)
	assert.False(t, notExists)
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	username := "uniqueuser"
	testutil.TestUser(t, db, testutil.WithUsername(username))

	exists, err := repo.ExistsByUsername(username)
	require.NoError(t, err)
	assert.True(t, exists)

	notExists, err := repo.ExistsByUsername("notexistsuser")
	require.NoError(t, err)
	assert.False(t, notExists)
}

func TestUserRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	testutil.TestUser(t, db, testutil.WithUsername("alice"))
	testutil.TestUser(t, db, testutil.WithUsername("bob"), testutil.WithRole(model.RoleCoach))
	testutil.TestUser(t, db, testutil.WithUsername("carol"), testutil.WithUserStatus(model.UserStatusBanned))

	all, total, err := repo.List(UserFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	coaches, total, err := repo.List(UserFilter{Role: model.RoleCoach}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "bob", coaches[0].Username)

	banned, _, err := repo.List(UserFilter{Status: model.UserStatusBanned}, 1, 10)
	require.NoError(t, err)
	require.Len(t, banned, 1)
	assert.Equal(t, "carol", banned[0].Username)

	found, _, err := repo.List(UserFilter{Keyword: "ali"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alice", found[0].Username)

	page2, total, err := repo.List(UserFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page2, 1)
}

func TestUserRepository_ListActiveCoaches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	coach := testutil.TestUser(t, db, testutil.WithRole(model.RoleCoach))
	testutil.TestUser(t, db, testutil.WithRole(model.RoleCoach), testutil.WithUserStatus(model.UserStatusBanned))
	testutil.TestUser(t, db)

	coaches, err := repo.ListActiveCoaches()
	require.NoError(t, err)
	require.Len(t, coaches, 1)
	assert.Equal(t, coach.ID, coaches[0].ID)

	count, err := repo.CountByRole(model.RoleCoach)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUserRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, repo.Delete(user.ID))

	_, err := repo.GetByID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
