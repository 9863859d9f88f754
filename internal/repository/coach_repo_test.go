package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestCoachRepository_ChatsAndMessages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCoachRepository(db)
	coach := testutil.TestUser(t, db, testutil.WithRole(model.RoleCoach))
	idle := testutil.TestUser(t, db, testutil.WithRole(model.RoleCoach))
	member := testutil.TestUser(t, db)
	chat := testutil.TestCoachChat(t, db, member.ID, coach.ID)

	got, err := repo.GetChatByMember(member.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, got.ID)
	require.NotNil(t, got.Coach)
	assert.Equal(t, coach.Username, got.Coach.Username)

	load, err := repo.ChatLoad([]int64{coach.ID, idle.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), load[coach.ID])
	assert.Equal(t, int64(0), load[idle.ID])

	for _, content := range []string{"Chào bạn", "Hôm nay thế nào?", "Ổn ạ"} {
		require.NoError(t, repo.CreateMessage(&model.ChatMessage{ChatID: chat.ID, SenderID: member.ID, Content: content}))
	}

	msgs, err := repo.ListMessages(chat.ID, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hôm nay thế nào?", msgs[0].Content)
	assert.Equal(t, "Ổn ạ", msgs[1].Content)

	chats, err := repo.ListChatsByCoach(coach.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.NotNil(t, chats[0].LastMessageAt)
}
