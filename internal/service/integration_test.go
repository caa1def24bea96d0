package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"warbler/internal/dto"
	"warbler/internal/repository"
	"warbler/pkg/db"
)

// 使用内存 SQLite 跑完整的业务流程，Redis 部分用 mock
type stack struct {
	users    UserService
	follows  FollowService
	messages MessageService
	redis    *MockRedisManager
}

func setupStack(t *testing.T) *stack {
	t.Helper()

	conn, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repository.CreateAll(context.Background(), conn))

	sf, err := db.NewSnowflake(1)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(conn, nil)
	messageRepo := repository.NewMessageRepository(conn)
	followRepo := repository.NewFollowRepository(conn)

	redisManager := NewMockRedisManager()
	redisManager.session.On("CreateSession", mock.Anything, mock.Anything).Return("tok", nil)
	redisManager.session.On("DestroySession", mock.Anything, mock.Anything).Return(nil)

	return &stack{
		users:    NewUserService(userRepo, messageRepo, followRepo, redisManager, sf),
		follows:  NewFollowService(userRepo, followRepo),
		messages: NewMessageService(messageRepo, sf),
		redis:    redisManager,
	}
}

func (s *stack) signup(t *testing.T, username string) *dto.UserProfileDTO {
	t.Helper()
	result, err := s.users.Signup(context.Background(), &dto.SignupDTO{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
	})
	require.NoError(t, err)
	return result.Profile
}

func TestFlow_NewUserStartsEmpty(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	alice := s.signup(t, "alice")

	detail, err := s.users.GetUserDetail(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, detail.MessageCount)
	assert.Zero(t, detail.FollowerCount)
	assert.Zero(t, detail.FollowingCount)
	assert.Empty(t, detail.Messages)

	_, err = s.users.Signup(ctx, &dto.SignupDTO{Username: "alice", Email: "other@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := s.users.Authenticate(ctx, "alice", "password")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.users.Authenticate(ctx, "alice", "nope-nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFlow_FollowTimelineAndDelete(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	carol := s.signup(t, "carol")

	require.NoError(t, s.follows.Follow(ctx, alice.ID, bob.ID))
	// 重复关注幂等
	require.NoError(t, s.follows.Follow(ctx, alice.ID, bob.ID))

	_, err := s.messages.Create(ctx, &dto.NewMessageDTO{UserID: alice.ID, Text: "first"})
	require.NoError(t, err)
	_, err = s.messages.Create(ctx, &dto.NewMessageDTO{UserID: bob.ID, Text: "second"})
	require.NoError(t, err)
	_, err = s.messages.Create(ctx, &dto.NewMessageDTO{UserID: carol.ID, Text: "not followed"})
	require.NoError(t, err)

	home, err := s.users.Home(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, home.Messages, 2)
	assert.Equal(t, "second", home.Messages[0].Text)
	assert.Equal(t, "bob", home.Messages[0].AuthorUsername)
	assert.Equal(t, "first", home.Messages[1].Text)
	assert.Equal(t, 1, home.FollowingCount)

	detail, err := s.users.GetUserDetail(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsFollowing)
	assert.False(t, detail.IsFollowedBy)
	assert.Equal(t, 1, detail.FollowerCount)

	followedBy, err := s.follows.IsFollowedBy(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, followedBy)

	// 删除 bob 后，关注关系和消息一起消失
	require.NoError(t, s.users.DeleteUser(ctx, bob.ID, "tok"))

	home, err = s.users.Home(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, home.Messages, 1)
	assert.Equal(t, "first", home.Messages[0].Text)
	assert.Zero(t, home.FollowingCount)

	_, err = s.users.GetUser(ctx, bob.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFlow_UpdateProfile(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	alice := s.signup(t, "alice")
	s.signup(t, "bob")

	update := &dto.UpdateProfileDTO{
		UserID:   alice.ID,
		Username: "alice",
		Email:    "alice@example.com",
		Bio:      "hello there",
		Location: "Lisbon",
		Password: "wrong-password",
	}
	_, err := s.users.UpdateProfile(ctx, update)
	assert.ErrorIs(t, err, ErrWrongPassword)

	update.Password = "password"
	profile, err := s.users.UpdateProfile(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", profile.Location)

	update.Username = "bob"
	_, err = s.users.UpdateProfile(ctx, update)
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := s.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hello there", got.Bio)
}
