package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"warbler/internal/model"
	"warbler/internal/repository"
)

func setupFollowService() (FollowService, *MockUserRepository, *MockFollowRepository) {
	userRepo := new(MockUserRepository)
	followRepo := new(MockFollowRepository)
	return NewFollowService(userRepo, followRepo), userRepo, followRepo
}

func TestFollow_Success(t *testing.T) {
	svc, userRepo, followRepo := setupFollowService()
	ctx := context.Background()

	userRepo.On("GetProfile", ctx, uint64(2)).Return(&model.User{ID: 2, Username: "bob"}, nil)
	followRepo.On("Follow", ctx, uint64(1), uint64(2)).Return(nil)

	require.NoError(t, svc.Follow(ctx, 1, 2))
	followRepo.AssertExpectations(t)
}

func TestFollow_Self(t *testing.T) {
	svc, userRepo, followRepo := setupFollowService()

	err := svc.Follow(context.Background(), 1, 1)

	assert.ErrorIs(t, err, ErrSelfFollow)
	userRepo.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	followRepo.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollow_UnknownUser(t *testing.T) {
	svc, userRepo, followRepo := setupFollowService()
	ctx := context.Background()

	userRepo.On("GetProfile", ctx, uint64(9)).Return(nil, repository.ErrNotFound)

	err := svc.Follow(ctx, 1, 9)

	assert.ErrorIs(t, err, ErrUserNotFound)
	followRepo.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnfollow(t *testing.T) {
	svc, _, followRepo := setupFollowService()
	ctx := context.Background()

	followRepo.On("Unfollow", ctx, uint64(1), uint64(2)).Return(nil)

	require.NoError(t, svc.Unfollow(ctx, 1, 2))
	followRepo.AssertExpectations(t)
}

func TestIsFollowingAndIsFollowedBy(t *testing.T) {
	svc, _, followRepo := setupFollowService()
	ctx := context.Background()

	// 1 关注了 2，2 没有关注 1
	followRepo.On("IsFollowing", ctx, uint64(1), uint64(2)).Return(true, nil)
	followRepo.On("IsFollowing", ctx, uint64(2), uint64(1)).Return(false, nil)

	ok, err := svc.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsFollowedBy(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsFollowedBy(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowersAndFollowing(t *testing.T) {
	svc, userRepo, followRepo := setupFollowService()
	ctx := context.Background()

	userRepo.On("GetProfile", ctx, uint64(1)).Return(&model.User{ID: 1, Username: "alice"}, nil)
	followRepo.On("ListFollowers", ctx, uint64(1)).Return([]*model.User{{ID: 2, Username: "bob"}}, nil)
	followRepo.On("ListFollowing", ctx, uint64(1)).Return([]*model.User{}, nil)

	followers, err := svc.Followers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", followers.User.Username)
	require.Len(t, followers.Users, 1)
	assert.Equal(t, "bob", followers.Users[0].Username)

	following, err := svc.Following(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, following.Users)
}

func TestFollowers_UnknownUser(t *testing.T) {
	svc, userRepo, _ := setupFollowService()
	ctx := context.Background()

	userRepo.On("GetProfile", ctx, uint64(404)).Return(nil, repository.ErrNotFound)

	_, err := svc.Followers(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
