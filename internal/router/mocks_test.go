package router

import (
	"context"

	"github.com/stretchr/testify/mock"

	"warbler/internal/dto"
	"warbler/internal/model"
)

// ============================================================================
// Service Mock
// ============================================================================

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, signupDTO *dto.SignupDTO) (*dto.LoginResultDTO, error) {
	args := m.Called(ctx, signupDTO)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResultDTO), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, loginDTO *dto.LoginDTO) (*dto.LoginResultDTO, error) {
	args := m.Called(ctx, loginDTO)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResultDTO), args.Error(1)
}

func (m *MockUserService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockUserService) CurrentUser(ctx context.Context, token string) (*dto.UserProfileDTO, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserProfileDTO), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID uint64) (*dto.UserProfileDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserProfileDTO), args.Error(1)
}

func (m *MockUserService) GetUserDetail(ctx context.Context, userID, viewerID uint64) (*dto.UserDetailDTO, error) {
	args := m.Called(ctx, userID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserDetailDTO), args.Error(1)
}

func (m *MockUserService) Home(ctx context.Context, userID uint64) (*dto.HomeDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.HomeDTO), args.Error(1)
}

func (m *MockUserService) Search(ctx context.Context, query string) ([]*dto.UserProfileDTO, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.UserProfileDTO), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, updateDTO *dto.UpdateProfileDTO) (*dto.UserProfileDTO, error) {
	args := m.Called(ctx, updateDTO)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserProfileDTO), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uint64, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

type MockFollowService struct {
	mock.Mock
}

func (m *MockFollowService) IsFollowing(ctx context.Context, self, other uint64) (bool, error) {
	args := m.Called(ctx, self, other)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowService) IsFollowedBy(ctx context.Context, self, other uint64) (bool, error) {
	args := m.Called(ctx, self, other)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowService) Followers(ctx context.Context, userID uint64) (*dto.FollowListDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FollowListDTO), args.Error(1)
}

func (m *MockFollowService) Following(ctx context.Context, userID uint64) (*dto.FollowListDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FollowListDTO), args.Error(1)
}

func (m *MockFollowService) Follow(ctx context.Context, followerID, followedID uint64) error {
	return m.Called(ctx, followerID, followedID).Error(0)
}

func (m *MockFollowService) Unfollow(ctx context.Context, followerID, followedID uint64) error {
	return m.Called(ctx, followerID, followedID).Error(0)
}

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Create(ctx context.Context, newDTO *dto.NewMessageDTO) (*dto.MessageDTO, error) {
	args := m.Called(ctx, newDTO)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageDTO), args.Error(1)
}

func (m *MockMessageService) Get(ctx context.Context, messageID uint64) (*dto.MessageDTO, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageDTO), args.Error(1)
}

func (m *MockMessageService) Delete(ctx context.Context, userID, messageID uint64) error {
	return m.Called(ctx, userID, messageID).Error(0)
}
