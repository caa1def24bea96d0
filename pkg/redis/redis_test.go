package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"warbler/internal/model"
	"warbler/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init(&logger.Config{Level: "fatal", Output: "stdout"})
	os.Exit(m.Run())
}

// MockClient Client 的 testify mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockClient) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockClient) GetUint64(ctx context.Context, key string) (uint64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) Del(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.Called(ctx, key, expiration).Error(0)
}

func (m *MockClient) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return m.Called(ctx, key, dest).Error(0)
}

func (m *MockClient) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockClient) Close() error {
	return m.Called().Error(0)
}

// ============================================================================
// Session
// ============================================================================

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	sm := NewSessionManager(client)

	client.On("Set", ctx, mock.MatchedBy(func(key string) bool {
		return len(key) == len(SessionKeyPrefix)+36 && key[:len(SessionKeyPrefix)] == SessionKeyPrefix
	}), uint64(7), SessionTTL).Return(nil)

	token, err := sm.CreateSession(ctx, 7)

	require.NoError(t, err)
	assert.Len(t, token, 36)
	client.AssertExpectations(t)
}

func TestCreateSessionRedisError(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	sm := NewSessionManager(client)

	client.On("Set", ctx, mock.Anything, uint64(7), SessionTTL).Return(errors.New("connection refused"))

	token, err := sm.CreateSession(ctx, 7)

	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestValidateSession(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	sm := NewSessionManager(client)

	client.On("GetUint64", ctx, "sess:good").Return(uint64(42), nil)
	client.On("GetUint64", ctx, "sess:gone").Return(uint64(0), ErrNil)

	userID, err := sm.ValidateSession(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)

	_, err = sm.ValidateSession(ctx, "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = sm.ValidateSession(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	client.AssertExpectations(t)
}

func TestDestroySession(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	sm := NewSessionManager(client)

	client.On("Del", ctx, []string{"sess:abc"}).Return(nil)

	require.NoError(t, sm.DestroySession(ctx, "abc"))
	require.NoError(t, sm.DestroySession(ctx, ""))

	client.AssertNumberOfCalls(t, "Del", 1)
}

func TestRefreshSession(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	sm := NewSessionManager(client)

	client.On("Expire", ctx, "sess:abc", SessionTTL).Return(nil)

	require.NoError(t, sm.RefreshSession(ctx, "abc"))
	client.AssertExpectations(t)
}

// ============================================================================
// LoginLimiter
// ============================================================================

func TestRecordLoginFailFirstSetsTTL(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	ll := NewLoginLimiter(client)

	client.On("Incr", ctx, "login_fail:alice").Return(int64(1), nil)
	client.On("Expire", ctx, "login_fail:alice", LoginFailTTL).Return(nil)

	count, err := ll.RecordLoginFail(ctx, "alice")

	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	client.AssertExpectations(t)
}

func TestRecordLoginFailLaterKeepsTTL(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	ll := NewLoginLimiter(client)

	client.On("Incr", ctx, "login_fail:alice").Return(int64(3), nil)

	count, err := ll.RecordLoginFail(ctx, "alice")

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	client.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything, mock.Anything)
}

func TestIsLoginAllowed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		value    string
		err      error
		expected bool
	}{
		{"no record", "", ErrNil, true},
		{"below limit", "4", nil, true},
		{"at limit", "5", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockClient)
			client.On("Get", ctx, "login_fail:bob").Return(tt.value, tt.err)

			allowed, err := NewLoginLimiter(client).IsLoginAllowed(ctx, "bob")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, allowed)
		})
	}
}

func TestGetLoginFailCountCorrupt(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	client.On("Get", ctx, "login_fail:bob").Return("abc", nil)

	_, err := NewLoginLimiter(client).GetLoginFailCount(ctx, "bob")
	assert.Error(t, err)
}

func TestResetLoginFail(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	client.On("Del", ctx, []string{"login_fail:bob"}).Return(nil)

	require.NoError(t, NewLoginLimiter(client).ResetLoginFail(ctx, "bob"))
	client.AssertExpectations(t)
}

// ============================================================================
// UserCache
// ============================================================================

func TestUserCacheMiss(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	client.On("GetJSON", ctx, "user:9", mock.Anything).Return(ErrNil)

	user, err := NewUserCache(client).GetUser(ctx, 9)

	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserCacheHit(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	client.On("GetJSON", ctx, "user:9", mock.Anything).Run(func(args mock.Arguments) {
		dest := args.Get(2).(*CachedUser)
		dest.ID = 9
		dest.Username = "carol"
		dest.Email = "carol@example.com"
	}).Return(nil)

	user, err := NewUserCache(client).GetUser(ctx, 9)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "carol", user.Username)

	m := user.ToModel()
	assert.Equal(t, uint64(9), m.ID)
	assert.Empty(t, m.Password)
}

func TestUserCacheNullHit(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	client.On("GetJSON", ctx, "user:9", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(2).(*CachedUser).Username = NullCacheValue
	}).Return(nil)

	user, err := NewUserCache(client).GetUser(ctx, 9)

	assert.ErrorIs(t, err, ErrCachedNull)
	assert.Nil(t, user)
}

func TestUserCacheSet(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	uc := NewUserCache(client)

	client.On("SetJSON", ctx, "user:3", mock.MatchedBy(func(c *CachedUser) bool {
		return c.ID == 3 && c.Username == "dave"
	}), UserCacheTTL).Return(nil)
	client.On("SetJSON", ctx, "user:4", mock.MatchedBy(func(c *CachedUser) bool {
		return c.Username == NullCacheValue
	}), NullCacheTTL).Return(nil)
	client.On("Del", ctx, []string{"user:3"}).Return(nil)

	require.NoError(t, uc.SetUser(ctx, &model.User{ID: 3, Username: "dave", Password: "hash"}))
	require.NoError(t, uc.SetNullCache(ctx, 4))
	require.NoError(t, uc.DeleteUser(ctx, 3))

	client.AssertExpectations(t)
}

func TestManager(t *testing.T) {
	client := new(MockClient)
	m := NewManager(client)

	assert.NotNil(t, m.GetSession())
	assert.NotNil(t, m.GetLoginLimiter())
	assert.NotNil(t, m.GetUserCache())
}
