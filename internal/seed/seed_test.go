package seed

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/pkg/db"
	"warbler/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init(&logger.Config{Level: "fatal", Output: "stdout"})
	passwordCost = bcrypt.MinCost
	retryBackoff = time.Millisecond
	os.Exit(m.Run())
}

type repos struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	follows  repository.FollowRepository
	ids      db.IDGenerator
}

func setupRepos(t *testing.T) *repos {
	t.Helper()

	conn, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repository.CreateAll(context.Background(), conn))

	sf, err := db.NewSnowflake(1)
	require.NoError(t, err)

	return &repos{
		users:    repository.NewUserRepository(conn, nil),
		messages: repository.NewMessageRepository(conn),
		follows:  repository.NewFollowRepository(conn),
		ids:      sf,
	}
}

func (r *repos) seeder(opts Options) *Seeder {
	return New(r.users, r.messages, r.follows, r.ids, opts)
}

func TestRun_Success(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	result, err := r.seeder(Options{Users: 5, MessagesPerUser: 2, FollowsPerUser: 2, Workers: 3, Password: "secret"}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Users)
	assert.Equal(t, 10, result.Messages)
	assert.Equal(t, 10, result.Follows)

	count, err := r.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	first, err := r.users.GetByUsername(ctx, "user00001")
	require.NoError(t, err)
	assert.Equal(t, "user00001@example.com", first.Email)
	assert.Equal(t, model.DefaultImageURL, first.ImageURL)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(first.Password), []byte("secret")))

	second, err := r.users.GetByUsername(ctx, "user00002")
	require.NoError(t, err)
	last, err := r.users.GetByUsername(ctx, "user00005")
	require.NoError(t, err)

	messages, err := r.messages.CountByUser(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, messages)

	// 环形关注：每人关注后面两个，也被前面两个关注
	following, err := r.follows.CountFollowing(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, following)
	followers, err := r.follows.CountFollowers(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, followers)

	ok, err := r.follows.IsFollowing(ctx, first.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.follows.IsFollowing(ctx, last.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.follows.IsFollowing(ctx, first.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRun_ReusesExistingUsers(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	opts := Options{Users: 3, MessagesPerUser: 1, FollowsPerUser: 1, Workers: 2}

	_, err := r.seeder(opts).Run(ctx)
	require.NoError(t, err)
	first, err := r.users.GetByUsername(ctx, "user00001")
	require.NoError(t, err)

	_, err = r.seeder(opts).Run(ctx)
	require.NoError(t, err)

	count, err := r.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	again, err := r.users.GetByUsername(ctx, "user00001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	// 消息每次追加，关注关系保持唯一
	messages, err := r.messages.CountByUser(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, messages)
	following, err := r.follows.CountFollowing(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, following)
}

// failingUsers 写入总是失败的用户仓储
type failingUsers struct {
	repository.UserRepository
	calls int
}

func (f *failingUsers) Create(context.Context, *model.User) error {
	f.calls++
	return errors.New("db down")
}

func TestRun_UserCreateFails(t *testing.T) {
	r := setupRepos(t)
	users := &failingUsers{}

	_, err := New(users, r.messages, r.follows, r.ids, Options{Users: 1, Workers: 1}).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user00001")
	assert.Equal(t, maxRetries, users.calls)
}

func TestRun_CanceledContext(t *testing.T) {
	r := setupRepos(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.seeder(Options{Users: 10, Workers: 2}).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions_ApplyDefaults(t *testing.T) {
	opts := Options{Users: 3, MessagesPerUser: -1, FollowsPerUser: 10}
	opts.applyDefaults()

	assert.Equal(t, 3, opts.Users)
	assert.Equal(t, 0, opts.MessagesPerUser)
	assert.Equal(t, 2, opts.FollowsPerUser)
	assert.Equal(t, DefaultWorkers, opts.Workers)
	assert.Equal(t, DefaultPassword, opts.Password)

	var empty Options
	empty.applyDefaults()
	assert.Equal(t, DefaultUsers, empty.Users)
}

func TestUsername(t *testing.T) {
	assert.Equal(t, "user00001", Username(0))
	assert.Equal(t, "user00042", Username(41))
}

func TestProgressTracker(t *testing.T) {
	p := NewProgressTracker("users", 4)
	p.Add(1)
	p.Add(3)
	p.Finish()
	assert.Equal(t, 4, p.Current())

	empty := NewProgressTracker("follows", 0)
	empty.Add(0)
	assert.Equal(t, 0, empty.Current())
}
