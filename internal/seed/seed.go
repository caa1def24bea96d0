package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
)

// ============================================================================
// 配置
// ============================================================================

const (
	DefaultUsers           = 100
	DefaultMessagesPerUser = 5
	DefaultFollowsPerUser  = 10
	DefaultWorkers         = 4
	DefaultPassword        = "password"

	maxRetries = 3
)

var (
	// passwordCost bcrypt 计算强度，测试中调低
	passwordCost = bcrypt.DefaultCost
	retryBackoff = time.Second
)

// Options 生成数据的规模
type Options struct {
	Users           int
	MessagesPerUser int
	FollowsPerUser  int
	Workers         int
	Password        string
}

func (o *Options) applyDefaults() {
	if o.Users <= 0 {
		o.Users = DefaultUsers
	}
	if o.MessagesPerUser < 0 {
		o.MessagesPerUser = 0
	}
	if o.FollowsPerUser < 0 {
		o.FollowsPerUser = 0
	}
	// 关注对象不能包括自己
	if o.FollowsPerUser > o.Users-1 {
		o.FollowsPerUser = o.Users - 1
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Password == "" {
		o.Password = DefaultPassword
	}
}

// Result 本次生成的数据量
type Result struct {
	Users    int
	Messages int
	Follows  int
	Elapsed  time.Duration
}

// Username 第 index 个测试用户的用户名，从 1 开始
func Username(index int) string {
	return fmt.Sprintf("user%05d", index+1)
}

// ============================================================================
// 数据生成器
// ============================================================================

// Seeder 直接写仓储，不经过 UserService，因此不需要 Redis
type Seeder struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	follows  repository.FollowRepository
	ids      db.IDGenerator
	opts     Options
}

// New 创建数据生成器
func New(
	users repository.UserRepository,
	messages repository.MessageRepository,
	follows repository.FollowRepository,
	ids db.IDGenerator,
	opts Options,
) *Seeder {
	opts.applyDefaults()
	return &Seeder{
		users:    users,
		messages: messages,
		follows:  follows,
		ids:      ids,
		opts:     opts,
	}
}

// Run 依次生成用户、消息、关注关系。已存在的用户会被复用，可重复执行
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	// 预先生成密码哈希（所有用户使用相同密码，提高性能）
	hash, err := bcrypt.GenerateFromPassword([]byte(s.opts.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("生成密码哈希失败: %w", err)
	}

	// 1. 用户
	ids := make([]uint64, s.opts.Users)
	progress := NewProgressTracker("users", s.opts.Users)
	err = s.parallel(ctx, s.opts.Users, func(ctx context.Context, i int) error {
		id, err := s.ensureUser(ctx, i, string(hash))
		if err != nil {
			return err
		}
		ids[i] = id
		progress.Add(1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	progress.Finish()

	// 2. 消息
	totalMessages := s.opts.Users * s.opts.MessagesPerUser
	progress = NewProgressTracker("messages", totalMessages)
	err = s.parallel(ctx, s.opts.Users, func(ctx context.Context, i int) error {
		for j := 0; j < s.opts.MessagesPerUser; j++ {
			if err := s.createMessage(ctx, ids[i], i, j); err != nil {
				return err
			}
			progress.Add(1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	progress.Finish()

	// 3. 关注：第 i 个用户关注其后的 FollowsPerUser 个用户（环形）
	totalFollows := s.opts.Users * s.opts.FollowsPerUser
	progress = NewProgressTracker("follows", totalFollows)
	err = s.parallel(ctx, s.opts.Users, func(ctx context.Context, i int) error {
		for k := 1; k <= s.opts.FollowsPerUser; k++ {
			followed := ids[(i+k)%len(ids)]
			if err := retry(ctx, func() error {
				return s.follows.Follow(ctx, ids[i], followed)
			}); err != nil {
				return fmt.Errorf("关注失败 %s: %w", Username(i), err)
			}
			progress.Add(1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	progress.Finish()

	return &Result{
		Users:    s.opts.Users,
		Messages: totalMessages,
		Follows:  totalFollows,
		Elapsed:  time.Since(start),
	}, nil
}

// ensureUser 创建用户，用户名已存在时返回已有用户的 ID
func (s *Seeder) ensureUser(ctx context.Context, i int, hash string) (uint64, error) {
	username := Username(i)

	var id uint64
	err := retry(ctx, func() error {
		newID, err := s.ids.NextID()
		if err != nil {
			return err
		}
		user := &model.User{
			ID:             newID,
			Email:          username + "@example.com",
			Username:       username,
			ImageURL:       model.DefaultImageURL,
			HeaderImageURL: model.DefaultHeaderImageURL,
			Bio:            fmt.Sprintf("Hi, I'm %s.", username),
			Password:       hash,
			CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
		}
		err = s.users.Create(ctx, user)
		if errors.Is(err, repository.ErrDuplicate) {
			existing, getErr := s.users.GetByUsername(ctx, username)
			if getErr != nil {
				return getErr
			}
			id = existing.ID
			return nil
		}
		if err != nil {
			return err
		}
		id = newID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("创建用户失败 %s: %w", username, err)
	}
	return id, nil
}

func (s *Seeder) createMessage(ctx context.Context, userID uint64, i, j int) error {
	return retry(ctx, func() error {
		id, err := s.ids.NextID()
		if err != nil {
			return err
		}
		return s.messages.Create(ctx, &model.Message{
			ID:        id,
			Text:      fmt.Sprintf("Message #%d from %s", j+1, Username(i)),
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			UserID:    userID,
		})
	})
}

// parallel 用固定数量的 worker 处理 [0, n) 的任务，遇到第一个错误后停止派发
func (s *Seeder) parallel(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskChan := make(chan int, s.opts.Workers*2)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for w := 0; w < s.opts.Workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range taskChan {
				if ctx.Err() != nil {
					continue
				}
				if err := fn(ctx, i); err != nil {
					log.Error("任务失败", zap.Int("worker", workerID), zap.Int("task", i), zap.Error(err))
					once.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}
		}(w)
	}

	// 分配任务
dispatch:
	for i := 0; i < n; i++ {
		select {
		case taskChan <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(taskChan)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// retry 失败后线性退避重试，重复数据不重试
func retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = fn(); err == nil || errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		if attempt == maxRetries-1 {
			break
		}
		log.Warn("写入失败，重试中...", zap.Int("attempt", attempt+1), zap.Error(err))
		select {
		case <-time.After(retryBackoff * time.Duration(attempt+1)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
