package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/dto"
	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
	"warbler/pkg/metrics"
	"warbler/pkg/redis"
)

// passwordCost bcrypt 计算强度，测试中调低
var passwordCost = bcrypt.DefaultCost

// dummyHash 用户不存在时参与比对的哈希，与真实哈希同等强度
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("warbler-dummy-password"), passwordCost)
	if err != nil {
		panic("生成占位密码哈希失败: " + err.Error())
	}
	return hash
})

// now 统一的时间来源，截断到微秒以兼容各数据库精度
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ============================================================================
// UserService 接口
// ============================================================================

type UserService interface {
	// Signup 注册并直接登录
	Signup(ctx context.Context, signupDTO *dto.SignupDTO) (*dto.LoginResultDTO, error)

	// Authenticate 校验用户名和密码，两种失败都返回 ErrInvalidCredentials
	Authenticate(ctx context.Context, username, password string) (*model.User, error)

	// Login 带失败次数限制的登录，成功后创建 Session
	Login(ctx context.Context, loginDTO *dto.LoginDTO) (*dto.LoginResultDTO, error)

	Logout(ctx context.Context, token string) error

	// CurrentUser 根据 Session token 找到当前用户，无效时返回 ErrInvalidSession
	CurrentUser(ctx context.Context, token string) (*dto.UserProfileDTO, error)

	GetUser(ctx context.Context, userID uint64) (*dto.UserProfileDTO, error)

	// GetUserDetail 用户主页，viewerID 为 0 表示未登录
	GetUserDetail(ctx context.Context, userID, viewerID uint64) (*dto.UserDetailDTO, error)

	// Home 登录用户首页（自己及关注对象的最新消息）
	Home(ctx context.Context, userID uint64) (*dto.HomeDTO, error)

	Search(ctx context.Context, query string) ([]*dto.UserProfileDTO, error)

	// UpdateProfile 需要当前密码，错误时返回 ErrWrongPassword
	UpdateProfile(ctx context.Context, updateDTO *dto.UpdateProfileDTO) (*dto.UserProfileDTO, error)

	// DeleteUser 注销 Session 并删除账号及其全部数据
	DeleteUser(ctx context.Context, userID uint64, token string) error
}

// ============================================================================
// userService 实现
// ============================================================================

type userService struct {
	userRepo     repository.UserRepository
	messageRepo  repository.MessageRepository
	followRepo   repository.FollowRepository
	redisManager redis.Manager
	ids          db.IDGenerator
}

// NewUserService 创建UserService实例
func NewUserService(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	followRepo repository.FollowRepository,
	redisManager redis.Manager,
	ids db.IDGenerator,
) UserService {
	return &userService{
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		followRepo:   followRepo,
		redisManager: redisManager,
		ids:          ids,
	}
}

// ============================================================================
// 注册 / 登录 / 登出
// ============================================================================

func (s *userService) Signup(ctx context.Context, signupDTO *dto.SignupDTO) (*dto.LoginResultDTO, error) {
	// 1. 验证DTO
	if err := signupDTO.Validate(); err != nil {
		log.Warn("注册参数验证失败", zap.Error(err), zap.String("username", signupDTO.Username))
		return nil, err
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(signupDTO.Password), passwordCost)
	if err != nil {
		log.Error("密码哈希失败", zap.Error(err))
		return nil, ErrPasswordHashFailed
	}

	// 3. 分配ID并写库
	id, err := s.ids.NextID()
	if err != nil {
		log.Error("生成用户ID失败", zap.Error(err))
		return nil, fmt.Errorf("生成用户ID失败: %w", err)
	}

	imageURL := signupDTO.ImageURL
	if imageURL == "" {
		imageURL = model.DefaultImageURL
	}

	user := &model.User{
		ID:             id,
		Email:          signupDTO.Email,
		Username:       signupDTO.Username,
		ImageURL:       imageURL,
		HeaderImageURL: model.DefaultHeaderImageURL,
		Password:       string(hash),
		CreatedAt:      now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn("用户名或邮箱已存在", zap.String("username", user.Username), zap.String("email", user.Email))
			return nil, ErrUserExists
		}
		log.Error("创建用户失败", zap.Error(err), zap.String("username", user.Username))
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	// 4. 注册成功即登录
	token, err := s.redisManager.GetSession().CreateSession(ctx, user.ID)
	if err != nil {
		return nil, ErrSessionCreateFailed
	}

	metrics.SignupSuccess.Inc()
	log.Info("用户注册成功", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))

	return &dto.LoginResultDTO{Token: token, Profile: dto.FromUser(user)}, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("查询用户失败", zap.Error(err), zap.String("username", username))
		}
		// 用户不存在时同样做一次比对，耗时与密码错误一致
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, loginDTO *dto.LoginDTO) (*dto.LoginResultDTO, error) {
	// 1. 验证DTO
	if err := loginDTO.Validate(); err != nil {
		metrics.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	limiter := s.redisManager.GetLoginLimiter()

	// 2. 检查登录失败次数限制
	allowed, err := limiter.IsLoginAllowed(ctx, loginDTO.Username)
	if err != nil {
		// 降级策略：限流器不可用时不影响登录
		log.Error("获取登录失败次数失败", zap.Error(err), zap.String("username", loginDTO.Username))
		allowed = true
	}
	if !allowed {
		metrics.LoginFailure.WithLabelValues("throttled").Inc()
		return nil, ErrLoginLimitExceeded
	}

	// 3. 校验用户名密码
	user, err := s.Authenticate(ctx, loginDTO.Username, loginDTO.Password)
	if err != nil {
		log.Warn("用户名或密码错误", zap.String("username", loginDTO.Username))
		if _, recordErr := limiter.RecordLoginFail(ctx, loginDTO.Username); recordErr != nil {
			log.Error("记录登录失败次数失败", zap.Error(recordErr))
		}
		metrics.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		return nil, err
	}

	// 4. 创建Session
	token, err := s.redisManager.GetSession().CreateSession(ctx, user.ID)
	if err != nil {
		log.Error("创建Session失败", zap.Error(err), zap.Uint64("user_id", user.ID))
		return nil, ErrSessionCreateFailed
	}

	// 5. 清空登录失败次数
	if err := limiter.ResetLoginFail(ctx, loginDTO.Username); err != nil {
		log.Error("重置登录失败次数失败", zap.Error(err))
	}

	metrics.LoginSuccess.Inc()
	log.Info("用户登录成功", zap.String("username", user.Username), zap.Uint64("user_id", user.ID))

	return &dto.LoginResultDTO{Token: token, Profile: dto.FromUser(user)}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	if err := s.redisManager.GetSession().DestroySession(ctx, token); err != nil {
		return fmt.Errorf("登出失败: %w", err)
	}
	return nil
}

func (s *userService) CurrentUser(ctx context.Context, token string) (*dto.UserProfileDTO, error) {
	sessions := s.redisManager.GetSession()

	userID, err := sessions.ValidateSession(ctx, token)
	if err != nil {
		if !errors.Is(err, redis.ErrSessionNotFound) {
			log.Error("校验Session失败", zap.Error(err))
		}
		return nil, ErrInvalidSession
	}

	user, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 用户已删除，清理残留的 Session
			_ = sessions.DestroySession(ctx, token)
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("获取当前用户失败: %w", err)
	}

	if err := sessions.RefreshSession(ctx, token); err != nil {
		log.Warn("刷新Session失败", zap.Error(err), zap.Uint64("user_id", userID))
	}
	return dto.FromUser(user), nil
}

// ============================================================================
// 查询
// ============================================================================

func (s *userService) GetUser(ctx context.Context, userID uint64) (*dto.UserProfileDTO, error) {
	user, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return dto.FromUser(user), nil
}

func (s *userService) GetUserDetail(ctx context.Context, userID, viewerID uint64) (*dto.UserDetailDTO, error) {
	profile, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByUser(ctx, userID, UserMessagesLimit)
	if err != nil {
		return nil, fmt.Errorf("查询用户消息失败: %w", err)
	}

	detail := &dto.UserDetailDTO{User: profile, Messages: dto.FromMessages(messages)}
	if err := s.fillCounts(ctx, userID, &detail.MessageCount, &detail.FollowerCount, &detail.FollowingCount); err != nil {
		return nil, err
	}

	if viewerID != 0 && viewerID != userID {
		if detail.IsFollowing, err = s.followRepo.IsFollowing(ctx, viewerID, userID); err != nil {
			return nil, fmt.Errorf("查询关注关系失败: %w", err)
		}
		if detail.IsFollowedBy, err = s.followRepo.IsFollowing(ctx, userID, viewerID); err != nil {
			return nil, fmt.Errorf("查询关注关系失败: %w", err)
		}
	}
	return detail, nil
}

func (s *userService) Home(ctx context.Context, userID uint64) (*dto.HomeDTO, error) {
	profile, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.Timeline(ctx, userID, TimelineLimit)
	if err != nil {
		return nil, fmt.Errorf("查询时间线失败: %w", err)
	}

	home := &dto.HomeDTO{User: profile, Messages: dto.FromMessages(messages)}
	if err := s.fillCounts(ctx, userID, &home.MessageCount, &home.FollowerCount, &home.FollowingCount); err != nil {
		return nil, err
	}
	return home, nil
}

func (s *userService) fillCounts(ctx context.Context, userID uint64, messages, followers, following *int) error {
	var err error
	if *messages, err = s.messageRepo.CountByUser(ctx, userID); err != nil {
		return fmt.Errorf("统计消息失败: %w", err)
	}
	if *followers, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return fmt.Errorf("统计粉丝失败: %w", err)
	}
	if *following, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return fmt.Errorf("统计关注失败: %w", err)
	}
	return nil
}

func (s *userService) Search(ctx context.Context, query string) ([]*dto.UserProfileDTO, error) {
	users, err := s.userRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("搜索用户失败: %w", err)
	}
	return dto.FromUsers(users), nil
}

// ============================================================================
// 修改资料 / 注销
// ============================================================================

func (s *userService) UpdateProfile(ctx context.Context, updateDTO *dto.UpdateProfileDTO) (*dto.UserProfileDTO, error) {
	// 1. 验证DTO
	if err := updateDTO.Validate(); err != nil {
		return nil, err
	}

	// 2. 校验当前密码
	user, err := s.userRepo.GetByID(ctx, updateDTO.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(updateDTO.Password)); err != nil {
		log.Warn("修改资料密码错误", zap.Uint64("user_id", user.ID))
		return nil, ErrWrongPassword
	}

	// 3. 更新
	updateDTO.ApplyTo(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("更新用户失败: %w", err)
	}

	log.Info("修改资料成功", zap.Uint64("user_id", user.ID))
	return dto.FromUser(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uint64, token string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("删除用户失败: %w", err)
	}

	// 删除成功后再登出，失败时保持登录状态
	if err := s.redisManager.GetSession().DestroySession(ctx, token); err != nil {
		log.Warn("注销时销毁Session失败", zap.Error(err), zap.Uint64("user_id", userID))
	}

	log.Info("用户已删除", zap.Uint64("user_id", userID))
	return nil
}
