package redis

// Manager Redis统一管理器接口
type Manager interface {
	GetSession() SessionManager
	GetLoginLimiter() LoginLimiter
	GetUserCache() UserCache
}

type manager struct {
	session      SessionManager
	loginLimiter LoginLimiter
	userCache    UserCache
}

// NewManager 创建Redis管理器，三个组件共用同一个客户端
func NewManager(client Client) Manager {
	return &manager{
		session:      NewSessionManager(client),
		loginLimiter: NewLoginLimiter(client),
		userCache:    NewUserCache(client),
	}
}

func (m *manager) GetSession() SessionManager { return m.session }
func (m *manager) GetLoginLimiter() LoginLimiter { return m.loginLimiter }
func (m *manager) GetUserCache() UserCache { return m.userCache }
