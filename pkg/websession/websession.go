package websession

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"warbler/config"
	log "warbler/pkg/logger"
)

const (
	tokenKey = "token"

	// FlashSuccess 成功提示
	FlashSuccess = "success"
	// FlashDanger 错误提示
	FlashDanger = "danger"
)

var flashCategories = []string{FlashSuccess, FlashDanger}

// Flash 一条一次性提示
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Store 浏览器侧签名 cookie 会话，只保存登录 token 和 flash 提示
type Store struct {
	name  string
	store *sessions.CookieStore
}

// New 根据会话配置创建 cookie 存储
func New(cfg *config.SessionConfig) *Store {
	key := []byte(cfg.SecretKey)
	if len(key) == 0 {
		// 未配置密钥时每次启动随机生成，重启后旧 cookie 全部失效
		log.Warn("未配置 session.secret_key，使用随机密钥")
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Store{name: cfg.CookieName, store: store}
}

// session 解码失败（密钥更换、cookie 被篡改）时返回一个新会话
func (s *Store) session(r *http.Request) *sessions.Session {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		log.Debug("cookie 会话解码失败，使用新会话", zap.Error(err))
	}
	return sess
}

// Token 读取登录 token，未登录返回空串
func (s *Store) Token(r *http.Request) string {
	token, _ := s.session(r).Values[tokenKey].(string)
	return token
}

// SetToken 写入登录 token
func (s *Store) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess := s.session(r)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// ClearToken 删除登录 token，保留未读的 flash
func (s *Store) ClearToken(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	delete(sess.Values, tokenKey)
	return sess.Save(r, w)
}

// AddFlash 添加一条 flash，下一次页面响应时取出
func (s *Store) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	sess := s.session(r)
	sess.AddFlash(message, category)
	return sess.Save(r, w)
}

// Flashes 取出并清空所有 flash
func (s *Store) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	sess := s.session(r)

	flashes := make([]Flash, 0)
	for _, category := range flashCategories {
		for _, v := range sess.Flashes(category) {
			if msg, ok := v.(string); ok {
				flashes = append(flashes, Flash{Category: category, Message: msg})
			}
		}
	}

	if len(flashes) == 0 {
		return flashes, nil
	}
	return flashes, sess.Save(r, w)
}
