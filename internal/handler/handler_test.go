package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/internal/dto"
	"warbler/internal/service"
	"warbler/pkg/logger"
	"warbler/pkg/response"
)

func TestMain(m *testing.M) {
	_ = logger.Init(&logger.Config{Level: "fatal", Output: "stdout"})
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"用户已存在", service.ErrUserExists, http.StatusConflict, response.CodeUserExists},
		{"用户名或密码错误", service.ErrInvalidCredentials, http.StatusUnauthorized, response.CodeInvalidCredentials},
		{"登录限流", service.ErrLoginLimitExceeded, http.StatusBadRequest, response.CodeLoginLimitExceeded},
		{"用户不存在", fmt.Errorf("wrap: %w", service.ErrUserNotFound), http.StatusNotFound, response.CodeUserNotFound},
		{"消息不存在", service.ErrMessageNotFound, http.StatusNotFound, response.CodeMessageNotFound},
		{"关注自己", service.ErrSelfFollow, http.StatusForbidden, response.CodeSelfFollow},
		{"无权限", service.ErrForbidden, http.StatusForbidden, response.CodeForbidden},
		{"消息过长", dto.ErrMessageTooLong, http.StatusBadRequest, response.CodeMessageTooLong},
		{"校验失败", dto.ErrEmailInvalid, http.StatusBadRequest, response.CodeInvalidParams},
		{"密码过长", dto.ErrPasswordTooLong, http.StatusBadRequest, response.CodeInvalidParams},
		{"未知错误", errors.New("db down"), http.StatusInternalServerError, response.CodeInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			writeError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var out response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.Equal(t, tt.code, out.Code)
			assert.NotEmpty(t, out.Message)
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw string
		id  uint64
		ok  bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: tt.raw}}

		id, ok := parseID(c, "id", response.CodeUserNotFound)

		assert.Equal(t, tt.id, id, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if !ok {
			assert.Equal(t, http.StatusNotFound, w.Code, tt.raw)
		}
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/users/7", userPath(7))
	assert.Equal(t, "/users/7/following", followingPath(7))
}
