package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nspass/nspass-mockd/pkg/model"
)

func login(t *testing.T, env *testEnv, username, password string) response {
	t.Helper()
	return env.do(http.MethodPost, "/api/auth/login", map[string]any{"username": username, "password": password})
}

func TestLogin(t *testing.T) {
	env := newEnv(t)

	res := login(t, env, "admin", "nspass123")
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, res.success())
	assert.NotEmpty(t, res.dataMap()["token"])
	user := res.dataMap()["user"].(map[string]any)
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, user, "passwordHash")

	bad := login(t, env, "admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, CodeBadCredentials, bad.errorCode())

	unknown := login(t, env, "nobody", "nspass123")
	assert.Equal(t, CodeBadCredentials, unknown.errorCode())

	banned := login(t, env, "王五", "nspass123")
	assert.Equal(t, http.StatusUnauthorized, banned.Code)
	assert.Equal(t, CodeAccountDisabled, banned.errorCode())

	missing := env.do(http.MethodPost, "/api/auth/login", map[string]any{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "VALIDATION_ERROR", missing.errorCode())
}

func TestMeAndLogout(t *testing.T) {
	env := newEnv(t)

	anon := env.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, anon.Code)
	assert.Equal(t, "未登录", anon.message())

	token := login(t, env, "张三", "nspass123").dataMap()["token"].(string)
	bearer := "Bearer " + token

	me := env.do(http.MethodGet, "/api/auth/me", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "张三", me.dataMap()["name"])

	out := env.do(http.MethodPost, "/api/auth/logout", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusOK, out.Code)

	after := env.do(http.MethodGet, "/api/auth/me", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusUnauthorized, after.Code)

	garbage := env.do(http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, garbage.Code)
}

func TestRegister(t *testing.T) {
	env := newEnv(t)
	body := map[string]any{
		"username":   "孙八",
		"email":      "sunba@example.com",
		"password":   "secret123",
		"inviteCode": "wrong",
	}

	res := env.do(http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "邀请码无效", res.message())

	body["inviteCode"] = "nspass2024"
	res = env.do(http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	user := res.dataMap()["user"].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.InDelta(t, 1, user["userGroupId"], 0)

	again := env.do(http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, again.Code)

	assert.Equal(t, http.StatusOK, login(t, env, "sunba@example.com", "secret123").Code)

	_, err := env.store.UpdateWebsite(func(c *model.WebsiteConfig) error {
		c.AllowRegister = false
		return nil
	})
	require.NoError(t, err)
	body["username"], body["email"] = "周九", "zhoujiu@example.com"
	closed := env.do(http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, closed.Code)
	assert.Equal(t, "当前未开放注册", closed.message())
}

func TestOAuthCallback(t *testing.T) {
	env := newEnv(t)
	before := env.store.Users.Count()

	res := env.do(http.MethodGet, "/api/auth/oauth2/github/callback?code=abc123", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "github", res.dataMap()["provider"])
	assert.Equal(t, before+1, env.store.Users.Count())

	again := env.do(http.MethodGet, "/api/auth/oauth2/github/callback?code=abc123", nil)
	assert.Equal(t, res.dataMap()["user"].(map[string]any)["id"], again.dataMap()["user"].(map[string]any)["id"])
	assert.Equal(t, before+1, env.store.Users.Count())

	bad := env.do(http.MethodGet, "/api/auth/oauth2/github/callback?code=invalid-code", nil)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, CodeOAuthFailed, bad.errorCode())

	unknown := env.do(http.MethodGet, "/api/auth/oauth2/gitlab/callback?code=abc", nil)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, "不支持的登录方式", unknown.message())
}
