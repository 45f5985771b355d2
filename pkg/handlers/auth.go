package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/nspass/nspass-mockd/internal/id"
	"github.com/nspass/nspass-mockd/pkg/auth"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/oauth"
	"github.com/nspass/nspass-mockd/pkg/router"
)

// Auth error codes carried in Convention B replies.
const (
	CodeBadCredentials  = "INVALID_CREDENTIALS"
	CodeAccountDisabled = "ACCOUNT_DISABLED"
	CodeOAuthFailed     = "OAUTH_FAILED"
)

// LoginRequest is the body of POST /auth/login. Username may also be an
// email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"inviteCode"`
}

// Session is returned by every successful sign-in.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
	Provider  string     `json:"provider,omitempty"`
}

func (h *Handlers) registerAuth(g *router.Group) {
	g.POST("/auth/login", h.login, router.Name("auth.login"), router.Summary("登录"), router.Body("auth.login"))
	g.POST("/auth/register", h.register, router.Name("auth.register"), router.Summary("注册"), router.Body("auth.register"))
	g.GET("/auth/me", h.me, router.Name("auth.me"), router.Summary("当前用户"))
	g.POST("/auth/logout", h.logout, router.Name("auth.logout"), router.Summary("退出登录"))
	g.GET("/auth/oauth2/:provider/callback", h.oauthCallback, router.Name("auth.oauth2Callback"), router.Summary("第三方登录回调"))
}

func (h *Handlers) login(req *router.Request) *envelope.Reply {
	var body LoginRequest
	if err := req.Bind(&body); err != nil {
		return envelope.FromError(err)
	}
	name := strings.TrimSpace(body.Username)
	u, ok := h.store.Users.Find(func(u model.User) bool {
		return u.Name == name || strings.EqualFold(u.Email, name)
	})
	if !ok || !auth.CheckPassword(u.PasswordHash, body.Password) {
		return envelope.FromError(&envelope.UnauthorizedError{Message: "用户名或密码错误", ErrCode: CodeBadCredentials})
	}
	if u.Status == model.UserBanned {
		return envelope.FromError(&envelope.UnauthorizedError{Message: "账号已被禁用", ErrCode: CodeAccountDisabled})
	}
	return h.session(u, "", "登录成功")
}

func (h *Handlers) register(req *router.Request) *envelope.Reply {
	var body RegisterRequest
	if err := req.Bind(&body); err != nil {
		return envelope.FromError(err)
	}
	site := h.store.Website()
	if !site.AllowRegister {
		return envelope.FromError(&envelope.ValidationError{Message: "当前未开放注册"})
	}
	if site.InviteRequired && !h.inviteValid(body.InviteCode) {
		return envelope.FromError(&envelope.ValidationError{Field: "inviteCode", Message: "邀请码无效"})
	}
	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		return envelope.FromError(&envelope.ValidationError{Field: "password", Message: "密码格式错误"})
	}

	u, err := h.store.Users.Insert(model.User{
		Name:              strings.TrimSpace(body.Username),
		Email:             body.Email,
		Role:              model.RoleUser,
		Status:            model.UserActive,
		UserGroupID:       h.defaultGroupID(),
		SubscriptionToken: id.Token(),
		PasswordHash:      hash,
	})
	if err != nil {
		return envelope.FromError(err)
	}
	return h.session(u, "", "注册成功")
}

func (h *Handlers) me(req *router.Request) *envelope.Reply {
	u, err := h.currentUser(req)
	if err != nil {
		return envelope.FromError(err)
	}
	return envelope.OK(u)
}

func (h *Handlers) logout(req *router.Request) *envelope.Reply {
	if token, ok := req.BearerToken(); ok {
		h.issuer.Revoke(token)
	}
	return envelope.OKMessage("已退出登录", nil)
}

func (h *Handlers) oauthCallback(req *router.Request) *envelope.Reply {
	provider := req.Param("provider")
	ident, err := h.oauth.Exchange(req.Context(), provider, req.Query.Get("code"))
	if err != nil {
		h.log.Warn("oauth callback rejected", "provider", provider, "error", err)
		msg := "第三方登录失败"
		if errors.Is(err, oauth.ErrUnknownProvider) {
			msg = "不支持的登录方式"
		}
		return envelope.FromError(&envelope.UnauthorizedError{Message: msg, ErrCode: CodeOAuthFailed})
	}

	u, ok := h.store.Users.Find(func(u model.User) bool { return u.Name == ident.Login })
	if !ok {
		u, err = h.store.Users.Insert(model.User{
			Name:              ident.Login,
			Email:             ident.Email,
			Role:              model.RoleUser,
			Status:            model.UserActive,
			UserGroupID:       h.defaultGroupID(),
			SubscriptionToken: id.Token(),
		})
		if err != nil {
			return envelope.FromError(err)
		}
	}
	if u.Status == model.UserBanned {
		return envelope.FromError(&envelope.UnauthorizedError{Message: "账号已被禁用", ErrCode: CodeAccountDisabled})
	}
	return h.session(u, ident.Provider, "登录成功")
}

// currentUser resolves the bearer token to a stored user.
func (h *Handlers) currentUser(req *router.Request) (model.User, error) {
	token, ok := req.BearerToken()
	if !ok {
		return model.User{}, &envelope.UnauthorizedError{Message: "未登录"}
	}
	claims, err := h.issuer.Parse(token)
	if err != nil {
		return model.User{}, &envelope.UnauthorizedError{Message: "登录已过期，请重新登录"}
	}
	u, ok := h.store.Users.Get(claims.UserID)
	if !ok {
		return model.User{}, &envelope.UnauthorizedError{Message: "用户不存在"}
	}
	return u, nil
}

func (h *Handlers) session(u model.User, provider, message string) *envelope.Reply {
	token, exp, err := h.issuer.Sign(u.ID, u.Name, u.Role)
	if err != nil {
		return envelope.FromError(err)
	}
	return envelope.OKMessage(message, Session{Token: token, ExpiresAt: exp, User: u, Provider: provider})
}

// defaultGroupID is the first user group, or 0 when there are none.
func (h *Handlers) defaultGroupID() int64 {
	groups := h.store.UserGroups.All()
	if len(groups) == 0 {
		return 0
	}
	return groups[0].ID
}
