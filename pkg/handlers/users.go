package handlers

import (
	"github.com/nspass/nspass-mockd/internal/id"
	"github.com/nspass/nspass-mockd/pkg/auth"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

var userFields = fixture.Fields[model.User]{
	fixture.ContainsField("name", func(u model.User) string { return u.Name }),
	fixture.ContainsField("email", func(u model.User) string { return u.Email }),
	fixture.EqualsField("role", func(u model.User) string { return u.Role }),
	fixture.EqualsField("status", func(u model.User) string { return u.Status }),
	fixture.IDField("userGroupId", func(u model.User) int64 { return u.UserGroupID }),
}

func (h *Handlers) userResource() *resource[model.User, model.UserPatch] {
	return &resource[model.User, model.UserPatch]{
		coll:   h.store.Users,
		fields: userFields,
		schema: "user",
		newItem: func() model.User {
			return model.User{
				Role:              model.RoleUser,
				Status:            model.UserActive,
				SubscriptionToken: id.Token(),
			}
		},
		before: func(_ *router.Request, p *model.UserPatch, _ bool) error {
			if err := mustExist(h.store.UserGroups, "userGroupId", p.UserGroupID); err != nil {
				return err
			}
			return hashPatchPassword(p)
		},
	}
}

// hashPatchPassword moves a plaintext password into PasswordHash. Hashing
// failures surface as a validation error on the password field.
func hashPatchPassword(p *model.UserPatch) error {
	if p.Password == nil {
		return nil
	}
	hash, err := auth.HashPassword(*p.Password)
	if err != nil {
		return &envelope.ValidationError{Field: "password", Message: "密码格式错误"}
	}
	p.PasswordHash = &hash
	p.Password = nil
	return nil
}

func (h *Handlers) registerUsers(g *router.Group) {
	h.users.register(g, "/users")

	g.POST("/users/:id/enable", h.action(func(req *router.Request) *envelope.Reply {
		return h.users.mutate(req, "用户已启用", func(u *model.User) { u.Status = model.UserActive })
	}), router.Name("users.enable"), router.Summary("启用用户"))

	g.POST("/users/:id/disable", h.action(func(req *router.Request) *envelope.Reply {
		return h.users.mutate(req, "用户已禁用", func(u *model.User) { u.Status = model.UserInactive })
	}), router.Name("users.disable"), router.Summary("禁用用户"))

	g.POST("/users/:id/resetTraffic", h.action(func(req *router.Request) *envelope.Reply {
		return h.users.mutate(req, "流量已重置", func(u *model.User) { u.TrafficUsed = 0 })
	}), router.Name("users.resetTraffic"), router.Summary("重置用户流量"))

	g.POST("/users/:id/regenerateToken", h.action(func(req *router.Request) *envelope.Reply {
		token := id.Token()
		return h.users.mutate(req, "订阅令牌已重新生成", func(u *model.User) { u.SubscriptionToken = token })
	}), router.Name("users.regenerateToken"), router.Summary("重新生成订阅令牌"))
}
