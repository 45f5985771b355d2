package handlers

import (
	"github.com/nspass/nspass-mockd/internal/id"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

// InviteCheck is the body of POST /settings/validateInvite.
type InviteCheck struct {
	Code string `json:"code"`
	// InviteCode is accepted in place of Code, matching the register form.
	InviteCode string `json:"inviteCode,omitempty"`
}

// Value returns the submitted code.
func (c InviteCheck) Value() string {
	if c.Code != "" {
		return c.Code
	}
	return c.InviteCode
}

// Invite is the reply of POST /settings/regenerateInvite.
type Invite struct {
	InviteCode string `json:"inviteCode"`
}

// InviteResult reports whether an invite code is accepted.
type InviteResult struct {
	Valid bool `json:"valid"`
}

func (h *Handlers) registerSettings(g *router.Group) {
	g.GET("/settings/website", func(*router.Request) *envelope.Reply {
		return envelope.OK(h.store.Website())
	}, router.Name("settings.website"), router.Summary("网站配置"))

	g.PUT("/settings/website", func(req *router.Request) *envelope.Reply {
		var p model.WebsiteConfigPatch
		if err := req.Bind(&p); err != nil {
			return envelope.FromError(err)
		}
		cfg, err := h.store.UpdateWebsite(func(c *model.WebsiteConfig) error {
			p.Apply(c)
			return nil
		})
		if err != nil {
			return envelope.FromError(err)
		}
		return envelope.OKMessage("网站配置已更新", cfg)
	}, router.Name("settings.updateWebsite"), router.Summary("更新网站配置"), router.Body("website.update"))

	g.POST("/settings/validateInvite", func(req *router.Request) *envelope.Reply {
		var body InviteCheck
		if err := req.Bind(&body); err != nil {
			return envelope.FromError(err)
		}
		valid := h.inviteValid(body.Value())
		msg := "邀请码有效"
		if !valid {
			msg = "邀请码无效"
		}
		return envelope.OKMessage(msg, InviteResult{Valid: valid})
	}, router.Name("settings.validateInvite"), router.Summary("校验邀请码"), router.Body("invite.validate"))

	g.POST("/settings/regenerateInvite", h.action(func(*router.Request) *envelope.Reply {
		code := id.Short()
		cfg, err := h.store.UpdateWebsite(func(c *model.WebsiteConfig) error {
			c.InviteCode = code
			return nil
		})
		if err != nil {
			return envelope.FromError(err)
		}
		return envelope.OKMessage("邀请码已重新生成", Invite{InviteCode: cfg.InviteCode})
	}), router.Name("settings.regenerateInvite"), router.Summary("重新生成邀请码"))
}

func (h *Handlers) inviteValid(code string) bool {
	stored := h.store.Website().InviteCode
	return stored != "" && code == stored
}
