package handlers

import (
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

var ruleFields = fixture.Fields[model.Rule]{
	fixture.ContainsField("ruleName", func(r model.Rule) string { return r.RuleName }),
	fixture.IDField("userId", func(r model.Rule) int64 { return r.UserID }),
	fixture.IDField("serverId", func(r model.Rule) int64 { return r.ServerID }),
	fixture.EqualsField("protocol", func(r model.Rule) string { return r.Protocol }),
	fixture.EqualsField("status", func(r model.Rule) string { return r.Status }),
}

func (h *Handlers) ruleResource() *resource[model.Rule, model.RulePatch] {
	return &resource[model.Rule, model.RulePatch]{
		coll:   h.store.Rules,
		fields: ruleFields,
		schema: "rule",
		newItem: func() model.Rule {
			return model.Rule{Protocol: "tcp", Status: model.RuleActive}
		},
		before: func(_ *router.Request, p *model.RulePatch, _ bool) error {
			if err := mustExist(h.store.Users, "userId", p.UserID); err != nil {
				return err
			}
			if err := mustExist(h.store.Servers, "serverId", p.ServerID); err != nil {
				return err
			}
			return mustExist(h.store.Egress, "egressId", p.EgressID)
		},
	}
}

func (h *Handlers) registerRules(g *router.Group) {
	h.rules.register(g, "/rules")

	g.POST("/rules/:id/enable", h.action(func(req *router.Request) *envelope.Reply {
		return h.rules.mutate(req, "规则已启用", func(r *model.Rule) { r.Status = model.RuleActive })
	}), router.Name("rules.enable"), router.Summary("启用规则"))

	g.POST("/rules/:id/disable", h.action(func(req *router.Request) *envelope.Reply {
		return h.rules.mutate(req, "规则已暂停", func(r *model.Rule) { r.Status = model.RulePaused })
	}), router.Name("rules.disable"), router.Summary("暂停规则"))
}
