package handlers

import (
	"time"

	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

var iptablesFields = fixture.Fields[model.IptablesConfig]{
	fixture.IDField("serverId", func(c model.IptablesConfig) int64 { return c.ServerID }),
	fixture.EqualsField("tableName", func(c model.IptablesConfig) string { return c.TableName }),
	fixture.ContainsField("chainName", func(c model.IptablesConfig) string { return c.ChainName }),
	fixture.EqualsField("protocol", func(c model.IptablesConfig) string { return c.Protocol }),
	fixture.EqualsField("ruleAction", func(c model.IptablesConfig) string { return c.RuleAction }),
}

func (h *Handlers) iptablesResource() *resource[model.IptablesConfig, model.IptablesPatch] {
	return &resource[model.IptablesConfig, model.IptablesPatch]{
		coll:   h.store.Iptables,
		fields: iptablesFields,
		schema: "iptables",
		newItem: func() model.IptablesConfig {
			return model.IptablesConfig{Protocol: "tcp", Enabled: true}
		},
		before: func(_ *router.Request, p *model.IptablesPatch, _ bool) error {
			return mustExist(h.store.Servers, "serverId", p.ServerID)
		},
	}
}

// RebuildResult is returned by POST /iptables/servers/:serverId/rebuild.
type RebuildResult struct {
	ServerID     int64     `json:"serverId"`
	RulesApplied int       `json:"rulesApplied"`
	RebuiltAt    time.Time `json:"rebuiltAt"`
}

func (h *Handlers) registerIptables(g *router.Group) {
	h.iptables.register(g, "/iptables")

	g.POST("/iptables/:id/enable", h.action(func(req *router.Request) *envelope.Reply {
		return h.iptables.mutate(req, "配置已启用", func(c *model.IptablesConfig) { c.Enabled = true })
	}), router.Name("iptables.enable"), router.Summary("启用iptables配置"))

	g.POST("/iptables/:id/disable", h.action(func(req *router.Request) *envelope.Reply {
		return h.iptables.mutate(req, "配置已禁用", func(c *model.IptablesConfig) { c.Enabled = false })
	}), router.Name("iptables.disable"), router.Summary("禁用iptables配置"))

	g.GET("/iptables/servers/:serverId", func(req *router.Request) *envelope.Reply {
		srv, err := h.serverParam(req)
		if err != nil {
			return envelope.FromError(err)
		}
		return h.iptables.page(req, func(c model.IptablesConfig) bool { return c.ServerID == srv.ID })
	}, router.Name("iptables.byServer"), router.Summary("服务器iptables配置"))

	g.POST("/iptables/servers/:serverId/rebuild", h.action(func(req *router.Request) *envelope.Reply {
		srv, err := h.serverParam(req)
		if err != nil {
			return envelope.FromError(err)
		}
		applied := h.store.Iptables.Filter(func(c model.IptablesConfig) bool {
			return c.ServerID == srv.ID && c.Enabled
		})
		return envelope.OKMessage("iptables规则已重建", RebuildResult{
			ServerID:     srv.ID,
			RulesApplied: len(applied),
			RebuiltAt:    h.store.Now(),
		})
	}), router.Name("iptables.rebuild"), router.Summary("重建服务器iptables规则"))
}

func (h *Handlers) serverParam(req *router.Request) (model.Server, error) {
	serverID, err := req.ParamID("serverId")
	if err != nil {
		return model.Server{}, err
	}
	srv, ok := h.store.Servers.Get(serverID)
	if !ok {
		return model.Server{}, &envelope.NotFoundError{Resource: h.store.Servers.Label()}
	}
	return srv, nil
}
