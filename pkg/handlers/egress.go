package handlers

import (
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

var egressFields = fixture.Fields[model.EgressItem]{
	fixture.ContainsField("egressName", func(e model.EgressItem) string { return e.EgressName }),
	fixture.IDField("serverId", func(e model.EgressItem) int64 { return e.ServerID }),
	fixture.EqualsField("egressMode", func(e model.EgressItem) string { return e.EgressMode }),
	fixture.EqualsField("status", func(e model.EgressItem) string { return e.Status }),
}

func (h *Handlers) egressResource() *resource[model.EgressItem, model.EgressPatch] {
	return &resource[model.EgressItem, model.EgressPatch]{
		coll:   h.store.Egress,
		fields: egressFields,
		schema: "egress",
		newItem: func() model.EgressItem {
			return model.EgressItem{Status: "active"}
		},
		before: func(_ *router.Request, p *model.EgressPatch, _ bool) error {
			return mustExist(h.store.Servers, "serverId", p.ServerID)
		},
	}
}

func (h *Handlers) registerEgress(g *router.Group) {
	h.egress.register(g, "/egress")

	g.POST("/egress/:id/test", h.action(func(req *router.Request) *envelope.Reply {
		e, err := h.egress.lookup(req)
		if err != nil {
			return envelope.FromError(err)
		}
		res := ConnectivityResult{ID: e.ID, Reachable: e.Status == "active"}
		if !res.Reachable {
			res.Detail = "出口未启用"
			return envelope.OKMessage("出口测试失败", res)
		}
		res.LatencyMs = latencyFor(e.ID)
		res.Detail = e.EgressMode + " 出口可用"
		return envelope.OKMessage("出口测试成功", res)
	}), router.Name("egress.test"), router.Summary("测试出口"))
}
