package handlers

import (
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/router"
)

func (h *Handlers) registerDashboard(g *router.Group) {
	g.GET("/dashboard/overview", func(*router.Request) *envelope.Reply {
		return envelope.OK(h.store.Overview())
	}, router.Name("dashboard.overview"), router.Summary("仪表盘概览"))
}
