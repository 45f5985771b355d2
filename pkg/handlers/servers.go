package handlers

import (
	"fmt"
	"strings"

	"github.com/nspass/nspass-mockd/internal/id"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/model"
	"github.com/nspass/nspass-mockd/pkg/router"
)

var serverFields = fixture.Fields[model.Server]{
	fixture.ContainsField("name", func(s model.Server) string { return s.Name }),
	fixture.ContainsField("ipv4", func(s model.Server) string { return s.IPv4 }),
	fixture.EqualsField("region", func(s model.Server) string { return s.Region }),
	fixture.EqualsField("country", func(s model.Server) string { return s.Country }),
	fixture.EqualsField("status", func(s model.Server) string { return s.Status }),
	fixture.ContainsField("tag", func(s model.Server) string { return strings.Join(s.Tags, ",") }),
}

func (h *Handlers) serverResource() *resource[model.Server, model.ServerPatch] {
	return &resource[model.Server, model.ServerPatch]{
		coll:   h.store.Servers,
		fields: serverFields,
		schema: "server",
		newItem: func() model.Server {
			return model.Server{Status: model.ServerOffline, Token: id.Token(), Tags: []string{}}
		},
		present: func(s model.Server) model.Server {
			if s.Tags == nil {
				s.Tags = []string{}
			}
			return s
		},
	}
}

// ServerStats is the payload of GET /servers/stats.
type ServerStats struct {
	Total       int            `json:"total"`
	Online      int            `json:"online"`
	Offline     int            `json:"offline"`
	Maintenance int            `json:"maintenance"`
	ByRegion    map[string]int `json:"byRegion"`
	ByCountry   map[string]int `json:"byCountry"`
}

// ConnectivityResult is returned by the test actions.
type ConnectivityResult struct {
	ID        int64  `json:"id"`
	Reachable bool   `json:"reachable"`
	LatencyMs int    `json:"latencyMs"`
	Detail    string `json:"detail"`
}

// InstallCommand is returned by GET /servers/:id/install.
type InstallCommand struct {
	ServerID int64  `json:"serverId"`
	Token    string `json:"token"`
	Command  string `json:"command"`
}

func (h *Handlers) registerServers(g *router.Group) {
	h.servers.register(g, "/servers")

	g.GET("/servers/stats", h.serverStats, router.Name("servers.stats"), router.Summary("服务器统计"))

	g.POST("/servers/:id/restart", h.action(func(req *router.Request) *envelope.Reply {
		now := h.store.Now()
		return h.servers.mutate(req, "重启指令已发送", func(s *model.Server) {
			s.Status = model.ServerOnline
			s.LastHeartbeatAt = &now
		})
	}), router.Name("servers.restart"), router.Summary("重启服务器"))

	g.POST("/servers/:id/test", h.action(func(req *router.Request) *envelope.Reply {
		s, err := h.servers.lookup(req)
		if err != nil {
			return envelope.FromError(err)
		}
		res := ConnectivityResult{ID: s.ID, Reachable: s.Status == model.ServerOnline}
		if res.Reachable {
			res.LatencyMs = latencyFor(s.ID)
			res.Detail = "连接正常"
			return envelope.OKMessage("连接测试成功", res)
		}
		res.Detail = "服务器当前状态为 " + s.Status
		return envelope.OKMessage("连接测试失败", res)
	}), router.Name("servers.test"), router.Summary("测试服务器连接"))

	g.POST("/servers/:id/regenerateToken", h.action(func(req *router.Request) *envelope.Reply {
		token := id.Token()
		return h.servers.mutate(req, "令牌已重新生成", func(s *model.Server) { s.Token = token })
	}), router.Name("servers.regenerateToken"), router.Summary("重新生成服务器令牌"))

	g.GET("/servers/:id/install", func(req *router.Request) *envelope.Reply {
		s, err := h.servers.lookup(req)
		if err != nil {
			return envelope.FromError(err)
		}
		return envelope.OK(InstallCommand{
			ServerID: s.ID,
			Token:    s.Token,
			Command: fmt.Sprintf("curl -fsSL %s/install.sh | bash -s -- --server-id %d --token %s",
				strings.TrimSuffix(h.installBaseURL, "/"), s.ID, s.Token),
		})
	}, router.Name("servers.install"), router.Summary("服务器安装命令"))
}

func (h *Handlers) serverStats(*router.Request) *envelope.Reply {
	stats := ServerStats{ByRegion: map[string]int{}, ByCountry: map[string]int{}}
	for _, s := range h.store.Servers.All() {
		stats.Total++
		switch s.Status {
		case model.ServerOnline:
			stats.Online++
		case model.ServerMaintenance:
			stats.Maintenance++
		default:
			stats.Offline++
		}
		if s.Region != "" {
			stats.ByRegion[s.Region]++
		}
		if s.Country != "" {
			stats.ByCountry[s.Country]++
		}
	}
	return envelope.OK(stats)
}
