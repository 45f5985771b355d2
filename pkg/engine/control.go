package engine

import (
	"slices"
	"time"

	"github.com/nspass/nspass-mockd/internal/matching"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/requestlog"
	"github.com/nspass/nspass-mockd/pkg/router"
)

// Status is the payload of GET /__mock/status.
type Status struct {
	Enabled   bool           `json:"enabled"`
	Unmatched string         `json:"unmatched"`
	Upstream  string         `json:"upstream,omitempty"`
	Bypass    []string       `json:"bypass"`
	Prefix    string         `json:"prefix"`
	Routes    int            `json:"routes"`
	Records   map[string]int `json:"records"`
	Uptime    string         `json:"uptime"`
}

// ToggleRequest is the body of POST /__mock/toggle.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// ResetRequest is the body of POST /__mock/reset. No resources means all.
type ResetRequest struct {
	Resources []string `json:"resources"`
}

// ResetResult lists the resources restored to the seed.
type ResetResult struct {
	Reset []string `json:"reset"`
}

// Health is the payload of GET /__mock/health.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) registerControl(r *router.Router) {
	g := r.Group("mock", envelope.ConventionA)

	g.GET("/status", func(*router.Request) *envelope.Reply {
		return envelope.OK(h.Status())
	}, router.Name("mock.status"), router.Summary("Mock状态"))

	g.POST("/toggle", func(req *router.Request) *envelope.Reply {
		var body ToggleRequest
		if err := req.Bind(&body); err != nil {
			return envelope.FromError(err)
		}
		h.SetEnabled(body.Enabled)
		msg := "Mock已关闭"
		if body.Enabled {
			msg = "Mock已开启"
		}
		return envelope.OKMessage(msg, ToggleRequest{Enabled: h.Enabled()})
	}, router.Name("mock.toggle"), router.Summary("切换Mock"), router.Body("mock.toggle"))

	g.POST("/reset", func(req *router.Request) *envelope.Reply {
		var body ResetRequest
		if err := req.Bind(&body); err != nil {
			return envelope.FromError(err)
		}
		names, err := h.Reset(body.Resources...)
		if err != nil {
			return envelope.FromError(err)
		}
		return envelope.OKMessage("数据已重置", ResetResult{Reset: names})
	}, router.Name("mock.reset"), router.Summary("重置数据"), router.Body("mock.reset"))

	g.GET("/routes", func(*router.Request) *envelope.Reply {
		routes := h.api.Routes()
		out := make([]router.RouteInfo, len(routes))
		for i, rt := range routes {
			out[i] = rt.Info()
		}
		return envelope.OK(out)
	}, router.Name("mock.routes"), router.Summary("路由表"))

	g.GET("/requests", func(req *router.Request) *envelope.Reply {
		return envelope.OK(h.Requests(historyFilter(req)))
	}, router.Name("mock.requests"), router.Summary("请求记录"))

	g.DELETE("/requests", func(*router.Request) *envelope.Reply {
		if h.history != nil {
			h.history.Clear()
		}
		return envelope.OKMessage("请求记录已清空", nil)
	}, router.Name("mock.clearRequests"), router.Summary("清空请求记录"))

	g.GET("/health", func(*router.Request) *envelope.Reply {
		return envelope.OK(Health{Status: "healthy", Timestamp: time.Now().UTC()})
	}, router.Name("mock.health"), router.Summary("健康检查"))
}

// Status reports the runtime state.
func (h *Handler) Status() Status {
	return Status{
		Enabled:   h.Enabled(),
		Unmatched: h.unmatched,
		Upstream:  h.passthrough.Upstream(),
		Bypass:    append([]string{}, h.bypass.Patterns()...),
		Prefix:    h.api.Prefix(),
		Routes:    len(h.api.Routes()),
		Records:   h.store.Counts(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}
}

// Reset restores resources to the seed and runs the reset hook.
func (h *Handler) Reset(names ...string) ([]string, error) {
	known := fixture.Names()
	for _, n := range names {
		if !slices.Contains(known, n) {
			return nil, &envelope.ValidationError{Field: "resources", Message: "未知资源: " + n}
		}
	}
	done, err := h.store.Reset(names...)
	if err != nil {
		return nil, err
	}
	h.log.Info("fixtures reset", "resources", done)
	if h.metrics != nil {
		for _, n := range done {
			h.metrics.StoreResets.WithLabelValues(n).Inc()
		}
	}
	if h.onReset != nil {
		h.onReset(done)
	}
	return done, nil
}

// Requests lists the request history newest first. It is empty when
// history is disabled.
func (h *Handler) Requests(filter *requestlog.Filter) []*requestlog.Entry {
	if h.history == nil {
		return []*requestlog.Entry{}
	}
	return h.history.List(filter)
}

func historyFilter(req *router.Request) *requestlog.Filter {
	q := req.Query
	return &requestlog.Filter{
		Method:  q.Get("method"),
		Path:    q.Get("path"),
		Outcome: q.Get("outcome"),
		Route:   q.Get("route"),
		Status:  matching.IntParam(q, "status", 0, 0, 599),
		Limit:   matching.IntParam(q, "limit", 50, 1, 1000),
		Offset:  matching.IntParam(q, "offset", 0, 0, 0),
	}
}
